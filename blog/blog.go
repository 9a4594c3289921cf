package blog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presslog/common"
	"presslog/store"
)

const (
	FeedSize        = 15
	SidebarLinks    = 10
	SidebarComments = 5
)

// BlogModule serves the public side of the blog: listings, post pages, the
// links directory, feeds and the guest-writable comment and link forms.
type BlogModule struct {
	env   *common.Env
	store *store.Store
}

func NewBlogModule(env *common.Env) *BlogModule {
	s := store.New(env.DB)
	s.BcryptCost = env.Config.BcryptCost
	s.OnTagConflict = env.Metrics.TagConflict
	return &BlogModule{env: env, store: s}
}

func (b *BlogModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", b.index)
	router.GET("/archive/:year", b.archive)
	router.GET("/archive/:year/:month", b.archive)
	router.GET("/archive/:year/:month/:day", b.archive)
	router.GET("/search", b.search)
	router.GET("/tags", b.tags)
	router.GET("/tags/:slug", b.tag)
	router.GET("/people/:username", b.people)

	router.GET("/p/:year/:month/:day/:slug", b.post)
	router.GET("/post/:id", b.postByID)
	router.POST("/post/:id/comments", b.addComment)
	router.POST("/post/:id/comments/:parent_id", b.addComment)

	router.GET("/links", b.links)
	router.POST("/links", b.addLink)

	router.GET("/feeds/", b.feed)
	router.GET("/feeds/tag/:slug", b.tagFeed)

	router.GET("/sidebar", b.sidebar)
	router.GET("/health", b.health)
}

func (b *BlogModule) respondError(c *gin.Context, err error) {
	common.WriteError(c, b.env.Log, err)
}

// pageParam reads ?page, defaulting to the first page.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func uintParam(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, common.ErrNotFound
	}
	return uint(v), nil
}

func intParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	return v, err == nil && v > 0
}

func (b *BlogModule) health(c *gin.Context) {
	sqlDB, err := b.env.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		b.env.Log.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

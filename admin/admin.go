package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"presslog/common"
	"presslog/store"
)

// AdminModule serves the routes that change state on behalf of a logged in user:
// accounts, post authoring, moderation and Twitter cross-posting.
type AdminModule struct {
	env   *common.Env
	store *store.Store
}

func NewAdminModule(env *common.Env) *AdminModule {
	s := store.New(env.DB)
	s.BcryptCost = env.Config.BcryptCost
	s.OnTagConflict = env.Metrics.TagConflict
	return &AdminModule{env: env, store: s}
}

func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.POST("/account/login", a.login)
	router.POST("/account/signup", a.signup)
	router.POST("/account/logout", a.logout)

	auth := router.Group("/")
	auth.Use(common.RequireAuth)
	{
		auth.GET("/account/me", a.me)
		auth.GET("/account/twitter", a.connectTwitter)
		auth.GET("/account/twitter/callback", a.twitterCallback)

		auth.POST("/post", a.createPost)
		auth.POST("/post/:id/edit", a.editPost)
		auth.POST("/post/:id/delete", a.deletePost)

		auth.POST("/comment/:id/delete", a.deleteComment)
		auth.POST("/links/:id/pass", a.passLink)
		auth.POST("/links/:id/delete", a.deleteLink)

		auth.POST("/people/:username/edit", a.editProfile)
		auth.POST("/people/:username/tweet", a.tweet)
	}
}

func (a *AdminModule) respondError(c *gin.Context, err error) {
	common.WriteError(c, a.env.Log, err)
}

func idParam(c *gin.Context) (uint, error) {
	v, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || v == 0 {
		return 0, common.ErrNotFound
	}
	return uint(v), nil
}

package blog

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presslog/access"
	"presslog/cache"
	"presslog/common"
	"presslog/markup"
	"presslog/models"
	"presslog/store"
	"presslog/views"
)

func (b *BlogModule) listPosts(c *gin.Context, q store.PostQuery, extra gin.H) {
	page, err := b.store.ListPosts(c.Request.Context(), q, pageParam(c))
	if err != nil {
		b.respondError(c, err)
		return
	}
	body := presentPosts(page)
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

func (b *BlogModule) index(c *gin.Context) {
	b.listPosts(c, store.PostQuery{}, nil)
}

func (b *BlogModule) archive(c *gin.Context) {
	year, okY := intParam(c, "year")
	month, okM := intParam(c, "month")
	day, okD := intParam(c, "day")
	if !okY || !okM || !okD || !validDate(year, month, day) {
		b.respondError(c, common.ErrNotFound)
		return
	}
	q := store.PostQuery{Year: year, Month: month, Day: day}
	b.listPosts(c, q, gin.H{"year": year, "month": month, "day": day})
}

// validDate accepts a year with an optional month and day, as long as the date exists.
func validDate(year, month, day int) bool {
	if year < 1 || month > 12 || (day > 0 && month == 0) {
		return false
	}
	if day == 0 {
		return true
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Day() == day
}

func (b *BlogModule) search(c *gin.Context) {
	keywords := store.SplitKeywords(c.Query("q"))
	if len(keywords) == 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}

	page, err := b.store.ListPosts(c.Request.Context(), store.PostQuery{Keywords: keywords}, pageParam(c))
	if err != nil {
		b.respondError(c, err)
		return
	}
	if page.Total == 1 {
		c.Redirect(http.StatusFound, page.Items[0].URL())
		return
	}
	body := presentPosts(page)
	body["keywords"] = strings.Join(keywords, " ")
	c.JSON(http.StatusOK, body)
}

func (b *BlogModule) tagCloud(c *gin.Context) ([]views.CloudTag, error) {
	counts, err := cache.Fetch(b.env.Cache, cache.KeyTags, func() ([]models.TagCount, error) {
		return b.store.TagCounts(c.Request.Context())
	})
	if err != nil {
		return nil, err
	}
	return views.Weigh(counts), nil
}

func (b *BlogModule) tags(c *gin.Context) {
	cloud, err := b.tagCloud(c)
	if err != nil {
		b.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": cloud})
}

func (b *BlogModule) tag(c *gin.Context) {
	tag, err := b.store.TagBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		b.respondError(c, err)
		return
	}
	b.listPosts(c, store.PostQuery{TagID: tag.ID}, gin.H{"tag": tag})
}

func (b *BlogModule) people(c *gin.Context) {
	user, err := b.store.UserByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		b.respondError(c, err)
		return
	}
	b.listPosts(c, store.PostQuery{AuthorID: user.ID}, gin.H{"user": presentAuthor(*user)})
}

func (b *BlogModule) post(c *gin.Context) {
	post, err := b.store.PostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		b.respondError(c, err)
		return
	}

	year, _ := intParam(c, "year")
	month, _ := intParam(c, "month")
	day, _ := intParam(c, "day")
	if !post.PublishedOn(year, month, day) {
		c.Redirect(http.StatusMovedPermanently, post.URL())
		return
	}

	detail, err := b.postDetail(c, post)
	if err != nil {
		b.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (b *BlogModule) postByID(c *gin.Context) {
	id, err := uintParam(c, "id")
	if err != nil {
		b.respondError(c, err)
		return
	}
	post, err := b.store.GetPost(c.Request.Context(), id)
	if err != nil {
		b.respondError(c, err)
		return
	}
	c.Redirect(http.StatusMovedPermanently, post.URL())
}

func (b *BlogModule) postDetail(c *gin.Context, post *models.Post) (*postDetail, error) {
	ctx := c.Request.Context()
	actor := common.Actor(c)

	prev, next, err := b.store.Adjacent(ctx, post)
	if err != nil {
		return nil, err
	}

	comments, err := cache.Fetch(b.env.Cache, cache.Key("post", post.ID, "comments"), func() ([]models.Comment, error) {
		return b.store.Comments(ctx, post.ID)
	})
	if err != nil {
		return nil, err
	}

	roots, dropped := views.BuildTree(comments)
	if len(dropped) > 0 {
		b.env.Log.Warn("comments left out of tree",
			zap.Uint("post_id", post.ID),
			zap.Uints("comment_ids", dropped),
		)
	}

	return &postDetail{
		postSummary: presentSummary(post),
		HTML:        markup.Post(post.Content),
		CanEdit:     access.Can(actor, post, access.Edit),
		CanDelete:   access.Can(actor, post, access.Delete),
		Prev:        presentLink(prev),
		Next:        presentLink(next),
		Comments:    presentComments(actor, post, roots),
	}, nil
}

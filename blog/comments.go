package blog

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presslog/cache"
	"presslog/common"
	"presslog/store"
	"presslog/views"
)

type commentForm struct {
	Email    string `form:"email" json:"email"`
	Nickname string `form:"nickname" json:"nickname"`
	Website  string `form:"website" json:"website"`
	Comment  string `form:"comment" json:"comment"`
}

func (b *BlogModule) addComment(c *gin.Context) {
	ctx := c.Request.Context()

	postID, err := uintParam(c, "id")
	if err != nil {
		b.respondError(c, err)
		return
	}
	var parentID *uint
	if c.Param("parent_id") != "" {
		id, err := uintParam(c, "parent_id")
		if err != nil {
			b.respondError(c, err)
			return
		}
		parentID = &id
	}

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		b.respondError(c, common.FromBinding(err))
		return
	}

	post, err := b.store.GetPost(ctx, postID)
	if err != nil {
		b.respondError(c, err)
		return
	}

	actor := common.Actor(c)
	comment, err := b.store.AddComment(ctx, post, parentID, actor, store.CommentInput{
		Email:    form.Email,
		Nickname: form.Nickname,
		Website:  form.Website,
		Body:     form.Comment,
		IP:       c.ClientIP(),
	})
	if err != nil {
		b.respondError(c, err)
		return
	}
	comment.Post = *post
	cache.InvalidateComments(b.env.Cache, post.ID, post.URL())

	b.env.Log.Info("comment added",
		zap.Uint("post_id", post.ID),
		zap.Uint("comment_id", comment.ID),
		zap.String("request_id", common.RequestIDFrom(c)),
	)

	node := []*views.CommentNode{{Comment: *comment}}
	if parentID != nil {
		node[0].Depth = 1
	}
	c.JSON(http.StatusCreated, gin.H{
		"comment": presentComments(actor, post, node)[0],
		"url":     comment.URL(),
	})
}

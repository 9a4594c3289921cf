package admin

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presslog/access"
	"presslog/cache"
	"presslog/common"
	"presslog/email"
	"presslog/models"
	"presslog/store"
)

type postForm struct {
	Title   string `form:"title" json:"title"`
	Slug    string `form:"slug" json:"slug"`
	Content string `form:"content" json:"content"`
	Tags    string `form:"tags" json:"tags"`
}

func (f postForm) input() store.PostInput {
	return store.PostInput{Title: f.Title, Slug: f.Slug, Content: f.Content, Tags: f.Tags}
}

func writePost(c *gin.Context, status int, post *models.Post) {
	c.JSON(status, gin.H{"id": post.ID, "slug": post.Slug, "url": post.URL()})
}

func (a *AdminModule) createPost(c *gin.Context) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	actor := common.Actor(c)
	post, err := a.store.CreatePost(c.Request.Context(), actor, form.input())
	if err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidatePosts(a.env.Cache, append(a.neighbourURLs(c.Request.Context(), post), post.URL())...)

	a.env.Log.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("author_id", actor.ID),
		zap.String("slug", post.Slug),
	)
	writePost(c, http.StatusCreated, post)
}

// loadPost fetches the post named by :id and checks that the actor may apply action.
func (a *AdminModule) loadPost(c *gin.Context, action access.Action) (*models.Post, bool) {
	id, err := idParam(c)
	if err != nil {
		a.respondError(c, err)
		return nil, false
	}
	post, err := a.store.GetPost(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return nil, false
	}
	if err := access.Check(common.Actor(c), post, action); err != nil {
		a.respondError(c, err)
		return nil, false
	}
	return post, true
}

// neighbourURLs returns the URLs of the pages whose prev and next links point at post.
func (a *AdminModule) neighbourURLs(ctx context.Context, post *models.Post) []string {
	prev, next, err := a.store.Adjacent(ctx, post)
	if err != nil {
		a.env.Log.Warn("adjacent posts lookup failed", zap.Uint("post_id", post.ID), zap.Error(err))
		return nil
	}
	var urls []string
	for _, p := range []*models.Post{prev, next} {
		if p != nil {
			urls = append(urls, p.URL())
		}
	}
	return urls
}

func (a *AdminModule) editPost(c *gin.Context) {
	post, ok := a.loadPost(c, access.Edit)
	if !ok {
		return
	}

	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	oldURL := post.URL()
	if err := a.store.UpdatePost(c.Request.Context(), post, form.input()); err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidatePosts(a.env.Cache, append(a.neighbourURLs(c.Request.Context(), post), oldURL, post.URL())...)

	writePost(c, http.StatusOK, post)
}

// deletePost removes a post. An author whose post was removed by someone else is
// told by mail once the delete has committed; a failed mail is only logged.
func (a *AdminModule) deletePost(c *gin.Context) {
	post, ok := a.loadPost(c, access.Delete)
	if !ok {
		return
	}

	neighbours := a.neighbourURLs(c.Request.Context(), post)
	if err := a.store.DeletePost(c.Request.Context(), post); err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidatePosts(a.env.Cache, append(neighbours, post.URL())...)
	cache.InvalidateComments(a.env.Cache, post.ID, post.URL())

	actor := common.Actor(c)
	a.env.Log.Info("post deleted",
		zap.Uint("post_id", post.ID),
		zap.Uint("deleted_by", actor.ID),
	)

	if actor.ID != post.AuthorID {
		a.notifyAuthor(post, actor)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminModule) notifyAuthor(post *models.Post, by *models.User) {
	if a.env.Mail == nil || post.Author.Email == "" {
		return
	}
	msg := email.PostDeleted(post.Author.Email, a.env.Config.BlogTitle, post.Title, by.Username)
	if err := a.env.Mail.Send(msg); err != nil {
		a.env.Metrics.MailFailure()
		a.env.Log.Error("failed to notify author of deleted post",
			zap.Uint("post_id", post.ID),
			zap.Uint("author_id", post.AuthorID),
			zap.Error(err),
		)
	}
}

func (a *AdminModule) deleteComment(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := idParam(c)
	if err != nil {
		a.respondError(c, err)
		return
	}
	comment, err := a.store.GetComment(ctx, id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := access.Check(common.Actor(c), comment, access.Delete); err != nil {
		a.respondError(c, err)
		return
	}

	if err := a.store.DeleteComment(ctx, comment); err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidateComments(a.env.Cache, comment.PostID, comment.Post.URL())
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminModule) loadLink(c *gin.Context, action access.Action) (*models.Link, bool) {
	id, err := idParam(c)
	if err != nil {
		a.respondError(c, err)
		return nil, false
	}
	link, err := a.store.GetLink(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return nil, false
	}
	if err := access.Check(common.Actor(c), link, action); err != nil {
		a.respondError(c, err)
		return nil, false
	}
	return link, true
}

func (a *AdminModule) passLink(c *gin.Context) {
	link, ok := a.loadLink(c, access.Edit)
	if !ok {
		return
	}
	if err := a.store.PassLink(c.Request.Context(), link); err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidateLinks(a.env.Cache)
	c.JSON(http.StatusOK, link)
}

func (a *AdminModule) deleteLink(c *gin.Context) {
	link, ok := a.loadLink(c, access.Delete)
	if !ok {
		return
	}
	if err := a.store.DeleteLink(c.Request.Context(), link); err != nil {
		a.respondError(c, err)
		return
	}
	cache.InvalidateLinks(a.env.Cache)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

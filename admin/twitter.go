package admin

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"presslog/common"
	"presslog/twitter"
)

const (
	sessionTwitterState    = "twitter_state"
	sessionTwitterVerifier = "twitter_verifier"
)

type tweetForm struct {
	Content string `form:"content" json:"content" binding:"required,max=280"`
}

// connectTwitter starts the OAuth2 PKCE flow. State and verifier wait in the
// session for the callback.
func (a *AdminModule) connectTwitter(c *gin.Context) {
	if a.env.Twitter == nil || !a.env.Twitter.Enabled() {
		a.respondError(c, common.ErrNotFound)
		return
	}

	actor := common.Actor(c)
	token, err := a.store.TwitterToken(c.Request.Context(), actor.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if token != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "twitter account already connected"})
		return
	}

	state := uuid.NewString()
	verifier := twitter.NewVerifier()

	session := sessions.Default(c)
	session.Set(sessionTwitterState, state)
	session.Set(sessionTwitterVerifier, verifier)
	if err := session.Save(); err != nil {
		a.respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, a.env.Twitter.AuthCodeURL(state, verifier))
}

func (a *AdminModule) twitterCallback(c *gin.Context) {
	if a.env.Twitter == nil || !a.env.Twitter.Enabled() {
		a.respondError(c, common.ErrNotFound)
		return
	}

	session := sessions.Default(c)
	state, _ := session.Get(sessionTwitterState).(string)
	verifier, _ := session.Get(sessionTwitterVerifier).(string)
	session.Delete(sessionTwitterState)
	session.Delete(sessionTwitterVerifier)
	if err := session.Save(); err != nil {
		a.respondError(c, err)
		return
	}

	if state == "" || c.Query("state") != state {
		a.respondError(c, common.NewValidationError("state", "Invalid authorization state"))
		return
	}
	code := c.Query("code")
	if code == "" {
		a.respondError(c, common.NewValidationError("code", "Authorization was denied"))
		return
	}

	ctx := c.Request.Context()
	actor := common.Actor(c)
	token, err := a.env.Twitter.Exchange(ctx, actor.ID, code, verifier)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := a.store.SaveTwitterToken(ctx, token); err != nil {
		a.respondError(c, err)
		return
	}

	a.env.Log.Info("twitter account connected", zap.Uint("user_id", actor.ID))
	c.Redirect(http.StatusFound, "/people/"+actor.Username)
}

// tweet posts content as the profile owner. Only the owner may post, and an
// account without a stored token reports success=false.
func (a *AdminModule) tweet(c *gin.Context) {
	ctx := c.Request.Context()

	actor := common.Actor(c)
	if actor.Username != c.Param("username") {
		a.respondError(c, common.ErrForbidden)
		return
	}

	var form tweetForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	token, err := a.store.TwitterToken(ctx, actor.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if token == nil || a.env.Twitter == nil {
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}

	before := *token
	err = a.env.Twitter.Post(ctx, token, form.Content)
	if *token != before {
		if err := a.store.SaveTwitterToken(ctx, token); err != nil {
			a.env.Log.Error("failed to save refreshed twitter token", zap.Uint("user_id", actor.ID), zap.Error(err))
		}
	}
	if err != nil {
		if !errors.Is(err, twitter.ErrNotConnected) {
			a.env.Log.Warn("tweet failed", zap.Uint("user_id", actor.ID), zap.Error(err))
		}
		c.JSON(http.StatusOK, gin.H{"success": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"presslog/access"
	"presslog/common"
	"presslog/models"
	"presslog/store"
)

type loginForm struct {
	Login    string `form:"login" json:"login"`
	Password string `form:"password" json:"password"`
}

type signupForm struct {
	Username      string `form:"username" json:"username"`
	Nickname      string `form:"nickname" json:"nickname"`
	Email         string `form:"email" json:"email"`
	Password      string `form:"password" json:"password"`
	PasswordAgain string `form:"password_again" json:"password_again"`
	Code          string `form:"code" json:"code"`
}

type profileForm struct {
	Nickname      string `form:"nickname" json:"nickname"`
	Email         string `form:"email" json:"email"`
	Password      string `form:"password" json:"password"`
	PasswordAgain string `form:"password_again" json:"password_again"`
}

// accountView is what a user sees of their own account.
type accountView struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Nickname   string `json:"nickname"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Twitter    bool   `json:"twitter"`
	DateJoined string `json:"date_joined"`
}

func (a *AdminModule) account(c *gin.Context, user *models.User) (*accountView, error) {
	token, err := a.store.TwitterToken(c.Request.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return &accountView{
		ID:         user.ID,
		Username:   user.Username,
		Nickname:   user.Nickname,
		Email:      user.Email,
		Role:       user.Role.String(),
		Twitter:    token != nil,
		DateJoined: user.DateJoined.UTC().Format("2006-01-02"),
	}, nil
}

func (a *AdminModule) writeAccount(c *gin.Context, status int, user *models.User) {
	view, err := a.account(c, user)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(status, view)
}

func (a *AdminModule) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	user, err := a.store.Authenticate(c.Request.Context(), form.Login, form.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := common.Login(c, user); err != nil {
		a.respondError(c, err)
		return
	}

	a.env.Log.Info("user logged in", zap.Uint("user_id", user.ID))
	a.writeAccount(c, http.StatusOK, user)
}

func (a *AdminModule) signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	user, err := a.store.Signup(c.Request.Context(), store.SignupInput{
		Username:      form.Username,
		Nickname:      form.Nickname,
		Email:         form.Email,
		Password:      form.Password,
		PasswordAgain: form.PasswordAgain,
		Code:          form.Code,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := common.Login(c, user); err != nil {
		a.respondError(c, err)
		return
	}

	a.env.Log.Info("user signed up",
		zap.Uint("user_id", user.ID),
		zap.String("role", user.Role.String()),
	)
	a.writeAccount(c, http.StatusCreated, user)
}

func (a *AdminModule) logout(c *gin.Context) {
	if err := common.Logout(c); err != nil {
		a.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *AdminModule) me(c *gin.Context) {
	a.writeAccount(c, http.StatusOK, common.Actor(c))
}

func (a *AdminModule) editProfile(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := a.store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := access.Check(common.Actor(c), user, access.Edit); err != nil {
		a.respondError(c, err)
		return
	}

	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		a.respondError(c, common.FromBinding(err))
		return
	}

	err = a.store.UpdateProfile(ctx, user, store.ProfileInput{
		Nickname:      form.Nickname,
		Email:         form.Email,
		Password:      form.Password,
		PasswordAgain: form.PasswordAgain,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	a.writeAccount(c, http.StatusOK, user)
}

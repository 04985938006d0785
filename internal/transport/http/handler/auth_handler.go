package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/transport/http/ez"
	mdw "go-gin-gorm-auth/internal/transport/http/middleware"
	resp "go-gin-gorm-auth/internal/transport/http/response"
)

type Registrar interface {
	Create(ctx context.Context, in domain.NewUser) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
}

type TokenIssuer interface {
	Issue(s auth.TokenSubject) (string, error)
}

type CookieWriter interface {
	Set(c *gin.Context, name, value string)
	Clear(c *gin.Context, name string)
}

type AuthHandler struct {
	users   Registrar
	tokens  TokenIssuer
	cookies CookieWriter
	log     *zap.Logger

	// false 时拒绝注册 admin
	AllowAdminSignup bool
}

func NewAuthHandler(users Registrar, tokens TokenIssuer, cookies CookieWriter, l *zap.Logger) *AuthHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthHandler{users: users, tokens: tokens, cookies: cookies, log: l, AllowAdminSignup: true}
}

func (h *AuthHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[signupIn, userOut]{
		Method:  http.MethodPost,
		Path:    "/signup",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Handler: h.signup,
	})
	ez.RegisterAction(e, ez.Action[signinIn, userOut]{
		Method:  http.MethodPost,
		Path:    "/signin",
		Binder:  ez.BindJSON,
		Handler: h.signin,
	})
	ez.RegisterAction(e, ez.Action[struct{}, messageOut]{
		Method:  http.MethodPost,
		Path:    "/signout",
		Binder:  ez.BindNone,
		Handler: h.signout,
	})
}

func (h *AuthHandler) signup(c *gin.Context, in *signupIn) (userOut, error) {
	role, err := domain.ParseRole(in.Role)
	if err != nil {
		return userOut{}, ez.BadRequest(resp.MsgValidation)
	}
	if role.IsAdmin() {
		if !h.AllowAdminSignup {
			mdw.ObserveAuth("signup", "forbidden")
			return userOut{}, ez.Forbidden(resp.MsgAdminSignupOff)
		}
		h.log.Warn("signup requested admin role", zap.String("email", in.Email), zap.String("ip", c.ClientIP()))
	}

	u, err := h.users.Create(c.Request.Context(), domain.NewUser{
		Name: in.Name, Email: in.Email, Password: in.Password, Role: role,
	})
	if err != nil {
		mdw.ObserveAuth("signup", outcome(err))
		return userOut{}, err
	}
	if err := h.issue(c, u); err != nil {
		return userOut{}, err
	}
	mdw.ObserveAuth("signup", "ok")
	h.log.Info("user registered", zap.String("user_id", u.ID))
	return userOut{Message: resp.MsgSignedUp, User: *u}, nil
}

func (h *AuthHandler) signin(c *gin.Context, in *signinIn) (userOut, error) {
	u, err := h.users.Authenticate(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		mdw.ObserveAuth("signin", outcome(err))
		return userOut{}, err
	}
	if err := h.issue(c, u); err != nil {
		return userOut{}, err
	}
	mdw.ObserveAuth("signin", "ok")
	h.log.Info("user signed in", zap.String("user_id", u.ID))
	return userOut{Message: resp.MsgSignedIn, User: *u}, nil
}

// signout 只清 cookie；已签发的 token 在过期前仍可经 Authorization 头使用
func (h *AuthHandler) signout(c *gin.Context, _ *struct{}) (messageOut, error) {
	h.cookies.Clear(c, auth.TokenCookie)
	mdw.ObserveAuth("signout", "ok")
	return messageOut{Message: resp.MsgSignedOut}, nil
}

func (h *AuthHandler) issue(c *gin.Context, u *domain.User) error {
	tok, err := h.tokens.Issue(auth.SubjectOf(u))
	if err != nil {
		return ez.Internal("issue token", err)
	}
	h.cookies.Set(c, auth.TokenCookie, tok)
	return nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid"
	}
	return "error"
}

package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/transport/http/ez"
	mdw "go-gin-gorm-auth/internal/transport/http/middleware"
	resp "go-gin-gorm-auth/internal/transport/http/response"
)

type UserDirectory interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error)
	Delete(ctx context.Context, id string) (string, error)
}

type UserHandler struct {
	users UserDirectory
	authn gin.HandlerFunc
	log   *zap.Logger
}

// NewUserHandler authn 为鉴权中间件（通常是 middleware.Authenticate）
func NewUserHandler(users UserDirectory, authn gin.HandlerFunc, l *zap.Logger) *UserHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserHandler{users: users, authn: authn, log: l}
}

func (h *UserHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, usersOut]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindNone,
		Use:     []gin.HandlerFunc{h.authn, mdw.RequireRole(domain.RoleAdmin)},
		Handler: h.list,
	})
	ez.RegisterAction(e, ez.Action[userIDIn, userOut]{
		Method:  http.MethodGet,
		Path:    "/users/:id",
		Binder:  ez.BindURI,
		Use:     []gin.HandlerFunc{h.authn},
		Handler: h.get,
	})
	ez.RegisterAction(e, ez.Action[updateUserIn, userOut]{
		Method:  http.MethodPut,
		Path:    "/users/:id",
		Binder:  ez.BindURIJSON,
		Use:     []gin.HandlerFunc{h.authn},
		Handler: h.update,
	})
	ez.RegisterAction(e, ez.Action[userIDIn, deletedOut]{
		Method:  http.MethodDelete,
		Path:    "/users/:id",
		Binder:  ez.BindURI,
		Use:     []gin.HandlerFunc{h.authn},
		Handler: h.delete,
	})
}

func (h *UserHandler) list(c *gin.Context, _ *struct{}) (usersOut, error) {
	us, err := h.users.List(c.Request.Context())
	if err != nil {
		return usersOut{}, err
	}
	if us == nil {
		us = []domain.User{}
	}
	return usersOut{Message: resp.MsgUsersListed, Users: us, Count: len(us)}, nil
}

func (h *UserHandler) get(c *gin.Context, in *userIDIn) (userOut, error) {
	u, err := h.users.Get(c.Request.Context(), in.ID)
	if err != nil {
		return userOut{}, err
	}
	return userOut{Message: resp.MsgUserFetched, User: *u}, nil
}

func (h *UserHandler) update(c *gin.Context, in *updateUserIn) (userOut, error) {
	actor, err := actorOf(c)
	if err != nil {
		return userOut{}, err
	}
	// role 检查先于本人检查：非 admin 带 role 一律拒绝
	if in.Role != nil && !actor.CanAssignRole() {
		return userOut{}, ez.Forbidden(resp.MsgRoleChange)
	}
	if !actor.CanManage(in.ID) {
		return userOut{}, ez.Forbidden(resp.MsgForbidden)
	}

	upd, err := in.toUpdate()
	if err != nil {
		return userOut{}, ez.BadRequest(resp.MsgValidation)
	}
	u, err := h.users.Update(c.Request.Context(), in.ID, upd)
	if err != nil {
		return userOut{}, err
	}
	h.log.Info("user updated", zap.String("user_id", in.ID), zap.String("actor", actor.ID))
	return userOut{Message: resp.MsgUserUpdated, User: *u}, nil
}

func (h *UserHandler) delete(c *gin.Context, in *userIDIn) (deletedOut, error) {
	actor, err := actorOf(c)
	if err != nil {
		return deletedOut{}, err
	}
	if !actor.CanManage(in.ID) {
		return deletedOut{}, ez.Forbidden(resp.MsgForbidden)
	}
	id, err := h.users.Delete(c.Request.Context(), in.ID)
	if err != nil {
		return deletedOut{}, err
	}
	h.log.Info("user deleted", zap.String("user_id", id), zap.String("actor", actor.ID))
	return deletedOut{Message: resp.MsgUserDeleted, ID: id}, nil
}

func actorOf(c *gin.Context) (domain.Actor, error) {
	a, ok := mdw.ActorFrom(c)
	if !ok {
		return domain.Actor{}, ez.Unauthorized(resp.MsgUnauthorized)
	}
	return a, nil
}

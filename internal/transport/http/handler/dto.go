package handler

import (
	"strings"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/service"
)

type signupIn struct {
	Name     string `json:"name"     binding:"required,min=2,max=255"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,maxbytes=72"` // bcrypt 上限 72 字节
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}

func (in *signupIn) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = service.NormalizeEmail(in.Email)
}

type signinIn struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,maxbytes=72"`
}

func (in *signinIn) Normalize() { in.Email = service.NormalizeEmail(in.Email) }

type userIDIn struct {
	ID string `uri:"id" json:"-" binding:"required,uuid"`
}

type updateUserIn struct {
	ID    string  `uri:"id"   json:"-"     binding:"required,uuid"`
	Name  *string `json:"name"  binding:"omitempty,min=2,max=255"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
	Role  *string `json:"role"  binding:"omitempty,oneof=user admin"`
}

func (in *updateUserIn) Normalize() {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		in.Name = &n
	}
	if in.Email != nil {
		e := service.NormalizeEmail(*in.Email)
		in.Email = &e
	}
}

// toUpdate 只取白名单字段；role 已经过 oneof 校验
func (in *updateUserIn) toUpdate() (domain.UserUpdate, error) {
	upd := domain.UserUpdate{Name: in.Name, Email: in.Email}
	if in.Role != nil {
		r, err := domain.ParseRole(*in.Role)
		if err != nil {
			return upd, err
		}
		upd.Role = &r
	}
	return upd, nil
}

type messageOut struct {
	Message string `json:"message"`
}

type userOut struct {
	Message string      `json:"message"`
	User    domain.User `json:"user"`
}

type usersOut struct {
	Message string        `json:"message"`
	Users   []domain.User `json:"users"`
	Count   int           `json:"count"`
}

type deletedOut struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

package domain

import (
	"context"
	"fmt"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole 只接受已知角色，空串按 user 处理
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, "":
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleUser:
		return false
	}
	return false
}

func (r Role) String() string { return string(r) }

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized 返回去掉密码哈希的副本
func (u User) Sanitized() User {
	u.PasswordHash = ""
	return u
}

type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// UserUpdate 可修改字段白名单；nil 表示未提供
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *Role
}

func (u UserUpdate) Empty() bool { return u.Name == nil && u.Email == nil && u.Role == nil }

// Actor 是从 token 解析出的请求身份，只用于鉴权判断
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// CanManage: admin 或本人
func (a Actor) CanManage(targetID string) bool {
	return a.Role.IsAdmin() || (a.ID != "" && a.ID == targetID)
}

// CanAssignRole: 修改 role 字段只允许 admin
func (a Actor) CanAssignRole() bool { return a.Role.IsAdmin() }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id string, upd UserUpdate, at time.Time) error
	Delete(ctx context.Context, id string) (bool, error)
}

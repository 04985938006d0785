package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type Hasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) (bool, error)
}

// UserCache 按 id 的读穿缓存，可选
type UserCache interface {
	Fetch(ctx context.Context, id string, load func(context.Context) (*domain.User, error)) (*domain.User, error)
	Invalidate(ctx context.Context, id string) error
}

type UserService struct {
	repo   domain.UserRepository
	hasher Hasher
	cache  UserCache
	log    *zap.Logger
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(repo domain.UserRepository, hasher Hasher, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{repo: repo, hasher: hasher, log: log, now: time.Now}
}

func (s *UserService) WithCache(c UserCache) *UserService {
	s.cache = c
	return s
}

func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	us, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range us {
		us[i] = us[i].Sanitized()
	}
	return us, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	var (
		u   *domain.User
		err error
	)
	if s.cache != nil {
		u, err = s.cache.Fetch(ctx, id, func(ctx context.Context) (*domain.User, error) {
			return s.repo.FindByID(ctx, id)
		})
	} else {
		u, err = s.repo.FindByID(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	out := u.Sanitized()
	return &out, nil
}

func (s *UserService) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	// 并发注册同一邮箱时由唯一索引兜底，repo 会返回 ErrDuplicateEmail
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("email", u.Email), zap.String("role", u.Role.String()))
	out := u.Sanitized()
	return &out, nil
}

func (s *UserService) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	if upd.Empty() {
		return nil, domain.ErrNoValidFields
	}
	if upd.Name != nil {
		n := strings.TrimSpace(*upd.Name)
		upd.Name = &n
	}
	if upd.Email != nil {
		e := NormalizeEmail(*upd.Email)
		upd.Email = &e
	}
	if err := s.repo.Update(ctx, id, upd, s.now().UTC()); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("user_id", id))
	out := u.Sanitized()
	return &out, nil
}

func (s *UserService) Delete(ctx context.Context, id string) (string, error) {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return "", fmt.Errorf("delete user: %w", err)
	}
	if !ok {
		return "", domain.ErrUserNotFound
	}
	s.invalidate(ctx, id)
	s.log.Info("user deleted", zap.String("user_id", id))
	return id, nil
}

// Authenticate 邮箱不存在与密码错误返回同一个错误
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		// 走一次同等代价的比对，避免靠响应时间区分邮箱是否存在
		_, _ = s.hasher.Verify(password, s.dummy())
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	out := u.Sanitized()
	return &out, nil
}

// EnsureAdmin 创建管理员账号；邮箱已存在则提升为 admin
func (s *UserService) EnsureAdmin(ctx context.Context, in domain.NewUser) (*domain.User, bool, error) {
	existing, err := s.repo.FindByEmail(ctx, NormalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.Role.IsAdmin() {
			out := existing.Sanitized()
			return &out, false, nil
		}
		role := domain.RoleAdmin
		u, err := s.Update(ctx, existing.ID, domain.UserUpdate{Role: &role})
		return u, false, err
	case errors.Is(err, domain.ErrUserNotFound):
		in.Role = domain.RoleAdmin
		u, err := s.Create(ctx, in)
		return u, err == nil, err
	default:
		return nil, false, err
	}
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn("user cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}

// 生成失败时的兜底：一个合法的 cost=10 bcrypt 串，保证 Verify 仍会完整跑一遍
const fallbackDummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(utils.NewID())
		if err != nil {
			s.log.Error("dummy hash failed, using fallback", zap.Error(err))
			h = fallbackDummyHash
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

package cache

import (
	"context"
	"time"

	"go-gin-gorm-auth/internal/domain"
)

// Users 按 id 缓存脱敏后的用户记录
type Users struct {
	C   *Cache
	TTL time.Duration
}

func userKey(id string) string { return "user:" + id }

func (u Users) Fetch(ctx context.Context, id string, load func(context.Context) (*domain.User, error)) (*domain.User, error) {
	return GetOrLoadJSON(u.C, ctx, userKey(id), u.TTL, func(ctx context.Context) (*domain.User, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		s := v.Sanitized()
		return &s, nil
	})
}

func (u Users) Invalidate(ctx context.Context, id string) error {
	return u.C.Delete(ctx, userKey(id))
}

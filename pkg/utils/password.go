package utils

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"go-gin-gorm-auth/internal/domain"
)

type PasswordHasher struct {
	Cost int // 0 取 bcrypt.DefaultCost
}

func (h PasswordHasher) cost() int {
	if h.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

func (h PasswordHasher) Hash(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost())
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
	return string(b), nil
}

// Verify 密码不匹配返回 false, nil；哈希损坏等内部错误才返回 error
func (h PasswordHasher) Verify(pw, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", domain.ErrHashing, err)
	}
}

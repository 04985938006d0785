package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-gin-gorm-auth/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Actor 把 claims 转成请求身份
func (c *Claims) Actor() domain.Actor {
	return domain.Actor{ID: c.ID, Email: c.Email, Role: c.Role}
}

type TokenSubject struct {
	ID    string
	Email string
	Role  domain.Role
}

func SubjectOf(u *domain.User) TokenSubject {
	return TokenSubject{ID: u.ID, Email: u.Email, Role: u.Role}
}

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Leeway time.Duration

	now func() time.Time
}

func (j *JWTer) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

func (j *JWTer) Issue(s TokenSubject) (string, error) {
	now := j.clock()
	claims := Claims{
		ID:    s.ID,
		Email: s.Email,
		Role:  s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.Leeway),
		jwt.WithTimeFunc(j.clock),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid {
		return nil, ErrInvalidToken
	}
	if c.ID == "" {
		return nil, fmt.Errorf("%w: missing id", ErrInvalidToken)
	}
	// role 必须是已知枚举值（空串不算）
	if c.Role == "" {
		return nil, fmt.Errorf("%w: missing role", ErrInvalidToken)
	}
	if _, err := domain.ParseRole(string(c.Role)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return c, nil
}

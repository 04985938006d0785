package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/domain"
	resp "go-gin-gorm-auth/internal/transport/http/response"
)

type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

type CookieReader interface {
	Get(c *gin.Context, name string) (string, bool)
}

// Authenticate 先取 cookie，再取 Authorization: Bearer；解析成功后把 Actor 挂到上下文
func Authenticate(v TokenVerifier, cookies CookieReader, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := cookies.Get(c, auth.TokenCookie)
		if !ok {
			tok, ok = bearerToken(c.GetHeader("Authorization"))
		}
		if !ok {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgUnauthorized)
			return
		}
		claims, err := v.Parse(tok)
		if err != nil {
			l.Warn("invalid auth token", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			resp.Abort(c, http.StatusUnauthorized, resp.MsgUnauthorized)
			return
		}
		SetActor(c, claims.Actor())
		c.Next()
	}
}

// RequireRole 角色白名单；须挂在 Authenticate 之后
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		a, ok := ActorFrom(c)
		if !ok || a.Role == "" {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgUnauthorized)
			return
		}
		if _, ok := allowed[a.Role]; !ok {
			resp.Abort(c, http.StatusForbidden, resp.MsgForbidden)
			return
		}
		c.Next()
	}
}

func bearerToken(h string) (string, bool) {
	scheme, tok, found := strings.Cut(strings.TrimSpace(h), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	tok = strings.TrimSpace(tok)
	return tok, tok != ""
}

package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const TokenCookie = "token"

// Cookies 固定属性：HttpOnly、SameSite=Strict、Path=/，生产环境 Secure
type Cookies struct {
	Secure bool
	Domain string
	MaxAge time.Duration
}

func (k Cookies) Set(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, int(k.MaxAge/time.Second), "/", k.Domain, k.Secure, true)
}

func (k Cookies) Get(c *gin.Context, name string) (string, bool) {
	v, err := c.Cookie(name)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (k Cookies) Clear(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, "", -1, "/", k.Domain, k.Secure, true)
}

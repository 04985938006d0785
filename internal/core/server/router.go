package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/logger"
)

// NewRouter 裸引擎 + CORS；Recovery/访问日志由 router 包按顺序挂
func NewRouter(app config.App, corsCfg config.CORS) *gin.Engine {
	if app.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(newCORS(corsCfg))
	return r
}

func newCORS(c config.CORS) gin.HandlerFunc {
	if len(c.AllowOrigins) == 0 {
		return cors.Default()
	}
	// 带 cookie 的跨域必须显式列出 origin
	return cors.New(cors.Config{
		AllowOrigins:     c.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

func BuildServer(addr string, handler http.Handler, h config.HTTP, l *zap.Logger) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       seconds(h.ReadTimeoutSec),
		ReadHeaderTimeout: seconds(h.ReadTimeoutSec),
		WriteTimeout:      seconds(h.WriteTimeoutSec),
		IdleTimeout:       seconds(h.IdleTimeoutSec),
		MaxHeaderBytes:    1 << 20, // 1MB
		ErrorLog:          logger.ToStdLogger(l, zapcore.WarnLevel),
	}
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

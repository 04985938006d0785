package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/server"
	mdw "go-gin-gorm-auth/internal/transport/http/middleware"
)

type Deps struct {
	Log     *zap.Logger
	App     config.App
	CORS    config.CORS
	Modules *Modules
	// 为空则 /health 只回 ok；配置了就顺带探测 DB
	Ping func() error
}

func NewAPIEngine(d Deps) *gin.Engine {
	l := d.Log
	if l == nil {
		l = zap.NewNop()
	}
	h := d.App.HTTP

	r := server.NewRouter(d.App, d.CORS)
	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(h.MaxInFlight),
		mdw.MaxBodyBytes(h.MaxBodyBytes),
		mdw.Timeout(time.Duration(h.RequestTimeout)*time.Second),
		mdw.Recovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) {
		if d.Ping != nil {
			if err := d.Ping(); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(mdw.MetricsHandler()))

	api := r.Group(h.BasePath)
	if d.Modules != nil {
		d.Modules.MountAll(api)
	}
	return r
}

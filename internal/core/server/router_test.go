package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/config"
)

func TestNewRouter_CredentialedCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(config.App{Env: "test"}, config.CORS{AllowOrigins: []string{"https://app.example.com"}})
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("allow-credentials = %q", got)
	}
}

func TestBuildServer(t *testing.T) {
	h := config.HTTP{ReadTimeoutSec: 5, WriteTimeoutSec: 10, IdleTimeoutSec: 60}
	srv := BuildServer(Addr("127.0.0.1", 8080), http.NotFoundHandler(), h, zap.NewNop())
	if srv.Addr != "127.0.0.1:8080" {
		t.Fatalf("addr = %q", srv.Addr)
	}
	if srv.ReadTimeout != 5*time.Second || srv.WriteTimeout != 10*time.Second || srv.IdleTimeout != time.Minute {
		t.Fatalf("timeouts = %v %v %v", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
	if srv.ErrorLog == nil {
		t.Fatal("ErrorLog not set")
	}
}

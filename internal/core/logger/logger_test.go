package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-gorm-auth/internal/core/config"
)

func TestBuild_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "warn", JSON: true, Out: &buf})
	l.Info("hidden")
	l.Warn("shown", zap.String("email", "a@b.c"))
	cleanup()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info leaked at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"email":"a@b.c"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestBuild_BadLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "loud", JSON: true, Out: &buf})
	l.Debug("debug")
	l.Info("info")
	cleanup()
	if strings.Contains(buf.String(), `"msg":"debug"`) || !strings.Contains(buf.String(), `"msg":"info"`) {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

func TestFromConfig_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := FromConfig(config.Log{Level: "info", JSON: true, File: config.LogFile{Path: path, MaxSizeMB: 1}})
	l.Info("to-file")
	cleanup()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), "to-file") {
		t.Fatalf("file content: %s", b)
	}
}

func TestToStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Out: &buf})
	ToStdLogger(l, zapcore.ErrorLevel).Print("tls handshake error")
	cleanup()
	if !strings.Contains(buf.String(), `"level":"error"`) || !strings.Contains(buf.String(), "tls handshake error") {
		t.Fatalf("unexpected output: %s", buf.String())
	}
}

// admin 命令行：创建管理员账号，或把已有账号提升为 admin
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/logger"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/repo"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	var (
		cfgPath  = flag.StringP("config", "c", os.Getenv("CONFIG_PATH"), "config file path")
		email    = flag.StringP("email", "e", "", "admin email (required)")
		name     = flag.StringP("name", "n", "Administrator", "display name for a new account")
		password = flag.StringP("password", "p", os.Getenv("ADMIN_PASSWORD"), "password for a new account, 6-72 bytes (or ADMIN_PASSWORD)")
	)
	flag.Parse()

	if *email == "" {
		fmt.Fprintln(os.Stderr, "--email is required")
		flag.Usage()
		os.Exit(2)
	}
	// 与注册接口同一约束；账号已存在时密码不会被改
	if n := len(*password); n < 6 || n > 72 {
		fmt.Fprintln(os.Stderr, "--password must be 6-72 bytes")
		os.Exit(2)
	}

	cfg := config.Load(*cfgPath)
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db, err := database.NewGorm(database.Opts{
		Driver:   cfg.DB.Driver,
		DSN:      cfg.DB.DSN,
		Username: cfg.DB.Username,
		Password: cfg.DB.Password,
		LogLevel: cfg.DB.LogLevel,
		Log:      log,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	svc := service.NewUserService(repo.NewUserRepo(db), utils.PasswordHasher{Cost: cfg.Security.BcryptCost}, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	u, created, err := svc.EnsureAdmin(ctx, domain.NewUser{Name: *name, Email: *email, Password: *password})
	if err != nil {
		log.Fatal("ensure admin failed", zap.String("email", *email), zap.Error(err))
	}
	log.Info("admin ready",
		zap.String("id", u.ID),
		zap.String("email", u.Email),
		zap.Bool("created", created),
	)
}

package database

import (
	"errors"
	"testing"

	"go-gin-gorm-auth/internal/feature/user"
)

func TestNewGorm_SQLiteAndMigrate(t *testing.T) {
	db, err := NewGorm(Opts{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	if err != nil {
		t.Fatalf("NewGorm: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if !db.Migrator().HasTable(&user.UserModel{}) {
		t.Fatal("users table missing")
	}
	if !db.Migrator().HasIndex(&user.UserModel{}, "Email") {
		t.Fatal("email unique index missing")
	}
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(Opts{Driver: "oracle"})
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("err = %v, want ErrUnsupportedDriver", err)
	}
}

func TestNormalizeMySQLDSN(t *testing.T) {
	cases := []struct {
		name, in, user, pass, want string
	}{
		{
			name: "driver dsn untouched",
			in:   "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
			want: "root:pw@tcp(127.0.0.1:3306)/app?parseTime=true",
		},
		{
			name: "url form",
			in:   "mysql://root:pw@localhost:3306/app?useSSL=false&serverTimezone=UTC",
			want: "root:pw@tcp(localhost:3306)/app?charset=utf8mb4&loc=UTC&parseTime=true&tls=false",
		},
		{
			name: "jdbc with overrides",
			in:   "jdbc:mysql://db:3306/app?characterEncoding=utf8&useUnicode=true",
			user: "svc", pass: "secret",
			want: "svc:secret@tcp(db:3306)/app?charset=utf8&parseTime=true",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizeMySQLDSN(tc.in, tc.user, tc.pass); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestMaskDSN(t *testing.T) {
	if got := maskDSN("root:pw@tcp(h:1)/db"); got != "root:****@tcp(h:1)/db" {
		t.Fatalf("maskDSN = %q", got)
	}
	if got := maskDSN("file:users.db"); got != "file:users.db" {
		t.Fatalf("maskDSN = %q", got)
	}
}

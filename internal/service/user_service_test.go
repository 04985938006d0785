package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type stubUserRepo struct {
	byID    map[string]*domain.User
	failErr error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) error {
	if r.failErr != nil {
		return r.failErr
	}
	for _, x := range r.byID {
		if x.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = cloneUser(u)
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.failErr != nil {
		return nil, r.failErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd domain.UserUpdate, at time.Time) error {
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	u.UpdatedAt = at
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

type fakeCache struct {
	entries     map[string]*domain.User
	loads       int
	invalidated []string
}

func (c *fakeCache) Fetch(ctx context.Context, id string, load func(context.Context) (*domain.User, error)) (*domain.User, error) {
	if u, ok := c.entries[id]; ok {
		return u, nil
	}
	c.loads++
	u, err := load(ctx)
	if err != nil {
		return nil, err
	}
	c.entries[id] = u
	return u, nil
}

func (c *fakeCache) Invalidate(_ context.Context, id string) error {
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func newTestService() (*UserService, *stubUserRepo) {
	repo := newStubUserRepo()
	return NewUserService(repo, utils.PasswordHasher{Cost: bcrypt.MinCost}, nil), repo
}

func mustCreate(t *testing.T, s *UserService, email, pw string, role domain.Role) *domain.User {
	t.Helper()
	u, err := s.Create(context.Background(), domain.NewUser{Name: "Test", Email: email, Password: pw, Role: role})
	if err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestUserService_Create(t *testing.T) {
	s, repo := newTestService()

	u, err := s.Create(context.Background(), domain.NewUser{Name: "  Alice ", Email: " Alice@Example.COM ", Password: "pass123"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.Email != "alice@example.com" || u.Name != "Alice" {
		t.Fatalf("not normalized: %+v", u)
	}
	if u.Role != domain.RoleUser {
		t.Fatalf("role = %q, want default user", u.Role)
	}
	if u.PasswordHash != "" {
		t.Fatal("returned record not sanitized")
	}
	stored := repo.byID[u.ID]
	if stored.PasswordHash == "pass123" || bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass123")) != nil {
		t.Fatal("stored password is not a bcrypt hash of the input")
	}
}

func TestUserService_Create_DuplicateCaseInsensitive(t *testing.T) {
	s, _ := newTestService()
	mustCreate(t, s, "bob@example.com", "pass123", "")

	_, err := s.Create(context.Background(), domain.NewUser{Name: "Other", Email: "BOB@example.com", Password: "different"})
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestUserService_Create_StoreError(t *testing.T) {
	s, repo := newTestService()
	repo.failErr = errors.New("db down")
	_, err := s.Create(context.Background(), domain.NewUser{Name: "x", Email: "x@example.com", Password: "pass123"})
	if err == nil || errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestUserService_Authenticate(t *testing.T) {
	s, _ := newTestService()
	created := mustCreate(t, s, "carol@example.com", "s3cret", domain.RoleAdmin)

	u, err := s.Authenticate(context.Background(), "CAROL@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if u.ID != created.ID || u.Role != domain.RoleAdmin || u.PasswordHash != "" {
		t.Fatalf("got %+v", u)
	}
}

func TestUserService_Authenticate_SameErrorForUnknownEmailAndBadPassword(t *testing.T) {
	s, _ := newTestService()
	mustCreate(t, s, "dave@example.com", "goodpass", "")

	_, errBadPw := s.Authenticate(context.Background(), "dave@example.com", "badpass")
	_, errNoUser := s.Authenticate(context.Background(), "ghost@example.com", "goodpass")

	if !errors.Is(errBadPw, domain.ErrInvalidCredentials) || !errors.Is(errNoUser, domain.ErrInvalidCredentials) {
		t.Fatalf("errs = %v / %v, want ErrInvalidCredentials for both", errBadPw, errNoUser)
	}
	if errBadPw.Error() != errNoUser.Error() {
		t.Fatalf("messages differ: %q vs %q", errBadPw, errNoUser)
	}
}

type brokenHasher struct {
	verified []string
}

func (h *brokenHasher) Hash(string) (string, error) { return "", errors.New("rng exhausted") }

func (h *brokenHasher) Verify(_, hashed string) (bool, error) {
	h.verified = append(h.verified, hashed)
	return false, nil
}

func TestUserService_Authenticate_DummyHashFallback(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := &brokenHasher{}
	s := NewUserService(newStubUserRepo(), h, zap.New(core))

	for i := 0; i < 2; i++ {
		if _, err := s.Authenticate(context.Background(), "ghost@example.com", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("err = %v, want ErrInvalidCredentials", err)
		}
	}
	if len(h.verified) != 2 || h.verified[0] != fallbackDummyHash || h.verified[1] != fallbackDummyHash {
		t.Fatalf("verified against %q", h.verified)
	}
	if _, err := bcrypt.Cost([]byte(fallbackDummyHash)); err != nil {
		t.Fatalf("fallback is not a bcrypt hash: %v", err)
	}
	if logs.FilterMessage("dummy hash failed, using fallback").Len() != 1 {
		t.Fatalf("logs = %v", logs.All())
	}
}

func TestUserService_Get(t *testing.T) {
	s, _ := newTestService()
	u := mustCreate(t, s, "e@example.com", "pass123", "")

	got, err := s.Get(context.Background(), u.ID)
	if err != nil || got.ID != u.ID || got.PasswordHash != "" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserService_Get_UsesCache(t *testing.T) {
	s, _ := newTestService()
	c := &fakeCache{entries: map[string]*domain.User{}}
	s.WithCache(c)
	u := mustCreate(t, s, "f@example.com", "pass123", "")

	for i := 0; i < 3; i++ {
		if _, err := s.Get(context.Background(), u.ID); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	if c.loads != 1 {
		t.Fatalf("loads = %d, want 1", c.loads)
	}

	name := "New"
	if _, err := s.Update(context.Background(), u.ID, domain.UserUpdate{Name: &name}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(context.Background(), u.ID)
	if got.Name != "New" {
		t.Fatalf("stale cache: name = %q", got.Name)
	}
	if _, err := s.Delete(context.Background(), u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(c.invalidated) != 2 {
		t.Fatalf("invalidated = %v, want update + delete", c.invalidated)
	}
	if _, err := s.Get(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound after delete", err)
	}
}

func TestUserService_List_Sanitized(t *testing.T) {
	s, _ := newTestService()
	mustCreate(t, s, "a@example.com", "pass123", "")
	mustCreate(t, s, "b@example.com", "pass123", domain.RoleAdmin)

	us, err := s.List(context.Background())
	if err != nil || len(us) != 2 {
		t.Fatalf("List = %d, %v", len(us), err)
	}
	for _, u := range us {
		if u.PasswordHash != "" {
			t.Fatalf("hash leaked for %s", u.Email)
		}
	}
}

func TestUserService_Update(t *testing.T) {
	s, _ := newTestService()
	fixed := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	u := mustCreate(t, s, "g@example.com", "pass123", "")

	email := " G2@Example.com"
	role := domain.RoleAdmin
	got, err := s.Update(context.Background(), u.ID, domain.UserUpdate{Email: &email, Role: &role})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Email != "g2@example.com" || got.Role != domain.RoleAdmin || got.Name != "Test" {
		t.Fatalf("got %+v", got)
	}
	if !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, fixed)
	}
	if got.PasswordHash != "" {
		t.Fatal("returned record not sanitized")
	}
}

func TestUserService_Update_Errors(t *testing.T) {
	s, _ := newTestService()
	u := mustCreate(t, s, "h@example.com", "pass123", "")
	name := "x"

	if _, err := s.Update(context.Background(), "missing", domain.UserUpdate{Name: &name}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	// 不存在的 id 优先报 404，即使没有可更新字段
	if _, err := s.Update(context.Background(), "missing", domain.UserUpdate{}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if _, err := s.Update(context.Background(), u.ID, domain.UserUpdate{}); !errors.Is(err, domain.ErrNoValidFields) {
		t.Fatalf("err = %v, want ErrNoValidFields", err)
	}
}

func TestUserService_Delete(t *testing.T) {
	s, _ := newTestService()
	u := mustCreate(t, s, "i@example.com", "pass123", "")

	id, err := s.Delete(context.Background(), u.ID)
	if err != nil || id != u.ID {
		t.Fatalf("Delete = %q, %v", id, err)
	}
	if _, err := s.Delete(context.Background(), u.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUserService_EnsureAdmin(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	u, created, err := s.EnsureAdmin(ctx, domain.NewUser{Name: "Root", Email: "root@example.com", Password: "rootpass"})
	if err != nil || !created || u.Role != domain.RoleAdmin {
		t.Fatalf("EnsureAdmin(new) = %+v, %v, %v", u, created, err)
	}

	again, created, err := s.EnsureAdmin(ctx, domain.NewUser{Email: "root@example.com"})
	if err != nil || created || again.ID != u.ID {
		t.Fatalf("EnsureAdmin(existing admin) = %+v, %v, %v", again, created, err)
	}

	plain := mustCreate(t, s, "plain@example.com", "pass123", domain.RoleUser)
	promoted, created, err := s.EnsureAdmin(ctx, domain.NewUser{Email: "plain@example.com"})
	if err != nil || created || promoted.ID != plain.ID || promoted.Role != domain.RoleAdmin {
		t.Fatalf("EnsureAdmin(promote) = %+v, %v, %v", promoted, created, err)
	}
}

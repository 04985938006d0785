package utils

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"go-gin-gorm-auth/internal/domain"
)

var testHasher = PasswordHasher{Cost: bcrypt.MinCost}

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h, err := testHasher.Hash("s3cret-pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "s3cret-pw" {
		t.Fatal("hash equals plaintext")
	}
	ok, err := testHasher.Verify("s3cret-pw", h)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v; want true, nil", ok, err)
	}
}

func TestPasswordHasher_SaltedPerCall(t *testing.T) {
	a, _ := testHasher.Hash("same")
	b, _ := testHasher.Hash("same")
	if a == b {
		t.Fatal("two hashes of the same password should differ")
	}
}

func TestPasswordHasher_MismatchIsNotError(t *testing.T) {
	h, _ := testHasher.Hash("right")
	ok, err := testHasher.Verify("wrong", h)
	if err != nil {
		t.Fatalf("mismatch returned error: %v", err)
	}
	if ok {
		t.Fatal("wrong password verified")
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	_, err := testHasher.Verify("pw", "not-a-bcrypt-hash")
	if !errors.Is(err, domain.ErrHashing) {
		t.Fatalf("err = %v, want ErrHashing", err)
	}
}

func TestPasswordHasher_DefaultCost(t *testing.T) {
	if (PasswordHasher{}).cost() != bcrypt.DefaultCost {
		t.Fatal("zero cost should fall back to bcrypt.DefaultCost")
	}
}

func TestNewID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewID() = %q is not a uuid: %v", id, err)
	}
	if NewID() == id {
		t.Fatal("ids should be unique")
	}
}

package authstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "token"))
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestTokenMissingFile(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("got %v, want ErrNoToken", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	store := tempStore(t)
	tok := signedToken(t, time.Now().Add(time.Hour))
	if err := store.Save(tok); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if got != tok {
		t.Errorf("token = %q, want %q", got, tok)
	}
}

func TestExpiredTokenRejectedLocally(t *testing.T) {
	store := tempStore(t)
	if err := store.Save(signedToken(t, time.Now().Add(-time.Minute))); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Token(); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("got %v, want ErrTokenExpired", err)
	}
}

func TestOpaqueTokenPassesThrough(t *testing.T) {
	// Not a JWT; no readable expiry, so the server decides.
	store := tempStore(t)
	if err := store.Save("opaque-session-token"); err != nil {
		t.Fatal(err)
	}
	got, err := store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if got != "opaque-session-token" {
		t.Errorf("token = %q", got)
	}
}

func TestClear(t *testing.T) {
	store := tempStore(t)
	if err := store.Save("tok"); err != nil {
		t.Fatal(err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Token(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("got %v, want ErrNoToken after clear", err)
	}
	// Clearing twice is not an error.
	if err := store.Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

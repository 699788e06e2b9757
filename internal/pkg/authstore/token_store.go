package authstore

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("not authenticated")
	ErrTokenExpired = errors.New("session expired")
)

// Store holds the bearer token between runs. The token is issued by the
// EduGen backend on login; this layer never mutates it, only persists it
// and clears it when the server rejects it.
type Store interface {
	Token() (string, error)
	Save(token string) error
	Clear() error
}

type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", err
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}

	// Local expiry check. Signature verification is the server's job, the
	// client only avoids sending a token it already knows is dead.
	if expired(token) {
		return "", ErrTokenExpired
	}

	return token, nil
}

func (s *FileStore) Save(token string) error {
	return os.WriteFile(s.path, []byte(token+"\n"), 0o600)
}

func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func expired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		// Opaque tokens have no readable expiry; let the server decide.
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

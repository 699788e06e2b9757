package api

import (
	"errors"
	"fmt"
)

// ErrSessionExpired signals a 401 from any authenticated endpoint. The
// client has already cleared the stored credentials when this is returned;
// the caller must route the user back to login instead of showing an
// inline error.
var ErrSessionExpired = errors.New("session expired")

// Error is a non-2xx response carrying the server's detail message, with a
// per-operation fallback when the body had none.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Detail, e.Status)
}

package utils

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// IUtils produces the identifiers used for sessions, lobbies and voice
// history entries.
type IUtils interface {
	NewULIDFromTimestamp(t time.Time) (string, error)
	NewID() string
}

type utils struct {
	mu      sync.Mutex
	entropy io.Reader
}

func New() IUtils {
	return &utils{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// NewULIDFromTimestamp is monotonic within the same millisecond, so ids sort
// in creation order.
func (u *utils) NewULIDFromTimestamp(t time.Time) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t), u.entropy)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

// NewID is NewULIDFromTimestamp(time.Now()) falling back to a fresh entropy
// source when the monotonic one overflows.
func (u *utils) NewID() string {
	id, err := u.NewULIDFromTimestamp(time.Now())
	if err == nil {
		return id
	}
	return ulid.Make().String()
}

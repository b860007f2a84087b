// Package session resolves the durable client-side identifier that keys a
// shopping cart. The id lives in client storage (a cookie in practice) and is
// reused until that storage is cleared.
package session

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// StorageKey is the client storage key holding the session id.
const StorageKey = "postro_session_id"

// ClientStorage is durable storage scoped to one client. Get returns
// ("", nil) when the key is absent.
type ClientStorage interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Resolve returns the session id stored under StorageKey, creating and
// persisting a fresh one when absent. If storage is unavailable the new id is
// still returned, unpersisted, and serves as an ephemeral fallback for the
// current page view.
func Resolve(storage ClientStorage) string {
	if id, err := storage.Get(StorageKey); err == nil && id != "" {
		return id
	}

	id := NewID(time.Now())
	// Best effort: an unpersisted id still identifies this page view.
	_ = storage.Set(StorageKey, id)
	return id
}

// NewID synthesizes a session id from the current time plus a random base36
// suffix. Collisions are negligible for this use case.
func NewID(now time.Time) string {
	suffix := strconv.FormatUint(rand.Uint64(), 36)
	if len(suffix) > 9 {
		suffix = suffix[:9]
	}
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), suffix)
}

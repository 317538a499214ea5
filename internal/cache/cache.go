package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching structured completion results.
// Implementations must be safe for concurrent use across sessions;
// last-write-wins on concurrent population is acceptable since values are
// idempotent for identical keys.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a versioned cache key from the semantically relevant parts of
// a request (prompt, schema, temperature).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "chronicler:v1:" + hex.EncodeToString(h.Sum(nil))
}

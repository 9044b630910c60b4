// Package cache stores deduplicated extraction results keyed by input text,
// so repeated extractions of the same document skip annotation entirely.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/estrattori/eventi/internal/model"
)

// Cache is a TTL store of pre-merge event lists
type Cache interface {
	Get(text string) ([]model.Event, bool)
	Set(text string, events []model.Event, ttl time.Duration) error
}

// key namespaces entries by a hash of the input text; the version segment
// invalidates old entries when the extraction contract changes
func key(text string) string {
	hash := sha256.Sum256([]byte(text))
	return "eventi:v1:" + hex.EncodeToString(hash[:])
}

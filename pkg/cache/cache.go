// Package cache provides result caching for layout computation.
//
// Layout passes are deterministic, so a layout computed once for a given
// document and configuration can be reused until either changes. Cache keys
// are derived from a hash of the document's serialized form plus the layout
// options, so any edit or option change produces a fresh key.
//
// Three backends are provided: [FileCache] for the CLI (XDG cache dir),
// [RedisCache] for the HTTP server, and [NullCache] for tests or when
// caching is disabled. All backends store opaque bytes with a TTL.
package cache

import (
	"context"
	"time"
)

// Default TTLs for cached artifacts.
const (
	// DefaultLayoutTTL is how long computed layouts stay cached. Layouts
	// are cheap to recompute, so this bounds disk growth more than it
	// protects latency.
	DefaultLayoutTTL = 24 * time.Hour
)

// Cache stores opaque byte values under string keys with expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second result reports whether the key was
	// present and unexpired; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the configuration inputs that affect layout output and
// therefore participate in the cache key.
type LayoutKeyOpts struct {
	CenterX        float64
	CenterY        float64
	LevelSpacing   float64
	SiblingSpacing float64
	FontSize       float64
	WrapEnabled    bool
	WrapWidth      float64
	Panel          string
	PanelCollapsed bool
}

// Keyer generates cache keys. Implementations must be deterministic:
// identical inputs always yield identical keys.
type Keyer interface {
	// DocKey generates a key for a serialized document by content hash.
	DocKey(docHash string) string

	// LayoutKey generates a key for a computed layout, combining the
	// document hash with the layout options.
	LayoutKey(docHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a short type prefix plus a
// SHA-256 hash of the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// DocKey generates a key for a serialized document.
func (k *DefaultKeyer) DocKey(docHash string) string {
	return "doc:" + docHash
}

// LayoutKey generates a key for a computed layout.
func (k *DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

package htmlrender

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache stores rendered artifacts by key. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Close() error
}

// NullCache never stores anything.
type NullCache struct{}

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set does nothing.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Close does nothing.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}

// cacheKey identifies a render by everything that affects its output.
// Timeouts only decide whether a render succeeds, not what it produces.
func cacheKey(html string, opts EffectiveOptions) string {
	opts.NavigationTimeout, opts.CaptureTimeout = 0, 0
	data, _ := json.Marshal(struct {
		HTML string
		Opts EffectiveOptions
	}{html, opts})
	sum := sha256.Sum256(data)
	return "render:" + string(opts.Format) + ":" + hex.EncodeToString(sum[:])
}

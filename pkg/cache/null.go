package cache

import (
	"context"
	"time"
)

// NullCache discards everything: Get always misses and Set drops its
// payload. It backs --no-cache runs so the layout pipeline never has to
// special-case a missing cache.
type NullCache struct{}

var _ Cache = NullCache{}

// NewNullCache creates the discard-everything cache.
func NewNullCache() *NullCache { return &NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

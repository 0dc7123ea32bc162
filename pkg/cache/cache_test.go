package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// DocKey
	docKey := k.DocKey("abc123")
	if docKey != "doc:abc123" {
		t.Errorf("DocKey unexpected: %s", docKey)
	}

	// LayoutKey should include options in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{LevelSpacing: 80, FontSize: 14})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{LevelSpacing: 120, FontSize: 14})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// Same inputs produce the same key
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{LevelSpacing: 80, FontSize: 14})
	if lk1 != lk3 {
		t.Error("Identical LayoutKeyOpts should produce identical keys")
	}

	// A different document produces a different key
	lk4 := k.LayoutKey("hash456", LayoutKeyOpts{LevelSpacing: 80, FontSize: 14})
	if lk1 == lk4 {
		t.Error("Different document hashes should produce different keys")
	}

	// Wrap and panel settings participate in the key
	lk5 := k.LayoutKey("hash123", LayoutKeyOpts{LevelSpacing: 80, FontSize: 14, WrapEnabled: true})
	if lk1 == lk5 {
		t.Error("WrapEnabled should change the key")
	}
	lk6 := k.LayoutKey("hash123", LayoutKeyOpts{LevelSpacing: 80, FontSize: 14, Panel: "settings"})
	if lk1 == lk6 {
		t.Error("Panel should change the key")
	}
}

func TestScopedKeyer(t *testing.T) {
	k := NewScopedKeyer(NewDefaultKeyer(), "v1:")

	docKey := k.DocKey("abc123")
	if !strings.HasPrefix(docKey, "v1:") {
		t.Errorf("scoped DocKey should carry prefix, got %s", docKey)
	}
	if docKey != "v1:doc:abc123" {
		t.Errorf("scoped DocKey unexpected: %s", docKey)
	}

	layoutKey := k.LayoutKey("abc123", LayoutKeyOpts{})
	if !strings.HasPrefix(layoutKey, "v1:") {
		t.Errorf("scoped LayoutKey should carry prefix, got %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	k := NewScopedKeyer(nil, "x:")
	if got := k.DocKey("h"); got != "x:doc:h" {
		t.Errorf("nil inner should fall back to DefaultKeyer, got %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	base := errors.New("boom")

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}

	wrapped := Retryable(base)
	if !IsRetryable(wrapped) {
		t.Error("wrapped error should be retryable")
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
	if wrapped.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", wrapped.Error(), "boom")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should unwrap to the base error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on the first attempt
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("got err=%v calls=%d, want nil/1", err, calls)
	}

	// Non-retryable errors fail immediately
	calls = 0
	permanent := errors.New("permanent")
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) || calls != 1 {
		t.Errorf("got err=%v calls=%d, want permanent/1", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(errors.New("transient"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryProviderRoundTrip(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() failed: %v", err)
	}
	ctx := context.Background()

	if _, err := provider.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := provider.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	got, err := provider.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got != "v" {
		t.Errorf("Get() = %q, want v", got)
	}

	if err := provider.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestMemoryProviderExpiresEntries(t *testing.T) {
	t.Parallel()

	provider, err := NewMemoryProvider()
	if err != nil {
		t.Fatalf("NewMemoryProvider() failed: %v", err)
	}
	ctx := context.Background()

	if err := provider.Set(ctx, "k", "v", -time.Second); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, err := provider.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired Get() error = %v, want ErrNotFound", err)
	}
}

func TestBreakdownKey(t *testing.T) {
	t.Parallel()

	body := []byte(`{"countryCode":"KR"}`)
	key := BreakdownKey("v1", body)

	if key != BreakdownKey("v1", body) {
		t.Error("key must be stable for identical inputs")
	}
	if key == BreakdownKey("v2", body) {
		t.Error("key must change with the table snapshot version")
	}
	if key == BreakdownKey("v1", []byte(`{"countryCode":"US"}`)) {
		t.Error("key must change with the request body")
	}
}

func TestNewProviderRejectsUnknownProvider(t *testing.T) {
	t.Parallel()

	if _, err := NewProvider(Config{Provider: "memcached"}); err == nil {
		t.Error("expected an error for an unsupported provider")
	}
}

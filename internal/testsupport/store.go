package testsupport

import (
	"context"
	"testing"

	"spritegen/internal/config"
	"spritegen/internal/packcache"
)

// MustOpenCache opens the pack cache for cfg and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) *packcache.Store {
	t.Helper()

	store, err := packcache.Open(context.Background(), cfg.CachePath())
	if err != nil {
		t.Fatalf("packcache.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

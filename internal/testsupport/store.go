package testsupport

import (
	"testing"

	"voice2sign/internal/config"
	"voice2sign/internal/history"
	"voice2sign/internal/stagecache"
)

// MustOpenHistory opens the config's history database and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.Paths.HistoryDB)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustOpenCache opens the config's stage cache.
func MustOpenCache(t testing.TB, cfg *config.Config) *stagecache.Cache {
	t.Helper()

	cache, err := stagecache.New(cfg.Paths.CacheDir, nil)
	if err != nil {
		t.Fatalf("stagecache.New: %v", err)
	}
	return cache
}

// file: cmd/diagnostics_test.go
// version: 2.0.0
// guid: 5480d7f7-4a6a-4b7f-9d16-6b589c8a3c0b

package cmd

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/jdfalk/newsdeck/internal/models"
)

func TestTruncateString(t *testing.T) {
	if got := truncateString("short", 10); got != "short" {
		t.Fatalf("expected no truncation, got %q", got)
	}
	if got := truncateString("this is long", 4); got != "this..." {
		t.Fatalf("expected truncation, got %q", got)
	}
}

func TestListCacheKeys(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	store := cache.NewMemoryStore()
	store.SetClock(func() time.Time { return now.Add(-2 * time.Minute) })

	cache.NewSlot[[]models.Article](store, cache.NewsSlot, cache.NewsTTL).
		Write("news_top_global", []models.Article{{Title: "A"}})
	cache.NewSlot[models.Scoreboard](store, cache.SportsSlot, cache.SportsTTL).
		Write("sports_hockey_nhl", models.Scoreboard{})

	var buf bytes.Buffer
	if err := listCacheKeys(&buf, store, now); err != nil {
		t.Fatalf("listCacheKeys failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "news_cache (ttl 1h0m0s): 1 keys") {
		t.Errorf("missing news slot header in %q", out)
	}
	if !strings.Contains(out, "news_top_global") || !strings.Contains(out, "fresh") {
		t.Errorf("expected fresh news key in %q", out)
	}
	if !strings.Contains(out, "sports_hockey_nhl") || !strings.Contains(out, "stale") {
		t.Errorf("expected stale sports key in %q", out)
	}
	if !strings.Contains(out, "age 2m0s") {
		t.Errorf("expected age in %q", out)
	}
}

func TestListCacheKeysEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := listCacheKeys(&buf, cache.NewMemoryStore(), time.Now()); err != nil {
		t.Fatalf("listCacheKeys failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Cache is empty.") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunDiagnosticsQueryErrors(t *testing.T) {
	var buf bytes.Buffer
	if err := runDiagnosticsQuery(&buf, config.Config{CacheBackend: "pebble"}, 0, ""); err == nil {
		t.Fatal("expected error for invalid limit")
	}
	if err := runDiagnosticsQuery(&buf, config.Config{CacheBackend: "memory"}, 1, "cache:"); err == nil {
		t.Fatal("expected error for raw query with memory cache")
	}
}

func TestRunDiagnosticsQuerySuccess(t *testing.T) {
	cfg := config.Config{CacheBackend: "pebble", CachePath: filepath.Join(t.TempDir(), "cache")}

	store, err := openCache(cfg)
	if err != nil {
		t.Fatalf("openCache failed: %v", err)
	}
	cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL).
		Write(cache.WeatherKey, models.WeatherSummary{Location: "Leeds"})
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	var buf bytes.Buffer
	if err := runDiagnosticsQuery(&buf, cfg, 5, "cache:weather_cache:"); err != nil {
		t.Fatalf("runDiagnosticsQuery failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Key: cache:weather_cache:current") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Leeds") {
		t.Errorf("expected value preview in %q", buf.String())
	}
}

// file: cmd/app.go
// version: 1.0.0
// guid: cb9a5793-5457-4ad7-9cba-2300d96bf82c

package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/config"
	"github.com/jdfalk/newsdeck/internal/database"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/sports"
	"github.com/jdfalk/newsdeck/internal/upstream"
	"github.com/jdfalk/newsdeck/internal/weather"
)

// app holds the core components shared by every command.
type app struct {
	cfg      config.Config
	store    *cache.Store
	fallback *database.SQLStore
	sup      *operations.Supervisor

	news    *news.Client
	weather *weather.Client
	sports  *sports.Client
}

// newApp builds the components from cfg. Callers must Close the result.
func newApp(cfg config.Config) (*app, error) {
	store, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, store: store, sup: operations.NewSupervisor()}

	var reader news.FeedReader
	if cfg.FallbackDriver != database.DriverNone && cfg.FallbackDSN != "" {
		fb, err := database.OpenFeedStore(cfg.FallbackDriver, cfg.FallbackDSN)
		if err != nil {
			log.Printf("[WARN] Fallback store unavailable: %v", err)
		} else {
			a.fallback = fb
			reader = fb
		}
	}

	backend := upstreamClient("backend", cfg.BackendURL, cfg)
	a.news = news.NewClient(backend, store, reader)
	a.sports = sports.NewClient(backend, store)

	geocoder := weather.NewBigDataCloud(upstreamClient("geocode", cfg.GeocodeURL, cfg))
	forecaster := weather.NewOpenMeteo(upstreamClient("forecast", cfg.ForecastURL, cfg))
	a.weather = weather.NewClient(locatorFor(cfg), geocoder, forecaster, store, a.sup)
	a.weather.SetLocateTimeout(cfg.GeolocationTimeout)

	return a, nil
}

// Close cancels running tasks and releases storage.
func (a *app) Close() {
	if err := a.sup.Shutdown(5 * time.Second); err != nil {
		log.Printf("[WARN] Task shutdown: %v", err)
	}
	if a.fallback != nil {
		if err := a.fallback.Close(); err != nil {
			log.Printf("[WARN] Closing fallback store: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		log.Printf("[WARN] Closing cache: %v", err)
	}
}

func openCache(cfg config.Config) (*cache.Store, error) {
	if cfg.CacheBackend == "memory" {
		return cache.NewMemoryStore(), nil
	}
	if cfg.CacheBackend != "pebble" {
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.CacheBackend)
	}
	if dir := filepath.Dir(cfg.CachePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}
	backend, err := cache.NewPebbleBackend(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache at %s: %w", cfg.CachePath, err)
	}
	return cache.NewStore(backend), nil
}

func upstreamClient(name, baseURL string, cfg config.Config) *upstream.Client {
	return upstream.NewClient(name, baseURL,
		upstream.WithTimeout(cfg.HTTPTimeout),
		upstream.WithRateLimit(cfg.UpstreamRPS, cfg.UpstreamBurst),
		upstream.WithHTTP3(cfg.HTTP3),
	)
}

func locatorFor(cfg config.Config) weather.Locator {
	switch cfg.LocationMode {
	case config.LocationStatic:
		return weather.StaticLocator{
			Coordinates: weather.Coordinates{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
			Enabled:     true,
		}
	case config.LocationIP:
		return weather.NewIPLocator(upstreamClient("iplocate", cfg.IPLocateURL, cfg))
	default:
		return weather.StaticLocator{}
	}
}

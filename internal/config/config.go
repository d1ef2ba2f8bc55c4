// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Location modes.
const (
	LocationStatic = "static"
	LocationIP     = "ip"
	LocationOff    = "off"
)

// Config holds application configuration
type Config struct {
	// Providers
	BackendURL  string `yaml:"backend_url"`
	ForecastURL string `yaml:"forecast_url"`
	GeocodeURL  string `yaml:"geocode_url"`
	IPLocateURL string `yaml:"iplocate_url"`

	// Location
	LocationMode       string        `yaml:"location_mode"`
	Latitude           float64       `yaml:"latitude"`
	Longitude          float64       `yaml:"longitude"`
	GeolocationTimeout time.Duration `yaml:"geolocation_timeout"`

	// Upstream HTTP
	HTTPTimeout   time.Duration `yaml:"http_timeout"`
	HTTP3         bool          `yaml:"http3"`
	UpstreamRPS   float64       `yaml:"upstream_rps"`
	UpstreamBurst int           `yaml:"upstream_burst"`

	// Storage
	CacheBackend   string `yaml:"cache_backend"` // "pebble" (default) or "memory"
	CachePath      string `yaml:"cache_path"`
	FallbackDriver string `yaml:"fallback_driver"` // "sqlite", "postgres" or "none"
	FallbackDSN    string `yaml:"fallback_dsn"`

	// Selections
	DefaultCategory    string        `yaml:"default_category"`
	DefaultCountry     string        `yaml:"default_country"`
	DefaultSport       string        `yaml:"default_sport"`
	DefaultLeague      string        `yaml:"default_league"`
	SportsPollInterval time.Duration `yaml:"sports_poll_interval"`

	// Prefetch
	PrefetchCategories []string      `yaml:"prefetch_categories"`
	PrefetchCountries  []string      `yaml:"prefetch_countries"`
	PrefetchInterval   time.Duration `yaml:"prefetch_interval"`

	// Server
	Host               string `yaml:"host"`
	Port               string `yaml:"port"`
	APIRateLimitPerMin int    `yaml:"api_rate_limit_per_min"`
	APIRateBurst       int    `yaml:"api_rate_burst"`
}

var AppConfig Config

// SetDefaults registers default values for every key.
func SetDefaults() {
	viper.SetDefault("backend_url", "http://localhost:8000")
	viper.SetDefault("forecast_url", "https://api.open-meteo.com")
	viper.SetDefault("geocode_url", "https://api.bigdatacloud.net")
	viper.SetDefault("iplocate_url", "http://ip-api.com")

	viper.SetDefault("location_mode", LocationIP)
	viper.SetDefault("latitude", 0.0)
	viper.SetDefault("longitude", 0.0)
	viper.SetDefault("geolocation_timeout", 10*time.Second)

	viper.SetDefault("http_timeout", 15*time.Second)
	viper.SetDefault("http3", false)
	viper.SetDefault("upstream_rps", 5.0)
	viper.SetDefault("upstream_burst", 10)

	viper.SetDefault("cache_backend", "pebble")
	viper.SetDefault("cache_path", "newsdeck-cache")
	viper.SetDefault("fallback_driver", "none")
	viper.SetDefault("fallback_dsn", "")

	viper.SetDefault("default_category", "Top Stories")
	viper.SetDefault("default_country", "")
	viper.SetDefault("default_sport", "soccer")
	viper.SetDefault("default_league", "")
	viper.SetDefault("sports_poll_interval", 30*time.Second)

	viper.SetDefault("prefetch_categories", []string{"top", "world", "business", "technology", "sports"})
	viper.SetDefault("prefetch_countries", []string{""})
	viper.SetDefault("prefetch_interval", time.Duration(0))

	viper.SetDefault("host", "localhost")
	viper.SetDefault("port", "8080")
	viper.SetDefault("api_rate_limit_per_min", 120)
	viper.SetDefault("api_rate_burst", 30)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		BackendURL:  viper.GetString("backend_url"),
		ForecastURL: viper.GetString("forecast_url"),
		GeocodeURL:  viper.GetString("geocode_url"),
		IPLocateURL: viper.GetString("iplocate_url"),

		LocationMode:       strings.ToLower(strings.TrimSpace(viper.GetString("location_mode"))),
		Latitude:           viper.GetFloat64("latitude"),
		Longitude:          viper.GetFloat64("longitude"),
		GeolocationTimeout: viper.GetDuration("geolocation_timeout"),

		HTTPTimeout:   viper.GetDuration("http_timeout"),
		HTTP3:         viper.GetBool("http3"),
		UpstreamRPS:   viper.GetFloat64("upstream_rps"),
		UpstreamBurst: viper.GetInt("upstream_burst"),

		CacheBackend:   strings.ToLower(viper.GetString("cache_backend")),
		CachePath:      viper.GetString("cache_path"),
		FallbackDriver: strings.ToLower(viper.GetString("fallback_driver")),
		FallbackDSN:    viper.GetString("fallback_dsn"),

		DefaultCategory:    viper.GetString("default_category"),
		DefaultCountry:     viper.GetString("default_country"),
		DefaultSport:       viper.GetString("default_sport"),
		DefaultLeague:      viper.GetString("default_league"),
		SportsPollInterval: viper.GetDuration("sports_poll_interval"),

		PrefetchCategories: viper.GetStringSlice("prefetch_categories"),
		PrefetchCountries:  viper.GetStringSlice("prefetch_countries"),
		PrefetchInterval:   viper.GetDuration("prefetch_interval"),

		Host:               viper.GetString("host"),
		Port:               viper.GetString("port"),
		APIRateLimitPerMin: viper.GetInt("api_rate_limit_per_min"),
		APIRateBurst:       viper.GetInt("api_rate_burst"),
	}

	// Normalize
	switch AppConfig.LocationMode {
	case LocationStatic, LocationIP, LocationOff:
	default:
		AppConfig.LocationMode = LocationOff
	}
	if AppConfig.CacheBackend == "" {
		AppConfig.CacheBackend = "pebble"
	}
	if AppConfig.FallbackDriver == "sqlite3" {
		AppConfig.FallbackDriver = "sqlite"
	}
	if AppConfig.FallbackDriver == "" {
		AppConfig.FallbackDriver = "none"
	}
	if AppConfig.SportsPollInterval <= 0 {
		AppConfig.SportsPollInterval = 30 * time.Second
	}
}

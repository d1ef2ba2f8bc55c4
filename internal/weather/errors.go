// file: internal/weather/errors.go
// version: 1.0.0
// guid: 61d70dde-61c1-40e6-8a2c-31881f98eb25

package weather

import (
	"errors"
	"fmt"

	"github.com/jdfalk/newsdeck/internal/upstream"
)

var (
	// ErrLocationTimeout means the locator did not answer within the bound.
	ErrLocationTimeout = fmt.Errorf("location request: %w", upstream.ErrTimeout)
	// ErrLocationDenied means location access is turned off.
	ErrLocationDenied = fmt.Errorf("location denied: %w", upstream.ErrPermission)
	// ErrLocationUnsupported means no location source can answer.
	ErrLocationUnsupported = fmt.Errorf("location unsupported: %w", upstream.ErrPermission)
)

// GeocodeError wraps a reverse-geocoding failure.
type GeocodeError struct{ Err error }

func (e *GeocodeError) Error() string { return "reverse geocode failed: " + e.Err.Error() }
func (e *GeocodeError) Unwrap() error { return e.Err }

// ForecastError wraps a forecast failure.
type ForecastError struct{ Err error }

func (e *ForecastError) Error() string { return "forecast failed: " + e.Err.Error() }
func (e *ForecastError) Unwrap() error { return e.Err }

// Placeholder labels shown when a stage fails.
const (
	LabelLocationOff         = "Location off"
	LabelLocationUnavailable = "Location unavailable"
	LabelUnknownLocation     = "Unknown location"
	LabelAllowLocation       = "Allow location to show weather"
	LabelNotSupported        = "Location not supported"
	LabelTimedOut            = "Location request timed out"
	LabelWeatherUnavailable  = "Weather unavailable"
)

// locatePlaceholders returns the location and condition labels for a
// failed locate stage.
func locatePlaceholders(err error) (location, condition string) {
	switch {
	case errors.Is(err, ErrLocationDenied):
		return LabelLocationOff, LabelAllowLocation
	case errors.Is(err, upstream.ErrTimeout):
		return LabelLocationUnavailable, LabelTimedOut
	default:
		return LabelLocationUnavailable, LabelNotSupported
	}
}

// message returns the short error line shown beside the degraded summary.
func message(err error) string {
	switch {
	case errors.Is(err, ErrLocationDenied):
		return "Location access is turned off"
	case errors.Is(err, ErrLocationTimeout):
		return "Location request timed out"
	case errors.Is(err, ErrLocationUnsupported):
		return "Location is not available on this device"
	}
	var geo *GeocodeError
	if errors.As(err, &geo) {
		return "Could not resolve your location name"
	}
	var fc *ForecastError
	if errors.As(err, &fc) {
		return "Could not load the forecast: " + upstream.Describe(fc.Err)
	}
	return upstream.Describe(err)
}

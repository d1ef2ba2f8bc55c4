// file: internal/weather/client.go
// version: 1.1.0
// guid: 5e229291-aa66-41b0-baa9-31c789e8bd43

// Package weather runs the locate, reverse-geocode and forecast pipeline and
// keeps a degraded but never blank weather view.
package weather

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/upstream"
	"golang.org/x/sync/errgroup"
)

// DefaultLocateTimeout bounds the locate stage.
const DefaultLocateTimeout = 10 * time.Second

// View is the weather state handed to presentation code.
type View struct {
	Summary   models.WeatherSummary `json:"summary"`
	Loading   bool                  `json:"loading"`
	Error     string                `json:"error,omitempty"`
	Cached    bool                  `json:"cached"`
	UpdatedAt time.Time             `json:"updatedAt,omitempty"`
}

// Listener receives every accepted view change.
type Listener func(View)

// Client owns the weather view.
type Client struct {
	locator    Locator
	geocoder   Geocoder
	forecaster Forecaster
	cache      *cache.Slot[models.WeatherSummary]
	sup        *operations.Supervisor
	timeout    time.Duration

	mu        sync.Mutex
	view      View
	listeners []Listener
}

// NewClient wires the pipeline stages. A nil supervisor gets a private one.
func NewClient(locator Locator, geocoder Geocoder, forecaster Forecaster, store *cache.Store, sup *operations.Supervisor) *Client {
	if sup == nil {
		sup = operations.NewSupervisor()
	}
	return &Client{
		locator:    locator,
		geocoder:   geocoder,
		forecaster: forecaster,
		cache:      cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL),
		sup:        sup,
		timeout:    DefaultLocateTimeout,
		view:       View{Summary: models.NewWeatherSummary()},
	}
}

// SetLocateTimeout overrides the locate bound.
func (c *Client) SetLocateTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// OnChange registers a listener.
func (c *Client) OnChange(l Listener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, l)
	c.mu.Unlock()
}

// Current returns the current view.
func (c *Client) Current() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Start refreshes in the background, superseding any refresh in flight.
func (c *Client) Start() operations.Generation {
	return c.sup.Start(operations.SlotWeather, func(ctx context.Context, gen operations.Generation) error {
		c.run(ctx, gen)
		return ctx.Err()
	})
}

// Refresh runs the pipeline inline and returns the resulting view.
func (c *Client) Refresh(ctx context.Context) View {
	gen := c.sup.Next(operations.SlotWeather)
	return c.run(ctx, gen)
}

func (c *Client) run(ctx context.Context, gen operations.Generation) View {
	if entry, ok := c.cache.Read(cache.WeatherKey); ok {
		c.apply(gen, func(v *View) {
			v.Summary = entry.Value
			v.Cached = true
			v.Loading = true
			v.UpdatedAt = entry.StoredAt
		})
	} else {
		c.apply(gen, func(v *View) { v.Loading = true })
	}

	coords, err := c.locate(ctx)
	if err != nil {
		if upstream.IsCanceled(err) || ctx.Err() != nil {
			return c.finishCanceled(gen)
		}
		log.Printf("[WARN] weather: locate failed: %v", err)
		location, condition := locatePlaceholders(err)
		view, _ := c.apply(gen, func(v *View) {
			v.Summary.Location = location
			v.Summary.Condition = condition
			v.Loading = false
			v.Error = message(err)
		})
		return view
	}

	var (
		place           Place
		forecast        Forecast
		geoErr, castErr error
		g               errgroup.Group
	)
	g.Go(func() error {
		p, err := c.geocoder.ReverseGeocode(ctx, coords)
		if err != nil {
			geoErr = &GeocodeError{Err: err}
			return nil
		}
		place = p
		return nil
	})
	g.Go(func() error {
		f, err := c.forecaster.Forecast(ctx, coords)
		if err != nil {
			castErr = &ForecastError{Err: err}
			return nil
		}
		forecast = f
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil || upstream.IsCanceled(geoErr) || upstream.IsCanceled(castErr) {
		return c.finishCanceled(gen)
	}

	view, _ := c.apply(gen, func(v *View) {
		v.Loading = false
		v.Error = ""
		if castErr == nil {
			fresh := summarize(forecast)
			fresh.Location = v.Summary.Location
			v.Summary = fresh
			v.Cached = false
			v.UpdatedAt = time.Now()
		} else {
			v.Summary.Condition = LabelWeatherUnavailable
		}
		if geoErr == nil {
			v.Summary.Location = place.Label()
		} else {
			v.Summary.Location = LabelUnknownLocation
		}
		if err := errors.Join(geoErr, castErr); err != nil {
			log.Printf("[WARN] weather: %v", err)
			if geoErr != nil {
				v.Error = message(geoErr)
			}
			if castErr != nil {
				v.Error = message(castErr)
			}
			return
		}
		// Cache writes happen under the view lock, in acceptance order.
		c.cache.Write(cache.WeatherKey, v.Summary)
	})
	return view
}

// finishCanceled clears the loading flag without reporting an error.
func (c *Client) finishCanceled(gen operations.Generation) View {
	view, _ := c.apply(gen, func(v *View) { v.Loading = false })
	return view
}

// locate enforces the timeout even when the locator ignores its context.
func (c *Client) locate(ctx context.Context) (Coordinates, error) {
	lctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		coords Coordinates
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		coords, err := c.locator.Locate(lctx)
		ch <- result{coords, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil && ctx.Err() == nil && errors.Is(lctx.Err(), context.DeadlineExceeded) {
			return Coordinates{}, ErrLocationTimeout
		}
		return r.coords, r.err
	case <-lctx.Done():
		if err := ctx.Err(); err != nil {
			return Coordinates{}, upstream.Classify(err)
		}
		return Coordinates{}, ErrLocationTimeout
	}
}

// apply mutates the view only if gen is still current and notifies listeners.
// It returns the view as left by this call, or the current view when gen was
// superseded.
func (c *Client) apply(gen operations.Generation, mutate func(*View)) (View, bool) {
	c.mu.Lock()
	if !c.sup.IsCurrent(operations.SlotWeather, gen) {
		view := c.view
		c.mu.Unlock()
		metrics.IncResultDiscarded(operations.SlotWeather)
		return view, false
	}
	mutate(&c.view)
	view := c.view
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		l(view)
	}
	return view, true
}

func summarize(f Forecast) models.WeatherSummary {
	label, icon := Describe(f.Code)
	s := models.WeatherSummary{
		Temp:      f.Current,
		Condition: label,
		Icon:      icon,
		High:      f.High,
		Low:       f.Low,
		Weekly:    make([]models.WeeklyForecastItem, 0, len(f.Daily)),
	}
	for _, d := range f.Daily {
		dayLabel, dayIcon := Describe(d.Code)
		s.Weekly = append(s.Weekly, models.WeeklyForecastItem{
			Day:       weekday(d.Date),
			Date:      d.Date,
			High:      d.High,
			Low:       d.Low,
			Condition: dayLabel,
			Icon:      dayIcon,
		})
	}
	return s
}

func weekday(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Weekday().String()[:3]
}

// file: internal/weather/client_test.go
// version: 1.1.0
// guid: ea031643-cdf5-4068-a71b-e192c6677269

package weather

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type locatorFunc func(ctx context.Context) (Coordinates, error)

func (f locatorFunc) Locate(ctx context.Context) (Coordinates, error) { return f(ctx) }

type geocoderFunc func(ctx context.Context, c Coordinates) (Place, error)

func (f geocoderFunc) ReverseGeocode(ctx context.Context, c Coordinates) (Place, error) {
	return f(ctx, c)
}

type forecasterFunc func(ctx context.Context, c Coordinates) (Forecast, error)

func (f forecasterFunc) Forecast(ctx context.Context, c Coordinates) (Forecast, error) {
	return f(ctx, c)
}

var paris = Coordinates{Latitude: 48.8566, Longitude: 2.3522}

func okGeocoder() Geocoder {
	return geocoderFunc(func(ctx context.Context, c Coordinates) (Place, error) {
		return Place{Locality: "Lyon", CountryCode: "FR"}, nil
	})
}

func okForecaster() Forecaster {
	return forecasterFunc(func(ctx context.Context, c Coordinates) (Forecast, error) {
		return Forecast{
			Current: 21.4, Code: 2, High: 24, Low: 12,
			Daily: []DailyForecast{
				{Date: "2026-10-19", Code: 61, High: 24, Low: 12},
				{Date: "2026-10-20", Code: 200, High: models.Unknown(), Low: 10},
			},
		}, nil
	})
}

type recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *recorder) listen(v View) {
	r.mu.Lock()
	r.views = append(r.views, v)
	r.mu.Unlock()
}

func (r *recorder) all() []View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]View(nil), r.views...)
}

func seedCache(store *cache.Store) {
	slot := cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL)
	summary := models.NewWeatherSummary()
	summary.Location = "Paris"
	summary.Temp = 18
	summary.High = 20
	summary.Low = 11
	summary.Condition = "Clear"
	summary.Icon = IconSunny
	slot.Write(cache.WeatherKey, summary)
}

func TestRefresh_Success(t *testing.T) {
	store := cache.NewMemoryStore()
	c := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, okGeocoder(), okForecaster(), store, nil)

	view := c.Refresh(context.Background())
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	assert.Equal(t, "Lyon, FR", view.Summary.Location)
	assert.Equal(t, "Partly cloudy", view.Summary.Condition)
	assert.Equal(t, IconPartlyCloudy, view.Summary.Icon)
	assert.Equal(t, models.Measure(21.4), view.Summary.Temp)
	require.Len(t, view.Summary.Weekly, 2)
	assert.Equal(t, "Mon", view.Summary.Weekly[0].Day)
	assert.Equal(t, "Rain", view.Summary.Weekly[0].Condition)
	assert.Equal(t, "Unknown", view.Summary.Weekly[1].Condition)
	assert.False(t, view.Summary.Weekly[1].High.Known())

	entry, ok := cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL).Read(cache.WeatherKey)
	require.True(t, ok, "success overwrites the cache")
	assert.Equal(t, "Lyon, FR", entry.Value.Location)
}

func TestRefresh_DeniedKeepsCachedReadings(t *testing.T) {
	store := cache.NewMemoryStore()
	seedCache(store)
	c := NewClient(StaticLocator{Enabled: false}, okGeocoder(), okForecaster(), store, nil)
	rec := &recorder{}
	c.OnChange(rec.listen)

	view := c.Refresh(context.Background())

	views := rec.all()
	require.GreaterOrEqual(t, len(views), 2)
	assert.Equal(t, "Paris", views[0].Summary.Location, "cached summary is surfaced first")
	assert.Equal(t, models.Measure(18), views[0].Summary.Temp)
	assert.True(t, views[0].Loading)

	assert.Equal(t, LabelAllowLocation, view.Summary.Condition)
	assert.Equal(t, LabelLocationOff, view.Summary.Location)
	assert.Equal(t, models.Measure(18), view.Summary.Temp)
	assert.Equal(t, models.Measure(20), view.Summary.High)
	assert.Equal(t, models.Measure(11), view.Summary.Low)
	assert.NotEmpty(t, view.Error)
	assert.False(t, view.Loading)
}

func TestRefresh_LocateTimeoutIgnoringContext(t *testing.T) {
	hung := make(chan struct{})
	defer close(hung)
	locator := locatorFunc(func(ctx context.Context) (Coordinates, error) {
		<-hung
		return paris, nil
	})
	c := NewClient(locator, okGeocoder(), okForecaster(), cache.NewMemoryStore(), nil)
	c.SetLocateTimeout(30 * time.Millisecond)

	start := time.Now()
	view := c.Refresh(context.Background())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, LabelLocationUnavailable, view.Summary.Location)
	assert.Equal(t, LabelTimedOut, view.Summary.Condition)
	assert.False(t, view.Summary.Temp.Known(), "no data is invented")
}

func TestRefresh_Unsupported(t *testing.T) {
	locator := locatorFunc(func(ctx context.Context) (Coordinates, error) {
		return Coordinates{}, ErrLocationUnsupported
	})
	c := NewClient(locator, okGeocoder(), okForecaster(), cache.NewMemoryStore(), nil)
	view := c.Refresh(context.Background())
	assert.Equal(t, LabelNotSupported, view.Summary.Condition)
	assert.ErrorIs(t, ErrLocationUnsupported, upstream.ErrPermission)
}

func TestRefresh_StageFailuresDegradeIndependently(t *testing.T) {
	failing := errors.New("boom")
	store := cache.NewMemoryStore()

	geoFail := NewClient(StaticLocator{Coordinates: paris, Enabled: true},
		geocoderFunc(func(ctx context.Context, c Coordinates) (Place, error) { return Place{}, failing }),
		okForecaster(), store, nil)
	view := geoFail.Refresh(context.Background())
	assert.Equal(t, LabelUnknownLocation, view.Summary.Location)
	assert.Equal(t, "Partly cloudy", view.Summary.Condition)
	assert.NotEmpty(t, view.Error)
	_, cached := cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL).Read(cache.WeatherKey)
	assert.False(t, cached, "partial results are not cached")

	seedCache(store)
	castFail := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, okGeocoder(),
		forecasterFunc(func(ctx context.Context, c Coordinates) (Forecast, error) { return Forecast{}, failing }),
		store, nil)
	view = castFail.Refresh(context.Background())
	assert.Equal(t, "Lyon, FR", view.Summary.Location)
	assert.Equal(t, LabelWeatherUnavailable, view.Summary.Condition)
	assert.Equal(t, models.Measure(18), view.Summary.Temp)
}

func TestRefresh_GeocodeAndForecastRunConcurrently(t *testing.T) {
	var inflight, peak atomic.Int32
	track := func() func() {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return func() { inflight.Add(-1) }
	}
	geo := geocoderFunc(func(ctx context.Context, c Coordinates) (Place, error) {
		defer track()()
		return Place{Locality: "Lyon"}, nil
	})
	cast := forecasterFunc(func(ctx context.Context, c Coordinates) (Forecast, error) {
		defer track()()
		return Forecast{Current: 1, Code: 0}, nil
	})
	c := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, geo, cast, cache.NewMemoryStore(), nil)
	c.Refresh(context.Background())
	assert.Equal(t, int32(2), peak.Load())
}

func TestRefresh_SupersededResultIsDiscarded(t *testing.T) {
	sup := operations.NewSupervisor()
	defer sup.Shutdown(time.Second)

	release := make(chan struct{})
	var calls atomic.Int32
	cast := forecasterFunc(func(ctx context.Context, c Coordinates) (Forecast, error) {
		if calls.Add(1) == 1 {
			<-release
			return Forecast{Current: 1, Code: 95}, nil
		}
		return Forecast{Current: 2, Code: 0}, nil
	})
	c := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, okGeocoder(), cast, cache.NewMemoryStore(), sup)

	done := make(chan View)
	go func() { done <- c.Refresh(context.Background()) }()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	second := c.Refresh(context.Background())
	assert.Equal(t, "Clear", second.Summary.Condition)

	close(release)
	<-done
	assert.Equal(t, "Clear", c.Current().Summary.Condition, "late result from the first refresh is dropped")
	assert.Equal(t, models.Measure(2), c.Current().Summary.Temp)
}

func TestRefresh_CacheKeepsAcceptedSummaryWhenSuperseded(t *testing.T) {
	store := cache.NewMemoryStore()
	seedCache(store)

	var casts atomic.Int32
	forecaster := forecasterFunc(func(ctx context.Context, c Coordinates) (Forecast, error) {
		if casts.Add(1) == 1 {
			return okForecaster().Forecast(ctx, c)
		}
		return Forecast{}, upstream.ErrTransport
	})
	c := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, okGeocoder(), forecaster, store, nil)

	// A second refresh starts as soon as the first one is accepted.
	var nested atomic.Bool
	c.OnChange(func(v View) {
		if !v.Loading && v.Summary.Temp == 21.4 && !nested.Swap(true) {
			c.Refresh(context.Background())
		}
	})

	view := c.Refresh(context.Background())
	require.True(t, nested.Load())
	assert.Equal(t, models.Measure(21.4), view.Summary.Temp)
	assert.Equal(t, "Lyon, FR", view.Summary.Location)

	entry, ok := cache.NewSlot[models.WeatherSummary](store, cache.WeatherSlot, cache.WeatherTTL).Read(cache.WeatherKey)
	require.True(t, ok)
	assert.Equal(t, models.Measure(21.4), entry.Value.Temp, "the accepted forecast stays cached")
	assert.Equal(t, "Lyon, FR", entry.Value.Location)

	current := c.Current()
	assert.Equal(t, LabelWeatherUnavailable, current.Summary.Condition)
	assert.Equal(t, models.Measure(21.4), current.Summary.Temp)
}

func TestRefresh_CanceledIsSilent(t *testing.T) {
	store := cache.NewMemoryStore()
	seedCache(store)
	locator := locatorFunc(func(ctx context.Context) (Coordinates, error) {
		<-ctx.Done()
		return Coordinates{}, ctx.Err()
	})
	c := NewClient(locator, okGeocoder(), okForecaster(), store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	view := c.Refresh(ctx)
	assert.Empty(t, view.Error)
	assert.False(t, view.Loading)
	assert.Equal(t, "Paris", view.Summary.Location)
}

func TestStart_RunsInBackground(t *testing.T) {
	sup := operations.NewSupervisor()
	defer sup.Shutdown(time.Second)
	c := NewClient(StaticLocator{Coordinates: paris, Enabled: true}, okGeocoder(), okForecaster(), cache.NewMemoryStore(), sup)

	c.Start()
	<-sup.Done(operations.SlotWeather)
	assert.Equal(t, "Lyon, FR", c.Current().Summary.Location)
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		code  int
		label string
		icon  string
	}{
		{0, "Clear", IconSunny},
		{1, "Partly cloudy", IconPartlyCloudy},
		{3, "Overcast", IconCloudy},
		{45, "Fog", IconFog},
		{48, "Fog", IconFog},
		{46, "Unknown", IconCloudy},
		{51, "Drizzle", IconRainy},
		{57, "Drizzle", IconRainy},
		{63, "Rain", IconRainy},
		{75, "Snow", IconSnowy},
		{81, "Rain showers", IconRainy},
		{86, "Snow showers", IconSnowy},
		{95, "Thunderstorm", IconThunder},
		{99, "Thunderstorm", IconThunder},
		{UnknownCode, "Unknown", IconCloudy},
	}
	for _, tc := range cases {
		label, icon := Describe(tc.code)
		assert.Equal(t, tc.label, label, "code %d", tc.code)
		assert.Equal(t, tc.icon, icon, "code %d", tc.code)
	}
}

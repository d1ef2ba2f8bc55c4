// file: internal/weather/providers_test.go
// version: 1.0.0
// guid: f5b43ee6-266d-489f-ac92-f2fd5644239c

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jdfalk/newsdeck/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, path, body string) *upstream.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return upstream.NewClient("test", server.URL)
}

func TestOpenMeteo_Forecast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/v1/forecast", r.URL.Path)
		assert.Equal(t, "48.8566", q.Get("latitude"))
		assert.Equal(t, "5", q.Get("forecast_days"))
		_, _ = w.Write([]byte(`{
			"current": {"temperature_2m": 17.3, "weather_code": 3},
			"daily": {
				"time": ["2026-10-19", "2026-10-20"],
				"weather_code": [61, null],
				"temperature_2m_max": [19.1, null],
				"temperature_2m_min": [9.4]
			}
		}`))
	}))
	defer server.Close()

	f, err := NewOpenMeteo(upstream.NewClient("open-meteo", server.URL)).Forecast(context.Background(), paris)
	require.NoError(t, err)
	assert.InDelta(t, 17.3, float64(f.Current), 0.001)
	assert.Equal(t, 3, f.Code)
	assert.InDelta(t, 19.1, float64(f.High), 0.001)
	require.Len(t, f.Daily, 2)
	assert.Equal(t, UnknownCode, f.Daily[1].Code)
	assert.False(t, f.Daily[1].High.Known())
	assert.False(t, f.Daily[1].Low.Known())
}

func TestOpenMeteo_MissingCurrent(t *testing.T) {
	client := serve(t, "/v1/forecast", `{"daily":{}}`)
	_, err := NewOpenMeteo(client).Forecast(context.Background(), paris)
	assert.ErrorIs(t, err, upstream.ErrParse)

	client = serve(t, "/v1/forecast", `{"current":{"weather_code":0}}`)
	f, err := NewOpenMeteo(client).Forecast(context.Background(), paris)
	require.NoError(t, err)
	assert.False(t, f.Current.Known(), "missing temperature is unknown, not zero")
}

func TestBigDataCloud_ReverseGeocode(t *testing.T) {
	client := serve(t, "/data/reverse-geocode-client", `{"city":"","locality":"Montmartre","principalSubdivision":"Île-de-France","countryName":"France","countryCode":"fr"}`)
	place, err := NewBigDataCloud(client).ReverseGeocode(context.Background(), paris)
	require.NoError(t, err)
	assert.Equal(t, "Montmartre, FR", place.Label())

	empty := serve(t, "/data/reverse-geocode-client", `{}`)
	_, err = NewBigDataCloud(empty).ReverseGeocode(context.Background(), paris)
	assert.ErrorIs(t, err, upstream.ErrParse)
}

func TestIPLocator(t *testing.T) {
	ok := serve(t, "/json", `{"status":"success","lat":51.5,"lon":-0.12}`)
	coords, err := NewIPLocator(ok).Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Coordinates{Latitude: 51.5, Longitude: -0.12}, coords)

	fail := serve(t, "/json", `{"status":"fail","message":"private range"}`)
	_, err = NewIPLocator(fail).Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationUnsupported)
	assert.ErrorIs(t, err, upstream.ErrPermission)
}

func TestStaticLocator(t *testing.T) {
	_, err := StaticLocator{}.Locate(context.Background())
	assert.ErrorIs(t, err, ErrLocationDenied)

	coords, err := StaticLocator{Coordinates: paris, Enabled: true}.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, paris, coords)
}

func TestPlaceLabel(t *testing.T) {
	assert.Equal(t, "Bavaria", Place{Region: "Bavaria"}.Label())
	assert.Equal(t, "Germany", Place{Country: "Germany"}.Label())
	assert.Equal(t, "", Place{}.Label())
}

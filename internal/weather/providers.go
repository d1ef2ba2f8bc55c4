// file: internal/weather/providers.go
// version: 1.0.0
// guid: 89813f4d-6518-42d7-918a-c1aa60c247bd

package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/upstream"
)

// Coordinates is a device position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place is the result of reverse geocoding.
type Place struct {
	Locality    string `json:"locality"`
	Region      string `json:"region"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
}

// Label returns the display name for the place.
func (p Place) Label() string {
	name := p.Locality
	if name == "" {
		name = p.Region
	}
	if name == "" {
		return p.Country
	}
	if p.CountryCode != "" {
		return name + ", " + p.CountryCode
	}
	return name
}

// DailyForecast is one day of the outlook.
type DailyForecast struct {
	Date string
	Code int
	High models.Measure
	Low  models.Measure
}

// Forecast is current conditions plus a short daily outlook.
type Forecast struct {
	Current models.Measure
	Code    int
	High    models.Measure
	Low     models.Measure
	Daily   []DailyForecast
}

// Locator resolves the device position.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Geocoder turns coordinates into a place name.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c Coordinates) (Place, error)
}

// Forecaster fetches conditions for coordinates.
type Forecaster interface {
	Forecast(ctx context.Context, c Coordinates) (Forecast, error)
}

// StaticLocator answers with configured coordinates.
type StaticLocator struct {
	Coordinates Coordinates
	Enabled     bool
}

func (s StaticLocator) Locate(ctx context.Context) (Coordinates, error) {
	if !s.Enabled {
		return Coordinates{}, ErrLocationDenied
	}
	if err := ctx.Err(); err != nil {
		return Coordinates{}, upstream.Classify(err)
	}
	return s.Coordinates, nil
}

// IPLocator estimates the position from the public IP address (ip-api.com format).
type IPLocator struct {
	api *upstream.Client
}

// NewIPLocator creates a locator against baseURL.
func NewIPLocator(api *upstream.Client) *IPLocator {
	return &IPLocator{api: api}
}

func (l *IPLocator) Locate(ctx context.Context) (Coordinates, error) {
	var resp struct {
		Status  string   `json:"status"`
		Message string   `json:"message"`
		Lat     *float64 `json:"lat"`
		Lon     *float64 `json:"lon"`
	}
	if err := l.api.GetJSON(ctx, "/json", nil, &resp); err != nil {
		return Coordinates{}, err
	}
	if resp.Status != "success" || resp.Lat == nil || resp.Lon == nil {
		if resp.Message != "" {
			return Coordinates{}, fmt.Errorf("%w: %s", ErrLocationUnsupported, resp.Message)
		}
		return Coordinates{}, ErrLocationUnsupported
	}
	return Coordinates{Latitude: *resp.Lat, Longitude: *resp.Lon}, nil
}

// BigDataCloud is a reverse geocoder using the BigDataCloud client API.
type BigDataCloud struct {
	api *upstream.Client
}

// NewBigDataCloud creates a reverse geocoder.
func NewBigDataCloud(api *upstream.Client) *BigDataCloud {
	return &BigDataCloud{api: api}
}

func (b *BigDataCloud) ReverseGeocode(ctx context.Context, c Coordinates) (Place, error) {
	var resp struct {
		City                 string `json:"city"`
		Locality             string `json:"locality"`
		PrincipalSubdivision string `json:"principalSubdivision"`
		CountryName          string `json:"countryName"`
		CountryCode          string `json:"countryCode"`
	}
	if err := b.api.GetJSON(ctx, "/data/reverse-geocode-client", coordQuery(c, url.Values{"localityLanguage": {"en"}}), &resp); err != nil {
		return Place{}, err
	}
	place := Place{
		Locality:    firstNonEmpty(resp.City, resp.Locality),
		Region:      resp.PrincipalSubdivision,
		Country:     resp.CountryName,
		CountryCode: strings.ToUpper(resp.CountryCode),
	}
	if place.Label() == "" {
		return Place{}, fmt.Errorf("%w: reverse geocode returned no place name", upstream.ErrParse)
	}
	return place, nil
}

// OpenMeteo is a forecaster using the Open-Meteo forecast API.
type OpenMeteo struct {
	api  *upstream.Client
	days int
}

// NewOpenMeteo creates a forecaster returning a 5-day outlook.
func NewOpenMeteo(api *upstream.Client) *OpenMeteo {
	return &OpenMeteo{api: api, days: 5}
}

func (o *OpenMeteo) Forecast(ctx context.Context, c Coordinates) (Forecast, error) {
	query := coordQuery(c, url.Values{
		"current":       {"temperature_2m,weather_code"},
		"daily":         {"weather_code,temperature_2m_max,temperature_2m_min"},
		"forecast_days": {strconv.Itoa(o.days)},
		"timezone":      {"auto"},
	})
	var resp struct {
		Current *struct {
			Temperature *models.Measure `json:"temperature_2m"`
			Code        *int            `json:"weather_code"`
		} `json:"current"`
		Daily struct {
			Time []string         `json:"time"`
			Code []*int           `json:"weather_code"`
			Max  []models.Measure `json:"temperature_2m_max"`
			Min  []models.Measure `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := o.api.GetJSON(ctx, "/v1/forecast", query, &resp); err != nil {
		return Forecast{}, err
	}
	if resp.Current == nil {
		return Forecast{}, fmt.Errorf("%w: forecast has no current conditions", upstream.ErrParse)
	}

	f := Forecast{
		Current: measureOrUnknown(resp.Current.Temperature),
		Code:    codeOrUnknown(resp.Current.Code),
		High:    models.Unknown(),
		Low:     models.Unknown(),
		Daily:   make([]DailyForecast, 0, len(resp.Daily.Time)),
	}
	for i, date := range resp.Daily.Time {
		day := DailyForecast{Date: date, Code: UnknownCode, High: models.Unknown(), Low: models.Unknown()}
		if i < len(resp.Daily.Code) {
			day.Code = codeOrUnknown(resp.Daily.Code[i])
		}
		if i < len(resp.Daily.Max) {
			day.High = resp.Daily.Max[i]
		}
		if i < len(resp.Daily.Min) {
			day.Low = resp.Daily.Min[i]
		}
		f.Daily = append(f.Daily, day)
	}
	if len(f.Daily) > 0 {
		f.High, f.Low = f.Daily[0].High, f.Daily[0].Low
	}
	return f, nil
}

func coordQuery(c Coordinates, extra url.Values) url.Values {
	q := url.Values{
		"latitude":  {strconv.FormatFloat(c.Latitude, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(c.Longitude, 'f', 4, 64)},
	}
	for k, v := range extra {
		q[k] = v
	}
	return q
}

func measureOrUnknown(m *models.Measure) models.Measure {
	if m == nil {
		return models.Unknown()
	}
	return *m
}

func codeOrUnknown(code *int) int {
	if code == nil {
		return UnknownCode
	}
	return *code
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var (
	_ Locator    = StaticLocator{}
	_ Locator    = (*IPLocator)(nil)
	_ Geocoder   = (*BigDataCloud)(nil)
	_ Forecaster = (*OpenMeteo)(nil)
)

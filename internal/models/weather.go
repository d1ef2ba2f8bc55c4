// file: internal/models/weather.go
// version: 1.0.0
// guid: 8d93e8f4-83ed-4d6a-909a-d1fc9995ac0a

package models

import "encoding/json"

// WeeklyForecastItem is one day of the multi-day outlook.
type WeeklyForecastItem struct {
	Day       string  `json:"day"`
	Date      string  `json:"date,omitempty"`
	High      Measure `json:"high"`
	Low       Measure `json:"low"`
	Condition string  `json:"condition"`
	Icon      string  `json:"icon"`
}

// WeatherSummary is the normalized current-conditions view.
type WeatherSummary struct {
	Location  string               `json:"location"`
	Temp      Measure              `json:"temp"`
	Condition string               `json:"condition"`
	Icon      string               `json:"icon"`
	High      Measure              `json:"high"`
	Low       Measure              `json:"low"`
	Weekly    []WeeklyForecastItem `json:"weekly"`
}

// NewWeatherSummary returns a summary with every reading unknown.
func NewWeatherSummary() WeatherSummary {
	return WeatherSummary{
		Temp:   Unknown(),
		High:   Unknown(),
		Low:    Unknown(),
		Icon:   "cloudy",
		Weekly: []WeeklyForecastItem{},
	}
}

// UnmarshalJSON treats missing readings as unknown rather than zero.
func (w *WeatherSummary) UnmarshalJSON(data []byte) error {
	type plain WeatherSummary
	decoded := plain(NewWeatherSummary())
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*w = WeatherSummary(decoded)
	if w.Weekly == nil {
		w.Weekly = []WeeklyForecastItem{}
	}
	return nil
}

// UnmarshalJSON treats missing readings as unknown rather than zero.
func (d *WeeklyForecastItem) UnmarshalJSON(data []byte) error {
	type plain WeeklyForecastItem
	decoded := plain{High: Unknown(), Low: Unknown()}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*d = WeeklyForecastItem(decoded)
	return nil
}

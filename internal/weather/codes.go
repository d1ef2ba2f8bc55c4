// file: internal/weather/codes.go
// version: 1.0.0
// guid: e04b6b50-132d-45e7-b90f-cab3f2ebaefd

package weather

// Icons in the closed condition vocabulary.
const (
	IconSunny        = "sunny"
	IconPartlyCloudy = "partly-cloudy"
	IconCloudy       = "cloudy"
	IconFog          = "fog"
	IconRainy        = "rainy"
	IconSnowy        = "snowy"
	IconThunder      = "thunder"
)

// UnknownCode marks a missing weather code.
const UnknownCode = -1

type codeRange struct {
	from, to int
	label    string
	icon     string
}

// WMO weather interpretation codes.
var codeRanges = []codeRange{
	{0, 0, "Clear", IconSunny},
	{1, 2, "Partly cloudy", IconPartlyCloudy},
	{3, 3, "Overcast", IconCloudy},
	{45, 45, "Fog", IconFog},
	{48, 48, "Fog", IconFog},
	{51, 57, "Drizzle", IconRainy},
	{61, 67, "Rain", IconRainy},
	{71, 77, "Snow", IconSnowy},
	{80, 82, "Rain showers", IconRainy},
	{85, 86, "Snow showers", IconSnowy},
	{95, 99, "Thunderstorm", IconThunder},
}

// Describe maps a numeric weather code to a condition label and icon.
// Unmapped codes yield "Unknown" with the cloudy icon.
func Describe(code int) (label, icon string) {
	for _, r := range codeRanges {
		if code >= r.from && code <= r.to {
			return r.label, r.icon
		}
	}
	return "Unknown", IconCloudy
}

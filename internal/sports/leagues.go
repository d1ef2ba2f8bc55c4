// file: internal/sports/leagues.go
// version: 1.0.0
// guid: 7bf2ea47-9ecb-4de6-b064-f5fec92f98d9

package sports

import (
	"fmt"
	"sort"
	"strings"
)

// League is one competition within a sport.
type League struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SportInfo lists the leagues of a sport; the first is the default.
type SportInfo struct {
	Sport   string   `json:"sport"`
	Name    string   `json:"name"`
	Leagues []League `json:"leagues"`
}

// Default returns the sport's default league code.
func (s SportInfo) Default() string { return s.Leagues[0].Code }

// Has reports whether code is a league of this sport.
func (s SportInfo) Has(code string) bool {
	for _, l := range s.Leagues {
		if l.Code == code {
			return true
		}
	}
	return false
}

var catalogue = map[string]SportInfo{
	"soccer": {Sport: "soccer", Name: "Soccer", Leagues: []League{
		{"eng.1", "Premier League"},
		{"esp.1", "LaLiga"},
		{"ger.1", "Bundesliga"},
		{"ita.1", "Serie A"},
		{"fra.1", "Ligue 1"},
		{"usa.1", "MLS"},
		{"uefa.champions", "Champions League"},
	}},
	"basketball": {Sport: "basketball", Name: "Basketball", Leagues: []League{
		{"nba", "NBA"},
		{"wnba", "WNBA"},
		{"mens-college-basketball", "NCAA Men's Basketball"},
	}},
	"football": {Sport: "football", Name: "American Football", Leagues: []League{
		{"nfl", "NFL"},
		{"college-football", "NCAA Football"},
	}},
	"baseball": {Sport: "baseball", Name: "Baseball", Leagues: []League{
		{"mlb", "MLB"},
	}},
	"hockey": {Sport: "hockey", Name: "Hockey", Leagues: []League{
		{"nhl", "NHL"},
	}},
}

// DefaultSport is selected when nothing else is configured.
const DefaultSport = "soccer"

// Sports returns the catalogue sorted by sport key.
func Sports() []SportInfo {
	out := make([]SportInfo, 0, len(catalogue))
	for _, info := range catalogue {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sport < out[j].Sport })
	return out
}

// Lookup returns the catalogue entry for sport.
func Lookup(sport string) (SportInfo, bool) {
	info, ok := catalogue[strings.ToLower(strings.TrimSpace(sport))]
	return info, ok
}

// ResolveLeague returns league if it belongs to sport, otherwise the sport's
// default league.
func ResolveLeague(sport, league string) (string, error) {
	info, ok := Lookup(sport)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSport, sport)
	}
	league = strings.ToLower(strings.TrimSpace(league))
	if info.Has(league) {
		return league, nil
	}
	return info.Default(), nil
}

// Selection is the (sport, league) fetch key.
type Selection struct {
	Sport  string `json:"sport"`
	League string `json:"league"`
}

// NewSelection validates sport and resolves league against it.
func NewSelection(sport, league string) (Selection, error) {
	code, err := ResolveLeague(sport, league)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Sport: strings.ToLower(strings.TrimSpace(sport)), League: code}, nil
}

// CacheKey is the serialized selection.
func (s Selection) CacheKey() string {
	return "sports_" + s.Sport + "_" + s.League
}

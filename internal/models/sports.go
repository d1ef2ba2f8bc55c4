// file: internal/models/sports.go
// version: 1.0.0
// guid: f8a25c26-9834-49c6-b4f9-b4a32bba7b31

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// EventStatus describes the progress of a match.
type EventStatus struct {
	State       string `json:"state"`
	Detail      string `json:"detail"`
	ShortDetail string `json:"shortDetail"`
}

// Team is one side of a match or a standings row.
// Score is nil before the match starts.
type Team struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Logo         string `json:"logo,omitempty"`
	Score        *int   `json:"score"`
}

// UnmarshalJSON accepts a bare team name and scores given as numbers,
// numeric strings, empty strings or null.
func (t *Team) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Team{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*t = Team{Name: name}
		return nil
	}

	type plain Team
	var raw struct {
		plain
		Score json.RawMessage `json:"score"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Team(raw.plain)
	t.Score = parseScore(raw.Score)
	return nil
}

func parseScore(raw json.RawMessage) *int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	score := int(f)
	return &score
}

// SportsEvent is a single fixture in a scoreboard bucket.
type SportsEvent struct {
	ID     string      `json:"id,omitempty"`
	Name   string      `json:"name,omitempty"`
	Date   string      `json:"date,omitempty"`
	Status EventStatus `json:"status"`
	Home   Team        `json:"home"`
	Away   Team        `json:"away"`
}

// Scoreboard groups events into live, upcoming and recent buckets.
type Scoreboard struct {
	Sport     string        `json:"sport"`
	League    string        `json:"league"`
	Title     string        `json:"title,omitempty"`
	FetchedAt string        `json:"fetchedAt,omitempty"`
	Live      []SportsEvent `json:"live"`
	Upcoming  []SportsEvent `json:"upcoming"`
	Recent    []SportsEvent `json:"recent"`
}

// Stat is a single standings column value.
type Stat struct {
	Value   Measure `json:"value"`
	Display string  `json:"display"`
}

// UnmarshalJSON treats a missing value as unknown.
func (s *Stat) UnmarshalJSON(data []byte) error {
	type plain Stat
	decoded := plain{Value: Unknown()}
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*s = Stat(decoded)
	return nil
}

// StandingsEntry is one ranked row of a standings table.
type StandingsEntry struct {
	Rank  int             `json:"rank"`
	Team  Team            `json:"team"`
	Stats map[string]Stat `json:"stats"`
}

// StandingsTable is a named group of standings rows (conference, group, division).
type StandingsTable struct {
	Name    string           `json:"name"`
	Entries []StandingsEntry `json:"entries"`
}

// Standings is the standings payload for one league.
type Standings struct {
	Sport     string           `json:"sport"`
	League    string           `json:"league"`
	Title     string           `json:"title,omitempty"`
	FetchedAt string           `json:"fetchedAt,omitempty"`
	Tables    []StandingsTable `json:"tables"`
}

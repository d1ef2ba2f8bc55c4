// file: internal/models/models_test.go
// version: 1.0.0
// guid: 52402b36-ec60-4aac-8029-b6aa8ac85c3f

package models

import (
	"encoding/json"
	"math"
	"testing"
)

// TestMeasureJSON covers NaN encoding as null and tolerant decoding
func TestMeasureJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Measure `json:"a"`
		B Measure `json:"b"`
	}{A: Unknown(), B: 18.4})
	if err != nil {
		t.Fatalf("Failed to marshal measures: %v", err)
	}
	if string(data) != `{"a":null,"b":18.4}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	cases := map[string]bool{
		`null`:   false,
		`"12.5"`: true,
		`"n/a"`:  false,
		`7`:      true,
		`{}`:     false,
	}
	for input, known := range cases {
		var m Measure
		if err := json.Unmarshal([]byte(input), &m); err != nil {
			t.Fatalf("Unmarshal %s returned error: %v", input, err)
		}
		if m.Known() != known {
			t.Errorf("Unmarshal %s: expected known=%v, got %v", input, known, m.Known())
		}
	}
}

func TestMeasureString(t *testing.T) {
	if got := Unknown().String(); got != Placeholder {
		t.Errorf("Expected placeholder for NaN, got %q", got)
	}
	if got := Measure(17.6).String(); got != "18" {
		t.Errorf("Expected 18, got %q", got)
	}
	if got := Measure(0).String(); got != "0" {
		t.Errorf("Expected 0, got %q", got)
	}
}

func TestWeatherSummaryMissingFieldsAreUnknown(t *testing.T) {
	var w WeatherSummary
	if err := json.Unmarshal([]byte(`{"location":"Paris","temp":18}`), &w); err != nil {
		t.Fatalf("Failed to unmarshal summary: %v", err)
	}
	if w.Location != "Paris" || float64(w.Temp) != 18 {
		t.Errorf("Unexpected summary: %+v", w)
	}
	if !math.IsNaN(float64(w.High)) || !math.IsNaN(float64(w.Low)) {
		t.Errorf("Expected missing high/low to be NaN, got %v/%v", w.High, w.Low)
	}
	if w.Weekly == nil {
		t.Error("Expected weekly to be an empty slice")
	}
}

func TestTeamScoreDecoding(t *testing.T) {
	cases := []struct {
		input string
		want  *int
	}{
		{`{"name":"A","score":2}`, intPtr(2)},
		{`{"name":"A","score":"3"}`, intPtr(3)},
		{`{"name":"A","score":""}`, nil},
		{`{"name":"A","score":null}`, nil},
		{`{"name":"A"}`, nil},
	}
	for _, tc := range cases {
		var team Team
		if err := json.Unmarshal([]byte(tc.input), &team); err != nil {
			t.Fatalf("Unmarshal %s: %v", tc.input, err)
		}
		if team.Name != "A" {
			t.Errorf("Expected name A, got %q", team.Name)
		}
		switch {
		case tc.want == nil && team.Score != nil:
			t.Errorf("%s: expected nil score, got %d", tc.input, *team.Score)
		case tc.want != nil && (team.Score == nil || *team.Score != *tc.want):
			t.Errorf("%s: expected score %d, got %v", tc.input, *tc.want, team.Score)
		}
	}

	var bare Team
	if err := json.Unmarshal([]byte(`"Arsenal"`), &bare); err != nil {
		t.Fatalf("Unmarshal bare name: %v", err)
	}
	if bare.Name != "Arsenal" {
		t.Errorf("Expected Arsenal, got %q", bare.Name)
	}
}

func TestStatMissingValue(t *testing.T) {
	var entry StandingsEntry
	if err := json.Unmarshal([]byte(`{"rank":1,"team":"Arsenal","stats":{"points":{"display":"72"},"wins":{"value":22,"display":"22"}}}`), &entry); err != nil {
		t.Fatalf("Failed to unmarshal entry: %v", err)
	}
	if entry.Stats["points"].Value.Known() {
		t.Error("Expected missing points value to be unknown")
	}
	if float64(entry.Stats["wins"].Value) != 22 {
		t.Errorf("Expected 22 wins, got %v", entry.Stats["wins"].Value)
	}
}

func TestArticleEnsureID(t *testing.T) {
	a := Article{Title: "Hello", URL: "https://example.com/a"}
	b := Article{Title: "Different", URL: "https://example.com/a"}
	a.EnsureID()
	b.EnsureID()
	if a.ID == "" || a.ID != b.ID {
		t.Errorf("Expected equal deterministic ids, got %q and %q", a.ID, b.ID)
	}

	keep := Article{ID: "x1", URL: "https://example.com/a"}
	keep.EnsureID()
	if keep.ID != "x1" {
		t.Errorf("Expected existing id to be kept, got %q", keep.ID)
	}
}

func TestArticleIsCluster(t *testing.T) {
	var a Article
	if err := json.Unmarshal([]byte(`{"id":"1","title":"T","all_sources":[{"title":"s","url":"u","source":"BBC"}]}`), &a); err != nil {
		t.Fatalf("Failed to unmarshal article: %v", err)
	}
	if !a.IsCluster() {
		t.Error("Expected clustered article")
	}
	if (Article{}).IsCluster() {
		t.Error("Expected plain article not to be a cluster")
	}
}

func intPtr(v int) *int { return &v }

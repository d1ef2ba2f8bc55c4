// file: internal/news/category.go
// version: 1.0.0
// guid: e8a4f318-89f8-491b-83a9-91665c7a31e2

package news

import (
	"sort"
	"strings"
)

// DefaultCategory is used for labels the backend does not know.
const DefaultCategory = "top"

// TrendingCategory is the backend key for the trending label.
const TrendingCategory = "trending"

// categoryTable maps display labels (lowercased) to backend category keys.
var categoryTable = map[string]string{
	"for you":       DefaultCategory,
	"top stories":   DefaultCategory,
	"top":           DefaultCategory,
	"trending":      TrendingCategory,
	"world":         "world",
	"business":      "business",
	"politics":      "politics",
	"technology":    "technology",
	"tech":          "technology",
	"science":       "science",
	"health":        "health",
	"sports":        "sports",
	"entertainment": "entertainment",
}

// ResolveCategory translates a display label to the backend vocabulary.
func ResolveCategory(label string) string {
	if key, ok := categoryTable[strings.ToLower(strings.TrimSpace(label))]; ok {
		return key
	}
	return DefaultCategory
}

// Categories returns the distinct backend category keys, sorted.
func Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, key := range categoryTable {
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// NormalizeCountry returns a lowercase ISO 3166-1 alpha-2 code, or "" for a
// global feed.
func NormalizeCountry(country string) string {
	c := strings.ToLower(strings.TrimSpace(country))
	switch c {
	case "", "global", "all", "world":
		return ""
	}
	if len(c) != 2 || c[0] < 'a' || c[0] > 'z' || c[1] < 'a' || c[1] > 'z' {
		return ""
	}
	return c
}

// FeedKey identifies a distinct news result set.
type FeedKey struct {
	Category string `json:"category"`
	Country  string `json:"country,omitempty"`
}

// NewFeedKey resolves a display label and country into a key.
func NewFeedKey(label, country string) FeedKey {
	return FeedKey{Category: ResolveCategory(label), Country: NormalizeCountry(country)}
}

// CacheKey is the serialized key shared by the cache and the relational fallback.
func (k FeedKey) CacheKey() string {
	country := k.Country
	if country == "" {
		country = "global"
	}
	return "news_" + k.Category + "_" + country
}

// file: internal/feed/arrange.go
// version: 1.0.0
// guid: 11d7dddb-5328-45ab-9d5b-b03d8f5e56f1

package feed

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/jdfalk/newsdeck/internal/models"
)

// Mode is the display ordering of the feed.
type Mode string

// Sort modes.
const (
	ModeLatest   Mode = "latest"
	ModeTrending Mode = "trending"
)

// ParseMode accepts "latest" or "trending" in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLatest:
		return ModeLatest, nil
	case ModeTrending:
		return ModeTrending, nil
	}
	return "", fmt.Errorf("unknown sort mode %q", s)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var epoch = time.Unix(0, 0).UTC()

// PublishedTime parses an article timestamp. Unparseable values are the epoch.
func PublishedTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}

// SortLatest returns a copy ordered by publish time, newest first. Ties keep
// their input order.
func SortLatest(articles []models.Article) []models.Article {
	type keyed struct {
		article models.Article
		at      time.Time
	}
	items := make([]keyed, len(articles))
	for i, a := range articles {
		items[i] = keyed{a, PublishedTime(a.PublishedAt)}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].at.After(items[j].at) })

	out := make([]models.Article, len(items))
	for i, it := range items {
		out[i] = it.article
	}
	return out
}

// Shuffle returns a randomly ordered copy.
func Shuffle(articles []models.Article) []models.Article {
	out := append([]models.Article(nil), articles...)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Arrange applies mode to a raw set.
func Arrange(articles []models.Article, mode Mode) []models.Article {
	if mode == ModeTrending {
		return Shuffle(articles)
	}
	return SortLatest(articles)
}

// GroupSize is the number of articles per presentation group.
const GroupSize = 5

// Group is one presentation block: a lead item, up to three standard items
// and a wide item.
type Group struct {
	Lead     *models.Article  `json:"lead,omitempty"`
	Standard []models.Article `json:"standard"`
	Wide     *models.Article  `json:"wide,omitempty"`
}

// Groups chunks articles into presentation groups. A short final chunk fills
// lead then standard slots before wide.
func Groups(articles []models.Article) []Group {
	groups := make([]Group, 0, (len(articles)+GroupSize-1)/GroupSize)
	for start := 0; start < len(articles); start += GroupSize {
		end := min(start+GroupSize, len(articles))
		chunk := articles[start:end]
		g := Group{Standard: []models.Article{}}
		lead := chunk[0]
		g.Lead = &lead
		for i := 1; i < len(chunk) && i <= 3; i++ {
			g.Standard = append(g.Standard, chunk[i])
		}
		if len(chunk) == GroupSize {
			wide := chunk[4]
			g.Wide = &wide
		}
		groups = append(groups, g)
	}
	return groups
}

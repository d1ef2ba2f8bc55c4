// file: internal/feed/orchestrator.go
// version: 1.1.0
// guid: 14cfec89-3d93-4c75-adbd-1c3b33cadb1c

// Package feed owns the news selection, its sort order and the display set
// derived from the most recent accepted fetch.
package feed

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/search"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Fetcher loads one feed. news.Client satisfies it.
type Fetcher interface {
	FetchFeed(ctx context.Context, label, country string) news.FeedResult
}

// State is the feed view handed to presentation code.
type State struct {
	Selection news.FeedKey     `json:"selection"`
	Sort      Mode             `json:"sort"`
	Articles  []models.Article `json:"articles"`
	Origin    news.Origin      `json:"origin,omitempty"`
	Message   string           `json:"message,omitempty"`
	Loading   bool             `json:"loading"`
	StoredAt  time.Time        `json:"storedAt,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt,omitempty"`
}

// Listener receives every accepted state change.
type Listener func(State)

// Orchestrator coordinates feed fetches for the current selection.
type Orchestrator struct {
	fetcher Fetcher
	index   *search.Index
	sup     *operations.Supervisor

	mu        sync.Mutex
	selection news.FeedKey
	mode      Mode
	raw       []models.Article
	display   []models.Article
	origin    news.Origin
	message   string
	loading   bool
	storedAt  time.Time
	updatedAt time.Time
	listeners []Listener
}

// NewOrchestrator creates an orchestrator on the default selection in latest
// mode. index may be nil; a nil supervisor gets a private one.
func NewOrchestrator(fetcher Fetcher, index *search.Index, sup *operations.Supervisor) *Orchestrator {
	if sup == nil {
		sup = operations.NewSupervisor()
	}
	return &Orchestrator{
		fetcher:   fetcher,
		index:     index,
		sup:       sup,
		selection: news.NewFeedKey(news.DefaultCategory, ""),
		mode:      ModeLatest,
		raw:       []models.Article{},
		display:   []models.Article{},
	}
}

// OnChange registers a listener.
func (o *Orchestrator) OnChange(l Listener) {
	o.mu.Lock()
	o.listeners = append(o.listeners, l)
	o.mu.Unlock()
}

// State returns a snapshot of the current view.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

func (o *Orchestrator) stateLocked() State {
	return State{
		Selection: o.selection,
		Sort:      o.mode,
		Articles:  clone(o.display),
		Origin:    o.origin,
		Message:   o.message,
		Loading:   o.loading,
		StoredAt:  o.storedAt,
		UpdatedAt: o.updatedAt,
	}
}

// SetSelection switches category and country and starts a fetch for them.
// The previous fetch, if any, is canceled.
func (o *Orchestrator) SetSelection(label, country string) (news.FeedKey, operations.Generation) {
	key := news.NewFeedKey(label, country)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.selection = key
	return key, o.startLocked(key)
}

// Refresh starts a supervised fetch for the current selection.
func (o *Orchestrator) Refresh() operations.Generation {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked(o.selection)
}

// startLocked launches the fetch for key. Holding o.mu keeps the selection
// and the slot's current generation changing together.
func (o *Orchestrator) startLocked(key news.FeedKey) operations.Generation {
	return o.sup.Start(operations.SlotFeed, func(ctx context.Context, gen operations.Generation) error {
		o.fetch(ctx, gen, key)
		return ctx.Err()
	})
}

// Load fetches the current selection inline and returns the resulting state.
func (o *Orchestrator) Load(ctx context.Context) State {
	o.mu.Lock()
	key := o.selection
	gen := o.sup.Next(operations.SlotFeed)
	o.mu.Unlock()
	o.fetch(ctx, gen, key)
	return o.State()
}

func (o *Orchestrator) fetch(ctx context.Context, gen operations.Generation, key news.FeedKey) {
	o.apply(gen, key, func() { o.loading = true })

	res := o.fetcher.FetchFeed(ctx, key.Category, key.Country)
	if res.Canceled {
		o.apply(gen, key, func() { o.loading = false })
		return
	}

	accepted := o.apply(gen, key, func() {
		o.raw = res.Articles
		o.display = Arrange(res.Articles, o.mode)
		o.origin = res.Origin
		o.message = res.Message
		o.storedAt = res.StoredAt
		o.loading = false
		o.updatedAt = time.Now()
	})
	if !accepted {
		log.Printf("[DEBUG] feed: discarded result for %s", key.CacheKey())
		return
	}
	if o.index != nil && len(res.Articles) > 0 {
		if err := o.index.Add(res.Articles); err != nil {
			log.Printf("[WARN] feed: indexing %s failed: %v", key.CacheKey(), err)
		}
	}
}

// SetSort changes the display order. Choosing trending always reshuffles.
func (o *Orchestrator) SetSort(mode Mode) State {
	o.mu.Lock()
	o.mode = mode
	o.display = Arrange(o.raw, mode)
	state, listeners := o.stateLocked(), o.snapshotListeners()
	o.mu.Unlock()
	notify(listeners, state)
	return state
}

// Filter returns display articles whose title, description or source fuzzily
// contain query, in display order.
func (o *Orchestrator) Filter(query string) []models.Article {
	query = strings.TrimSpace(query)
	o.mu.Lock()
	display := clone(o.display)
	o.mu.Unlock()
	if query == "" {
		return display
	}

	out := make([]models.Article, 0, len(display))
	for _, a := range display {
		if fuzzy.MatchNormalizedFold(query, a.Title) ||
			fuzzy.MatchNormalizedFold(query, a.Description) ||
			fuzzy.MatchNormalizedFold(query, a.Source) {
			out = append(out, a)
		}
	}
	return out
}

// Search queries every article accepted so far, across selections.
func (o *Orchestrator) Search(query string, limit int) ([]models.Article, error) {
	if o.index == nil {
		return []models.Article{}, nil
	}
	return o.index.Search(query, limit)
}

// apply runs mutate under the lock only while gen is current for the feed
// slot and key is still the selection, then notifies listeners.
func (o *Orchestrator) apply(gen operations.Generation, key news.FeedKey, mutate func()) bool {
	o.mu.Lock()
	if !o.sup.IsCurrent(operations.SlotFeed, gen) || o.selection != key {
		o.mu.Unlock()
		metrics.IncResultDiscarded(operations.SlotFeed)
		return false
	}
	mutate()
	state, listeners := o.stateLocked(), o.snapshotListeners()
	o.mu.Unlock()
	notify(listeners, state)
	return true
}

func clone(articles []models.Article) []models.Article {
	return append(make([]models.Article, 0, len(articles)), articles...)
}

func (o *Orchestrator) snapshotListeners() []Listener {
	return append([]Listener(nil), o.listeners...)
}

func notify(listeners []Listener, s State) {
	for _, l := range listeners {
		l(s)
	}
}

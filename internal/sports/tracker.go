// file: internal/sports/tracker.go
// version: 1.1.0
// guid: 8f0d90e8-7959-412b-8783-a1592ca47f8b

package sports

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/upstream"
)

// DefaultPollInterval is how often the selected scoreboard is refreshed.
const DefaultPollInterval = 30 * time.Second

// State is the tracker view of the selected league.
type State struct {
	Selection      Selection               `json:"selection"`
	Title          string                  `json:"title,omitempty"`
	FetchedAt      string                  `json:"fetchedAt,omitempty"`
	Live           []models.SportsEvent    `json:"live"`
	Upcoming       []models.SportsEvent    `json:"upcoming"`
	Recent         []models.SportsEvent    `json:"recent"`
	Standings      []models.StandingsTable `json:"standings"`
	Loading        bool                    `json:"loading"`
	Error          string                  `json:"error,omitempty"`
	StandingsError string                  `json:"standingsError,omitempty"`
	UpdatedAt      time.Time               `json:"updatedAt,omitempty"`
}

// Listener receives every accepted state change.
type Listener func(State)

// Tracker polls the scoreboard of one selection at a time.
type Tracker struct {
	client   *Client
	sup      *operations.Supervisor
	interval time.Duration

	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewTracker creates a tracker. A nil supervisor gets a private one and a
// non-positive interval falls back to DefaultPollInterval.
func NewTracker(client *Client, sup *operations.Supervisor, interval time.Duration) *Tracker {
	if sup == nil {
		sup = operations.NewSupervisor()
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		client:   client,
		sup:      sup,
		interval: interval,
		state:    emptyState(Selection{}),
	}
}

// OnChange registers a listener.
func (t *Tracker) OnChange(l Listener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, l)
	t.mu.Unlock()
}

// Current returns the current state.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Select switches to sport and league. An empty or foreign league keeps the
// current league when it belongs to sport, otherwise the sport default is
// used. Any in-flight fetch for the previous selection is canceled and its
// result can no longer be applied.
func (t *Tracker) Select(sport, league string) (Selection, error) {
	if league == "" {
		if cur := t.Current().Selection; cur.League != "" {
			if info, ok := Lookup(sport); ok && info.Has(cur.League) {
				league = cur.League
			}
		}
	}
	sel, err := NewSelection(sport, league)
	if err != nil {
		return Selection{}, err
	}

	t.mu.Lock()
	t.state = emptyState(sel)
	t.state.Loading = true
	t.launchLocked(sel)
	snapshot, listeners := t.state, t.snapshotListeners()
	t.mu.Unlock()
	notify(listeners, snapshot)

	log.Printf("[INFO] sports: tracking %s/%s", sel.Sport, sel.League)
	return sel, nil
}

// Refresh cancels and reissues the fetches for the current selection.
func (t *Tracker) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.Selection.Sport == "" {
		return
	}
	t.launchLocked(t.state.Selection)
}

// Stop cancels polling.
func (t *Tracker) Stop() {
	t.sup.Cancel(operations.SlotSports)
	t.sup.Cancel(operations.SlotTable)
}

// launchLocked supersedes both slots and starts the fetches for sel. Holding
// t.mu keeps the selection and the slots' current generations changing
// together.
func (t *Tracker) launchLocked(sel Selection) {
	t.sup.StartPolling(operations.SlotSports, t.interval, func(ctx context.Context, gen operations.Generation) error {
		return t.pollScores(ctx, gen, sel)
	})
	t.sup.Start(operations.SlotTable, func(ctx context.Context, gen operations.Generation) error {
		return t.loadStandings(ctx, gen, sel)
	})
}

func (t *Tracker) pollScores(ctx context.Context, gen operations.Generation, sel Selection) error {
	board, err := t.client.FetchScoreboard(ctx, sel.Sport, sel.League)
	if err != nil {
		if upstream.IsCanceled(err) || ctx.Err() != nil {
			return nil
		}
		t.apply(operations.SlotSports, gen, sel, func(s *State) {
			s.Live, s.Upcoming, s.Recent = []models.SportsEvent{}, []models.SportsEvent{}, []models.SportsEvent{}
			s.Loading = false
			s.Error = upstream.Describe(err)
		})
		return err
	}
	t.apply(operations.SlotSports, gen, sel, func(s *State) {
		s.Title = board.Title
		s.FetchedAt = board.FetchedAt
		s.Live, s.Upcoming, s.Recent = board.Live, board.Upcoming, board.Recent
		s.Loading = false
		s.Error = ""
		s.UpdatedAt = time.Now()
	})
	return nil
}

func (t *Tracker) loadStandings(ctx context.Context, gen operations.Generation, sel Selection) error {
	standings, err := t.client.FetchStandings(ctx, sel.Sport, sel.League)
	if err != nil {
		if upstream.IsCanceled(err) || ctx.Err() != nil {
			return nil
		}
		t.apply(operations.SlotTable, gen, sel, func(s *State) {
			s.Standings = []models.StandingsTable{}
			s.StandingsError = upstream.Describe(err)
		})
		return err
	}
	t.apply(operations.SlotTable, gen, sel, func(s *State) {
		s.Standings = standings.Tables
		s.StandingsError = ""
	})
	return nil
}

// apply mutates the state only while gen is current for slot and sel is
// still the selection.
func (t *Tracker) apply(slot string, gen operations.Generation, sel Selection, mutate func(*State)) bool {
	t.mu.Lock()
	if !t.sup.IsCurrent(slot, gen) || t.state.Selection != sel {
		t.mu.Unlock()
		metrics.IncResultDiscarded(slot)
		return false
	}
	mutate(&t.state)
	snapshot, listeners := t.state, t.snapshotListeners()
	t.mu.Unlock()
	notify(listeners, snapshot)
	return true
}

func (t *Tracker) snapshotListeners() []Listener {
	return append([]Listener(nil), t.listeners...)
}

func notify(listeners []Listener, s State) {
	for _, l := range listeners {
		l(s)
	}
}

func emptyState(sel Selection) State {
	return State{
		Selection: sel,
		Live:      []models.SportsEvent{},
		Upcoming:  []models.SportsEvent{},
		Recent:    []models.SportsEvent{},
		Standings: []models.StandingsTable{},
	}
}

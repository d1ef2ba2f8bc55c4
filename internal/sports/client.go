// file: internal/sports/client.go
// version: 1.0.0
// guid: 4bda5f99-6a8d-4e97-a403-de2f7d526251

// Package sports fetches scoreboards and standings and keeps a polled view
// of the selected league.
package sports

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/upstream"
)

// MaxEventsPerBucket caps each scoreboard bucket.
const MaxEventsPerBucket = 6

// ErrUnknownSport is returned for sports outside the catalogue.
var ErrUnknownSport = errors.New("unknown sport")

// Client reads the backend sports endpoints.
type Client struct {
	api   *upstream.Client
	cache *cache.Slot[models.Scoreboard]
}

// NewClient creates a sports client. store may be nil.
func NewClient(api *upstream.Client, store *cache.Store) *Client {
	c := &Client{api: api}
	if store != nil {
		c.cache = cache.NewSlot[models.Scoreboard](store, cache.SportsSlot, cache.SportsTTL)
	}
	return c
}

// FetchScoreboard returns live, upcoming and recent events for a league.
func (c *Client) FetchScoreboard(ctx context.Context, sport, league string) (models.Scoreboard, error) {
	sel, err := NewSelection(sport, league)
	if err != nil {
		return emptyBoard(Selection{Sport: sport, League: league}), err
	}

	var board models.Scoreboard
	if err := c.api.GetJSON(ctx, "/sports/scoreboard/"+url.PathEscape(sel.Sport), url.Values{"league": {sel.League}}, &board); err != nil {
		return emptyBoard(sel), fmt.Errorf("scoreboard %s/%s: %w", sel.Sport, sel.League, err)
	}

	board.Sport, board.League = sel.Sport, sel.League
	board.Live = capEvents(board.Live)
	board.Upcoming = capEvents(board.Upcoming)
	board.Recent = capEvents(board.Recent)
	if c.cache != nil {
		c.cache.Write(sel.CacheKey(), board)
	}
	return board, nil
}

// Cached returns a scoreboard fetched within the last SportsTTL.
func (c *Client) Cached(sel Selection) (models.Scoreboard, bool) {
	if c.cache == nil {
		return models.Scoreboard{}, false
	}
	entry, ok := c.cache.Read(sel.CacheKey())
	return entry.Value, ok
}

// FetchStandings returns the standings tables for a league.
func (c *Client) FetchStandings(ctx context.Context, sport, league string) (models.Standings, error) {
	sel, err := NewSelection(sport, league)
	if err != nil {
		return models.Standings{Tables: []models.StandingsTable{}}, err
	}

	var standings models.Standings
	if err := c.api.GetJSON(ctx, "/sports/standings/"+url.PathEscape(sel.Sport), url.Values{"league": {sel.League}}, &standings); err != nil {
		return models.Standings{Sport: sel.Sport, League: sel.League, Tables: []models.StandingsTable{}},
			fmt.Errorf("standings %s/%s: %w", sel.Sport, sel.League, err)
	}
	standings.Sport, standings.League = sel.Sport, sel.League
	if standings.Tables == nil {
		standings.Tables = []models.StandingsTable{}
	}
	for i := range standings.Tables {
		if standings.Tables[i].Entries == nil {
			standings.Tables[i].Entries = []models.StandingsEntry{}
		}
	}
	return standings, nil
}

func emptyBoard(sel Selection) models.Scoreboard {
	return models.Scoreboard{
		Sport:    sel.Sport,
		League:   sel.League,
		Live:     []models.SportsEvent{},
		Upcoming: []models.SportsEvent{},
		Recent:   []models.SportsEvent{},
	}
}

func capEvents(events []models.SportsEvent) []models.SportsEvent {
	if len(events) > MaxEventsPerBucket {
		events = events[:MaxEventsPerBucket]
	}
	if events == nil {
		events = []models.SportsEvent{}
	}
	return events
}

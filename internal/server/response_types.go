// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

import (
	"github.com/jdfalk/newsdeck/internal/feed"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/operations"
)

// ListResponse provides a consistent format for list responses
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// FeedResponse is the feed view plus its presentation groups.
type FeedResponse struct {
	feed.State
	Groups []feed.Group `json:"groups"`
}

// TaskResponse acknowledges a supervised task.
type TaskResponse struct {
	Slot       string               `json:"slot"`
	Generation operations.Generation `json:"generation"`
}

// ArticleBodyResponse is a sanitized article with progressive disclosure.
type ArticleBodyResponse struct {
	news.ArticleBody
	Remaining int `json:"remaining"`
}

// SelectionRequest changes the feed selection.
type SelectionRequest struct {
	Category string `json:"category"`
	Country  string `json:"country"`
}

// SortRequest changes the feed sort mode.
type SortRequest struct {
	Sort string `json:"sort" binding:"required"`
}

// LeagueRequest changes the sports selection.
type LeagueRequest struct {
	Sport  string `json:"sport" binding:"required"`
	League string `json:"league"`
}

// SynthesizeRequest asks for a cited summary over an article's sources or an
// explicit source list.
type SynthesizeRequest struct {
	Query   string             `json:"query"`
	Article *models.Article    `json:"article,omitempty"`
	Sources []models.SourceRef `json:"sources,omitempty"`
}

// file: internal/server/handlers.go
// version: 1.0.0
// guid: 54ae99eb-c7b3-42e6-b16f-d5bc34a36e55

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/newsdeck/internal/feed"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/news"
	"github.com/jdfalk/newsdeck/internal/operations"
	"github.com/jdfalk/newsdeck/internal/sanitize"
	"github.com/jdfalk/newsdeck/internal/sports"
)

func (s *Server) getFeed(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	st := s.deps.Feed.State()
	c.JSON(http.StatusOK, FeedResponse{State: st, Groups: feed.Groups(st.Articles)})
}

func (s *Server) putFeedSelection(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	var req SelectionRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	key, gen := s.deps.Feed.SetSelection(req.Category, req.Country)
	RespondWithAccepted(c, gin.H{"selection": key, "generation": gen})
}

func (s *Server) putFeedSort(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	var req SortRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	mode, err := feed.ParseMode(req.Sort)
	if err != nil {
		RespondWithValidationError(c, "sort", "expected latest or trending")
		return
	}
	st := s.deps.Feed.SetSort(mode)
	c.JSON(http.StatusOK, FeedResponse{State: st, Groups: feed.Groups(st.Articles)})
}

func (s *Server) refreshFeed(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	gen := s.deps.Feed.Refresh()
	RespondWithAccepted(c, TaskResponse{Slot: operations.SlotFeed, Generation: gen})
}

func (s *Server) filterFeed(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "feed")
		return
	}
	items := s.deps.Feed.Filter(c.Query("q"))
	c.JSON(http.StatusOK, ListResponse{Items: items, Count: len(items)})
}

func (s *Server) search(c *gin.Context) {
	if s.deps.Feed == nil {
		RespondWithServiceUnavailable(c, "search")
		return
	}
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		RespondWithValidationError(c, "q", "required")
		return
	}
	items, err := s.deps.Feed.Search(q, ParseQueryInt(c, "limit", 0))
	if err != nil {
		RespondWithError(c, http.StatusInternalServerError, err.Error(), "SEARCH_FAILED")
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: items, Count: len(items)})
}

func (s *Server) readArticle(c *gin.Context) {
	if s.deps.News == nil {
		RespondWithServiceUnavailable(c, "news")
		return
	}
	var article models.Article
	if HandleBindError(c, c.ShouldBindJSON(&article)) {
		return
	}
	if strings.TrimSpace(article.URL) == "" && strings.TrimSpace(article.Description) == "" {
		RespondWithValidationError(c, "url", "url or description required")
		return
	}

	op := NewOperationLogger("readArticle", c)
	op.SetResourceID(article.URL)
	op.LogStart()

	body := s.deps.News.ReadArticle(c.Request.Context(), article)
	if body.Canceled {
		return
	}
	if body.Message != "" {
		op.LogWarning(body.Message)
	}

	visible := ParseQueryInt(c, "visible", len(body.Paragraphs))
	shown, remaining := sanitize.Disclose(body.Paragraphs, visible)
	body.Paragraphs = shown
	op.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, ArticleBodyResponse{ArticleBody: body, Remaining: remaining})
}

func (s *Server) synthesize(c *gin.Context) {
	if s.deps.News == nil {
		RespondWithServiceUnavailable(c, "news")
		return
	}
	var req SynthesizeRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	sources := req.Sources
	if len(sources) == 0 && req.Article != nil {
		sources = news.SourcesFor(*req.Article)
	}

	op := NewOperationLogger("synthesize", c)
	op.LogStart()
	out, err := s.deps.News.Synthesize(c.Request.Context(), req.Query, sources)
	if errors.Is(err, news.ErrEmptyQuery) {
		RespondWithValidationError(c, "query", "required")
		return
	}
	if err != nil {
		op.LogError(http.StatusBadGateway, err)
		RespondWithUpstreamError(c, err)
		return
	}
	op.LogSuccess(http.StatusOK)
	c.JSON(http.StatusOK, out)
}

func (s *Server) getWeather(c *gin.Context) {
	if s.deps.Weather == nil {
		RespondWithServiceUnavailable(c, "weather")
		return
	}
	c.JSON(http.StatusOK, s.deps.Weather.Current())
}

func (s *Server) refreshWeather(c *gin.Context) {
	if s.deps.Weather == nil {
		RespondWithServiceUnavailable(c, "weather")
		return
	}
	gen := s.deps.Weather.Start()
	RespondWithAccepted(c, TaskResponse{Slot: operations.SlotWeather, Generation: gen})
}

func (s *Server) getSports(c *gin.Context) {
	if s.deps.Sports == nil {
		RespondWithServiceUnavailable(c, "sports")
		return
	}
	c.JSON(http.StatusOK, s.deps.Sports.Current())
}

func (s *Server) listLeagues(c *gin.Context) {
	all := sports.Sports()
	c.JSON(http.StatusOK, ListResponse{Items: all, Count: len(all)})
}

func (s *Server) putSportsSelection(c *gin.Context) {
	if s.deps.Sports == nil {
		RespondWithServiceUnavailable(c, "sports")
		return
	}
	var req LeagueRequest
	if HandleBindError(c, c.ShouldBindJSON(&req)) {
		return
	}
	sel, err := s.deps.Sports.Select(req.Sport, req.League)
	if errors.Is(err, sports.ErrUnknownSport) {
		RespondWithValidationError(c, "sport", err.Error())
		return
	}
	if err != nil {
		RespondWithBadRequest(c, err.Error())
		return
	}
	RespondWithAccepted(c, gin.H{"selection": sel})
}

func (s *Server) refreshSports(c *gin.Context) {
	if s.deps.Sports == nil {
		RespondWithServiceUnavailable(c, "sports")
		return
	}
	if s.deps.Sports.Current().Selection.Sport == "" {
		RespondWithBadRequest(c, "no league selected")
		return
	}
	s.deps.Sports.Refresh()
	RespondWithAccepted(c, gin.H{"selection": s.deps.Sports.Current().Selection})
}

// file: internal/news/client.go
// version: 1.0.0
// guid: d8bf1372-28d9-45f2-aae3-a6debf4f263c

// Package news fetches ranked article lists and article bodies from the
// news backend. Public operations never fail: errors degrade to cached,
// mirrored or empty data plus a short message.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/jdfalk/newsdeck/internal/cache"
	"github.com/jdfalk/newsdeck/internal/metrics"
	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/jdfalk/newsdeck/internal/sanitize"
	"github.com/jdfalk/newsdeck/internal/upstream"
)

// Origin tells where a feed result came from.
type Origin string

const (
	OriginLive     Origin = "live"
	OriginCache    Origin = "cache"
	OriginFallback Origin = "fallback"
	OriginNone     Origin = "none"
)

// FeedReader is the read side of the relational fallback store.
type FeedReader interface {
	LookupFeed(ctx context.Context, key string) ([]models.Article, time.Time, error)
}

// FeedResult is the outcome of FetchFeed.
type FeedResult struct {
	Key      FeedKey          `json:"key"`
	Articles []models.Article `json:"articles"`
	Origin   Origin           `json:"origin"`
	StoredAt time.Time        `json:"storedAt,omitempty"`
	Message  string           `json:"message,omitempty"`
	Canceled bool             `json:"-"`
}

// ArticleBody is the readable text of one article.
type ArticleBody struct {
	Paragraphs      []string `json:"paragraphs"`
	FromDescription bool     `json:"fromDescription"`
	Blocked         bool     `json:"blocked,omitempty"`
	Message         string   `json:"message,omitempty"`
	Canceled        bool     `json:"-"`
}

// Synthesis is a backend-written summary across several sources.
type Synthesis struct {
	Content string             `json:"content"`
	Sources []models.SourceRef `json:"sources"`
}

// Client talks to the news backend.
type Client struct {
	api      *upstream.Client
	cache    *cache.Slot[[]models.Article]
	fallback FeedReader
}

// NewClient creates a news client. fallback may be nil.
func NewClient(api *upstream.Client, store *cache.Store, fallback FeedReader) *Client {
	return &Client{
		api:      api,
		cache:    cache.NewSlot[[]models.Article](store, cache.NewsSlot, cache.NewsTTL),
		fallback: fallback,
	}
}

// FetchFeed always asks the backend first; the backend owns freshness.
// On failure it falls back to the stale cache, then the relational store,
// then an empty list.
func (c *Client) FetchFeed(ctx context.Context, label, country string) FeedResult {
	key := NewFeedKey(label, country)
	query := url.Values{"category": {key.Category}}
	if key.Country != "" {
		query.Set("country", key.Country)
	}

	var raw json.RawMessage
	err := c.api.PostJSON(ctx, "/news/refresh", query, nil, &raw)
	var articles []models.Article
	if err == nil {
		articles, err = decodeArticles(raw)
	}
	if err == nil {
		c.cache.Write(key.CacheKey(), articles)
		metrics.IncFeedOrigin(string(OriginLive))
		return FeedResult{Key: key, Articles: articles, Origin: OriginLive}
	}

	if upstream.IsCanceled(err) {
		return FeedResult{Key: key, Articles: []models.Article{}, Origin: OriginNone, Canceled: true}
	}
	log.Printf("[WARN] news: live fetch for %s failed: %v", key.CacheKey(), err)
	msg := upstream.Describe(err)

	if entry, ok := c.cache.ReadStale(key.CacheKey()); ok {
		metrics.IncFeedOrigin(string(OriginCache))
		return FeedResult{
			Key:      key,
			Articles: prepare(entry.Value),
			Origin:   OriginCache,
			StoredAt: entry.StoredAt,
			Message:  msg + ". Showing saved stories.",
		}
	}

	if c.fallback != nil {
		mirrored, updatedAt, ferr := c.fallback.LookupFeed(ctx, key.CacheKey())
		switch {
		case ferr == nil:
			metrics.IncFeedOrigin(string(OriginFallback))
			return FeedResult{
				Key:      key,
				Articles: prepare(mirrored),
				Origin:   OriginFallback,
				StoredAt: updatedAt,
				Message:  msg + ". Showing archived stories.",
			}
		case upstream.IsCanceled(ferr) || ctx.Err() != nil:
			return FeedResult{Key: key, Articles: []models.Article{}, Origin: OriginNone, Canceled: true}
		default:
			log.Printf("[DEBUG] news: fallback lookup for %s: %v", key.CacheKey(), ferr)
		}
	}

	metrics.IncFeedOrigin(string(OriginNone))
	return FeedResult{Key: key, Articles: []models.Article{}, Origin: OriginNone, Message: msg}
}

// decodeArticles accepts a bare array or an {"articles": [...]} envelope.
func decodeArticles(raw json.RawMessage) ([]models.Article, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return prepare(nil), nil
	}
	var articles []models.Article
	if raw[0] == '{' {
		var envelope struct {
			Articles []models.Article `json:"articles"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, upstream.Classify(err)
		}
		return prepare(envelope.Articles), nil
	}
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, upstream.Classify(err)
	}
	return prepare(articles), nil
}

// prepare drops untitled entries and assigns missing ids.
func prepare(in []models.Article) []models.Article {
	out := make([]models.Article, 0, len(in))
	for _, a := range in {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		a.EnsureID()
		out = append(out, a)
	}
	return out
}

// ReadArticle fetches and sanitizes the full text of an article. Bot walls,
// empty extractions and failures degrade to the article's description.
func (c *Client) ReadArticle(ctx context.Context, article models.Article) ArticleBody {
	if strings.TrimSpace(article.URL) == "" {
		return describe(article, "")
	}

	var resp struct {
		Content string `json:"content"`
	}
	err := c.api.PostJSON(ctx, "/news/read", nil, map[string]string{"url": article.URL}, &resp)
	if err != nil {
		if upstream.IsCanceled(err) {
			return ArticleBody{Paragraphs: []string{}, Canceled: true}
		}
		log.Printf("[WARN] news: read %s failed: %v", article.URL, err)
		return describe(article, upstream.Describe(err))
	}

	if err := sanitize.Check(resp.Content); err != nil {
		body := describe(article, upstream.Describe(err))
		body.Blocked = true
		return body
	}
	paragraphs := sanitize.Clean(resp.Content, article.Title)
	if len(paragraphs) == 0 {
		return describe(article, "")
	}
	return ArticleBody{Paragraphs: paragraphs}
}

func describe(article models.Article, message string) ArticleBody {
	paragraphs := []string{}
	if d := strings.TrimSpace(article.Description); d != "" {
		paragraphs = append(paragraphs, d)
	}
	return ArticleBody{Paragraphs: paragraphs, FromDescription: true, Message: message}
}

// ErrEmptyQuery is returned by Synthesize for a blank query.
var ErrEmptyQuery = errors.New("synthesis query is empty")

// Synthesize asks the backend to write a cited summary over sources.
func (c *Client) Synthesize(ctx context.Context, query string, sources []models.SourceRef) (Synthesis, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Synthesis{}, ErrEmptyQuery
	}

	type sourceIn struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Source  string `json:"source"`
		Snippet string `json:"snippet"`
	}
	body := struct {
		Query   string     `json:"query"`
		Sources []sourceIn `json:"sources,omitempty"`
	}{Query: query}
	for _, s := range sources {
		body.Sources = append(body.Sources, sourceIn{Title: s.Title, URL: s.URL, Source: s.Source, Snippet: s.Snippet})
	}

	var out Synthesis
	if err := c.api.PostJSON(ctx, "/news/synthesize", nil, body, &out); err != nil {
		return Synthesis{}, fmt.Errorf("synthesize %q: %w", query, err)
	}
	if out.Sources == nil {
		out.Sources = []models.SourceRef{}
	}
	return out, nil
}

// SourcesFor converts a clustered article into synthesis sources.
func SourcesFor(article models.Article) []models.SourceRef {
	if article.IsCluster() {
		return article.AllSources
	}
	return []models.SourceRef{{
		Title:   article.Title,
		URL:     article.URL,
		Source:  article.Source,
		Snippet: article.Description,
	}}
}

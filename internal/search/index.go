// file: internal/search/index.go
// version: 1.0.0
// guid: e5409eaf-957c-4038-955d-a8c839605600

// Package search keeps an in-memory full text index over every article the
// feed has accepted, across selections.
package search

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/jdfalk/newsdeck/internal/models"
)

// DefaultLimit caps search results when the caller passes no limit.
const DefaultLimit = 20

type document struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source"`
	Category    string `json:"category"`
}

// Index is a goroutine-safe article index.
type Index struct {
	idx bleve.Index

	mu       sync.RWMutex
	articles map[string]models.Article
}

// NewIndex creates an empty in-memory index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(bleve.NewIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	return &Index{idx: idx, articles: make(map[string]models.Article)}, nil
}

// Add indexes articles, replacing earlier copies with the same id.
// Articles without an id are skipped.
func (i *Index) Add(articles []models.Article) error {
	batch := i.idx.NewBatch()
	added := make(map[string]models.Article, len(articles))
	for _, a := range articles {
		if a.ID == "" {
			continue
		}
		doc := document{Title: a.Title, Description: a.Description, Source: a.Source, Category: a.Category}
		if err := batch.Index(a.ID, doc); err != nil {
			return fmt.Errorf("index article %s: %w", a.ID, err)
		}
		added[a.ID] = a
	}
	if batch.Size() == 0 {
		return nil
	}
	if err := i.idx.Batch(batch); err != nil {
		return fmt.Errorf("index batch: %w", err)
	}

	i.mu.Lock()
	for id, a := range added {
		i.articles[id] = a
	}
	i.mu.Unlock()
	log.Printf("[DEBUG] search: indexed %d articles", len(added))
	return nil
}

// Search returns articles matching query ordered by relevance.
func (i *Index) Search(query string, limit int) ([]models.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Article{}, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := bleve.NewMatchQuery(query)
	q.SetFuzziness(1)
	res, err := i.idx.Search(bleve.NewSearchRequestOptions(q, limit, 0, false))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]models.Article, 0, len(res.Hits))
	for _, hit := range res.Hits {
		if a, ok := i.articles[hit.ID]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// Count returns the number of indexed articles.
func (i *Index) Count() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.articles)
}

// Close releases the index.
func (i *Index) Close() error {
	return i.idx.Close()
}

// file: internal/models/article.go
// version: 1.0.0
// guid: 10f7a749-d934-4cf5-b168-9e9b2a2f1a88

package models

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// SourceRef identifies one publisher behind a clustered story.
type SourceRef struct {
	Title         string `json:"title,omitempty"`
	URL           string `json:"url,omitempty"`
	Source        string `json:"source,omitempty"`
	Snippet       string `json:"snippet,omitempty"`
	CitationIndex int    `json:"citation_index,omitempty"`
}

// Article is a single news item as served by the backend.
type Article struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	PublishedAt string      `json:"publishedAt,omitempty"`
	Category    string      `json:"category,omitempty"`
	Source      string      `json:"source,omitempty"`
	URL         string      `json:"url,omitempty"`
	AllSources  []SourceRef `json:"all_sources,omitempty"`
}

// IsCluster reports whether the article aggregates several publishers.
func (a Article) IsCluster() bool {
	return len(a.AllSources) > 0
}

// EnsureID assigns a deterministic id derived from url or title when missing.
func (a *Article) EnsureID() {
	if strings.TrimSpace(a.ID) != "" {
		return
	}
	seed := strings.TrimSpace(a.URL)
	if seed == "" {
		seed = strings.ToLower(strings.TrimSpace(a.Title)) + "|" + a.PublishedAt
	}
	sum := sha1.Sum([]byte(seed))
	a.ID = "art_" + hex.EncodeToString(sum[:8])
}

// file: internal/search/index_test.go
// version: 1.0.0
// guid: 3fa94233-bcdd-4bc0-a53f-9764ab06b2d5

package search

import (
	"testing"

	"github.com/jdfalk/newsdeck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestIndex_AddAndSearch(t *testing.T) {
	idx := newIndex(t)
	require.NoError(t, idx.Add([]models.Article{
		{ID: "a1", Title: "Central bank holds interest rates", Description: "Markets steady", Category: "business"},
		{ID: "a2", Title: "Storm batters coastline", Description: "Heavy rain and wind", Category: "world"},
		{Title: "no id is skipped"},
	}))
	assert.Equal(t, 2, idx.Count())

	hits, err := idx.Search("storm", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a2", hits[0].ID)

	hits, err = idx.Search("intrest", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1, "single typo still matches")
	assert.Equal(t, "a1", hits[0].ID)
}

func TestIndex_ReplacesById(t *testing.T) {
	idx := newIndex(t)
	require.NoError(t, idx.Add([]models.Article{{ID: "a1", Title: "Old headline"}}))
	require.NoError(t, idx.Add([]models.Article{{ID: "a1", Title: "Old headline updated", Source: "Wire"}}))
	assert.Equal(t, 1, idx.Count())

	hits, err := idx.Search("headline", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Wire", hits[0].Source)
}

func TestIndex_EmptyQuery(t *testing.T) {
	idx := newIndex(t)
	hits, err := idx.Search("   ", 5)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

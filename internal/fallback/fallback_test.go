package fallback_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/trendpulse-api/internal/fallback"
)

func TestLists(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)

	articles := fallback.Articles(now)
	trending := fallback.Trending(now)
	require.Len(t, articles, 3)
	require.Len(t, trending, 3)
	assert.NotEqual(t, articles[0].Title, trending[0].Title)
	assert.Equal(t, "fallback-1", articles[0].ID)
	assert.Equal(t, "trending-1", trending[0].ID)

	for _, a := range append(articles, trending...) {
		assert.Equal(t, "#", a.URL)
		assert.Equal(t, "TrendPulse", a.Source)
		assert.Equal(t, "2024-05-01T12:30:00Z", a.PublishedAt)
		assert.NotEmpty(t, a.Title)
		assert.NotEmpty(t, a.Image)
	}
}

func TestLists_AreFreshCopies(t *testing.T) {
	now := time.Now()
	a := fallback.Articles(now)
	a[0].Title = "changed"
	assert.NotEqual(t, "changed", fallback.Articles(now)[0].Title)
}

func TestSearch_Empty(t *testing.T) {
	got := fallback.Search(time.Now())
	require.NotNil(t, got)
	require.Empty(t, got)
}

package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nitesh/trendpulse-api/internal/cache"
)

func TestKeyString(t *testing.T) {
	testCases := []struct {
		name string
		key  cache.Key
		want string
	}{
		{name: "articles all", key: cache.ArticlesKey("", 1, 20), want: "articles?category=all&limit=20&page=1"},
		{name: "articles category", key: cache.ArticlesKey("Tech", 2, 50), want: "articles?category=Tech&limit=50&page=2"},
		{name: "search", key: cache.SearchKey("go lang", "publishedAt", "", "", 1, 20), want: "search?limit=20&page=1&q=go+lang&sortBy=publishedAt"},
		{name: "search dates", key: cache.SearchKey("ai", "relevancy", "2024-01-01", "2024-02-01", 3, 10), want: "search?from=2024-01-01&limit=10&page=3&q=ai&sortBy=relevancy&to=2024-02-01"},
		{name: "trending", key: cache.TrendingKey(), want: "trending"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.key.String())
		})
	}
}

func TestKeyString_NoSeparatorCollisions(t *testing.T) {
	a := cache.SearchKey("a&page=2", "publishedAt", "", "", 1, 20)
	b := cache.SearchKey("a", "publishedAt", "", "", 2, 20)
	assert.NotEqual(t, a.String(), b.String())

	c := cache.SearchKey("x_y", "publishedAt", "", "", 1, 20)
	d := cache.SearchKey("x", "y_publishedAt", "", "", 1, 20)
	assert.NotEqual(t, c.String(), d.String())
}

func TestKeyString_Deterministic(t *testing.T) {
	k := cache.SearchKey("ai", "relevancy", "2024-01-01", "", 1, 20)
	assert.Equal(t, k.String(), k.String())
	assert.Equal(t, k.String(), cache.SearchKey("ai", "relevancy", "2024-01-01", "", 1, 20).String())
}

// Package fallback provides the canned articles served when the news
// provider cannot be reached.
package fallback

import (
	"time"

	"github.com/nitesh/trendpulse-api/pkg/models"
)

// SourceName marks fallback articles as our own content.
const SourceName = "TrendPulse"

// Message accompanies every fallback response.
const Message = "Using cached data due to API unavailability"

type seed struct {
	id, title, summary, imageText, category, author string
}

var articleSeeds = []seed{
	{"fallback-1", "Breaking: Technology News Update", "Latest developments in the tech world continue to shape our digital future.", "Tech+News", "Technology", "Tech Reporter"},
	{"fallback-2", "Business Market Analysis", "Current market trends and business insights for today's economy.", "Business+News", "Business", "Business Analyst"},
	{"fallback-3", "Sports Highlights Today", "Catch up on the latest sports news and highlights from around the world.", "Sports+News", "Sports", "Sports Reporter"},
}

var trendingSeeds = []seed{
	{"trending-1", "🔥 Trending: AI Revolution Continues", "Artificial Intelligence is reshaping industries at an unprecedented pace.", "AI+News", "Technology", "AI Reporter"},
	{"trending-2", "🚀 Space Exploration Milestone", "New discoveries in space exploration capture global attention.", "Space+News", "Science", "Science Reporter"},
	{"trending-3", "💼 Global Economy Update", "Market fluctuations and economic indicators show interesting patterns.", "Economy+News", "Business", "Business Reporter"},
}

// Articles returns the general fallback list stamped with now.
func Articles(now time.Time) []models.Article {
	return build(articleSeeds, now)
}

// Trending returns the trending fallback list stamped with now.
func Trending(now time.Time) []models.Article {
	return build(trendingSeeds, now)
}

// Search has no canned content.
func Search(time.Time) []models.Article {
	return []models.Article{}
}

func build(seeds []seed, now time.Time) []models.Article {
	ts := now.UTC().Format(time.RFC3339)
	out := make([]models.Article, len(seeds))
	for i, s := range seeds {
		out[i] = models.Article{
			ID:          s.id,
			Title:       s.title,
			Summary:     s.summary,
			Image:       "https://via.placeholder.com/400x200?text=" + s.imageText,
			Category:    s.category,
			URL:         "#",
			PublishedAt: ts,
			Author:      s.author,
			Source:      SourceName,
		}
	}
	return out
}

// Package transform maps news provider records onto models.Article.
package transform

import (
	"encoding/base64"

	"github.com/nitesh/trendpulse-api/pkg/models"
)

const (
	RemovedTitle       = "[Removed]"
	PlaceholderImage   = "https://via.placeholder.com/400x200?text=No+Image"
	NoSummary          = "No summary available"
	DefaultCategory    = "General"
	UnknownAuthor      = "Unknown"
	UnknownSource      = "Unknown Source"
	contentSummaryRune = 150
	idLength           = 16
)

// Articles drops unusable records and maps the rest. It never returns nil.
func Articles(raw []models.RawArticle) []models.Article {
	out := make([]models.Article, 0, len(raw))
	for _, r := range raw {
		title := str(r.Title)
		if title == "" || title == RemovedTitle {
			continue
		}
		out = append(out, Article(r))
	}
	return out
}

// Article maps a single record, filling defaults for missing fields.
func Article(r models.RawArticle) models.Article {
	url := str(r.URL)
	publishedAt := str(r.PublishedAt)

	var sourceName string
	if r.Source != nil {
		sourceName = str(r.Source.Name)
	}

	return models.Article{
		ID:          ArticleID(url, publishedAt),
		Title:       str(r.Title),
		Summary:     summary(str(r.Description), str(r.Content)),
		Image:       orDefault(str(r.URLToImage), PlaceholderImage),
		Category:    orDefault(sourceName, DefaultCategory),
		URL:         url,
		PublishedAt: publishedAt,
		Author:      orDefault(str(r.Author), UnknownAuthor),
		Source:      orDefault(sourceName, UnknownSource),
	}
}

// ArticleID derives a short id from url and publishedAt. It is deterministic but
// not collision resistant: only the first 16 base64 characters are kept.
func ArticleID(url, publishedAt string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(url + publishedAt))
	if len(enc) > idLength {
		return enc[:idLength]
	}
	return enc
}

func summary(description, content string) string {
	if description != "" {
		return description
	}
	if content != "" {
		return truncate(content, contentSummaryRune) + "..."
	}
	return NoSummary
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

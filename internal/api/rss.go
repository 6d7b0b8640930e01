package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"

	"github.com/nitesh/trendpulse-api/internal/service"
	"github.com/nitesh/trendpulse-api/pkg/models"
)

// ArticlesRSS: GET /articles/rss?category=Tech&page=1&limit=20
// Same pipeline and cache entry as /articles, rendered as RSS 2.0.
func (h *Handler) ArticlesRSS(c *gin.Context) {
	p := paginationFrom(c)
	category := c.Query("category")
	res, err := h.svc.Articles(c.Request.Context(), service.ArticlesQuery{
		Category: category,
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	rss, err := buildFeed(category, selfURL(c), res.Articles, time.Now()).ToRss()
	if err != nil {
		h.log.WithError(err).Error("rss render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate RSS"})
		return
	}

	if res.Fallback {
		c.Header("X-Fallback", "true")
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func buildFeed(category, link string, articles []models.Article, now time.Time) *feeds.Feed {
	title := "TrendPulse - Top Headlines"
	if category != "" {
		title = "TrendPulse - " + category
	}

	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link, Rel: "self", Type: "application/rss+xml"},
		Description: "Latest headlines from TrendPulse",
		Author:      &feeds.Author{Name: "TrendPulse"},
		Created:     now,
	}

	for _, a := range articles {
		created, err := time.Parse(time.RFC3339, a.PublishedAt)
		if err != nil {
			created = now
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          a.ID,
			Title:       a.Title,
			Link:        &feeds.Link{Href: a.URL},
			Description: a.Summary,
			Author:      &feeds.Author{Name: a.Author},
			Created:     created,
		})
	}
	return feed
}

func selfURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + c.Request.URL.RequestURI()
}

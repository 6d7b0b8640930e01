package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/nitesh/trendpulse-api/internal/fallback"
	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/internal/service"
)

const (
	Version = "1.0.0"

	adminTokenHeader = "X-Admin-Token"
	minQueryLength   = 2
)

var availableEndpoints = []string{
	"/",
	"/health",
	"/trending",
	"/articles",
	"/articles/rss",
	"/search",
	"/cache/clear",
	"/metrics",
}

type Handler struct {
	svc        *service.Service
	adminToken string
	log        *logger.Entry
}

// NewHandler wires the HTTP layer to svc. An empty adminToken restricts
// cache administration to loopback clients.
func NewHandler(svc *service.Service, adminToken string) *Handler {
	return &Handler{
		svc:        svc,
		adminToken: adminToken,
		log:        logger.Log.WithField("component", "api"),
	}
}

// RegisterRoutes mounts every endpoint at the root and again under /api.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	h.mount(r)
	h.mount(r.Group("/api"))
	r.NoRoute(h.NotFound)
}

func (h *Handler) mount(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/articles", validateCategory, validatePagination, h.Articles)
	r.GET("/articles/rss", validateCategory, validatePagination, h.ArticlesRSS)
	r.GET("/trending", h.Trending)
	r.GET("/search", validatePagination, h.Search)
	r.POST("/cache/clear", h.CacheClear)
}

// Root: GET /
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "🚀 Welcome to TrendPulse API",
		"version": Version,
		"status":  "active",
		"endpoints": gin.H{
			"health":           "/health",
			"trending":         "/trending",
			"articles":         "/articles",
			"rss":              "/articles/rss",
			"search":           "/search?q=QUERY",
			"filterByCategory": "/articles?category=CATEGORY_NAME",
			"pagination":       "/articles?page=1&limit=20",
			"cacheClear":       "POST /cache/clear",
			"metrics":          "/metrics",
		},
		"availableCategories": service.Categories,
	})
}

// Health: GET /health
// Probes the provider on every call; the cache is only inspected.
func (h *Handler) Health(c *gin.Context) {
	hc := h.svc.Health(c.Request.Context())

	status, upstream := "active", "connected"
	if !hc.Connected {
		status, upstream = "degraded", "disconnected"
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime":    hc.Uptime.Seconds(),
		"message":   "🚀 TrendPulse API is healthy",
		"timestamp": hc.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"status":    status,
		"cache": gin.H{
			"keys":  hc.Cache.Keys,
			"stats": hc.Cache,
		},
		"newsAPI": upstream,
	})
}

// Articles: GET /articles?category=Tech&page=1&limit=20
func (h *Handler) Articles(c *gin.Context) {
	p := paginationFrom(c)
	res, err := h.svc.Articles(c.Request.Context(), service.ArticlesQuery{
		Category: c.Query("category"),
		Page:     p.Page,
		Limit:    p.Limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	if res.Fallback {
		writeFallback(c, res)
		return
	}
	c.JSON(http.StatusOK, listing(res, p, nil))
}

// Trending: GET /trending
func (h *Handler) Trending(c *gin.Context) {
	res, err := h.svc.Trending(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	if res.Fallback {
		writeFallback(c, res)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   res.Articles,
		"cached": res.Cached,
	})
}

// Search: GET /search?q=...&sortBy=publishedAt&from=&to=&page=1&limit=20
func (h *Handler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if utf8.RuneCountInString(q) < minQueryLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search query must be at least 2 characters long"})
		return
	}
	sortBy := c.Query("sortBy")
	if sortBy != "" && !service.IsSortOrder(sortBy) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Invalid sortBy",
			"allowedSortBy": service.SortOrders,
		})
		return
	}

	p := paginationFrom(c)
	res, err := h.svc.Search(c.Request.Context(), service.SearchQuery{
		Q:      q,
		SortBy: sortBy,
		From:   c.Query("from"),
		To:     c.Query("to"),
		Page:   p.Page,
		Limit:  p.Limit,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	if res.Fallback {
		writeFallback(c, res)
		return
	}
	c.JSON(http.StatusOK, listing(res, p, gin.H{"query": q}))
}

// CacheClear: POST /cache/clear
func (h *Handler) CacheClear(c *gin.Context) {
	if !h.authorizeAdmin(c) {
		return
	}
	n := h.svc.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"message":     "Cache cleared successfully",
		"clearedKeys": n,
	})
}

// NotFound lists the endpoints that do exist.
func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":              "Endpoint not found",
		"availableEndpoints": availableEndpoints,
	})
}

func (h *Handler) authorizeAdmin(c *gin.Context) bool {
	if h.adminToken != "" {
		got := c.GetHeader(adminTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
			h.log.WithField("remote_addr", c.RemoteIP()).Warn("cache clear rejected: bad admin token")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return false
		}
		return true
	}

	// without a token only the local host may administer the cache
	ip := net.ParseIP(c.RemoteIP())
	if ip == nil || !ip.IsLoopback() {
		h.log.WithField("remote_addr", c.RemoteIP()).Warn("cache clear rejected: not loopback")
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return false
	}
	return true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var rl *service.RateLimitError
	switch {
	case errors.As(err, &rl):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "Rate limit exceeded, please try again later",
			"retryAfter": rl.RetryAfter,
		})
	case service.IsAuthFailure(err):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API authentication failed"})
	default:
		h.log.WithError(err).Error("unclassified service error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func writeFallback(c *gin.Context, res *service.Result) {
	c.JSON(http.StatusOK, gin.H{
		"data":       res.Articles,
		"isFallback": true,
		"message":    fallback.Message,
	})
}

func listing(res *service.Result, p pagination, extra gin.H) gin.H {
	body := gin.H{
		"data":   res.Articles,
		"page":   p.Page,
		"limit":  p.Limit,
		"cached": res.Cached,
	}
	if res.TotalResults != nil {
		body["totalResults"] = *res.TotalResults
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

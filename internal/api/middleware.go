package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/internal/metrics"
	"github.com/nitesh/trendpulse-api/internal/ratelimit"
	"github.com/nitesh/trendpulse-api/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
	paginationKey   = "pagination"

	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type pagination struct {
	Page  int
	Limit int
}

// validateCategory rejects labels outside the whitelist. An absent or empty
// category means all categories.
func validateCategory(c *gin.Context) {
	category := c.Query("category")
	if category != "" && !service.IsCategory(category) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":             "Invalid category",
			"allowedCategories": service.Categories,
		})
		return
	}
	c.Next()
}

// validatePagination normalizes page and limit and stores them on the context.
func validatePagination(c *gin.Context) {
	page, inRange := parseInt(c.Query("page"), defaultPage)
	if !inRange {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Page is out of range"})
		return
	}
	if page < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Page must be greater than 0"})
		return
	}
	c.Set(paginationKey, pagination{Page: page, Limit: parseLimit(c.Query("limit"))})
	c.Next()
}

func paginationFrom(c *gin.Context) pagination {
	if v, ok := c.Get(paginationKey); ok {
		if p, ok := v.(pagination); ok {
			return p
		}
	}
	return pagination{Page: defaultPage, Limit: defaultLimit}
}

// parseInt returns d for a missing or non-numeric value. A number that does
// not fit an int comes back saturated with inRange false.
func parseInt(s string, d int) (n int, inRange bool) {
	n, err := strconv.Atoi(s)
	switch {
	case err == nil:
		return n, true
	case errors.Is(err, strconv.ErrRange):
		return n, false
	}
	return d, true
}

// parseLimit ensures a sane integer limit, with bounds
func parseLimit(s string) int {
	// saturated values clamp like any other out-of-bounds limit
	l, _ := parseInt(s, defaultLimit)
	if l < 1 {
		return 1
	}
	if l > maxLimit {
		return maxLimit
	}
	return l
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// accessLog writes one line per request. The query string is left out.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.Log.WithFields(logger.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status":      c.Writer.Status(),
			"duration":    time.Since(start).String(),
			"request_id":  c.GetString(requestIDKey),
			"remote_addr": c.ClientIP(),
		})
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request failed")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

func observe(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

func securityHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-DNS-Prefetch-Control", "off")
	c.Next()
}

// rateLimit rejects clients over their window budget before any handler runs.
func rateLimit(l *ratelimit.Limiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.Allow(c.ClientIP()) {
			c.Next()
			return
		}
		m.ObserveRateLimited()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many requests from this IP, please try again later",
		})
	}
}

// recovery turns a panic into the generic 500 body. The panic text is only
// shown outside production.
func recovery(production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.WithFields(logger.Fields{
			"request_id": c.GetString(requestIDKey),
			"path":       c.Request.URL.Path,
			"panic":      recovered,
		}).Error("panic while handling request")

		msg := "Something went wrong"
		if !production {
			msg = fmt.Sprint(recovered)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": msg,
		})
	})
}

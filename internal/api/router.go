package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/nitesh/trendpulse-api/internal/metrics"
	"github.com/nitesh/trendpulse-api/internal/ratelimit"
)

// RouterOptions carries the cross-cutting pieces of the HTTP stack. A nil
// Limiter disables rate limiting and a nil Metrics records nothing.
type RouterOptions struct {
	FrontendURL string
	Production  bool
	Metrics     *metrics.Metrics
	Limiter     *ratelimit.Limiter
}

// NewRouter builds the gin engine with middleware, routes and /metrics.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	// ClientIP must be the socket peer; forwarded headers are not trusted
	_ = r.SetTrustedProxies(nil)

	r.Use(
		requestID(),
		accessLog(),
		observe(opts.Metrics),
		recovery(opts.Production),
		securityHeaders,
		cors.New(corsConfig(opts.FrontendURL)),
		gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})),
		rateLimit(opts.Limiter, opts.Metrics),
	)

	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	RegisterRoutes(r, h)
	return r
}

func corsConfig(origin string) cors.Config {
	cfg := cors.DefaultConfig()
	if origin == "" || origin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{origin}
		cfg.AllowCredentials = true
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, adminTokenHeader, requestIDHeader)
	cfg.ExposeHeaders = []string{requestIDHeader}
	return cfg
}

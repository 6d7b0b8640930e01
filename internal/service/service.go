package service

import (
	"context"
	"time"

	"github.com/nitesh/trendpulse-api/internal/cache"
	"github.com/nitesh/trendpulse-api/internal/fallback"
	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/internal/metrics"
	"github.com/nitesh/trendpulse-api/internal/newsapi"
	"github.com/nitesh/trendpulse-api/internal/transform"
	"github.com/nitesh/trendpulse-api/pkg/models"
)

const (
	trendingFetch = 5
	trendingKeep  = 3
)

// Upstream is the subset of the news provider client the service needs.
type Upstream interface {
	TopHeadlines(ctx context.Context, q newsapi.HeadlinesQuery) (*newsapi.Response, error)
	Everything(ctx context.Context, q newsapi.EverythingQuery) (*newsapi.Response, error)
	Ping(ctx context.Context) error
}

type Service struct {
	cache    cache.Store
	upstream Upstream
	metrics  *metrics.Metrics
	started  time.Time
	now      func() time.Time
	log      *logger.Entry
}

func NewService(store cache.Store, upstream Upstream, m *metrics.Metrics) *Service {
	return &Service{
		cache:    store,
		upstream: upstream,
		metrics:  m,
		started:  time.Now(),
		now:      time.Now,
		log:      logger.Log.WithField("component", "service"),
	}
}

// Result is one listing as produced by the pipeline. TotalResults is set only
// for fresh upstream responses.
type Result struct {
	Articles     []models.Article
	TotalResults *int
	Cached       bool
	Fallback     bool
}

// ArticlesQuery is a validated headlines request. Category is a whitelist
// label or empty for all categories.
type ArticlesQuery struct {
	Category string
	Page     int
	Limit    int
}

// SearchQuery is a validated search request.
type SearchQuery struct {
	Q      string
	SortBy string
	From   string
	To     string
	Page   int
	Limit  int
}

// Articles returns top headlines, optionally filtered by category.
func (s *Service) Articles(ctx context.Context, q ArticlesQuery) (*Result, error) {
	return s.run(ctx, pipeline{
		endpoint: "articles",
		key:      cache.ArticlesKey(q.Category, q.Page, q.Limit),
		fallback: fallback.Articles,
		call: func(ctx context.Context) (*newsapi.Response, error) {
			hq := newsapi.HeadlinesQuery{Page: q.Page, PageSize: q.Limit}
			if q.Category != "" {
				hq.Category = UpstreamCategory(q.Category)
			}
			return s.upstream.TopHeadlines(ctx, hq)
		},
	})
}

// Trending returns the first three usable headlines.
func (s *Service) Trending(ctx context.Context) (*Result, error) {
	return s.run(ctx, pipeline{
		endpoint: "trending",
		key:      cache.TrendingKey(),
		fallback: fallback.Trending,
		call: func(ctx context.Context) (*newsapi.Response, error) {
			return s.upstream.TopHeadlines(ctx, newsapi.HeadlinesQuery{PageSize: trendingFetch})
		},
		shape: func(a []models.Article) []models.Article {
			if len(a) > trendingKeep {
				return a[:trendingKeep]
			}
			return a
		},
	})
}

// Search runs a full-text query. There is no canned search content, so the
// fallback is an empty list.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*Result, error) {
	if q.SortBy == "" {
		q.SortBy = DefaultSortBy
	}
	return s.run(ctx, pipeline{
		endpoint: "search",
		key:      cache.SearchKey(q.Q, q.SortBy, q.From, q.To, q.Page, q.Limit),
		fallback: fallback.Search,
		call: func(ctx context.Context) (*newsapi.Response, error) {
			return s.upstream.Everything(ctx, newsapi.EverythingQuery{
				Q:        q.Q,
				SortBy:   q.SortBy,
				From:     q.From,
				To:       q.To,
				Page:     q.Page,
				PageSize: q.Limit,
			})
		},
	})
}

type pipeline struct {
	endpoint string
	key      cache.Key
	call     func(context.Context) (*newsapi.Response, error)
	shape    func([]models.Article) []models.Article
	fallback func(time.Time) []models.Article
}

func (s *Service) run(ctx context.Context, p pipeline) (*Result, error) {
	key := p.key.String()
	log := s.log.WithFields(logger.Fields{"endpoint": p.endpoint, "key": key})

	if articles, ok := s.cache.Get(ctx, key); ok {
		s.metrics.ObserveCache(p.endpoint, true)
		log.Debug("cache hit")
		return &Result{Articles: articles, Cached: true}, nil
	}
	s.metrics.ObserveCache(p.endpoint, false)

	// a client disconnect must not abort the upstream call; its result is still cached
	detached := context.WithoutCancel(ctx)

	start := time.Now()
	resp, err := p.call(detached)
	elapsed := time.Since(start)
	if err != nil {
		return s.fail(log, p, err, elapsed)
	}
	s.metrics.ObserveUpstream(p.endpoint, "ok", elapsed)

	articles := transform.Articles(resp.Articles)
	if p.shape != nil {
		articles = p.shape(articles)
	}
	s.cache.Set(detached, key, articles)

	total := resp.TotalResults
	log.WithField("count", len(articles)).Debug("cache miss served from upstream")
	return &Result{Articles: articles, TotalResults: &total}, nil
}

func (s *Service) fail(log *logger.Entry, p pipeline, err error, elapsed time.Duration) (*Result, error) {
	log = log.WithError(err)

	cerr := Classify(err)
	switch {
	case IsRateLimited(cerr):
		s.metrics.ObserveUpstream(p.endpoint, "rate_limited", elapsed)
		log.Warn("upstream rate limited")
		return nil, cerr
	case IsAuthFailure(cerr):
		s.metrics.ObserveUpstream(p.endpoint, "auth_failed", elapsed)
		log.Error("upstream rejected api credential")
		return nil, cerr
	}

	s.metrics.ObserveUpstream(p.endpoint, "unavailable", elapsed)
	s.metrics.ObserveFallback(p.endpoint)
	log.Warn("upstream unavailable, serving fallback")
	return &Result{Articles: p.fallback(s.now()), Fallback: true}, nil
}

// Health is a point-in-time view of the process and its dependencies.
type Health struct {
	Uptime    time.Duration
	Timestamp time.Time
	Cache     cache.Stats
	Connected bool
}

// Health probes the provider live; it never reads or writes the cache.
func (s *Service) Health(ctx context.Context) Health {
	h := Health{
		Uptime:    time.Since(s.started),
		Timestamp: s.now(),
		Cache:     s.cache.Stats(ctx),
	}

	start := time.Now()
	err := s.upstream.Ping(ctx)
	if err != nil {
		s.metrics.ObserveUpstream("health", "unavailable", time.Since(start))
		s.log.WithError(err).Warn("upstream probe failed")
		return h
	}
	s.metrics.ObserveUpstream("health", "ok", time.Since(start))
	h.Connected = true
	return h
}

// ClearCache drops every cached listing and returns how many were removed.
func (s *Service) ClearCache(ctx context.Context) int {
	n := s.cache.FlushAll(ctx)
	s.log.WithField("cleared", n).Info("cache cleared")
	return n
}

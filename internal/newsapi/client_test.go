package newsapi_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/internal/newsapi"
)

func init() {
	logger.Silence()
}

const headlinesBody = `{
	"status": "ok",
	"totalResults": 2,
	"articles": [
		{"source": {"id": null, "name": "BBC News"}, "author": null, "title": "One",
		 "description": "d1", "url": "https://a.example/1", "urlToImage": null,
		 "publishedAt": "2024-05-01T10:00:00Z", "content": null},
		{"source": {"id": "cnn", "name": "CNN"}, "author": "A", "title": "Two",
		 "description": null, "url": "https://a.example/2", "urlToImage": "https://img",
		 "publishedAt": "2024-05-01T11:00:00Z", "content": "c2"}
	]
}`

func newClient(t *testing.T, h http.HandlerFunc) *newsapi.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return newsapi.NewClient(newsapi.Options{
		BaseURL: srv.URL,
		APIKey:  "secret-key",
		Country: "us",
	})
}

func TestTopHeadlines_Success(t *testing.T) {
	var gotPath, gotQuery, gotKey, gotUA string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(headlinesBody))
	})

	resp, err := c.TopHeadlines(context.Background(), newsapi.HeadlinesQuery{Category: "technology", Page: 2, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, 2, resp.TotalResults)
	require.Len(t, resp.Articles, 2)
	require.Equal(t, "One", *resp.Articles[0].Title)
	require.Nil(t, resp.Articles[0].Author)

	assert.Equal(t, "/top-headlines", gotPath)
	assert.Equal(t, "category=technology&country=us&page=2&pageSize=20", gotQuery)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, "TrendPulse-API/1.0", gotUA)
	assert.NotContains(t, gotQuery, "secret-key")
}

func TestTopHeadlines_NoCategory(t *testing.T) {
	var gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	})

	_, err := c.TopHeadlines(context.Background(), newsapi.HeadlinesQuery{PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, "country=us&pageSize=5", gotQuery)
}

func TestEverything_Params(t *testing.T) {
	var gotPath, gotQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"ok","totalResults":0,"articles":[]}`))
	})

	_, err := c.Everything(context.Background(), newsapi.EverythingQuery{
		Q: "climate change", SortBy: "relevancy", From: "2024-01-01", Page: 1, PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "/everything", gotPath)
	assert.Equal(t, "from=2024-01-01&page=1&pageSize=10&q=climate+change&sortBy=relevancy", gotQuery)
}

func TestErrors_Classified(t *testing.T) {
	testCases := []struct {
		name       string
		status     int
		retryAfter string
		body       string
		wantCode   string
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, retryAfter: "120", body: `{"status":"error","code":"rateLimited","message":"slow down"}`, wantCode: "rateLimited"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"status":"error","code":"apiKeyInvalid","message":"bad key"}`, wantCode: "apiKeyInvalid"},
		{name: "server error", status: http.StatusBadGateway, body: `not json`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				if tc.retryAfter != "" {
					w.Header().Set("Retry-After", tc.retryAfter)
				}
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.TopHeadlines(context.Background(), newsapi.HeadlinesQuery{})
			require.Error(t, err)

			var uerr *newsapi.Error
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, tc.status, uerr.StatusCode)
			assert.Equal(t, tc.retryAfter, uerr.RetryAfter)
			assert.Equal(t, tc.wantCode, uerr.Code)
			assert.Equal(t, 1, calls, "client must not retry")
		})
	}
}

func TestErrors_MalformedBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","articles":`))
	})

	_, err := c.TopHeadlines(context.Background(), newsapi.HeadlinesQuery{})
	var uerr *newsapi.Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, http.StatusOK, uerr.StatusCode)
}

func TestErrors_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	c := newsapi.NewClient(newsapi.Options{
		BaseURL:        srv.URL,
		APIKey:         "k",
		ContentTimeout: 50 * time.Millisecond,
	})

	start := time.Now()
	_, err := c.TopHeadlines(context.Background(), newsapi.HeadlinesQuery{})
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)

	var uerr *newsapi.Error
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, 0, uerr.StatusCode)
}

func TestPing(t *testing.T) {
	var gotQuery string
	ok := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"status":"ok","totalResults":1,"articles":[]}`))
	})
	require.NoError(t, ok.Ping(context.Background()))
	assert.Equal(t, "country=us&pageSize=1", gotQuery)

	down := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	require.Error(t, down.Ping(context.Background()))
}

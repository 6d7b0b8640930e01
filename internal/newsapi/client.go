package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nitesh/trendpulse-api/internal/logger"
	"github.com/nitesh/trendpulse-api/pkg/models"
)

const (
	DefaultBaseURL        = "https://newsapi.org/v2"
	DefaultContentTimeout = 10 * time.Second
	DefaultProbeTimeout   = 5 * time.Second

	apiKeyHeader = "X-Api-Key"
	maxErrorBody = 64 << 10
)

// Response is the envelope returned by both top-headlines and everything.
type Response struct {
	Status       string              `json:"status"`
	TotalResults int                 `json:"totalResults"`
	Articles     []models.RawArticle `json:"articles"`
	Code         string              `json:"code,omitempty"`
	Message      string              `json:"message,omitempty"`
}

// HeadlinesQuery parameters for /top-headlines. Empty Category means all.
type HeadlinesQuery struct {
	Category string
	Page     int
	PageSize int
}

// EverythingQuery parameters for /everything.
type EverythingQuery struct {
	Q        string
	SortBy   string
	From     string
	To       string
	Page     int
	PageSize int
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL        string
	APIKey         string
	Country        string
	UserAgent      string
	ContentTimeout time.Duration
	ProbeTimeout   time.Duration
	HTTPClient     *http.Client
}

// Client talks to the news provider. It never retries: a failed call is
// returned to the caller as an *Error on the first attempt.
type Client struct {
	baseURL        string
	apiKey         string
	country        string
	userAgent      string
	contentTimeout time.Duration
	probeTimeout   time.Duration
	hc             *retryablehttp.Client
	log            *logger.Entry
}

// NewClient creates a new client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Country == "" {
		opts.Country = "us"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "TrendPulse-API/1.0"
	}
	if opts.ContentTimeout <= 0 {
		opts.ContentTimeout = DefaultContentTimeout
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}

	log := logger.Log.WithField("component", "newsapi")

	hc := retryablehttp.NewClient()
	hc.RetryMax = 0
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.Logger = logger.Leveled{Entry: log}
	if opts.HTTPClient != nil {
		hc.HTTPClient = opts.HTTPClient
	}

	return &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		country:        opts.Country,
		userAgent:      opts.UserAgent,
		contentTimeout: opts.ContentTimeout,
		probeTimeout:   opts.ProbeTimeout,
		hc:             hc,
		log:            log,
	}
}

// TopHeadlines fetches /top-headlines for the configured country.
func (c *Client) TopHeadlines(ctx context.Context, q HeadlinesQuery) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.contentTimeout)
	defer cancel()
	return c.get(ctx, "top-headlines", c.headlinesParams(q))
}

// Everything runs a full-text search over /everything.
func (c *Client) Everything(ctx context.Context, q EverythingQuery) (*Response, error) {
	params := url.Values{}
	params.Set("q", q.Q)
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.From != "" {
		params.Set("from", q.From)
	}
	if q.To != "" {
		params.Set("to", q.To)
	}
	setPaging(params, q.Page, q.PageSize)

	ctx, cancel := context.WithTimeout(ctx, c.contentTimeout)
	defer cancel()
	return c.get(ctx, "everything", params)
}

// Ping issues a one-item headlines request with the short probe timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()
	_, err := c.get(ctx, "top-headlines", c.headlinesParams(HeadlinesQuery{PageSize: 1}))
	return err
}

func (c *Client) headlinesParams(q HeadlinesQuery) url.Values {
	params := url.Values{}
	params.Set("country", c.country)
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	setPaging(params, q.Page, q.PageSize)
	return params
}

func setPaging(params url.Values, page, pageSize int) {
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	u := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Message: "build request", Err: err}
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	lat := time.Since(start)

	log := c.log.WithFields(logger.Fields{
		"endpoint": endpoint,
		"params":   params.Encode(),
		"latency":  lat.String(),
	})
	if err != nil {
		log.WithError(err).Warn("upstream request failed")
		return nil, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	log = log.WithField("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		uerr := errorFromResponse(resp)
		log.WithField("code", uerr.Code).Warn("upstream returned error status")
		return nil, uerr
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.WithError(err).Warn("upstream body could not be decoded")
		return nil, &Error{StatusCode: resp.StatusCode, Message: "decode response: " + err.Error(), Err: err}
	}
	if out.Status == "error" {
		log.WithField("code", out.Code).Warn("upstream reported error")
		return nil, &Error{StatusCode: resp.StatusCode, Code: out.Code, Message: out.Message}
	}

	log.Debug("upstream request ok")
	return &out, nil
}

func errorFromResponse(resp *http.Response) *Error {
	e := &Error{
		StatusCode: resp.StatusCode,
		RetryAfter: resp.Header.Get("Retry-After"),
		Message:    resp.Status,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return e
	}
	var parsed struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &parsed) == nil {
		e.Code = parsed.Code
		if parsed.Message != "" {
			e.Message = parsed.Message
		}
	}
	return e
}

// Error is a classified upstream failure. StatusCode is zero when no HTTP
// response was received (timeout, connection error).
type Error struct {
	StatusCode int
	RetryAfter string
	Code       string
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("newsapi: %s", e.Message)
	}
	return fmt.Sprintf("newsapi: status %d: %s", e.StatusCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

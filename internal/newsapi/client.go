// Package newsapi is the NewsAPI (newsapi.org) adapter behind news.Provider.
// It owns every detail of the NewsAPI wire format.
package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"flash-news/internal/metrics"
	"flash-news/internal/news"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Endpoint names, also used as metric labels.
const (
	EndpointHeadlines  = "top-headlines"
	EndpointEverything = "everything"
)

const (
	DefaultBaseURL = "https://newsapi.org"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 1 << 20
)

// Config holds the client settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// RateLimit is the maximum number of upstream requests per second. 0 disables limiting.
	RateLimit float64
	// Breaker enables the circuit breaker around upstream calls.
	Breaker bool
}

// Client talks to NewsAPI.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	breaker *CircuitBreaker
}

// NewClient creates a NewsAPI client. Empty settings fall back to the defaults.
func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if cfg.Breaker {
		c.breaker = NewCircuitBreaker(DefaultBreakerConfig())
	}
	return c
}

// apiResponse mirrors the NewsAPI envelope for both success and error bodies.
type apiResponse struct {
	Status       string       `json:"status"`
	Code         string       `json:"code"`
	Message      string       `json:"message"`
	TotalResults int          `json:"totalResults"`
	Articles     []apiArticle `json:"articles"`
}

type apiArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// Headlines calls /v2/top-headlines.
func (c *Client) Headlines(ctx context.Context, q news.HeadlineQuery) (news.Page, error) {
	params := url.Values{}
	if q.Category != "" {
		params.Set("category", q.Category)
	}
	if q.Country != "" {
		params.Set("country", q.Country)
	}
	if q.Text != "" {
		params.Set("q", q.Text)
	}
	setPaging(params, q.PageSize, q.Page)
	return c.get(ctx, EndpointHeadlines, params)
}

// Search calls /v2/everything.
func (c *Client) Search(ctx context.Context, q news.SearchQuery) (news.Page, error) {
	params := url.Values{}
	params.Set("q", q.Text)
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.Language != "" {
		params.Set("language", q.Language)
	}
	setPaging(params, q.PageSize, q.Page)
	return c.get(ctx, EndpointEverything, params)
}

func setPaging(params url.Values, pageSize, page int) {
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (news.Page, error) {
	start := time.Now()
	page, err := c.execute(ctx, endpoint, params)
	metrics.RecordUpstream(endpoint, err, time.Since(start))
	return page, err
}

func (c *Client) execute(ctx context.Context, endpoint string, params url.Values) (news.Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return news.Page{}, &news.UpstreamError{Endpoint: endpoint, Err: err}
		}
	}
	if c.breaker == nil {
		return c.do(ctx, endpoint, params)
	}
	v, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, endpoint, params)
	})
	if err != nil {
		var ue *news.UpstreamError
		if errors.As(err, &ue) {
			return news.Page{}, ue
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return news.Page{}, &news.UpstreamError{Endpoint: endpoint, Message: "upstream unavailable, circuit open", Err: err}
		}
		return news.Page{}, &news.UpstreamError{Endpoint: endpoint, Err: err}
	}
	return v.(news.Page), nil
}

func (c *Client) do(ctx context.Context, endpoint string, params url.Values) (news.Page, error) {
	params.Set("apiKey", c.apiKey)
	u := fmt.Sprintf("%s/v2/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return news.Page{}, &news.UpstreamError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return news.Page{}, &news.UpstreamError{Endpoint: endpoint, Err: redact(err, c.apiKey)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		ue := &news.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}
		var body apiResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body); err == nil {
			ue.Code = body.Code
			ue.Message = body.Message
		}
		return news.Page{}, ue
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return news.Page{}, &news.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Status == "error" {
		return news.Page{}, &news.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode, Code: body.Code, Message: body.Message}
	}

	page := news.Page{
		TotalResults: body.TotalResults,
		Articles:     make([]news.Article, 0, len(body.Articles)),
	}
	for _, a := range body.Articles {
		page.Articles = append(page.Articles, toArticle(a))
	}
	return page, nil
}

// toArticle projects a NewsAPI article down to the fields clients see.
func toArticle(a apiArticle) news.Article {
	return news.Article{
		Title:       a.Title,
		Description: news.Optional(a.Description),
		Source:      news.Optional(a.Source.Name),
		URL:         a.URL,
		Image:       news.Optional(a.URLToImage),
		PublishedAt: a.PublishedAt,
	}
}

// redact keeps the API key out of transport errors, which embed the request URL.
func redact(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), key) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), key, "REDACTED"))
}

// Package resolver decides how a news query is satisfied: it picks the
// upstream endpoint, falls back to a search when headlines come back empty,
// and memoizes results in a short-lived cache.
package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"flash-news/internal/cache"
	"flash-news/internal/logging"
	"flash-news/internal/metrics"
	"flash-news/internal/news"
)

// Endpoint identifies which upstream operation produced a result.
type Endpoint string

const (
	EndpointHeadlines Endpoint = "headlines"
	EndpointDiscovery Endpoint = "discovery"
)

const (
	// DefaultSearchTerm is used when a discovery query has nothing better to search for.
	DefaultSearchTerm = "flash OR breaking OR latest OR breaking-news"
	// IndiaClause biases fallback searches for India towards local coverage.
	IndiaClause = " AND (india OR indian)"

	DefaultTimeout = 10 * time.Second

	sortByPublishedAt = "publishedAt"
	languageEnglish   = "en"
)

// Enricher post-processes freshly fetched articles before they are cached.
type Enricher interface {
	Enrich(ctx context.Context, articles []news.Article)
}

// Result is the outcome of Resolve.
type Result struct {
	Articles     []news.Article
	TotalResults int
	Cached       bool
	Page         int
	Endpoint     Endpoint
	FallbackUsed bool
}

// Config holds resolver settings.
type Config struct {
	// DefaultCountry applies to headline queries that name no country.
	DefaultCountry string
	// Timeout bounds each upstream call.
	Timeout time.Duration
}

// Resolver satisfies news queries from the cache or the upstream provider.
// It is safe for concurrent use.
type Resolver struct {
	provider       news.Provider
	cache          *cache.TTL[news.Page]
	enricher       Enricher
	defaultCountry string
	timeout        time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithEnricher runs e on every upstream result before it is cached.
func WithEnricher(e Enricher) Option {
	return func(r *Resolver) {
		r.enricher = e
	}
}

// New creates a Resolver backed by provider and c.
func New(provider news.Provider, c *cache.TTL[news.Page], cfg Config, opts ...Option) *Resolver {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	r := &Resolver{
		provider:       provider,
		cache:          c,
		defaultCountry: strings.ToLower(strings.TrimSpace(cfg.DefaultCountry)),
		timeout:        cfg.Timeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// plan is the routing decision for one query.
type plan struct {
	endpoint Endpoint
	// effective is the query after defaulting; its CacheKey identifies the result.
	effective news.Query
}

// route picks the endpoint from what the client explicitly asked for.
// The default country only applies once the headline endpoint is chosen, so
// a bare text search still reaches the discovery endpoint.
func (r *Resolver) route(q news.Query) plan {
	usableCategory := q.Category != "" && q.Category != news.CategoryPolitics
	if usableCategory || q.Country != "" {
		eff := q
		if eff.Country == "" {
			eff.Country = r.defaultCountry
		}
		return plan{endpoint: EndpointHeadlines, effective: eff}
	}
	return plan{endpoint: EndpointDiscovery, effective: q}
}

// CacheKey returns the key Resolve uses for q.
func (r *Resolver) CacheKey(q news.Query) string {
	return r.route(q).effective.CacheKey()
}

// Resolve returns articles for q. It fails with news.ErrInvalidCategory for an
// unknown category and with *news.UpstreamError when a fetch fails. A failed
// fetch is never retried.
func (r *Resolver) Resolve(ctx context.Context, q news.Query) (Result, error) {
	if q.Category != "" && !news.ValidCategory(q.Category) {
		return Result{}, news.ErrInvalidCategory
	}
	q.PageSize = news.ClampPageSize(q.PageSize)
	q.Page = news.ClampPage(q.Page)

	p := r.route(q)
	key := p.effective.CacheKey()
	logger := logging.FromContext(ctx).With(slog.String("cache_key", key))

	if page, ok := r.cache.Get(key); ok {
		metrics.RecordCacheLookup(true)
		logger.Debug("news cache hit")
		return Result{
			Articles:     page.Articles,
			TotalResults: page.TotalResults,
			Cached:       true,
			Page:         q.Page,
			Endpoint:     p.endpoint,
		}, nil
	}
	metrics.RecordCacheLookup(false)

	// Upstream calls outlive a disconnected client; only the timeout stops them.
	fetchCtx := context.WithoutCancel(ctx)

	res := Result{Page: q.Page, Endpoint: p.endpoint}
	var page news.Page
	var err error
	if p.endpoint == EndpointHeadlines {
		page, err = r.headlines(fetchCtx, p.effective)
		if err != nil {
			return Result{}, err
		}
		if len(page.Articles) == 0 {
			term := fallbackTerm(p.effective)
			logger.Info("headlines empty, falling back to search", slog.String("term", term))
			page, err = r.search(fetchCtx, news.SearchQuery{
				Text:     term,
				SortBy:   sortByPublishedAt,
				PageSize: q.PageSize,
				Page:     q.Page,
			})
			metrics.RecordFallback(len(page.Articles), err)
			if err != nil {
				return Result{}, err
			}
			res.Endpoint = EndpointDiscovery
			res.FallbackUsed = true
		}
	} else {
		text := q.Text
		if text == "" {
			text = DefaultSearchTerm
		}
		page, err = r.search(fetchCtx, news.SearchQuery{
			Text:     text,
			SortBy:   sortByPublishedAt,
			Language: languageEnglish,
			PageSize: q.PageSize,
			Page:     q.Page,
		})
		if err != nil {
			return Result{}, err
		}
	}

	if page.Articles == nil {
		page.Articles = []news.Article{}
	}
	if page.TotalResults == 0 {
		page.TotalResults = len(page.Articles)
	}
	if r.enricher != nil {
		r.enricher.Enrich(fetchCtx, page.Articles)
	}

	expiresAt := r.cache.Set(key, page)
	metrics.CacheEntries.Set(float64(r.cache.Len()))
	logger.Debug("news cached",
		slog.String("endpoint", string(res.Endpoint)),
		slog.Int("articles", len(page.Articles)),
		slog.Time("expires_at", expiresAt))

	res.Articles = page.Articles
	res.TotalResults = page.TotalResults
	return res, nil
}

func (r *Resolver) headlines(ctx context.Context, q news.Query) (news.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	page, err := r.provider.Headlines(ctx, news.HeadlineQuery{
		Category: q.Category,
		Country:  q.Country,
		Text:     q.Text,
		PageSize: q.PageSize,
		Page:     q.Page,
	})
	return page, asUpstream("headlines", err)
}

func (r *Resolver) search(ctx context.Context, q news.SearchQuery) (news.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	page, err := r.provider.Search(ctx, q)
	return page, asUpstream("search", err)
}

// asUpstream makes every provider failure an *news.UpstreamError.
func asUpstream(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	var ue *news.UpstreamError
	if errors.As(err, &ue) {
		return err
	}
	return &news.UpstreamError{Endpoint: endpoint, Err: err}
}

// fallbackTerm builds the search term used when headlines are empty.
func fallbackTerm(q news.Query) string {
	term := DefaultSearchTerm
	switch {
	case q.Category != "" && q.Category != news.CategoryGeneral && q.Category != news.CategoryPolitics:
		term = q.Category
	case q.Text != "":
		term = q.Text
	}
	if strings.EqualFold(q.Country, "in") {
		term += IndiaClause
	}
	return term
}

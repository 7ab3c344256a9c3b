package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flash-news/internal/logging"
	"flash-news/internal/news"
	"flash-news/internal/resolver"

	"github.com/gin-gonic/gin"
)

// Resolver is what the handlers need from the query resolver.
type Resolver interface {
	Resolve(ctx context.Context, q news.Query) (resolver.Result, error)
}

// NewsService serves the news endpoints.
type NewsService struct {
	resolver  Resolver
	cacheSize func() int
}

// NewNewsService creates a news service. cacheSize may be nil.
func NewNewsService(r Resolver, cacheSize func() int) *NewsService {
	if cacheSize == nil {
		cacheSize = func() int { return 0 }
	}
	return &NewsService{resolver: r, cacheSize: cacheSize}
}

// GetNews resolves the query string filters into a page of articles.
func (ns *NewsService) GetNews(c *gin.Context) {
	q := news.ParseQuery(c.Request.URL.Query())
	ctx := c.Request.Context()

	res, err := ns.resolver.Resolve(ctx, q)
	if err != nil {
		if errors.Is(err, news.ErrInvalidCategory) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Success: false,
				Message: "Invalid category",
			})
			return
		}
		logging.FromContext(ctx).Error("error fetching news",
			slog.String("query", c.Request.URL.RawQuery),
			slog.Any("error", err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Success: false,
			Message: "Failed to fetch news",
			Error:   err.Error(),
		})
		return
	}

	articles := res.Articles
	if articles == nil {
		articles = []news.Article{}
	}
	c.JSON(http.StatusOK, NewsResponse{
		Success:      true,
		TotalResults: res.TotalResults,
		Articles:     articles,
		Cached:       res.Cached,
		Page:         res.Page,
	})
}

// GetCategories returns all accepted category filters.
func (ns *NewsService) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, CategoriesResponse{
		Success:    true,
		Categories: news.Categories,
	})
}

// Root is the legacy liveness route.
func (ns *NewsService) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "msg": "Flash news backend running"})
}

// Health reports service status.
func (ns *NewsService) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Timestamp:    time.Now(),
		CacheEntries: ns.cacheSize(),
	})
}

package server

import (
	"time"

	"flash-news/internal/news"
)

// NewsResponse represents the API response for news
type NewsResponse struct {
	Success      bool           `json:"success"`
	TotalResults int            `json:"totalResults"`
	Articles     []news.Article `json:"articles"`
	Cached       bool           `json:"cached"`
	Page         int            `json:"page"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// CategoriesResponse lists the accepted category filters
type CategoriesResponse struct {
	Success    bool     `json:"success"`
	Categories []string `json:"categories"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status       string    `json:"status"`
	Timestamp    time.Time `json:"timestamp"`
	CacheEntries int       `json:"cacheEntries"`
}

package news

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Category names accepted by the headline endpoint plus politics.
const (
	CategoryBusiness      = "business"
	CategoryEntertainment = "entertainment"
	CategoryGeneral       = "general"
	CategoryHealth        = "health"
	CategoryScience       = "science"
	CategorySports        = "sports"
	CategoryTechnology    = "technology"
	CategoryPolitics      = "politics"
)

// Categories lists every allowed category in display order.
var Categories = []string{
	CategoryBusiness,
	CategoryEntertainment,
	CategoryGeneral,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
	CategoryPolitics,
}

// Pagination defaults and bounds.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
	DefaultPage     = 1
)

// ValidCategory reports whether c is one of Categories.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Query holds the filter parameters of a single request. Country is only
// what the client supplied; defaulting is left to the resolver.
type Query struct {
	Text     string
	Category string
	Country  string
	PageSize int
	Page     int
}

// ParseQuery reads q, category, country, pageSize and page from v.
// Malformed numbers fall back to their defaults and are then clamped.
func ParseQuery(v url.Values) Query {
	return Query{
		Text:     strings.TrimSpace(v.Get("q")),
		Category: strings.TrimSpace(v.Get("category")),
		Country:  strings.ToLower(strings.TrimSpace(v.Get("country"))),
		PageSize: ClampPageSize(parseInt(v.Get("pageSize"), DefaultPageSize)),
		Page:     ClampPage(parseInt(v.Get("page"), DefaultPage)),
	}
}

// ClampPageSize bounds n to [1, MaxPageSize].
func ClampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ClampPage bounds n to [1, ∞).
func ClampPage(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// parseInt returns def for empty, malformed or zero input.
func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n == 0 {
		return def
	}
	return n
}

// CacheKey returns the fingerprint of the query's effective parameters.
func (q Query) CacheKey() string {
	return fmt.Sprintf("q:%s:cat:%s:cty:%s:ps:%d:p:%d", q.Text, q.Category, q.Country, q.PageSize, q.Page)
}

package news

// Article is a normalized news article as served to clients.
// Optional fields are nil when the upstream did not provide them.
type Article struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Source      *string `json:"source"`
	URL         string  `json:"url"`
	Image       *string `json:"image"`
	PublishedAt string  `json:"publishedAt"`
}

// Page is one normalized result set returned by a provider.
type Page struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
}

// HeadlineQuery describes a call to the headline endpoint.
type HeadlineQuery struct {
	Category string
	Country  string
	Text     string
	PageSize int
	Page     int
}

// SearchQuery describes a call to the discovery endpoint.
type SearchQuery struct {
	Text     string
	SortBy   string
	Language string
	PageSize int
	Page     int
}

// Optional returns a pointer to s, or nil when s is empty.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package news

import "context"

// Provider is the upstream news source. Implementations translate their
// wire format into Page so callers never see provider-specific fields.
type Provider interface {
	// Headlines returns currently prominent articles.
	Headlines(ctx context.Context, q HeadlineQuery) (Page, error)
	// Search returns articles matching a free-text term, newest first.
	Search(ctx context.Context, q SearchQuery) (Page, error)
}

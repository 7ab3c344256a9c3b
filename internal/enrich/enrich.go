// Package enrich post-processes normalized articles before they are cached.
// Both steps are opt-in and never fail a request: anything that cannot be
// cleaned or found is left as it was.
package enrich

import (
	"context"
	"log/slog"
	"strings"

	"flash-news/internal/news"

	"github.com/PuerkitoBio/goquery"
)

// Pipeline applies the configured enrichment steps in order.
type Pipeline struct {
	// CleanDescriptions strips HTML markup and entities from descriptions.
	CleanDescriptions bool
	// Images back-fills missing article images when non-nil.
	Images *ImageFinder
}

// Enabled reports whether any step is configured.
func (p *Pipeline) Enabled() bool {
	return p != nil && (p.CleanDescriptions || p.Images != nil)
}

// Enrich modifies articles in place.
func (p *Pipeline) Enrich(ctx context.Context, articles []news.Article) {
	if !p.Enabled() {
		return
	}
	if p.CleanDescriptions {
		for i := range articles {
			if d := articles[i].Description; d != nil {
				articles[i].Description = news.Optional(CleanText(*d))
			}
		}
	}
	if p.Images != nil {
		filled := p.Images.Fill(ctx, articles)
		if filled > 0 {
			slog.Debug("filled missing article images", slog.Int("count", filled))
		}
	}
}

// CleanText returns the visible text of an HTML fragment with whitespace collapsed.
func CleanText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

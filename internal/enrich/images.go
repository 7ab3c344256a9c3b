package enrich

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"flash-news/internal/news"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; flash-news/1.0; +https://newsapi.org)"

var errNoImage = errors.New("no image found")

// ImageFinder looks up a lead image on article pages that arrived without one.
type ImageFinder struct {
	// MaxLookups caps page visits per Fill call.
	MaxLookups int
	// Timeout bounds each page visit.
	Timeout time.Duration
	// UserAgent is sent with every visit.
	UserAgent string
}

// NewImageFinder returns a finder with the given lookup cap and sane defaults.
func NewImageFinder(maxLookups int) *ImageFinder {
	if maxLookups <= 0 {
		maxLookups = 3
	}
	return &ImageFinder{
		MaxLookups: maxLookups,
		Timeout:    3 * time.Second,
		UserAgent:  defaultUserAgent,
	}
}

// Fill sets Image on articles that lack one and returns how many were filled.
func (f *ImageFinder) Fill(ctx context.Context, articles []news.Article) int {
	lookups, filled := 0, 0
	for i := range articles {
		if lookups >= f.MaxLookups || ctx.Err() != nil {
			break
		}
		a := &articles[i]
		if a.Image != nil || !isHTTP(a.URL) {
			continue
		}
		lookups++
		img, err := f.Find(a.URL)
		if err != nil {
			slog.Debug("image lookup failed", slog.String("url", a.URL), slog.Any("error", err))
			continue
		}
		a.Image = news.Optional(img)
		filled++
	}
	return filled
}

// Find visits pageURL and returns the absolute URL of its lead image.
func (f *ImageFinder) Find(pageURL string) (string, error) {
	ua := f.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c := colly.NewCollector(
		colly.UserAgent(ua),
		colly.MaxDepth(1),
	)
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	var found string
	c.OnHTML("html", func(e *colly.HTMLElement) {
		if src := leadImage(e.DOM); src != "" {
			found = e.Request.AbsoluteURL(src)
		}
	})

	if err := c.Visit(pageURL); err != nil {
		return "", err
	}
	c.Wait()

	if found == "" {
		return "", errNoImage
	}
	return found, nil
}

// leadImage picks the most representative image reference in a document.
func leadImage(doc *goquery.Selection) string {
	for _, sel := range []string{
		"meta[property='og:image']",
		"meta[name='twitter:image']",
	} {
		if content, ok := doc.Find(sel).First().Attr("content"); ok && strings.TrimSpace(content) != "" {
			return strings.TrimSpace(content)
		}
	}

	var src string
	doc.Find("picture img, article img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		for _, attr := range []string{"data-srcset", "srcset", "data-src", "src"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				src = firstSrcsetURL(v)
				return false
			}
		}
		return true
	})
	return src
}

// firstSrcsetURL returns the first candidate of a srcset value, or v itself.
func firstSrcsetURL(v string) string {
	v = strings.TrimSpace(v)
	if first, _, ok := strings.Cut(v, ","); ok {
		v = first
	}
	if fields := strings.Fields(v); len(fields) > 0 {
		return fields[0]
	}
	return v
}

func isHTTP(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

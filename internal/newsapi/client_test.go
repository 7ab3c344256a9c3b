package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"flash-news/internal/news"

	"github.com/google/go-cmp/cmp"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	paths    []string
	queries  []url.Values
	status   int
	response string
}

func (r *recorder) handler(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.paths = append(r.paths, req.URL.Path)
	r.queries = append(r.queries, req.URL.Query())
	status, body := r.status, r.response
	r.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func newTestServer(t *testing.T, status int, body string) (*recorder, *httptest.Server) {
	t.Helper()
	rec := &recorder{status: status, response: body}
	srv := httptest.NewServer(http.HandlerFunc(rec.handler))
	t.Cleanup(srv.Close)
	return rec, srv
}

const twoArticles = `{
  "status": "ok",
  "totalResults": 2,
  "articles": [
    {
      "source": {"id": "bbc-news", "name": "BBC News"},
      "author": "Someone",
      "title": "Chip makers rally",
      "description": "Shares climbed.",
      "url": "https://example.com/chips",
      "urlToImage": "https://example.com/chips.jpg",
      "publishedAt": "2025-01-01T10:00:00Z",
      "content": "..."
    },
    {
      "source": {"id": null, "name": null},
      "title": "Untitled wire item",
      "description": null,
      "url": "https://example.com/wire",
      "urlToImage": null,
      "publishedAt": "2025-01-01T09:00:00Z"
    }
  ]
}`

func TestClient_Headlines(t *testing.T) {
	rec, srv := newTestServer(t, http.StatusOK, twoArticles)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})

	page, err := c.Headlines(context.Background(), news.HeadlineQuery{
		Category: "technology",
		Country:  "us",
		PageSize: 5,
		Page:     1,
	})
	require.NoError(t, err)

	require.Len(t, rec.paths, 1)
	assert.Equal(t, "/v2/top-headlines", rec.paths[0])
	q := rec.queries[0]
	assert.Equal(t, "secret", q.Get("apiKey"))
	assert.Equal(t, "technology", q.Get("category"))
	assert.Equal(t, "us", q.Get("country"))
	assert.Equal(t, "5", q.Get("pageSize"))
	assert.Equal(t, "1", q.Get("page"))
	assert.False(t, q.Has("q"), "empty text must not be sent")

	want := news.Page{
		TotalResults: 2,
		Articles: []news.Article{
			{
				Title:       "Chip makers rally",
				Description: news.Optional("Shares climbed."),
				Source:      news.Optional("BBC News"),
				URL:         "https://example.com/chips",
				Image:       news.Optional("https://example.com/chips.jpg"),
				PublishedAt: "2025-01-01T10:00:00Z",
			},
			{
				Title:       "Untitled wire item",
				URL:         "https://example.com/wire",
				PublishedAt: "2025-01-01T09:00:00Z",
			},
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("page mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_Search(t *testing.T) {
	rec, srv := newTestServer(t, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`)
	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "k"})

	page, err := c.Search(context.Background(), news.SearchQuery{
		Text:     "sports AND (india OR indian)",
		SortBy:   "publishedAt",
		PageSize: 12,
		Page:     2,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Articles)
	assert.NotNil(t, page.Articles)

	require.Len(t, rec.paths, 1)
	assert.Equal(t, "/v2/everything", rec.paths[0])
	q := rec.queries[0]
	assert.Equal(t, "sports AND (india OR indian)", q.Get("q"))
	assert.Equal(t, "publishedAt", q.Get("sortBy"))
	assert.False(t, q.Has("language"))
	assert.Equal(t, "12", q.Get("pageSize"))
	assert.Equal(t, "2", q.Get("page"))
}

func TestClient_UpstreamErrorPayload(t *testing.T) {
	_, srv := newTestServer(t, http.StatusUnauthorized,
		`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid or incorrect."}`)
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.Headlines(context.Background(), news.HeadlineQuery{Country: "in", PageSize: 12, Page: 1})
	require.Error(t, err)

	var ue *news.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, EndpointHeadlines, ue.Endpoint)
	assert.Equal(t, http.StatusUnauthorized, ue.StatusCode)
	assert.Equal(t, "apiKeyInvalid", ue.Code)
	assert.Equal(t, "Your API key is invalid or incorrect.", ue.Message)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	_, srv := newTestServer(t, http.StatusBadGateway, "<html>bad gateway</html>")
	c := NewClient(Config{BaseURL: srv.URL})

	_, err := c.Search(context.Background(), news.SearchQuery{Text: "x"})
	var ue *news.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, http.StatusBadGateway, ue.StatusCode)
	assert.Empty(t, ue.Message)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "topsecret", Timeout: 50 * time.Millisecond})

	_, err := c.Headlines(context.Background(), news.HeadlineQuery{Country: "us"})
	var ue *news.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.Zero(t, ue.StatusCode)
	assert.NotContains(t, err.Error(), "topsecret")
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	rec, srv := newTestServer(t, http.StatusInternalServerError, `{"status":"error","code":"unexpectedError","message":"boom"}`)
	c := NewClient(Config{BaseURL: srv.URL, Breaker: true})

	for i := 0; i < 5; i++ {
		_, err := c.Headlines(context.Background(), news.HeadlineQuery{Country: "us"})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, c.breaker.State())

	_, err := c.Headlines(context.Background(), news.HeadlineQuery{Country: "us"})
	var ue *news.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Len(t, rec.paths, 5, "open breaker must not reach upstream")
}

func TestClient_BreakerIgnoresClientErrors(t *testing.T) {
	_, srv := newTestServer(t, http.StatusBadRequest, `{"status":"error","code":"parameterInvalid","message":"bad"}`)
	c := NewClient(Config{BaseURL: srv.URL, Breaker: true})

	for i := 0; i < 10; i++ {
		_, err := c.Headlines(context.Background(), news.HeadlineQuery{Category: "politics", Country: "us"})
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, c.breaker.State())
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	_, srv := newTestServer(t, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`)
	c := NewClient(Config{BaseURL: srv.URL, RateLimit: 0.001})

	_, err := c.Search(context.Background(), news.SearchQuery{Text: "first"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, news.SearchQuery{Text: "second"})
	var ue *news.UpstreamError
	require.True(t, errors.As(err, &ue))
}

func TestCountsAsSuccess(t *testing.T) {
	assert.True(t, countsAsSuccess(nil))
	assert.True(t, countsAsSuccess(&news.UpstreamError{StatusCode: 401}))
	assert.False(t, countsAsSuccess(&news.UpstreamError{StatusCode: 429}))
	assert.False(t, countsAsSuccess(&news.UpstreamError{StatusCode: 503}))
	assert.False(t, countsAsSuccess(&news.UpstreamError{Err: errors.New("dial tcp: refused")}))
	assert.False(t, countsAsSuccess(errors.New("plain")))
}

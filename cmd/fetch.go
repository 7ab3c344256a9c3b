package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"flash-news/internal/app"
	"flash-news/internal/news"
	"flash-news/internal/resolver"
	"flash-news/internal/server"

	"github.com/spf13/cobra"
)

var fetchOpts struct {
	text     string
	category string
	country  string
	pageSize int
	page     int
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Resolve one query and print the JSON response",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.New(GetConfig(), slog.Default(), nil)
		q := news.Query{
			Text:     fetchOpts.text,
			Category: fetchOpts.category,
			Country:  fetchOpts.country,
			PageSize: news.ClampPageSize(fetchOpts.pageSize),
			Page:     news.ClampPage(fetchOpts.page),
		}
		return runFetch(cmd, a.Resolver, q, cmd.OutOrStdout())
	},
}

func runFetch(cmd *cobra.Command, r *resolver.Resolver, q news.Query, out io.Writer) error {
	res, err := r.Resolve(cmd.Context(), q)
	if err != nil {
		if errors.Is(err, news.ErrInvalidCategory) {
			return fmt.Errorf("invalid category %q, expected one of %v", q.Category, news.Categories)
		}
		return fmt.Errorf("failed to fetch news: %w", err)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(server.NewsResponse{
		Success:      true,
		TotalResults: res.TotalResults,
		Articles:     res.Articles,
		Cached:       res.Cached,
		Page:         res.Page,
	})
}

func init() {
	f := fetchCmd.Flags()
	f.StringVarP(&fetchOpts.text, "query", "q", "", "free-text search")
	f.StringVarP(&fetchOpts.category, "category", "c", "", "category filter")
	f.StringVar(&fetchOpts.country, "country", "", "country code (headlines use the default country when empty)")
	f.IntVar(&fetchOpts.pageSize, "page-size", news.DefaultPageSize, "articles per page (1-100)")
	f.IntVar(&fetchOpts.page, "page", news.DefaultPage, "page number")
	rootCmd.AddCommand(fetchCmd)
}

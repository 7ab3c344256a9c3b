// Package app wires configuration, the upstream client, the cache, the
// resolver and the HTTP router into a runnable service.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"flash-news/internal/cache"
	"flash-news/internal/config"
	"flash-news/internal/enrich"
	"flash-news/internal/metrics"
	"flash-news/internal/news"
	"flash-news/internal/newsapi"
	"flash-news/internal/resolver"
	"flash-news/internal/server"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled service.
type App struct {
	Config   config.Config
	Logger   *slog.Logger
	Cache    *cache.TTL[news.Page]
	Resolver *resolver.Resolver
	Router   *gin.Engine
}

// New builds the service from cfg. A nil provider means the NewsAPI client.
func New(cfg config.Config, logger *slog.Logger, provider news.Provider) *App {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.NewsAPIKey == "" {
		logger.Warn("NEWSAPI_KEY not set; upstream requests will be rejected until it is configured")
	}
	if provider == nil {
		provider = newsapi.NewClient(newsapi.Config{
			BaseURL:   cfg.NewsAPI.BaseURL,
			APIKey:    cfg.NewsAPIKey,
			Timeout:   cfg.NewsAPI.Timeout,
			RateLimit: cfg.NewsAPI.RateLimit,
			Breaker:   cfg.NewsAPI.Breaker,
		})
	}

	c := cache.New[news.Page](cfg.Cache.TTL)

	var opts []resolver.Option
	pipeline := &enrich.Pipeline{CleanDescriptions: cfg.Enrich.CleanDescriptions}
	if cfg.Enrich.Images {
		pipeline.Images = enrich.NewImageFinder(cfg.Enrich.MaxImageLookups)
	}
	if pipeline.Enabled() {
		opts = append(opts, resolver.WithEnricher(pipeline))
	}

	res := resolver.New(provider, c, resolver.Config{
		DefaultCountry: cfg.DefaultCountry,
		Timeout:        cfg.NewsAPI.Timeout,
	}, opts...)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	ns := server.NewNewsService(res, c.Len)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Cache:    c,
		Resolver: res,
		Router:   server.NewRouter(ns, logger),
	}
}

// Run serves HTTP and sweeps the cache until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr(),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		a.Cache.Run(ctx, a.Config.Cache.SweepInterval, func(removed, remaining int) {
			metrics.CacheEntries.Set(float64(remaining))
			if removed > 0 {
				a.Logger.Debug("cache swept", slog.Int("removed", removed), slog.Int("remaining", remaining))
			}
		})
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		a.Logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Package server exposes the news resolver over HTTP with gin.
package server

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter builds the gin engine with middleware and routes.
func NewRouter(ns *NewsService, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID(logger))
	r.Use(AccessLog())
	r.Use(Metrics())

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	r.Use(cors.New(config))

	setupRoutes(r, ns)
	return r
}

func setupRoutes(r *gin.Engine, ns *NewsService) {
	r.GET("/", ns.Root)
	r.GET("/healthz", ns.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/news", ns.GetNews)
		api.GET("/categories", ns.GetCategories)
	}
}

package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"flash-news/internal/app"

	"github.com/spf13/cobra"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a := app.New(cfg, slog.Default(), nil)
		slog.Info("flash news backend starting",
			slog.String("addr", cfg.Addr()),
			slog.String("default_country", cfg.DefaultCountry),
			slog.Duration("cache_ttl", cfg.Cache.TTL))

		if err := a.Run(ctx); err != nil {
			slog.Error("server stopped", slog.Any("error", err))
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"benchtrack/internal/config"
	"benchtrack/internal/metrics"
	"benchtrack/internal/web"
)

// serveFunc allows mocking in tests.
var serveFunc = func(ctx context.Context, srv *web.Server, addr string) error {
	return srv.Start(ctx, addr)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the data file, a JSON API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Get()
			store := newStoreFunc(cfg.DataFile, cfg.RepoURL)
			srv := web.NewServer(store, metrics.NewMetrics(), web.Options{Threshold: cfg.AlertThreshold})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := net.JoinHostPort(cfg.ServeHost, strconv.Itoa(cfg.ServePort))
			return serveFunc(ctx, srv, addr)
		},
	}
	cmd.Flags().IntP("port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().String("host", "", "Address to bind (default from config)")
	viper.BindPFlag("serve.port", cmd.Flags().Lookup("port"))
	viper.BindPFlag("serve.host", cmd.Flags().Lookup("host"))
	return cmd
}

func init() {
	rootCmd.AddCommand(newServeCmd())
}

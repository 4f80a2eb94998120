package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/ntmtrace/internal/presentation/tui"
	httpAdapter "github.com/aretw0/ntmtrace/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Exposes machines and runs as a JSON API over HTTP, with Prometheus
metrics on /metrics and a stream of finished runs on /events.`,
	Run: func(cmd *cobra.Command, args []string) {
		app := newApp(cmd)
		defer app.Close()

		port := app.Config.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		handler := httpAdapter.NewHandler(app.Tracer, app.Tracer.Runs(),
			httpAdapter.WithLogger(app.Logger),
			httpAdapter.WithMaxDepth(app.Config.MaxDepth),
			httpAdapter.WithDepthLimit(app.Config.HTTP.DepthLimit),
			httpAdapter.WithGatherer(app.Registry),
		)

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			tui.PrintBanner(os.Stderr)
			app.Logger.Info("starting ntmtrace server", "addr", srv.Addr, "dir", app.Dir, "store", app.Config.Store)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			app.Logger.Error("server error", "err", err)
			app.Close()
			os.Exit(1)

		case sig := <-shutdown:
			app.Logger.Info("shutdown started", "signal", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				app.Logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					app.Logger.Error("error killing server", "err", err)
				}
			}
			app.Logger.Info("ntmtrace server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
	serveCmd.Flags().String("redis", "", "Store runs in Redis at this address (host:port)")
}

// Package httpserver wires the route table and runs the server with
// graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"redacheck/api/internal/config"
	"redacheck/api/internal/handle"
)

// NewMux routes the API surface onto the handler set.
func NewMux(h *handle.Handle) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/v2/check", h.Check)
	mux.HandleFunc("/v2/analyze", h.Analyze)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests within
// the configured shutdown timeout.
func Run(cfg config.HTTPConfig, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Command vassald runs the Vassal SQS emulator's HTTP/XML front end,
// serving until SIGINT or SIGTERM.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jn-rp/vassal/internal/config"
	"github.com/jn-rp/vassal/internal/httpapi"
	"github.com/jn-rp/vassal/internal/logging"
	"github.com/jn-rp/vassal/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := logging.New(cfg.LogLevel)
	store := queue.NewStore(cfg.BaseURL, logger)
	server := httpapi.NewServer(cfg, store, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("vassald listening on %s:%s (base_url=%s)", cfg.BindIP, cfg.Port, cfg.BaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Infof("received %s, shutting down", sig)
	case err := <-errCh:
		logger.Errorf("listener error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
	store.Reset()
}

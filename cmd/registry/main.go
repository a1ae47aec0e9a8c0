package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/registry"
	"github.com/storefront-go/storefront/internal/registryapi"
)

func main() {
	cfg := config.LoadRegistry()
	logger := log.New(os.Stdout, "[registry] ", log.LstdFlags|log.Lshortfile)

	store := registry.NewStore(cfg.PrimaryServer, cfg.BackupServer)
	router := registryapi.NewRouter(store, logger)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("registry listening on %s (primary %s, backup %s)", cfg.HTTPAddr, cfg.PrimaryServer, cfg.BackupServer)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

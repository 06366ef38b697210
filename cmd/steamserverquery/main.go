// main is the entry point of the steamserverquery application.
// It either runs a one-shot query or initializes storage, GeoIP and the HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmichaels01/steamserverquery/internal/collector"
	"github.com/mmichaels01/steamserverquery/internal/config"
	"github.com/mmichaels01/steamserverquery/internal/fake"
	"github.com/mmichaels01/steamserverquery/internal/geoip"
	"github.com/mmichaels01/steamserverquery/internal/logger"
	"github.com/mmichaels01/steamserverquery/internal/maintenance"
	"github.com/mmichaels01/steamserverquery/internal/server"
	"github.com/mmichaels01/steamserverquery/internal/storage"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)

	if cfg.OneShot() {
		if err := runQuery(os.Stdout, cfg.Query, cfg.A2S); err != nil {
			log.Fatal().Err(err).Str("address", cfg.Query.Address).Msg("Query failed")
		}
		return
	}

	log.Info().Msg("Starting steamserverquery service...")

	// GeoIP Update
	log.Info().Msg("Checking GeoIP database...")
	if err := geoip.EnsureDB(cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
		log.Error().Err(err).Msg("Failed to download GeoIP database")
	}

	geoProvider, err := geoip.Open(cfg.GeoIP.Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
		geoProvider = nil
	}
	defer func() {
		if err := geoProvider.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing GeoIP provider")
		}
	}()

	// Database
	store, err := storage.New(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database")
		}
	}()

	col := collector.New(store, geoProvider, cfg.A2S)

	// data generation or database maintenance
	if cfg.Storage.GenerateCount > 0 {
		fake.GenerateData(store, cfg.Storage.GenerateCount)
		return
	} else if maintenance.Run(cfg, store, col) {
		return
	}

	srvHandler := server.New(store, col, cfg)
	srvHandler.StartWorkers()

	httpServer := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           srvHandler.Run(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		// live player queries take two round trips
		WriteTimeout: 2*cfg.A2S.Timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// wait for queued queries
	srvHandler.StopWorkers()

	log.Info().Msg("Server exited")
}

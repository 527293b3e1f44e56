package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diamond-custody-gateway/config"
	"diamond-custody-gateway/internal/app"
	"diamond-custody-gateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("DCG_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	gin.SetMode(cfg.Server.Mode)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("vault_backend", cfg.Vault.Backend).
		Str("marketplace", cfg.Ledger.MarketplaceAddress).
		Msg("Starting Diamond Custody Gateway")

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 30*time.Second)
	backends, closeBackends, err := app.Connect(connectCtx, cfg, log)
	cancelConnect()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect backends")
	}
	defer closeBackends()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gateway, err := app.New(cfg, backends, reg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to assemble gateway")
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           gateway.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Ledger writes block until confirmation, so in-flight requests get the
	// full receipt timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ledger.ReceiptTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Audit writes did not drain")
	}

	log.Info().Msg("Server exited")
}

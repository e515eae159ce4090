package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/domain"
	"github.com/Shimizu-Technology/hafaloha-go/internal/stubapi"
)

type Config struct {
	HTTPPort        string
	AdminToken      string
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8090"),
		AdminToken:      getEnv("ADMIN_TOKEN", "stub-admin-token"),
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	stub := stubapi.New(stubapi.WithAdminToken(cfg.AdminToken))
	seedCatalog(stub)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      stub.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("stub API starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

// seedCatalog gives the stub a small storefront so manual runs have something
// to browse without the admin import flow.
func seedCatalog(s *stubapi.Server) {
	s.SeedProduct(domain.Product{
		ID:             "p-aloha-tee",
		Name:           "Aloha Tee",
		Description:    "Soft cotton tee with the Hafaloha wave print.",
		Price:          2500,
		Available:      true,
		InventoryLevel: domain.InventoryVariant,
		Variants: []domain.Variant{
			{ID: "v-tee-s", Size: "S", Color: "Coral", Price: 2500, Available: true, StockQuantity: 12},
			{ID: "v-tee-m", Size: "M", Color: "Coral", Price: 2500, Available: true, StockQuantity: 8},
			{ID: "v-tee-l", Size: "L", Color: "Navy", Price: 2500, Available: true, StockQuantity: 5},
		},
	})
	s.SeedProduct(domain.Product{
		ID:             "p-shave-ice-mix",
		Name:           "Shave Ice Syrup Mix",
		Description:    "Three-flavor syrup pack for home shave ice.",
		Price:          1800,
		Available:      true,
		InventoryLevel: domain.InventoryProduct,
		StockQuantity:  40,
	})
}

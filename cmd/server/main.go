package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpRouter "fixer-service/internal/adapter/http"
	"fixer-service/internal/app"
	"fixer-service/internal/config"
	"fixer-service/internal/metrics"
	"fixer-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Log.Level)
	log.Info("Starting fixer rate service")

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)

	ctx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()

	application, err := app.New(ctx, cfg, log, appMetrics)
	if err != nil {
		log.Error("Failed to initialise application", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	handler := httpRouter.NewHandler(application.Dispatcher, log)
	router := httpRouter.NewRouter(handler, log, appMetrics, nil)
	routes := router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      routes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go application.SweepExpired(ctx, cfg.Cache.SweepInterval, log)

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

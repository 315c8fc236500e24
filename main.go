package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/regportal/registration-backend/internal/config"
	"github.com/regportal/registration-backend/v1/database"
	"github.com/regportal/registration-backend/v1/handlers"
	"github.com/regportal/registration-backend/v1/middleware"
	"github.com/regportal/registration-backend/v1/notify"
	"github.com/regportal/registration-backend/v1/router"
	"github.com/regportal/registration-backend/v1/services"
)

func main() {
	// Load .env file if it exists (optional - fails silently if not found)
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	slog.SetDefault(logger)

	cfg := config.LoadConfig("registration-backend")
	slog.Info("Starting registration backend initialization", "environment", cfg.Environment)

	dbConfig := database.NewDatabaseConfig(&cfg.DB)
	gormDB, err := database.ConnectGormDB(dbConfig)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	fieldService := services.NewFieldService(gormDB)
	typeService := services.NewTypeService(gormDB)
	requestService := services.NewRequestService(gormDB, notify.NewLogNotifier())

	publicHandler := handlers.NewPublicHandler(typeService, requestService)
	adminHandler := handlers.NewAdminHandler(fieldService, typeService, requestService)

	mux := http.NewServeMux()
	v1Router := router.NewV1Router(publicHandler, adminHandler)
	v1Router.RegisterRoutes(mux)

	corsMiddleware := middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.Service.AllowedOrigins))
	metricsMiddleware := middleware.NewMetricsMiddleware(mux)
	handler := corsMiddleware(metricsMiddleware(mux))

	addr := fmt.Sprintf("%s:%s", cfg.Service.Host, cfg.Service.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Service.Timeout,
		WriteTimeout: cfg.Service.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Registration backend listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down registration backend")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}

	// Let in-flight notification dispatches finish before exiting.
	requestService.WaitForDispatches()
	slog.Info("Registration backend stopped")
}

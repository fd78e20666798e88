package main

import (
	"context"
	_ "debmarket/docs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"debmarket/internal/config"
	"debmarket/internal/db"
	"debmarket/internal/logger"
	"debmarket/internal/notification"
	"debmarket/internal/payment"
	"debmarket/internal/server"
	"debmarket/internal/wallet"
)

// @title DebMarket API
// @version 1.0
// @description API for the DebMarket retail debenture marketplace.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	defer logger.Sync()
	logger.Info("Starting DebMarket application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	notifications := notification.New(
		cfg.EmailFrom,
		cfg.EmailFromName,
		cfg.SMTPHost,
		cfg.SMTPPort,
		cfg.SMTPUser,
		cfg.SMTPPass,
		cfg.RedisAddr,
	)
	defer notifications.Close()
	logger.Info("Notification service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifications.Start(ctx)

	var gateway payment.Gateway
	switch cfg.PaymentDriver {
	case "rest":
		gateway = payment.NewRESTGateway(cfg.PaymentsBaseURL)
		logger.Info("Payment gateway: REST facade", "base_url", cfg.PaymentsBaseURL)
	default:
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
		logger.Info("Payment gateway: stripe")
	}

	deposits := payment.NewDepositService(
		gateway,
		wallet.NewRepository(database),
		notifications,
		payment.DepositConfig{
			PollInterval:   cfg.PollInterval,
			TTL:            cfg.DepositTTL,
			MinAmountCents: cfg.MinDepositCents,
		},
	)
	defer deposits.Close()

	srv := server.New(database, cfg, deposits, notifications)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}

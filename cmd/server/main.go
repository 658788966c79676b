package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shotaro-dev/gold-digger/internal/api"
	"github.com/shotaro-dev/gold-digger/internal/config"
	"github.com/shotaro-dev/gold-digger/internal/db"
	"github.com/shotaro-dev/gold-digger/internal/notifications"
	"github.com/shotaro-dev/gold-digger/internal/pricefeed"
)

const banner = `
╔══════════════════════════════════════╗
║         GOLD DIGGER  v1.0            ║
║   fractional gold investing service  ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if err := db.TestConnection(pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.Migrate(migrateCtx, pool); err != nil {
		cancelMigrate()
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}
	cancelMigrate()

	// Price feed
	source := pricefeed.NewGoldAPIClient(cfg.GoldAPIURL)
	feed := pricefeed.NewBroadcaster(source, time.Duration(cfg.PollIntervalSeconds)*time.Second)

	// Ops alerts ride the same subscriber fan-out as the SSE sessions.
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)
	alerts := notifications.NewFeedAlerts(notify, cfg.FeedAlertThreshold)
	feed.Subscribe(alerts.PriceOK, alerts.FeedError)

	feed.Start()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// API server
	srv := api.NewServer(pool, feed, cfg)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	feed.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}

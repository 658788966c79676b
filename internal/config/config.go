package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Secrets (from .env)
	SessionSecret   string
	AdminAPIKey     string
	WebhookURL      string
	BotName         string
	CORSAllowOrigin string

	// Server
	Port int

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Price feed
	GoldAPIURL          string
	PollIntervalSeconds int
	FeedAlertThreshold  int

	// Streaming
	KeepaliveSeconds int
}

const defaultGoldAPIURL = "https://api.gold-api.com/price/XAU"

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		SessionSecret:   envStr("SESSION_SECRET", ""),
		AdminAPIKey:     envStr("ADMIN_API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "GoldDigger"),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Server
		Port: envInt("PORT", 3000),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "gold_digger"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Price feed
		GoldAPIURL:          envStr("GOLD_API_URL", defaultGoldAPIURL),
		PollIntervalSeconds: envInt("POLL_INTERVAL_SECONDS", 10),
		FeedAlertThreshold:  envInt("FEED_ALERT_THRESHOLD", 5),

		// Streaming
		KeepaliveSeconds: envInt("SSE_KEEPALIVE_SECONDS", 30),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.SessionSecret == "" {
		errs = append(errs, "SESSION_SECRET is required")
	}
	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.PollIntervalSeconds <= 0 {
		errs = append(errs, "POLL_INTERVAL_SECONDS must be positive")
	}
	if c.AdminAPIKey == "" {
		fmt.Println("[WARN] ADMIN_API_KEY not set — /admin endpoints have no authentication")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set — feed-failure alerts go to console only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Gold Digger Configuration ===")
	fmt.Printf("HTTP port: %d\n", c.Port)
	fmt.Printf("Database: %s:%d/%s\n", c.DBHost, c.DBPort, c.DBName)
	fmt.Println("---------------------------------")
	fmt.Println("Price Feed:")
	fmt.Printf("  Endpoint: %s\n", c.GoldAPIURL)
	fmt.Printf("  Poll interval: %ds\n", c.PollIntervalSeconds)
	fmt.Printf("  Alert after %d consecutive failures\n", c.FeedAlertThreshold)
	fmt.Println("---------------------------------")
	fmt.Printf("SSE keepalive: every %ds\n", c.KeepaliveSeconds)
	fmt.Printf("CORS origin: %s\n", c.CORSAllowOrigin)
	fmt.Printf("Admin API: %s\n", boolLabel(c.AdminAPIKey != "", "Bearer auth enabled", "open (no key configured)"))
	fmt.Printf("Alert webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("=================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

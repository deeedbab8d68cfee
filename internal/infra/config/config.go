package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	LogLevel    string
	Environment string

	DatabaseURL string

	CoopBaseURL            string
	CoopUsername           string
	CoopPassword           string
	FetchWindowBlocks      int           // Grid pages per cycle, one week each
	FetchTimeout           time.Duration // Per page request
	FetchRequestsPerSecond float64

	CronSpecCheck   string // Multi-user preference check
	CronSpecMonitor string // Single shift type monitor
	CycleTimeout    time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	AlertEmail   string // Recipient of monitor alerts

	TelegramToken  string
	TelegramChatID int64 // Optional second channel for monitor alerts

	MetricsAddr string // Empty disables the metrics server
}

// Load reads configuration from environment variables and .env file (if present).
// Only malformed values are errors; required settings are checked per command
// by ValidateCheck and ValidateMonitor.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnv("ENVIRONMENT", "development"))

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.CoopBaseURL = strings.TrimRight(getEnv("COOP_BASE_URL", "https://members.foodcoop.com"), "/")
	cfg.CoopUsername = os.Getenv("COOP_USERNAME")
	cfg.CoopPassword = os.Getenv("COOP_PASSWORD")

	if cfg.FetchWindowBlocks, err = getInt("FETCH_WINDOW_BLOCKS", 2); err != nil {
		return nil, err
	}
	if cfg.FetchTimeout, err = getDuration("FETCH_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	rpsStr := getEnv("FETCH_REQUESTS_PER_SECOND", "1")
	cfg.FetchRequestsPerSecond, err = strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_REQUESTS_PER_SECOND: %w", err)
	}

	cfg.CronSpecCheck = getEnv("CRON_SPEC_CHECK", "*/15 * * * *")  // Default: every 15 minutes
	cfg.CronSpecMonitor = getEnv("CRON_SPEC_MONITOR", "@every 1m") // Default: every minute
	if cfg.CycleTimeout, err = getDuration("CYCLE_TIMEOUT", 5*time.Minute); err != nil {
		return nil, err
	}

	cfg.SMTPHost = getEnv("SMTP_SERVER", "smtp.gmail.com")
	if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}
	cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
	cfg.FromEmail = getEnv("FROM_EMAIL", cfg.SMTPUsername)
	cfg.AlertEmail = getEnv("ALERT_EMAIL", cfg.FromEmail)

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.TelegramChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return cfg, nil
}

// SMTPConfigured reports whether email delivery can be used.
func (c *AppConfig) SMTPConfigured() bool {
	return c.SMTPUsername != "" && c.SMTPPassword != ""
}

// TelegramConfigured reports whether Telegram alerts can be used.
func (c *AppConfig) TelegramConfigured() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}

// ValidateCheck verifies the settings the multi-user check needs.
func (c *AppConfig) ValidateCheck() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	if c.CoopUsername == "" || c.CoopPassword == "" {
		return fmt.Errorf("COOP_USERNAME and COOP_PASSWORD must be set")
	}
	if !c.SMTPConfigured() {
		return fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD must be set")
	}
	return nil
}

// ValidateMonitor verifies the settings the single shift type monitor needs.
// Credentials may come from the command line, so they are checked there.
func (c *AppConfig) ValidateMonitor() error {
	if !c.SMTPConfigured() && !c.TelegramConfigured() {
		return fmt.Errorf("no alert channel configured: set SMTP_USERNAME/SMTP_PASSWORD or TELEGRAM_TOKEN/TELEGRAM_CHAT_ID")
	}
	if c.SMTPConfigured() && c.AlertEmail == "" {
		return fmt.Errorf("ALERT_EMAIL is not set")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

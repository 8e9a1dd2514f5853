package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Data backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

type Config struct {
	// HTTP server
	Port string

	// Backend selection
	DataBackend string

	// SQLite backend
	SQLiteDBPath string

	// Blob store (sqlite backend only; memory keeps blobs in process)
	BlobDir     string
	BlobBaseURL string
	BlobSecret  string

	// Default principal for single-user deployments. Requests may override
	// it through the auth header.
	Principal string

	// Receipt signed URL lifetime
	ReceiptURLTTL time.Duration

	// Snapshot cache
	SnapshotTTL     time.Duration
	SnapshotEntries int

	// Alert worker
	AlertInterval time.Duration

	// AMQP notification publishing (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets month-summary export (optional)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DataBackend: getEnv("DATA_BACKEND", BackendMemory),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),

		BlobDir:     getEnv("BLOB_DIR", "./data/receipts"),
		BlobBaseURL: getEnv("BLOB_BASE_URL", "http://localhost:8080/files"),
		BlobSecret:  getEnv("BLOB_SECRET", ""),

		Principal: getEnv("PRINCIPAL", ""),

		ReceiptURLTTL: getEnvDuration("RECEIPT_URL_TTL", time.Hour),

		SnapshotTTL:     getEnvDuration("SNAPSHOT_TTL", 5*time.Minute),
		SnapshotEntries: getEnvInt("SNAPSHOT_ENTRIES", 64),

		AlertInterval: getEnvDuration("ALERT_INTERVAL", 15*time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintrack"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Budgets"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
	}
}

// Validate checks the configuration, collecting every problem it finds.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLITE_DB_PATH cannot be empty when using the sqlite backend")
		}
		if c.BlobSecret == "" {
			problems = append(problems, "BLOB_SECRET is required when using the sqlite backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend %q: must be %q or %q", c.DataBackend, BackendMemory, BackendSQLite))
	}

	if c.AMQPURL != "" {
		if parsed, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL %q: %v", c.AMQPURL, err))
		} else if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", parsed.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP_EXCHANGE cannot be empty when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP_QUEUE cannot be empty when AMQP_URL is set")
		}
	}

	if c.SnapshotEntries < 1 {
		problems = append(problems, "SNAPSHOT_ENTRIES must be at least 1")
	}
	if c.SnapshotTTL <= 0 {
		problems = append(problems, "SNAPSHOT_TTL must be positive")
	}
	if c.ReceiptURLTTL <= 0 {
		problems = append(problems, "RECEIPT_URL_TTL must be positive")
	}
	if c.AlertInterval <= 0 {
		problems = append(problems, "ALERT_INTERVAL must be positive")
	}

	if c.SheetsExportEnabled() && c.GoogleSheetName == "" {
		problems = append(problems, "GOOGLE_SHEET_NAME cannot be empty when export is configured")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SheetsExportEnabled reports whether the month-summary export is configured.
func (c *Config) SheetsExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

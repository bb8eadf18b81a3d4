package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Classification policy
	FixedCategories            []string
	ExemptFixedFromBudgetShare bool

	// Savings report export
	ReportBackend       string // "sheets", "memory" or "off"
	ReportInterval      time.Duration
	ReportSpreadsheetID string
	ReportSheetName     string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finsight.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finsight"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "transaction_events"),

		FixedCategories:            getEnvList("FIXED_CATEGORIES", []string{"Rent", "Bills", "Education", "Insurance", "Utilities", "EMI", "Loan"}),
		ExemptFixedFromBudgetShare: getEnvBool("EXEMPT_FIXED_FROM_BUDGET_SHARE", true),

		ReportBackend:       getEnv("REPORT_BACKEND", "off"),
		ReportInterval:      getEnvDuration("REPORT_INTERVAL", 1*time.Hour),
		ReportSpreadsheetID: getEnv("REPORT_SPREADSHEET_ID", ""),
		ReportSheetName:     getEnv("REPORT_SHEET_NAME", "Savings"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate SQLite path and ensure the directory exists
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Validate classification policy
	if len(c.FixedCategories) == 0 {
		errors = append(errors, "fixed category list cannot be empty")
	}

	// Validate report export
	switch c.ReportBackend {
	case "off", "memory":
	case "sheets":
		if c.ReportSpreadsheetID == "" {
			errors = append(errors, "report spreadsheet ID is required when using the sheets report backend")
		}
		if c.ReportSheetName == "" {
			errors = append(errors, "report sheet name is required when using the sheets report backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid report backend '%s': must be one of [off memory sheets]", c.ReportBackend))
	}

	if c.ReportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid report interval %v: must be at least 1 second", c.ReportInterval))
	} else if c.ReportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid report interval %v: must be at most 24 hours", c.ReportInterval))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

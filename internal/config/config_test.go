package config

import (
	"path/filepath"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Port:                       "8082",
		SQLiteDBPath:               filepath.Join(t.TempDir(), "finsight.db"),
		FixedCategories:            []string{"Rent", "Bills"},
		ExemptFixedFromBudgetShare: true,
		ReportBackend:              "off",
		ReportInterval:             time.Hour,
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8082" {
		t.Errorf("expected default port 8082, got %s", cfg.Port)
	}
	if len(cfg.FixedCategories) != 7 {
		t.Errorf("expected 7 default fixed categories, got %v", cfg.FixedCategories)
	}
	if !cfg.ExemptFixedFromBudgetShare {
		t.Errorf("expected budget-share exemption on by default")
	}
	if cfg.ReportBackend != "off" {
		t.Errorf("expected report export off by default, got %s", cfg.ReportBackend)
	}
}

func TestLoadFixedCategoriesFromEnv(t *testing.T) {
	t.Setenv("FIXED_CATEGORIES", "Rent, Mortgage ,Subscriptions")

	cfg := Load()
	want := []string{"Rent", "Mortgage", "Subscriptions"}
	if len(cfg.FixedCategories) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.FixedCategories)
	}
	for i := range want {
		if cfg.FixedCategories[i] != want[i] {
			t.Errorf("category %d: expected %q, got %q", i, want[i], cfg.FixedCategories[i])
		}
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig(t).Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateBadPort(t *testing.T) {
	cfg := validConfig(t)
	cfg.Port = "not-a-port"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for bad port")
	}

	cfg.Port = "99999"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range port")
	}
}

func TestValidateBadAMQPURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.AMQPURL = "http://localhost:5672"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for non-amqp scheme")
	}
}

func TestValidateSheetsBackendNeedsSpreadsheet(t *testing.T) {
	cfg := validConfig(t)
	cfg.ReportBackend = "sheets"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for sheets backend without spreadsheet ID")
	}

	cfg.ReportSpreadsheetID = "sheet-id"
	cfg.ReportSheetName = "Savings"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid sheets config, got %v", err)
	}
}

func TestValidateEmptyFixedCategories(t *testing.T) {
	cfg := validConfig(t)
	cfg.FixedCategories = nil
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty fixed category list")
	}
}

func TestValidateReportInterval(t *testing.T) {
	cfg := validConfig(t)
	cfg.ReportInterval = 10 * time.Millisecond
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for tiny report interval")
	}
}

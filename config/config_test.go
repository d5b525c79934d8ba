package config

import (
	"strings"
	"testing"
	"time"

	"clearance/portal/models"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("API_TIMEOUT", "")
	t.Setenv("API_TIMEOUT_SECONDS", "")
	t.Setenv("ROLE_ALIASES", "")
	t.Setenv("DEFAULT_ROLE", "")
	t.Setenv("SESSION_SWEEP_INTERVAL", "")
	t.Setenv("SESSION_SWEEP_INTERVAL_SECONDS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.APITimeout != 15*time.Second {
		t.Errorf("Expected default API timeout 15s, got %s", cfg.APITimeout)
	}
	if cfg.DefaultRole != models.RoleStudent {
		t.Errorf("Expected default role student, got %s", cfg.DefaultRole)
	}
	if cfg.SweepInterval != 0 {
		t.Errorf("Expected sweeper disabled by default, got %s", cfg.SweepInterval)
	}
	if _, ok := cfg.RoleNames.Parse("systemadmin"); !ok {
		t.Error("Expected 'systemadmin' to be accepted by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "https://clearance.example.edu/api/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("SECURE_COOKIES", "true")
	t.Setenv("ROLE_ALIASES", "admin=systemadmin")
	t.Setenv("DEFAULT_ROLE", "staff")
	t.Setenv("SESSION_SWEEP_INTERVAL", "")
	t.Setenv("SESSION_SWEEP_INTERVAL_SECONDS", "3600")
	t.Setenv("ENCRYPTION_KEY", "super-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected PORT override, got %s", cfg.Port)
	}
	if cfg.APIBaseURL != "https://clearance.example.edu/api" {
		t.Errorf("Expected trailing slash to be trimmed, got %s", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 5*time.Second {
		t.Errorf("Expected API_TIMEOUT 5s, got %s", cfg.APITimeout)
	}
	if !cfg.SecureCookies {
		t.Error("Expected SECURE_COOKIES to be true")
	}
	if cfg.RoleNames.APIName(models.RoleAdmin) != "systemadmin" {
		t.Errorf("Expected admin API name 'systemadmin', got %s", cfg.RoleNames.APIName(models.RoleAdmin))
	}
	if cfg.DefaultRole != models.RoleStaff {
		t.Errorf("Expected default role staff, got %s", cfg.DefaultRole)
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("Expected sweep interval 1h, got %s", cfg.SweepInterval)
	}
	if strings.Contains(cfg.String(), "super-secret") {
		t.Error("Expected String() to mask the encryption key")
	}
}

func TestLoadRejectsInvalidRoles(t *testing.T) {
	t.Setenv("ROLE_ALIASES", "")
	t.Setenv("DEFAULT_ROLE", "dean")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown DEFAULT_ROLE")
	}

	t.Setenv("DEFAULT_ROLE", "")
	t.Setenv("ROLE_ALIASES", "dean=dean")
	if _, err := Load(); err == nil {
		t.Error("Expected error for unknown role in ROLE_ALIASES")
	}
}

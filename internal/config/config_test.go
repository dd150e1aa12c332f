package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APPOINTMENTS_TABLE", "")
	t.Setenv("ADMIN_CACHE_TTL", "")
	t.Setenv("EMAIL_PROVIDER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.AppointmentsTable != "appointments" {
		t.Fatalf("expected default appointments table, got %s", cfg.AppointmentsTable)
	}
	if cfg.PatientsTable != "patients" {
		t.Fatalf("expected default patients table, got %s", cfg.PatientsTable)
	}
	if cfg.AdminCacheTTL != 30*time.Second {
		t.Fatalf("expected default admin cache ttl, got %s", cfg.AdminCacheTTL)
	}
	if cfg.EmailProvider != "" {
		t.Fatalf("expected email disabled by default, got %s", cfg.EmailProvider)
	}
	if len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("expected no default CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APPOINTMENTS_TABLE", "carepulse_appointments")
	t.Setenv("TELNYX_API_KEY", "key-123")
	t.Setenv("EMAIL_PROVIDER", "SES ")
	t.Setenv("ADMIN_CACHE_TTL", "2m")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://carepulse.app, https://admin.carepulse.app")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.AppointmentsTable != "carepulse_appointments" {
		t.Fatalf("expected table override, got %s", cfg.AppointmentsTable)
	}
	if cfg.TelnyxAPIKey != "key-123" {
		t.Fatalf("expected telnyx key override, got %s", cfg.TelnyxAPIKey)
	}
	if cfg.EmailProvider != "ses" {
		t.Fatalf("expected normalized email provider, got %s", cfg.EmailProvider)
	}
	if cfg.AdminCacheTTL != 2*time.Minute {
		t.Fatalf("expected ttl override, got %s", cfg.AdminCacheTTL)
	}
	if !cfg.RedisTLS {
		t.Fatal("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.carepulse.app" {
		t.Fatalf("expected trimmed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

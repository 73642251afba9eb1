package config

import (
	"strings"
	"testing"
)

func TestLoad_MissingDatabaseURL_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_URL")
	}
	if !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error = %v, want it to name DATABASE_URL", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/janken?sslmode=disable")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SESSION_COOKIE_MAX_AGE", "")
	t.Setenv("COOKIE_SECURE", "")
	t.Setenv("COOKIE_DOMAIN", "")
	t.Setenv("CORS_ALLOWED_ORIGIN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.CookieMaxAge != 7*24*3600 {
		t.Errorf("CookieMaxAge = %d, want %d", cfg.CookieMaxAge, 7*24*3600)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure = true, want false")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want %q", cfg.CORSAllowedOrigin, "http://localhost:3000")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db:5432/janken")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SESSION_COOKIE_MAX_AGE", "3600")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("COOKIE_DOMAIN", "example.com")
	t.Setenv("CORS_ALLOWED_ORIGIN", "https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.DatabaseURL != "postgres://db:5432/janken" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
	if cfg.CookieMaxAge != 3600 {
		t.Errorf("CookieMaxAge = %d, want 3600", cfg.CookieMaxAge)
	}
	if !cfg.CookieSecure {
		t.Error("CookieSecure = false, want true")
	}
	if cfg.CookieDomain != "example.com" {
		t.Errorf("CookieDomain = %q, want example.com", cfg.CookieDomain)
	}
	if cfg.CORSAllowedOrigin != "https://app.example.com" {
		t.Errorf("CORSAllowedOrigin = %q, want https://app.example.com", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_InvalidIntAndBool_FallBackToDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/janken")
	t.Setenv("SESSION_COOKIE_MAX_AGE", "one week")
	t.Setenv("COOKIE_SECURE", "yes please")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.CookieMaxAge != 7*24*3600 {
		t.Errorf("CookieMaxAge = %d, want default %d", cfg.CookieMaxAge, 7*24*3600)
	}
	if cfg.CookieSecure {
		t.Error("CookieSecure = true, want default false")
	}
}

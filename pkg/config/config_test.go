package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:        "postgres://localhost/billmailer",
		JWTSecret:          "secret",
		GoogleClientID:     "id",
		GoogleClientSecret: "cs",
		GmailRefreshToken:  "rt",
		SenderEmail:        "billing@example.com",
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.SenderEmail = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing fields")
	}
	for _, want := range []string{"JWT_SECRET", "SENDER_EMAIL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not name %s", err, want)
		}
	}
	if strings.Contains(err.Error(), "DATABASE_URL") {
		t.Errorf("error %q names a field that is set", err)
	}
}

func TestLoadAdminEmails(t *testing.T) {
	t.Setenv("ADMIN_EMAILS", " Ops@Example.com, ,billing@example.com ")

	cfg := Load()
	want := []string{"ops@example.com", "billing@example.com"}
	if len(cfg.AdminEmails) != len(want) {
		t.Fatalf("got %v, want %v", cfg.AdminEmails, want)
	}
	for i := range want {
		if cfg.AdminEmails[i] != want[i] {
			t.Errorf("admin[%d] = %q, want %q", i, cfg.AdminEmails[i], want[i])
		}
	}
}

func TestLoadExpiryDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "")
	t.Setenv("JWT_REFRESH_EXPIRY", "not-a-duration")

	cfg := Load()
	if cfg.JWTAccessExpiry != 15*time.Minute {
		t.Errorf("access expiry = %v, want 15m", cfg.JWTAccessExpiry)
	}
	if cfg.JWTRefreshExpiry != 168*time.Hour {
		t.Errorf("refresh expiry = %v, want 168h", cfg.JWTRefreshExpiry)
	}
}

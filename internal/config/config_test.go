package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 9090\nsupabase:\n  url: https://example.supabase.co\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("SUPABASE_ANON_KEY", "anon")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9191 {
		t.Fatalf("env must win over file, got %d", cfg.Server.Port)
	}
	if cfg.Supabase.URL != "https://example.supabase.co" || cfg.Supabase.AnonKey != "anon" {
		t.Fatalf("unexpected supabase config: %+v", cfg.Supabase)
	}
}

func TestLoadDatabaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("database:\n  url: postgres://file/strikerlog\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env/strikerlog")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.URL != "postgres://env/strikerlog" {
		t.Fatalf("env must win over file, got %q", cfg.Database.URL)
	}
}

func TestLoadRejectsBadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected port validation error")
	}
}

package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("PORT")
	os.Unsetenv("ENV")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "5001" {
		t.Errorf("expected default port 5001, got %s", cfg.Port)
	}
	if cfg.DataDir != "data" {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
	if cfg.JWTSecret != DefaultJWTSecret {
		t.Errorf("expected default jwt secret, got %s", cfg.JWTSecret)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("DATA_DIR", "/var/lib/records")
	defer os.Unsetenv("PORT")
	defer os.Unsetenv("DATA_DIR")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.DataDir != "/var/lib/records" {
		t.Errorf("expected data dir override, got %s", cfg.DataDir)
	}
}

func TestLoadCORSOriginsList(t *testing.T) {
	os.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")
	defer os.Unsetenv("CORS_ORIGINS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("expected two origins, got %v", cfg.CORSOrigins)
	}
}

func TestValidateRejectsDefaultSecretInProduction(t *testing.T) {
	cfg := &Config{Env: "production", JWTSecret: DefaultJWTSecret, DataDir: "data"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for default secret in production")
	}

	cfg.JWTSecret = "a-real-secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateRejectsEmptyFields(t *testing.T) {
	cfg := &Config{Env: "development", JWTSecret: "", DataDir: "data"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for empty secret")
	}

	cfg = &Config{Env: "development", JWTSecret: "s", DataDir: ""}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for empty data dir")
	}
}

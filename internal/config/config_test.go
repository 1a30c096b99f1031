package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Host: "localhost", Name: "fashion_store"},
		Embedding: EmbeddingConfig{
			BaseURL: "http://localhost:8001/v1",
		},
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.ApplyDefaults()

	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("expected default LLM base URL, got %q", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model != "llama3.1:8b" {
		t.Errorf("expected default LLM model, got %q", cfg.LLM.Model)
	}
	if cfg.LLM.TimeoutSec != 60 {
		t.Errorf("expected default LLM timeout 60, got %d", cfg.LLM.TimeoutSec)
	}
	if cfg.Embedding.Model != "paraphrase-multilingual-MiniLM-L12-v2" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("expected default database port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("expected default ssl mode disable, got %q", cfg.Database.SSLMode)
	}
	if cfg.Recommend.DefaultLimit != 10 || cfg.Recommend.MaxLimit != 100 {
		t.Errorf("expected default limits 10/100, got %d/%d", cfg.Recommend.DefaultLimit, cfg.Recommend.MaxLimit)
	}
	if cfg.Recommend.TimeoutSec != 90 {
		t.Errorf("expected default recommend timeout 90, got %d", cfg.Recommend.TimeoutSec)
	}
	if cfg.Recommend.ReindexBatch != 64 {
		t.Errorf("expected default reindex batch 64, got %d", cfg.Recommend.ReindexBatch)
	}
	if cfg.Cache.TTLHours != 168 {
		t.Errorf("expected default cache TTL 168h, got %d", cfg.Cache.TTLHours)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.Model = "qwen2.5:7b"
	cfg.Recommend.DefaultLimit = 20
	cfg.ApplyDefaults()

	if cfg.LLM.Model != "qwen2.5:7b" {
		t.Errorf("explicit model overwritten: %q", cfg.LLM.Model)
	}
	if cfg.Recommend.DefaultLimit != 20 {
		t.Errorf("explicit default limit overwritten: %d", cfg.Recommend.DefaultLimit)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"zero port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"missing db name", func(c *Config) { c.Database.Name = "" }, "database.name"},
		{"missing embedding url", func(c *Config) { c.Embedding.BaseURL = "" }, "embedding.base_url"},
		{"default limit above max", func(c *Config) {
			c.Recommend.DefaultLimit = 500
			c.Recommend.MaxLimit = 100
		}, "default_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ApplyDefaults()
			tt.modify(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.internal", Port: 5433,
		User: "stylist", Password: "s3cret",
		Name: "fashion_store", SSLMode: "require",
	}
	got := d.DSN()
	want := "host=db.internal port=5433 user=stylist password=s3cret dbname=fashion_store sslmode=require"
	if got != want {
		t.Errorf("DSN mismatch:\n got  %s\n want %s", got, want)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("STYLIST_TEST_DB_HOST", "pg.example.com")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${STYLIST_TEST_DB_HOST}", "host: pg.example.com"},
		{"unset without default", "host: ${STYLIST_TEST_UNSET}", "host: "},
		{"unset with default", "host: ${STYLIST_TEST_UNSET:-localhost}", "host: localhost"},
		{"set variable ignores default", "host: ${STYLIST_TEST_DB_HOST:-localhost}", "host: pg.example.com"},
		{"no variables", "port: 8080", "port: 8080"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(expandEnvVars([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

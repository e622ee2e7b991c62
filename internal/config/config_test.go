package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad base url", func(c *Config) { c.Site.BaseURL = "ftp://x" }},
		{"missing markers", func(c *Config) { c.Site.CategoryMarker = "" }},
		{"negative delay", func(c *Config) { c.Engine.Delay = -time.Second }},
		{"zero timeout", func(c *Config) { c.Engine.RequestTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Engine.MaxRetries = -1 }},
		{"zero retries", func(c *Config) { c.Engine.MaxRetries = 0 }},
		{"zero batch size", func(c *Config) { c.Engine.DetailBatchSize = 0 }},
		{"zero workers", func(c *Config) { c.Engine.MaxWorkers = 0 }},
		{"no user agents", func(c *Config) { c.Engine.UserAgents = nil }},
		{"empty output dir", func(c *Config) { c.Storage.OutputDir = "" }},
		{"unknown export format", func(c *Config) { c.Export.Formats = []string{"pdf"} }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := Validate(cfg); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.BaseURL != "https://www.dvago.pk" {
		t.Errorf("base_url = %q", cfg.Site.BaseURL)
	}
	if cfg.Engine.Delay != 2*time.Second {
		t.Errorf("delay = %v", cfg.Engine.Delay)
	}
	if !cfg.Engine.DetailExtraction {
		t.Error("detail_extraction should default on")
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pharmacrawl.yaml")
	content := `
site:
  base_url: "https://example.test"
engine:
  delay: 500ms
  max_pages: 3
storage:
  output_dir: "/tmp/out"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.BaseURL != "https://example.test" {
		t.Errorf("base_url = %q", cfg.Site.BaseURL)
	}
	if cfg.Engine.Delay != 500*time.Millisecond {
		t.Errorf("delay = %v", cfg.Engine.Delay)
	}
	if cfg.Engine.MaxPages != 3 {
		t.Errorf("max_pages = %d", cfg.Engine.MaxPages)
	}
	if cfg.Storage.OutputDir != "/tmp/out" {
		t.Errorf("output_dir = %q", cfg.Storage.OutputDir)
	}
	// Untouched keys keep their defaults.
	if cfg.Site.ProductMarker != "/p/" {
		t.Errorf("product_marker = %q", cfg.Site.ProductMarker)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

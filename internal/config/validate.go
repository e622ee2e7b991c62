package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	if cfg.Site.CategoryMarker == "" || cfg.Site.ProductMarker == "" {
		return fmt.Errorf("site.category_marker and site.product_marker must be set")
	}

	if cfg.Engine.Delay < 0 {
		return fmt.Errorf("engine.delay must be >= 0")
	}
	if cfg.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine.request_timeout must be > 0")
	}
	// MaxRetries is an attempt count; zero would mean never fetching.
	if cfg.Engine.MaxRetries < 1 {
		return fmt.Errorf("engine.max_retries must be >= 1, got %d", cfg.Engine.MaxRetries)
	}
	if cfg.Engine.RetryDelay <= 0 {
		return fmt.Errorf("engine.retry_delay must be > 0")
	}
	if cfg.Engine.MaxPages < 0 {
		return fmt.Errorf("engine.max_pages must be >= 0, got %d", cfg.Engine.MaxPages)
	}
	if cfg.Engine.MaxPerCategory < 0 {
		return fmt.Errorf("engine.max_per_category must be >= 0, got %d", cfg.Engine.MaxPerCategory)
	}
	if cfg.Engine.DetailBatchSize < 1 {
		return fmt.Errorf("engine.detail_batch_size must be >= 1, got %d", cfg.Engine.DetailBatchSize)
	}
	if cfg.Engine.MaxWorkers < 1 {
		return fmt.Errorf("engine.max_workers must be >= 1, got %d", cfg.Engine.MaxWorkers)
	}
	if len(cfg.Engine.UserAgents) == 0 {
		return fmt.Errorf("engine.user_agents must not be empty")
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if cfg.Storage.OutputDir == "" {
		return fmt.Errorf("storage.output_dir must be set")
	}
	if cfg.Storage.DatabaseFile == "" {
		return fmt.Errorf("storage.database_file must be set")
	}

	validFormats := map[string]bool{
		"csv": true, "json": true, "xml": true, "xlsx": true, "report": true,
	}
	for _, f := range cfg.Export.Formats {
		if !validFormats[f] {
			return fmt.Errorf("export format %q is not supported (valid: csv, json, xml, xlsx, report)", f)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// ValidateURL checks if a URL string is usable as a fetch target.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

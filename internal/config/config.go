package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for pharmacrawl.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"    yaml:"site"`
	Engine  EngineConfig  `mapstructure:"engine"  yaml:"engine"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Export  ExportConfig  `mapstructure:"export"  yaml:"export"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SiteConfig describes the target site and its URL conventions.
type SiteConfig struct {
	BaseURL        string   `mapstructure:"base_url"        yaml:"base_url"`
	CategoryMarker string   `mapstructure:"category_marker" yaml:"category_marker"`
	ProductMarker  string   `mapstructure:"product_marker"  yaml:"product_marker"`
	AZMarker       string   `mapstructure:"az_marker"       yaml:"az_marker"`
	AssetKeywords  []string `mapstructure:"asset_keywords"  yaml:"asset_keywords"`
}

// EngineConfig controls the scraping run.
type EngineConfig struct {
	Delay            time.Duration `mapstructure:"delay"              yaml:"delay"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    yaml:"request_timeout"`
	MaxRetries       int           `mapstructure:"max_retries"        yaml:"max_retries"`
	RetryDelay       time.Duration `mapstructure:"retry_delay"        yaml:"retry_delay"`
	SettleWait       time.Duration `mapstructure:"settle_wait"        yaml:"settle_wait"`
	MaxPages         int           `mapstructure:"max_pages"          yaml:"max_pages"`
	MaxPerCategory   int           `mapstructure:"max_per_category"   yaml:"max_per_category"`
	DetailExtraction bool          `mapstructure:"detail_extraction"  yaml:"detail_extraction"`
	DetailBatchSize  int           `mapstructure:"detail_batch_size"  yaml:"detail_batch_size"`
	// MaxWorkers is accepted for forward compatibility but the run is
	// sequential; the scheduler does not consume it.
	MaxWorkers int      `mapstructure:"max_workers" yaml:"max_workers"`
	UserAgents []string `mapstructure:"user_agents" yaml:"user_agents"`
}

// FetcherConfig controls the HTTP transport.
type FetcherConfig struct {
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// StorageConfig controls the SQLite database and output layout.
type StorageConfig struct {
	OutputDir    string `mapstructure:"output_dir"    yaml:"output_dir"`
	DatabaseFile string `mapstructure:"database_file" yaml:"database_file"`
}

// ExportConfig controls which flat formats are written after a run.
type ExportConfig struct {
	Formats []string `mapstructure:"formats" yaml:"formats"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults for dvago.pk.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			BaseURL:        "https://www.dvago.pk",
			CategoryMarker: "/cat/",
			ProductMarker:  "/p/",
			AZMarker:       "/atozmedicine/",
			AssetKeywords:  []string{"product", "medicine", "dvago-assets"},
		},
		Engine: EngineConfig{
			Delay:            2 * time.Second,
			RequestTimeout:   30 * time.Second,
			MaxRetries:       3,
			RetryDelay:       1 * time.Second,
			SettleWait:       2 * time.Second,
			MaxPages:         0,
			MaxPerCategory:   0,
			DetailExtraction: true,
			DetailBatchSize:  10,
			MaxWorkers:       3,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Fetcher: FetcherConfig{
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Storage: StorageConfig{
			OutputDir:    "./pharmacrawl_data",
			DatabaseFile: "catalog.db",
		},
		Export: ExportConfig{
			Formats: []string{"csv", "json", "xml", "xlsx", "report"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

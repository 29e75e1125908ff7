// Package config loads and validates crawler configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	City    CityConfig    `mapstructure:"city"`
	Crawl   CrawlConfig   `mapstructure:"crawl"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Sink    SinkConfig    `mapstructure:"sink"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig locates the catalog API.
type APIConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	ProductsEndpoint string `mapstructure:"products_endpoint"`
	CityEndpoint     string `mapstructure:"city_endpoint"`
	PerPage          int    `mapstructure:"per_page"`
}

// CityConfig selects the target region.
type CityConfig struct {
	TargetName string `mapstructure:"target_name"`
	SeedUUID   string `mapstructure:"seed_uuid"`
}

// CrawlConfig governs the crawl pipeline.
type CrawlConfig struct {
	ParseDetails   bool     `mapstructure:"parse_details"`
	Concurrency    int      `mapstructure:"concurrency"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	DelaySeconds   int      `mapstructure:"delay_seconds"`
	CategoriesFile string   `mapstructure:"categories_file"`
	Categories     []string `mapstructure:"categories"`
	UserAgents     []string `mapstructure:"user_agents"`
}

// ProxyConfig controls the egress rotation subsystem.
type ProxyConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Mode     string   `mapstructure:"mode"`
	Endpoint string   `mapstructure:"endpoint"`
	Auth     string   `mapstructure:"auth"`
	ListFile string   `mapstructure:"list_file"`
	List     []string `mapstructure:"list"`
}

// SinkConfig picks the product record destination.
type SinkConfig struct {
	Kind  string `mapstructure:"kind"`
	Path  string `mapstructure:"path"`
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

// MetricsConfig toggles the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://alkoteka.com/web-api/v1")
	v.SetDefault("api.products_endpoint", "/product")
	v.SetDefault("api.city_endpoint", "/city")
	v.SetDefault("api.per_page", 20)
	v.SetDefault("city.target_name", "Краснодар")
	v.SetDefault("city.seed_uuid", "4a70f9e0-46ae-11e7-83ff-00155d026416")
	v.SetDefault("crawl.parse_details", true)
	v.SetDefault("crawl.concurrency", 4)
	v.SetDefault("crawl.timeout_seconds", 20)
	v.SetDefault("crawl.delay_seconds", 2)
	v.SetDefault("crawl.categories_file", "categories.txt")
	v.SetDefault("proxy.enabled", false)
	v.SetDefault("proxy.mode", "rotating")
	v.SetDefault("proxy.list_file", "proxy_list.txt")
	v.SetDefault("sink.kind", "jsonl")
	v.SetDefault("sink.path", "products.jsonl")
	v.SetDefault("sink.table", "products")
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must be set")
	}
	if c.API.PerPage <= 0 {
		return fmt.Errorf("api.per_page must be > 0")
	}
	if c.City.TargetName == "" {
		return fmt.Errorf("city.target_name must be set")
	}
	if _, err := uuid.Parse(c.City.SeedUUID); err != nil {
		return fmt.Errorf("city.seed_uuid must be a valid uuid: %w", err)
	}
	if c.Crawl.Concurrency <= 0 {
		return fmt.Errorf("crawl.concurrency must be > 0")
	}
	if c.Crawl.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawl.timeout_seconds must be > 0")
	}
	if c.Proxy.Enabled && c.Proxy.Mode != "rotating" && c.Proxy.Mode != "single" {
		return fmt.Errorf("proxy.mode must be rotating or single")
	}
	switch c.Sink.Kind {
	case "jsonl", "postgres":
	default:
		return fmt.Errorf("sink.kind must be jsonl or postgres")
	}
	if c.Sink.Kind == "jsonl" && c.Sink.Path == "" {
		return fmt.Errorf("sink.path must be set for the jsonl sink")
	}
	if c.Sink.Kind == "postgres" && c.Sink.DSN == "" {
		return fmt.Errorf("sink.dsn must be set for the postgres sink")
	}
	return nil
}

// Timeout converts the fetch timeout config into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Crawl.TimeoutSeconds) * time.Second
}

// Delay converts the polite delay config into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Crawl.DelaySeconds) * time.Second
}

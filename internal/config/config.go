// Package config loads the pipeline configuration from a YAML file with
// environment-variable overrides for credentials and per-deploy knobs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

// AppConfig holds the complete application configuration
type AppConfig struct {
	Scraper     ScraperConfig     `yaml:"scraper"`
	Browser     BrowserConfig     `yaml:"browser"`
	Browserless BrowserlessConfig `yaml:"browserless"`
	Rendered    RenderedConfig    `yaml:"rendered"`
	Generation  GenerationConfig  `yaml:"generation"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Resolver    ResolverConfig    `yaml:"resolver"`
	Proxies     ProxyConfig       `yaml:"proxies"`
}

// ProxyConfig holds outbound proxy settings for the raw HTTP backend
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
	Auth    struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// ScraperConfig holds the fetch-orchestration configuration
type ScraperConfig struct {
	Backend     models.BackendName `yaml:"backend"`
	Concurrency int                `yaml:"concurrency"`
	GroupDelay  time.Duration      `yaml:"group_delay"`
	MaxRetries  int                `yaml:"max_retries"`
	RetryDelay  time.Duration      `yaml:"retry_delay"`
	Timeout     time.Duration      `yaml:"timeout"`
	WaitTime    time.Duration      `yaml:"wait_time"`
	UserAgents  []string           `yaml:"user_agents,omitempty"`
}

// BrowserConfig holds the local headless-browser configuration
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`
}

// BrowserlessConfig holds credentials for the hosted browser-automation API
type BrowserlessConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// RenderedConfig holds credentials for the hosted rendering API that returns
// markdown alongside HTML
type RenderedConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// GenerationConfig holds credentials for the text-generation service
type GenerationConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	ConfigURL string `yaml:"config_url"` // remote model-config document, optional
}

// CatalogConfig holds the catalog store connection
type CatalogConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// ResolverConfig holds the source-URL resolution policy
type ResolverConfig struct {
	BaseURL             string   `yaml:"base_url"`
	ExcludedDomains     []string `yaml:"excluded_domains,omitempty"`
	SimilarityThreshold float64  `yaml:"similarity_threshold"`
}

// Load loads the configuration from a YAML file, then applies environment
// overrides. A missing file is not an error; Default() plus the environment
// is a complete configuration.
func Load(filename string) (*AppConfig, error) {
	config := Default()

	data, err := os.ReadFile(filename)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", filename, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", filename, err)
	}

	config.applyEnv()

	if len(config.Scraper.UserAgents) == 0 {
		config.Scraper.UserAgents = DefaultUserAgents
	}
	if config.Scraper.Concurrency <= 0 {
		config.Scraper.Concurrency = 3
	}
	return config, nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Scraper: ScraperConfig{
			Backend:     models.BackendHTTP,
			Concurrency: 3,
			GroupDelay:  2 * time.Second,
			MaxRetries:  3,
			RetryDelay:  2 * time.Second,
			Timeout:     30 * time.Second,
			WaitTime:    3 * time.Second,
			UserAgents:  DefaultUserAgents,
		},
		Browser: BrowserConfig{
			Headless:  true,
			UserAgent: DefaultUserAgents[0],
		},
		Browserless: BrowserlessConfig{
			URL: "https://chrome.browserless.io",
		},
		Rendered: RenderedConfig{
			URL: "https://api.firecrawl.dev",
		},
		Generation: GenerationConfig{},
		Resolver: ResolverConfig{
			BaseURL:             "https://www.catchdesmoines.com",
			SimilarityThreshold: 0.6,
		},
	}
}

// applyEnv layers environment variables over the file configuration.
// Credentials normally arrive this way.
func (c *AppConfig) applyEnv() {
	if v := os.Getenv("SCRAPER_BACKEND"); v != "" {
		c.Scraper.Backend = models.BackendName(v)
	}
	if v := os.Getenv("SCRAPER_USER_AGENT"); v != "" {
		c.Scraper.UserAgents = append([]string{v}, c.Scraper.UserAgents...)
	}
	if d, ok := envDuration("SCRAPER_WAIT_TIME"); ok {
		c.Scraper.WaitTime = d
	}
	if d, ok := envDuration("SCRAPER_TIMEOUT"); ok {
		c.Scraper.Timeout = d
	}
	if v := os.Getenv("BROWSERLESS_URL"); v != "" {
		c.Browserless.URL = v
	}
	if v := os.Getenv("BROWSERLESS_API_KEY"); v != "" {
		c.Browserless.APIKey = v
	}
	if v := os.Getenv("RENDERED_API_URL"); v != "" {
		c.Rendered.URL = v
	}
	if v := os.Getenv("FIRECRAWL_API_KEY"); v != "" {
		c.Rendered.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Generation.APIKey = v
	}
	if v := os.Getenv("MODEL_CONFIG_URL"); v != "" {
		c.Generation.ConfigURL = v
	}
	if v := os.Getenv("CATALOG_URL"); v != "" {
		c.Catalog.URL = v
	}
	if v := os.Getenv("CATALOG_API_KEY"); v != "" {
		c.Catalog.APIKey = v
	}
}

func envDuration(name string) (time.Duration, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}

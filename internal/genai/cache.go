package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

// ModelConfig holds the tunable generation parameters. The standard profile
// drives extraction; the lightweight profile drives short classification
// calls.
type ModelConfig struct {
	Model                string  `json:"model"`
	MaxTokens            int     `json:"max_tokens"`
	Temperature          float64 `json:"temperature"`
	LightweightModel     string  `json:"lightweight_model"`
	LightweightMaxTokens int     `json:"lightweight_max_tokens"`
}

// DefaultModelConfig is used whenever the remote source is unavailable.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		Model:                "claude-3-5-sonnet-20241022",
		MaxTokens:            6000,
		Temperature:          0.1,
		LightweightModel:     "claude-3-haiku-20240307",
		LightweightMaxTokens: 1024,
	}
}

// ConfigSource fetches the current model configuration.
type ConfigSource interface {
	FetchModelConfig(ctx context.Context) (ModelConfig, error)
}

// ConfigCache caches the remote model configuration for a TTL. A fetch
// failure falls back to the last good value, or to DefaultModelConfig when
// nothing was ever fetched.
type ConfigCache struct {
	Source ConfigSource
	TTL    time.Duration
	Now    func() time.Time

	mu        sync.Mutex
	value     ModelConfig
	fetchedAt time.Time
}

// DefaultConfigTTL bounds how stale a cached model configuration may get.
const DefaultConfigTTL = 5 * time.Minute

// NewConfigCache returns a cache over source. A nil source always serves
// DefaultModelConfig.
func NewConfigCache(source ConfigSource) *ConfigCache {
	return &ConfigCache{
		Source: source,
		TTL:    DefaultConfigTTL,
		Now:    time.Now,
	}
}

// Get returns the cached configuration, refreshing it when the TTL has
// expired. Get never fails: on fetch error it logs and serves the previous
// value or the hardcoded defaults.
func (c *ConfigCache) Get(ctx context.Context) ModelConfig {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.Now()
	if !c.fetchedAt.IsZero() && now.Sub(c.fetchedAt) < c.TTL {
		return c.value
	}
	if c.Source == nil {
		c.value = DefaultModelConfig()
		c.fetchedAt = now
		return c.value
	}

	cfg, err := c.Source.FetchModelConfig(ctx)
	if err != nil {
		log.Printf("model config fetch failed, using fallback: %v", err)
		if c.fetchedAt.IsZero() {
			c.value = DefaultModelConfig()
		}
		c.fetchedAt = now
		return c.value
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModelConfig().Model
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultModelConfig().MaxTokens
	}
	if cfg.LightweightModel == "" {
		cfg.LightweightModel = DefaultModelConfig().LightweightModel
	}
	if cfg.LightweightMaxTokens == 0 {
		cfg.LightweightMaxTokens = DefaultModelConfig().LightweightMaxTokens
	}
	c.value = cfg
	c.fetchedAt = now
	return c.value
}

// HTTPConfigSource reads a ModelConfig JSON document from a URL, typically a
// small config service or object-store key.
type HTTPConfigSource struct {
	URL  string
	HTTP *http.Client
}

func NewHTTPConfigSource(url string) *HTTPConfigSource {
	return &HTTPConfigSource{
		URL:  url,
		HTTP: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *HTTPConfigSource) FetchModelConfig(ctx context.Context) (ModelConfig, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("building config request: %w", err)
	}
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("fetching model config: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ModelConfig{}, fmt.Errorf("fetching model config: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ModelConfig{}, fmt.Errorf("reading model config: %w", err)
	}
	var cfg ModelConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("decoding model config: %w", err)
	}
	return cfg, nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scraper.Concurrency != 3 {
		t.Errorf("concurrency = %d, want 3", cfg.Scraper.Concurrency)
	}
	if cfg.Scraper.GroupDelay != 2*time.Second {
		t.Errorf("group delay = %v, want 2s", cfg.Scraper.GroupDelay)
	}
	if len(cfg.Scraper.UserAgents) == 0 {
		t.Error("expected default user agents")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
scraper:
  backend: browser
  concurrency: 5
resolver:
  base_url: https://www.example-aggregator.com
  similarity_threshold: 0.7
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scraper.Backend != models.BackendBrowser {
		t.Errorf("backend = %q", cfg.Scraper.Backend)
	}
	if cfg.Scraper.Concurrency != 5 {
		t.Errorf("concurrency = %d", cfg.Scraper.Concurrency)
	}
	if cfg.Resolver.SimilarityThreshold != 0.7 {
		t.Errorf("threshold = %v", cfg.Resolver.SimilarityThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_BACKEND", "rendered")
	t.Setenv("SCRAPER_TIMEOUT", "90s")
	t.Setenv("FIRECRAWL_API_KEY", "fc-test")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scraper.Backend != models.BackendRendered {
		t.Errorf("backend = %q, want rendered", cfg.Scraper.Backend)
	}
	if cfg.Scraper.Timeout != 90*time.Second {
		t.Errorf("timeout = %v, want 90s", cfg.Scraper.Timeout)
	}
	if cfg.Rendered.APIKey != "fc-test" {
		t.Errorf("rendered key = %q", cfg.Rendered.APIKey)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("scraper: [not a map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

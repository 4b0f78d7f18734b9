// Package cli defines the command-line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dj-pearson/pulse-ingest/internal/catalog"
	"github.com/dj-pearson/pulse-ingest/internal/config"
	"github.com/dj-pearson/pulse-ingest/internal/extract"
	"github.com/dj-pearson/pulse-ingest/internal/genai"
	"github.com/dj-pearson/pulse-ingest/internal/ingest"
	"github.com/dj-pearson/pulse-ingest/internal/scraper"
)

var flagConfig string

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse-ingest",
		Short: "Scrape local listings into the catalog",
		Long: `pulse-ingest crawls event and dining listings, extracts structured
records with a generation model, resolves each listing's real source URL,
and merges the results into the catalog.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "config.yaml", "Path to configuration file (YAML)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newResolveURLsCmd())
	cmd.AddCommand(newServeMetricsCmd())

	return cmd
}

// buildRunner loads configuration and assembles the pipeline, returning the
// extractor alongside for commands that classify pages directly.
// needGeneration gates the extraction credential check; dryRun allows
// running without catalog credentials.
func buildRunner(needGeneration, dryRun bool) (*ingest.Runner, *extract.Extractor, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if needGeneration && cfg.Generation.APIKey == "" {
		return nil, nil, fmt.Errorf("generation API key not configured (set ANTHROPIC_API_KEY)")
	}

	var source genai.ConfigSource
	if cfg.Generation.ConfigURL != "" {
		source = genai.NewHTTPConfigSource(cfg.Generation.ConfigURL)
	}
	client := genai.NewClient(cfg.Generation.APIKey, genai.NewConfigCache(source))
	if cfg.Generation.BaseURL != "" {
		client.BaseURL = cfg.Generation.BaseURL
	}

	var store catalog.Store
	if cfg.Catalog.URL != "" {
		store = catalog.NewRESTStore(cfg.Catalog.URL, cfg.Catalog.APIKey)
	} else if !dryRun {
		return nil, nil, fmt.Errorf("catalog store not configured (set CATALOG_URL and CATALOG_API_KEY)")
	}

	extractor := extract.New(client)
	return ingest.NewRunner(cfg, scraper.New(cfg), extractor, store), extractor, nil
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dj-pearson/pulse-ingest/internal/ingest"
	"github.com/dj-pearson/pulse-ingest/internal/io"
	"github.com/dj-pearson/pulse-ingest/pkg/models"
)

var (
	flagCategory string
	flagMaxPages int
	flagBackend  string
	flagDryRun   bool
	flagOutput   string
)

func newCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Ingest listings from one source URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runCrawl,
	}

	cmd.Flags().StringVar(&flagCategory, "category", "events", "Category: events, restaurants, restaurant_openings, attractions, or auto")
	cmd.Flags().IntVar(&flagMaxPages, "max-pages", 1, "Paginated listing pages to fetch")
	cmd.Flags().StringVar(&flagBackend, "backend", "", "Force a scrape backend: browser, browserless, rendered, http")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Compute decisions without writing to the catalog")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write the run summary to a JSON file (default stdout)")

	return cmd
}

func runCrawl(cmd *cobra.Command, args []string) error {
	category := models.Category(flagCategory)
	if flagCategory != "auto" && !category.Valid() {
		return fmt.Errorf("invalid category: %s", flagCategory)
	}

	runner, extractor, err := buildRunner(true, flagDryRun)
	if err != nil {
		return err
	}

	if flagCategory == "auto" {
		page := runner.Fetcher.Fetch(cmd.Context(), models.ScrapeTarget{URL: args[0]})
		if !page.Success {
			return fmt.Errorf("fetching %s for classification: %s", args[0], page.Err)
		}
		category, err = extractor.Classify(cmd.Context(), page)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "classified %s as %s\n", args[0], category)
	}

	summary, err := runner.Run(cmd.Context(), ingest.Request{
		URL:             args[0],
		Category:        category,
		MaxPages:        flagMaxPages,
		BackendOverride: models.BackendName(flagBackend),
		DryRun:          flagDryRun,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "found %d, future %d, inserted %d, updated %d, skipped %d, dropped %d, errors %d\n",
		summary.TotalFound, summary.FutureItems, summary.Inserted, summary.Updated,
		summary.Skipped, summary.Dropped, len(summary.Errors))

	return io.WriteJSON(flagOutput, summary)
}

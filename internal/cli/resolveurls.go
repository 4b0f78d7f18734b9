package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dj-pearson/pulse-ingest/internal/io"
)

var (
	flagURLFile       string
	flagResolveOutput string
)

func newResolveURLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve-urls",
		Short: "Re-resolve canonical source URLs for aggregator detail pages",
		Long: `Reads aggregator detail-page URLs (one per line) and re-runs source URL
resolution for each, in batches. Useful for repairing entries cataloged
before resolution existed or whose resolution fell back.`,
		RunE: runResolveURLs,
	}

	cmd.Flags().StringVar(&flagURLFile, "input", "", "File of detail-page URLs, one per line (required)")
	cmd.Flags().StringVar(&flagResolveOutput, "output", "", "Write results to a JSON file (default stdout)")
	cmd.MarkFlagRequired("input")

	return cmd
}

func runResolveURLs(cmd *cobra.Command, args []string) error {
	urls, err := io.ReadURLs(flagURLFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", flagURLFile, err)
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs in %s", flagURLFile)
	}

	runner, _, err := buildRunner(false, true)
	if err != nil {
		return err
	}

	results := runner.RepairSourceURLs(cmd.Context(), urls)

	resolved := 0
	for _, r := range results {
		if r.OK {
			resolved++
		}
	}
	fmt.Fprintf(os.Stderr, "resolved %d of %d URLs\n", resolved, len(results))

	return io.WriteJSON(flagResolveOutput, results)
}

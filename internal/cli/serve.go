package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dj-pearson/pulse-ingest/internal/metrics"
)

var flagListen string

func newServeMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve-metrics",
		Short: "Serve Prometheus metrics over HTTP",
		RunE:  runServeMetrics,
	}

	cmd.Flags().StringVar(&flagListen, "listen", ":9190", "Listen address")

	return cmd
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	fmt.Fprintf(os.Stderr, "serving metrics on %s/metrics\n", flagListen)
	return http.ListenAndServe(flagListen, mux)
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/discovery"
	"github.com/outreachlabs/leadscout/internal/geocode"
	"github.com/outreachlabs/leadscout/internal/model"
)

var batchCmd = &cobra.Command{
	Use:   "batch <requests.json>",
	Short: "Run several discovery requests from a JSON file",
	Long:  "Reads a JSON array of {query, location, max_results} objects and runs them with bounded concurrency. Results are written as a JSON array aligned with the input order.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read requests: %w", err)
		}
		var reqs []model.DiscoveryRequest
		if err := json.Unmarshal(data, &reqs); err != nil {
			return fmt.Errorf("parse requests: %w", err)
		}
		if len(reqs) == 0 {
			return fmt.Errorf("no requests in %s", args[0])
		}

		factory := browser.NewChromeFactory(cfg.Browser)
		resolver := geocode.NewChainResolver(
			geocode.NewNominatimProvider(cfg.Geocode),
			geocode.NewWebSearchProvider("https://www.google.com/search"),
			geocode.NewMapsURLProvider("https://www.google.com/maps/search/"),
		)
		engine := discovery.NewEngine(cfg, factory, resolver)

		results := engine.DiscoverAll(ctx, reqs, nil)

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

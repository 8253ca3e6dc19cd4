package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/outreachlabs/leadscout/internal/browser"
	"github.com/outreachlabs/leadscout/internal/discovery"
	"github.com/outreachlabs/leadscout/internal/geocode"
	"github.com/outreachlabs/leadscout/internal/model"
)

var (
	discoverMax    int
	discoverOutput string
)

var discoverCmd = &cobra.Command{
	Use:   "discover <query> <location>",
	Short: "Discover businesses matching a query near a location",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		factory := browser.NewChromeFactory(cfg.Browser)
		resolver := geocode.NewChainResolver(
			geocode.NewNominatimProvider(cfg.Geocode),
			geocode.NewWebSearchProvider("https://www.google.com/search"),
			geocode.NewMapsURLProvider("https://www.google.com/maps/search/"),
		)
		engine := discovery.NewEngine(cfg, factory, resolver)

		req := model.DiscoveryRequest{
			Query:      args[0],
			Location:   args[1],
			MaxResults: discoverMax,
		}
		result := engine.Discover(ctx, req, nil)

		return writeResult(cmd.OutOrStdout(), result, discoverOutput)
	},
}

func writeResult(w io.Writer, result *model.DiscoveryResult, format string) error {
	if format == "table" {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tPHONE\tWEBSITE\tCONFIDENCE\tTAG")
		for _, biz := range result.Businesses {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n",
				biz.BusinessName, biz.Phone, biz.WebsiteURL, biz.Confidence, biz.Tag)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if result.FallbackUsed() {
			fmt.Fprintln(w, strings.Repeat("-", 40))
			fmt.Fprintln(w, "note: sample data, live discovery failed")
		}
		return nil
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func init() {
	discoverCmd.Flags().IntVar(&discoverMax, "max", 20, "maximum businesses to discover")
	discoverCmd.Flags().StringVar(&discoverOutput, "output", "json", "output format: json or table")
	rootCmd.AddCommand(discoverCmd)
}

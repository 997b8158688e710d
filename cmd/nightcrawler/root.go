// Package main provides the entry point for the nightcrawler CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for nightcrawler.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nightcrawler",
		Short: "Single-site web crawler with HTTP header reconnaissance",
		Long: `Nightcrawler maps a website and fingerprints its HTTP response headers.

Starting from a seed URL, it renders pages in a headless browser (so
JavaScript-injected links are found too), follows every same-host link,
and aggregates the distinct response headers the site serves. The result
is the site's URL surface plus its header fingerprint.

Use --no-render for a fast static crawl without a browser.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().BoolP("silent", "s", false, "Only log errors")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

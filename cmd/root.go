// Package cmd defines the CLI commands for the crawler executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alkoteka-crawler",
		Short: "Crawls the alkoteka catalog API and emits normalized product records.",
		Long: `alkoteka-crawler walks the alkoteka.com internal JSON API for a
configured city. It resolves the city name to a region identifier,
paginates every configured category listing, optionally enriches each
product from its detail endpoint, and streams normalized records to the
configured sink.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./crawler.yaml)")

	cmd.AddCommand(newCrawlCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

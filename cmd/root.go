// Package cmd defines and implements the CLI commands for the clubs-crawler executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/clubs-crawler/internal/logging"
)

type rootOptions struct {
	configFile string
}

// newRootCmd creates and configures the root command.
func newRootCmd(deps crawlDeps) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "clubs-crawler",
		Short: "Scrapes the hollandsevelden.nl club directory.",
		Long: `clubs-crawler walks the alphabetical club directory of hollandsevelden.nl,
visits every club's page to collect its logo and shirt images, optionally
downloads the big logos and saves the result as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	cmd.AddCommand(newCrawlCmd(opts, deps))

	return cmd
}

// Execute is the main entry point. SIGINT and SIGTERM cancel the running
// command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(defaultCrawlDeps()).ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	logger, logErr := logging.New(false)
	if logErr != nil {
		fmt.Fprintln(os.Stderr, "Command execution failed:", err)
		os.Exit(1)
	}
	logger.Fatal("Command execution failed", zap.Error(err))
}

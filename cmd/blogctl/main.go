package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	logMode   string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "Build illustrated blog documents from the command line",
	Long: `blogctl runs the blog pipeline without the HTTP server or database.

Available subcommands:
  build     - Write, illustrate and assemble a post for a topic
  check-key - Report whether the configured image search key is usable`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "development", "logger mode (development or production)")
	buildCmd.Flags().StringVar(&topic, "topic", "", "topic to write about (required)")
	buildCmd.Flags().StringVar(&outputDir, "output", "", "output root; defaults to OUTPUT_ROOT")
	_ = buildCmd.MarkFlagRequired("topic")
	checkKeyCmd.Flags().BoolVar(&resetKey, "reset", false, "forget the cached result before checking")

	rootCmd.AddCommand(buildCmd, checkKeyCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

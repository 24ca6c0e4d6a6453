package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codoraai-coder/marketing-agent/internal/app"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

var resetKey bool

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Check the image search API key",
	RunE:  runCheckKey,
}

func runCheckKey(cmd *cobra.Command, _ []string) error {
	log, err := logger.New(logMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	v := app.NewKeyValidator(log, cfg)
	if resetKey {
		v.Reset()
	}
	if v.Valid(cmd.Context()) {
		fmt.Fprintln(cmd.OutOrStdout(), "search key: valid")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "search key: invalid or missing")
	return nil
}

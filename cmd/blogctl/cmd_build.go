package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codoraai-coder/marketing-agent/internal/app"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

var topic string

// buildCmd runs one pipeline pass and prints where the artifacts landed.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a blog document for a topic",
	RunE:  runBuild,
}

func runBuild(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(topic) == "" {
		return fmt.Errorf("--topic must not be empty")
	}
	log, err := logger.New(logMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	if outputDir != "" {
		cfg.OutputRoot = outputDir
	}

	ctx := cmd.Context()
	p, err := app.NewPipeline(ctx, log, cfg)
	if err != nil {
		return err
	}
	res, err := p.Builder.Build(ctx, topic)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:      %s\n", res.RunID)
	fmt.Fprintf(out, "title:    %s\n", res.Title)
	fmt.Fprintf(out, "document: %s\n", res.DocumentPath)
	if res.CoverPath != "" {
		fmt.Fprintf(out, "cover:    %s\n", res.CoverPath)
	} else {
		fmt.Fprintln(out, "cover:    (none)")
	}
	fmt.Fprintf(out, "assets:   %s\n", res.AssetsDir)
	found := 0
	for _, v := range res.Visuals {
		if v.Found() {
			found++
		}
	}
	fmt.Fprintf(out, "visuals:  %d/%d found\n", found, len(res.Visuals))
	return nil
}

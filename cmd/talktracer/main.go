package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/talk-tracer/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "talktracer",
		Short:         "Meeting recording pipeline: transcription, analytics, summary, translation, indexing",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newMigrateCmd(),
		newTokenCmd(),
	)
	return root
}

// loadConfig is shared by every subcommand
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

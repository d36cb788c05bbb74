package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd() *cobra.Command {
	var meetingID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline once for a meeting and wait for the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close(context.Background())

			report := a.orchestrator.Run(ctx, meetingID)
			if !report.Success {
				if report.FailedStage != "" {
					return fmt.Errorf("stage %s failed: %w", report.FailedStage, report.Err)
				}
				return report.Err
			}

			logger.Info("✅ Meeting processed",
				zap.String("meeting_id", meetingID),
				zap.String("run_id", report.RunID),
				zap.Int("stages", len(report.Stages)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "meeting %s processed (run %s)\n", meetingID, report.RunID)
			return nil
		},
	}

	cmd.Flags().StringVar(&meetingID, "meeting-id", "", "24-hex id of the meeting to process")
	_ = cmd.MarkFlagRequired("meeting-id")
	return cmd
}

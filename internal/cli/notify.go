package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/spf13/cobra"
)

var notifyTestCmd = &cobra.Command{
	Use:   "notify-test",
	Short: "Send one test notification through the configured channel",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg, os.Stderr)
	t, cleanup, err := initTracker(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	outcome := t.SendTest(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "channel: %s\nstatus:  %s\n", outcome.Channel, outcome.Status)
	if outcome.Detail != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "detail:  %s\n", outcome.Detail)
	}

	if outcome.Status == model.DeliveryFailed {
		return fmt.Errorf("test notification failed")
	}
	return nil
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one caption through the filter and classifier without notifying",
	Example: `  vtrack analyze --text "Massive protest breaks out downtown" \
    --followers 200 --plays 300 --likes 50 --shares 15 --comments 3`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("text", "t", "", "Caption text (required)")
	analyzeCmd.Flags().Bool("verified", false, "Author is verified")
	analyzeCmd.Flags().Int64("followers", 0, "Author follower count")
	analyzeCmd.Flags().Int64("plays", 0, "Play count")
	analyzeCmd.Flags().Int64("likes", 0, "Like count")
	analyzeCmd.Flags().Int64("shares", 0, "Share count")
	analyzeCmd.Flags().Int64("comments", 0, "Comment count")
	_ = analyzeCmd.MarkFlagRequired("text")
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	item := itemFromFlags(cmd.Flags())

	logger := newLogger(cfg, os.Stderr)
	t, cleanup, err := initTracker(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	analysis := t.Analyze(ctx, item)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(analysis); err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return nil
}

// itemFromFlags builds a candidate from the analyze flags, clamping
// negative counters like every source does.
func itemFromFlags(flags *pflag.FlagSet) model.CandidateItem {
	var item model.CandidateItem
	item.Text, _ = flags.GetString("text")
	item.AuthorVerified, _ = flags.GetBool("verified")
	item.AuthorFollowerCount, _ = flags.GetInt64("followers")
	item.PlayCount, _ = flags.GetInt64("plays")
	item.LikeCount, _ = flags.GetInt64("likes")
	item.ShareCount, _ = flags.GetInt64("shares")
	item.CommentCount, _ = flags.GetInt64("comments")
	return item.Normalized()
}

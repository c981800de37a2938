package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ogulcanaydogan/viraltrack/pkg/source"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a caption drop into the SQLite candidate queue",
	Long: `Reads a JSON or YAML caption drop (flat records, scraper records or bare
strings) and appends every record to the candidates table read by the
sqlite source.`,
	Example: `  vtrack ingest --file captions.json --hashtag news
  vtrack ingest --file drop.yaml --db /var/lib/vtrack/candidates.db`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("file", "f", "", "Caption drop to load (required)")
	ingestCmd.Flags().String("db", "", "Candidate database (default from source.db_path)")
	ingestCmd.Flags().String("hashtag", "", "Hashtag the drop was scraped for")
	_ = ingestCmd.MarkFlagRequired("file")
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("file")
	hashtag, _ := cmd.Flags().GetString("hashtag")
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = cfg.Source.DBPath
	}
	if dbPath == "" {
		return fmt.Errorf("no database: pass --db or set source.db_path")
	}

	logger := newLogger(cfg, os.Stderr)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	items, err := source.NewFile(path, logger).Fetch(ctx)
	if err != nil {
		return err
	}

	queue, err := source.NewSQLite(dbPath, 0, logger)
	if err != nil {
		return err
	}
	defer func() { _ = queue.Close() }()

	if err := queue.Insert(ctx, hashtag, items...); err != nil {
		return err
	}

	total, err := queue.Pending(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ingested %d items into %s (%d rows stored)\n", len(items), dbPath, total)
	return nil
}

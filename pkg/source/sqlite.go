package source

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ogulcanaydogan/viraltrack/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLite reads candidates appended to a local table by an external scraper.
// Each fetch returns rows added since the previous fetch, oldest first.
type SQLite struct {
	db     *sql.DB
	limit  int
	logger *slog.Logger

	mu     sync.Mutex
	lastID int64
}

// NewSQLite opens or creates the candidate database at the given path.
// A non-positive limit reads every pending row.
func NewSQLite(dbPath string, limit int, logger *slog.Logger) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Pragmas apply to every pooled connection so the scraper can write while we read.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &SQLite{db: db, limit: limit, logger: logger}, nil
}

func (s *SQLite) Name() string { return "sqlite" }

func (s *SQLite) Fetch(ctx context.Context) ([]model.CandidateItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `SELECT id, text, author_verified, author_follower_count, play_count, like_count, share_count, comment_count
		FROM candidates WHERE id > ? ORDER BY id ASC`
	args := []any{s.lastID}
	if s.limit > 0 {
		query += " LIMIT ?"
		args = append(args, s.limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.CandidateItem
	lastID := s.lastID
	for rows.Next() {
		var (
			id   int64
			item model.CandidateItem
		)
		if err := rows.Scan(&id, &item.Text, &item.AuthorVerified, &item.AuthorFollowerCount,
			&item.PlayCount, &item.LikeCount, &item.ShareCount, &item.CommentCount); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		lastID = id

		if strings.TrimSpace(item.Text) == "" {
			s.logger.Warn("dropping record without text", "id", id)
			continue
		}
		items = append(items, item.Normalized())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	s.lastID = lastID
	return items, nil
}

// Insert appends items to the candidate table.
func (s *SQLite) Insert(ctx context.Context, hashtag string, items ...model.CandidateItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO candidates (text, author_verified, author_follower_count, play_count, like_count, share_count, comment_count, hashtag)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.Text, item.AuthorVerified, item.AuthorFollowerCount,
			item.PlayCount, item.LikeCount, item.ShareCount, item.CommentCount, hashtag); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert candidate: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	return nil
}

// Pending returns the number of rows not yet returned by Fetch.
func (s *SQLite) Pending(ctx context.Context) (int64, error) {
	s.mu.Lock()
	lastID := s.lastID
	s.mu.Unlock()

	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM candidates WHERE id > ?", lastID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return n, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Backlog = (*SQLite)(nil)

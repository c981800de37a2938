package source

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: candidate queue written by the scraper
	`CREATE TABLE IF NOT EXISTS candidates (
		id                    INTEGER PRIMARY KEY AUTOINCREMENT,
		text                  TEXT NOT NULL,
		author_verified       INTEGER NOT NULL DEFAULT 0,
		author_follower_count INTEGER NOT NULL DEFAULT 0,
		play_count            INTEGER NOT NULL DEFAULT 0,
		like_count            INTEGER NOT NULL DEFAULT 0,
		share_count           INTEGER NOT NULL DEFAULT 0,
		comment_count         INTEGER NOT NULL DEFAULT 0,
		hashtag               TEXT NOT NULL DEFAULT '',
		created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_candidates_created ON candidates(created_at);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}

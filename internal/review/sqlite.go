package review

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ryo-ito/shiwakegen/internal/common"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS reviews (
	id                TEXT PRIMARY KEY,
	original_text     TEXT NOT NULL,
	ai_account        TEXT NOT NULL DEFAULT '',
	corrected_account TEXT NOT NULL DEFAULT '',
	comments          TEXT NOT NULL DEFAULT '',
	is_corrected      INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMP NOT NULL
);`

type sqliteRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (or creates) a local review store. Path ":memory:" gives
// an ephemeral store for tests and dry runs.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.StoreError(fmt.Errorf("open sqlite %q: %w", path, err))
	}
	// a second pooled connection to ":memory:" would see a different database
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.StoreError(fmt.Errorf("create reviews table: %w", err))
	}
	logger.Info("review.store.opened", "backend", "sqlite", "path", path)
	return &sqliteRepository{db: db, logger: logger}, nil
}

func (r *sqliteRepository) Save(ctx context.Context, rev *Review) error {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	rev.IsCorrected = rev.CorrectedAccount != "" && rev.CorrectedAccount != rev.AIAccount
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reviews (id, original_text, ai_account, corrected_account, comments, is_corrected, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rev.ID, rev.OriginalText, rev.AIAccount, rev.CorrectedAccount, rev.Comments, rev.IsCorrected, rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (r *sqliteRepository) List(ctx context.Context) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_text, ai_account, corrected_account, comments, is_corrected, created_at
		 FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		var rev Review
		if err := rows.Scan(&rev.ID, &rev.OriginalText, &rev.AIAccount, &rev.CorrectedAccount,
			&rev.Comments, &rev.IsCorrected, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ryo-ito/shiwakegen/internal/common"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS reviews (
	id                UUID PRIMARY KEY,
	original_text     TEXT NOT NULL,
	ai_account        TEXT NOT NULL DEFAULT '',
	corrected_account TEXT NOT NULL DEFAULT '',
	comments          TEXT NOT NULL DEFAULT '',
	is_corrected      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at        TIMESTAMPTZ NOT NULL
);`

type postgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres connects a pooled shared review store.
func OpenPostgres(ctx context.Context, cfg common.ReviewConfig, logger *slog.Logger) (Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("review.store.connecting", "backend", "postgres")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, common.StoreError(fmt.Errorf("parse dsn: %w", err))
	}
	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "shiwakegen"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, common.StoreError(fmt.Errorf("connect postgres: %w", err))
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.StoreError(fmt.Errorf("create reviews table: %w", err))
	}
	logger.Info("review.store.opened", "backend", "postgres")
	return &postgresRepository{pool: pool, logger: logger}, nil
}

func (r *postgresRepository) Save(ctx context.Context, rev *Review) error {
	if rev.ID == "" {
		rev.ID = uuid.NewString()
	}
	if rev.CreatedAt.IsZero() {
		rev.CreatedAt = time.Now()
	}
	rev.IsCorrected = rev.CorrectedAccount != "" && rev.CorrectedAccount != rev.AIAccount
	_, err := r.pool.Exec(ctx,
		`INSERT INTO reviews (id, original_text, ai_account, corrected_account, comments, is_corrected, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rev.ID, rev.OriginalText, rev.AIAccount, rev.CorrectedAccount, rev.Comments, rev.IsCorrected, rev.CreatedAt)
	if err != nil {
		return fmt.Errorf("save review: %w", err)
	}
	return nil
}

func (r *postgresRepository) List(ctx context.Context) ([]Review, error) {
	rows, err := r.pool.Query(ctx,
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

func (r *postgresRepository) Close() error {
	r.pool.Close()
	return nil
}

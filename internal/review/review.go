// Package review stores human-corrected journal entries and serves them back
// as learning hints for the account classifier.
package review

import (
	"context"
	"time"
)

// Review is one human pass over an extracted entry. CorrectedAccount equals
// AIAccount when the reviewer accepted the guess.
type Review struct {
	ID               string
	OriginalText     string
	AIAccount        string
	CorrectedAccount string
	Comments         string
	IsCorrected      bool
	CreatedAt        time.Time
}

// Repository persists reviews. Implementations: SQLite for single-user local
// runs, Postgres for shared deployments.
type Repository interface {
	Save(ctx context.Context, r *Review) error
	List(ctx context.Context) ([]Review, error)
	Close() error
}

// Package common holds the environment configuration and the error values
// shared across the extraction pipeline.
package common

import (
	"errors"
	"fmt"
)

// Sentinel errors callers branch on with errors.Is.
var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrStoreUnavailable  = errors.New("review store unavailable")
)

// StoreError marks err as a review-store availability failure while keeping
// the backend detail in the chain.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

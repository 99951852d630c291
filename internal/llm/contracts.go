package llm

import (
	"context"

	"github.com/ryo-ito/shiwakegen/constants"
)

// Correction is one past reviewer correction, pre-fetched by the caller and
// fed into the account prompt as a learning hint. The core never reaches into
// review storage itself.
type Correction struct {
	Text    string // excerpt of the reviewed OCR text
	Account string // the 勘定科目 the reviewer settled on
}

// AccountRequest carries everything the account-classification call needs.
type AccountRequest struct {
	Text        string
	Stance      constants.Stance
	ExtraPrompt string
	Corrections []Correction
}

// DescriptionRequest carries the description-generation inputs.
type DescriptionRequest struct {
	Text        string
	PeriodHint  string // e.g. "4月分"; included verbatim when non-empty
	ExtraPrompt string
}

// Advisor is the external AI collaborator behind a single seam. Every method
// may legitimately return an empty value: callers must treat failures and
// empty answers alike and fall back to rule-based logic. Implementations must
// bound each call with a timeout.
type Advisor interface {
	// GuessAccount returns a single account name from the fixed vocabulary,
	// or "" when the model has no usable answer.
	GuessAccount(ctx context.Context, req AccountRequest) (string, error)

	// GuessDescription returns a short Japanese 摘要 line, or "".
	GuessDescription(ctx context.Context, req DescriptionRequest) (string, error)

	// GuessAmount returns the model's reading of the tax-included total, or
	// nil when it produced nothing numeric.
	GuessAmount(ctx context.Context, text string) (*int, error)
}

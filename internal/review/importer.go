package review

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Learning entries arrive as CSV exported from spreadsheets; rows are
// validated against this schema before they reach the store. A row is usable
// when it carries the source text or at least one account value.
const entrySchema = `{
	"type": "object",
	"properties": {
		"original_text":     {"type": "string"},
		"ai_journal":        {"type": "string"},
		"corrected_journal": {"type": "string"},
		"comments":          {"type": "string"}
	},
	"anyOf": [
		{"properties": {"original_text":     {"minLength": 1}}, "required": ["original_text"]},
		{"properties": {"ai_journal":        {"minLength": 1}}, "required": ["ai_journal"]},
		{"properties": {"corrected_journal": {"minLength": 1}}, "required": ["corrected_journal"]}
	]
}`

var compiledEntrySchema = jsonschema.MustCompileString("learning_entry.json", entrySchema)

// ImportResult reports a CSV import run.
type ImportResult struct {
	Saved   int
	Skipped int
}

// ImportCSV reads learning entries and saves the valid ones. Expected
// columns: original_text, ai_journal, corrected_journal, comments, plus
// optional field columns (company, date, amount, tax, description, account)
// used to synthesize the source text when original_text is absent.
func ImportCSV(ctx context.Context, repo Repository, r io.Reader, logger *slog.Logger) (ImportResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var result ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return result, fmt.Errorf("read csv header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return result, fmt.Errorf("read csv row: %w", err)
		}
		row := map[string]string{}
		for i, v := range record {
			if i < len(header) {
				row[header[i]] = strings.TrimSpace(v)
			}
		}

		originalText := row["original_text"]
		if originalText == "" {
			var parts []string
			for _, k := range []string{"company", "date", "amount", "tax", "description", "account"} {
				if row[k] != "" {
					parts = append(parts, fmt.Sprintf("%s:%s", k, row[k]))
				}
			}
			originalText = strings.Join(parts, " ")
		}

		doc := map[string]interface{}{
			"original_text":     originalText,
			"ai_journal":        row["ai_journal"],
			"corrected_journal": row["corrected_journal"],
			"comments":          row["comments"],
		}
		if err := compiledEntrySchema.Validate(doc); err != nil {
			logger.Debug("review.import.row_skipped", "error", err)
			result.Skipped++
			continue
		}

		corrected := row["corrected_journal"]
		if corrected == "" {
			corrected = row["ai_journal"]
		}
		rev := &Review{
			OriginalText:     originalText,
			AIAccount:        row["ai_journal"],
			CorrectedAccount: corrected,
			Comments:         row["comments"],
		}
		if err := repo.Save(ctx, rev); err != nil {
			return result, fmt.Errorf("save imported review: %w", err)
		}
		result.Saved++
	}

	logger.Info("review.import.done", "saved", result.Saved, "skipped", result.Skipped)
	return result, nil
}

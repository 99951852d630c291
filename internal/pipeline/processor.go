// Package pipeline coordinates text acquisition and entry extraction for
// receipt files, one result per input file.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/extract"
	"github.com/ryo-ito/shiwakegen/internal/llm"
	"github.com/ryo-ito/shiwakegen/internal/ocr"
	"github.com/ryo-ito/shiwakegen/internal/review"
)

// Outcome classifies what happened to a file. InsufficientText and NoEntries
// are reportable conditions, not errors: the file was readable but yielded
// nothing bookable.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInsufficientText Outcome = "insufficient_text"
	OutcomeNoEntries        Outcome = "no_entries"
	OutcomeError            Outcome = "error"
)

// TextSource turns a file into raw text. *ocr.Extractor is the production
// implementation.
type TextSource interface {
	Extract(ctx context.Context, path string) (ocr.Result, error)
}

// Options apply to every file in a batch run.
type Options struct {
	Stance      constants.Stance
	TaxMode     constants.TaxMode
	ExtraPrompt string
}

// FileResult is the outcome of processing one file.
type FileResult struct {
	Path    string
	Entries []extract.Entry
	Outcome Outcome
	Err     error
}

// Processor runs acquire → gate → extract for single files. The review
// repository is optional; when present, past corrections similar to the
// receipt text are fed to the account classifier.
type Processor struct {
	logger       *slog.Logger
	source       TextSource
	engine       *extract.Engine
	reviews      review.Repository
	similarLimit int
}

func NewProcessor(source TextSource, engine *extract.Engine, reviews review.Repository, similarLimit int, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if similarLimit <= 0 {
		similarLimit = 5
	}
	return &Processor{logger: logger, source: source, engine: engine, reviews: reviews, similarLimit: similarLimit}
}

// ProcessFile never panics on bad input; everything is reported through the
// FileResult.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) FileResult {
	res, err := p.source.Extract(ctx, path)
	if err != nil {
		p.logger.Error("pipeline.acquire.failed", "path", path, "error", err)
		return FileResult{Path: path, Outcome: OutcomeError, Err: err}
	}
	p.logger.Info("pipeline.acquire.ok", "path", path, "method", res.Method, "pages", res.Pages)

	if !ocr.IsTextSufficient(res.Text) {
		p.logger.Warn("pipeline.text.insufficient", "path", path, "text_len", len(res.Text))
		return FileResult{Path: path, Outcome: OutcomeInsufficientText}
	}

	entries := p.engine.Extract(ctx, extract.Request{
		Text:        res.Text,
		Stance:      opts.Stance,
		TaxMode:     opts.TaxMode,
		ExtraPrompt: opts.ExtraPrompt,
		Corrections: p.corrections(ctx, res.Text),
	})
	if len(entries) == 0 {
		p.logger.Warn("pipeline.extract.empty", "path", path)
		return FileResult{Path: path, Outcome: OutcomeNoEntries}
	}

	p.logger.Info("pipeline.extract.ok", "path", path, "entries", len(entries))
	return FileResult{Path: path, Entries: entries, Outcome: OutcomeOK}
}

// corrections fetches learning hints. Store failures degrade to no hints.
func (p *Processor) corrections(ctx context.Context, text string) []llm.Correction {
	if p.reviews == nil {
		return nil
	}
	all, err := p.reviews.List(ctx)
	if err != nil {
		p.logger.Warn("pipeline.reviews.unavailable", "error", err)
		return nil
	}
	return review.Corrections(review.FindSimilar(text, all, p.similarLimit))
}

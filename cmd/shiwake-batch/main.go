package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/common"
	"github.com/ryo-ito/shiwakegen/internal/export"
	"github.com/ryo-ito/shiwakegen/internal/extract"
	"github.com/ryo-ito/shiwakegen/internal/ingest"
	"github.com/ryo-ito/shiwakegen/internal/llm"
	"github.com/ryo-ito/shiwakegen/internal/llm/openai"
	"github.com/ryo-ito/shiwakegen/internal/ocr"
	"github.com/ryo-ito/shiwakegen/internal/pipeline"
	"github.com/ryo-ito/shiwakegen/internal/review"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func parseTaxMode(s string) (constants.TaxMode, bool) {
	switch strings.ToLower(s) {
	case "", "auto", string(constants.TaxModeAuto):
		return constants.TaxModeAuto, true
	case "in10", string(constants.TaxModeInclusive10):
		return constants.TaxModeInclusive10, true
	case "out10", string(constants.TaxModeExclusive10):
		return constants.TaxModeExclusive10, true
	case "in8", string(constants.TaxModeInclusive8):
		return constants.TaxModeInclusive8, true
	case "out8", string(constants.TaxModeExclusive8):
		return constants.TaxModeExclusive8, true
	case "exempt", string(constants.TaxModeExempt):
		return constants.TaxModeExempt, true
	}
	return "", false
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory with receipt files to process (required)")
		stanceStr = flag.String("stance", "received", "accounting stance: received | issued")
		taxStr    = flag.String("tax", "auto", "tax mode: auto | in10 | out10 | in8 | out8 | exempt")
		formatStr = flag.String("format", "generic", "export format: generic | generic-xlsx | mf | freee | freee-import")
		name      = flag.String("name", "journal", "base name for the output file")
		out       = flag.String("out", "", "output directory (defaults to OUTPUT_DIR or ./output)")
		asTXT     = flag.Bool("txt", false, "write text formats as .txt instead of .csv")
		prompt    = flag.String("prompt", "", "extra instruction appended to the AI prompts")
		learnCSV  = flag.String("learn", "", "CSV of past corrections to import before processing")
		inmem     = flag.Bool("inmem", false, "use an in-memory review store")
		workers   = flag.Int("workers", 4, "number of parallel workers")
		watch     = flag.Bool("watch", false, "keep watching the directory for new files until interrupted")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	stance := constants.Stance(*stanceStr)
	if stance != constants.StanceReceived && stance != constants.StanceIssued {
		printError("Error: --stance must be received or issued\n")
		os.Exit(1)
	}
	taxMode, ok := parseTaxMode(*taxStr)
	if !ok {
		printError("Error: unknown --tax value %q\n", *taxStr)
		os.Exit(1)
	}
	format := constants.ExportFormat(*formatStr)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()
	cfg := common.LoadConfig()
	if *out == "" {
		*out = cfg.Export.OutputDir
	}

	// Review store: Postgres when DSN is set, SQLite otherwise. Optional.
	var reviews review.Repository
	var err error
	switch {
	case *inmem:
		reviews, err = review.OpenSQLite(ctx, ":memory:", logger)
	case cfg.Review.DSN != "":
		reviews, err = review.OpenPostgres(ctx, cfg.Review, logger)
	case cfg.Review.Path != "":
		reviews, err = review.OpenSQLite(ctx, cfg.Review.Path, logger)
	}
	if err != nil {
		logger.Error("failed to open review store", "error", err)
		os.Exit(1)
	}
	if reviews != nil {
		defer reviews.Close()
	}

	if *learnCSV != "" {
		if reviews == nil {
			printError("Error: --learn needs a review store (set REVIEW_DB_PATH, DB_URL, or --inmem)\n")
			os.Exit(1)
		}
		f, err := os.Open(*learnCSV)
		if err != nil {
			logger.Error("failed to open learning CSV", "path", *learnCSV, "error", err)
			os.Exit(1)
		}
		result, err := review.ImportCSV(ctx, reviews, f, logger)
		_ = f.Close()
		if err != nil {
			logger.Error("failed to import learning CSV", "error", err)
			os.Exit(1)
		}
		logger.Info("learning data imported", "saved", result.Saved, "skipped", result.Skipped)
	}

	// AI advisor (graceful if missing)
	var advisor llm.Advisor
	if cfg.LLM.APIKey != "" {
		advisor = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		logger.Info("OpenAI advisor initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("OPENAI_API_KEY not configured, falling back to rule-based classification")
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)
	engine := extract.NewEngine(advisor, logger)
	processor := pipeline.NewProcessor(extractor, engine, reviews, cfg.Review.SimilarLimit, logger)

	// Collect files
	scanner := ingest.NewScanner(nil, logger)
	files, stats, err := scanner.ScanDirectory(*dir, true)
	if err != nil {
		logger.Error("failed to scan input directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	if len(files) == 0 && !*watch {
		printError("Error: no processable files in %s\n", *dir)
		os.Exit(1)
	}
	logger.Info("starting batch",
		"dir", *dir,
		"files", len(files),
		"scanned", stats.Scanned,
		"deduplicated", stats.Deduplicated,
		"workers", *workers)

	// Fan out, collect per-file results
	var mu sync.Mutex
	var results []pipeline.FileResult
	queue := pipeline.NewQueue(processor, func(r pipeline.FileResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	}, logger, pipeline.WithWorkers(*workers), pipeline.WithProcessTimeout(5*time.Minute))

	opts := pipeline.Options{Stance: stance, TaxMode: taxMode, ExtraPrompt: *prompt}
	enqueued := 0
	seen := map[string]struct{}{}
	for _, f := range files {
		seen[f.HashHex] = struct{}{}
		if err := queue.Enqueue(ctx, pipeline.Job{Path: f.Path, Opts: opts}); err == nil {
			enqueued++
		}
	}

	if *watch {
		watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		paths, watchErrs, err := ingest.Watch(watchCtx, ingest.WatchConfig{
			Roots:    []string{*dir},
			Debounce: 2 * time.Second,
		}, logger)
		if err != nil {
			stop()
			logger.Error("failed to start directory watcher", "dir", *dir, "error", err)
			os.Exit(1)
		}
		logger.Info("watching for new files", "dir", *dir)
	watching:
		for {
			select {
			case <-watchCtx.Done():
				break watching
			case err, ok := <-watchErrs:
				if ok {
					logger.Warn("watcher reported error", "error", err)
				}
			case p, ok := <-paths:
				if !ok {
					break watching
				}
				info, err := scanner.ScanFile(p)
				if err != nil {
					logger.Warn("skipping watched file", "path", p, "error", err)
					continue
				}
				if _, dup := seen[info.HashHex]; dup {
					continue
				}
				seen[info.HashHex] = struct{}{}
				if err := queue.Enqueue(watchCtx, pipeline.Job{Path: info.Path, Opts: opts}); err == nil {
					enqueued++
				}
			}
		}
		stop()
		logger.Info("watch stopped, draining queue")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	queue.Shutdown(shutdownCtx)
	cancel()

	// Stable output order regardless of worker scheduling
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	var journal []extract.Entry
	var skipped, failed int
	for _, r := range results {
		switch r.Outcome {
		case pipeline.OutcomeOK:
			journal = append(journal, r.Entries...)
		case pipeline.OutcomeError:
			failed++
		default:
			skipped++
		}
	}
	if len(journal) == 0 {
		printError("Error: no journal entries produced (%d skipped, %d failed)\n", skipped, failed)
		os.Exit(1)
	}

	writer := export.NewWriter(*out, logger)
	path, err := writer.Write(journal, *name, format, *asTXT)
	if err != nil {
		logger.Error("failed to write export", "error", err)
		os.Exit(1)
	}

	logger.Info("batch complete",
		"files", enqueued,
		"entries", len(journal),
		"skipped", skipped,
		"failed", failed,
		"output", path)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files processed: %d\n", enqueued-skipped-failed)
	fmt.Printf("- Journal entries: %d\n", len(journal))
	fmt.Printf("- Skipped: %d\n", skipped)
	fmt.Printf("- Failures: %d\n", failed)
	fmt.Printf("- Output: %s\n", path)
}

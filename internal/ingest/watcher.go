package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ryo-ito/shiwakegen/constants"
)

// WatchConfig controls directory watching for newly dropped receipts.
type WatchConfig struct {
	Roots       []string
	AllowedExts map[string]struct{}
	Debounce    time.Duration // coalesce rapid write bursts from scanners and downloads
}

// Watch emits the path of each receipt file created or modified under the
// configured roots until ctx is cancelled. Subdirectories created while
// watching are picked up as well. Both channels close on shutdown.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no watch roots provided")
	}
	if cfg.AllowedExts == nil {
		cfg.AllowedExts = constants.AllowedExtensions
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			return nil
		})
		if err != nil {
			_ = w.Close()
			return nil, nil, fmt.Errorf("watch root %s: %w", root, err)
		}
	}

	paths := make(chan string, 256)
	errCh := make(chan error, 1)

	go func() {
		defer close(paths)
		defer close(errCh)
		defer w.Close()

		debounce := time.NewTimer(time.Hour)
		if !debounce.Stop() {
			<-debounce.C
		}
		pending := map[string]struct{}{}
		flush := func() {
			for p := range pending {
				select {
				case paths <- p:
				case <-ctx.Done():
					return
				}
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-debounce.C:
				flush()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// New directories must be watched explicitly; Add on a
					// plain file is harmless and keeps this branch simple.
					if err := w.Add(e.Name); err != nil {
						logger.Warn("ingest.watch.add_failed", "path", e.Name, "error", err)
					}
				}
				if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) && !e.Op.Has(fsnotify.Rename) {
					continue
				}
				ext := constants.NormalizeExt(filepath.Ext(e.Name))
				if _, ok := cfg.AllowedExts[ext]; !ok {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if !debounce.Stop() {
					select {
					case <-debounce.C:
					default:
					}
				}
				debounce.Reset(cfg.Debounce)
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return paths, errCh, nil
}

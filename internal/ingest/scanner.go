// Package ingest discovers processable receipt files on the local
// filesystem, deduplicating identical content by hash.
package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/common"
)

// FileInfo is one discovered receipt file.
type FileInfo struct {
	Path    string
	Ext     string
	HashHex string
}

// DirStats aggregates one directory scan.
type DirStats struct {
	Scanned      int
	Matched      int
	Failed       int
	Deduplicated int
}

// Scanner walks directory trees. The same invoice dropped twice under
// different names is returned once.
type Scanner struct {
	allowedExts map[string]struct{}
	logger      *slog.Logger
}

func NewScanner(allowedExts map[string]struct{}, logger *slog.Logger) *Scanner {
	if allowedExts == nil {
		allowedExts = constants.AllowedExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{allowedExts: allowedExts, logger: logger}
}

// ScanFile validates one path and hashes its content.
func (s *Scanner) ScanFile(path string) (FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("abs path: %w", err)
	}
	ext := constants.NormalizeExt(filepath.Ext(abs))
	if _, ok := s.allowedExts[ext]; ext == "" || !ok {
		return FileInfo{}, fmt.Errorf("%w: extension %q", common.ErrUnsupportedFile, ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return FileInfo{}, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return FileInfo{}, fmt.Errorf("hash: %w", err)
	}
	return FileInfo{Path: abs, Ext: ext, HashHex: hex.EncodeToString(h.Sum(nil))}, nil
}

// ScanDirectory walks root, skips hidden entries if requested, and returns
// the deduplicated matching files plus aggregate stats.
func (s *Scanner) ScanDirectory(root string, skipHidden bool) ([]FileInfo, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var files []FileInfo
	var stats DirStats
	seen := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			s.logger.Warn("ingest.scan.entry_failed", "path", path, "error", walkErr)
			stats.Failed++
			return nil
		}
		if skipHidden && isHidden(path) && path != root {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if _, ok := s.allowedExts[ext]; !ok {
			return nil
		}
		stats.Matched++

		info, err := s.ScanFile(path)
		if err != nil {
			s.logger.Warn("ingest.scan.file_failed", "path", path, "error", err)
			stats.Failed++
			return nil
		}
		if _, dup := seen[info.HashHex]; dup {
			s.logger.Info("ingest.scan.deduplicated", "path", path, "hash", info.HashHex)
			stats.Deduplicated++
			return nil
		}
		seen[info.HashHex] = struct{}{}
		files = append(files, info)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return files, stats, nil
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

package ocr

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner abstracts the external binaries (tesseract, pdftoppm) so tests can
// substitute canned transcripts without shelling out.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// Stderr from a crashed tesseract run can be large; logs keep only the head.
const maxLoggedStderr = 8 << 10

type execRunner struct {
	logger *slog.Logger
}

func newExecRunner(logger *slog.Logger) *execRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &execRunner{logger: logger}
}

func (r *execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	runErr := cmd.Run()

	attrs := []any{
		"cmd", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(started).Milliseconds(),
	}
	if runErr != nil {
		attrs = append(attrs, "error", runErr, "stderr", clip(stderr.String(), maxLoggedStderr))
		r.logger.Error("ocr.exec.failed", attrs...)
	} else {
		attrs = append(attrs, "stdout_bytes", stdout.Len())
		r.logger.Debug("ocr.exec.ok", attrs...)
	}
	return stdout.Bytes(), stderr.Bytes(), runErr
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}

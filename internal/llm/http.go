package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SendJSON posts a JSON body to a full URL with optional headers and returns
// the raw response body. It assumes no provider; callers decide URL, headers,
// and payload shape.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	reqID := uuid.New().String()
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		logger.Error("llm.http.encode_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		logger.Error("llm.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	var raw []byte
	var status int
	for attempt := 0; ; attempt++ {
		req.Body = io.NopCloser(bytes.NewReader(bs))
		resp, err := client.Do(req)
		if err != nil {
			logger.Error("llm.http.send_error", "req_id", reqID, "attempt", attempt, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			return nil, 0, err
		}
		raw, _ = io.ReadAll(resp.Body)
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("llm.http.response_body_close_error", "req_id", reqID, "error", cerr)
		}
		status = resp.StatusCode

		logger.Debug("llm.http.response",
			"req_id", reqID,
			"attempt", attempt,
			"status", status,
			"bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)

		// Rate limits and transient provider errors get one retry. Parallel
		// batch workers hit 429 routinely on bursty receipt runs.
		if attempt == 0 && (status == http.StatusTooManyRequests || status/100 == 5) {
			logger.Warn("llm.http.retrying", "req_id", reqID, "status", status)
			select {
			case <-time.After(2 * time.Second):
				continue
			case <-ctx.Done():
				return raw, status, ctx.Err()
			}
		}
		break
	}

	if status/100 != 2 {
		return raw, status, fmt.Errorf("non-2xx status: %d", status)
	}
	return raw, status, nil
}

// FirstLine extracts the first line of a model answer and strips a known
// Japanese label prefix ("勘定科目：" etc.) the few-shot examples invite.
func FirstLine(content, prefix string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(content), "\n")
	line = strings.TrimSpace(line)
	if prefix != "" {
		line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
	}
	return line
}

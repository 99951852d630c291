// Package openai implements llm.Advisor over the OpenAI chat/completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ryo-ito/shiwakegen/internal/llm"
)

type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4.1-nano"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger,
	}
}

// GuessAccount asks for exactly one account name from the stance vocabulary.
func (c *Client) GuessAccount(ctx context.Context, req llm.AccountRequest) (string, error) {
	system, user := llm.BuildAccountPrompt(req)
	content, err := c.chat(ctx, "account", system, user, 20)
	if err != nil {
		return "", err
	}
	return llm.FirstLine(content, "勘定科目："), nil
}

// GuessDescription asks for a one-line 摘要.
func (c *Client) GuessDescription(ctx context.Context, req llm.DescriptionRequest) (string, error) {
	system, user := llm.BuildDescriptionPrompt(req)
	content, err := c.chat(ctx, "description", system, user, 40)
	if err != nil {
		return "", err
	}
	return llm.FirstLine(content, "摘要："), nil
}

// GuessAmount asks for the tax-included total as bare digits. Non-numeric
// answers come back as nil, not an error: the model saying "分かりません" is a
// soft miss, not a failure.
func (c *Client) GuessAmount(ctx context.Context, text string) (*int, error) {
	system, user := llm.BuildAmountPrompt(text)
	content, err := c.chat(ctx, "amount", system, user, 20)
	if err != nil {
		return nil, err
	}
	ans := llm.FirstLine(content, "合計金額：")
	ans = strings.ReplaceAll(ans, ",", "")
	ans = strings.ReplaceAll(ans, " ", "")
	v, err := strconv.Atoi(ans)
	if err != nil {
		return nil, nil
	}
	return &v, nil
}

// chat performs one bounded chat/completions round-trip and returns the first
// choice's content.
func (c *Client) chat(ctx context.Context, op, system, user string, maxTokens int) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"max_tokens":  maxTokens,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	c.log.Debug("llm.guess.start", "op", op, "req_id", reqID, "model", c.cfg.Model, "prompt_len", len(user))

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, _, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if err != nil {
		c.log.Warn("llm.guess.http_error", "op", op, "req_id", reqID, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Warn("llm.guess.decode_error", "op", op, "req_id", reqID, "error", err, "raw_bytes", len(raw))
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Warn("llm.guess.no_choices", "op", op, "req_id", reqID)
		return "", fmt.Errorf("no choices in openai response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("llm.guess.ok", "op", op, "req_id", reqID, "answer_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds())
	return content, nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/ryo-ito/shiwakegen/constants"
	"github.com/ryo-ito/shiwakegen/internal/common"
	"github.com/ryo-ito/shiwakegen/internal/llm"
	"github.com/ryo-ito/shiwakegen/internal/llm/openai"
	"github.com/ryo-ito/shiwakegen/internal/textprep"
)

// Smoke test for the OpenAI advisor: feed it one receipt text and print the
// three guesses. Useful when tuning prompts or switching models.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llmprobe <text-file> [received|issued]")
		os.Exit(2)
	}
	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("failed to read input", "path", os.Args[1], "error", err)
		os.Exit(2)
	}
	stance := constants.StanceReceived
	if len(os.Args) >= 3 && os.Args[2] == string(constants.StanceIssued) {
		stance = constants.StanceIssued
	}

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY env var is required")
		os.Exit(2)
	}
	client := openai.NewClient(openai.Config{
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	text := textprep.Normalize(string(raw))

	amount, err := client.GuessAmount(ctx, text)
	if err != nil {
		logger.Error("amount guess failed", "error", err)
	} else if amount != nil {
		logger.Info("amount guess", "amount", *amount)
	} else {
		logger.Info("amount guess", "amount", "none")
	}

	account, err := client.GuessAccount(ctx, llm.AccountRequest{Text: text, Stance: stance})
	if err != nil {
		logger.Error("account guess failed", "error", err)
	} else {
		logger.Info("account guess", "account", account)
	}

	description, err := client.GuessDescription(ctx, llm.DescriptionRequest{Text: text})
	if err != nil {
		logger.Error("description guess failed", "error", err)
	} else {
		logger.Info("description guess", "description", description)
	}
}

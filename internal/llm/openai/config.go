package openai

import "time"

// Config controls the chat/completions calls. Zero values get defaults in
// NewClient; the defaults match the product's small, deterministic prompts.
type Config struct {
	Model       string        // default "gpt-4.1-nano"
	APIKey      string        // required; empty means the Advisor is disabled
	BaseURL     string        // default "https://api.openai.com/v1"
	Temperature float32       // default 0
	Timeout     time.Duration // per-call bound, default 10s
}

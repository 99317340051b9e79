package extract

import (
	"context"
	"fmt"

	"github.com/arjunvaidya/regbrain/llm"
)

// completionAttempts is the total attempt budget for one completion
// call, retries included. No backoff between attempts.
const completionAttempts = 2

// Complete runs one chat completion with a bounded retry budget and
// returns the raw response content. The llm clients make exactly one
// transport attempt each; the retry policy lives here so every stage
// (extraction, aggregation, risk) shares it.
func Complete(ctx context.Context, p llm.Provider, model string, temperature float64, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < completionAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		resp, err := p.Chat(ctx, llm.ChatRequest{
			Model:       model,
			Temperature: temperature,
			Messages: []llm.Message{
				{Role: "user", Content: prompt},
			},
		})
		if err != nil {
			lastErr = err
			continue
		}
		return resp.Content, nil
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", completionAttempts, lastErr)
}

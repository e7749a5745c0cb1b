// Package titles shortens overlong catalog titles with a text-completion model.
package titles

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/shopik/internal/providers"
	"github.com/lehigh-university-libraries/shopik/internal/sanitize"
)

// Reducer sends one batch of titles to the model per call.
type Reducer struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewReducer returns a reducer using the given provider and model settings.
func NewReducer(provider providers.Provider, model string, temperature float64, maxTokens int) *Reducer {
	return &Reducer{
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// BuildPrompt renders the reduction instruction followed by the titles.
func BuildPrompt(batch []string) string {
	return fmt.Sprintf(`Reduce each of the following product titles to a maximum of %d characters, retaining meaningful content without truncation.
Return exactly %d lines, one reduced title per line, in the same order as given, each prefixed with its number ("1. ", "2. ", ...). Do not add any other text.
Titles:
%s`, sanitize.MaxTitleLength, len(batch), strings.Join(batch, "\n"))
}

// ReduceBatch makes a single model call for batch and reconciles the answer.
func (r *Reducer) ReduceBatch(ctx context.Context, batch []string) (Reconciliation, error) {
	if len(batch) == 0 {
		return Reconciliation{}, nil
	}

	response, err := r.Provider.ExtractText(ctx, providers.Config{
		Model:       r.Model,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
		Prompt:      BuildPrompt(batch),
	})
	if err != nil {
		return Reconciliation{}, fmt.Errorf("failed to reduce titles: %w", err)
	}

	rec := Reconcile(batch, response)
	if len(rec.Missing) > 0 || rec.Surplus > 0 {
		slog.Warn("Model response did not line up with the batch",
			"titles", len(batch),
			"missing", len(rec.Missing),
			"surplus", rec.Surplus)
	}
	return rec, nil
}

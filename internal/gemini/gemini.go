package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
	"google.golang.org/api/option"
)

// Gemini is a provider for Google Gemini
type Gemini struct {
	APIKey string
}

// New returns a new Gemini provider
func New(apiKey string) *Gemini {
	return &Gemini{APIKey: apiKey}
}

// ExtractText extracts text from the given prompt, and image if any, using Gemini
func (g *Gemini) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	if g.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(float32(config.Temperature))
	if config.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(config.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, parts(config)...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	return textOf(candidate.Content.Parts)
}

func parts(config providers.Config) []genai.Part {
	p := []genai.Part{genai.Text(config.Prompt)}
	if config.Image != nil {
		p = append(p, genai.ImageData(config.Image.Format(), config.Image.Data))
	}
	return p
}

// textOf joins the text parts of a candidate; long answers may arrive split.
func textOf(parts []genai.Part) (string, error) {
	var sb strings.Builder
	found := false
	for _, part := range parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
			found = true
		}
	}
	if !found {
		return "", fmt.Errorf("unexpected response format from Gemini")
	}
	return sb.String(), nil
}

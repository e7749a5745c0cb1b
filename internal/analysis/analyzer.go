// Package analysis turns product photos into structured product analyses.
package analysis

import (
	"context"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
)

// Prompt is the instruction sent with every product photo.
const Prompt = `Give a brief description of the image, including brand, dimensions, category, and prices on eBay and Amazon. Provide the details in JSON format.

You have to give all the fields:
- if you don't find a price, give a rough price; if there are multiple items, give a rough total
- if you don't find the brand, give an estimated brand or "unknown"
- always provide rough dimensions in inches
- prices are a single absolute USD amount, not a range

Respond with ONLY a JSON object in the following format:

{
  "product": {
    "description": "a 20 to 30 word description defining what kind of product it is; if branded mention the model as well",
    "brand": "",
    "dimensions": { "length": "", "height": "", "width": "" },
    "category": "like food, clothing, electronics",
    "prices": { "eBay": "", "Amazon": "" }
  }
}`

// Analyzer asks a vision-capable model to describe one product photo.
type Analyzer struct {
	Provider    providers.Provider
	Model       string
	Temperature float64
	MaxTokens   int
}

func NewAnalyzer(provider providers.Provider, model string, temperature float64, maxTokens int) *Analyzer {
	return &Analyzer{
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// Analyze returns the model's raw answer, which should contain a JSON object.
func (a *Analyzer) Analyze(ctx context.Context, img providers.Image) (string, error) {
	text, err := a.Provider.ExtractText(ctx, providers.Config{
		Model:       a.Model,
		Temperature: a.Temperature,
		MaxTokens:   a.MaxTokens,
		Prompt:      Prompt,
		Image:       &img,
	})
	if err != nil {
		return "", apperr.Analysis(err)
	}
	return text, nil
}

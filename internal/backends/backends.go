// Package backends builds the configured LLM providers and background remover.
package backends

import (
	"fmt"

	"github.com/lehigh-university-libraries/shopik/internal/analysis"
	"github.com/lehigh-university-libraries/shopik/internal/background"
	"github.com/lehigh-university-libraries/shopik/internal/config"
	"github.com/lehigh-university-libraries/shopik/internal/gemini"
	"github.com/lehigh-university-libraries/shopik/internal/ollama"
	"github.com/lehigh-university-libraries/shopik/internal/openai"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
	"github.com/lehigh-university-libraries/shopik/internal/titles"
)

// Provider returns the provider registered under name.
func Provider(name string, c *config.Config) (providers.Provider, error) {
	switch name {
	case "openai":
		return openai.New(c.OpenAIAPIKey, c.OpenAIBaseURL), nil
	case "gemini":
		return gemini.New(c.GeminiAPIKey), nil
	case "ollama":
		return ollama.New(c.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// Remover returns the configured background remover.
func Remover(c *config.Config) (background.Remover, error) {
	switch c.BackgroundRemover {
	case "rembg":
		return background.NewRembg(c.RembgURL), nil
	case "removebg", "remove.bg":
		return background.NewRemoveBG(c.RemoveBGAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported background remover: %s", c.BackgroundRemover)
	}
}

// TitlePipeline wires the title reducer to the configured text provider.
func TitlePipeline(c *config.Config) (*titles.Pipeline, error) {
	provider, err := Provider(c.TextProvider, c)
	if err != nil {
		return nil, err
	}
	reducer := titles.NewReducer(provider, c.TextModel, c.TitleTemperature, c.TitleMaxTokens)
	return titles.NewPipeline(reducer, c.ContinueOnError), nil
}

// ImagePipeline wires the image analyzer to the configured services.
func ImagePipeline(c *config.Config) (*analysis.Pipeline, error) {
	provider, err := Provider(c.VisionProvider, c)
	if err != nil {
		return nil, err
	}
	remover, err := Remover(c)
	if err != nil {
		return nil, err
	}
	analyzer := analysis.NewAnalyzer(provider, c.VisionModel, c.VisionTemperature, c.VisionMaxTokens)
	return analysis.NewPipeline(remover, analyzer), nil
}

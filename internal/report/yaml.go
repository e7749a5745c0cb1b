package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/titles"
	"gopkg.in/yaml.v3"
)

// RunConfig represents the configuration section of a report
type RunConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Input       string  `yaml:"input"`
	Timestamp   string  `yaml:"timestamp"`
}

// TitleRun is the report written by `shopik titles --report`.
type TitleRun struct {
	Config RunConfig      `yaml:"config"`
	Result *titles.Report `yaml:"result"`
}

// ImageSummary counts outcomes of an image run.
type ImageSummary struct {
	Images        int `yaml:"images"`
	Succeeded     int `yaml:"succeeded"`
	ParseFailures int `yaml:"parsefailures"`
	Failed        int `yaml:"failed"`
}

// ImageRun is the report written by `shopik images --report`.
type ImageRun struct {
	Config  RunConfig        `yaml:"config"`
	Summary ImageSummary     `yaml:"summary"`
	Results []AnalysisRecord `yaml:"results"`
}

// NewRunConfig stamps a run configuration with the current time.
func NewRunConfig(provider, model string, temperature float64, input string) RunConfig {
	return RunConfig{
		Provider:    provider,
		Model:       model,
		Temperature: temperature,
		Input:       input,
		Timestamp:   time.Now().Format("2006-01-02_15-04-05"),
	}
}

// Summarize counts image outcomes by kind.
func Summarize(results []models.ImageResult) ImageSummary {
	s := ImageSummary{Images: len(results)}
	for _, r := range results {
		switch r.Analysis.Kind {
		case models.OutcomeSuccess:
			s.Succeeded++
		case models.OutcomeParseFailure:
			s.ParseFailures++
		default:
			s.Failed++
		}
	}
	return s
}

// SaveTitleReport writes a title run report to path.
func SaveTitleReport(path string, cfg RunConfig, r *titles.Report) error {
	return writeYAML(path, TitleRun{Config: cfg, Result: r})
}

// SaveImageReport writes an image run report to path.
func SaveImageReport(path string, cfg RunConfig, results []models.ImageResult) error {
	return writeYAML(path, ImageRun{
		Config:  cfg,
		Summary: Summarize(results),
		Results: Records(results),
	})
}

func writeYAML(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// Package config reads shopik settings from the environment. The root command
// loads a .env file first, so values there apply too.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds every runtime setting.
type Config struct {
	Port         string
	UploadDir    string
	MaxUploadMB  int
	AllowOrigins string

	TextProvider     string
	TextModel        string
	TitleTemperature float64
	TitleMaxTokens   int
	ContinueOnError  bool

	VisionProvider    string
	VisionModel       string
	VisionTemperature float64
	VisionMaxTokens   int

	OpenAIAPIKey  string
	OpenAIBaseURL string
	GeminiAPIKey  string
	OllamaURL     string

	BackgroundRemover string
	RembgURL          string
	RemoveBGAPIKey    string
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	c := &Config{
		Port:              getEnv("PORT", "3000"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		AllowOrigins:      getEnv("CORS_ALLOWED_ORIGIN", "*"),
		TextProvider:      strings.ToLower(getEnv("TEXT_PROVIDER", "openai")),
		VisionProvider:    strings.ToLower(getEnv("VISION_PROVIDER", "openai")),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		OllamaURL:         getEnv("OLLAMA_URL", getEnv("OLLAMA_HOST", "http://localhost:11434")),
		BackgroundRemover: strings.ToLower(getEnv("BACKGROUND_REMOVER", "rembg")),
		RembgURL:          getEnv("REMBG_URL", "http://localhost:7000"),
		RemoveBGAPIKey:    os.Getenv("REMOVEBG_API_KEY"),
	}

	var err error
	if c.MaxUploadMB, err = getInt("MAX_UPLOAD_MB", 10); err != nil {
		return nil, err
	}
	if c.TitleTemperature, err = getFloat("TITLE_TEMPERATURE", 0.1); err != nil {
		return nil, err
	}
	if c.TitleMaxTokens, err = getInt("TITLE_MAX_TOKENS", 5000); err != nil {
		return nil, err
	}
	if c.VisionTemperature, err = getFloat("VISION_TEMPERATURE", 1.0); err != nil {
		return nil, err
	}
	if c.VisionMaxTokens, err = getInt("VISION_MAX_TOKENS", 1000); err != nil {
		return nil, err
	}
	if c.ContinueOnError, err = getBool("TITLES_CONTINUE_ON_ERROR", false); err != nil {
		return nil, err
	}

	c.TextModel = getEnv("TEXT_MODEL", DefaultModel(c.TextProvider))
	c.VisionModel = getEnv("VISION_MODEL", DefaultModel(c.VisionProvider))

	return c, nil
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o"
	case "gemini":
		return "gemini-1.5-flash"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

// MaxUploadBytes is the per-file upload limit.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, v)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

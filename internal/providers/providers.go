package providers

import (
	"context"
	"encoding/base64"
)

// Image is an inline image attached to a request.
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI returns the image as a base64 data URI.
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Base64 returns the raw base64 payload without the data URI prefix.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

// Format returns the subtype of the MIME type, e.g. "png".
func (i Image) Format() string {
	for j := len(i.MIMEType) - 1; j >= 0; j-- {
		if i.MIMEType[j] == '/' {
			return i.MIMEType[j+1:]
		}
	}
	return i.MIMEType
}

// Config represents the configuration for an LLM request
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int // 0 leaves the provider default
	Prompt      string
	Image       *Image // optional, for vision requests
}

// Provider defines the interface for an LLM provider
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// Func adapts a function to the Provider interface.
type Func func(ctx context.Context, config Config) (string, error)

func (f Func) ExtractText(ctx context.Context, config Config) (string, error) {
	return f(ctx, config)
}

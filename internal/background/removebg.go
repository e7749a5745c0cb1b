package background

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const removeBGURL = "https://api.remove.bg/v1.0/removebg"

// RemoveBG calls the remove.bg API.
type RemoveBG struct {
	APIKey     string
	URL        string
	HTTPClient *http.Client
}

// NewRemoveBG returns a remover for the remove.bg API.
func NewRemoveBG(apiKey string) *RemoveBG {
	return &RemoveBG{
		APIKey: apiKey,
		URL:    removeBGURL,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (r *RemoveBG) RemoveBackground(ctx context.Context, img []byte, filename string) ([]byte, error) {
	if r.APIKey == "" {
		return nil, fmt.Errorf("REMOVEBG_API_KEY environment variable not set")
	}

	body, contentType, err := multipartBody("image_file", filename, img, map[string]string{
		"size":   "auto",
		"format": "png",
	})
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("X-Api-Key", r.APIKey)
	return post(ctx, r.HTTPClient, r.URL, body, contentType, header)
}

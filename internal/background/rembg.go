package background

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Rembg calls a self-hosted rembg server ("rembg s").
type Rembg struct {
	URL        string
	HTTPClient *http.Client
}

// NewRembg returns a remover for the rembg server at url.
func NewRembg(url string) *Rembg {
	if url == "" {
		url = "http://localhost:7000"
	}
	return &Rembg{
		URL: strings.TrimSuffix(url, "/"),
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

func (r *Rembg) RemoveBackground(ctx context.Context, img []byte, filename string) ([]byte, error) {
	body, contentType, err := multipartBody("file", filename, img, nil)
	if err != nil {
		return nil, err
	}
	return post(ctx, r.HTTPClient, r.URL+"/api/remove", body, contentType, nil)
}

package images

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lehigh-university-libraries/shopik/internal/analysis"
	"github.com/lehigh-university-libraries/shopik/internal/storage"
)

// Resolve turns command-line image references into assets, in order. URLs are
// downloaded into store and also returned in fetched, so the caller can release
// them. A reference that cannot be loaded becomes an Unavailable asset.
func (f *Fetcher) Resolve(ctx context.Context, refs []string, store *storage.AssetStore) (assets []analysis.Asset, fetched []*storage.Asset) {
	assets = make([]analysis.Asset, 0, len(refs))
	for _, ref := range refs {
		if IsRemote(ref) {
			asset, err := f.Fetch(ctx, ref, store)
			if err != nil {
				slog.Error("Unable to download image", "url", ref, "err", err)
				assets = append(assets, Unavailable{Ref: ref, Err: err})
				continue
			}
			fetched = append(fetched, asset)
			assets = append(assets, asset)
			continue
		}
		if _, err := os.Stat(ref); err != nil {
			slog.Error("Image not found", "path", ref, "err", err)
			assets = append(assets, Unavailable{Ref: ref, Err: fmt.Errorf("image not found: %w", err)})
			continue
		}
		assets = append(assets, storage.Borrow(ref))
	}
	return assets, fetched
}

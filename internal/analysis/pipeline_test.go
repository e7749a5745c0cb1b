package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

type fakeAsset struct {
	name     string
	data     []byte
	readErr  error
	released int
}

func (f *fakeAsset) Filename() string { return f.name }

func (f *fakeAsset) Bytes() ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.data, nil
}

func (f *fakeAsset) Release() error {
	f.released++
	return nil
}

// fakeRemover fails for images whose content is "fail".
type fakeRemover struct {
	calls []string
}

func (f *fakeRemover) RemoveBackground(ctx context.Context, img []byte, filename string) ([]byte, error) {
	f.calls = append(f.calls, filename)
	if string(img) == "fail" {
		return nil, errors.New("service unavailable")
	}
	return append(append([]byte{}, pngHeader...), img...), nil
}

// fakeAnalyzer answers by looking up the image payload.
type fakeAnalyzer struct {
	answers map[string]string
	err     error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, img providers.Image) (string, error) {
	if f.err != nil {
		return "", apperr.Analysis(f.err)
	}
	return f.answers[string(img.Data[len(pngHeader):])], nil
}

const validAnswer = "```json\n{“product”: {“description”: “Stainless steel water bottle”, “brand”: “Hydro Flask”, " +
	"“dimensions”: {“length”: “3”, “height”: “10”, “width”: “3”}, “category”: “kitchen”, " +
	"“prices”: {“eBay”: “25”, “Amazon”: “35”}}}\n```"

func assets(items ...*fakeAsset) []Asset {
	out := make([]Asset, len(items))
	for i, a := range items {
		out[i] = a
	}
	return out
}

func TestProcessImagesIsolatesFailures(t *testing.T) {
	good := &fakeAsset{name: "bottle.jpg", data: []byte("bottle")}
	broken := &fakeAsset{name: "broken.jpg", data: []byte("fail")}
	chatty := &fakeAsset{name: "chatty.jpg", data: []byte("chatty")}
	unreadable := &fakeAsset{name: "gone.jpg", readErr: errors.New("file vanished")}
	last := &fakeAsset{name: "last.jpg", data: []byte("bottle")}

	remover := &fakeRemover{}
	analyzer := &fakeAnalyzer{answers: map[string]string{
		"bottle": validAnswer,
		"chatty": "This looks like a nice water bottle, probably worth about $30.",
	}}
	p := NewPipeline(remover, analyzer)

	results := p.ProcessImages(context.Background(), assets(good, broken, chatty, unreadable, last))

	if len(results) != 5 {
		t.Fatalf("Expected 5 results, got %d", len(results))
	}

	wantKinds := []models.OutcomeKind{
		models.OutcomeSuccess,
		models.OutcomeFailed,
		models.OutcomeParseFailure,
		models.OutcomeFailed,
		models.OutcomeSuccess,
	}
	wantNames := []string{"bottle.jpg", "broken.jpg", "chatty.jpg", "gone.jpg", "last.jpg"}
	for i, r := range results {
		if r.Analysis.Kind != wantKinds[i] {
			t.Errorf("Result %d: expected %s, got %s (%v)", i, wantKinds[i], r.Analysis.Kind, r.Analysis.Err)
		}
		if r.Asset != wantNames[i] {
			t.Errorf("Result %d: expected asset %s, got %s", i, wantNames[i], r.Asset)
		}
	}

	if got := results[0].Analysis.Analysis.Brand; got != "Hydro Flask" {
		t.Errorf("Expected brand Hydro Flask, got %q", got)
	}
	if !strings.HasPrefix(results[0].DataURL, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URI, got %q", results[0].DataURL)
	}
	if results[1].DataURL != "" {
		t.Error("Expected no data URI when background removal fails")
	}
	if !apperr.Is(results[1].Analysis.Err, apperr.KindRemoval) {
		t.Errorf("Expected removal error, got %v", results[1].Analysis.Err)
	}
	if !strings.Contains(results[1].Analysis.Err.Error(), "Error removing background") {
		t.Errorf("Unexpected removal message %q", results[1].Analysis.Err)
	}
	if results[2].Analysis.Raw == "" || results[2].DataURL == "" {
		t.Error("Expected raw text and data URI on parse failure")
	}

	for _, a := range []*fakeAsset{good, broken, chatty, unreadable, last} {
		if a.released != 1 {
			t.Errorf("%s released %d times, expected 1", a.name, a.released)
		}
	}
	if len(remover.calls) != 4 {
		t.Errorf("Expected 4 removal calls, got %d", len(remover.calls))
	}
}

func TestProcessImagesAnalyzerFailure(t *testing.T) {
	a := &fakeAsset{name: "a.png", data: []byte("x")}
	p := NewPipeline(&fakeRemover{}, &fakeAnalyzer{err: errors.New("quota exceeded")})

	results := p.ProcessImages(context.Background(), assets(a))

	if results[0].Analysis.Kind != models.OutcomeFailed {
		t.Fatalf("Expected failed outcome, got %s", results[0].Analysis.Kind)
	}
	if !apperr.Is(results[0].Analysis.Err, apperr.KindAnalysis) {
		t.Errorf("Expected analysis error, got %v", results[0].Analysis.Err)
	}
	if results[0].DataURL == "" {
		t.Error("Expected data URI to be kept when only analysis fails")
	}
	if a.released != 1 {
		t.Errorf("Expected asset released once, got %d", a.released)
	}
}

func TestProcessImagesCancelledStillReleases(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &fakeAsset{name: "a.png", data: []byte("x")}
	b := &fakeAsset{name: "b.png", data: []byte("y")}
	remover := &fakeRemover{}
	results := NewPipeline(remover, &fakeAnalyzer{}).ProcessImages(ctx, assets(a, b))

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if !errors.Is(r.Analysis.Err, context.Canceled) {
			t.Errorf("Result %d: expected context.Canceled, got %v", i, r.Analysis.Err)
		}
	}
	if a.released != 1 || b.released != 1 {
		t.Errorf("Expected both assets released, got %d and %d", a.released, b.released)
	}
	if len(remover.calls) != 0 {
		t.Errorf("Expected no removal calls, got %d", len(remover.calls))
	}
}

// panickyAnalyzer panics for images whose content is "boom".
type panickyAnalyzer struct {
	fakeAnalyzer
}

func (p *panickyAnalyzer) Analyze(ctx context.Context, img providers.Image) (string, error) {
	if string(img.Data[len(pngHeader):]) == "boom" {
		panic("nil map write")
	}
	return p.fakeAnalyzer.Analyze(ctx, img)
}

func TestProcessImagesRecoversPanics(t *testing.T) {
	boom := &fakeAsset{name: "boom.png", data: []byte("boom")}
	good := &fakeAsset{name: "bottle.png", data: []byte("bottle")}
	analyzer := &panickyAnalyzer{fakeAnalyzer{answers: map[string]string{"bottle": validAnswer}}}

	results := NewPipeline(&fakeRemover{}, analyzer).ProcessImages(context.Background(), assets(boom, good))

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Analysis.Kind != models.OutcomeFailed {
		t.Errorf("Expected failed outcome for panicking image, got %s", results[0].Analysis.Kind)
	}
	if !apperr.Is(results[0].Analysis.Err, apperr.KindInternal) {
		t.Errorf("Expected internal error, got %v", results[0].Analysis.Err)
	}
	if results[1].Analysis.Kind != models.OutcomeSuccess {
		t.Errorf("Expected sibling to succeed, got %s (%v)", results[1].Analysis.Kind, results[1].Analysis.Err)
	}
	if boom.released != 1 || good.released != 1 {
		t.Errorf("Expected both assets released once, got %d and %d", boom.released, good.released)
	}
}

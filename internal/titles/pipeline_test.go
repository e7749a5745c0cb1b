package titles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/catalog"
	"github.com/lehigh-university-libraries/shopik/internal/providers"
)

// scriptedProvider answers each call with the next scripted response.
type scriptedProvider struct {
	responses []string
	errs      []error
	prompts   []string
}

func (s *scriptedProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	n := len(s.prompts)
	s.prompts = append(s.prompts, config.Prompt)
	if n < len(s.errs) && s.errs[n] != nil {
		return "", s.errs[n]
	}
	if n < len(s.responses) {
		return s.responses[n], nil
	}
	return "", nil
}

// echoProvider returns a short, numbered title for every title in the prompt.
type echoProvider struct {
	calls int
}

func (e *echoProvider) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	e.calls++
	_, list, _ := strings.Cut(config.Prompt, "Titles:\n")
	var out []string
	for i, title := range strings.Split(list, "\n") {
		out = append(out, fmt.Sprintf("%d. %s", i+1, title[:10]))
	}
	return strings.Join(out, "\n"), nil
}

func titleOfLength(prefix string, n int) string {
	return prefix + strings.Repeat("x", n-len(prefix))
}

func newRows(t *testing.T, titles ...string) []catalog.Row {
	t.Helper()
	records := make([][]string, len(titles))
	for i, title := range titles {
		records[i] = []string{fmt.Sprintf("sku-%d", i), title, "9.99"}
	}
	table, err := catalog.NewTable([]string{"SKU", "Title", "Price"}, records)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table.Rows
}

func titlesOf(rows []catalog.Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title()
	}
	return out
}

func TestReduceOverlongTitlesScenario(t *testing.T) {
	rows := newRows(t,
		titleOfLength("Row zero ", 80),
		titleOfLength("Row one ", 30),
		titleOfLength("Row two ", 60),
	)
	provider := &scriptedProvider{responses: []string{"Row Zero Short\nRow Two Short"}}
	p := NewPipeline(NewReducer(provider, "gpt-4o", 0.1, 5000), false)

	out, report, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err != nil {
		t.Fatalf("ReduceOverlongTitles failed: %v", err)
	}

	expected := []string{"Row Zero Short", rows[1].Title(), "Row Two Short"}
	if diff := cmp.Diff(expected, titlesOf(out)); diff != "" {
		t.Errorf("Titles mismatch (-want +got):\n%s", diff)
	}
	if len(provider.prompts) != 1 {
		t.Fatalf("Expected one model call, got %d", len(provider.prompts))
	}
	if !strings.Contains(provider.prompts[0], rows[0].Title()+"\n"+rows[2].Title()) {
		t.Errorf("Expected long titles newline-joined in prompt, got:\n%s", provider.prompts[0])
	}
	if strings.Contains(provider.prompts[0], rows[1].Title()) {
		t.Error("Short title should not be sent to the model")
	}
	if report.LongTitles != 2 || report.Batches != 1 || report.Reduced != 2 {
		t.Errorf("Unexpected report: %+v", report)
	}
	for i := range out {
		if got, _ := out[i].Get("SKU"); got != fmt.Sprintf("sku-%d", i) {
			t.Errorf("Row %d SKU changed to %q", i, got)
		}
	}
}

func TestReduceOverlongTitlesShortResponseFallsBack(t *testing.T) {
	rows := newRows(t, titleOfLength("A, ", 70), titleOfLength("B. ", 70))
	provider := &scriptedProvider{responses: []string{"Only One"}}
	p := NewPipeline(NewReducer(provider, "m", 0, 0), false)

	out, report, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err != nil {
		t.Fatalf("ReduceOverlongTitles failed: %v", err)
	}

	if out[0].Title() != "Only One" {
		t.Errorf("Expected first title reduced, got %q", out[0].Title())
	}
	// sanitized, not raw
	if want := strings.ReplaceAll(rows[1].Title(), ".", ""); out[1].Title() != want {
		t.Errorf("Expected sanitized original %q, got %q", want, out[1].Title())
	}
	if diff := cmp.Diff([]int{1}, report.Fallbacks); diff != "" {
		t.Errorf("Fallbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceOverlongTitlesBatchesInOrder(t *testing.T) {
	var titles []string
	for i := 0; i < 450; i++ {
		titles = append(titles, titleOfLength(fmt.Sprintf("T%04d ", i), 60))
	}
	rows := newRows(t, titles...)
	provider := &echoProvider{}
	p := NewPipeline(NewReducer(provider, "m", 0, 0), false)

	out, report, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err != nil {
		t.Fatalf("ReduceOverlongTitles failed: %v", err)
	}

	if provider.calls != 3 || report.Batches != 3 {
		t.Errorf("Expected 3 batches, got %d calls and report %+v", provider.calls, report)
	}
	if len(out) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(out))
	}
	for i, row := range out {
		want := fmt.Sprintf("T%04d xxxx", i)
		if row.Title() != want {
			t.Fatalf("Row %d: expected %q, got %q", i, want, row.Title())
		}
	}
}

func TestReduceOverlongTitlesNoLongTitlesIsIdentity(t *testing.T) {
	rows := newRows(t, "Plain Tee", "Socks 3 Pack", strings.Repeat("y", 50))
	provider := &scriptedProvider{}
	p := NewPipeline(NewReducer(provider, "m", 0, 0), false)

	out, _, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err != nil {
		t.Fatalf("ReduceOverlongTitles failed: %v", err)
	}
	if len(provider.prompts) != 0 {
		t.Errorf("Expected no model calls, got %d", len(provider.prompts))
	}
	for i := range rows {
		if diff := cmp.Diff(rows[i].Values(), out[i].Values()); diff != "" {
			t.Errorf("Row %d changed (-want +got):\n%s", i, diff)
		}
	}
}

func TestReduceOverlongTitlesFailureAborts(t *testing.T) {
	var titles []string
	for i := 0; i < 3; i++ {
		titles = append(titles, titleOfLength("long ", 60))
	}
	rows := newRows(t, titles...)
	provider := &scriptedProvider{
		responses: []string{"a\nb"},
		errs:      []error{nil, errors.New("rate limited")},
	}
	p := NewPipeline(NewReducer(provider, "m", 0, 0), false)
	p.BatchSize = 2

	out, _, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if out != nil {
		t.Error("Expected no partial output")
	}
	if !apperr.Is(err, apperr.KindExternalService) {
		t.Errorf("Expected external service error, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("Expected cause in error, got %v", err)
	}
}

func TestReduceOverlongTitlesContinueOnError(t *testing.T) {
	var titles []string
	for i := 0; i < 3; i++ {
		titles = append(titles, titleOfLength(fmt.Sprintf("long %d ", i), 60))
	}
	rows := newRows(t, titles...)
	provider := &scriptedProvider{
		errs:      []error{errors.New("timeout"), nil},
		responses: []string{"", "Third"},
	}
	p := NewPipeline(NewReducer(provider, "m", 0, 0), true)
	p.BatchSize = 2

	out, report, err := p.ReduceOverlongTitles(context.Background(), rows)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	expected := []string{titles[0], titles[1], "Third"}
	if diff := cmp.Diff(expected, titlesOf(out)); diff != "" {
		t.Errorf("Titles mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, report.FailedBatches); diff != "" {
		t.Errorf("FailedBatches mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, report.Fallbacks); diff != "" {
		t.Errorf("Fallbacks mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceOverlongTitlesCancelled(t *testing.T) {
	rows := newRows(t, titleOfLength("long ", 60))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &scriptedProvider{}
	_, _, err := NewPipeline(NewReducer(provider, "m", 0, 0), true).ReduceOverlongTitles(ctx, rows)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(provider.prompts) != 0 {
		t.Error("Expected no model calls after cancellation")
	}
}

func TestReduceOverlongTitlesDoesNotMutateInput(t *testing.T) {
	original := "Title, with. punctuation " + strings.Repeat("z", 40)
	rows := newRows(t, original)
	p := NewPipeline(NewReducer(&scriptedProvider{responses: []string{"Short"}}, "m", 0, 0), false)

	if _, _, err := p.ReduceOverlongTitles(context.Background(), rows); err != nil {
		t.Fatalf("ReduceOverlongTitles failed: %v", err)
	}
	if rows[0].Title() != original {
		t.Errorf("Input row was modified: %q", rows[0].Title())
	}
}

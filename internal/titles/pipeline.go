package titles

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
	"github.com/lehigh-university-libraries/shopik/internal/batch"
	"github.com/lehigh-university-libraries/shopik/internal/catalog"
	"github.com/lehigh-university-libraries/shopik/internal/sanitize"
)

// BatchReducer reduces one ordered batch of titles.
type BatchReducer interface {
	ReduceBatch(ctx context.Context, batch []string) (Reconciliation, error)
}

// Pipeline shortens every catalog title over the character budget.
type Pipeline struct {
	Reducer   BatchReducer
	BatchSize int
	// ContinueOnError keeps the sanitized titles of a failed batch instead of
	// failing the whole catalog.
	ContinueOnError bool
}

// NewPipeline returns a pipeline with the default batch size.
func NewPipeline(reducer BatchReducer, continueOnError bool) *Pipeline {
	return &Pipeline{
		Reducer:         reducer,
		BatchSize:       batch.TitleBatchSize,
		ContinueOnError: continueOnError,
	}
}

// Report summarizes one pipeline run.
type Report struct {
	Rows       int `json:"rows" yaml:"rows"`
	LongTitles int `json:"long_titles" yaml:"longtitles"`
	Batches    int `json:"batches" yaml:"batches"`
	Reduced    int `json:"reduced" yaml:"reduced"`
	// Fallbacks are row indices that kept their sanitized title.
	Fallbacks     []int `json:"fallbacks,omitempty" yaml:"fallbacks,omitempty"`
	FailedBatches []int `json:"failed_batches,omitempty" yaml:"failedbatches,omitempty"`
}

type longTitle struct {
	index int
	title string
}

// ReduceOverlongTitles returns rows with sanitized titles, where titles over
// the budget are replaced by the model's reduction. Rows are not modified;
// the result has the same length and order.
func (p *Pipeline) ReduceOverlongTitles(ctx context.Context, rows []catalog.Row) ([]catalog.Row, *Report, error) {
	report := &Report{Rows: len(rows)}

	out := make([]catalog.Row, len(rows))
	var long []longTitle
	for i, row := range rows {
		cleaned := sanitize.CleanTitle(row.Title())
		out[i] = row.WithTitle(cleaned)
		if sanitize.IsLongTitle(cleaned) {
			long = append(long, longTitle{index: i, title: cleaned})
		}
	}
	report.LongTitles = len(long)

	size := p.BatchSize
	if size < 1 {
		size = batch.TitleBatchSize
	}
	batches := batch.Split(long, size)
	report.Batches = len(batches)

	slog.Info("Reducing titles", "rows", len(rows), "long_titles", len(long), "batches", len(batches))

	reduced := make([]string, 0, len(long))
	for n, b := range batches {
		if err := ctx.Err(); err != nil {
			return nil, report, fmt.Errorf("title reduction interrupted: %w", err)
		}

		titles := make([]string, len(b))
		for i, lt := range b {
			titles[i] = lt.title
		}

		rec, err := p.Reducer.ReduceBatch(ctx, titles)
		if err == nil && len(rec.Titles) != len(titles) {
			err = fmt.Errorf("reducer returned %d titles for %d inputs", len(rec.Titles), len(titles))
		}
		if err != nil {
			op := fmt.Sprintf("reduce batch %d/%d", n+1, len(batches))
			if !p.ContinueOnError {
				return nil, report, apperr.ExternalService(op, err)
			}
			slog.Error("Batch failed, keeping original titles", "batch", n+1, "err", err)
			report.FailedBatches = append(report.FailedBatches, n)
			rec = unreduced(titles)
		}

		offset := len(reduced)
		for _, m := range rec.Missing {
			report.Fallbacks = append(report.Fallbacks, long[offset+m].index)
		}
		reduced = append(reduced, rec.Titles...)

		slog.Info("Batch reduced", "batch", n+1, "of", len(batches), "titles", len(titles), "missing", len(rec.Missing))
	}

	for i, lt := range long {
		out[lt.index] = out[lt.index].WithTitle(reduced[i])
	}
	report.Reduced = len(long) - len(report.Fallbacks)

	return out, report, nil
}

func unreduced(titles []string) Reconciliation {
	rec := Reconciliation{Titles: titles, Missing: make([]int, len(titles))}
	for i := range titles {
		rec.Missing[i] = i
	}
	return rec
}

package report

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/shopik/internal/models"
	"github.com/parquet-go/parquet-go"
)

// WriteParquet writes one row per image result to path.
func WriteParquet(path string, results []models.ImageResult) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[AnalysisRecord](file)
	if _, err := writer.Write(Records(results)); err != nil {
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return file.Close()
}

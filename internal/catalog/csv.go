package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
)

const utf8BOM = "\uFEFF"

// ReadCSV parses a delimited catalog with a header row.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Ingestion("catalog is empty")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIngestion, "read header", "malformed catalog", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindIngestion, fmt.Sprintf("read row %d", len(records)+1), "malformed catalog", err)
		}
		records = append(records, rec)
	}

	return NewTable(header, records)
}

// WriteCSV writes the header followed by every row in order.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.Header.Names()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row.Values()); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Index, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

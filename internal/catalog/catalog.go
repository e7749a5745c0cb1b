// Package catalog holds the tabular product catalog and its CSV encoding.
package catalog

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lehigh-university-libraries/shopik/internal/apperr"
)

// TitleColumn is the column every catalog must carry.
const TitleColumn = "Title"

// Header is the ordered column list shared by all rows of a table.
type Header struct {
	names []string
	index map[string]int
	title int
}

// NewHeader builds a header and locates the Title column.
func NewHeader(names []string) (*Header, error) {
	h := &Header{
		names: slices.Clone(names),
		index: make(map[string]int, len(names)),
		title: -1,
	}
	for i, name := range names {
		key := strings.TrimSpace(name)
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
		if key == TitleColumn && h.title == -1 {
			h.title = i
		}
	}
	if h.title == -1 {
		return nil, apperr.Ingestion(fmt.Sprintf("catalog is missing the %q column", TitleColumn))
	}
	return h, nil
}

// Names returns the column names in order.
func (h *Header) Names() []string {
	return slices.Clone(h.names)
}

// Len returns the number of columns.
func (h *Header) Len() int {
	return len(h.names)
}

func (h *Header) add(name string) {
	h.index[name] = len(h.names)
	h.names = append(h.names, name)
}

// Row is one catalog line. Values are aligned with the table header.
type Row struct {
	Index  int
	header *Header
	values []string
}

// Get returns the value of the named column.
func (r Row) Get(column string) (string, bool) {
	i, ok := r.header.index[column]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Title returns the row's Title value.
func (r Row) Title() string {
	if r.header.title >= len(r.values) {
		return ""
	}
	return r.values[r.header.title]
}

// WithTitle returns a copy of r with its Title replaced. r is not modified.
func (r Row) WithTitle(title string) Row {
	values := slices.Clone(r.values)
	for len(values) <= r.header.title {
		values = append(values, "")
	}
	values[r.header.title] = title
	return Row{Index: r.Index, header: r.header, values: values}
}

// Values returns a copy of the row's values in header order.
func (r Row) Values() []string {
	return slices.Clone(r.values)
}

// Table is a header plus its rows in file order.
type Table struct {
	Header *Header
	Rows   []Row
}

// NewTable builds a table from a header and raw records. Short records are
// padded with empty values; long records extend the header with generated
// column names so no value is lost.
func NewTable(columns []string, records [][]string) (*Table, error) {
	header, err := NewHeader(columns)
	if err != nil {
		return nil, err
	}

	t := &Table{Header: header, Rows: make([]Row, 0, len(records))}
	for i, rec := range records {
		for header.Len() < len(rec) {
			header.add(fmt.Sprintf("field%d", header.Len()+1))
		}
		t.Rows = append(t.Rows, Row{Index: i, header: header, values: slices.Clone(rec)})
	}
	for i := range t.Rows {
		for len(t.Rows[i].values) < header.Len() {
			t.Rows[i].values = append(t.Rows[i].values, "")
		}
	}
	return t, nil
}

// WithRows returns a table sharing t's header with the given rows.
func (t *Table) WithRows(rows []Row) *Table {
	return &Table{Header: t.Header, Rows: rows}
}

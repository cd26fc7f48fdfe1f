package core

// batch.go paginates row retrieval against the table reader.
//
// The reader offers no native offset/limit, so every page fetch reloads the
// full row set from the backing file and slices it in memory. Pages are
// independent, potentially expensive operations; nothing is cached between
// calls. Type detection runs once per page request, not per row.

import (
	"github.com/rmachado/welldata/internal/reader"
)

// DescribeTables enumerates every table in the file with its row count and
// column list.
func DescribeTables(h *reader.Handle) ([]TableDescriptor, error) {
	names, err := h.ListTables()
	if err != nil {
		return nil, err
	}

	descriptors := make([]TableDescriptor, 0, len(names))
	for _, name := range names {
		cols, err := h.Columns(name)
		if err != nil {
			return nil, err
		}
		count, err := h.RowCount(name)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, TableDescriptor{
			Name:     name,
			RowCount: count,
			Columns:  cols,
		})
	}
	return descriptors, nil
}

// FetchPage loads the table, slices [offset, offset+limit), and validates
// the slice. Row numbers are assigned by absolute position (offset + local
// index), so a row keeps its number across page sizes.
func FetchPage(h *reader.Handle, table string, offset, limit int) (*Page, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}

	cols, err := h.Columns(table)
	if err != nil {
		return nil, err
	}
	rows, err := h.AllRows(table)
	if err != nil {
		return nil, err
	}

	kind := DetectKind(cols)
	total := len(rows)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	outcomes := make([]RowOutcome, 0, end-start)
	for i, raw := range rows[start:end] {
		outcomes = append(outcomes, ValidateRow(kind, raw, cols, offset+i))
	}

	return &Page{
		TableName: table,
		Columns:   cols,
		DataType:  kind,
		TotalRows: total,
		Offset:    offset,
		Limit:     limit,
		Rows:      outcomes,
		HasMore:   offset+len(outcomes) < total,
	}, nil
}

// ParseTable validates every row of a table in one pass, splitting outcomes
// into successes and failures.
func ParseTable(h *reader.Handle, table string) (*TableParse, error) {
	cols, err := h.Columns(table)
	if err != nil {
		return nil, err
	}
	rows, err := h.AllRows(table)
	if err != nil {
		return nil, err
	}

	kind := DetectKind(cols)
	result := &TableParse{
		DataType:  kind,
		Success:   []RowOutcome{},
		Failed:    []RowOutcome{},
		TotalRows: len(rows),
	}

	for i, raw := range rows {
		outcome := ValidateRow(kind, raw, cols, i)
		if outcome.Valid() {
			result.Success = append(result.Success, outcome)
		} else {
			result.Failed = append(result.Failed, outcome)
		}
	}

	return result, nil
}

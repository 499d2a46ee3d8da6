package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a tab lacks a column the codec cannot do without.
var ErrMissingColumn = errors.New("table: missing column")

type header struct {
	names []string
	index map[string]int
}

func newHeader(names []string) header {
	h := header{names: append([]string(nil), names...), index: make(map[string]int, len(names))}
	for i, name := range names {
		key := normalize(name)
		if key == "" {
			continue
		}
		if _, dup := h.index[key]; !dup {
			h.index[key] = i
		}
	}
	return h
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (h header) require(sheet string, columns ...string) error {
	for _, column := range columns {
		if _, ok := h.index[normalize(column)]; !ok {
			return fmt.Errorf("%w: %q in %q", ErrMissingColumn, column, sheet)
		}
	}
	return nil
}

// get returns the trimmed cell of column, or "" when the column or cell is absent.
func (h header) get(row []string, column string) string {
	i, ok := h.index[normalize(column)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// extend appends canonical columns the header does not carry yet.
func (h header) extend(canonical []string) header {
	names := append([]string(nil), h.names...)
	for _, column := range canonical {
		if _, ok := h.index[normalize(column)]; !ok {
			names = append(names, column)
		}
	}
	return newHeader(names)
}

func (h header) set(row []any, column string, value any) {
	if i, ok := h.index[normalize(column)]; ok && i < len(row) {
		row[i] = value
	}
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// split separates the header row from the data rows.
func split(grid [][]string) (header, [][]string) {
	if len(grid) == 0 {
		return newHeader(nil), nil
	}
	return newHeader(grid[0]), grid[1:]
}

// carried indexes the previous data rows by key so rewritten rows keep the
// cells of columns the codec does not own. Repeated keys are consumed in order.
type carried map[string][][]string

func carry(h header, rows [][]string, keyColumn string) carried {
	out := make(carried)
	for _, row := range rows {
		if blank(row) {
			continue
		}
		key := h.get(row, keyColumn)
		out[key] = append(out[key], row)
	}
	return out
}

func (c carried) take(key string, width int) []any {
	row := make([]any, width)
	for i := range row {
		row[i] = ""
	}
	queue := c[key]
	if len(queue) == 0 {
		return row
	}
	for i, cell := range queue[0] {
		if i < width {
			row[i] = cell
		}
	}
	c[key] = queue[1:]
	return row
}

func headerRow(h header) []any {
	row := make([]any, len(h.names))
	for i, name := range h.names {
		row[i] = name
	}
	return row
}

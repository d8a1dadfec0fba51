// Package table implements the read and write pipelines of the QVD codec: a
// Decoder that materializes a byte buffer into a Table, and an Encoder that
// deduplicates row values into symbol tables, packs index records, computes
// the layout, and emits a complete file.
package table

import (
	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/section"
)

// Table is a decoded QVD table: ordered column names and row-major cells. It
// also retains the per-column symbol sequences and the layout the file
// declared, for callers that inspect the file rather than just its values.
type Table struct {
	Columns []string
	Rows    [][]format.Value

	layout  *section.Layout
	symbols [][]format.Symbol
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
	return len(t.Columns)
}

// Layout returns the layout descriptor the table was decoded with.
func (t *Table) Layout() *section.Layout {
	return t.layout
}

// Symbols returns column col's symbol sequence in index order.
func (t *Table) Symbols(col int) []format.Symbol {
	return t.symbols[col]
}

// SymbolCount returns the number of distinct symbols in column col.
func (t *Table) SymbolCount(col int) int {
	return len(t.symbols[col])
}

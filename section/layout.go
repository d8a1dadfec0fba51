package section

import (
	"fmt"

	"github.com/qvdkit/qvd/errs"
)

// MaxIndexBitWidth is the widest index slot a field may declare. Symbol
// indices are at most int32, so wider slots cannot reference any symbol.
const MaxIndexBitWidth = 32

// FieldLayout carries the per-column geometry recovered from (or produced for)
// the header: where the column's symbols live in the symbol region and where
// its index slot lives inside each record.
type FieldLayout struct {
	// Name is the field name.
	Name string
	// SymbolOffset is the byte offset of the column's symbol sub-region,
	// relative to the start of the symbol region.
	SymbolOffset int
	// SymbolLength is the byte length of the column's symbol sub-region.
	SymbolLength int
	// BitOffset is the position of the column's index slot, counted from the
	// record's least-significant bit.
	BitOffset int
	// BitWidth is the width of the index slot in bits. Width 0 means every
	// record yields raw index 0 for this column.
	BitWidth int
	// Bias is added to every raw index extracted from a record to obtain the
	// symbol index. It may be negative.
	Bias int
	// SymbolCount is the number of symbols the header declares for the column.
	SymbolCount int
}

// Layout is the per-file geometry the two binary regions rely on. On read it
// is derived from the XML header; on write it is computed from the data and
// then rendered into the header, so the three sections stay consistent.
type Layout struct {
	Fields []FieldLayout
	// RecordByteSize is the uniform width of one row in the index region.
	RecordByteSize int
	// RowCount is the number of records in the index region.
	RowCount int
	// SymbolRegionLength is the byte length of the symbol region, which is
	// also the offset from the end of the header to the index region.
	SymbolRegionLength int
	// IndexRegionLength is the byte length of the index region.
	IndexRegionLength int
}

// Validate checks the internal consistency of the layout before any region
// bytes are touched:
//
//   - symbol sub-regions must lie inside the symbol region, in field order,
//     without overlap
//   - every index slot must be at most MaxIndexBitWidth wide and, when the
//     table has rows, fit inside the record
//   - the index region must hold exactly RowCount records, with a single
//     trailing padding byte tolerated
//   - a zero RecordByteSize is only valid for an empty table
func (l *Layout) Validate() error {
	if l.RowCount < 0 || l.RecordByteSize < 0 || l.SymbolRegionLength < 0 || l.IndexRegionLength < 0 {
		return fmt.Errorf("%w: negative region size", errs.ErrMalformedHeader)
	}
	if l.RowCount > 0 && l.RecordByteSize == 0 {
		return fmt.Errorf("%w: record byte size is 0 but table has %d rows", errs.ErrMalformedHeader, l.RowCount)
	}

	next := 0
	for i := range l.Fields {
		f := &l.Fields[i]
		if f.SymbolOffset < next || f.SymbolLength < 0 {
			return fmt.Errorf("%w: field %q symbol sub-region out of order", errs.ErrSymbolRegionOverrun, f.Name)
		}
		if f.SymbolOffset+f.SymbolLength > l.SymbolRegionLength {
			return fmt.Errorf("%w: field %q spans [%d, %d) past symbol region of %d bytes",
				errs.ErrSymbolRegionOverrun, f.Name, f.SymbolOffset, f.SymbolOffset+f.SymbolLength, l.SymbolRegionLength)
		}
		next = f.SymbolOffset + f.SymbolLength

		if f.BitOffset < 0 || f.BitWidth < 0 || f.BitWidth > MaxIndexBitWidth {
			return fmt.Errorf("%w: field %q bit slot (offset %d, width %d)",
				errs.ErrBitLayoutOverflow, f.Name, f.BitOffset, f.BitWidth)
		}
		if l.RowCount > 0 && f.BitOffset+f.BitWidth > l.RecordByteSize*8 {
			return fmt.Errorf("%w: field %q bit slot ends at %d, record is %d bits",
				errs.ErrBitLayoutOverflow, f.Name, f.BitOffset+f.BitWidth, l.RecordByteSize*8)
		}
	}

	surplus := l.IndexRegionLength - l.RowCount*l.RecordByteSize
	if surplus < 0 || surplus > 1 {
		return fmt.Errorf("%w: index region is %d bytes, %d records of %d bytes expected",
			errs.ErrMalformedHeader, l.IndexRegionLength, l.RowCount, l.RecordByteSize)
	}

	return nil
}

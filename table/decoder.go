package table

import (
	"fmt"

	"github.com/qvdkit/qvd/encoding"
	"github.com/qvdkit/qvd/endian"
	"github.com/qvdkit/qvd/errs"
	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/internal/options"
	"github.com/qvdkit/qvd/section"
)

// Decoder materializes a QVD byte buffer into a Table.
//
// NewDecoder parses and validates the header; Decode walks the symbol and
// index regions. The decoder borrows the input buffer read-only for the
// duration of the call and the returned Table owns all of its values, so the
// buffer may be released (or unmapped) once Decode returns.
//
// Note: the Decoder is not thread-safe and not reusable. Create one per
// buffer and call Decode once.
type Decoder struct {
	cfg       DecoderConfig
	data      []byte
	header    *section.TableHeader
	layout    *section.Layout
	bodyStart int
	engine    endian.EndianEngine
}

// NewDecoder creates a Decoder over data, which must hold an entire QVD file.
// The header is parsed and validated here, including the check that the
// buffer is long enough for the regions the header declares.
func NewDecoder(data []byte, opts ...DecoderOption) (*Decoder, error) {
	decoder := &Decoder{
		data:   data,
		engine: endian.GetLittleEndianEngine(),
	}
	if err := options.Apply(&decoder.cfg, opts...); err != nil {
		return nil, err
	}

	header, layout, bodyStart, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	decoder.header = header
	decoder.layout = layout
	decoder.bodyStart = bodyStart

	need := bodyStart + layout.SymbolRegionLength + layout.RowCount*layout.RecordByteSize
	if len(data) < need {
		return nil, fmt.Errorf("%w: file is %d bytes, regions need %d",
			errs.ErrMalformedHeader, len(data), need)
	}

	return decoder, nil
}

// Header returns the parsed XML header.
func (d *Decoder) Header() *section.TableHeader {
	return d.header
}

// Layout returns the validated layout descriptor.
func (d *Decoder) Layout() *section.Layout {
	return d.layout
}

// Decode runs the read pipeline: per-field symbol decode, then the
// bit-stuffed index region, then row assembly through the primary-value
// rule. On any error no partial table is returned.
func (d *Decoder) Decode() (*Table, error) {
	layout := d.layout

	symRegion := d.data[d.bodyStart : d.bodyStart+layout.SymbolRegionLength]

	symbolDecoder := encoding.NewSymbolDecoder(d.engine, d.cfg.latin1)
	columns := make([]string, len(layout.Fields))
	symbols := make([][]format.Symbol, len(layout.Fields))
	for i, f := range layout.Fields {
		columns[i] = f.Name

		sub := symRegion[f.SymbolOffset : f.SymbolOffset+f.SymbolLength]
		syms, err := symbolDecoder.DecodeColumn(sub, f.SymbolCount)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		symbols[i] = syms
	}

	rows, err := d.decodeRows(symbols)
	if err != nil {
		return nil, err
	}

	return &Table{
		Columns: columns,
		Rows:    rows,
		layout:  layout,
		symbols: symbols,
	}, nil
}

// decodeRows walks the index region record by record, extracts each column's
// biased index, and assembles rows of primary values.
func (d *Decoder) decodeRows(symbols [][]format.Symbol) ([][]format.Value, error) {
	layout := d.layout
	recordSize := layout.RecordByteSize

	idxStart := d.bodyStart + layout.SymbolRegionLength
	idxRegion := d.data[idxStart : idxStart+layout.RowCount*recordSize]

	rows := make([][]format.Value, layout.RowCount)
	for r := range rows {
		record := idxRegion[r*recordSize : (r+1)*recordSize]

		row := make([]format.Value, len(layout.Fields))
		for c := range layout.Fields {
			f := &layout.Fields[c]

			raw := encoding.ReadBits(record, f.BitOffset, f.BitWidth)
			idx := int(raw) + f.Bias

			colSyms := symbols[c]
			if len(colSyms) == 0 {
				// A field with no symbols has no values to reference.
				row[c] = format.Null()
				continue
			}
			if idx < 0 || idx >= len(colSyms) {
				return nil, fmt.Errorf("%w: row %d field %q index %d, column has %d symbols",
					errs.ErrIndexOutOfRange, r, f.Name, idx, len(colSyms))
			}

			row[c] = colSyms[idx].Primary()
		}
		rows[r] = row
	}

	return rows, nil
}

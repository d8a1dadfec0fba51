package table

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qvdkit/qvd/encoding"
	"github.com/qvdkit/qvd/endian"
	"github.com/qvdkit/qvd/errs"
	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/internal/hash"
	"github.com/qvdkit/qvd/internal/options"
	"github.com/qvdkit/qvd/internal/pool"
	"github.com/qvdkit/qvd/section"
)

// defaultTableName is written when no WithTableName option is given.
const defaultTableName = "DATA"

// Encoder builds a QVD file from rows of values.
//
// Rows are appended one at a time; each cell is classified into a symbol,
// deduplicated against the column's symbol table, and resolved to an index.
// Finish computes the bit layout and region offsets from what was appended,
// packs the index records, renders the header, and returns the complete file
// bytes.
//
// Note: the Encoder is not thread-safe and not reusable. After Finish, create
// a new encoder for further encoding.
type Encoder struct {
	cfg     EncoderConfig
	engine  endian.EndianEngine
	columns []string

	colSymbols [][]format.Symbol         // per column, dedup'd symbols in first-occurrence order
	colStreams []*encoding.SymbolEncoder // per column, emitted wire bytes
	colDedup   []map[uint64][]int        // per column, wire-form hash -> candidate indices
	rowIndexes [][]uint32                // per row, per column symbol index

	scratch  []byte // reused wire form of the cell under classification
	finished bool
}

// NewEncoder creates an Encoder for the given column names. At least one
// column is required.
func NewEncoder(columns []string, opts ...EncoderOption) (*Encoder, error) {
	if len(columns) == 0 {
		return nil, errs.ErrNoColumns
	}

	encoder := &Encoder{
		engine:     endian.GetLittleEndianEngine(),
		columns:    columns,
		colSymbols: make([][]format.Symbol, len(columns)),
		colStreams: make([]*encoding.SymbolEncoder, len(columns)),
		colDedup:   make([]map[uint64][]int, len(columns)),
	}
	encoder.cfg.tableName = defaultTableName

	if err := options.Apply(&encoder.cfg, opts...); err != nil {
		return nil, err
	}

	for c := range columns {
		encoder.colStreams[c] = encoding.NewSymbolEncoder(encoder.engine)
		encoder.colDedup[c] = make(map[uint64][]int)
	}

	return encoder, nil
}

// AppendRow classifies and indexes one row of cells. The cell count must
// match the column count, and every cell must be representable: null cells
// are rejected because no symbol represents them. A rejected row leaves the
// symbol tables unchanged.
func (e *Encoder) AppendRow(cells ...format.Value) error {
	if e.finished {
		return errs.ErrEncoderFinished
	}
	if len(cells) != len(e.columns) {
		return fmt.Errorf("%w: row %d has %d cells, table has %d columns",
			errs.ErrColumnCountMismatch, len(e.rowIndexes), len(cells), len(e.columns))
	}

	syms := make([]format.Symbol, len(cells))
	for c, cell := range cells {
		sym, err := cell.Classify()
		if err != nil {
			return fmt.Errorf("row %d field %q: %w", len(e.rowIndexes), e.columns[c], err)
		}
		syms[c] = sym
	}

	indexes := make([]uint32, len(cells))
	for c, sym := range syms {
		indexes[c] = e.intern(c, sym)
	}
	e.rowIndexes = append(e.rowIndexes, indexes)

	return nil
}

// intern resolves sym to its index in column c's symbol table, appending it
// on first occurrence. Duplicates are detected by hashing the symbol's wire
// form; hash collisions between unequal symbols are resolved by exact
// comparison inside the bucket.
func (e *Encoder) intern(c int, sym format.Symbol) uint32 {
	e.scratch = sym.AppendWire(e.engine, e.scratch[:0])
	sum := hash.Sum(e.scratch)

	for _, idx := range e.colDedup[c][sum] {
		if e.colSymbols[c][idx].Equal(sym) {
			return uint32(idx)
		}
	}

	idx := len(e.colSymbols[c])
	e.colSymbols[c] = append(e.colSymbols[c], sym)
	e.colDedup[c][sum] = append(e.colDedup[c][sum], idx)
	e.colStreams[c].Append(sym)

	return uint32(idx)
}

// Finish computes the layout from the appended data, packs the index region,
// renders the header, and returns the file: header bytes, NUL terminator
// byte, symbol region, index region.
func (e *Encoder) Finish() ([]byte, error) {
	if e.finished {
		return nil, errs.ErrEncoderFinished
	}
	e.finished = true
	defer e.releaseStreams()

	layout := e.computeLayout()

	headerBytes, err := section.NewTableHeader(e.cfg.tableName, layout, e.createTime(), e.creatorDoc()).Build()
	if err != nil {
		return nil, err
	}

	recordBuf := pool.GetRecordBuffer()
	defer pool.PutRecordBuffer(recordBuf)
	e.packRecords(recordBuf, layout)

	out := make([]byte, 0, len(headerBytes)+1+layout.SymbolRegionLength+layout.IndexRegionLength)
	out = append(out, headerBytes...)
	out = append(out, 0x00)
	for _, stream := range e.colStreams {
		out = append(out, stream.Bytes()...)
	}
	out = append(out, recordBuf.Bytes()...)

	return out, nil
}

// computeLayout derives the bit layout and region geometry from the symbol
// tables and row count. Bit widths cover the largest index of each column,
// which is always symbolCount-1 since every symbol came from a row; a
// single-symbol column gets width 0. Bias is always written as 0. A non-empty
// table always gets at least one record byte so the index region never
// degenerates while rows exist.
func (e *Encoder) computeLayout() *section.Layout {
	rowCount := len(e.rowIndexes)

	layout := &section.Layout{
		Fields:   make([]section.FieldLayout, len(e.columns)),
		RowCount: rowCount,
	}

	bitOffset := 0
	symbolOffset := 0
	for c, name := range e.columns {
		symbolCount := len(e.colSymbols[c])
		width := 0
		if symbolCount > 0 {
			width = encoding.IndexBitWidth(uint32(symbolCount - 1))
		}

		streamSize := e.colStreams[c].Size()
		layout.Fields[c] = section.FieldLayout{
			Name:         name,
			SymbolOffset: symbolOffset,
			SymbolLength: streamSize,
			BitOffset:    bitOffset,
			BitWidth:     width,
			Bias:         0,
			SymbolCount:  symbolCount,
		}
		bitOffset += width
		symbolOffset += streamSize
	}

	layout.SymbolRegionLength = symbolOffset
	if rowCount > 0 {
		layout.RecordByteSize = (bitOffset + 7) / 8
		if layout.RecordByteSize == 0 {
			layout.RecordByteSize = 1
		}
	}
	layout.IndexRegionLength = rowCount * layout.RecordByteSize

	return layout
}

// packRecords emits one fixed-width record per row into buf.
func (e *Encoder) packRecords(buf *pool.ByteBuffer, layout *section.Layout) {
	for _, indexes := range e.rowIndexes {
		record := buf.ExtendZero(layout.RecordByteSize)
		for c := range layout.Fields {
			f := &layout.Fields[c]
			encoding.WriteBits(record, f.BitOffset, f.BitWidth, indexes[c])
		}
	}
}

func (e *Encoder) createTime() time.Time {
	if e.cfg.createTime.IsZero() {
		return time.Now()
	}

	return e.cfg.createTime
}

func (e *Encoder) creatorDoc() string {
	if e.cfg.creatorDoc == "" {
		return uuid.NewString()
	}

	return e.cfg.creatorDoc
}

func (e *Encoder) releaseStreams() {
	for _, stream := range e.colStreams {
		if stream != nil {
			stream.Reset()
		}
	}
}

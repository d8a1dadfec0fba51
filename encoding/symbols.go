// Package encoding implements the two wire codecs of the QVD binary body:
// the tag-prefixed variable-length symbol stream and the bit-stuffed index
// records. The table package drives both; nothing here looks at the header.
package encoding

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/qvdkit/qvd/endian"
	"github.com/qvdkit/qvd/errs"
	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/internal/pool"
)

// SymbolDecoder decodes column sub-regions of the symbol region into symbol
// sequences. One decoder handles every column of a file; it carries no
// per-column state.
//
// Strings are decoded as UTF-8. In Latin-1 mode every byte maps through
// ISO 8859-1 instead, for files written by producers that never emitted
// UTF-8; in that mode no byte sequence is invalid.
type SymbolDecoder struct {
	engine endian.EndianEngine
	latin1 bool
}

// NewSymbolDecoder creates a symbol decoder. latin1 selects the ISO 8859-1
// compatibility mode for string payloads.
func NewSymbolDecoder(engine endian.EndianEngine, latin1 bool) *SymbolDecoder {
	return &SymbolDecoder{engine: engine, latin1: latin1}
}

// DecodeColumn decodes one column's sub-region. The sub-region must contain
// whole symbols back to back and nothing else: a numeric payload truncated by
// the sub-region end means the declared length disagrees with the stream and
// decoding fails with errs.ErrSymbolRegionOverrun; a string with no NUL
// terminator before the end fails with errs.ErrInvalidSymbolEncoding, and a
// byte that is not a valid tag fails with errs.ErrUnknownSymbolTag.
//
// countHint sizes the result; it may be zero when the caller has no estimate.
func (d *SymbolDecoder) DecodeColumn(sub []byte, countHint int) ([]format.Symbol, error) {
	if countHint < 0 {
		countHint = 0
	}
	symbols := make([]format.Symbol, 0, countHint)

	pos := 0
	for pos < len(sub) {
		tag := format.SymbolType(sub[pos])
		pos++

		switch tag {
		case format.TypeInt:
			if pos+4 > len(sub) {
				return nil, truncatedErr(tag, pos-1)
			}
			symbols = append(symbols, format.IntSymbol(int32(d.engine.Uint32(sub[pos:]))))
			pos += 4

		case format.TypeDouble:
			if pos+8 > len(sub) {
				return nil, truncatedErr(tag, pos-1)
			}
			symbols = append(symbols, format.DoubleSymbol(math.Float64frombits(d.engine.Uint64(sub[pos:]))))
			pos += 8

		case format.TypeString:
			text, n, err := d.decodeText(sub[pos:], pos)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, format.StringSymbol(text))
			pos += n

		case format.TypeDualInt:
			if pos+4 > len(sub) {
				return nil, truncatedErr(tag, pos-1)
			}
			num := int32(d.engine.Uint32(sub[pos:]))
			pos += 4
			text, n, err := d.decodeText(sub[pos:], pos)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, format.DualIntSymbol(num, text))
			pos += n

		case format.TypeDualDouble:
			if pos+8 > len(sub) {
				return nil, truncatedErr(tag, pos-1)
			}
			dbl := math.Float64frombits(d.engine.Uint64(sub[pos:]))
			pos += 8
			text, n, err := d.decodeText(sub[pos:], pos)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, format.DualDoubleSymbol(dbl, text))
			pos += n

		default:
			return nil, fmt.Errorf("%w: tag 0x%02x at offset %d", errs.ErrUnknownSymbolTag, byte(tag), pos-1)
		}
	}

	return symbols, nil
}

// decodeText reads a NUL-terminated string starting at rest[0] and returns it
// with the number of bytes consumed, terminator included. at is the absolute
// sub-region offset of rest[0], used only for error detail.
func (d *SymbolDecoder) decodeText(rest []byte, at int) (string, int, error) {
	end := bytes.IndexByte(rest, 0x00)
	if end < 0 {
		return "", 0, fmt.Errorf("%w: unterminated string at offset %d", errs.ErrInvalidSymbolEncoding, at)
	}
	raw := rest[:end]

	if d.latin1 {
		return decodeLatin1(raw), end + 1, nil
	}

	if !utf8.Valid(raw) {
		return "", 0, fmt.Errorf("%w: invalid UTF-8 at offset %d", errs.ErrInvalidSymbolEncoding, at)
	}

	return string(raw), end + 1, nil
}

// decodeLatin1 maps every byte through ISO 8859-1. Total: every byte value
// decodes to a rune, so this never fails.
func decodeLatin1(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(charmap.ISO8859_1.DecodeByte(b))
	}

	return sb.String()
}

func truncatedErr(tag format.SymbolType, at int) error {
	return fmt.Errorf("%w: %s symbol at offset %d truncated by sub-region end",
		errs.ErrSymbolRegionOverrun, tag, at)
}

// SymbolEncoder emits one column's symbol sequence in wire form into a pooled
// buffer. The table encoder keeps one per column and concatenates the buffers
// in field order to form the symbol region.
//
// Note: the SymbolEncoder is not thread-safe and not reusable after Reset.
type SymbolEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

// NewSymbolEncoder creates a symbol encoder backed by a pooled buffer.
func NewSymbolEncoder(engine endian.EndianEngine) *SymbolEncoder {
	return &SymbolEncoder{
		engine: engine,
		buf:    pool.GetSymbolBuffer(),
	}
}

// Append emits one symbol: tag byte, fixed-width little-endian numeric
// payload, NUL-terminated text, per the symbol's variant.
func (e *SymbolEncoder) Append(sym format.Symbol) {
	e.buf.Grow(sym.WireSize())
	e.buf.B = sym.AppendWire(e.engine, e.buf.B)
	e.count++
}

// Bytes returns the encoded sub-region. The slice shares the encoder's
// buffer; do not hold it past Reset.
func (e *SymbolEncoder) Bytes() []byte {
	return e.buf.Bytes()
}

// Len returns the number of symbols appended.
func (e *SymbolEncoder) Len() int {
	return e.count
}

// Size returns the encoded sub-region length in bytes.
func (e *SymbolEncoder) Size() int {
	return e.buf.Len()
}

// Reset returns the buffer to the pool. The encoder must not be used after.
func (e *SymbolEncoder) Reset() {
	if e.buf != nil {
		pool.PutSymbolBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

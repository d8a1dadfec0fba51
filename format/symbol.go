package format

import (
	"math"

	"github.com/qvdkit/qvd/endian"
)

// Symbol is one distinct value in a column's symbol table. It is a tagged
// union over the five wire variants; exactly one variant holds and the zero
// Symbol is not a valid symbol.
//
// Dual variants carry both a numeric component and a display string. The
// display string is the primary rendering of the value (see Primary).
type Symbol struct {
	str string
	dbl float64
	num int32
	typ SymbolType
}

// IntSymbol returns an Int symbol.
func IntSymbol(v int32) Symbol {
	return Symbol{typ: TypeInt, num: v}
}

// DoubleSymbol returns a Double symbol.
func DoubleSymbol(v float64) Symbol {
	return Symbol{typ: TypeDouble, dbl: v}
}

// StringSymbol returns a String symbol. An empty string is a valid symbol.
func StringSymbol(s string) Symbol {
	return Symbol{typ: TypeString, str: s}
}

// DualIntSymbol returns a DualInt symbol: an integer with a display string.
func DualIntSymbol(v int32, s string) Symbol {
	return Symbol{typ: TypeDualInt, num: v, str: s}
}

// DualDoubleSymbol returns a DualDouble symbol: a double with a display string.
func DualDoubleSymbol(v float64, s string) Symbol {
	return Symbol{typ: TypeDualDouble, dbl: v, str: s}
}

// Type returns the variant tag.
func (s Symbol) Type() SymbolType {
	return s.typ
}

// Int returns the integer component and whether the variant carries one.
func (s Symbol) Int() (int32, bool) {
	return s.num, s.typ == TypeInt || s.typ == TypeDualInt
}

// Double returns the double component and whether the variant carries one.
func (s Symbol) Double() (float64, bool) {
	return s.dbl, s.typ == TypeDouble || s.typ == TypeDualDouble
}

// Text returns the string component and whether the variant carries one.
func (s Symbol) Text() (string, bool) {
	return s.str, s.typ.HasString()
}

// Equal reports component-wise equality: the variants must match and every
// component of the variant must match. Two doubles compare with ==, so NaN
// symbols never compare equal; the encoder rejects NaN before it gets here.
func (s Symbol) Equal(other Symbol) bool {
	return s == other
}

// Primary returns the primary value of the symbol: its string component if
// present, else its integer component, else its double component.
func (s Symbol) Primary() Value {
	switch s.typ {
	case TypeString, TypeDualInt, TypeDualDouble:
		return Text(s.str)
	case TypeInt:
		return Int(int64(s.num))
	case TypeDouble:
		return Float(s.dbl)
	default:
		return Null()
	}
}

// AppendWire appends the symbol's wire form to dst: the tag byte followed by
// the payload laid out exactly as the symbol region stores it. This is the
// single source of truth for symbol bytes; the region encoder emits it and the
// deduplicator hashes it.
func (s Symbol) AppendWire(engine endian.EndianEngine, dst []byte) []byte {
	dst = append(dst, byte(s.typ))
	switch s.typ {
	case TypeInt:
		dst = engine.AppendUint32(dst, uint32(s.num))
	case TypeDouble:
		dst = engine.AppendUint64(dst, math.Float64bits(s.dbl))
	case TypeString:
		dst = append(dst, s.str...)
		dst = append(dst, 0x00)
	case TypeDualInt:
		dst = engine.AppendUint32(dst, uint32(s.num))
		dst = append(dst, s.str...)
		dst = append(dst, 0x00)
	case TypeDualDouble:
		dst = engine.AppendUint64(dst, math.Float64bits(s.dbl))
		dst = append(dst, s.str...)
		dst = append(dst, 0x00)
	}

	return dst
}

// WireSize returns the number of bytes AppendWire will emit.
func (s Symbol) WireSize() int {
	switch s.typ {
	case TypeInt:
		return 1 + 4
	case TypeDouble:
		return 1 + 8
	case TypeString:
		return 1 + len(s.str) + 1
	case TypeDualInt:
		return 1 + 4 + len(s.str) + 1
	case TypeDualDouble:
		return 1 + 8 + len(s.str) + 1
	default:
		return 0
	}
}

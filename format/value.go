package format

import (
	"fmt"
	"math"
	"strconv"

	"github.com/qvdkit/qvd/errs"
)

// ValueKind identifies what a table cell holds.
type ValueKind uint8

const (
	KindNull  ValueKind = iota // KindNull is an absent cell.
	KindInt                    // KindInt is a signed integer cell.
	KindFloat                  // KindFloat is a floating-point cell.
	KindText                   // KindText is a text cell.
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindText:
		return "Text"
	default:
		return "Unknown"
	}
}

// Value is one table cell: an integer, a float, text, or null. It is the type
// rows are made of on both sides of the codec; the read pipeline produces
// values via the primary-value rule and the write pipeline classifies them
// into symbols.
type Value struct {
	str  string
	flt  float64
	num  int64
	kind ValueKind
}

// Null returns the null cell.
func Null() Value {
	return Value{kind: KindNull}
}

// Int returns an integer cell.
func Int(v int64) Value {
	return Value{kind: KindInt, num: v}
}

// Float returns a floating-point cell.
func Float(v float64) Value {
	return Value{kind: KindFloat, flt: v}
}

// Text returns a text cell.
func Text(s string) Value {
	return Value{kind: KindText, str: s}
}

// Kind returns the cell kind.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the cell is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Int returns the integer payload and whether the cell is an integer.
func (v Value) Int() (int64, bool) {
	return v.num, v.kind == KindInt
}

// Float returns the float payload and whether the cell is a float.
func (v Value) Float() (float64, bool) {
	return v.flt, v.kind == KindFloat
}

// Text returns the text payload and whether the cell is text.
func (v Value) Text() (string, bool) {
	return v.str, v.kind == KindText
}

// String returns the display form of the cell. Numbers render the way the
// writer's textual dual form renders them, so a value and the symbol it
// classifies into always display identically.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case KindText:
		return v.str
	default:
		return ""
	}
}

// Equal reports cell equality. Integer and float cells compare numerically
// across the two numeric kinds, so Int(2) equals Float(2.0).
func (v Value) Equal(other Value) bool {
	if v.kind == KindInt && other.kind == KindFloat {
		return float64(v.num) == other.flt
	}
	if v.kind == KindFloat && other.kind == KindInt {
		return v.flt == float64(other.num)
	}

	return v == other
}

// Classify maps the cell to the symbol the writer stores for it:
//
//   - a whole number inside the int32 range becomes a DualInt with its decimal
//     text as display string
//   - any other finite number becomes a DualDouble with its decimal text
//   - text becomes a String symbol
//
// Null cells and non-finite floats have no wire representation and return an
// error wrapping errs.ErrUnrepresentableValue.
func (v Value) Classify() (Symbol, error) {
	switch v.kind {
	case KindInt:
		if v.num >= math.MinInt32 && v.num <= math.MaxInt32 {
			return DualIntSymbol(int32(v.num), strconv.FormatInt(v.num, 10)), nil
		}
		// Whole but outside int32: store as a double, keep the decimal text.
		return DualDoubleSymbol(float64(v.num), strconv.FormatInt(v.num, 10)), nil

	case KindFloat:
		f := v.flt
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Symbol{}, fmt.Errorf("%w: non-finite float %v", errs.ErrUnrepresentableValue, f)
		}
		if f == math.Trunc(f) && f >= math.MinInt32 && f <= math.MaxInt32 {
			return DualIntSymbol(int32(f), strconv.FormatFloat(f, 'f', -1, 64)), nil
		}

		return DualDoubleSymbol(f, strconv.FormatFloat(f, 'f', -1, 64)), nil

	case KindText:
		return StringSymbol(v.str), nil

	default:
		return Symbol{}, fmt.Errorf("%w: null value", errs.ErrUnrepresentableValue)
	}
}

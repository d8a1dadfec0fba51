// Package errs defines the sentinel errors shared across the qvd codec.
//
// Every error produced by the decode and encode pipelines wraps one of these
// sentinels, so callers can discriminate failure kinds with errors.Is while
// still receiving positional detail (byte offsets, tag values, field names)
// from the wrapping fmt.Errorf.
package errs

import "errors"

// Decode errors.
var (
	// ErrMalformedHeader indicates a missing CR-LF-NUL header terminator, an
	// XML parse failure, a missing mandatory header element, or header values
	// that contradict each other or the file size.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrUnknownSymbolTag indicates an unexpected type tag byte in a symbol
	// stream. The offending tag is carried in the wrapping error message.
	ErrUnknownSymbolTag = errors.New("unknown symbol tag")

	// ErrInvalidSymbolEncoding indicates a string payload that is not valid
	// UTF-8 or is missing its NUL terminator inside its column sub-region.
	ErrInvalidSymbolEncoding = errors.New("invalid symbol encoding")

	// ErrSymbolRegionOverrun indicates a column whose declared (offset, length)
	// extends past the symbol region, or whose decode consumed a different
	// number of bytes than declared.
	ErrSymbolRegionOverrun = errors.New("symbol region overrun")

	// ErrIndexOutOfRange indicates a decoded symbol index outside its column's
	// symbol sequence.
	ErrIndexOutOfRange = errors.New("symbol index out of range")

	// ErrBitLayoutOverflow indicates a field whose bit_offset + bit_width
	// exceeds record_byte_size * 8.
	ErrBitLayoutOverflow = errors.New("bit layout overflow")
)

// Encode errors.
var (
	// ErrUnrepresentableValue indicates a value that cannot be written: a null
	// cell, or a non-finite float with no textual dual form.
	ErrUnrepresentableValue = errors.New("unrepresentable value")

	// ErrColumnCountMismatch indicates a row whose cell count differs from the
	// encoder's column count.
	ErrColumnCountMismatch = errors.New("row/column count mismatch")

	// ErrNoColumns indicates an encoder constructed with an empty column list.
	ErrNoColumns = errors.New("table has no columns")

	// ErrEncoderFinished indicates use of an encoder after Finish.
	ErrEncoderFinished = errors.New("encoder already finished")
)

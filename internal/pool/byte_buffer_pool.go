package pool

import (
	"io"
	"sync"
)

const (
	// SymbolBufferDefaultSize is the initial capacity of buffers used to build
	// per-column symbol streams.
	SymbolBufferDefaultSize = 4 * 1024
	// SymbolBufferMaxThreshold caps the capacity of buffers returned to the
	// symbol pool; larger ones are discarded.
	SymbolBufferMaxThreshold = 1024 * 1024

	// RecordBufferDefaultSize is the initial capacity of buffers used to build
	// the packed index region.
	RecordBufferDefaultSize = 16 * 1024
	// RecordBufferMaxThreshold caps the capacity of buffers returned to the
	// record pool.
	RecordBufferMaxThreshold = 8 * 1024 * 1024
)

// ByteBuffer is a growable byte slice with an explicit growth strategy. The
// encode pipeline builds the symbol and index regions into these so buffers
// can be recycled between encodes.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the current length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer, keeping its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// MustWrite appends data, growing as needed.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

// ExtendZero appends n zero bytes and returns the slice covering them. The
// record packer writes each row into such a window with OR stores, so the
// window must start cleared.
func (bb *ByteBuffer) ExtendZero(n int) []byte {
	start := len(bb.B)
	bb.Grow(n)
	bb.B = bb.B[:start+n]
	window := bb.B[start:]
	for i := range window {
		window[i] = 0
	}

	return window
}

// Grow ensures capacity for requiredBytes more bytes. Buffers of capacity up
// to 4*SymbolBufferDefaultSize grow by SymbolBufferDefaultSize, larger ones by
// a quarter of their capacity, and always by at least requiredBytes.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := SymbolBufferDefaultSize
	if cap(bb.B) > 4*SymbolBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo implements io.WriterTo.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool, discarding buffers
// that grew past maxThreshold so one huge table does not pin memory forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of defaultSize capacity.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a buffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a buffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}
	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	symbolPool = NewByteBufferPool(SymbolBufferDefaultSize, SymbolBufferMaxThreshold)
	recordPool = NewByteBufferPool(RecordBufferDefaultSize, RecordBufferMaxThreshold)
)

// GetSymbolBuffer retrieves a buffer sized for a column symbol stream.
func GetSymbolBuffer() *ByteBuffer {
	return symbolPool.Get()
}

// PutSymbolBuffer returns a symbol stream buffer to its pool.
func PutSymbolBuffer(bb *ByteBuffer) {
	symbolPool.Put(bb)
}

// GetRecordBuffer retrieves a buffer sized for the packed index region.
func GetRecordBuffer() *ByteBuffer {
	return recordPool.Get()
}

// PutRecordBuffer returns an index region buffer to its pool.
func PutRecordBuffer(bb *ByteBuffer) {
	recordPool.Put(bb)
}

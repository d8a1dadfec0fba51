// Package endian provides the byte order engine used by the qvd wire codecs.
//
// The QVD format is little-endian on the wire: symbol payloads (int32, float64)
// and index records are all little-endian. The codecs nevertheless take an
// EndianEngine rather than reaching for binary.LittleEndian directly, so the
// append-style write path and the indexed read path share one value.
package endian

import "encoding/binary"

// EndianEngine combines the ByteOrder and AppendByteOrder interfaces from
// encoding/binary. It is satisfied by binary.LittleEndian and binary.BigEndian,
// so codec code can mix indexed reads (Uint32, PutUint64) with allocation-free
// appends (AppendUint32) through a single value.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine. This is the byte
// order of every numeric payload in a QVD file.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

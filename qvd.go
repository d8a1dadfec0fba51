// Package qvd reads and writes QlikView Data (QVD) files: a columnar,
// symbol-deduplicated, bit-packed binary table format.
//
// A QVD file is an XML header terminated by CR LF NUL, followed by a symbol
// region (one tag-prefixed, variable-length symbol stream per column) and an
// index region (fixed-width records of bit-stuffed symbol indices, one per
// row). Decoding joins the two through the header's layout; encoding
// deduplicates values into symbol tables, packs the indices, and computes a
// fresh layout so the three sections stay consistent.
//
// # Reading
//
//	tbl, err := qvd.ReadFile("sales.qvd")
//	if err != nil {
//	    return err
//	}
//	for _, row := range tbl.Rows {
//	    fmt.Println(row[0].String(), row[1].String())
//	}
//
// # Writing
//
//	rows := [][]format.Value{
//	    {format.Int(1), format.Text("A")},
//	    {format.Int(2), format.Text("B")},
//	}
//	err := qvd.WriteFile("out.qvd", []string{"Key", "Value"}, rows)
//
// This package provides convenience wrappers over the table package, which
// exposes the Decoder and Encoder directly for finer control.
package qvd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/table"
)

// Decode materializes a complete QVD byte buffer into a table.
func Decode(data []byte, opts ...table.DecoderOption) (*table.Table, error) {
	decoder, err := table.NewDecoder(data, opts...)
	if err != nil {
		return nil, err
	}

	return decoder.Decode()
}

// Encode builds a QVD file from column names and row-major cells. Every row
// must have one cell per column; null cells are rejected.
func Encode(columns []string, rows [][]format.Value, opts ...table.EncoderOption) ([]byte, error) {
	encoder, err := table.NewEncoder(columns, opts...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := encoder.AppendRow(row...); err != nil {
			return nil, err
		}
	}

	return encoder.Finish()
}

// ReadFile decodes the QVD file at path. The file is memory-mapped read-only
// for the duration of the decode; the returned table owns its values, so the
// mapping is released before returning.
func ReadFile(path string, opts ...table.DecoderOption) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", path, err)
	}
	defer data.Unmap()

	return Decode(data, opts...)
}

// WriteFile encodes columns and rows into a QVD file at path. Unless
// overridden with table.WithTableName, the header's TableName is the file's
// stem.
func WriteFile(path string, columns []string, rows [][]format.Value, opts ...table.EncoderOption) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name != "" {
		opts = append([]table.EncoderOption{table.WithTableName(name)}, opts...)
	}

	data, err := Encode(columns, rows, opts...)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

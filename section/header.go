// Package section implements the XML header region of a QVD file and the
// layout descriptor derived from it.
//
// A QVD file is three regions back to back: an XML header terminated by the
// byte sequence CR LF NUL, the symbol region, and the bit-stuffed index
// region. The header fixes every offset, length, and bit position the two
// binary regions rely on, so parsing it yields a Layout that the region
// decoders take as ground truth, and building it renders a Layout the
// encoders computed.
package section

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/qvdkit/qvd/errs"
)

// headerTerminator delimits the XML header. The symbol region starts at the
// byte immediately after it.
var headerTerminator = []byte{0x0D, 0x0A, 0x00}

// qvBuildNo is the build number stamped into written headers.
const qvBuildNo = "50668"

// CreateTimeLayout is the timestamp format of CreateUtcTime.
const CreateTimeLayout = "2006-01-02 15:04:05"

// TableHeader mirrors the QvdTableHeader XML document. Field order matches
// the order elements are written in; unknown elements in a foreign header are
// dropped by the unmarshaller.
//
// The four mandatory numeric elements are pointers so a header that omits one
// is distinguishable from one that carries a zero.
type TableHeader struct {
	XMLName             xml.Name     `xml:"QvdTableHeader"`
	QvBuildNo           string       `xml:"QvBuildNo"`
	CreatorDoc          string       `xml:"CreatorDoc"`
	CreateUtcTime       string       `xml:"CreateUtcTime"`
	SourceCreateUtcTime string       `xml:"SourceCreateUtcTime"`
	SourceFileUtcTime   string       `xml:"SourceFileUtcTime"`
	StaleUtcTime        string       `xml:"StaleUtcTime"`
	TableName           string       `xml:"TableName"`
	SourceFileSize      int          `xml:"SourceFileSize"`
	Fields              FieldHeaders `xml:"Fields"`
	Compression         string       `xml:"Compression"`
	RecordByteSize      *int         `xml:"RecordByteSize"`
	NoOfRecords         *int         `xml:"NoOfRecords"`
	Offset              *int         `xml:"Offset"`
	Length              *int         `xml:"Length"`
	Comment             string       `xml:"Comment"`
	EncryptionInfo      string       `xml:"EncryptionInfo"`
	TableTags           string       `xml:"TableTags"`
	ProfilingData       string       `xml:"ProfilingData"`
	Lineage             Lineage      `xml:"Lineage"`
}

// FieldHeaders is the Fields element. Unmarshalling into the slice accepts
// both a single QvdFieldHeader child and a list of them.
type FieldHeaders struct {
	Headers []FieldHeader `xml:"QvdFieldHeader"`
}

// FieldHeader mirrors one QvdFieldHeader element.
type FieldHeader struct {
	FieldName    string       `xml:"FieldName"`
	BitOffset    int          `xml:"BitOffset"`
	BitWidth     int          `xml:"BitWidth"`
	Bias         int          `xml:"Bias"`
	NumberFormat NumberFormat `xml:"NumberFormat"`
	NoOfSymbols  int          `xml:"NoOfSymbols"`
	Offset       int          `xml:"Offset"`
	Length       int          `xml:"Length"`
	Comment      string       `xml:"Comment"`
	Tags         Tags         `xml:"Tags"`
}

// NumberFormat mirrors the NumberFormat element. Written headers always emit
// the UNKNOWN format.
type NumberFormat struct {
	Type    string `xml:"Type"`
	NDec    string `xml:"nDec"`
	UseThou string `xml:"UseThou"`
	Fmt     string `xml:"Fmt"`
	Dec     string `xml:"Dec"`
	Thou    string `xml:"Thou"`
}

// Tags mirrors the Tags element.
type Tags struct {
	Strings []string `xml:"String"`
}

// Lineage mirrors the Lineage element.
type Lineage struct {
	Info []LineageInfo `xml:"LineageInfo"`
}

// LineageInfo mirrors one LineageInfo element.
type LineageInfo struct {
	Discriminator string `xml:"Discriminator"`
	Statement     string `xml:"Statement"`
}

// FindTerminator returns the offset of the CR-LF-NUL header terminator, or -1
// if it is absent. A match at any non-negative offset counts.
func FindTerminator(data []byte) int {
	return bytes.Index(data, headerTerminator)
}

// ParseHeader locates and decodes the XML header of a QVD byte buffer. It
// returns the header, the validated layout derived from it, and the offset at
// which the symbol region begins.
func ParseHeader(data []byte) (*TableHeader, *Layout, int, error) {
	term := FindTerminator(data)
	if term < 0 {
		return nil, nil, 0, fmt.Errorf("%w: header terminator not found", errs.ErrMalformedHeader)
	}
	bodyStart := term + len(headerTerminator)

	var hdr TableHeader
	if err := xml.Unmarshal(data[:term], &hdr); err != nil {
		return nil, nil, 0, fmt.Errorf("%w: %v", errs.ErrMalformedHeader, err)
	}

	layout, err := hdr.Layout()
	if err != nil {
		return nil, nil, 0, err
	}
	if err := layout.Validate(); err != nil {
		return nil, nil, 0, err
	}

	return &hdr, layout, bodyStart, nil
}

// Layout derives the layout descriptor from a parsed header, checking that
// every mandatory element is present.
func (h *TableHeader) Layout() (*Layout, error) {
	switch {
	case h.NoOfRecords == nil:
		return nil, fmt.Errorf("%w: missing NoOfRecords", errs.ErrMalformedHeader)
	case h.RecordByteSize == nil:
		return nil, fmt.Errorf("%w: missing RecordByteSize", errs.ErrMalformedHeader)
	case h.Offset == nil:
		return nil, fmt.Errorf("%w: missing Offset", errs.ErrMalformedHeader)
	case h.Length == nil:
		return nil, fmt.Errorf("%w: missing Length", errs.ErrMalformedHeader)
	case len(h.Fields.Headers) == 0:
		return nil, fmt.Errorf("%w: no field headers", errs.ErrMalformedHeader)
	}

	layout := &Layout{
		Fields:             make([]FieldLayout, len(h.Fields.Headers)),
		RecordByteSize:     *h.RecordByteSize,
		RowCount:           *h.NoOfRecords,
		SymbolRegionLength: *h.Offset,
		IndexRegionLength:  *h.Length,
	}
	for i, fh := range h.Fields.Headers {
		if fh.FieldName == "" {
			return nil, fmt.Errorf("%w: field %d has no FieldName", errs.ErrMalformedHeader, i)
		}
		layout.Fields[i] = FieldLayout{
			Name:         fh.FieldName,
			SymbolOffset: fh.Offset,
			SymbolLength: fh.Length,
			BitOffset:    fh.BitOffset,
			BitWidth:     fh.BitWidth,
			Bias:         fh.Bias,
			SymbolCount:  fh.NoOfSymbols,
		}
	}

	return layout, nil
}

// NewTableHeader renders a computed layout into a header ready to build. The
// caller supplies the volatile fields so deterministic output stays possible;
// everything else is fixed by the format.
func NewTableHeader(tableName string, layout *Layout, createTime time.Time, creatorDoc string) *TableHeader {
	hdr := &TableHeader{
		QvBuildNo:      qvBuildNo,
		CreatorDoc:     creatorDoc,
		CreateUtcTime:  createTime.UTC().Format(CreateTimeLayout),
		TableName:      tableName,
		SourceFileSize: -1,
		RecordByteSize: &layout.RecordByteSize,
		NoOfRecords:    &layout.RowCount,
		Offset:         &layout.SymbolRegionLength,
		Length:         &layout.IndexRegionLength,
		Lineage: Lineage{
			Info: []LineageInfo{{Discriminator: "INLINE;"}},
		},
	}

	hdr.Fields.Headers = make([]FieldHeader, len(layout.Fields))
	for i, f := range layout.Fields {
		hdr.Fields.Headers[i] = FieldHeader{
			FieldName: f.Name,
			BitOffset: f.BitOffset,
			BitWidth:  f.BitWidth,
			Bias:      f.Bias,
			NumberFormat: NumberFormat{
				Type:    "UNKNOWN",
				NDec:    "0",
				UseThou: "0",
			},
			NoOfSymbols: f.SymbolCount,
			Offset:      f.SymbolOffset,
			Length:      f.SymbolLength,
		}
	}

	return hdr
}

// Build serializes the header as the file stores it: two-space indentation,
// CRLF line endings, and a trailing CRLF after the closing tag. The CR-LF-NUL
// terminator is appended by the file writer, not here.
func (h *TableHeader) Build() ([]byte, error) {
	body, err := xml.MarshalIndent(h, "", "  ")
	if err != nil {
		return nil, err
	}

	body = bytes.ReplaceAll(body, []byte("\n"), []byte("\r\n"))
	body = append(body, '\r', '\n')

	return body, nil
}

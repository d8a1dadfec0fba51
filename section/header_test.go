package section

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/qvdkit/qvd/errs"
)

func testLayout() *Layout {
	return &Layout{
		Fields: []FieldLayout{
			{Name: "Key", SymbolOffset: 0, SymbolLength: 35, BitOffset: 0, BitWidth: 3, SymbolCount: 5},
			{Name: "Value", SymbolOffset: 35, SymbolLength: 20, BitOffset: 3, BitWidth: 3, SymbolCount: 5},
		},
		RecordByteSize:     1,
		RowCount:           5,
		SymbolRegionLength: 55,
		IndexRegionLength:  5,
	}
}

func buildTestHeader(t *testing.T, layout *Layout) []byte {
	t.Helper()

	createTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	hdr := NewTableHeader("Sample", layout, createTime, "8de63195-5b0e-4b31-9a54-7b6b2cbd6ea1")

	data, err := hdr.Build()
	require.NoError(t, err)

	return data
}

func TestTableHeader_BuildParseRoundTrip(t *testing.T) {
	built := buildTestHeader(t, testLayout())

	// The file writer appends the NUL that completes the CR-LF-NUL terminator.
	full := append(built, 0x00)

	hdr, layout, bodyStart, err := ParseHeader(full)
	require.NoError(t, err)
	require.Equal(t, len(full), bodyStart)

	require.Equal(t, "Sample", hdr.TableName)
	require.Equal(t, "8de63195-5b0e-4b31-9a54-7b6b2cbd6ea1", hdr.CreatorDoc)
	require.Equal(t, "2024-06-01 12:00:00", hdr.CreateUtcTime)
	require.Equal(t, -1, hdr.SourceFileSize)
	require.Equal(t, "", hdr.Compression)
	require.Equal(t, "", hdr.EncryptionInfo)
	require.Len(t, hdr.Lineage.Info, 1)
	require.Equal(t, "INLINE;", hdr.Lineage.Info[0].Discriminator)

	require.Equal(t, testLayout(), layout)
}

func TestTableHeader_BuildFormat(t *testing.T) {
	built := string(buildTestHeader(t, testLayout()))

	require.True(t, strings.HasPrefix(built, "<QvdTableHeader>\r\n"))
	require.True(t, strings.HasSuffix(built, "</QvdTableHeader>\r\n"))
	require.Contains(t, built, "\r\n  <QvBuildNo>50668</QvBuildNo>\r\n")
	require.Contains(t, built, "<SourceFileSize>-1</SourceFileSize>")
	require.Contains(t, built, "<SourceCreateUtcTime></SourceCreateUtcTime>")
	require.Contains(t, built, "<Compression></Compression>")
	require.Contains(t, built, "<Type>UNKNOWN</Type>")
	require.Contains(t, built, "<nDec>0</nDec>")
	require.Contains(t, built, "<Tags></Tags>")
	// Two-space indentation, CRLF line endings, no bare LF.
	require.Contains(t, built, "\r\n    <QvdFieldHeader>\r\n")
	require.NotContains(t, strings.ReplaceAll(built, "\r\n", ""), "\n")
}

func TestParseHeader_SingleFieldNormalizesToList(t *testing.T) {
	xml := "<QvdTableHeader>" +
		"<NoOfRecords>1</NoOfRecords><RecordByteSize>1</RecordByteSize>" +
		"<Offset>6</Offset><Length>1</Length>" +
		"<Fields><QvdFieldHeader>" +
		"<FieldName>F</FieldName><BitOffset>0</BitOffset><BitWidth>0</BitWidth>" +
		"<Bias>0</Bias><NoOfSymbols>1</NoOfSymbols><Offset>0</Offset><Length>6</Length>" +
		"</QvdFieldHeader></Fields>" +
		"</QvdTableHeader>\r\n\x00"

	_, layout, _, err := ParseHeader([]byte(xml))
	require.NoError(t, err)
	require.Len(t, layout.Fields, 1)
	require.Equal(t, "F", layout.Fields[0].Name)
	require.Equal(t, 1, layout.RowCount)
}

func TestParseHeader_MissingTerminator(t *testing.T) {
	_, _, _, err := ParseHeader([]byte("<QvdTableHeader></QvdTableHeader>"))
	require.ErrorIs(t, err, errs.ErrMalformedHeader)
}

func TestParseHeader_BadXML(t *testing.T) {
	_, _, _, err := ParseHeader([]byte("<QvdTableHeader><oops\r\n\x00"))
	require.ErrorIs(t, err, errs.ErrMalformedHeader)
}

func TestParseHeader_NonIntegerValue(t *testing.T) {
	xml := "<QvdTableHeader><NoOfRecords>five</NoOfRecords></QvdTableHeader>\r\n\x00"
	_, _, _, err := ParseHeader([]byte(xml))
	require.ErrorIs(t, err, errs.ErrMalformedHeader)
}

func TestParseHeader_MissingMandatoryElements(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"no NoOfRecords", "<QvdTableHeader><RecordByteSize>1</RecordByteSize><Offset>0</Offset><Length>0</Length><Fields><QvdFieldHeader><FieldName>F</FieldName></QvdFieldHeader></Fields></QvdTableHeader>"},
		{"no RecordByteSize", "<QvdTableHeader><NoOfRecords>0</NoOfRecords><Offset>0</Offset><Length>0</Length><Fields><QvdFieldHeader><FieldName>F</FieldName></QvdFieldHeader></Fields></QvdTableHeader>"},
		{"no Offset", "<QvdTableHeader><NoOfRecords>0</NoOfRecords><RecordByteSize>0</RecordByteSize><Length>0</Length><Fields><QvdFieldHeader><FieldName>F</FieldName></QvdFieldHeader></Fields></QvdTableHeader>"},
		{"no Length", "<QvdTableHeader><NoOfRecords>0</NoOfRecords><RecordByteSize>0</RecordByteSize><Offset>0</Offset><Fields><QvdFieldHeader><FieldName>F</FieldName></QvdFieldHeader></Fields></QvdTableHeader>"},
		{"no fields", "<QvdTableHeader><NoOfRecords>0</NoOfRecords><RecordByteSize>0</RecordByteSize><Offset>0</Offset><Length>0</Length></QvdTableHeader>"},
		{"unnamed field", "<QvdTableHeader><NoOfRecords>0</NoOfRecords><RecordByteSize>0</RecordByteSize><Offset>0</Offset><Length>0</Length><Fields><QvdFieldHeader><Offset>0</Offset></QvdFieldHeader></Fields></QvdTableHeader>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := ParseHeader([]byte(tt.xml + "\r\n\x00"))
			require.ErrorIs(t, err, errs.ErrMalformedHeader)
		})
	}
}

func TestLayout_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, testLayout().Validate())
	})

	t.Run("symbol span past region", func(t *testing.T) {
		layout := testLayout()
		layout.Fields[1].SymbolLength = 21
		require.ErrorIs(t, layout.Validate(), errs.ErrSymbolRegionOverrun)
	})

	t.Run("overlapping symbol spans", func(t *testing.T) {
		layout := testLayout()
		layout.Fields[1].SymbolOffset = 34
		require.ErrorIs(t, layout.Validate(), errs.ErrSymbolRegionOverrun)
	})

	t.Run("bit slot past record end", func(t *testing.T) {
		layout := testLayout()
		layout.Fields[1].BitWidth = 6
		require.ErrorIs(t, layout.Validate(), errs.ErrBitLayoutOverflow)
	})

	t.Run("bit width beyond 32", func(t *testing.T) {
		layout := testLayout()
		layout.RecordByteSize = 16
		layout.IndexRegionLength = 80
		layout.Fields[1].BitWidth = 33
		require.ErrorIs(t, layout.Validate(), errs.ErrBitLayoutOverflow)
	})

	t.Run("index region not a whole number of records", func(t *testing.T) {
		layout := testLayout()
		layout.IndexRegionLength = 7
		require.ErrorIs(t, layout.Validate(), errs.ErrMalformedHeader)
	})

	t.Run("one trailing padding byte tolerated", func(t *testing.T) {
		layout := testLayout()
		layout.IndexRegionLength = 6
		require.NoError(t, layout.Validate())
	})

	t.Run("zero record size with rows", func(t *testing.T) {
		layout := testLayout()
		layout.RecordByteSize = 0
		require.ErrorIs(t, layout.Validate(), errs.ErrMalformedHeader)
	})

	t.Run("empty table", func(t *testing.T) {
		layout := &Layout{
			Fields:   []FieldLayout{{Name: "F"}},
			RowCount: 0,
		}
		require.NoError(t, layout.Validate())
	})
}

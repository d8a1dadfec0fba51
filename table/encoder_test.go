package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/qvdkit/qvd/errs"
	"github.com/qvdkit/qvd/format"
	"github.com/qvdkit/qvd/section"
)

func TestEncoder_NoColumns(t *testing.T) {
	_, err := NewEncoder(nil)
	require.ErrorIs(t, err, errs.ErrNoColumns)
}

func TestEncoder_ColumnCountMismatch(t *testing.T) {
	encoder, err := NewEncoder([]string{"a", "b"})
	require.NoError(t, err)

	err = encoder.AppendRow(format.Int(1))
	require.ErrorIs(t, err, errs.ErrColumnCountMismatch)
}

func TestEncoder_RejectsNull(t *testing.T) {
	encoder, err := NewEncoder([]string{"a", "b"})
	require.NoError(t, err)

	err = encoder.AppendRow(format.Int(1), format.Null())
	require.ErrorIs(t, err, errs.ErrUnrepresentableValue)
	require.ErrorContains(t, err, `field "b"`)
}

func TestEncoder_SingleUse(t *testing.T) {
	encoder, err := NewEncoder([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, encoder.AppendRow(format.Int(1)))

	_, err = encoder.Finish()
	require.NoError(t, err)

	require.ErrorIs(t, encoder.AppendRow(format.Int(2)), errs.ErrEncoderFinished)
	_, err = encoder.Finish()
	require.ErrorIs(t, err, errs.ErrEncoderFinished)
}

func TestEncoder_DefaultAndCustomTableName(t *testing.T) {
	data := encodeRows(t, []string{"a"}, [][]format.Value{{format.Int(1)}})
	hdr, _, _, err := section.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, "DATA", hdr.TableName)

	data = encodeRows(t, []string{"a"}, [][]format.Value{{format.Int(1)}}, WithTableName("Sales"))
	hdr, _, _, err = section.ParseHeader(data)
	require.NoError(t, err)
	require.Equal(t, "Sales", hdr.TableName)
}

func TestEncoder_OptionValidation(t *testing.T) {
	_, err := NewEncoder([]string{"a"}, WithTableName(""))
	require.Error(t, err)

	_, err = NewEncoder([]string{"a"}, WithCreatorDoc("not-a-uuid"))
	require.Error(t, err)
}

func TestEncoder_FreshVolatileFieldsByDefault(t *testing.T) {
	rows := [][]format.Value{{format.Int(1)}}

	encoder, err := NewEncoder([]string{"a"})
	require.NoError(t, err)
	require.NoError(t, encoder.AppendRow(rows[0]...))
	data, err := encoder.Finish()
	require.NoError(t, err)

	hdr, _, _, err := section.ParseHeader(data)
	require.NoError(t, err)
	require.NotEmpty(t, hdr.CreatorDoc)
	require.NotEmpty(t, hdr.CreateUtcTime)
}

func TestEncoder_EmptyStringIsASymbol(t *testing.T) {
	rows := [][]format.Value{
		{format.Text("")},
		{format.Text("x")},
		{format.Text("")},
	}

	tbl := decodeBytes(t, encodeRows(t, []string{"s"}, rows))
	require.Equal(t, 2, tbl.SymbolCount(0))
	require.Equal(t, format.Text(""), tbl.Rows[0][0])
	require.Equal(t, format.Text("x"), tbl.Rows[1][0])
	require.Equal(t, format.Text(""), tbl.Rows[2][0])
}

func TestEncoder_DualsWithSameNumberDistinctText(t *testing.T) {
	// "1" the text and 1 the number must not merge: structural equality
	// covers the variant, the numeric component, and the display string.
	rows := [][]format.Value{
		{format.Int(1)},
		{format.Text("1")},
	}

	tbl := decodeBytes(t, encodeRows(t, []string{"v"}, rows))
	require.Equal(t, 2, tbl.SymbolCount(0))
	require.Equal(t, []format.Symbol{
		format.DualIntSymbol(1, "1"),
		format.StringSymbol("1"),
	}, tbl.Symbols(0))
}

package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{
		Did: "ds-1",
		Rs:  "outliers",
		U:   UnitRecords,
		Off: 100,
		Ps:  50,
		Col: "revenue",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	c, err := DecodeCursor(token)
	require.NoError(t, err)
	require.Equal(t, 1, c.V)
	require.Equal(t, "ds-1", c.Did)
	require.Equal(t, "outliers", c.Rs)
	require.Equal(t, UnitRecords, c.U)
	require.Equal(t, 100, c.Off)
	require.Equal(t, 50, c.Ps)
	require.Equal(t, "revenue", c.Col)
	require.NotZero(t, c.Iat)
}

func TestEncodeCursorValidation(t *testing.T) {
	_, err := EncodeCursor(Cursor{Rs: "preview", U: UnitRows, Ps: 10})
	require.Error(t, err) // dataset id required

	_, err = EncodeCursor(Cursor{Did: "d", U: UnitRows, Ps: 10})
	require.Error(t, err) // result set required

	_, err = EncodeCursor(Cursor{Did: "d", Rs: "preview", U: "pages", Ps: 10})
	require.Error(t, err) // unknown unit

	_, err = EncodeCursor(Cursor{Did: "d", Rs: "preview", U: UnitRows, Ps: 0})
	require.Error(t, err) // page size must be positive

	_, err = EncodeCursor(Cursor{Did: "d", Rs: "preview", U: UnitRows, Off: -1, Ps: 10})
	require.Error(t, err)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("")
	require.Error(t, err)

	_, err = DecodeCursor("!!!not-base64!!!")
	require.Error(t, err)

	// Valid base64, invalid JSON payload.
	_, err = DecodeCursor("bm90LWpzb24")
	require.Error(t, err)
}

func TestNextOffset(t *testing.T) {
	require.Equal(t, 30, NextOffset(10, 20))
	require.Equal(t, 10, NextOffset(10, 0))
	require.Equal(t, 5, NextOffset(-3, 5))
}

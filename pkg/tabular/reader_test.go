package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	input := "NOMBRES,DOCUMENTO,01/03/2024\nAna,123,X\nLuis,,\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"NOMBRES", "DOCUMENTO", "01/03/2024"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Ana", table.Rows[0]["NOMBRES"])
	assert.Equal(t, "X", table.Rows[0]["01/03/2024"])
	assert.Equal(t, "", table.Rows[1]["DOCUMENTO"])
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "NOMBRES,01/03/2024\nAna\n"

	table, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	_, ok := table.Rows[0].Cell("01/03/2024")
	assert.False(t, ok)
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "NOMBRES"))
	require.NoError(t, f.SetCellValue(sheet, "B1", "01/03/2024"))
	require.NoError(t, f.SetCellValue(sheet, "A2", "Ana"))
	require.NoError(t, f.SetCellValue(sheet, "B2", "X"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	table, err := ReadXLSX(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"NOMBRES", "01/03/2024"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Ana", table.Rows[0]["NOMBRES"])
}

func TestReadDispatchesOnExtension(t *testing.T) {
	table, err := Read("lista.csv", strings.NewReader("NOMBRES\nAna\n"))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 1)
}

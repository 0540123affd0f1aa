package spreadsheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
)

func TestReadCSVStripsBOM(t *testing.T) {
	input := "\ufeff이름,이메일\n김철수,kim@example.com\n,\n이영희\n"
	table, err := Read("trainees.CSV", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"이름", "이메일"}, table.Headers)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "kim@example.com", table.Cell(0, 1))
	assert.True(t, IsBlankRow(table.Rows[1]))
	assert.Equal(t, "", table.Cell(2, 1))
	assert.Equal(t, "", table.Cell(9, 0))
}

func TestReadRequiresHeader(t *testing.T) {
	_, err := Read("empty.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReadRejectsUnknownExtension(t *testing.T) {
	_, err := Read("trainees.txt", strings.NewReader("a,b"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestReadXLSXFirstSheet(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]interface{}{"이름", "사번"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]interface{}{"김철수", "E001"}))
	buf, err := book.WriteToBuffer()
	require.NoError(t, err)

	table, err := Read("upload.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"이름", "사번"}, table.Headers)
	assert.Equal(t, [][]string{{"김철수", "E001"}}, table.Rows)
}

func TestReadXLSXRejectsGarbage(t *testing.T) {
	_, err := Read("upload.xlsx", strings.NewReader("not a workbook"))
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

package importfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormatOf(t *testing.T) {
	for name, want := range map[string]string{"a.csv": FormatCSV, "B.CSV": FormatCSV, "c.xlsx": FormatXLSX} {
		got, err := FormatOf(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}
	for _, name := range []string{"a.xls", "a.txt", "noext"} {
		_, err := FormatOf(name)
		assert.ErrorIs(t, err, ErrUnsupported, name)
	}
}

func TestReadCSV(t *testing.T) {
	in := "\ufeffproduct_name,product_price,selling_price,stock_quantity\n" +
		"Widget, 10.00,12.50,5\n" +
		",,,\n" +
		"Gadget,3,4\n"
	s, err := Read("p.csv", strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, RequiredColumns, s.Columns)
	assert.Empty(t, s.Missing(RequiredColumns))
	require.Len(t, s.Rows, 2)
	assert.Equal(t, "10.00", s.Rows[0]["product_price"])
	assert.Equal(t, "", s.Rows[1]["stock_quantity"])
}

func TestReadCSVMissingColumns(t *testing.T) {
	s, err := Read("p.csv", strings.NewReader("product_name,stock_quantity\nx,1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"product_price", "selling_price"}, s.Missing(RequiredColumns))
}

func TestReadRejectsBrokenFiles(t *testing.T) {
	_, err := Read("p.csv", strings.NewReader(""))
	require.Error(t, err)

	_, err = Read("p.xlsx", strings.NewReader("not a zip"))
	require.Error(t, err)

	_, err = Read("p.xls", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestTemplatesParseBack(t *testing.T) {
	for _, kind := range []string{"csv", "excel"} {
		data, filename, err := Template(kind)
		require.NoError(t, err, kind)

		s, err := Read(filename, bytes.NewReader(data))
		require.NoError(t, err, kind)
		assert.Empty(t, s.Missing(RequiredColumns))
		require.Len(t, s.Rows, 2)
		assert.Equal(t, "Sample Product 2", s.Rows[1]["product_name"])
	}

	_, _, err := Template("pdf")
	require.ErrorIs(t, err, ErrUnsupported)
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"product_name", "product_price", "selling_price", "stock_quantity", "description"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Widget", 10, 12.5, 5, "blue"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	s, err := Read("p.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, s.Rows, 1)
	assert.Equal(t, "Widget", s.Rows[0]["product_name"])
	assert.Equal(t, "blue", s.Rows[0]["description"])
}

func TestParseProductRow(t *testing.T) {
	p, errs := ParseProductRow(map[string]string{
		"product_name": "Widget", "product_price": "10", "selling_price": "12.5", "stock_quantity": "7", "description": "blue",
	}, true)
	require.Empty(t, errs)
	assert.Equal(t, "Widget", p.Name)
	assert.Equal(t, "12.5", p.SellingPrice.String())
	assert.Equal(t, 7, p.StockQuantity)
	require.NotNil(t, p.Description)

	_, errs = ParseProductRow(map[string]string{
		"product_name": "", "product_price": "abc", "selling_price": "-1", "stock_quantity": "2.5",
	}, false)
	assert.Equal(t, []string{
		"Product name is required",
		"Invalid product_price",
		"selling_price cannot be negative",
		"stock_quantity must be a whole number",
	}, errs)
}

func TestRowNumber(t *testing.T) {
	assert.Equal(t, 2, RowNumber(0))
	assert.Equal(t, 11, RowNumber(9))
}

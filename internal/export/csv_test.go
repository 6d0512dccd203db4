package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

func sampleProducts() []domain.Product {
	from := time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC)
	return []domain.Product{
		{
			Store:         "Walmart",
			StoreCategory: "walmart",
			Name:          "Milk 2%",
			Description:   "4L, assorted",
			Price:         decimal.RequireFromString("4.99"),
			Quantity:      decimal.NewNullDecimal(decimal.NewFromInt(4)),
			Unit:          domain.UnitL,
			UnitPrice:     decimal.NewNullDecimal(decimal.RequireFromString("0.12")),
			ValidFrom:     &from,
			ProductURL:    "https://flipp.com/en-ca/flyer/3/item/30",
		},
		{
			Store: "Metro",
			Name:  "Mystery Deal",
			Price: decimal.NewFromInt(3),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleProducts()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, []string{
		"Walmart", "walmart", "Milk 2%", "4L, assorted", "N/A", "N/A",
		"4.99", "4", "L", "0.12", "N/A", "N/A", "N/A",
		"2025-05-08", "N/A", "https://flipp.com/en-ca/flyer/3/item/30",
	}, rows[1])
	assert.Equal(t, []string{
		"Metro", "N/A", "Mystery Deal", "N/A", "N/A", "N/A",
		"3.00", "N/A", "N/A", "N/A", "N/A", "N/A", "N/A",
		"N/A", "N/A", "N/A",
	}, rows[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, strings.Join(Columns, ",")+"\n", buf.String())
}

func TestFileName(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 8, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "flipp_products_20250508_150405.csv", FileName(now))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	path, err := WriteFile(filepath.Join(dir, "nested", "prices"), sampleProducts())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "prices.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "store,store_category,product_name,"))
	assert.Equal(t, 3, strings.Count(string(data), "\n"))

	path, err = WriteFile(filepath.Join(dir, "out.CSV"), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out.CSV"), path)
}

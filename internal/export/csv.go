// Package export writes catalog products as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

// Columns is the CSV header, in output order.
var Columns = []string{
	"store",
	"store_category",
	"product_name",
	"description",
	"brand",
	"category",
	"price",
	"quantity",
	"unit",
	"unit_price",
	"pre_price_text",
	"post_price_text",
	"sale_story",
	"valid_from",
	"valid_to",
	"product_url",
}

// Record renders p as a CSV row. Absent values are written as N/A.
func Record(p *domain.Product) []string {
	return []string{
		p.Store,
		domain.OrNotAvailable(p.StoreCategory),
		p.Name,
		domain.OrNotAvailable(p.Description),
		domain.OrNotAvailable(p.Brand),
		domain.OrNotAvailable(p.Category),
		domain.FormatMoney(p.Price),
		domain.FormatNullQuantity(p.Quantity),
		domain.OrNotAvailable(string(p.Unit)),
		domain.FormatNullMoney(p.UnitPrice),
		domain.OrNotAvailable(p.PrePriceText),
		domain.OrNotAvailable(p.PostPriceText),
		domain.OrNotAvailable(p.SaleStory),
		domain.FormatDate(p.ValidFrom),
		domain.FormatDate(p.ValidTo),
		domain.OrNotAvailable(p.ProductURL),
	}
}

// WriteCSV writes the header and one row per product to w.
func WriteCSV(w io.Writer, products []domain.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i := range products {
		if err := cw.Write(Record(&products[i])); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}

// FileName returns a timestamped export file name.
func FileName(now time.Time) string {
	return "flipp_products_" + now.Format("20060102_150405") + ".csv"
}

// WriteFile writes products to path, adding a .csv extension when missing.
// It returns the path written.
func WriteFile(path string, products []domain.Product) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".csv") {
		path += ".csv"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path from trusted CLI flag or config
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := WriteCSV(f, products); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

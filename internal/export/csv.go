package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"pharmacrawl/internal/types"
)

// writeCSV emits one CSV per entity table.
func (e *Exporter) writeCSV(snap *snapshot) ([]string, error) {
	var paths []string
	for _, write := range []func(*snapshot) (string, error){
		e.writeProductsCSV, e.writeCategoriesCSV, e.writeBrandsCSV,
	} {
		path, err := write(snap)
		if err != nil {
			return paths, &types.ExportError{Format: "csv", Err: err}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Exporter) writeProductsCSV(snap *snapshot) (string, error) {
	path, err := e.outPath(csvDir, "products", snap.Stamp, "csv")
	if err != nil {
		return "", err
	}

	header := []string{
		"id", "name", "url", "slug", "sku", "price_current", "price_original",
		"discount_percentage", "in_stock", "stock_quantity",
		"prescription_required", "manufacturer", "form", "rating",
		"review_count", "category", "image_url", "scraped_at",
	}
	rows := make([][]string, 0, len(snap.Products))
	for _, p := range snap.Products {
		rows = append(rows, []string{
			strconv.FormatInt(p.ID, 10),
			p.Name,
			p.URL,
			p.Slug,
			p.SKU,
			floatField(p.PriceCurrent),
			floatField(p.PriceOriginal),
			floatField(p.DiscountPercentage),
			strconv.FormatBool(p.InStock),
			intField(p.StockQuantity),
			strconv.FormatBool(p.PrescriptionRequired),
			p.Manufacturer,
			string(p.Form),
			floatField(p.Rating),
			strconv.Itoa(p.ReviewCount),
			p.CategoryName,
			p.ImageURL,
			timeField(p.ScrapedAt),
		})
	}
	return path, writeCSVFile(path, header, rows)
}

func (e *Exporter) writeCategoriesCSV(snap *snapshot) (string, error) {
	path, err := e.outPath(csvDir, "categories", snap.Stamp, "csv")
	if err != nil {
		return "", err
	}

	header := []string{"id", "name", "url", "slug", "parent_url", "source", "scraped_at"}
	rows := make([][]string, 0, len(snap.Categories))
	for _, c := range snap.Categories {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Name, c.URL, c.Slug, c.ParentURL, string(c.Source),
			timeField(c.ScrapedAt),
		})
	}
	return path, writeCSVFile(path, header, rows)
}

func (e *Exporter) writeBrandsCSV(snap *snapshot) (string, error) {
	path, err := e.outPath(csvDir, "brands", snap.Stamp, "csv")
	if err != nil {
		return "", err
	}

	header := []string{"id", "name", "url", "scraped_at"}
	rows := make([][]string, 0, len(snap.Brands))
	for _, b := range snap.Brands {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10), b.Name, b.URL, timeField(b.ScrapedAt),
		})
	}
	return path, writeCSVFile(path, header, rows)
}

func writeCSVFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func timeField(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

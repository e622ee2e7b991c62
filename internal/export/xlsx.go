package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"pharmacrawl/internal/types"
)

// writeXLSX emits a workbook with one sheet per entity plus a summary
// sheet of run statistics.
func (e *Exporter) writeXLSX(snap *snapshot) ([]string, error) {
	path, err := e.outPath(excelDir, "catalog", snap.Stamp, "xlsx")
	if err != nil {
		return nil, &types.ExportError{Format: "xlsx", Err: err}
	}

	wb := excelize.NewFile()
	defer wb.Close()

	headerStyle, err := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E7D32"}},
	})
	if err != nil {
		return nil, &types.ExportError{Format: "xlsx", Err: err}
	}

	for _, sheet := range []func(*excelize.File, *snapshot, int) error{
		e.productsSheet, e.categoriesSheet, e.brandsSheet, e.summarySheet,
	} {
		if err := sheet(wb, snap, headerStyle); err != nil {
			return nil, &types.ExportError{Format: "xlsx", Err: err}
		}
	}

	wb.DeleteSheet("Sheet1")
	if err := wb.SaveAs(path); err != nil {
		return nil, &types.ExportError{Format: "xlsx", Err: err}
	}
	return []string{path}, nil
}

func (e *Exporter) productsSheet(wb *excelize.File, snap *snapshot, headerStyle int) error {
	const sheet = "Products"
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{
		"ID", "Name", "URL", "SKU", "Current Price", "Original Price",
		"Discount %", "In Stock", "Rx Required", "Manufacturer", "Form",
		"Rating", "Reviews", "Category",
	}
	if err := writeSheetHeader(wb, sheet, header, headerStyle); err != nil {
		return err
	}

	for i, p := range snap.Products {
		row := []any{
			p.ID, p.Name, p.URL, p.SKU,
			cellFloat(p.PriceCurrent), cellFloat(p.PriceOriginal),
			cellFloat(p.DiscountPercentage),
			p.InStock, p.PrescriptionRequired, p.Manufacturer,
			string(p.Form), cellFloat(p.Rating), p.ReviewCount, p.CategoryName,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) categoriesSheet(wb *excelize.File, snap *snapshot, headerStyle int) error {
	const sheet = "Categories"
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"ID", "Name", "URL", "Parent", "Source"}
	if err := writeSheetHeader(wb, sheet, header, headerStyle); err != nil {
		return err
	}

	for i, c := range snap.Categories {
		row := []any{c.ID, c.Name, c.URL, c.ParentURL, string(c.Source)}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) brandsSheet(wb *excelize.File, snap *snapshot, headerStyle int) error {
	const sheet = "Brands"
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}

	header := []any{"ID", "Name", "URL"}
	if err := writeSheetHeader(wb, sheet, header, headerStyle); err != nil {
		return err
	}

	for i, b := range snap.Brands {
		row := []any{b.ID, b.Name, b.URL}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) summarySheet(wb *excelize.File, snap *snapshot, headerStyle int) error {
	const sheet = "Summary"
	if _, err := wb.NewSheet(sheet); err != nil {
		return err
	}

	if err := writeSheetHeader(wb, sheet, []any{"Metric", "Value"}, headerStyle); err != nil {
		return err
	}

	st := snap.Stats
	metrics := [][]any{
		{"Categories", st.Categories},
		{"Products", st.Products},
		{"Brands", st.Brands},
		{"Images", st.Images},
		{"Products with price", st.WithPrice},
		{"Products with manufacturer", st.WithManufacturer},
		{"In stock", st.InStock},
		{"Prescription required", st.Prescription},
		{"Average price", cellFloat(st.AvgPrice)},
		{"Minimum price", cellFloat(st.MinPrice)},
		{"Maximum price", cellFloat(st.MaxPrice)},
		{"Generated", st.GeneratedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range metrics {
		cell := fmt.Sprintf("A%d", i+2)
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func writeSheetHeader(wb *excelize.File, sheet string, header []any, style int) error {
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	return wb.SetCellStyle(sheet, "A1", last, style)
}

// cellFloat renders an optional float as a cell value, blank when nil.
func cellFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

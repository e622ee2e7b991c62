package export

import (
	"fmt"
	"html/template"
	"os"

	"pharmacrawl/internal/storage"
	"pharmacrawl/internal/types"
)

// reportTemplate renders the run statistics as a standalone HTML page.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Catalog Report</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 760px; color: #222; }
  h1 { border-bottom: 2px solid #2e7d32; padding-bottom: .4rem; }
  table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
  th, td { border: 1px solid #ddd; padding: .5rem .8rem; text-align: left; }
  th { background: #2e7d32; color: #fff; }
  tr:nth-child(even) { background: #f6f6f6; }
  .footer { color: #888; font-size: .85rem; margin-top: 2rem; }
</style>
</head>
<body>
<h1>Catalog Report</h1>

<h2>Totals</h2>
<table>
  <tr><th>Metric</th><th>Value</th></tr>
  <tr><td>Categories</td><td>{{.Categories}}</td></tr>
  <tr><td>Products</td><td>{{.Products}}</td></tr>
  <tr><td>Brands</td><td>{{.Brands}}</td></tr>
  <tr><td>Images</td><td>{{.Images}}</td></tr>
</table>

<h2>Data completeness</h2>
<table>
  <tr><th>Metric</th><th>Value</th></tr>
  <tr><td>Products with price</td><td>{{.WithPrice}}</td></tr>
  <tr><td>Products with manufacturer</td><td>{{.WithManufacturer}}</td></tr>
  <tr><td>In stock</td><td>{{.InStock}}</td></tr>
  <tr><td>Prescription required</td><td>{{.Prescription}}</td></tr>
</table>

<h2>Prices (Rs.)</h2>
<table>
  <tr><th>Metric</th><th>Value</th></tr>
  <tr><td>Average</td><td>{{.AvgPrice}}</td></tr>
  <tr><td>Minimum</td><td>{{.MinPrice}}</td></tr>
  <tr><td>Maximum</td><td>{{.MaxPrice}}</td></tr>
</table>

<p class="footer">Generated {{.Generated}}</p>
</body>
</html>
`))

// reportView flattens Stats for the template: optional prices become
// pre-formatted strings.
type reportView struct {
	Categories       int
	Products         int
	Brands           int
	Images           int
	WithPrice        int
	WithManufacturer int
	InStock          int
	Prescription     int
	AvgPrice         string
	MinPrice         string
	MaxPrice         string
	Generated        string
}

func newReportView(st *storage.Stats) reportView {
	price := func(v *float64) string {
		if v == nil {
			return "n/a"
		}
		return fmt.Sprintf("%.2f", *v)
	}
	return reportView{
		Categories:       st.Categories,
		Products:         st.Products,
		Brands:           st.Brands,
		Images:           st.Images,
		WithPrice:        st.WithPrice,
		WithManufacturer: st.WithManufacturer,
		InStock:          st.InStock,
		Prescription:     st.Prescription,
		AvgPrice:         price(st.AvgPrice),
		MinPrice:         price(st.MinPrice),
		MaxPrice:         price(st.MaxPrice),
		Generated:        st.GeneratedAt.Format("2006-01-02 15:04:05 MST"),
	}
}

// writeReport emits the HTML statistics report.
func (e *Exporter) writeReport(snap *snapshot) ([]string, error) {
	path, err := e.outPath(reportDir, "report", snap.Stamp, "html")
	if err != nil {
		return nil, &types.ExportError{Format: "report", Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &types.ExportError{Format: "report", Err: err}
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, newReportView(snap.Stats)); err != nil {
		return nil, &types.ExportError{Format: "report", Err: err}
	}
	return []string{path}, nil
}

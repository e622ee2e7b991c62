package export

import (
	"encoding/xml"
	"os"

	"pharmacrawl/internal/types"
)

type xmlCatalog struct {
	XMLName    xml.Name      `xml:"catalog"`
	Generated  string        `xml:"generated,attr"`
	Categories []xmlCategory `xml:"categories>category"`
	Brands     []xmlBrand    `xml:"brands>brand"`
	Products   []xmlProduct  `xml:"products>product"`
}

type xmlCategory struct {
	ID     int64  `xml:"id,attr"`
	Name   string `xml:"name"`
	URL    string `xml:"url"`
	Parent string `xml:"parent,omitempty"`
	Source string `xml:"source,omitempty"`
}

type xmlBrand struct {
	ID   int64  `xml:"id,attr"`
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

type xmlProduct struct {
	ID                   int64    `xml:"id,attr"`
	Name                 string   `xml:"name"`
	URL                  string   `xml:"url"`
	SKU                  string   `xml:"sku,omitempty"`
	PriceCurrent         *float64 `xml:"price_current,omitempty"`
	PriceOriginal        *float64 `xml:"price_original,omitempty"`
	DiscountPercentage   *float64 `xml:"discount_percentage,omitempty"`
	InStock              bool     `xml:"in_stock"`
	PrescriptionRequired bool     `xml:"prescription_required"`
	Manufacturer         string   `xml:"manufacturer,omitempty"`
	Form                 string   `xml:"form,omitempty"`
	Category             string   `xml:"category,omitempty"`
	Images               []string `xml:"images>image,omitempty"`
}

// writeXML emits the catalog as a single XML document.
func (e *Exporter) writeXML(snap *snapshot) ([]string, error) {
	path, err := e.outPath(xmlDir, "catalog", snap.Stamp, "xml")
	if err != nil {
		return nil, &types.ExportError{Format: "xml", Err: err}
	}

	doc := xmlCatalog{Generated: snap.Stats.GeneratedAt.Format("2006-01-02T15:04:05Z07:00")}
	for _, c := range snap.Categories {
		doc.Categories = append(doc.Categories, xmlCategory{
			ID: c.ID, Name: c.Name, URL: c.URL, Parent: c.ParentURL, Source: string(c.Source),
		})
	}
	for _, b := range snap.Brands {
		doc.Brands = append(doc.Brands, xmlBrand{ID: b.ID, Name: b.Name, URL: b.URL})
	}
	for _, p := range snap.Products {
		doc.Products = append(doc.Products, xmlProduct{
			ID:                   p.ID,
			Name:                 p.Name,
			URL:                  p.URL,
			SKU:                  p.SKU,
			PriceCurrent:         p.PriceCurrent,
			PriceOriginal:        p.PriceOriginal,
			DiscountPercentage:   p.DiscountPercentage,
			InStock:              p.InStock,
			PrescriptionRequired: p.PrescriptionRequired,
			Manufacturer:         p.Manufacturer,
			Form:                 string(p.Form),
			Category:             p.CategoryName,
			Images:               p.Images,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &types.ExportError{Format: "xml", Err: err}
	}
	defer f.Close()

	if _, err := f.WriteString(xml.Header); err != nil {
		return nil, &types.ExportError{Format: "xml", Err: err}
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, &types.ExportError{Format: "xml", Err: err}
	}
	return []string{path}, nil
}

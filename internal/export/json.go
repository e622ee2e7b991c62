package export

import (
	"encoding/json"
	"os"

	"pharmacrawl/internal/storage"
	"pharmacrawl/internal/types"
)

// catalogDocument is the complete JSON export payload.
type catalogDocument struct {
	Stats      *storage.Stats        `json:"stats"`
	Categories []types.Category      `json:"categories"`
	Brands     []types.Brand         `json:"brands"`
	Products   []types.ProductDetail `json:"products"`
}

// writeJSON emits the full catalog as one pretty-printed document.
func (e *Exporter) writeJSON(snap *snapshot) ([]string, error) {
	path, err := e.outPath(jsonDir, "catalog", snap.Stamp, "json")
	if err != nil {
		return nil, &types.ExportError{Format: "json", Err: err}
	}

	doc := catalogDocument{
		Stats:      snap.Stats,
		Categories: snap.Categories,
		Brands:     snap.Brands,
		Products:   snap.Products,
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, &types.ExportError{Format: "json", Err: err}
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, &types.ExportError{Format: "json", Err: err}
	}
	return []string{path}, nil
}

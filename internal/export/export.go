package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/storage"
	"pharmacrawl/internal/types"
)

// Subdirectories under the output dir, one per format family.
const (
	csvDir    = "csv_exports"
	jsonDir   = "json_exports"
	xmlDir    = "xml_exports"
	excelDir  = "excel_exports"
	reportDir = "reports"
)

// Exporter writes the stored catalog out in flat formats. Every file
// is timestamped so successive runs never overwrite each other.
type Exporter struct {
	store  *storage.Store
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Exporter over an open store.
func New(store *storage.Store, cfg *config.Config, logger *slog.Logger) *Exporter {
	return &Exporter{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "export"),
	}
}

// snapshot is the catalog data shared by all format writers.
type snapshot struct {
	Categories []types.Category
	Products   []types.ProductDetail
	Brands     []types.Brand
	Stats      *storage.Stats
	Stamp      string
}

func (e *Exporter) load() (*snapshot, error) {
	cats, err := e.store.Categories()
	if err != nil {
		return nil, err
	}
	products, err := e.store.Products()
	if err != nil {
		return nil, err
	}
	for i := range products {
		imgs, err := e.store.Images(products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Images = imgs
	}
	brands, err := e.store.Brands()
	if err != nil {
		return nil, err
	}
	stats, err := e.store.ComputeStats()
	if err != nil {
		return nil, err
	}
	return &snapshot{
		Categories: cats,
		Products:   products,
		Brands:     brands,
		Stats:      stats,
		Stamp:      time.Now().Format("20060102_150405"),
	}, nil
}

// ExportAll cleans the database, then writes every configured format
// and returns the generated file paths. A failing format is logged
// and skipped; the first failure is returned after all formats have
// been attempted.
func (e *Exporter) ExportAll() ([]string, error) {
	if err := e.store.CleanDuplicates(); err != nil {
		return nil, err
	}

	snap, err := e.load()
	if err != nil {
		return nil, err
	}

	writers := map[string]func(*snapshot) ([]string, error){
		"csv":    e.writeCSV,
		"json":   e.writeJSON,
		"xml":    e.writeXML,
		"xlsx":   e.writeXLSX,
		"report": e.writeReport,
	}

	var paths []string
	var firstErr error
	for _, format := range e.cfg.Export.Formats {
		write, ok := writers[format]
		if !ok {
			e.logger.Warn("unknown export format", "format", format)
			continue
		}
		written, err := write(snap)
		if err != nil {
			e.logger.Error("export failed", "format", format, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		paths = append(paths, written...)
		e.logger.Info("export written", "format", format, "files", len(written))
	}
	return paths, firstErr
}

// outPath builds <output_dir>/<subdir>/<name>_<stamp>.<ext>, creating
// the subdirectory as needed.
func (e *Exporter) outPath(subdir, name, stamp, ext string) (string, error) {
	dir := filepath.Join(e.cfg.Storage.OutputDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", name, stamp, ext)), nil
}

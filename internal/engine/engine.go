package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/discovery"
	"pharmacrawl/internal/export"
	"pharmacrawl/internal/extractor"
	"pharmacrawl/internal/fetcher"
	"pharmacrawl/internal/parser"
	"pharmacrawl/internal/storage"
	"pharmacrawl/internal/types"
)

// Engine orchestrates a full catalog run: discovery, subcategory
// expansion, listing extraction, optional detail extraction, and
// export. Stages run sequentially; persistence failures are logged
// and the run continues.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger

	client     *fetcher.Client
	discoverer *discovery.Discoverer
	listing    *extractor.Listing
	detail     *extractor.Detail
	store      *storage.Store
	exporter   *export.Exporter

	checkpoint *Checkpoint
	resume     bool
}

// Summary reports what a run accomplished.
type Summary struct {
	Categories    int
	Subcategories int
	Products      int
	Details       int
	Duration      time.Duration
	Interrupted   bool
}

// New wires an Engine from configuration. The returned engine owns the
// fetch client and the store; Close releases both.
func New(cfg *config.Config, logger *slog.Logger, resume bool) (*Engine, error) {
	client, err := fetcher.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	cascade, err := parser.NewCascade(cfg, logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	store, err := storage.Open(filepath.Join(cfg.Storage.OutputDir, cfg.Storage.DatabaseFile), logger)
	if err != nil {
		client.Close()
		return nil, err
	}

	checkpoint := NewCheckpoint()
	if resume {
		checkpoint, err = LoadCheckpoint(cfg.Storage.OutputDir)
		if err != nil {
			client.Close()
			store.Close()
			return nil, err
		}
	}

	return &Engine{
		cfg:        cfg,
		logger:     logger.With("component", "engine"),
		client:     client,
		discoverer: discovery.New(client, cascade, cfg, logger),
		listing:    extractor.NewListing(client, cascade, cfg, logger),
		detail:     extractor.NewDetail(client, cascade, cfg, logger),
		store:      store,
		exporter:   export.New(store, cfg, logger),
		checkpoint: checkpoint,
		resume:     resume,
	}, nil
}

// Close releases the fetch client and the store.
func (e *Engine) Close() error {
	var firstErr error
	if err := e.client.Close(); err != nil {
		firstErr = err
	}
	if err := e.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Run executes the full pipeline. On interruption the checkpoint is
// saved and ErrInterrupted wraps the context error so callers can
// distinguish a cut-short run from a failed one.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	e.logger.Info("run starting",
		"base_url", e.cfg.Site.BaseURL,
		"resume", e.resume,
		"detail_extraction", e.cfg.Engine.DetailExtraction,
	)

	categories, err := e.discoverCategories(ctx, summary)
	if err != nil {
		return e.finish(ctx, summary, start, err)
	}

	products, err := e.extractListings(ctx, categories, summary)
	if err != nil {
		return e.finish(ctx, summary, start, err)
	}

	if e.cfg.Engine.DetailExtraction {
		if err := e.extractDetails(ctx, products, summary); err != nil {
			return e.finish(ctx, summary, start, err)
		}
	}

	if paths, err := e.exporter.ExportAll(); err != nil {
		e.logger.Error("export failed", "error", err)
	} else {
		e.logger.Info("exports written", "files", len(paths))
	}

	if err := Clear(e.cfg.Storage.OutputDir); err != nil {
		e.logger.Warn("checkpoint cleanup failed", "error", err)
	}
	return e.finish(ctx, summary, start, nil)
}

// discoverCategories runs discovery and subcategory expansion,
// persisting every category as it is found.
func (e *Engine) discoverCategories(ctx context.Context, summary *Summary) ([]types.Category, error) {
	categories, err := e.discoverer.DiscoverAll(ctx)
	if err != nil {
		return categories, err
	}
	summary.Categories = len(categories)

	for i := range categories {
		if _, err := e.store.UpsertCategory(&categories[i]); err != nil {
			e.logger.Warn("category not persisted", "url", categories[i].URL, "error", err)
		}
	}

	var all []types.Category
	all = append(all, categories...)
	for _, parent := range categories {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		// A-Z index pages list products directly, never subcategories.
		if parent.Source == types.SourceAZ {
			continue
		}
		subs := e.discoverer.DiscoverSubcategories(ctx, parent)
		for i := range subs {
			if _, err := e.store.UpsertCategory(&subs[i]); err != nil {
				e.logger.Warn("subcategory not persisted", "url", subs[i].URL, "error", err)
			}
		}
		summary.Subcategories += len(subs)
		all = append(all, subs...)
	}

	e.logger.Info("categories ready",
		"top_level", summary.Categories, "subcategories", summary.Subcategories)
	return all, nil
}

// extractListings walks every category's listing pages, persisting
// product summaries and checkpointing after each finished category.
func (e *Engine) extractListings(ctx context.Context, categories []types.Category, summary *Summary) ([]types.Product, error) {
	seen := make(map[string]bool)
	var all []types.Product

	for _, cat := range categories {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		if e.checkpoint.Done(cat.URL) {
			e.logger.Debug("category already done, skipping", "url", cat.URL)
			continue
		}

		products, err := e.listing.ExtractCategory(ctx, cat)
		for _, p := range products {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			all = append(all, p)

			prod := p
			if _, perr := e.store.UpsertProduct(&prod); perr != nil {
				e.logger.Warn("product not persisted", "url", p.URL, "error", perr)
			}
		}
		if err != nil {
			return all, err
		}

		e.checkpoint.MarkDone(cat.URL)
		e.checkpoint.Products = len(all)
		if err := e.checkpoint.Save(e.cfg.Storage.OutputDir); err != nil {
			e.logger.Warn("checkpoint not saved", "error", err)
		}
	}

	summary.Products = len(all)
	e.logger.Info("listings extracted", "products", len(all))
	return all, nil
}

// extractDetails runs batched detail extraction over the medicine
// subset of the catalog and persists the full records.
func (e *Engine) extractDetails(ctx context.Context, products []types.Product, summary *Summary) error {
	medicines := extractor.FilterMedicines(products)
	e.logger.Info("detail extraction scope",
		"products", len(products), "medicines", len(medicines))

	details, err := e.detail.ExtractBatch(ctx, medicines)
	for i := range details {
		if _, perr := e.store.UpsertProductDetail(&details[i]); perr != nil {
			e.logger.Warn("detail not persisted", "url", details[i].URL, "error", perr)
		}
	}
	summary.Details = len(details)
	e.logger.Info("details extracted", "details", len(details))
	return err
}

// finish saves the checkpoint on interruption and assembles the final
// summary and error.
func (e *Engine) finish(ctx context.Context, summary *Summary, start time.Time, runErr error) (*Summary, error) {
	summary.Duration = time.Since(start)

	interrupted := errors.Is(runErr, context.Canceled) || ctx.Err() != nil
	if interrupted {
		summary.Interrupted = true
		if err := e.checkpoint.Save(e.cfg.Storage.OutputDir); err != nil {
			e.logger.Warn("checkpoint not saved on interrupt", "error", err)
		}
		e.logger.Warn("run interrupted, checkpoint saved",
			"duration", summary.Duration, "products", summary.Products)
		if runErr == nil {
			return summary, types.ErrInterrupted
		}
		return summary, fmt.Errorf("%w: %v", types.ErrInterrupted, runErr)
	}

	e.logger.Info("run complete",
		"categories", summary.Categories,
		"subcategories", summary.Subcategories,
		"products", summary.Products,
		"details", summary.Details,
		"duration", summary.Duration,
	)
	return summary, runErr
}

// Export rebuilds all export files from the stored catalog without
// scraping and returns the generated paths.
func (e *Engine) Export() ([]string, error) { return e.exporter.ExportAll() }

// DiscoverOnly runs category discovery without listing extraction and
// returns what was found.
func (e *Engine) DiscoverOnly(ctx context.Context) ([]types.Category, error) {
	summary := &Summary{}
	return e.discoverCategories(ctx, summary)
}

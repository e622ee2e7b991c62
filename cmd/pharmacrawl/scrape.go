package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pharmacrawl/internal/engine"
	"pharmacrawl/internal/types"
)

var scrapeFlags struct {
	outputDir   string
	delay       time.Duration
	maxProducts int
	maxPages    int
	noDetail    bool
	resume      bool
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a full catalog scrape",
	Long: `Discovers categories, walks every listing page, optionally visits
each product's detail page, and exports the stored catalog. A run
interrupted with Ctrl-C saves a checkpoint; rerun with --resume to
skip already-finished categories.`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&scrapeFlags.outputDir, "output-dir", "", "output directory (overrides config)")
	f.DurationVar(&scrapeFlags.delay, "delay", 0, "delay between requests (overrides config)")
	f.IntVar(&scrapeFlags.maxProducts, "max-products", 0, "cap products per category, 0 for no cap")
	f.IntVar(&scrapeFlags.maxPages, "max-pages", 0, "cap listing pages per category, 0 for no cap")
	f.BoolVar(&scrapeFlags.noDetail, "no-detail", false, "skip product detail pages")
	f.BoolVar(&scrapeFlags.resume, "resume", false, "resume from the last checkpoint")
}

func runScrape(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if scrapeFlags.outputDir != "" {
		cfg.Storage.OutputDir = scrapeFlags.outputDir
	}
	if scrapeFlags.delay > 0 {
		cfg.Engine.Delay = scrapeFlags.delay
	}
	if scrapeFlags.maxProducts > 0 {
		cfg.Engine.MaxPerCategory = scrapeFlags.maxProducts
	}
	if scrapeFlags.maxPages > 0 {
		cfg.Engine.MaxPages = scrapeFlags.maxPages
	}
	if scrapeFlags.noDetail {
		cfg.Engine.DetailExtraction = false
	}

	logger := setupLogger(cfg)

	eng, err := engine.New(cfg, logger, scrapeFlags.resume)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summary, err := eng.Run(ctx)
	if err != nil {
		if errors.Is(err, types.ErrInterrupted) {
			fmt.Printf("Interrupted after %s: %d products saved. Rerun with --resume to continue.\n",
				summary.Duration.Round(time.Second), summary.Products)
		}
		return err
	}

	fmt.Printf("Done in %s: %d categories, %d subcategories, %d products, %d details.\n",
		summary.Duration.Round(time.Second),
		summary.Categories, summary.Subcategories, summary.Products, summary.Details)
	return nil
}

package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pharmacrawl/internal/engine"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Discover and list catalog categories without scraping products",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := setupLogger(cfg)

		eng, err := engine.New(cfg, logger, false)
		if err != nil {
			return err
		}
		defer eng.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cats, err := eng.DiscoverOnly(ctx)
		if err != nil {
			return err
		}

		for _, c := range cats {
			indent := ""
			if c.ParentURL != "" {
				indent = "  "
			}
			fmt.Printf("%s%-50s %s [%s]\n", indent, c.Name, c.URL, c.Source)
		}
		fmt.Printf("\n%d categories found.\n", len(cats))
		return nil
	},
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pharmacrawl/internal/engine"
)

var exportFormats []string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-export the stored catalog without scraping",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if len(exportFormats) > 0 {
			cfg.Export.Formats = exportFormats
		}
		logger := setupLogger(cfg)

		eng, err := engine.New(cfg, logger, false)
		if err != nil {
			return err
		}
		defer eng.Close()

		paths, err := eng.Export()
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		fmt.Printf("Export complete: %d files under %s\n", len(paths), cfg.Storage.OutputDir)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportFormats, "format", nil,
		"formats to write (csv, json, xml, xlsx, report); default from config")
}

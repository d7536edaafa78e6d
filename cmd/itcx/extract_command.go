package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"itcx/internal/catalog"
	"itcx/internal/config"
	"itcx/internal/extract"
	"itcx/internal/logging"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var compression string
	var overwrite bool
	var noCatalog bool

	cmd := &cobra.Command{
		Use:   "extract <path>...",
		Short: "Extract artwork from .itc files or directories of them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				expanded, err := config.ExpandPath(outputDir)
				if err != nil {
					return fmt.Errorf("resolve output directory: %w", err)
				}
				cfg.Paths.OutputDir = expanded
			}
			if compression != "" {
				cfg.Extract.Compression = compression
			}
			if overwrite {
				cfg.Extract.OverwriteExisting = true
			}

			logger := logging.NewFromConfig(cfg, cmd.ErrOrStderr())

			var store *catalog.Store
			if cfg.Catalog.Enabled && !noCatalog {
				store, err = catalog.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			extractor, err := extract.New(cfg, logger, store)
			if err != nil {
				return err
			}

			extracted, skipped := 0, 0
			for _, arg := range args {
				results, err := extractor.Path(cmd.Context(), arg)
				if err != nil {
					return err
				}
				for _, result := range results {
					if result.Skipped {
						skipped++
						continue
					}
					extracted++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%dx%d\t%s\n",
						result.SourcePath, result.Format, result.Width, result.Height, result.OutputPath)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d image(s), skipped %d\n", extracted, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory to write images into")
	cmd.Flags().StringVar(&compression, "compression", "", "PNG deflate level for ARGB artwork (none, fast, default, best)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace output files that already exist")
	cmd.Flags().BoolVar(&noCatalog, "no-catalog", false, "Do not record extracted images in the catalog")

	return cmd
}

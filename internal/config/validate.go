package config

import (
	"fmt"

	"itcx/internal/pngenc"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateExtract(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Catalog.Enabled && c.Paths.CatalogPath == "" {
		return fmt.Errorf("paths.catalog_path is required when catalog.enabled is true")
	}
	return nil
}

func (c *Config) validateExtract() error {
	if _, err := pngenc.LevelByName(c.Extract.Compression); err != nil {
		return fmt.Errorf("extract.compression: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (use console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

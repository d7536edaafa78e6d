package config

const (
	defaultOutputDir   = "."
	defaultLogDir      = "~/.local/share/itcx/logs"
	defaultCatalogPath = "~/.local/share/itcx/catalog.db"
	defaultCompression = "none"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
			CatalogPath: defaultCatalogPath,
		},
		Extract: Extract{
			Compression: defaultCompression,
		},
		Catalog: Catalog{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

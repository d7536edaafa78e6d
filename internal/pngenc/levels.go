package pngenc

import "fmt"

// LevelByName maps the configuration names for compression levels to deflate
// levels. "none" is the historical default for extracted artwork.
func LevelByName(name string) (int, error) {
	switch name {
	case "", "none":
		return NoCompression, nil
	case "fast":
		return BestSpeed, nil
	case "default":
		return DefaultCompression, nil
	case "best":
		return BestCompression, nil
	default:
		return 0, fmt.Errorf("pngenc: unknown compression level %q (use none, fast, default, or best)", name)
	}
}

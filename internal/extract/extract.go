package extract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"itcx/internal/catalog"
	"itcx/internal/config"
	"itcx/internal/itc"
	"itcx/internal/pngenc"
)

// Result describes one image handled during extraction.
type Result struct {
	SourcePath  string
	ItemIndex   int
	Format      itc.Format
	Width       uint32
	Height      uint32
	OutputPath  string
	OutputBytes int64
	Skipped     bool
}

// Extractor writes the images found in .itc files to an output directory.
type Extractor struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *catalog.Store
	level  int
}

// New builds an extractor. store may be nil when the catalog is disabled.
func New(cfg *config.Config, logger *slog.Logger, store *catalog.Store) (*Extractor, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("extract: config and logger are required")
	}
	level, err := pngenc.LevelByName(cfg.Extract.Compression)
	if err != nil {
		return nil, err
	}
	return &Extractor{cfg: cfg, logger: logger, store: store, level: level}, nil
}

// Path extracts one .itc file, or every .itc file under a directory. Any
// parse or write failure aborts the run; partial outputs from the failing
// file are not cleaned up.
func (e *Extractor) Path(ctx context.Context, path string) ([]Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return e.File(ctx, path)
	}

	var results []Result
	err = filepath.WalkDir(path, func(p string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(p), ".itc") {
			return nil
		}
		fileResults, err := e.File(ctx, p)
		if err != nil {
			return err
		}
		results = append(results, fileResults...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// File extracts every image from a single .itc file.
func (e *Extractor) File(ctx context.Context, path string) ([]Result, error) {
	if err := os.MkdirAll(e.cfg.Paths.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	source, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	reader := itc.NewReader(source)
	defer reader.Close()

	images, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	e.logger.Debug("scanned itc file", "path", path, "images", len(images))

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	results := make([]Result, 0, len(images))
	for i, img := range images {
		index := i + 1
		name := fmt.Sprintf("%s-%03d.%s", stem, index, img.Format.Extension())
		outPath := filepath.Join(e.cfg.Paths.OutputDir, name)

		result := Result{
			SourcePath: path,
			ItemIndex:  index,
			Format:     img.Format,
			Width:      img.Width,
			Height:     img.Height,
			OutputPath: outPath,
		}

		if !e.cfg.Extract.OverwriteExisting {
			if _, err := os.Stat(outPath); err == nil {
				e.logger.Warn("output exists, skipping", "path", outPath)
				result.Skipped = true
				results = append(results, result)
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("check output %s: %w", outPath, err)
			}
		}

		written, err := e.writeImage(outPath, img)
		if err != nil {
			return nil, err
		}
		result.OutputBytes = written
		results = append(results, result)

		if e.store != nil {
			_, err := e.store.Record(ctx, catalog.Entry{
				SourcePath:  path,
				ItemIndex:   index,
				Format:      img.Format.String(),
				Width:       img.Width,
				Height:      img.Height,
				OutputPath:  outPath,
				OutputBytes: written,
			})
			if err != nil {
				return nil, fmt.Errorf("record in catalog: %w", err)
			}
		}

		e.logger.Info("extracted image",
			"source", path,
			"index", index,
			"format", img.Format.String(),
			"dimensions", fmt.Sprintf("%dx%d", img.Width, img.Height),
			"output", outPath,
			"bytes", written,
		)
	}

	return results, nil
}

// writeImage writes one record through a uniquely named temp file in the
// target directory and renames it into place, so readers never observe a
// half-written image.
func (e *Extractor) writeImage(outPath string, img *itc.Image) (int64, error) {
	dir := filepath.Dir(outPath)
	tmpPath := filepath.Join(dir, "."+filepath.Base(outPath)+"."+uuid.NewString()+".tmp")

	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create temp output: %w", err)
	}

	writeErr := func() error {
		if img.Format == itc.FormatARGB {
			return pngenc.EncodeLevel(tmp, img, e.level)
		}
		_, err := img.WriteTo(tmp)
		return err
	}()
	if writeErr == nil {
		writeErr = tmp.Sync()
	}
	if closeErr := tmp.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("write %s: %w", outPath, writeErr)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("stat temp output: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("finalize %s: %w", outPath, err)
	}
	return info.Size(), nil
}

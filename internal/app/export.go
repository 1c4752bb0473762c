package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/hypoviz/internal/model"
	"github.com/verte-zerg/hypoviz/internal/surface"
)

const (
	// DefaultExportWidth and DefaultExportHeight size PNG exports in pixels.
	DefaultExportWidth  = 900
	DefaultExportHeight = 700
	exportBorder        = 60
)

// RenderPNG draws params onto a fresh raster of the given size and encodes it.
func RenderPNG(w io.Writer, params model.Params, width, height int, log *logrus.Logger) error {
	raster, err := surface.NewRaster(width, height)
	if err != nil {
		return err
	}
	s, err := NewSession(Layout{
		Width:  float64(width),
		Height: float64(height),
		Border: exportBorder,
	}, RasterThemes(), params, log)
	if err != nil {
		return err
	}
	s.Draw(raster)
	return raster.EncodePNG(w)
}

// ExportPNG writes a timestamped PNG of params into dir and returns its path.
func ExportPNG(dir string, params model.Params, width, height int, log *logrus.Logger) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("hypoviz-%s.png", time.Now().Format("20060102-150405.000")))
	if err := WritePNG(path, params, width, height, log); err != nil {
		return "", err
	}
	return path, nil
}

// WritePNG renders params into the file at path. Nothing is written when
// rendering fails, so an existing file survives a rejected export.
func WritePNG(path string, params model.Params, width, height int, log *logrus.Logger) error {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, params, width, height, log); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if log != nil {
		log.WithField("path", path).Info("exported png")
	}
	return nil
}

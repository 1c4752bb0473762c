package app

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/hypoviz/internal/model"
)

func TestRenderPNGSize(t *testing.T) {
	p := model.DefaultParams()
	p.ShowAlt = true
	p.ShowPower = true
	p.AltMean = 2
	var buf bytes.Buffer
	if err := RenderPNG(&buf, p, 320, 240, nil); err != nil {
		t.Fatalf("render png: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestRenderPNGRejectsBadParams(t *testing.T) {
	p := model.DefaultParams()
	p.StdDev = 0
	var buf bytes.Buffer
	if err := RenderPNG(&buf, p, 100, 100, nil); err == nil {
		t.Fatalf("expected error for zero stddev")
	}
}

func TestExportPNGWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := ExportPNG(dir, model.DefaultParams(), 200, 160, nil)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "hypoviz-") || filepath.Ext(path) != ".png" {
		t.Fatalf("unexpected export path %q", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Fatalf("expected non-empty png")
	}
}

func TestWritePNGLeavesNoFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.png")
	p := model.DefaultParams()
	p.StdDev = -1
	if err := WritePNG(path, p, 100, 100, nil); err == nil {
		t.Fatalf("expected error for negative stddev")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file after rejected render, stat err=%v", err)
	}
}

func TestWritePNGKeepsExistingFileOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curves.png")
	if err := os.WriteFile(path, []byte("previous"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	p := model.DefaultParams()
	p.StdDev = 0
	if err := WritePNG(path, p, 100, 100, nil); err == nil {
		t.Fatalf("expected error for zero stddev")
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "previous" {
		t.Fatalf("existing file was overwritten: %q", got)
	}
}

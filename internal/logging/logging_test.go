package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "hypoviz.log")
	logger, closer, err := New(Options{Level: "debug", File: path})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.WithField("stddev", 1.5).Debug("stddev updated")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "stddev updated") || !strings.Contains(out, "stddev=1.5") {
		t.Fatalf("unexpected log contents: %s", out)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	logger, closer, err := New(Options{Level: "chatty"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	defer closer.Close()
	if logger.GetLevel() != logrus.InfoLevel {
		t.Fatalf("expected info level, got %v", logger.GetLevel())
	}
}

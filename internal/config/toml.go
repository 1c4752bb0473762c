// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Curves   CurvesConfig   `toml:"curves"`
	Simulate SimulateConfig `toml:"simulate"`
	Log      LogConfig      `toml:"log"`
}

// CurvesConfig maps the initial curve parameters and toggles.
type CurvesConfig struct {
	StdDev     *float64 `toml:"stddev"`
	Alpha      *float64 `toml:"alpha"`
	AltMean    *float64 `toml:"alt-mean"`
	ShowAlt    *bool    `toml:"show-alt"`
	ShowTypeI  *bool    `toml:"type1"`
	ShowTypeII *bool    `toml:"type2"`
	ShowPower  *bool    `toml:"power"`
	ShowLabels *bool    `toml:"labels"`
}

// SimulateConfig maps Monte Carlo defaults.
type SimulateConfig struct {
	Trials *int   `toml:"trials"`
	Seed   *int64 `toml:"seed"`
}

// LogConfig maps diagnostic logging settings.
type LogConfig struct {
	Level      *string `toml:"level"`
	File       *string `toml:"file"`
	MaxSizeMB  *int    `toml:"max-size-mb"`
	MaxBackups *int    `toml:"max-backups"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Package config holds the designer's settings: box parameters, output
// size, server address and logging. Settings load from a JSON5 file and
// are overridden by command-line flags.
package config

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/titanous/json5"
)

// Config holds all configurable settings.
type Config struct {
	Params Params `json:"params"`

	// Output
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
	Name        string `json:"name"`
	OutDir      string `json:"outDir"`

	// Assets and scripts
	AssetDir string `json:"assetDir"`
	Script   string `json:"script"`

	// STL meshing resolution along the longest axis
	MeshCells int `json:"meshCells"`

	// Server and logging
	Listen   string `json:"listen"`
	LogLevel string `json:"logLevel"`
}

// Default returns the settings used when nothing else is given.
func Default() Config {
	return Config{
		Params:      DefaultParams(),
		ImageWidth:  1024,
		ImageHeight: 768,
		AssetDir:    "assets",
		MeshCells:   200,
		Listen:      ":8080",
		LogLevel:    "info",
	}
}

// Load reads a JSON5 config file over the defaults. Fields not set in
// the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Level returns the configured log level, or info when it is unknown.
func (c Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

// Resolve applies flags over the config. Flags take priority when
// non-zero/non-empty; remaining zero sizes fall back to defaults.
func (c *Config) Resolve(flags Flags) {
	p := &c.Params
	if flags.Length > 0 {
		p.Length = flags.Length
	}
	if flags.Width > 0 {
		p.Width = flags.Width
	}
	if flags.Height > 0 {
		p.Height = flags.Height
	}
	if flags.Thickness > 0 {
		p.Thickness = flags.Thickness
	}
	if flags.FaceKind != "" {
		p.FaceKind = FaceKind(flags.FaceKind)
	}
	if flags.Color != "" {
		p.Color = flags.Color
	}
	if flags.Texture != "" {
		p.Texture = flags.Texture
	}
	if flags.Material != "" {
		p.Material = flags.Material
	}
	if flags.Format != "" {
		p.Format = flags.Format
	}
	if flags.View != "" {
		p.View = flags.View
	}
	if flags.PreviewLid {
		p.PreviewLid = true
	}

	if flags.ImageWidth > 0 {
		c.ImageWidth = flags.ImageWidth
	}
	if flags.ImageHeight > 0 {
		c.ImageHeight = flags.ImageHeight
	}
	if flags.Name != "" {
		c.Name = flags.Name
	}
	if flags.OutDir != "" {
		c.OutDir = flags.OutDir
	}
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.Script != "" {
		c.Script = flags.Script
	}
	if flags.Listen != "" {
		c.Listen = flags.Listen
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Defaults for output settings
	def := Default()
	if c.ImageWidth <= 0 {
		c.ImageWidth = def.ImageWidth
	}
	if c.ImageHeight <= 0 {
		c.ImageHeight = def.ImageHeight
	}
	if c.MeshCells <= 0 {
		c.MeshCells = def.MeshCells
	}
	if c.Listen == "" {
		c.Listen = def.Listen
	}
}

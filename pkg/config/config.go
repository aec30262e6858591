// Package config loads edgebundle configuration files.
//
// A file has up to four sections. Every key is optional; missing keys keep
// their defaults:
//
//	[bundle]
//	subdivisions = 12
//	compatibility_threshold = 0.5
//	curve_type = "catmull-rom"
//
//	[render]
//	formats = ["svg", "json"]
//	width = 1200
//
//	[cache]
//	redis = "redis://localhost:6379/0"
//	ttl = "48h"
//
//	[server]
//	addr = ":8080"
//	timeout = "30s"
//	max_control_points = 2000000
//
// TOML (.toml) and YAML (.yaml, .yml) are supported; the format is chosen by
// file extension.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/edgebundle/pkg/bundle"
	"github.com/matzehuels/edgebundle/pkg/errors"
)

// Supported file formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// File is a decoded configuration file.
type File struct {
	Bundle bundle.Config `toml:"bundle" yaml:"bundle"`
	Render Render        `toml:"render" yaml:"render"`
	Cache  Cache         `toml:"cache" yaml:"cache"`
	Server Server        `toml:"server" yaml:"server"`
}

// Render holds output settings.
type Render struct {
	Formats     []string `toml:"formats" yaml:"formats"`
	Width       float64  `toml:"width" yaml:"width"`
	Height      float64  `toml:"height" yaml:"height"`
	Margin      float64  `toml:"margin" yaml:"margin"`
	Background  string   `toml:"background" yaml:"background"`
	Stroke      string   `toml:"stroke" yaml:"stroke"`
	StrokeWidth float64  `toml:"stroke_width" yaml:"stroke_width"`
	Opacity     float64  `toml:"opacity" yaml:"opacity"`
}

// Cache holds result cache settings.
type Cache struct {
	Disabled bool   `toml:"disabled" yaml:"disabled"`
	Dir      string `toml:"dir" yaml:"dir"`
	Redis    string `toml:"redis" yaml:"redis"`
	TTL      string `toml:"ttl" yaml:"ttl"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr    string `toml:"addr" yaml:"addr"`
	Timeout string `toml:"timeout" yaml:"timeout"`
	MaxBody int64  `toml:"max_body" yaml:"max_body"`

	// MaxControlPoints caps the control points one request may allocate
	// (edges times subdivisions, roughly).
	MaxControlPoints int `toml:"max_control_points" yaml:"max_control_points"`
}

// Defaults for settings outside the bundling config.
const (
	DefaultAddr    = ":8080"
	DefaultTimeout = 30 * time.Second
	DefaultMaxBody = 8 << 20

	DefaultMaxControlPoints = 2_000_000
)

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Bundle: bundle.DefaultConfig(),
		Server: Server{Addr: DefaultAddr, MaxBody: DefaultMaxBody, MaxControlPoints: DefaultMaxControlPoints},
	}
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Decode parses a configuration in the given format over the defaults and
// validates it.
func Decode(r io.Reader, format string) (*File, error) {
	f := Default()
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(f)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown key %q", undec[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(f); err != nil && err != io.EOF {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported config format %q", format)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

// FormatFromPath maps a file extension to a config format.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unsupported config file %q (use .toml, .yaml or .yml)", filepath.Base(path))
}

// Validate checks every section.
func (f *File) Validate() error {
	if err := f.Bundle.Validate(); err != nil {
		return err
	}
	if f.Cache.Redis != "" {
		if err := errors.ValidateRedisURL(f.Cache.Redis); err != nil {
			return err
		}
	}
	if _, err := f.Cache.TTLDuration(); err != nil {
		return err
	}
	if _, err := f.Server.TimeoutDuration(); err != nil {
		return err
	}
	if f.Server.MaxBody < 0 || f.Server.MaxControlPoints < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server limits cannot be negative")
	}
	if f.Render.Width < 0 || f.Render.Height < 0 || f.Render.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render dimensions cannot be negative")
	}
	return nil
}

// TTLDuration parses the cache TTL. Empty means the cache default.
func (c Cache) TTLDuration() (time.Duration, error) {
	return parseDuration("cache.ttl", c.TTL)
}

// TimeoutDuration parses the request timeout, defaulting to DefaultTimeout.
func (s Server) TimeoutDuration() (time.Duration, error) {
	d, err := parseDuration("server.timeout", s.Timeout)
	if err == nil && d == 0 {
		d = DefaultTimeout
	}
	return d, err
}

func parseDuration(key, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.New(errors.ErrCodeInvalidConfig, "%s: invalid duration %q", key, s)
	}
	return d, nil
}

// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the oak tool's configuration.
//
// Configuration comes from, in increasing order of precedence: built-in
// defaults, a .oak.yaml file found by searching upward from the working
// directory, OAK_* environment variables, and command-line flags (applied by
// the caller).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileNames are the names of configuration files, in order of preference.
var FileNames = []string{".oak.yaml", ".oak.yml"}

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the tool's configuration.
type Config struct {
	// Nesting limit for the parser. Zero means the parser's default.
	MaxDepth int `yaml:"max_depth"`
	// Whether to intern structurally equal nodes.
	Interning bool `yaml:"interning"`
	// How many documents to parse at once. Zero means one per CPU.
	Parallelism int `yaml:"parallelism"`
	// One of "auto", "always" or "never".
	Color string `yaml:"color"`
	// One of "debug", "info", "warn" or "error".
	LogLevel string `yaml:"log_level"`

	Calc Calc `yaml:"calc"`
}

// Calc configures the calc language.
type Calc struct {
	// Line comment prefix. Empty means "//".
	CommentPrefix string `yaml:"comment_prefix"`
	// Maps words to the keyword token they lex as, by token name, such as
	// {"def": "Let"}. Empty means the standard keywords.
	Keywords map[string]string `yaml:"keywords"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Color:    ColorAuto,
		LogLevel: "warn",
	}
}

// Workers returns the effective parallelism.
func (c Config) Workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

// Validate checks that every field has an allowed value.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.Parallelism < 0 {
		errs = append(errs, fmt.Errorf("parallelism must not be negative, got %d", c.Parallelism))
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color must be one of auto, always, never; got %q", c.Color))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// Decode reads YAML configuration from r on top of the defaults. Unknown
// keys are an error.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse YAML: %w", err)
	}
	return cfg, cfg.Validate()
}

// Load reads a configuration file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find searches dir and its parents for a configuration file, stopping at the
// root of a version control checkout. Returns "" if there is none.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("find config: %w", err)
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		if isRepoRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isRepoRoot(dir string) bool {
	for _, marker := range []string{".git", ".hg", ".jj"} {
		if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}

// Discover finds and loads the configuration for dir, falling back to the
// defaults if there is no configuration file. Environment overrides are
// applied either way. Also returns the path that was loaded, if any.
func Discover(dir string) (Config, string, error) {
	path, err := Find(dir)
	if err != nil {
		return Default(), "", err
	}

	cfg := Default()
	if path != "" {
		if cfg, err = Load(path); err != nil {
			return cfg, path, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

// EnvPrefix prefixes the environment variables that override configuration.
const EnvPrefix = "OAK_"

// ApplyEnv applies overrides from environment variables, as looked up by
// lookup, such as OAK_MAX_DEPTH=200.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := map[string]*int{
		"MAX_DEPTH":   &c.MaxDepth,
		"PARALLELISM": &c.Parallelism,
	}
	for name, field := range ints {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*field = n
		}
	}

	if v, ok := lookup(EnvPrefix + "INTERNING"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sINTERNING: %w", EnvPrefix, err)
		}
		c.Interning = b
	}

	strs := map[string]*string{
		"COLOR":     &c.Color,
		"LOG_LEVEL": &c.LogLevel,
	}
	for name, field := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*field = v
		}
	}
	return c.Validate()
}

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

package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/oak/internal/config"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	cfg, err := config.Decode(strings.NewReader(`
max_depth: 200
interning: true
parallelism: 4
color: never
log_level: debug
calc:
  comment_prefix: "#"
  keywords:
    def: Let
`))
	require.NoError(t, err)
	assert.Equal(t, config.Config{
		MaxDepth:    200,
		Interning:   true,
		Parallelism: 4,
		Color:       config.ColorNever,
		LogLevel:    "debug",
		Calc: config.Calc{
			CommentPrefix: "#",
			Keywords:      map[string]string{"def": "Let"},
		},
	}, cfg)
	assert.Equal(t, 4, cfg.Workers())

	cfg, err = config.Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Positive(t, cfg.Workers())
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct{ yaml, want string }{
		{"colour: never", "field colour not found"},
		{"max_depth: deep", "parse YAML"},
		{"max_depth: -1", "max_depth must not be negative"},
		{"color: sometimes", "color must be one of"},
		{"log_level: loud", "log_level must be one of"},
		{"parallelism: -2\ncolor: x", "parallelism must not be negative"},
	}
	for _, tt := range tests {
		_, err := config.Decode(strings.NewReader(tt.yaml))
		require.Error(t, err, tt.yaml)
		assert.Contains(t, err.Error(), tt.want, tt.yaml)
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := config.Find(nested)
	require.NoError(t, err)
	assert.Empty(t, path)

	want := filepath.Join(root, "a", ".oak.yml")
	require.NoError(t, os.WriteFile(want, []byte("max_depth: 50\n"), 0o644))
	path, err = config.Find(nested)
	require.NoError(t, err)
	assert.Equal(t, want, path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.MaxDepth)

	_, err = config.Load(filepath.Join(root, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"OAK_MAX_DEPTH":   "64",
		"OAK_INTERNING":   "true",
		"OAK_COLOR":       "always",
		"OAK_LOG_LEVEL":   "error",
		"OAK_PARALLELISM": "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := config.Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 64, cfg.MaxDepth)
	assert.True(t, cfg.Interning)
	assert.Equal(t, config.ColorAlways, cfg.Color)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, 0, cfg.Parallelism)

	env["OAK_MAX_DEPTH"] = "lots"
	assert.ErrorContains(t, cfg.ApplyEnv(lookup), "OAK_MAX_DEPTH")
}

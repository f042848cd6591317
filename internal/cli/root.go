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

// Package cli provides the commands of the oak tool, which inspects how the
// calc language is lexed, parsed and evaluated.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bufbuild/oak/internal/calc"
	"github.com/bufbuild/oak/internal/config"
	"github.com/bufbuild/oak/internal/logging"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/workspace"
)

// ErrDiagnostics is returned by commands that found errors in their input.
// The errors themselves have already been printed.
var ErrDiagnostics = errors.New("input has errors")

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type snapshot = workspace.Snapshot[calc.Token, calc.Element]

// app is the state shared by every command, set up before any of them run.
type app struct {
	cfg  config.Config
	path string // The configuration file, if any.
	log  *log.Logger
	lang *calc.Language

	stdin io.Reader
	env   func(string) (string, bool)
}

// flags are the global flags, which override the configuration file.
type flags struct {
	config      string
	color       string
	logLevel    string
	maxDepth    int
	interning   bool
	parallelism int
}

// NewRootCommand creates the root oak command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	return newRootCommand(info, &app{stdin: os.Stdin, env: os.LookupEnv})
}

func newRootCommand(info BuildInfo, a *app) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:   "oak",
		Short: "Inspect incremental parses of calc programs",
		Long: `oak lexes, parses and evaluates programs in calc, a small expression
language, and shows the results: token streams, syntax trees, diagnostics
and highlighted source.

Settings are read from the nearest .oak.yaml, then from OAK_* environment
variables, then from flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, f)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.config, "config", "", "path to config file")
	pf.StringVar(&f.color, "color", config.ColorAuto, "colorize output: auto, always, never")
	pf.StringVar(&f.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.IntVar(&f.maxDepth, "max-depth", 0, "nesting limit for the parser (0 for the default)")
	pf.BoolVar(&f.interning, "interning", false, "share structurally equal subtrees")
	pf.IntVar(&f.parallelism, "parallelism", 0, "documents to parse at once (0 for one per CPU)")

	root.AddCommand(
		newTokensCommand(a),
		newTreeCommand(a),
		newCheckCommand(a),
		newHighlightCommand(a),
		newEvalCommand(a),
		newConfigCommand(a),
		newVersionCommand(info),
	)
	return root
}

// setup loads configuration and builds the language.
func (a *app) setup(cmd *cobra.Command, f flags) error {
	var err error
	if f.config != "" {
		a.cfg, err = config.Load(f.config)
		a.path = f.config
	} else {
		var dir string
		if dir, err = os.Getwd(); err == nil {
			a.cfg, a.path, err = config.Discover(dir)
		}
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := a.cfg.ApplyEnv(a.env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}

	set := cmd.Flags().Changed
	if set("color") {
		a.cfg.Color = f.color
	}
	if set("log-level") {
		a.cfg.LogLevel = f.logLevel
	}
	if set("max-depth") {
		a.cfg.MaxDepth = f.maxDepth
	}
	if set("interning") {
		a.cfg.Interning = f.interning
	}
	if set("parallelism") {
		a.cfg.Parallelism = f.parallelism
	}
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.log = logging.NewWriter(cmd.ErrOrStderr(), a.cfg.LogLevel)
	logging.SetDefault(a.log)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.log))
	if a.path != "" {
		a.log.Debug("loaded configuration", logging.FieldPath, a.path)
	}

	opts, err := languageOptions(a.cfg)
	if err != nil {
		return err
	}
	a.lang = calc.NewLanguage(opts)
	return nil
}

// languageOptions converts configuration into options for the calc language.
func languageOptions(cfg config.Config) (calc.Options, error) {
	opts := calc.Options{
		CommentPrefix: cfg.Calc.CommentPrefix,
		MaxDepth:      cfg.MaxDepth,
		Interning:     cfg.Interning,
	}
	if len(cfg.Calc.Keywords) == 0 {
		return opts, nil
	}

	opts.Keywords = make(map[string]calc.Token, len(cfg.Calc.Keywords))
	var errs []error
	for word, name := range cfg.Calc.Keywords {
		kind, ok := calc.TokenByName(name)
		if !ok {
			errs = append(errs, fmt.Errorf("keyword %q: unknown token %q", word, name))
			continue
		}
		opts.Keywords[word] = kind
	}
	if err := errors.Join(errs...); err != nil {
		return opts, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// workspace opens the named files in a new workspace. The name "-" reads
// standard input.
func (a *app) workspace(paths []string) (*workspace.Workspace[calc.Token, calc.Element], error) {
	ws := workspace.New(a.lang.Parser(),
		workspace.WithLogger(a.log),
		workspace.WithParallelism(a.cfg.Workers()),
	)
	for _, path := range paths {
		text, err := a.read(path)
		if err != nil {
			return nil, err
		}
		ws.Open(path, text)
	}
	return ws, nil
}

func (a *app) read(path string) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func (a *app) file(path string) (*source.File, error) {
	text, err := a.read(path)
	if err != nil {
		return nil, err
	}
	return source.NewFile(path, text), nil
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// Skip configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			var b strings.Builder
			fmt.Fprintf(&b, "oak %s\n", info.Version)
			fmt.Fprintf(&b, "commit: %s\n", info.Commit)
			fmt.Fprintf(&b, "built: %s\n", info.Date)
			_, err := io.WriteString(cmd.OutOrStdout(), b.String())
			return err
		},
	}
}

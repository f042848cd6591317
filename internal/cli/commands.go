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

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bufbuild/oak/highlight"
	"github.com/bufbuild/oak/internal/calc"
	"github.com/bufbuild/oak/internal/logging"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/report"
)

func newTokensCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens FILE",
		Short: "Print the tokens of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.file(args[0])
			if err != nil {
				return err
			}
			out := a.lang.Lexer().Lex(f, nil, nil)

			var b strings.Builder
			for _, tok := range out.Tokens {
				fmt.Fprintf(&b, "%v@%d..%d %s\n", tok.Kind, tok.Start, tok.End, strconv.Quote(tok.Text(f)))
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), b.String()); err != nil {
				return err
			}
			return a.diagnose(cmd, out.Report)
		},
	}
}

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the syntax tree of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd, args[0])
			if err != nil {
				return err
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), red.Dump(snap.Red(), snap.File)); err != nil {
				return err
			}
			return a.diagnose(cmd, snap.Report)
		},
	}
}

func newCheckCommand(a *app) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Parse files and report their diagnostics",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.workspace(args)
			if err != nil {
				return err
			}
			snaps, err := ws.ParseAll(cmd.Context(), args...)
			if err != nil {
				return err
			}

			all := new(report.Report)
			for _, snap := range snaps {
				all.Append(snap.Report)
			}
			all.Sort()

			errs, warnings, err := report.Renderer{
				Compact:  compact,
				Colorize: a.color(cmd.ErrOrStderr()),
			}.Render(all, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("checked",
				logging.FieldDocuments, len(snaps),
				logging.FieldErrors, errs,
				"warnings", warnings,
			)
			if errs > 0 {
				return ErrDiagnostics
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print one line per diagnostic")
	return cmd
}

func newHighlightCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight FILE",
		Short: "Print a file with syntax highlighting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd, args[0])
			if err != nil {
				return err
			}
			var h highlight.Highlighter[calc.Token, calc.Element] = highlight.Roles[calc.Token, calc.Element]{}
			spans := h.Highlight(snap.Red(), snap.File, snap.Report)
			theme := highlight.NewTheme(a.color(cmd.OutOrStdout()))
			return theme.Render(cmd.OutOrStdout(), snap.File, spans)
		},
	}
}

func newEvalCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "eval FILE",
		Short: "Evaluate a file and print the value of each statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd, args[0])
			if err != nil {
				return err
			}
			r := new(report.Report)
			r.Append(snap.Report)
			program := calc.NewEvaluator().Build(snap.Red(), snap.File, r)

			var b strings.Builder
			for _, binding := range program.Bindings {
				fmt.Fprintf(&b, "%s = %v\n", binding.Name, binding.Value)
			}
			for _, result := range program.Results {
				fmt.Fprintf(&b, "%v: %v\n", result.Span.StartLoc(), result.Value)
			}
			if _, err := io.WriteString(cmd.OutOrStdout(), b.String()); err != nil {
				return err
			}
			r.Sort()
			return a.diagnose(cmd, r)
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if a.path != "" {
				if _, err := fmt.Fprintf(out, "# from %s\n", a.path); err != nil {
					return err
				}
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

// snapshot parses a single file.
func (a *app) snapshot(cmd *cobra.Command, path string) (*snapshot, error) {
	ws, err := a.workspace([]string{path})
	if err != nil {
		return nil, err
	}
	return ws.Snapshot(cmd.Context(), path)
}

// diagnose prints the diagnostics in r, returning [ErrDiagnostics] if any of
// them are errors.
func (a *app) diagnose(cmd *cobra.Command, r *report.Report) error {
	errs, _, err := report.Renderer{Colorize: a.color(cmd.ErrOrStderr())}.Render(r, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if errs > 0 {
		return ErrDiagnostics
	}
	return nil
}

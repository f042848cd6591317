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

package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bufbuild/oak/internal/ext/unicodex"
)

// Renderer configures a diagnostic rendering operation.
type Renderer struct {
	// If set, uses a compact one-line-per-diagnostic rendering.
	Compact bool

	// If set, renders with ANSI color escapes.
	Colorize bool

	// If set, remarks are rendered; they are hidden by default.
	ShowRemarks bool

	// If set, debugging information is rendered.
	ShowDebug bool

	// If set, warnings are counted and colored as errors.
	WarningsAreErrors bool
}

// Render renders a report to out, returning how many errors and warnings
// were rendered.
func (r Renderer) Render(report *Report, out io.Writer) (errorCount, warningCount int, err error) {
	if report == nil {
		return 0, 0, nil
	}

	for i := range report.Diagnostics {
		d := &report.Diagnostics[i]
		if d.level == Remark && !r.ShowRemarks {
			continue
		}

		switch {
		case d.level <= Error, d.level == Warning && r.WarningsAreErrors:
			errorCount++
		case d.level == Warning:
			warningCount++
		}

		if _, err := io.WriteString(out, r.Diagnostic(d)); err != nil {
			return errorCount, warningCount, err
		}
	}
	return errorCount, warningCount, nil
}

// RenderString is a helper for calling [Renderer.Render] with a
// [strings.Builder].
func (r Renderer) RenderString(report *Report) (text string, errorCount, warningCount int) {
	var buf strings.Builder
	errorCount, warningCount, _ = r.Render(report, &buf)
	return buf.String(), errorCount, warningCount
}

// Diagnostic renders a single diagnostic, including its trailing newline.
func (r Renderer) Diagnostic(d *Diagnostic) string {
	c := newStylesheet(r)
	var out strings.Builder

	level := d.level
	if level == Warning && r.WarningsAreErrors {
		level = Error
	}

	primary := d.Primary()
	if r.Compact {
		switch {
		case !primary.IsZero():
			loc := primary.StartLoc()
			fmt.Fprintf(&out, "%s:%v: ", primary.Path(), loc)
		case d.inFile != "":
			fmt.Fprintf(&out, "%s: ", d.inFile)
		}
		fmt.Fprintf(&out, "%s%s: %s%s\n", c.bold(level), level, d.Message(), c.reset)
		return out.String()
	}

	fmt.Fprintf(&out, "%s%s: %s%s\n", c.bold(level), level, d.Message(), c.reset)

	// The sidebar is as wide as the widest line number we're going to print.
	var gutter int
	for _, a := range d.annotations {
		gutter = max(gutter, len(strconv.Itoa(a.StartLoc().Line+1)))
	}
	margin := strings.Repeat(" ", gutter)

	switch {
	case !primary.IsZero():
		fmt.Fprintf(&out, "%s%s--> %s%s:%v\n", margin, c.accent, c.reset, primary.Path(), primary.StartLoc())
	case d.inFile != "":
		fmt.Fprintf(&out, "%s%s--> %s%s\n", margin, c.accent, c.reset, d.inFile)
	}

	for _, a := range d.annotations {
		r.snippet(&out, a, level, gutter, &c)
	}

	if len(d.annotations) > 0 && (len(d.notes) > 0 || len(d.help) > 0) {
		fmt.Fprintf(&out, "%s %s|%s\n", margin, c.accent, c.reset)
	}
	for _, n := range d.notes {
		fmt.Fprintf(&out, "%s %s= %snote:%s %s\n", margin, c.accent, c.bold(noteLevel), c.reset, n)
	}
	for _, h := range d.help {
		fmt.Fprintf(&out, "%s %s= %shelp:%s %s\n", margin, c.accent, c.bold(noteLevel), c.reset, h)
	}
	if r.ShowDebug {
		for _, g := range d.debug {
			fmt.Fprintf(&out, "%s %s= %sdebug:%s %s\n", margin, c.accent, c.bold(noteLevel), c.reset, g)
		}
	}
	out.WriteByte('\n')
	return out.String()
}

// snippet renders one annotation: the line it starts on, and an underline.
//
// Spans that cross lines are underlined through the end of their first line.
func (r Renderer) snippet(out *strings.Builder, a annotation, level Level, gutter int, c *stylesheet) {
	start := a.StartLoc()
	lineStart, lineEnd := a.File.LineOffsets(start.Line)
	line := strings.TrimRight(a.File.Text()[lineStart:lineEnd], "\r\n")

	margin := strings.Repeat(" ", gutter)
	fmt.Fprintf(out, "%s %s|%s\n", margin, c.accent, c.reset)

	var text strings.Builder
	w := unicodex.Width{EscapeNonPrint: true, Out: &text}
	_, _ = w.WriteString(line)
	fmt.Fprintf(out, "%s%*d |%s %s\n", c.accent, gutter, start.Line+1, c.reset, text.String())

	// Measure the prefix and the underlined text the same way the line was
	// drawn, so that tabs and wide characters line up.
	w = unicodex.Width{EscapeNonPrint: true}
	_, _ = w.WriteString(line[:min(a.Start-lineStart, len(line))])
	col := w.Column

	underlined := line[min(a.Start-lineStart, len(line)):min(a.End-lineStart, len(line))]
	_, _ = w.WriteString(underlined)
	width := max(w.Column-col, 1)

	color, mark := c.accent, "-"
	if a.primary {
		color, mark = c.bold(level), "^"
	}

	fmt.Fprintf(out, "%s %s|%s %s%s%s", margin, c.accent, c.reset,
		strings.Repeat(" ", col), color, strings.Repeat(mark, width))
	if a.message != "" {
		fmt.Fprintf(out, " %s", a.message)
	}
	fmt.Fprintf(out, "%s\n", c.reset)
}

// stylesheet is the colors used for pretty-rendering diagnostics.
type stylesheet struct {
	reset, accent string

	// Bold colors.
	bError, bWarning, bRemark, bAccent string
}

func newStylesheet(r Renderer) stylesheet {
	if !r.Colorize {
		return stylesheet{}
	}

	return stylesheet{
		reset:    "\033[0m",
		accent:   "\033[0;34m", // Blue.
		bError:   "\033[1;31m", // Red.
		bWarning: "\033[1;33m", // Yellow.
		bRemark:  "\033[1;36m", // Cyan.
		bAccent:  "\033[1;34m",
	}
}

// bold returns the escape sequence for the bold color to use for the given
// level.
func (c stylesheet) bold(l Level) string {
	switch l {
	case ICE, Error:
		return c.bError
	case Warning:
		return c.bWarning
	case Remark:
		return c.bRemark
	default:
		return c.bAccent
	}
}

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

package highlight

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bufbuild/oak/source"
)

// Theme maps classes to terminal styles.
type Theme struct {
	Classes [Error + 1]lipgloss.Style

	// Layered over spans with an error diagnostic.
	Flagged lipgloss.Style

	styled bool
}

// NewTheme returns the default theme. If color is false, every style is
// plain.
func NewTheme(color bool) *Theme {
	theme := new(Theme)
	if !color {
		return theme
	}

	plain := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	style := func(c string) lipgloss.Style {
		return plain.Foreground(lipgloss.Color(c))
	}
	theme.styled = true
	theme.Classes = [...]lipgloss.Style{
		Plain:       plain,
		Comment:     style("8").Italic(true),
		Keyword:     style("13").Bold(true),
		Literal:     style("10"),
		Escape:      style("14"),
		Operator:    style("11"),
		Punctuation: style("7"),
		Name:        style("12"),
		Binding:     style("12").Bold(true),
		Reference:   style("12"),
		Function:    style("14"),
		Error:       style("9"),
	}
	theme.Flagged = lipgloss.NewStyle().Underline(true)
	return theme
}

// Render writes the text of src to out, styling each span.
//
// Spans use absolute offsets, so src may be a [source.View] into the
// document the spans were computed for.
func (t *Theme) Render(out io.Writer, src source.Source, spans []Span) error {
	var b strings.Builder
	base := src.Base()
	prev := base
	for _, s := range spans {
		if s.End <= prev || s.Start >= base+src.Len() {
			continue
		}
		start := max(s.Start, prev)
		end := min(s.End, base+src.Len())
		b.WriteString(src.Slice(prev-base, start-base))

		text := src.Slice(start-base, end-base)
		if !t.styled {
			b.WriteString(text)
			prev = end
			continue
		}

		style := t.Classes[s.Class]
		if s.Flagged {
			style = style.Inherit(t.Flagged)
		}
		// Styles pad multi-line text into a block, so render line by line.
		for i, line := range strings.Split(text, "\n") {
			if i > 0 {
				b.WriteByte('\n')
			}
			if line != "" {
				b.WriteString(style.Render(line))
			}
		}
		prev = end
	}
	b.WriteString(src.Slice(prev-base, src.Len()))

	_, err := io.WriteString(out, b.String())
	return err
}

// RenderString is like [Theme.Render], but returns a string.
func (t *Theme) RenderString(src source.Source, spans []Span) string {
	var b strings.Builder
	_ = t.Render(&b, src, spans)
	return b.String()
}

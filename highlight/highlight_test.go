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

package highlight_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/oak/highlight"
	"github.com/bufbuild/oak/internal/calc"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/source"
)

func parse(t *testing.T, text string) (*source.File, parser.Output[calc.Token, calc.Element]) {
	t.Helper()
	f := source.NewFile("test.calc", text)
	out, err := calc.NewLanguage(calc.Options{}).Parser().Parse(f, nil, nil)
	require.NoError(t, err)
	return f, out
}

// classes renders spans as "text:class" pairs, marking flagged spans with !.
func classes(f *source.File, spans []highlight.Span) string {
	parts := make([]string, 0, len(spans))
	for _, s := range spans {
		part := fmt.Sprintf("%s:%v", f.Slice(s.Start, s.End), s.Class)
		if s.Flagged {
			part += "!"
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, " ")
}

func TestRoles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text, want string
	}{
		{
			text: "let x = 1;",
			want: "let:keyword x:binding =:operator 1:literal ;:punctuation",
		},
		{
			text: "f(y) + z.w; // done",
			want: "f:function (:punctuation y:reference ):punctuation +:operator " +
				"z:reference .:punctuation w:name ;:punctuation // done:comment",
		},
		{
			text: "(g)(1);",
			want: "(:punctuation g:reference ):punctuation (:punctuation 1:literal ):punctuation ;:punctuation",
		},
		{
			text: `max(a, "s") /* c */;`,
			want: `max:function (:punctuation a:reference ,:punctuation "s":literal ):punctuation /* c */:comment ;:punctuation`,
		},
		{
			text: "1 @ 2;",
			want: "1:literal @:error! 2:error ;:punctuation",
		},
	}
	for _, test := range tests {
		t.Run(test.text, func(t *testing.T) {
			t.Parallel()
			f, out := parse(t, test.text)
			var h highlight.Highlighter[calc.Token, calc.Element] = highlight.Roles[calc.Token, calc.Element]{}
			spans := h.Highlight(out.Red(), f, out.Report)
			assert.Equal(t, test.want, classes(f, spans))

			for i := 1; i < len(spans); i++ {
				assert.LessOrEqual(t, spans[i-1].End, spans[i].Start)
			}
		})
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	text := "let x =\t1; /* a\nb */\nx;\n"
	f, out := parse(t, text)
	spans := highlight.Roles[calc.Token, calc.Element]{}.Highlight(out.Red(), f, out.Report)

	// Without color, rendering reproduces the source exactly.
	theme := highlight.NewTheme(false)
	assert.Equal(t, text, theme.RenderString(f, spans))

	// Spans use absolute offsets, so views render their slice of the text.
	view := f.View(4, 10)
	assert.Equal(t, "x =\t1;", theme.RenderString(view, spans))

	var b strings.Builder
	require.NoError(t, theme.Render(&b, f, nil))
	assert.Equal(t, text, b.String())
}

func TestTheme(t *testing.T) {
	t.Parallel()

	theme := highlight.NewTheme(true)
	assert.True(t, theme.Classes[highlight.Keyword].GetBold())
	assert.True(t, theme.Classes[highlight.Comment].GetItalic())
	assert.True(t, theme.Flagged.GetUnderline())

	plain := highlight.NewTheme(false)
	assert.False(t, plain.Classes[highlight.Keyword].GetBold())

	assert.Equal(t, "function", highlight.Function.String())
	assert.Equal(t, "Class(200)", highlight.Class(200).String())
}

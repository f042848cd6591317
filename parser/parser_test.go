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

package parser_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/oak/internal/calc"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
)

type output = parser.Output[calc.Token, calc.Element]

var lang = calc.NewLanguage(calc.Options{})

func parse(t *testing.T, text string) (*source.File, output) {
	t.Helper()
	f := source.NewFile("test.calc", text)
	out, err := lang.Parser().Parse(f, nil, nil)
	require.NoError(t, err)
	return f, out
}

// group renders an expression with every operator application
// parenthesized.
func group(n red.Node[calc.Token, calc.Element], src source.Source) string {
	switch n.Kind() {
	case calc.Literal, calc.NameRef, calc.Name:
		return n.Text(src)
	case calc.Paren:
		for c := range n.Children() {
			if sub, ok := c.Node(); ok {
				return group(sub, src)
			}
		}
		return "()"
	case calc.Call:
		var callee string
		var args []string
		for c := range n.Children() {
			sub, ok := c.Node()
			switch {
			case !ok:
			case sub.Kind() == calc.ArgList:
				for arg := range sub.Children() {
					if arg, ok := arg.Node(); ok {
						args = append(args, group(arg, src))
					}
				}
			default:
				callee = group(sub, src)
			}
		}
		return callee + "(" + strings.Join(args, ", ") + ")"
	}

	var parts []string
	for c := range n.Children() {
		if sub, ok := c.Node(); ok {
			parts = append(parts, group(sub, src))
			continue
		}
		leaf, _ := c.Leaf()
		if !language.IsIgnored(leaf.Kind) && !language.IsEOF(leaf.Kind) {
			parts = append(parts, leaf.Text(src))
		}
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// firstExpr returns the expression of the first statement.
func firstExpr(t *testing.T, out output) red.Node[calc.Token, calc.Element] {
	t.Helper()
	for c := range out.Red().Children() {
		stmt, ok := c.Node()
		if !ok {
			continue
		}
		for c := range stmt.Children() {
			if expr, ok := c.Node(); ok && expr.Kind() != calc.Name {
				return expr
			}
		}
	}
	t.Fatal("no expression")
	return red.Node[calc.Token, calc.Element]{}
}

func messages(r *report.Report) []string {
	var out []string
	for _, d := range r.Diagnostics {
		out = append(out, d.Message())
	}
	return out
}

func TestPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct{ text, want string }{
		{"1+2*3", "(1 + (2 * 3))"},
		{"1*2+3", "((1 * 2) + 3)"},
		{"1-2-3", "((1 - 2) - 3)"},
		{"8/4/2", "((8 / 4) / 2)"},
		{"2^3^2", "(2 ^ (3 ^ 2))"},
		{"-2^2", "(- (2 ^ 2))"},
		{"--x", "(- (- x))"},
		{"(1+2)*3", "((1 + 2) * 3)"},
		{"1 + 2 == 3", "((1 + 2) == 3)"},
		{"3!^2", "((3 !) ^ 2)"},
		{"!a == b", "((! a) == b)"},
		{"f(1, 2+3)[0].x", "((f(1, (2 + 3)) [ 0 ]) . x)"},
		{"a + f()", "(a + f())"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			f, out := parse(t, tt.text)
			assert.Empty(t, messages(out.Report))
			assert.Equal(t, tt.want, group(firstExpr(t, out), f))
		})
	}
}

func TestNonAssociative(t *testing.T) {
	t.Parallel()

	f, out := parse(t, "1 == 2 == 3")
	assert.Equal(t, []string{"`==` cannot be chained"}, messages(out.Report))
	assert.Equal(t, []string{"add parentheses to make the grouping explicit"}, out.Report.Diagnostics[0].Help())
	assert.Equal(t, "((1 == 2) == 3)", group(firstExpr(t, out), f))
	assert.Equal(t, f.Span(7, 9), out.Report.Diagnostics[0].Primary())

	_, out = parse(t, "1 == 2 + 3 == 4")
	assert.Equal(t, []string{"`==` cannot be chained"}, messages(out.Report))

	for _, text := range []string{"(1 == 2) == 3", "1 == (2 == 3)", "1 == 2; 3 == 4", "f(1 == 2) == 3"} {
		_, out := parse(t, text)
		assert.Empty(t, messages(out.Report), text)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	f, out := parse(t, "foo(1,,2)")
	assert.Equal(t, []string{"expected expression, found `,`"}, messages(out.Report))

	call := firstExpr(t, out)
	require.Equal(t, calc.Call, call.Kind())
	var kinds []calc.Element
	var literals []string
	for c := range call.Children() {
		if list, ok := c.Node(); ok && list.Kind() == calc.ArgList {
			for c := range list.Children() {
				if n, ok := c.Node(); ok {
					kinds = append(kinds, n.Kind())
					if n.Kind() == calc.Literal {
						literals = append(literals, n.Text(f))
					}
				}
			}
		}
	}
	assert.Equal(t, []calc.Element{calc.Literal, calc.ErrorNode, calc.Literal}, kinds)
	assert.Equal(t, []string{"1", "2"}, literals)

	tests := []struct {
		text string
		want []string
	}{
		{"let = 5;", []string{"expected a name, found `=`"}},
		{"1 +;", []string{"expected expression, found `;`"}},
		{"1 +", []string{"unexpected end of input in expression"}},
		{"f(1 2)", []string{"expected `,` or `)`, found `2`"}},
		{"1 2; 3;", []string{"expected `;`, found `2`"}},
		{"(1;", []string{"expected `)`, found `;`"}},
		{") 1;", []string{"expected expression, found `)`", "expected `;`, found `1`"}},
		{"1 @ 2;", []string{"expected `;`, found `@`", "unrecognized input \"@\""}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			f, out := parse(t, tt.text)
			assert.Equal(t, tt.want, messages(out.Report))
			assert.Equal(t, f.Len(), out.Root.Len())
		})
	}
}

func TestDepth(t *testing.T) {
	t.Parallel()

	text := strings.Repeat("(", 5000) + "1" + strings.Repeat(")", 5000)
	f, out := parse(t, text)
	assert.Equal(t, []string{"nesting is too deep (the limit is 1000)"}, messages(out.Report))
	assert.Equal(t, f.Len(), out.Root.Len())
	checkCoverage(t, f, out)

	shallow := calc.NewLanguage(calc.Options{MaxDepth: 10})
	out, err := shallow.Parser().Parse(source.NewFile("t", "((((((((((1))))))))))"), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"nesting is too deep (the limit is 10)"}, messages(out.Report))

	out, err = shallow.Parser().Parse(source.NewFile("t", "((1))"), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, messages(out.Report))
}

// checkCoverage checks that the leaves of the tree are exactly the lexer's
// tokens.
func checkCoverage(t *testing.T, f *source.File, out output) {
	t.Helper()

	var got, want []calc.Token
	var text strings.Builder
	end := out.Red().Start()
	for leaf := range out.Red().Leaves() {
		got = append(got, leaf.Kind)
		assert.Equal(t, end, leaf.Start)
		end = leaf.End
		text.WriteString(leaf.Text(f))
	}
	for _, tok := range out.Lex.Tokens {
		want = append(want, tok.Kind)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("leaves do not match tokens (-want +got):\n%s", diff)
	}
	assert.Equal(t, f.Text(), text.String())
	assert.Equal(t, calc.EOF, got[len(got)-1])
	assert.Equal(t, calc.Root, out.Root.Kind())
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"   ",
		"// just a comment",
		"let x = 1; x + 2;",
		"let x = ;;; let",
		"))))",
		"f(,,,",
		"/* unterminated",
		"\"unterminated",
		"1 ==== 2 !!! ^^ 3",
		"let let let = = =",
		"a.b.c.(d)[e](f)!",
		"\x00\xff ☃ λ",
	}
	for _, text := range inputs {
		f, out := parse(t, text)
		assert.Equal(t, f.Len(), out.Root.Len(), "%q", text)
		checkCoverage(t, f, out)
	}
}

func TestEmptySource(t *testing.T) {
	t.Parallel()

	_, out := parse(t, "")
	assert.Empty(t, messages(out.Report))
	assert.Equal(t, "(Root EOF:0)", out.Root.String())
	assert.Equal(t, 0, out.Red().Len())

	strict := parser.New[calc.Token, calc.Element](lang, lang.Lexer(), func(*parser.State[calc.Token, calc.Element]) {}, parser.RequireRoot(true))
	out, err := strict.Parse(source.NewFile("t", ""), nil, nil)
	assert.ErrorIs(t, err, parser.ErrEmptySource)
	assert.True(t, out.Root.IsZero())

	_, err = strict.Parse(source.NewFile("t", " "), nil, nil)
	assert.NoError(t, err)
}

func TestICE(t *testing.T) {
	t.Parallel()

	p := parser.New[calc.Token, calc.Element](lang, lang.Lexer(), func(s *parser.State[calc.Token, calc.Element]) {
		s.Bump()
		panic("boom")
	})

	f := source.NewFile("t", "1 + 2;")
	out, err := p.Parse(f, nil, nil)
	require.NoError(t, err)
	require.Equal(t, 2, out.Report.Len())
	assert.Equal(t, report.ICE, out.Report.Diagnostics[0].Level())
	assert.Contains(t, out.Report.Diagnostics[0].Message(), "boom")
	assert.Equal(t, "unexpected `+`", out.Report.Diagnostics[1].Message())
	checkCoverage(t, f, out)
}

func TestTry(t *testing.T) {
	t.Parallel()

	p := parser.New[calc.Token, calc.Element](lang, lang.Lexer(), func(s *parser.State[calc.Token, calc.Element]) {
		ok := s.Try(func() bool {
			s.Node(calc.Literal, s.Bump)
			s.Expect(calc.Semi, "`;`")
			return false
		})
		assert.False(t, ok)

		ok = s.Try(func() bool {
			s.Node(calc.Literal, s.Bump)
			return true
		})
		assert.True(t, ok)
		s.Recover()
	})

	f := source.NewFile("t", " 1 2")
	out, err := p.Parse(f, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, messages(out.Report))
	assert.Equal(t, "(Root Space:1 (Literal Number:1) Space:1 (Error Number:1) EOF:0)", out.Root.String())
}

func TestView(t *testing.T) {
	t.Parallel()

	f := source.NewFile("t", "ignored text; 1 + 2; more")
	v := f.View(14, 20)
	out, err := lang.Parser().Parse(v, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, messages(out.Report))

	root := out.Red()
	assert.Equal(t, 14, root.Start())
	assert.Equal(t, 20, root.End())
	assert.Equal(t, "1 + 2;", root.Text(v))
	assert.Equal(t, "(1 + 2)", group(firstExpr(t, out), v))

	leaf, ok := root.LeafAt(16)
	require.True(t, ok)
	assert.Equal(t, calc.Plus, leaf.Kind)
}

func TestIncremental(t *testing.T) {
	t.Parallel()

	const text = "let a = 1;\nlet b = a + 2;\nb * 3;\n"
	tests := []struct {
		name   string
		edits  []source.TextEdit
		reused int
	}{
		{name: "first-statement", edits: []source.TextEdit{{Start: 8, End: 9, Text: "10"}}, reused: 2},
		{name: "last-statement", edits: []source.TextEdit{{Start: 30, End: 31, Text: "4"}}, reused: 2},
		{name: "middle", edits: []source.TextEdit{{Start: 23, End: 24, Text: "b"}}, reused: 2},
		{name: "insert-statement", edits: []source.TextEdit{{Start: 11, End: 11, Text: "a;\n"}}, reused: 3},
		{name: "delete-terminator", edits: []source.TextEdit{{Start: 9, End: 10}}, reused: 2},
		{name: "append", edits: []source.TextEdit{{Start: 33, End: 33, Text: "c;"}}, reused: 3},
		{name: "rewrite", edits: []source.TextEdit{{Start: 0, End: 33, Text: "1;"}}, reused: 0},
		{name: "two-edits", edits: []source.TextEdit{
			{Start: 8, End: 9, Text: "2"},
			{Start: 30, End: 31, Text: "4"},
		}, reused: 1},
	}

	old := source.NewFile("t", text)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache, err := lang.Parser().Parse(old, nil, nil)
			require.NoError(t, err)

			f := old.Apply(tt.edits...)
			got, err := lang.Parser().Parse(f, tt.edits, &cache)
			require.NoError(t, err)
			want, err := lang.Parser().Parse(f, nil, nil)
			require.NoError(t, err)

			assert.True(t, want.Root.Equal(got.Root), "incremental:\n%s\nfresh:\n%s", got.Root, want.Root)
			assert.Equal(t, messages(want.Report), messages(got.Report))
			assert.Equal(t, tt.reused, got.Reused)
			assert.Equal(t, 1, got.Generation)
		})
	}
}

func TestIncrementalGrowth(t *testing.T) {
	t.Parallel()

	// A statement without a terminator may absorb what is appended to it, so
	// it must not be reused.
	old := source.NewFile("t", "1 + 2")
	cache, err := lang.Parser().Parse(old, nil, nil)
	require.NoError(t, err)

	edits := []source.TextEdit{{Start: 5, End: 5, Text: " * 3"}}
	f := old.Apply(edits...)
	out, err := lang.Parser().Parse(f, edits, &cache)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Reused)
	assert.Equal(t, "(1 + (2 * 3))", group(firstExpr(t, out), f))
}

func TestIncrementalDiagnostics(t *testing.T) {
	t.Parallel()

	// Reparsing around an erroneous statement must not lose its diagnostic.
	old := source.NewFile("t", "1 + );\n2;\n")
	cache, err := lang.Parser().Parse(old, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"expected expression, found `)`"}, messages(cache.Report))

	edits := []source.TextEdit{{Start: 7, End: 8, Text: "3"}}
	f := old.Apply(edits...)
	out, err := lang.Parser().Parse(f, edits, &cache)
	require.NoError(t, err)
	assert.Equal(t, messages(cache.Report), messages(out.Report))
	assert.Equal(t, f.Span(4, 5), out.Report.Diagnostics[0].Primary())
	assert.Equal(t, 0, out.Reused)
}

func TestIncrementalSequence(t *testing.T) {
	t.Parallel()

	// Type a document one edit at a time, checking each incremental parse
	// against a fresh one.
	steps := [][]source.TextEdit{
		{{Start: 0, End: 0, Text: "let x = 1;"}},
		{{Start: 10, End: 10, Text: "\nx"}},
		{{Start: 12, End: 12, Text: " + "}},
		{{Start: 15, End: 15, Text: "f(1,"}},
		{{Start: 19, End: 19, Text: "2)"}},
		{{Start: 21, End: 21, Text: ";"}},
		{{Start: 8, End: 9, Text: "(2"}},
		{{Start: 10, End: 10, Text: ")"}},
		{{Start: 0, End: 0, Text: "// header\n"}},
		{{Start: 0, End: 2, Text: "/*"}, {Start: 9, End: 9, Text: "*/"}},
	}

	f := source.NewFile("t", "")
	cache, err := lang.Parser().Parse(f, nil, nil)
	require.NoError(t, err)
	for i, edits := range steps {
		f = f.Apply(edits...)
		got, err := lang.Parser().Parse(f, edits, &cache)
		require.NoError(t, err)
		want, err := lang.Parser().Parse(f, nil, nil)
		require.NoError(t, err)

		assert.True(t, want.Root.Equal(got.Root), "step %d %q:\n%s\n%s", i, f.Text(), got.Root, want.Root)
		assert.Equal(t, messages(want.Report), messages(got.Report), "step %d", i)
		assert.Equal(t, i+1, got.Generation)
		checkCoverage(t, f, got)
		cache = got
	}
	assert.Equal(t, "/* header*/\nlet x = (2);\nx + f(1,2);", f.Text())
}

func TestIncrementalLookahead(t *testing.T) {
	t.Parallel()

	// Finishing a number whose lexing looked past the edit.
	tests := []struct {
		text  string
		edits []source.TextEdit
	}{
		{text: "2.;", edits: []source.TextEdit{{Start: 2, End: 2, Text: "5"}}},
		{text: "1e;", edits: []source.TextEdit{{Start: 2, End: 2, Text: "5"}}},
		{text: "1e+;", edits: []source.TextEdit{{Start: 3, End: 3, Text: "5"}}},
		{text: "let a = 1;\na + 2.;", edits: []source.TextEdit{{Start: 17, End: 17, Text: "5"}}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			f, cache := parse(t, tt.text)
			f = f.Apply(tt.edits...)
			got, err := lang.Parser().Parse(f, tt.edits, &cache)
			require.NoError(t, err)
			want, err := lang.Parser().Parse(f, nil, nil)
			require.NoError(t, err)

			assert.True(t, want.Root.Equal(got.Root), "incremental:\n%s\nfresh:\n%s", got.Root, want.Root)
			assert.Empty(t, messages(got.Report))
			assert.Equal(t, want.Lex.Tokens, got.Lex.Tokens)

			// Reparsing the unchanged text from the incremental result must
			// give the same tree again.
			again, err := lang.Parser().Parse(f, nil, &got)
			require.NoError(t, err)
			assert.True(t, want.Root.Equal(again.Root))
		})
	}
}

func TestIdempotent(t *testing.T) {
	t.Parallel()

	f, cache := parse(t, "let a = 1; a;")
	out, err := lang.Parser().Parse(f, nil, &cache)
	require.NoError(t, err)
	assert.True(t, out.Root == cache.Root)
	assert.Equal(t, 1, out.Generation)
	assert.Equal(t, out.Root.Arena().Len(), out.Reused)

	// A no-op edit is not a change either.
	edits := []source.TextEdit{{Start: 3, End: 3}}
	out, err = lang.Parser().Parse(f.Apply(edits...), edits, &out)
	require.NoError(t, err)
	assert.True(t, out.Root == cache.Root)
	assert.Equal(t, 2, out.Generation)
}

func TestInterning(t *testing.T) {
	t.Parallel()

	interned := calc.NewLanguage(calc.Options{Interning: true})
	f := source.NewFile("t", "1 + 1; 1 + 1; 1 + 1;")
	a, err := interned.Parser().Parse(f, nil, nil)
	require.NoError(t, err)
	b, err := lang.Parser().Parse(f, nil, nil)
	require.NoError(t, err)

	assert.True(t, a.Root.Equal(b.Root))
	assert.Less(t, a.Root.Arena().Len(), b.Root.Arena().Len())
	assert.Positive(t, a.Root.Arena().InternHits())
}

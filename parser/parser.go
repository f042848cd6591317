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

// Package parser is the engine that turns a token stream into a green tree.
//
// A language supplies a grammar: a function that parses the body of a
// document using a [State]. Expressions are parsed with the precedence
// climbing engine in [Expr], driven by the language's [Pratt] hooks.
//
// Parsing never fails on malformed input. Unexpected tokens are wrapped in
// error nodes and reported, and parsing continues, so that every parse
// produces a tree covering every token.
package parser

import (
	"errors"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/lexer"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
)

// ErrEmptySource is returned when parsing an empty document in a language
// that requires a root, configured with [RequireRoot].
var ErrEmptySource = errors.New("parser: empty source")

// Grammar parses the body of a document. Anything it leaves unconsumed is
// reported and wrapped in an error node.
type Grammar[T language.TokenKind, E language.ElementKind] func(s *State[T, E])

// Parser is the contract of a language's parser.
type Parser[T language.TokenKind, E language.ElementKind] interface {
	// Parse parses src. If cache is the output of parsing the text src had
	// before edits were applied to it, it is used to avoid redoing work.
	//
	// The only error is [ErrEmptySource].
	Parse(src source.Source, edits []source.TextEdit, cache *Output[T, E]) (Output[T, E], error)
}

// Output is the result of a parse.
type Output[T language.TokenKind, E language.ElementKind] struct {
	// The root of the tree. Zero only if parsing failed.
	Root green.Node[T, E]

	// The output of the lexer, which also carries its diagnostics.
	Lex lexer.Output[T]

	// All diagnostics, from the lexer and the parser.
	Report *report.Report

	// The number of nodes carried over from the previous tree, and how many
	// parses of the same document preceded this one.
	Reused, Generation int

	base int
}

// Red returns the root of the tree as a red node.
func (o *Output[T, E]) Red() red.Node[T, E] {
	return red.NewNode(o.Root, o.base)
}

// Option configures a parser created with [New].
type Option func(*config)

type config struct {
	maxDepth    int
	interning   bool
	requireRoot bool
}

// MaxDepth sets the nesting limit. Input nested deeper than this is reported
// and wrapped in an error node instead of being parsed.
func MaxDepth(depth int) Option {
	return func(c *config) { c.maxDepth = max(depth, 1) }
}

// Interning enables node interning in the arenas of parsed trees; see
// [green.Arena.Interning].
func Interning(enable bool) Option {
	return func(c *config) { c.interning = enable }
}

// RequireRoot makes parsing an empty document fail with [ErrEmptySource].
func RequireRoot(require bool) Option {
	return func(c *config) { c.requireRoot = require }
}

// New returns a parser for a language.
func New[T language.TokenKind, E language.ElementKind](
	lang language.Language[T, E],
	lex lexer.Lexer[T],
	grammar Grammar[T, E],
	options ...Option,
) Parser[T, E] {
	p := &engine[T, E]{lang: lang, lex: lex, grammar: grammar}
	p.config.maxDepth = DefaultMaxDepth
	for _, opt := range options {
		opt(&p.config)
	}
	return p
}

type engine[T language.TokenKind, E language.ElementKind] struct {
	lang    language.Language[T, E]
	lex     lexer.Lexer[T]
	grammar Grammar[T, E]
	config
}

func (p *engine[T, E]) Parse(src source.Source, edits []source.TextEdit, cache *Output[T, E]) (Output[T, E], error) {
	if cache != nil && cache.Root.IsZero() {
		cache = nil
	}

	// Nothing changed: the previous tree is still correct.
	if cache != nil && cache.base == src.Base() && cache.Lex.Text() == src.Text() {
		out := *cache
		out.Generation++
		out.Reused = out.Root.Arena().Len()
		return out, nil
	}

	var lexCache *lexer.Output[T]
	if cache != nil {
		lexCache = &cache.Lex
	}
	lexed := p.lex.Lex(src, edits, lexCache)

	out := Output[T, E]{Lex: lexed, Report: new(report.Report), base: src.Base()}
	out.Report.Append(lexed.Report)
	if cache != nil {
		out.Generation = cache.Generation + 1
	}

	if src.Len() == 0 && p.requireRoot {
		return out, ErrEmptySource
	}

	s := &State[T, E]{
		lang:     p.lang,
		file:     src.File(),
		tokens:   lexed.Tokens,
		sink:     green.NewBuilder(green.NewArena[T, E]().Interning(p.interning)),
		report:   new(report.Report),
		maxDepth: p.maxDepth,
	}
	if cache != nil && cache.base == src.Base() && len(edits) > 0 {
		s.reuse = newReuser(cache, edits)
	}

	out.Root = s.run(p.grammar)
	if s.reuse != nil {
		out.Reused = s.reuse.hits
	}
	out.Report.Append(s.report)
	out.Report.Sort()
	return out, nil
}

// run parses a whole document with grammar and returns its root.
func (s *State[T, E]) run(grammar Grammar[T, E]) green.Node[T, E] {
	func() {
		defer s.report.CatchICE(true, func(d *report.Diagnostic) {
			d.Apply(report.Snippet(s.Span(s.tokens[min(s.pos, len(s.tokens)-1)]), "while parsing this"))
		})
		grammar(s)
	}()

	if !s.AtEOF() {
		tok := s.Current()
		s.Error(report.SyntaxError{
			Span:    s.Span(tok),
			Message: "unexpected " + s.Describe(tok),
		})
		s.Recover()
	}

	// Trailing trivia and the end-of-stream token belong to the root.
	s.skipTrivia()
	eof := s.tokens[len(s.tokens)-1]
	s.sink.PushLeaf(eof.Kind, eof.Len())
	s.pos = len(s.tokens)

	return s.sink.Finish(s.lang.RootElement())
}

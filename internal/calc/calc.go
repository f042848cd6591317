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

// Package calc is a small expression language built on the parsing
// framework. It exists to exercise the framework end to end, and doubles as
// a worked example of how to define a language.
//
// A calc document is a sequence of statements, each terminated by a
// semicolon (which may be omitted on the last one):
//
//	let r = 2;
//	let area = pi * r ^ 2;
//	max(area, 10)!;
package calc

import (
	"maps"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/lexer"
	"github.com/bufbuild/oak/parser"
)

// Options configures a [Language].
type Options struct {
	// Words lexed as keywords rather than identifiers. Defaults to
	// [DefaultKeywords].
	Keywords map[string]Token

	// The prefix of line comments. Defaults to "//".
	CommentPrefix string

	// Passed on to the parser; see [parser.MaxDepth], [parser.Interning]
	// and [parser.RequireRoot].
	MaxDepth    int
	Interning   bool
	RequireRoot bool
}

// DefaultKeywords returns the standard keyword table.
func DefaultKeywords() map[string]Token {
	return map[string]Token{
		"let":   Let,
		"true":  True,
		"false": False,
	}
}

// Language is the calc language. It is immutable and safe for concurrent
// use.
type Language struct {
	keywords map[string]Token
	comment  string

	prefix, infix parser.Operators[Token, Element]

	lexer  lexer.Lexer[Token]
	parser parser.Parser[Token, Element]
}

var _ language.Language[Token, Element] = (*Language)(nil)

// NewLanguage builds a calc language.
func NewLanguage(opts Options) *Language {
	l := &Language{
		keywords: opts.Keywords,
		comment:  opts.CommentPrefix,
		prefix: parser.Operators[Token, Element]{
			Minus: {Kind: Unary, Prec: precUnary},
			Bang:  {Kind: Unary, Prec: precUnary},
		},
		infix: parser.Operators[Token, Element]{
			EqEq:  {Kind: Binary, Prec: precCompare, Assoc: parser.None},
			Plus:  {Kind: Binary, Prec: precSum, Assoc: parser.Left},
			Minus: {Kind: Binary, Prec: precSum, Assoc: parser.Left},
			Star:  {Kind: Binary, Prec: precProduct, Assoc: parser.Left},
			Slash: {Kind: Binary, Prec: precProduct, Assoc: parser.Left},
			Caret: {Kind: Binary, Prec: precPower, Assoc: parser.Right},
			Bang:  {Kind: Postfix, Prec: precPostfix, Postfix: true},
		},
	}
	if l.keywords == nil {
		l.keywords = DefaultKeywords()
	} else {
		l.keywords = maps.Clone(l.keywords)
	}
	if l.comment == "" {
		l.comment = "//"
	}

	l.lexer = lexer.New[Token](l, l.lex)

	var popts []parser.Option
	if opts.MaxDepth > 0 {
		popts = append(popts, parser.MaxDepth(opts.MaxDepth))
	}
	popts = append(popts, parser.Interning(opts.Interning), parser.RequireRoot(opts.RequireRoot))
	l.parser = parser.New[Token, Element](l, l.lexer, l.file, popts...)
	return l
}

// Name implements [language.Language].
func (*Language) Name() string { return "calc" }

// EOF implements [language.Tokens].
func (*Language) EOF() Token { return EOF }

// ErrorToken implements [language.Tokens].
func (*Language) ErrorToken() Token { return Error }

// RootElement implements [language.Language].
func (*Language) RootElement() Element { return Root }

// ErrorElement implements [language.Language].
func (*Language) ErrorElement() Element { return ErrorNode }

// Lexer returns the language's lexer.
func (l *Language) Lexer() lexer.Lexer[Token] { return l.lexer }

// Parser returns the language's parser.
func (l *Language) Parser() parser.Parser[Token, Element] { return l.parser }

var punctuation = []struct {
	text string
	kind Token
}{
	// Longer operators first.
	{"==", EqEq},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"^", Caret},
	{"=", Eq},
	{"!", Bang},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{",", Comma},
	{".", Dot},
	{";", Semi},
}

func (l *Language) lex(s *lexer.State[Token]) {
	switch {
	case s.ScanWhitespace(Whitespace):
	case s.ScanLineComment(LineComment, l.comment):
	case s.ScanBlockComment(BlockComment, "/*", "*/"):
	case s.ScanNumber(Number):
	case s.ScanString(String, '"'):
	case s.ScanIdentifier(Ident, l.keywords):
	default:
		for _, p := range punctuation {
			if s.ConsumeIf(p.text) {
				s.Emit(p.kind)
				return
			}
		}
		// Anything else is left for the lexer to report as unrecognized.
	}
}

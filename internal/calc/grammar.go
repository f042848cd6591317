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

package calc

import (
	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/report"
)

// Binding powers, loosest first.
const (
	precCompare = 10 + iota
	precSum
	precProduct
	precUnary
	precPower
	precPostfix
)

type state = parser.State[Token, Element]

type node = green.Node[Token, Element]

// file parses a whole document.
func (l *Language) file(s *state) {
	for !s.AtEOF() {
		l.statement(s)
	}
}

// statement parses a single statement, including its terminator.
//
// Statements end in a semicolon, so a statement that was terminated in the
// previous tree can be reused wholesale.
func (l *Language) statement(s *state) {
	if s.At(Let) {
		s.Reusable(LetStmt, func() {
			s.Bump()
			if s.At(Ident) {
				s.Node(Name, s.Bump)
			} else {
				s.Expect(Ident, "a name")
			}
			if s.Expect(Eq, "`=`") {
				parser.Expr(s, l, 0)
			}
			l.terminator(s)
		}, Semi)
		return
	}

	s.Reusable(ExprStmt, func() {
		parser.Expr(s, l, 0)
		l.terminator(s)
	}, Semi)
}

func (l *Language) terminator(s *state) {
	if s.Eat(Semi) || s.AtEOF() {
		return
	}
	s.Expect(Semi, "`;`")
	s.Recover(Semi, Let)
	s.Eat(Semi)
}

// Primary implements [parser.Pratt].
func (l *Language) Primary(s *state) node {
	tok := s.Current()
	if kind, ok := ElementFor(tok.Kind); ok {
		return s.Node(kind, s.Bump)
	}

	switch tok.Kind {
	case LParen:
		return s.Node(Paren, func() {
			s.Bump()
			parser.Expr(s, l, 0)
			s.Expect(RParen, "`)`")
		})
	default:
		return s.Unexpected("expression")
	}
}

// Prefix implements [parser.Pratt].
func (l *Language) Prefix(s *state) node {
	if n, ok := l.prefix.Prefix(s, l); ok {
		return n
	}
	return l.Primary(s)
}

// Infix implements [parser.Pratt].
func (l *Language) Infix(s *state, left node, minPrec int) (node, bool) {
	if minPrec > precPostfix {
		return node{}, false
	}

	switch s.Peek() {
	case LParen:
		cp := s.CheckpointBefore(left)
		l.args(s)
		return s.Finish(cp, Call), true

	case LBracket:
		cp := s.CheckpointBefore(left)
		s.Bump()
		parser.Expr(s, l, 0)
		s.Expect(RBracket, "`]`")
		return s.Finish(cp, Index), true

	case Dot:
		cp := s.CheckpointBefore(left)
		s.Bump()
		// Field names are left bare: they neither bind nor refer to anything.
		s.Expect(Ident, "a field name")
		return s.Finish(cp, Field), true
	}

	return l.infix.Infix(s, l, left, minPrec)
}

// args parses a parenthesized, comma-separated argument list.
func (l *Language) args(s *state) {
	s.Node(ArgList, func() {
		s.Bump()
		for !s.At(RParen) && !s.AtEOF() {
			if s.At(Comma) {
				// A missing argument, as in f(1,,2).
				s.Unexpected("expression")
				continue
			}

			parser.Expr(s, l, 0)
			if s.Eat(Comma) {
				continue
			}
			if s.At(RParen) {
				break
			}

			tok := s.Current()
			s.Error(report.ExpectedToken{
				Span: s.Span(tok),
				Want: "`,` or `)`",
				Got:  s.Describe(tok),
			})
			s.Recover(Comma, RParen, Semi)
			if !s.Eat(Comma) {
				break
			}
		}
		s.Expect(RParen, "`)`")
	})
}

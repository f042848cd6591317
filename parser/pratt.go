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

package parser

import (
	"fmt"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/report"
)

// Associativity is how a chain of operators of equal precedence groups.
type Associativity int8

const (
	// Left groups a - b - c as (a - b) - c.
	Left Associativity = iota
	// Right groups a ^ b ^ c as a ^ (b ^ c).
	Right
	// None forbids chains: a == b == c is diagnosed, and parsed as though
	// the operator were [Left]-associative.
	None
)

// String implements [fmt.Stringer].
func (a Associativity) String() string {
	switch a {
	case Left:
		return "left"
	case Right:
		return "right"
	case None:
		return "none"
	default:
		return fmt.Sprintf("Associativity(%d)", int(a))
	}
}

// Pratt is a language's expression grammar, as driven by [Expr].
type Pratt[T language.TokenKind, E language.ElementKind] interface {
	// Primary parses an atom: a literal, a name, a parenthesized expression,
	// and so on. If nothing matches, it should call [State.Unexpected], which
	// always makes progress.
	Primary(s *State[T, E]) green.Node[T, E]

	// Prefix parses a prefix operator application, falling back to Primary.
	Prefix(s *State[T, E]) green.Node[T, E]

	// Infix extends left with an infix or postfix operator whose precedence
	// is at least minPrec. Returns false, consuming nothing, if the next
	// token is not such an operator.
	Infix(s *State[T, E], left green.Node[T, E], minPrec int) (green.Node[T, E], bool)
}

// Expr parses an expression whose operators all have precedence at least
// minPrec. Higher precedences bind tighter.
func Expr[T language.TokenKind, E language.ElementKind](s *State[T, E], p Pratt[T, E], minPrec int) green.Node[T, E] {
	if !s.enter() {
		return s.overflow()
	}
	defer s.leave()

	left := p.Prefix(s)
	for {
		next, ok := p.Infix(s, left, minPrec)
		if !ok {
			return left
		}
		left = next
	}
}

// Binary parses the operator at the cursor and its right operand, and folds
// both together with left into a node of the given kind, whose first child
// is left.
//
// The right operand is parsed at prec+1 for [Left] and [None] operators, and
// at prec for [Right] ones.
func Binary[T language.TokenKind, E language.ElementKind](
	s *State[T, E],
	p Pratt[T, E],
	left green.Node[T, E],
	kind E,
	prec int,
	assoc Associativity,
) green.Node[T, E] {
	cp := s.CheckpointBefore(left)

	if assoc == None && s.chain.node == left && s.chain.prec == prec {
		op := s.Current()
		s.Error(report.SyntaxError{
			Span:    s.Span(op),
			Message: fmt.Sprintf("%s cannot be chained", s.Describe(op)),
		}).Apply(report.Help("add parentheses to make the grouping explicit"))
	}

	s.Bump()
	next := prec + 1
	if assoc == Right {
		next = prec
	}
	Expr(s, p, next)

	n := s.Finish(cp, kind)
	if assoc == None {
		s.chain.node, s.chain.prec = n, prec
	}
	return n
}

// Unary parses the prefix operator at the cursor and its operand, which is
// parsed at prec.
func Unary[T language.TokenKind, E language.ElementKind](s *State[T, E], p Pratt[T, E], kind E, prec int) green.Node[T, E] {
	cp := s.Checkpoint()
	s.Bump()
	Expr(s, p, prec)
	return s.Finish(cp, kind)
}

// Postfix parses the postfix operator at the cursor, applying it to left.
func Postfix[T language.TokenKind, E language.ElementKind](s *State[T, E], left green.Node[T, E], kind E) green.Node[T, E] {
	cp := s.CheckpointBefore(left)
	s.Bump()
	return s.Finish(cp, kind)
}

// Operator describes an operator in an [Operators] table.
type Operator[E language.ElementKind] struct {
	// The kind of node the operator produces.
	Kind E
	// Higher binds tighter.
	Prec  int
	Assoc Associativity
	// If set, this is a postfix operator and Assoc is ignored.
	Postfix bool
}

// Operators is a table of operators, keyed by token kind.
type Operators[T language.TokenKind, E language.ElementKind] map[T]Operator[E]

// Prefix parses a prefix operator from the table, returning false if the
// next token is not one.
func (o Operators[T, E]) Prefix(s *State[T, E], p Pratt[T, E]) (green.Node[T, E], bool) {
	op, ok := o[s.Peek()]
	if !ok {
		return green.Node[T, E]{}, false
	}
	return Unary(s, p, op.Kind, op.Prec), true
}

// Infix parses an infix or postfix operator from the table, if the next token
// is one with precedence at least minPrec.
func (o Operators[T, E]) Infix(s *State[T, E], p Pratt[T, E], left green.Node[T, E], minPrec int) (green.Node[T, E], bool) {
	op, ok := o[s.Peek()]
	if !ok || op.Prec < minPrec {
		return green.Node[T, E]{}, false
	}
	if op.Postfix {
		return Postfix(s, left, op.Kind), true
	}
	return Binary(s, p, left, op.Kind, op.Prec, op.Assoc), true
}

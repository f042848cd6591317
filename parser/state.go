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
	"slices"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/token"
)

// DefaultMaxDepth is the nesting limit used when none is configured.
const DefaultMaxDepth = 1000

// State is the parser's view of a token stream, and the builder of the tree
// being produced.
//
// Whitespace and comments are never seen by grammar code: they are pushed into
// the tree automatically as the parser moves past them.
type State[T language.TokenKind, E language.ElementKind] struct {
	lang   language.Language[T, E]
	file   *source.File
	tokens token.Stream[T]
	pos    int

	sink   *green.Builder[T, E]
	report *report.Report

	depth, maxDepth int
	overflowed      bool

	reuse *reuser[T, E]

	// The most recent fold of a non-associative operator, used to detect
	// chains like a == b == c.
	chain struct {
		node green.Node[T, E]
		prec int
	}
}

// Language returns the language being parsed.
func (s *State[T, E]) Language() language.Language[T, E] {
	return s.lang
}

// File returns the file being parsed.
func (s *State[T, E]) File() *source.File {
	return s.file
}

// Report returns the report diagnostics are added to.
func (s *State[T, E]) Report() *report.Report {
	return s.report
}

// Depth returns the current nesting depth.
func (s *State[T, E]) Depth() int {
	return s.depth
}

// Current returns the next significant token, pushing any trivia before it
// into the tree.
func (s *State[T, E]) Current() token.Token[T] {
	s.skipTrivia()
	return s.tokens[s.pos]
}

// Peek returns the kind of the next significant token.
func (s *State[T, E]) Peek() T {
	return s.Current().Kind
}

// Nth returns the kind of the n-th significant token ahead, counting from
// zero. Returns the end-of-stream kind past the end.
func (s *State[T, E]) Nth(n int) T {
	for i := s.pos; i < len(s.tokens); i++ {
		kind := s.tokens[i].Kind
		if language.IsIgnored(kind) {
			continue
		}
		if n == 0 || language.IsEOF(kind) {
			return kind
		}
		n--
	}
	return s.lang.EOF()
}

// At returns whether the next significant token has the given kind.
func (s *State[T, E]) At(kind T) bool {
	return s.Peek() == kind
}

// AtAny returns whether the next significant token has any of the given
// kinds.
func (s *State[T, E]) AtAny(kinds ...T) bool {
	return slices.Contains(kinds, s.Peek())
}

// AtEOF returns whether all significant tokens have been consumed.
func (s *State[T, E]) AtEOF() bool {
	return language.IsEOF(s.Peek())
}

// Text returns the text of tok.
func (s *State[T, E]) Text(tok token.Token[T]) string {
	return tok.Text(s.file)
}

// Span returns the span of tok.
func (s *State[T, E]) Span(tok token.Token[T]) source.Span {
	return tok.Span(s.file)
}

// Bump consumes the next significant token into the tree. At the end of the
// stream this does nothing.
func (s *State[T, E]) Bump() {
	tok := s.Current()
	if language.IsEOF(tok.Kind) {
		return
	}
	s.sink.PushLeaf(tok.Kind, tok.Len())
	s.pos++
}

// Eat consumes the next significant token if it has the given kind.
func (s *State[T, E]) Eat(kind T) bool {
	if !s.At(kind) {
		return false
	}
	s.Bump()
	return true
}

// Expect consumes the next significant token if it has the given kind, and
// otherwise records that want was expected. Nothing is consumed on failure.
func (s *State[T, E]) Expect(kind T, want string) bool {
	if s.Eat(kind) {
		return true
	}
	tok := s.Current()
	s.Error(report.ExpectedToken{Span: s.Span(tok), Want: want, Got: s.Describe(tok)})
	return false
}

// Describe returns a description of tok for use in diagnostics.
func (s *State[T, E]) Describe(tok token.Token[T]) string {
	if language.IsEOF(tok.Kind) {
		return "end of input"
	}
	return fmt.Sprintf("`%s`", s.Text(tok))
}

// Error adds a diagnostic at level [report.Error].
//
// Once the nesting limit has been exceeded, further diagnostics are
// discarded, since they would only describe the fallout.
func (s *State[T, E]) Error(d report.Diagnose) *report.Diagnostic {
	if s.overflowed {
		var discard report.Report
		return discard.Error(d)
	}
	return s.report.Error(d)
}

// Checkpoint returns a checkpoint for a node that starts at the next
// significant token. Trivia before it stays outside.
func (s *State[T, E]) Checkpoint() green.Checkpoint {
	s.skipTrivia()
	return s.sink.Checkpoint()
}

// CheckpointBefore returns a checkpoint for a node that starts with n, which
// must be the most recently finished node.
func (s *State[T, E]) CheckpointBefore(n green.Node[T, E]) green.Checkpoint {
	return s.sink.CheckpointBefore(n)
}

// Finish wraps everything consumed since cp into a node of the given kind.
//
// Whitespace and comments after the last token are left outside the node, so
// that nodes never begin or end with trivia.
func (s *State[T, E]) Finish(cp green.Checkpoint, kind E) green.Node[T, E] {
	return s.sink.FinishNodeTrimmed(cp, kind)
}

// Node parses a node of the given kind by calling parse.
func (s *State[T, E]) Node(kind E, parse func()) green.Node[T, E] {
	if !s.enter() {
		return s.overflow()
	}
	defer s.leave()

	cp := s.Checkpoint()
	parse()
	return s.Finish(cp, kind)
}

// Reusable is like [State.Node], but may reuse a node from the previous tree
// instead of calling parse.
//
// A previous node of the same kind is reused if it starts where the next
// token was before the edits, no edit touches it, no diagnostic was reported
// inside it, and the tokens it contains are exactly the tokens that follow in
// the new stream.
//
// Whether a construct ends can depend on the token after it: an expression
// statement "1 + 2" at the end of a file grows if "* 3" is appended. closers
// rules this out. If any are given, a previous node is only reused if its
// last token is one of them, such as a statement terminator or a closing
// bracket. Without closers, only use this for constructs whose extent never
// depends on what follows them.
func (s *State[T, E]) Reusable(kind E, parse func(), closers ...T) green.Node[T, E] {
	if s.reuse != nil && !s.overflowed {
		s.skipTrivia()
		if old, leaves, ok := s.reuse.take(kind, closers, s.tokens, s.pos); ok {
			n := s.sink.Arena().Import(old)
			s.sink.Push(n.AsTree())
			s.pos += leaves
			return n
		}
	}
	return s.Node(kind, parse)
}

// Try runs parse speculatively. If parse returns false, everything it
// consumed, built and reported is rolled back.
func (s *State[T, E]) Try(parse func() bool) bool {
	s.skipTrivia()
	pos, cp, diags := s.pos, s.sink.Checkpoint(), s.report.Len()
	chain := s.chain
	if parse() {
		return true
	}
	s.pos = pos
	s.sink.Restore(cp)
	s.report.Diagnostics = s.report.Diagnostics[:diags]
	s.chain = chain
	return false
}

// Unexpected reports the next token as unexpected and wraps it in an error
// node. At the end of the stream, an empty error node is produced instead.
//
// where describes what was being parsed, such as "expression".
func (s *State[T, E]) Unexpected(where string) green.Node[T, E] {
	tok := s.Current()
	if language.IsEOF(tok.Kind) {
		s.Error(report.UnexpectedEOF{Span: s.Span(tok), Where: where})
	} else {
		s.Error(report.ExpectedToken{Span: s.Span(tok), Want: where, Got: s.Describe(tok)})
	}

	cp := s.Checkpoint()
	s.Bump()
	return s.Finish(cp, s.lang.ErrorElement())
}

// Recover skips tokens until one of the given kinds (or the end of the
// stream), wrapping them in an error node. Returns the zero node if nothing
// was skipped.
//
// No diagnostic is recorded; the caller is expected to have reported what
// went wrong.
func (s *State[T, E]) Recover(kinds ...T) green.Node[T, E] {
	if s.AtEOF() || s.AtAny(kinds...) {
		return green.Node[T, E]{}
	}
	cp := s.Checkpoint()
	for !s.AtEOF() && !s.AtAny(kinds...) {
		s.Bump()
	}
	return s.Finish(cp, s.lang.ErrorElement())
}

// skipTrivia pushes whitespace and comments into the tree.
func (s *State[T, E]) skipTrivia() {
	for s.pos < len(s.tokens)-1 && language.IsIgnored(s.tokens[s.pos].Kind) {
		tok := s.tokens[s.pos]
		s.sink.PushLeaf(tok.Kind, tok.Len())
		s.pos++
	}
}

func (s *State[T, E]) enter() bool {
	if s.depth >= s.maxDepth {
		return false
	}
	s.depth++
	return true
}

func (s *State[T, E]) leave() {
	s.depth--
}

// overflow handles exceeding the nesting limit: it reports the problem once
// and wraps the rest of the input in an error node, so that every enclosing
// construct finishes immediately.
func (s *State[T, E]) overflow() green.Node[T, E] {
	if !s.overflowed {
		s.report.Error(report.SyntaxError{
			Span:    s.Span(s.Current()),
			Message: fmt.Sprintf("nesting is too deep (the limit is %d)", s.maxDepth),
		})
		s.overflowed = true
	}

	cp := s.Checkpoint()
	for !s.AtEOF() {
		s.Bump()
	}
	return s.Finish(cp, s.lang.ErrorElement())
}

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

package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/token"
)

// State is the scanning cursor handed to a [Rule].
//
// A rule looks at the text ahead of the cursor, advances it, and calls
// [State.Emit] to produce a token covering everything consumed since the
// previous token. All offsets taken and returned by State are relative to the
// source being lexed; tokens record absolute offsets.
type State[T language.TokenKind] struct {
	text string
	base int
	file *source.File
	lang language.Tokens[T]

	pos, mark int
	tokens    token.Stream[T]
	problems  []problem

	// reach is one past the furthest offset examined since the last emitted
	// token; a value past the end of the text means the rule saw the end.
	// reaches[i] is the furthest absolute reach of tokens[:i+1], so it never
	// decreases.
	reach   int
	reaches []int

	// Indices of the last error token produced by the dead-lock guard, and
	// of its problem, which later unrecognized input may be merged into.
	guard, guardProblem int
	ice                 report.Report
}

// problem is a lexical error. It is kept as plain absolute offsets so that it
// can be carried across an incremental relex, where the file changes.
type problem struct {
	start, end   int
	message      string
	unrecognized bool
}

// Text returns the full text being lexed. Like [State.Rest], this counts as
// looking at all of it.
func (s *State[T]) Text() string {
	s.see(len(s.text) + 1)
	return s.text
}

// Len returns the length of the text being lexed.
func (s *State[T]) Len() int {
	return len(s.text)
}

// Pos returns the cursor's offset.
func (s *State[T]) Pos() int {
	return s.pos
}

// Mark returns the offset at which the token being scanned starts, i.e., the
// end of the last emitted token.
func (s *State[T]) Mark() int {
	return s.mark
}

// Done returns whether the cursor is at the end of the text.
func (s *State[T]) Done() bool {
	if s.pos >= len(s.text) {
		s.see(len(s.text) + 1)
		return true
	}
	return false
}

// Rest returns the text after the cursor.
//
// A rule that inspects the result is assumed to have looked at all of it,
// so the token it produces is never reused by an incremental relex. Prefer
// [State.PeekAt] and [State.StartsWith] for bounded lookahead.
func (s *State[T]) Rest() string {
	s.see(len(s.text) + 1)
	return s.text[s.pos:]
}

// see records that a rule examined the text up to end.
func (s *State[T]) see(end int) {
	s.reach = max(s.reach, end)
}

// Peek returns the rune after the cursor, or -1 at the end of the text.
func (s *State[T]) Peek() rune {
	return s.PeekAt(0)
}

// PeekAt returns the n-th rune after the cursor, counting from zero, or -1 if
// the text ends first.
func (s *State[T]) PeekAt(n int) rune {
	pos := s.pos
	for {
		if pos >= len(s.text) {
			s.see(len(s.text) + 1)
			return -1
		}
		r, size := utf8.DecodeRuneInString(s.text[pos:])
		pos += size
		if n == 0 {
			s.see(pos)
			return r
		}
		n--
	}
}

// Bump advances the cursor past one rune and returns it. At the end of the
// text, returns -1 and does not move.
func (s *State[T]) Bump() rune {
	if s.Done() {
		return -1
	}
	r, size := utf8.DecodeRuneInString(s.text[s.pos:])
	s.pos += size
	s.see(s.pos)
	return r
}

// StartsWith returns whether the text after the cursor starts with prefix.
func (s *State[T]) StartsWith(prefix string) bool {
	rest := s.text[s.pos:]
	n := 0
	for n < len(prefix) && n < len(rest) && rest[n] == prefix[n] {
		n++
	}
	if n == len(prefix) {
		s.see(s.pos + n)
		return true
	}
	s.see(s.pos + n + 1)
	return false
}

// ConsumeIf advances past prefix if the text after the cursor starts with it.
func (s *State[T]) ConsumeIf(prefix string) bool {
	if !s.StartsWith(prefix) {
		return false
	}
	s.pos += len(prefix)
	return true
}

// TakeWhile advances past runes for which pred is true, and returns the number
// of bytes consumed.
func (s *State[T]) TakeWhile(pred func(rune) bool) int {
	start := s.pos
	for {
		if s.Done() {
			s.see(len(s.text) + 1)
			break
		}
		r, size := utf8.DecodeRuneInString(s.text[s.pos:])
		s.see(s.pos + size)
		if !pred(r) {
			break
		}
		s.pos += size
	}
	return s.pos - start
}

// Seek moves the cursor to pos, which may be anywhere between [State.Mark]
// and the end of the text.
//
// Rules that need to back out of a speculative scan use this. Moving before
// the mark would un-lex an emitted token, and panics.
func (s *State[T]) Seek(pos int) {
	if pos < s.mark || pos > len(s.text) {
		panic(fmt.Sprintf("lexer: seek to %d outside of [%d, %d]", pos, s.mark, len(s.text)))
	}
	s.pos = pos
}

// Emit produces a token of the given kind covering [Mark, Pos). Returns false,
// and emits nothing, if the cursor has not moved.
func (s *State[T]) Emit(kind T) bool {
	if s.pos <= s.mark {
		return false
	}
	s.tokens = append(s.tokens, token.Token[T]{
		Kind:  kind,
		Start: s.base + s.mark,
		End:   s.base + s.pos,
	})
	reach := s.base + max(s.reach, s.pos)
	if n := len(s.reaches); n > 0 {
		reach = max(reach, s.reaches[n-1])
	}
	s.reaches = append(s.reaches, reach)
	s.mark = s.pos
	s.reach = s.pos
	return true
}

// Errorf records a lexical error covering [Mark, Pos), the token currently
// being scanned.
func (s *State[T]) Errorf(format string, args ...any) {
	s.problems = append(s.problems, problem{
		start:   s.base + s.mark,
		end:     s.base + s.pos,
		message: fmt.Sprintf(format, args...),
	})
}

// Last returns the most recently emitted token.
func (s *State[T]) Last() (token.Token[T], bool) {
	if len(s.tokens) == 0 {
		return token.Token[T]{}, false
	}
	return s.tokens[len(s.tokens)-1], true
}

// LastSignificant returns the most recently emitted token that is not
// whitespace or a comment.
func (s *State[T]) LastSignificant() (token.Token[T], bool) {
	for i := len(s.tokens) - 1; i >= 0; i-- {
		if !language.IsIgnored(s.tokens[i].Kind) {
			return s.tokens[i], true
		}
	}
	return token.Token[T]{}, false
}

// step runs rule once, converting a panic into an internal error.
func (s *State[T]) step(rule Rule[T]) (ok bool) {
	defer s.ice.CatchICE(true, func(d *report.Diagnostic) {
		d.Apply(report.Snippet(s.file.Span(s.base+s.mark, s.base+s.pos), "while lexing this"))
	})
	rule(s)
	return true
}

// unrecognized consumes a single rune that no rule matched, emitting it as an
// error token. Consecutive unrecognized runes are merged into one token.
func (s *State[T]) unrecognized() {
	s.pos = s.mark
	s.Bump()

	if s.guard >= 0 && s.guard == len(s.tokens)-1 {
		last := &s.tokens[s.guard]
		last.End = s.base + s.pos
		s.problems[s.guardProblem].end = last.End
		s.reaches[s.guard] = max(s.reaches[s.guard], s.base+s.reach)
		s.mark = s.pos
		s.reach = s.pos
		return
	}

	s.guardProblem = len(s.problems)
	s.problems = append(s.problems, problem{
		start:        s.base + s.mark,
		end:          s.base + s.pos,
		unrecognized: true,
	})
	s.Emit(s.lang.ErrorToken())
	s.guard = len(s.tokens) - 1
}

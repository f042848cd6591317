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

// Package lexer is the engine that drives a language's tokenizer.
//
// A language supplies a [Rule]: a function that scans one token (or a few)
// at the cursor of a [State]. [Run] calls it in a loop, guaranteeing that
// lexing always terminates, that the tokens it produces exactly cover the
// input, and that the stream ends with exactly one end-of-stream token.
//
// Lexing can be incremental: given the [Output] of a previous run and the
// edits made since, Run keeps the tokens before the first edit and only
// rescans from there.
package lexer

import (
	"fmt"
	"slices"
	"sort"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/token"
)

// backtrack is how many tokens before the first edit are rescanned anyway,
// because the edit may extend the token that abuts it. Tokens whose rule
// looked past the first edit are rescanned too, however far back they are.
const backtrack = 1

// Rule scans the text at the cursor of s.
//
// A rule should consume input and emit at least one token. If it consumes
// nothing, the engine treats the next rune as unrecognized.
type Rule[T language.TokenKind] func(s *State[T])

// Lexer is the contract of a language's lexer.
type Lexer[T language.TokenKind] interface {
	// Lex tokenizes src. If cache is the output of lexing the text src had
	// before edits were applied to it, it is used to avoid rescanning.
	Lex(src source.Source, edits []source.TextEdit, cache *Output[T]) Output[T]
}

// Output is the result of lexing: a token stream and the diagnostics found
// while producing it.
//
// An Output is also the cache for the next incremental lex of the same
// document.
type Output[T language.TokenKind] struct {
	Tokens token.Stream[T]
	Report *report.Report

	// The number of tokens that were carried over from the cache instead of
	// being rescanned.
	Reused int

	text     string
	base     int
	problems []problem
	reaches  []int
}

// Text returns the text this output was lexed from.
func (o *Output[T]) Text() string {
	return o.text
}

// New returns a [Lexer] that runs rule.
func New[T language.TokenKind](lang language.Tokens[T], rule Rule[T]) Lexer[T] {
	return ruleLexer[T]{lang, rule}
}

type ruleLexer[T language.TokenKind] struct {
	lang language.Tokens[T]
	rule Rule[T]
}

func (l ruleLexer[T]) Lex(src source.Source, edits []source.TextEdit, cache *Output[T]) Output[T] {
	return Run(src, l.lang, l.rule, edits, cache)
}

// Run lexes src with rule.
//
// If cache is non-nil, it must be the output of lexing the text of src as it
// was before edits were applied. Tokens that end before the first edit (less
// a small backtrack) are reused without being rescanned. If the text is
// unchanged, the cached stream is returned as-is.
func Run[T language.TokenKind](
	src source.Source,
	lang language.Tokens[T],
	rule Rule[T],
	edits []source.TextEdit,
	cache *Output[T],
) Output[T] {
	s := &State[T]{
		text:  src.Text(),
		base:  src.Base(),
		file:  src.File(),
		lang:  lang,
		guard: -1,
	}

	if cache != nil && len(cache.Tokens) > 0 && cache.base == s.base {
		if cache.text == s.text {
			s.tokens = cache.Tokens
			s.problems = cache.problems
			s.reaches = cache.reaches
			return s.finish(len(cache.Tokens))
		}

		if keep := s.resumable(cache, edits); keep > 0 {
			s.tokens = slices.Clone(cache.Tokens[:keep])
			s.reaches = slices.Clone(cache.reaches[:keep])
			s.pos = s.tokens[keep-1].End - s.base
			s.mark = s.pos
			s.reach = s.pos
			for _, p := range cache.problems {
				if p.end-s.base <= s.pos {
					s.problems = append(s.problems, p)
				}
			}
			s.scan(rule)
			return s.finish(keep)
		}
	}

	s.scan(rule)
	return s.finish(0)
}

// resumable returns how many tokens of cache may be kept given edits.
func (s *State[T]) resumable(cache *Output[T], edits []source.TextEdit) int {
	if len(edits) == 0 || len(cache.reaches) != len(cache.Tokens) {
		return 0
	}
	relex := source.RelexPoint(edits)

	// Never keep the end-of-stream token.
	tokens := cache.Tokens[:len(cache.Tokens)-1]
	keep := sort.Search(len(tokens), func(i int) bool {
		return tokens[i].End-s.base > relex
	})
	keep = max(keep-backtrack, 0)

	// A token is only as stable as the text its rule looked at to produce
	// it: "2." followed by an inserted "5" must become one number.
	for keep > 0 && cache.reaches[keep-1]-s.base > relex {
		keep--
	}
	if keep == 0 {
		return 0
	}

	// Kept tokens are not rescanned, so the text they cover must not have
	// changed.
	end := tokens[keep-1].End - s.base
	if end > len(s.text) || end > len(cache.text) || s.text[:end] != cache.text[:end] {
		return 0
	}
	return keep
}

// scan runs rule until the input is exhausted, then appends the
// end-of-stream token.
func (s *State[T]) scan(rule Rule[T]) {
	for !s.Done() {
		before, n := s.pos, len(s.tokens)
		if !s.step(rule) {
			// The rule panicked; give up on the rest of the input.
			s.pos = len(s.text)
			s.Emit(s.lang.ErrorToken())
			break
		}
		if s.pos <= before && len(s.tokens) == n {
			s.unrecognized()
		}
	}

	// A rule that consumed input without emitting it.
	if s.pos > s.mark {
		s.Errorf("unterminated token")
		s.Emit(s.lang.ErrorToken())
	}

	end := s.base + len(s.text)
	s.tokens = append(s.tokens, token.Token[T]{Kind: s.lang.EOF(), Start: end, End: end})
	s.reaches = append(s.reaches, end+1)
}

// finish builds the output.
func (s *State[T]) finish(reused int) Output[T] {
	r := new(report.Report)
	for _, p := range s.problems {
		span := s.file.Span(p.start, p.end)
		msg := p.message
		if p.unrecognized {
			msg = fmt.Sprintf("unrecognized input %q", span.Text())
		}
		r.Error(report.SyntaxError{Span: span, Message: msg})
	}
	r.Append(&s.ice)

	return Output[T]{
		Tokens:   s.tokens,
		Report:   r,
		Reused:   reused,
		text:     s.text,
		base:     s.base,
		problems: s.problems,
		reaches:  s.reaches,
	}
}

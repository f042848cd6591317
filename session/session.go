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

// Package session tracks the parse of a single document across edits.
//
// A [Session] remembers the last parse and feeds it back into the parser as
// the cache for the next one, so that each edit only relexes and reparses
// what it touched. It keeps the previous generation too, so that callers can
// find out which part of the tree changed.
package session

import (
	"github.com/charmbracelet/log"

	"github.com/bufbuild/oak/internal/logging"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/parser"
	"github.com/bufbuild/oak/source"
)

// Session is the parse state of one document. It is not safe for concurrent
// use; see the workspace package for that.
type Session[T language.TokenKind, E language.ElementKind] struct {
	parser parser.Parser[T, E]
	name   string
	log    *log.Logger

	current, previous *parser.Output[T, E]
}

// Option configures a [Session].
type Option func(*options)

type options struct {
	name string
	log  *log.Logger
}

// WithName sets the name used to identify the document in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger for parse events. By default, sessions do not
// log.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.log = logger }
}

// New returns an empty session that parses with p.
func New[T language.TokenKind, E language.ElementKind](p parser.Parser[T, E], opts ...Option) *Session[T, E] {
	o := options{log: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Session[T, E]{parser: p, name: o.name, log: o.log}
}

// Parse parses the document's new text. edits are the changes made to the
// text of the previous parse to obtain src; if nil, src is treated as a
// replacement of the whole document.
//
// If parsing fails, the session is unchanged.
func (s *Session[T, E]) Parse(src source.Source, edits []source.TextEdit) (*parser.Output[T, E], error) {
	out, err := s.parser.Parse(src, edits, s.current)
	if err != nil {
		s.log.Debug("parse failed",
			logging.FieldURI, s.name,
			logging.FieldError, err,
		)
		return nil, err
	}

	if s.current == nil || out.Root != s.current.Root {
		s.previous = s.current
	}
	s.current = &out

	s.log.Debug("parsed",
		logging.FieldURI, s.name,
		logging.FieldGeneration, out.Generation,
		logging.FieldEdits, len(edits),
		logging.FieldTokens, len(out.Lex.Tokens),
		logging.FieldLexReused, out.Lex.Reused,
		logging.FieldNodes, out.Root.Arena().Len(),
		logging.FieldReused, out.Reused,
		logging.FieldErrors, out.Report.Len(),
	)
	return s.current, nil
}

// Current returns the latest parse, or nil if there has been none.
func (s *Session[T, E]) Current() *parser.Output[T, E] {
	return s.current
}

// Previous returns the parse that preceded the current tree, or nil.
//
// Parses that returned the current tree unchanged do not count.
func (s *Session[T, E]) Previous() *parser.Output[T, E] {
	return s.previous
}

// Reset forgets all parses, so that the next one starts from scratch.
func (s *Session[T, E]) Reset() {
	s.current, s.previous = nil, nil
}

// Changed returns the range of the current document, in absolute offsets,
// that is not covered by top-level subtrees shared with the previous tree.
//
// Returns false if the trees are structurally identical. If there is no
// previous tree, the whole document has changed.
func (s *Session[T, E]) Changed() (start, end int, changed bool) {
	if s.current == nil {
		return 0, 0, false
	}
	cur := s.current.Red()
	if s.previous == nil {
		return cur.Start(), cur.End(), true
	}

	a, b := s.previous.Root, s.current.Root
	if a.Equal(b) {
		return 0, 0, false
	}

	na, nb := a.NumChildren(), b.NumChildren()
	prefix := 0
	for prefix < na && prefix < nb && a.Child(prefix).Equal(b.Child(prefix)) {
		prefix++
	}
	suffix := 0
	for suffix < na-prefix && suffix < nb-prefix &&
		a.Child(na-1-suffix).Equal(b.Child(nb-1-suffix)) {
		suffix++
	}

	return cur.OffsetOfChild(prefix), cur.OffsetOfChild(nb - suffix), true
}

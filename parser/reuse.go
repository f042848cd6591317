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
	"slices"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/source"
	"github.com/bufbuild/oak/token"
)

// reuser finds nodes of a previous tree that can be carried over into a new
// one.
type reuser[T language.TokenKind, E language.ElementKind] struct {
	root  green.Node[T, E]
	base  int
	edits source.EditMap

	// Absolute spans of the previous parse's diagnostics. Nodes touching any
	// of them are never reused, so that their diagnostics are reproduced.
	problems []source.Span

	hits int
}

func newReuser[T language.TokenKind, E language.ElementKind](prev *Output[T, E], edits []source.TextEdit) *reuser[T, E] {
	r := &reuser[T, E]{
		root:  prev.Root,
		base:  prev.base,
		edits: source.NewEditMap(edits),
	}
	for _, d := range prev.Report.Diagnostics {
		span := d.Primary()
		if span.IsZero() {
			// A diagnostic with no position could be about anything.
			return nil
		}
		r.problems = append(r.problems, span)
	}
	return r
}

// take looks for a reusable node of the given kind that starts at the token
// tokens[pos]. Returns the node and the number of tokens it covers.
func (r *reuser[T, E]) take(kind E, closers []T, tokens token.Stream[T], pos int) (green.Node[T, E], int, bool) {
	old, ok := r.edits.OldOffset(tokens[pos].Start - r.base)
	if !ok {
		return green.Node[T, E]{}, 0, false
	}
	target := old + r.base

	c := green.NewCursor(r.root, r.base)
	for {
		start, end := c.Offset(), c.End()
		switch {
		case start > target:
			return green.Node[T, E]{}, 0, false

		case start == target:
			if n, ok := c.Current().Node(); ok && n.Kind() == kind && r.clean(start, end) {
				if leaves, ok := aligned(n, closers, tokens[pos:]); ok {
					r.hits++
					return n, leaves, true
				}
			}
			if !c.StepNext() {
				return green.Node[T, E]{}, 0, false
			}

		case end <= target:
			if !c.StepAfter() {
				return green.Node[T, E]{}, 0, false
			}

		default:
			if !c.StepInto() {
				return green.Node[T, E]{}, 0, false
			}
		}
	}
}

// clean returns whether the old range [start, end) is untouched by edits and
// diagnostics.
func (r *reuser[T, E]) clean(start, end int) bool {
	if r.edits.Dirty(start-r.base, end-r.base) {
		return false
	}
	return !slices.ContainsFunc(r.problems, func(p source.Span) bool {
		return p.Touches(start, end)
	})
}

// aligned checks that the leaves of n are exactly the leading tokens of
// tokens, and that the last significant one is among closers, if any are
// given. Returns the number of leaves.
func aligned[T language.TokenKind, E language.ElementKind](n green.Node[T, E], closers []T, tokens token.Stream[T]) (int, bool) {
	i := 0
	var last T
	for leaf := range n.Leaves() {
		if i >= len(tokens) || language.IsEOF(leaf.Kind) {
			return 0, false
		}
		if tokens[i].Kind != leaf.Kind || tokens[i].Len() != leaf.Len {
			return 0, false
		}
		if !language.IsIgnored(leaf.Kind) {
			last = leaf.Kind
		}
		i++
	}
	if i == 0 || (len(closers) > 0 && !slices.Contains(closers, last)) {
		return 0, false
	}
	return i, true
}

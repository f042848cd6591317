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

// Package token defines the lexer's output unit and helpers over streams of
// them.
package token

import (
	"fmt"
	"slices"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/source"
)

// Token is a single lexed token: a kind and the absolute byte range it covers.
//
// Tokens carry no text; it is recovered by slicing the file they were lexed
// from.
type Token[T language.TokenKind] struct {
	Kind       T
	Start, End int
}

// Len returns the length of this token in bytes.
func (t Token[T]) Len() int {
	return t.End - t.Start
}

// Span returns this token's span within f.
func (t Token[T]) Span(f *source.File) source.Span {
	return f.Span(t.Start, t.End)
}

// Text returns this token's text within f.
func (t Token[T]) Text(f *source.File) string {
	return f.Slice(t.Start, t.End)
}

// String implements [fmt.Stringer].
func (t Token[T]) String() string {
	return fmt.Sprintf("%v@%d..%d", t.Kind, t.Start, t.End)
}

// Stream is the full output of a lexer: tokens in order, ending with a single
// end-of-stream token.
type Stream[T language.TokenKind] []Token[T]

// Search returns the index of the token containing offset.
//
// Zero-length tokens never contain an offset, except that the end of the
// stream maps to the final token. Returns -1 if offset is out of range.
func (s Stream[T]) Search(offset int) int {
	if len(s) == 0 || offset < s[0].Start || offset > s[len(s)-1].End {
		return -1
	}
	i, _ := slices.BinarySearchFunc(s, offset, func(t Token[T], offset int) int {
		switch {
		case t.End <= offset:
			return -1
		case t.Start > offset:
			return 1
		default:
			return 0
		}
	})
	return min(i, len(s)-1)
}

// End returns the end offset of the last token, or 0 for an empty stream.
func (s Stream[T]) End() int {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].End
}

// Check validates that the stream exactly covers [base, base+length) with no
// gaps or overlaps, and that it is terminated by exactly one end-of-stream
// token.
func (s Stream[T]) Check(base, length int) error {
	if len(s) == 0 {
		return fmt.Errorf("token: empty stream")
	}

	at := base
	for i, t := range s {
		switch {
		case t.Start != at:
			return fmt.Errorf("token: %v at index %d does not start at %d", t, i, at)
		case t.End < t.Start:
			return fmt.Errorf("token: %v at index %d has negative length", t, i)
		case language.IsEOF(t.Kind) != (i == len(s)-1):
			return fmt.Errorf("token: %v at index %d: end-of-stream must be last and unique", t, i)
		case t.Len() == 0 && i != len(s)-1:
			return fmt.Errorf("token: %v at index %d is empty", t, i)
		}
		at = t.End
	}

	if at != base+length {
		return fmt.Errorf("token: stream ends at %d, want %d", at, base+length)
	}
	return nil
}

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

package arena

import (
	"golang.org/x/exp/constraints"
)

// maxSlabChunk caps the size of a single slab chunk. Requests larger than
// this get a chunk of their own.
const maxSlabChunk = 1 << 16

// Slab is a bump allocator for slices of T.
//
// Slices returned by a Slab have their capacity clipped to their length, so
// appending to one of them can never clobber its neighbors.
//
// A zero Slab is empty and ready to use.
type Slab[T any] struct {
	chunk []T
	next  int // Length of the next chunk to allocate.
	used  int
}

// Copy allocates a new slice on the slab holding a copy of values.
func (s *Slab[T]) Copy(values []T) []T {
	out := s.Alloc(len(values))
	copy(out, values)
	return out
}

// Alloc allocates a zeroed slice of length n.
func (s *Slab[T]) Alloc(n int) []T {
	if n == 0 {
		return nil
	}
	if n > cap(s.chunk)-len(s.chunk) {
		s.grow(n)
	}

	start := len(s.chunk)
	s.chunk = s.chunk[:start+n]
	s.used += n
	return s.chunk[start : start+n : start+n]
}

// Len returns the total number of elements handed out by this slab.
func (s *Slab[T]) Len() int {
	return s.used
}

func (s *Slab[T]) grow(n int) {
	s.next = clamp(max(s.next*2, minChunkLen), minChunkLen, maxSlabChunk)
	s.chunk = make([]T, 0, max(s.next, n))
}

func clamp[N constraints.Integer](v, lo, hi N) N {
	return min(max(v, lo), hi)
}

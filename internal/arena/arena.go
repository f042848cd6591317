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

// Package arena provides region allocators that hand out compressed handles.
//
// A syntax tree built for one parse lives entirely inside the arenas of that
// parse. Nodes refer to each other through [Pointer]s, which are four bytes
// wide and only meaningful together with the [Arena] that minted them. This
// keeps trees cheap to copy around, makes them opaque to the GC (no deep
// pointer graphs), and means dropping a tree is dropping its arena.
package arena

import (
	"fmt"
	"iter"
	"math/bits"
	"strings"
)

// minChunkShift is the log2 of the length of the first chunk in an Arena.
const (
	minChunkShift = 4
	minChunkLen   = 1 << minChunkShift
)

// Pointer is a compressed pointer into an [Arena][T].
//
// The value of a pointer is one plus the number of values allocated before
// it, so the zero value is nil.
type Pointer[T any] uint32

// Nil returns whether this pointer is nil.
func (p Pointer[T]) Nil() bool {
	return p == 0
}

// In dereferences this pointer in the arena that allocated it.
//
// Passing a different arena returns an arbitrary value or panics. Panics if p
// is nil.
func (p Pointer[T]) In(a *Arena[T]) *T {
	return a.at(int(p))
}

// Arena is a bump allocator for values of type T.
//
// Values are stored in a table of chunks whose lengths double, mimicking the
// growth of an ordinary slice without ever moving a value once allocated.
// Lookup is O(1).
//
// A zero Arena is empty and ready to use.
type Arena[T any] struct {
	// Invariants:
	// 1. cap(chunks[0]) == minChunkLen.
	// 2. cap(chunks[n]) == 2*cap(chunks[n-1]).
	// 3. len(chunks[n]) == cap(chunks[n]) for all but the last chunk.
	chunks [][]T
}

// New allocates value on the arena and returns a pointer to it.
func (a *Arena[T]) New(value T) Pointer[T] {
	if a.chunks == nil {
		a.chunks = [][]T{make([]T, 0, minChunkLen)}
	}

	last := &a.chunks[len(a.chunks)-1]
	if len(*last) == cap(*last) {
		a.chunks = append(a.chunks, make([]T, 0, 2*cap(*last)))
		last = &a.chunks[len(a.chunks)-1]
	}

	*last = append(*last, value)
	return Pointer[T](a.Len())
}

// Len returns the number of values allocated so far.
func (a *Arena[T]) Len() int {
	if len(a.chunks) == 0 {
		return 0
	}
	n := len(a.chunks) - 1
	return chunkPrefix(n) + len(a.chunks[n])
}

// All iterates over every allocated value along with its pointer, in
// allocation order.
func (a *Arena[T]) All() iter.Seq2[Pointer[T], *T] {
	return func(yield func(Pointer[T], *T) bool) {
		var n Pointer[T]
		for _, chunk := range a.chunks {
			for i := range chunk {
				n++
				if !yield(n, &chunk[i]) {
					return
				}
			}
		}
	}
}

// String implements [fmt.Stringer]. Chunk boundaries are shown with a `|`.
func (a *Arena[T]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, chunk := range a.chunks {
		if i != 0 {
			b.WriteByte('|')
		}
		for j, v := range chunk {
			if j != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, v)
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (a *Arena[T]) at(ptr int) *T {
	if ptr == 0 {
		panic("arena: dereferenced nil pointer")
	}
	idx := ptr - 1
	if idx >= a.Len() {
		panic(fmt.Sprintf("arena: pointer out of range: %#x", ptr))
	}

	// The chunk starting indices are 0b0<<s, 0b1<<s, 0b11<<s, 0b111<<s, ...
	// for s == minChunkShift. Adding 1<<s turns these into successive powers
	// of two, whose bit length (minus s+1) is the chunk index.
	chunk := bits.UintSize - bits.LeadingZeros(uint(idx)+minChunkLen)
	chunk -= minChunkShift + 1
	return &a.chunks[chunk][idx-chunkPrefix(chunk)]
}

// chunkPrefix returns the total length of the first n chunks.
//
// 2^s + 2^(s+1) + ... + 2^(s+n-1) = 2^(s+n) - 2^s.
func chunkPrefix(n int) int {
	return (minChunkLen << n) - minChunkLen
}

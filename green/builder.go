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

package green

import (
	"fmt"

	"github.com/bufbuild/oak/language"
)

// Checkpoint is a position in a [Builder]'s list of pending children.
type Checkpoint int

// Builder assembles a green tree bottom-up.
//
// It keeps a flat list of pending children. Parsers push leaves as they
// consume tokens, take a [Checkpoint] before starting a construct, and call
// [Builder.FinishNode] to fold everything pushed since the checkpoint into a
// new node, which replaces them in the pending list.
type Builder[T language.TokenKind, E language.ElementKind] struct {
	arena   *Arena[T, E]
	pending []Tree[T, E]
}

// NewBuilder returns a builder that allocates into a.
func NewBuilder[T language.TokenKind, E language.ElementKind](a *Arena[T, E]) *Builder[T, E] {
	return &Builder[T, E]{arena: a}
}

// Arena returns the arena this builder allocates into.
func (b *Builder[T, E]) Arena() *Arena[T, E] {
	return b.arena
}

// Pending returns the number of pending children.
func (b *Builder[T, E]) Pending() int {
	return len(b.pending)
}

// Checkpoint returns a checkpoint at the end of the pending children.
func (b *Builder[T, E]) Checkpoint() Checkpoint {
	return Checkpoint(len(b.pending))
}

// CheckpointBefore returns a checkpoint immediately before n, which must be a
// pending child.
//
// This is how an infix operator wraps an already-built left operand: it
// finishes a node at the checkpoint before that operand.
func (b *Builder[T, E]) CheckpointBefore(n Node[T, E]) Checkpoint {
	for i := len(b.pending) - 1; i >= 0; i-- {
		if m, ok := b.pending[i].Node(); ok && m == n {
			return Checkpoint(i)
		}
	}
	panic(fmt.Sprintf("green: %v is not a pending child", n))
}

// Restore discards every child pushed after cp.
func (b *Builder[T, E]) Restore(cp Checkpoint) {
	b.pending = b.pending[:b.check(cp)]
}

// PushLeaf pushes a leaf.
func (b *Builder[T, E]) PushLeaf(kind T, length int) {
	b.pending = append(b.pending, b.arena.Leaf(kind, length))
}

// Push pushes an already-built tree. Nodes from other arenas are imported.
func (b *Builder[T, E]) Push(t Tree[T, E]) {
	if n, ok := t.Node(); ok && n.arena != b.arena {
		t = b.arena.Import(n).AsTree()
	}
	b.pending = append(b.pending, t)
}

// FinishNode folds every child pushed since cp into a new node of the given
// kind, and pushes that node in their place.
func (b *Builder[T, E]) FinishNode(cp Checkpoint, kind E) Node[T, E] {
	i := b.check(cp)
	n := b.arena.NewNode(kind, b.pending[i:])
	b.pending = append(b.pending[:i], n.AsTree())
	return n
}

// FinishNodeTrimmed is like [Builder.FinishNode], except that trailing
// whitespace and comment leaves stay pending after the new node instead of
// being folded into it.
func (b *Builder[T, E]) FinishNodeTrimmed(cp Checkpoint, kind E) Node[T, E] {
	i := b.check(cp)
	j := len(b.pending)
	for j > i {
		leaf, ok := b.pending[j-1].Leaf()
		if !ok || !language.IsIgnored(leaf.Kind) {
			break
		}
		j--
	}

	n := b.arena.NewNode(kind, b.pending[i:j])
	trailing := len(b.pending) - j
	b.pending[i] = n.AsTree()
	copy(b.pending[i+1:], b.pending[j:])
	b.pending = b.pending[:i+1+trailing]
	return n
}

// Finish folds all pending children into a root node of the given kind and
// resets the builder.
func (b *Builder[T, E]) Finish(kind E) Node[T, E] {
	n := b.arena.NewNode(kind, b.pending)
	b.pending = b.pending[:0]
	return n
}

func (b *Builder[T, E]) check(cp Checkpoint) int {
	if cp < 0 || int(cp) > len(b.pending) {
		panic(fmt.Sprintf("green: checkpoint %d out of range [0, %d]", cp, len(b.pending)))
	}
	return int(cp)
}

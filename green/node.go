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
	"hash/maphash"
	"iter"
	"strings"

	"github.com/bufbuild/oak/internal/arena"
	"github.com/bufbuild/oak/language"
)

// Node is a handle to an immutable node in an [Arena].
//
// The zero Node is not a node; see [Node.IsZero]. Nodes are comparable, and
// == is identity: two handles are == only if they refer to the same node in
// the same arena. Use [Node.Equal] for structural comparison.
type Node[T language.TokenKind, E language.ElementKind] struct {
	arena *Arena[T, E]
	ptr   arena.Pointer[rawNode[T, E]]
}

// Leaf is a token in a green tree: a kind and a length, but no text.
type Leaf[T language.TokenKind] struct {
	Kind T
	Len  int
}

// Tree is either a [Node] or a [Leaf].
type Tree[T language.TokenKind, E language.ElementKind] struct {
	arena *Arena[T, E]
	raw   rawTree[T, E]
}

// IsZero returns whether this is the zero node.
func (n Node[T, E]) IsZero() bool {
	return n.arena == nil || n.ptr.Nil()
}

// Arena returns the arena this node lives in.
func (n Node[T, E]) Arena() *Arena[T, E] {
	return n.arena
}

// Kind returns this node's kind.
func (n Node[T, E]) Kind() E {
	return n.raw().kind
}

// Len returns the length of the text this node spans, which is always the sum
// of its children's lengths.
func (n Node[T, E]) Len() int {
	if n.IsZero() {
		return 0
	}
	return int(n.raw().textLen)
}

// Hash returns this node's structural hash.
//
// Structurally equal nodes have equal hashes, regardless of which arena they
// live in.
func (n Node[T, E]) Hash() uint64 {
	return n.raw().hash
}

// NumChildren returns the number of children this node has.
func (n Node[T, E]) NumChildren() int {
	if n.IsZero() {
		return 0
	}
	return len(n.raw().children)
}

// Child returns the i-th child of this node.
func (n Node[T, E]) Child(i int) Tree[T, E] {
	return Tree[T, E]{n.arena, n.raw().children[i]}
}

// Children iterates over this node's children, along with their indices.
func (n Node[T, E]) Children() iter.Seq2[int, Tree[T, E]] {
	return func(yield func(int, Tree[T, E]) bool) {
		if n.IsZero() {
			return
		}
		for i, c := range n.raw().children {
			if !yield(i, Tree[T, E]{n.arena, c}) {
				return
			}
		}
	}
}

// Leaves iterates over the leaves under this node, in order.
func (n Node[T, E]) Leaves() iter.Seq[Leaf[T]] {
	return func(yield func(Leaf[T]) bool) {
		if n.IsZero() {
			return
		}

		type frame struct {
			node Node[T, E]
			next int
		}
		stack := []frame{{node: n}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == top.node.NumChildren() {
				stack = stack[:len(stack)-1]
				continue
			}
			c := top.node.Child(top.next)
			top.next++

			if sub, ok := c.Node(); ok {
				stack = append(stack, frame{node: sub})
				continue
			}
			leaf, _ := c.Leaf()
			if !yield(leaf) {
				return
			}
		}
	}
}

// AsTree wraps this node in a [Tree].
func (n Node[T, E]) AsTree() Tree[T, E] {
	return Tree[T, E]{arena: n.arena, raw: rawTree[T, E]{node: n.ptr}}
}

// Equal returns whether two nodes are structurally equal: they have the same
// kind and their children are pairwise structurally equal.
//
// The nodes may live in different arenas.
func (n Node[T, E]) Equal(m Node[T, E]) bool {
	if n.IsZero() || m.IsZero() {
		return n.IsZero() == m.IsZero()
	}

	type pair struct{ a, b Node[T, E] }
	stack := []pair{{n, m}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p.a == p.b {
			continue
		}

		ra, rb := p.a.raw(), p.b.raw()
		if ra.hash != rb.hash || ra.textLen != rb.textLen ||
			ra.kind != rb.kind || len(ra.children) != len(rb.children) {
			return false
		}
		for i := range ra.children {
			ca, cb := ra.children[i], rb.children[i]
			switch {
			case ca.node.Nil() != cb.node.Nil():
				return false
			case ca.node.Nil():
				if ca.kind != cb.kind || ca.len != cb.len {
					return false
				}
			default:
				stack = append(stack, pair{Node[T, E]{p.a.arena, ca.node}, Node[T, E]{p.b.arena, cb.node}})
			}
		}
	}
	return true
}

// String implements [fmt.Stringer].
//
// Nodes are printed as s-expressions of kinds, with leaves as kind:length.
func (n Node[T, E]) String() string {
	if n.IsZero() {
		return "<nil>"
	}
	var b strings.Builder
	n.AsTree().format(&b)
	return b.String()
}

func (n Node[T, E]) raw() *rawNode[T, E] {
	return n.ptr.In(&n.arena.nodes)
}

// IsNode returns whether this tree is a node.
func (t Tree[T, E]) IsNode() bool {
	return !t.raw.node.Nil()
}

// Node returns this tree as a node, if it is one.
func (t Tree[T, E]) Node() (Node[T, E], bool) {
	if !t.IsNode() {
		return Node[T, E]{}, false
	}
	return Node[T, E]{t.arena, t.raw.node}, true
}

// Leaf returns this tree as a leaf, if it is one.
func (t Tree[T, E]) Leaf() (Leaf[T], bool) {
	if t.IsNode() {
		return Leaf[T]{}, false
	}
	return Leaf[T]{Kind: t.raw.kind, Len: int(t.raw.len)}, true
}

// Len returns the length of the text this tree spans.
func (t Tree[T, E]) Len() int {
	return int(t.raw.length(t.arena))
}

// Hash returns this tree's structural hash.
func (t Tree[T, E]) Hash() uint64 {
	return t.raw.hash(t.arena)
}

// Equal returns whether two trees are structurally equal.
func (t Tree[T, E]) Equal(u Tree[T, E]) bool {
	a, aok := t.Node()
	b, bok := u.Node()
	switch {
	case aok != bok:
		return false
	case aok:
		return a.Equal(b)
	default:
		return t.raw.kind == u.raw.kind && t.raw.len == u.raw.len
	}
}

// String implements [fmt.Stringer].
func (t Tree[T, E]) String() string {
	var b strings.Builder
	t.format(&b)
	return b.String()
}

func (t Tree[T, E]) format(b *strings.Builder) {
	type frame struct {
		node Node[T, E]
		next int
	}
	var stack []frame

	write := func(t Tree[T, E]) {
		if n, ok := t.Node(); ok {
			fmt.Fprintf(b, "(%v", n.Kind())
			stack = append(stack, frame{node: n})
			return
		}
		leaf, _ := t.Leaf()
		fmt.Fprintf(b, "%v:%d", leaf.Kind, leaf.Len)
	}

	write(t)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == top.node.NumChildren() {
			b.WriteByte(')')
			stack = stack[:len(stack)-1]
			continue
		}
		b.WriteByte(' ')
		c := top.node.Child(top.next)
		top.next++
		write(c)
	}
}

func (r rawTree[T, E]) length(a *Arena[T, E]) uint32 {
	if r.node.Nil() {
		return r.len
	}
	return r.node.In(&a.nodes).textLen
}

func (r rawTree[T, E]) hash(a *Arena[T, E]) uint64 {
	if r.node.Nil() {
		return maphash.Comparable(seed, r)
	}
	return r.node.In(&a.nodes).hash
}

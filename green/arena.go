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

// Package green implements immutable, position-free syntax trees.
//
// A green tree records only shape: every node has a kind, a cached length and
// a list of children, each of which is either another node or a token leaf
// (a kind and a length). Positions are computed on demand by the red overlay
// in package red.
//
// All nodes of one tree live in an [Arena]. Nodes are handles into that arena,
// so they are cheap to copy and never dangle as long as the arena is
// reachable. Two trees built separately can be compared structurally with
// [Node.Equal], which is the basis of incremental reuse.
package green

import (
	"fmt"
	"hash/maphash"
	"math"

	"github.com/bufbuild/oak/internal/arena"
	"github.com/bufbuild/oak/language"
)

// seed is shared by every arena in the process, so that hashes of
// structurally equal trees agree even across arenas.
var seed = maphash.MakeSeed()

// Arena owns every node of one green tree.
//
// A zero Arena is empty and ready to use. Arenas are not safe for concurrent
// mutation, but nodes may be read concurrently once built.
type Arena[T language.TokenKind, E language.ElementKind] struct {
	nodes    arena.Arena[rawNode[T, E]]
	children arena.Slab[rawTree[T, E]]

	// Non-nil when interning is enabled.
	interned map[uint64][]arena.Pointer[rawNode[T, E]]
	hits     int
}

type rawNode[T language.TokenKind, E language.ElementKind] struct {
	kind     E
	textLen  uint32
	hash     uint64
	children []rawTree[T, E]
}

// rawTree is a child slot: a node pointer, or a leaf if the pointer is nil.
type rawTree[T language.TokenKind, E language.ElementKind] struct {
	node arena.Pointer[rawNode[T, E]]
	kind T
	len  uint32
}

// NewArena returns a new, empty arena.
func NewArena[T language.TokenKind, E language.ElementKind]() *Arena[T, E] {
	return new(Arena[T, E])
}

// Interning enables or disables interning.
//
// While interning is enabled, [Arena.NewNode] returns an existing node if one
// that is structurally equal to the requested one already lives in this
// arena, so that identical subtrees share one handle.
func (a *Arena[T, E]) Interning(enable bool) *Arena[T, E] {
	switch {
	case enable && a.interned == nil:
		a.interned = make(map[uint64][]arena.Pointer[rawNode[T, E]])
	case !enable:
		a.interned = nil
	}
	return a
}

// Len returns the number of nodes allocated in this arena.
func (a *Arena[T, E]) Len() int {
	return a.nodes.Len()
}

// InternHits returns how many calls to [Arena.NewNode] were answered with an
// existing node.
func (a *Arena[T, E]) InternHits() int {
	return a.hits
}

// Leaf returns a leaf tree for a token of the given kind and byte length.
func (a *Arena[T, E]) Leaf(kind T, length int) Tree[T, E] {
	return Tree[T, E]{arena: a, raw: rawTree[T, E]{kind: kind, len: checkLen(length)}}
}

// NewNode builds a new node with the given kind and children.
//
// The node's length is computed from its children. children is copied, and
// may be reused by the caller afterwards. Every node child must belong to
// this arena; use [Arena.Import] to bring in nodes from another one.
func (a *Arena[T, E]) NewNode(kind E, children []Tree[T, E]) Node[T, E] {
	var total uint64
	var h maphash.Hash
	h.SetSeed(seed)
	maphash.WriteComparable(&h, kind)
	maphash.WriteComparable(&h, len(children))
	for _, c := range children {
		if c.arena != a && c.raw.node != 0 {
			panic(fmt.Sprintf("green: child %v belongs to a different arena", c))
		}
		total += uint64(c.raw.length(a))
		maphash.WriteComparable(&h, c.raw.hash(a))
	}
	if total > math.MaxUint32 {
		panic(fmt.Sprintf("green: node length %d overflows", total))
	}
	hash := h.Sum64()

	if a.interned != nil {
		for _, p := range a.interned[hash] {
			if n := (Node[T, E]{a, p}); n.Kind() == kind && sameChildren(n, children) {
				a.hits++
				return n
			}
		}
	}

	raw := make([]rawTree[T, E], len(children))
	for i, c := range children {
		raw[i] = c.raw
	}
	p := a.nodes.New(rawNode[T, E]{
		kind:     kind,
		textLen:  uint32(total),
		hash:     hash,
		children: a.children.Copy(raw),
	})

	if a.interned != nil {
		a.interned[hash] = append(a.interned[hash], p)
	}
	return Node[T, E]{a, p}
}

// Replace returns a copy of n, allocated in this arena, with its i-th child
// replaced by with. n itself is unchanged.
//
// n must belong to this arena. Panics if i is out of range.
func (a *Arena[T, E]) Replace(n Node[T, E], i int, with Tree[T, E]) Node[T, E] {
	if n.arena != a {
		panic("green: Replace on a node from a different arena")
	}
	children := make([]Tree[T, E], 0, n.NumChildren())
	for j, c := range n.Children() {
		if j == i {
			c = with
		}
		children = append(children, c)
	}
	if i < 0 || i >= len(children) {
		panic(fmt.Sprintf("green: child index %d out of range [0, %d)", i, len(children)))
	}
	return a.NewNode(n.Kind(), children)
}

// Import deep-copies n into this arena, returning the copy.
//
// Nodes already in this arena are returned as-is. The copy never refers to
// n's arena, which may be discarded afterwards.
func (a *Arena[T, E]) Import(n Node[T, E]) Node[T, E] {
	if n.arena == a || n.IsZero() {
		return n
	}

	type frame struct {
		src  Node[T, E]
		next int
		kids []Tree[T, E]
	}
	stack := []frame{{src: n}}
	for {
		top := &stack[len(stack)-1]
		if top.next == top.src.NumChildren() {
			built := a.NewNode(top.src.Kind(), top.kids)
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return built
			}
			parent := &stack[len(stack)-1]
			parent.kids = append(parent.kids, built.AsTree())
			continue
		}

		child := top.src.Child(top.next)
		top.next++
		if sub, ok := child.Node(); ok {
			stack = append(stack, frame{src: sub, kids: make([]Tree[T, E], 0, sub.NumChildren())})
			continue
		}
		leaf, _ := child.Leaf()
		top.kids = append(top.kids, a.Leaf(leaf.Kind, leaf.Len))
	}
}

func sameChildren[T language.TokenKind, E language.ElementKind](n Node[T, E], children []Tree[T, E]) bool {
	if n.NumChildren() != len(children) {
		return false
	}
	for i, c := range n.Children() {
		if !c.Equal(children[i]) {
			return false
		}
	}
	return true
}

func checkLen(n int) uint32 {
	if n < 0 || n > math.MaxUint32 {
		panic(fmt.Sprintf("green: invalid length %d", n))
	}
	return uint32(n)
}

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

// Package red provides a position-bearing view over green trees.
//
// A red node is nothing more than a green node plus the absolute byte offset
// at which it starts. Children, and their offsets, are computed on demand by
// summing the lengths of their preceding siblings. Red values are never
// stored in the tree; they are cheap to create and throw away.
package red

import (
	"fmt"
	"iter"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/source"
)

// Node is a green node positioned at an absolute offset.
type Node[T language.TokenKind, E language.ElementKind] struct {
	green  green.Node[T, E]
	offset int
}

// Leaf is a token positioned at an absolute offset.
type Leaf[T language.TokenKind] struct {
	Kind       T
	Start, End int
}

// Tree is either a [Node] or a [Leaf].
type Tree[T language.TokenKind, E language.ElementKind] struct {
	node   Node[T, E]
	leaf   Leaf[T]
	isNode bool
}

// NewNode positions g at offset.
func NewNode[T language.TokenKind, E language.ElementKind](g green.Node[T, E], offset int) Node[T, E] {
	return Node[T, E]{green: g, offset: offset}
}

// Green returns the underlying green node.
func (n Node[T, E]) Green() green.Node[T, E] {
	return n.green
}

// Kind returns this node's kind.
func (n Node[T, E]) Kind() E {
	return n.green.Kind()
}

// Start returns the offset at which this node starts.
func (n Node[T, E]) Start() int {
	return n.offset
}

// End returns the offset at which this node ends.
func (n Node[T, E]) End() int {
	return n.offset + n.green.Len()
}

// Len returns the length of this node in bytes.
func (n Node[T, E]) Len() int {
	return n.green.Len()
}

// Span returns this node's span in f.
func (n Node[T, E]) Span(f *source.File) source.Span {
	return f.Span(n.Start(), n.End())
}

// Text returns the text of this node.
//
// src may be the file the tree was parsed from, or any view of it: offsets in
// a red tree are always absolute.
func (n Node[T, E]) Text(src source.Source) string {
	return src.File().Slice(n.Start(), n.End())
}

// AsTree wraps this node in a [Tree].
func (n Node[T, E]) AsTree() Tree[T, E] {
	return Tree[T, E]{node: n, isNode: true}
}

// NumChildren returns the number of children of this node.
func (n Node[T, E]) NumChildren() int {
	return n.green.NumChildren()
}

// Children iterates over this node's children.
//
// The iterator is lazy; to start over, call Children again.
func (n Node[T, E]) Children() iter.Seq[Tree[T, E]] {
	return func(yield func(Tree[T, E]) bool) {
		offset := n.offset
		for _, c := range n.green.Children() {
			if !yield(position(c, offset)) {
				return
			}
			offset += c.Len()
		}
	}
}

// Child returns the i-th child of this node.
func (n Node[T, E]) Child(i int) Tree[T, E] {
	return position(n.green.Child(i), n.OffsetOfChild(i))
}

// OffsetOfChild returns the offset at which the i-th child starts. Panics if
// i is out of range; i may equal [Node.NumChildren], in which case the end of
// this node is returned.
func (n Node[T, E]) OffsetOfChild(i int) int {
	if i < 0 || i > n.NumChildren() {
		panic(fmt.Sprintf("red: child index %d out of range [0, %d]", i, n.NumChildren()))
	}
	offset := n.offset
	for j := range i {
		offset += n.green.Child(j).Len()
	}
	return offset
}

// ChildIndexAtOffset returns the index of the child containing pos.
//
// A child contains the positions in [start, end); a position on the boundary
// between two children belongs to the following one, and empty children
// contain nothing. Returns false if pos is outside this node.
func (n Node[T, E]) ChildIndexAtOffset(pos int) (int, bool) {
	if pos < n.Start() || pos >= n.End() {
		return 0, false
	}
	offset := n.offset
	for i, c := range n.green.Children() {
		end := offset + c.Len()
		if pos < end {
			return i, true
		}
		offset = end
	}
	return 0, false
}

// ChildAtOffset returns the child containing pos; see
// [Node.ChildIndexAtOffset].
func (n Node[T, E]) ChildAtOffset(pos int) (Tree[T, E], bool) {
	offset := n.offset
	if pos < n.Start() || pos >= n.End() {
		return Tree[T, E]{}, false
	}
	for _, c := range n.green.Children() {
		end := offset + c.Len()
		if pos < end {
			return position(c, offset), true
		}
		offset = end
	}
	return Tree[T, E]{}, false
}

// Overlapping iterates over the children of this node that share at least one
// byte with [start, end).
func (n Node[T, E]) Overlapping(start, end int) iter.Seq[Tree[T, E]] {
	return func(yield func(Tree[T, E]) bool) {
		for c := range n.Children() {
			switch {
			case c.Start() >= end:
				return
			case c.End() <= start, c.Len() == 0:
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// LeafAt returns the leaf containing pos, searching the whole subtree.
func (n Node[T, E]) LeafAt(pos int) (Leaf[T], bool) {
	for {
		c, ok := n.ChildAtOffset(pos)
		if !ok {
			return Leaf[T]{}, false
		}
		sub, ok := c.Node()
		if !ok {
			return c.leaf, true
		}
		n = sub
	}
}

// Leaves iterates over every leaf in this subtree, in order.
func (n Node[T, E]) Leaves() iter.Seq[Leaf[T]] {
	return func(yield func(Leaf[T]) bool) {
		for t, enter := range n.Events() {
			if leaf, ok := t.Leaf(); ok && enter && !yield(leaf) {
				return
			}
		}
	}
}

// Preorder iterates over this node and all of its descendants in pre-order.
func (n Node[T, E]) Preorder() iter.Seq[Tree[T, E]] {
	return func(yield func(Tree[T, E]) bool) {
		for t, enter := range n.Events() {
			if enter && !yield(t) {
				return
			}
		}
	}
}

// Events walks this subtree, yielding every node twice (once with true on the
// way in, once with false on the way out) and every leaf once, with true.
//
// The walk uses an explicit stack, so arbitrarily deep trees are fine.
func (n Node[T, E]) Events() iter.Seq2[Tree[T, E], bool] {
	return func(yield func(Tree[T, E], bool) bool) {
		type frame struct {
			node   Node[T, E]
			next   int
			offset int
		}
		if !yield(n.AsTree(), true) {
			return
		}
		stack := []frame{{node: n, offset: n.offset}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == top.node.NumChildren() {
				node := top.node
				stack = stack[:len(stack)-1]
				if !yield(node.AsTree(), false) {
					return
				}
				continue
			}

			c := position(top.node.green.Child(top.next), top.offset)
			top.next++
			top.offset = c.End()

			if !yield(c, true) {
				return
			}
			if sub, ok := c.Node(); ok {
				stack = append(stack, frame{node: sub, offset: sub.offset})
			}
		}
	}
}

// Len returns the length of this leaf in bytes.
func (l Leaf[T]) Len() int {
	return l.End - l.Start
}

// Span returns this leaf's span in f.
func (l Leaf[T]) Span(f *source.File) source.Span {
	return f.Span(l.Start, l.End)
}

// Text returns the text of this leaf; see [Node.Text].
func (l Leaf[T]) Text(src source.Source) string {
	return src.File().Slice(l.Start, l.End)
}

// Node returns this tree as a node, if it is one.
func (t Tree[T, E]) Node() (Node[T, E], bool) {
	return t.node, t.isNode
}

// Leaf returns this tree as a leaf, if it is one.
func (t Tree[T, E]) Leaf() (Leaf[T], bool) {
	return t.leaf, !t.isNode
}

// Start returns the offset at which this tree starts.
func (t Tree[T, E]) Start() int {
	if t.isNode {
		return t.node.Start()
	}
	return t.leaf.Start
}

// End returns the offset at which this tree ends.
func (t Tree[T, E]) End() int {
	if t.isNode {
		return t.node.End()
	}
	return t.leaf.End
}

// Len returns the length of this tree in bytes.
func (t Tree[T, E]) Len() int {
	return t.End() - t.Start()
}

// Text returns the text of this tree; see [Node.Text].
func (t Tree[T, E]) Text(src source.Source) string {
	return src.File().Slice(t.Start(), t.End())
}

func position[T language.TokenKind, E language.ElementKind](t green.Tree[T, E], offset int) Tree[T, E] {
	if n, ok := t.Node(); ok {
		return Tree[T, E]{node: NewNode(n, offset), isNode: true}
	}
	leaf, _ := t.Leaf()
	return Tree[T, E]{leaf: Leaf[T]{Kind: leaf.Kind, Start: offset, End: offset + leaf.Len}}
}

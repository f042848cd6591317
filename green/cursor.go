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

import "github.com/bufbuild/oak/language"

// Cursor walks a green tree in pre-order, keeping track of the byte offset
// of the current position.
//
// A cursor starts at its root. Cursors do not allocate once their path
// stack has grown to the depth of the tree.
type Cursor[T language.TokenKind, E language.ElementKind] struct {
	root   Node[T, E]
	offset int
	path   []cursorFrame[T, E]
}

type cursorFrame[T language.TokenKind, E language.ElementKind] struct {
	parent       Node[T, E]
	index        int
	parentOffset int
}

// NewCursor returns a cursor positioned at root, which starts at offset.
func NewCursor[T language.TokenKind, E language.ElementKind](root Node[T, E], offset int) *Cursor[T, E] {
	return &Cursor[T, E]{root: root, offset: offset}
}

// Current returns the tree the cursor is positioned at.
func (c *Cursor[T, E]) Current() Tree[T, E] {
	if len(c.path) == 0 {
		return c.root.AsTree()
	}
	top := c.path[len(c.path)-1]
	return top.parent.Child(top.index)
}

// Offset returns the offset at which the current tree starts.
func (c *Cursor[T, E]) Offset() int {
	return c.offset
}

// End returns the offset at which the current tree ends.
func (c *Cursor[T, E]) End() int {
	return c.offset + c.Current().Len()
}

// Depth returns how many steps into the tree the cursor is. The root is at
// depth zero.
func (c *Cursor[T, E]) Depth() int {
	return len(c.path)
}

// StepInto moves to the first child of the current tree. Returns false, and
// does not move, if the current tree is a leaf or has no children.
func (c *Cursor[T, E]) StepInto() bool {
	n, ok := c.Current().Node()
	if !ok || n.NumChildren() == 0 {
		return false
	}
	c.path = append(c.path, cursorFrame[T, E]{parent: n, parentOffset: c.offset})
	return true
}

// StepOver moves to the next sibling of the current tree. Returns false, and
// does not move, if there is none.
func (c *Cursor[T, E]) StepOver() bool {
	if len(c.path) == 0 {
		return false
	}
	top := &c.path[len(c.path)-1]
	if top.index+1 >= top.parent.NumChildren() {
		return false
	}
	c.offset += top.parent.Child(top.index).Len()
	top.index++
	return true
}

// StepOut moves to the parent of the current tree. Returns false, and does not
// move, at the root.
func (c *Cursor[T, E]) StepOut() bool {
	if len(c.path) == 0 {
		return false
	}
	c.offset = c.path[len(c.path)-1].parentOffset
	c.path = c.path[:len(c.path)-1]
	return true
}

// StepAfter moves to the next tree in pre-order that is not inside the
// current one. Returns false once the walk is over, leaving the cursor at the
// root.
func (c *Cursor[T, E]) StepAfter() bool {
	for {
		if c.StepOver() {
			return true
		}
		if !c.StepOut() {
			return false
		}
	}
}

// StepNext moves to the next tree in pre-order.
func (c *Cursor[T, E]) StepNext() bool {
	return c.StepInto() || c.StepAfter()
}

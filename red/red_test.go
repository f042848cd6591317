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

package red_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/oak/green"
	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/source"
)

type tok uint8

const (
	num tok = iota
	plus
	space
	eof
)

func (k tok) String() string { return [...]string{"num", "plus", "space", "eof"}[k] }
func (k tok) Role() language.TokenRole {
	return [...]language.TokenRole{
		language.TokenLiteral, language.TokenOperator, language.TokenWhitespace, language.TokenEOF,
	}[k]
}

type elem uint8

const (
	root elem = iota
	binary
	lit
	empty
)

func (k elem) String() string { return [...]string{"root", "binary", "lit", "empty"}[k] }
func (k elem) Role() language.ElementRole {
	return [...]language.ElementRole{
		language.ElementRoot, language.ElementExpression, language.ElementValue, language.ElementError,
	}[k]
}

type tree = green.Tree[tok, elem]

// build returns the tree for "12 + 3" with a zero-length node before "+".
func build() green.Node[tok, elem] {
	a := green.NewArena[tok, elem]()
	l := a.NewNode(lit, []tree{a.Leaf(num, 2)})
	r := a.NewNode(lit, []tree{a.Leaf(num, 1)})
	e := a.NewNode(empty, nil)
	b := a.NewNode(binary, []tree{l.AsTree(), a.Leaf(space, 1), e.AsTree(), a.Leaf(plus, 1), a.Leaf(space, 1), r.AsTree()})
	return a.NewNode(root, []tree{b.AsTree(), a.Leaf(eof, 0)})
}

func TestChildAtOffset(t *testing.T) {
	t.Parallel()

	// Pretend the text is embedded at offset 100 in a larger document.
	n := red.NewNode(build(), 100)
	assert.Equal(t, 100, n.Start())
	assert.Equal(t, 106, n.End())

	_, ok := n.ChildAtOffset(99)
	assert.False(t, ok)
	_, ok = n.ChildAtOffset(106)
	assert.False(t, ok, "end is exclusive")

	bin, ok := n.ChildAtOffset(100)
	require.True(t, ok)
	b, ok := bin.Node()
	require.True(t, ok)

	for pos, want := range map[int]int{
		100: 0, 101: 0,
		102: 1, // boundary between lit and space goes to space
		103: 3, // the empty node at 103 is skipped
		104: 4,
		105: 5,
	} {
		i, ok := b.ChildIndexAtOffset(pos)
		require.True(t, ok, "pos %d", pos)
		assert.Equal(t, want, i, "pos %d", pos)

		c, ok := b.ChildAtOffset(pos)
		require.True(t, ok)
		assert.Equal(t, b.OffsetOfChild(want), c.Start())
		assert.True(t, c.Start() <= pos && pos < c.End())
	}

	assert.Equal(t, 106, b.OffsetOfChild(b.NumChildren()))
	assert.Panics(t, func() { b.OffsetOfChild(7) })
}

func TestCoverage(t *testing.T) {
	t.Parallel()

	n := red.NewNode(build(), 7)
	for tr := range n.Preorder() {
		node, ok := tr.Node()
		if !ok {
			continue
		}
		at := node.Start()
		for c := range node.Children() {
			assert.Equal(t, at, c.Start(), "gap or overlap in %v", node.Kind())
			assert.LessOrEqual(t, c.Start(), c.End())
			at = c.End()
		}
		assert.Equal(t, node.End(), at, "children of %v do not cover it", node.Kind())
	}
}

func TestLeafAt(t *testing.T) {
	t.Parallel()

	f := source.NewFile("t", "12 + 3")
	n := red.NewNode(build(), 0)

	leaf, ok := n.LeafAt(1)
	require.True(t, ok)
	assert.Equal(t, red.Leaf[tok]{Kind: num, Start: 0, End: 2}, leaf)
	assert.Equal(t, "12", leaf.Text(f))

	leaf, ok = n.LeafAt(3)
	require.True(t, ok)
	assert.Equal(t, plus, leaf.Kind)

	_, ok = n.LeafAt(6)
	assert.False(t, ok)

	var kinds []tok
	for l := range n.Leaves() {
		kinds = append(kinds, l.Kind)
	}
	assert.Equal(t, []tok{num, space, plus, space, num, eof}, kinds)
}

func TestOverlapping(t *testing.T) {
	t.Parallel()

	n := red.NewNode(build(), 0)
	bin, _ := n.Child(0).Node()

	var got []int
	for c := range bin.Overlapping(1, 4) {
		got = append(got, c.Start())
	}
	// lit [0,2), space [2,3), empty [3,3) is skipped, plus [3,4).
	assert.Equal(t, []int{0, 2, 3}, got)
}

func TestText(t *testing.T) {
	t.Parallel()

	f := source.NewFile("t", "let x = 12 + 3;")
	v := f.View(8, 14)
	n := red.NewNode(build(), v.Base())

	assert.Equal(t, "12 + 3", n.Text(v))
	assert.Equal(t, "12 + 3", n.Text(f))
	assert.Equal(t, source.Span{File: f, Start: 8, End: 14}, n.Span(f))

	assert.Equal(t, ""+
		"root@8..14\n"+
		"  binary@8..14\n"+
		"    lit@8..10\n"+
		"      num@8..10 \"12\"\n"+
		"    space@10..11 \" \"\n"+
		"    empty@11..11\n"+
		"    plus@11..12 \"+\"\n"+
		"    space@12..13 \" \"\n"+
		"    lit@13..14\n"+
		"      num@13..14 \"3\"\n"+
		"  eof@14..14 \"\"\n",
		red.Dump(n, v),
	)
}

func TestDeep(t *testing.T) {
	t.Parallel()

	// Deep enough that a recursive walk would be a problem.
	const depth = 200_000
	a := green.NewArena[tok, elem]()
	n := a.NewNode(lit, []tree{a.Leaf(num, 1)})
	for range depth {
		n = a.NewNode(binary, []tree{n.AsTree()})
	}

	r := red.NewNode(n, 0)
	var count int
	for range r.Preorder() {
		count++
	}
	assert.Equal(t, depth+2, count)

	leaf, ok := r.LeafAt(0)
	require.True(t, ok)
	assert.Equal(t, num, leaf.Kind)
}

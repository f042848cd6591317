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

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/oak/internal/arena"
)

func TestPointers(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var a arena.Arena[int]

	p1 := a.New(5)
	p2 := p1.In(&a)
	assert.Equal(5, *p1.In(&a))
	assert.Equal(1, a.Len())

	for i := range 16 {
		a.New(i + 5)
	}
	assert.Equal(19, *arena.Pointer[int](16).In(&a))
	assert.Equal(20, *arena.Pointer[int](17).In(&a))
	assert.Same(p1.In(&a), p2)

	for i := range 32 {
		a.New(i + 21)
	}
	assert.Equal(51, *arena.Pointer[int](48).In(&a))
	assert.Equal(52, *arena.Pointer[int](49).In(&a))
	assert.Same(p1.In(&a), p2)
	assert.Equal(49, a.Len())

	assert.Equal("[5 5 6 7 8 9 10 11 12 13 14 15 16 17 18 19|20 21 22 23 24 25 26 27 28 29 30 31 32 33 34 35 36 37 38 39 40 41 42 43 44 45 46 47 48 49 50 51|52]", a.String())
}

func TestNilPanics(t *testing.T) {
	t.Parallel()

	var a arena.Arena[int]
	a.New(1)
	assert.Panics(t, func() { arena.Pointer[int](0).In(&a) })
	assert.Panics(t, func() { arena.Pointer[int](2).In(&a) })
}

func TestAll(t *testing.T) {
	t.Parallel()

	var a arena.Arena[string]
	for _, s := range []string{"a", "b", "c"} {
		a.New(s)
	}

	var got []string
	for p, v := range a.All() {
		assert.Equal(t, *v, *p.In(&a))
		got = append(got, *v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestSlab(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)

	var s arena.Slab[int]
	assert.Nil(s.Alloc(0))

	x := s.Copy([]int{1, 2, 3})
	y := s.Copy([]int{4, 5})
	assert.Equal([]int{1, 2, 3}, x)
	assert.Equal([]int{4, 5}, y)
	assert.Equal(3, cap(x))

	// Appending to x must not clobber y.
	_ = append(x, 99)
	assert.Equal([]int{4, 5}, y)

	big := s.Alloc(1 << 17)
	assert.Len(big, 1<<17)
	assert.Equal(5+1<<17, s.Len())
}

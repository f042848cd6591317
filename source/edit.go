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

package source

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
)

// TextEdit replaces the byte range [Start, End) of a document with Text.
//
// Offsets refer to the document before any edit in the same batch is
// applied.
type TextEdit struct {
	Start, End int
	Text       string
}

// ReplacementLength returns the length of the text inserted by this edit.
func (e TextEdit) ReplacementLength() int {
	return len(e.Text)
}

// Delta returns how much this edit grows (or shrinks) the document.
func (e TextEdit) Delta() int {
	return len(e.Text) - (e.End - e.Start)
}

// String implements [fmt.Stringer].
func (e TextEdit) String() string {
	return fmt.Sprintf("[%d:%d]=%q", e.Start, e.End, e.Text)
}

// RelexPoint returns the minimum start offset across edits, which is the
// first offset whose lexing may have changed. Returns math.MaxInt if there
// are no edits.
func RelexPoint(edits []TextEdit) int {
	point := math.MaxInt
	for _, e := range edits {
		point = min(point, e.Start)
	}
	return point
}

// SortEdits returns a copy of edits sorted into document order.
func SortEdits(edits []TextEdit) []TextEdit {
	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b TextEdit) int {
		return cmp.Compare(a.Start, b.Start)
	})
	return sorted
}

// ApplyEdits applies a batch of edits to text.
//
// Edits are applied in document order; their offsets all refer to the
// original text. Overlapping edits are not supported, and cause this
// function to panic.
func ApplyEdits(text string, edits []TextEdit) string {
	if len(edits) == 0 {
		return text
	}

	var out strings.Builder
	prev := 0
	for _, e := range SortEdits(edits) {
		if e.Start < prev || e.End < e.Start || e.End > len(text) {
			panic(fmt.Sprintf("oak/source: invalid or overlapping edit %v", e))
		}
		out.WriteString(text[prev:e.Start])
		out.WriteString(e.Text)
		prev = e.End
	}
	out.WriteString(text[prev:])
	return out.String()
}

// EditMap maps offsets in a document after a batch of edits back to offsets
// before it.
type EditMap struct {
	edits []TextEdit // Sorted.
}

// NewEditMap builds an [EditMap] for a batch of edits.
func NewEditMap(edits []TextEdit) EditMap {
	return EditMap{edits: SortEdits(edits)}
}

// OldOffset maps an offset in the edited document to the corresponding offset
// in the original one. Returns false if the offset falls inside text that an
// edit inserted.
func (m EditMap) OldOffset(offset int) (int, bool) {
	delta := 0
	for _, e := range m.edits {
		newStart := e.Start + delta
		newEnd := newStart + len(e.Text)
		switch {
		case offset < newStart:
			return offset - delta, true
		case offset < newEnd:
			return 0, false
		}
		delta += e.Delta()
	}
	return offset - delta, true
}

// Dirty returns whether the original range [start, end) overlaps any edit.
//
// An insertion (an edit with Start == End) dirties a range if it lands
// strictly inside it.
func (m EditMap) Dirty(start, end int) bool {
	for _, e := range m.edits {
		if e.Start == e.End {
			if start < e.Start && e.Start < end {
				return true
			}
			continue
		}
		if start < e.End && e.Start < end {
			return true
		}
	}
	return false
}

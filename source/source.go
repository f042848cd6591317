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
	"fmt"
	"strings"
)

// Source is read access to document text.
//
// All offsets passed to a Source are relative to the start of that Source.
// For a [File] this is the start of the document; for a [View], it is the
// start of the view. Values produced by a Source that describe positions
// ([Location], [Span]) are always absolute: they refer to the root [File].
type Source interface {
	// Len returns the length of this source, in bytes.
	Len() int

	// Text returns the entire text of this source.
	Text() string

	// Slice returns the text in [start, end). Out-of-range indices are
	// clamped to the bounds of the source.
	Slice(start, end int) string

	// View returns a new Source over [start, end) of this one.
	View(start, end int) *View

	// File returns the root document this source ultimately refers to.
	File() *File

	// Base returns the absolute offset of this source's first byte within
	// File().
	Base() int

	// Location converts an offset into this source into an absolute
	// line/column location.
	Location(offset int, units Unit) Location

	// Offset converts an absolute 0-indexed line and column into an offset
	// into this source. Returns -1 if the position falls outside of it.
	Offset(line, column int, units Unit) int
}

// FindByte returns the offset of the first b in src at or after from, or -1.
func FindByte(src Source, from int, b byte) int {
	if from < 0 || from >= src.Len() {
		return -1
	}
	idx := strings.IndexByte(src.Slice(from, src.Len()), b)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// FindString returns the offset of the first occurrence of s in src at or
// after from, or -1.
func FindString(src Source, from int, s string) int {
	if from < 0 || from > src.Len() {
		return -1
	}
	idx := strings.Index(src.Slice(from, src.Len()), s)
	if idx < 0 {
		return -1
	}
	return from + idx
}

// Location is a position within a document.
type Location struct {
	// The absolute byte offset for this location.
	Offset int

	// The 0-indexed line and column. The units of Column depend on the
	// [Unit] used to construct this location.
	Line, Column int
}

// String implements [fmt.Stringer]. Lines and columns are printed 1-indexed,
// the way users expect to see them.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line+1, l.Column+1)
}

// Unit is a unit of measurement for columns.
type Unit int8

const (
	// Bytes measures columns in UTF-8 bytes.
	Bytes Unit = iota
	// Runes measures columns in Unicode code points.
	Runes
	// UTF16 measures columns in UTF-16 code units, as editor protocols do.
	UTF16
	// TermWidth measures columns in terminal cells. It cannot be inverted.
	TermWidth
)

// String implements [fmt.Stringer].
func (u Unit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case Runes:
		return "runes"
	case UTF16:
		return "utf16"
	case TermWidth:
		return "term-width"
	default:
		return fmt.Sprintf("Unit(%d)", int(u))
	}
}

func clampRange(n, start, end int) (int, int) {
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	return start, end
}

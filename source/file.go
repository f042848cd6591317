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
	"slices"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/bufbuild/oak/internal/ext/unicodex"
)

// File is a document: a path and its text.
//
// Files are immutable once created; editing a file produces a new one (see
// [File.Apply]). A nil *File behaves like an empty file named "".
type File struct {
	path, text string

	once sync.Once
	// The offset of the first byte of every line. lines[0] is always 0.
	lines []int
}

var _ Source = (*File)(nil)

// NewFile constructs a new document.
func NewFile(path, text string) *File {
	return &File{path: path, text: text}
}

// Path returns this file's path. It need not exist on disk.
func (f *File) Path() string {
	if f == nil {
		return ""
	}
	return f.path
}

// Text implements [Source].
func (f *File) Text() string {
	if f == nil {
		return ""
	}
	return f.text
}

// Len implements [Source].
func (f *File) Len() int {
	return len(f.Text())
}

// Slice implements [Source].
func (f *File) Slice(start, end int) string {
	start, end = clampRange(f.Len(), start, end)
	return f.Text()[start:end]
}

// View implements [Source].
func (f *File) View(start, end int) *View {
	start, end = clampRange(f.Len(), start, end)
	return &View{file: f, start: start, end: end}
}

// File implements [Source].
func (f *File) File() *File {
	return f
}

// Base implements [Source]. A file always starts at offset zero.
func (f *File) Base() int {
	return 0
}

// Span returns a span of this file.
func (f *File) Span(start, end int) Span {
	if f == nil {
		return Span{}
	}
	return Span{File: f, Start: start, End: end}
}

// EOF returns an empty span at the very end of this file.
func (f *File) EOF() Span {
	return f.Span(f.Len(), f.Len())
}

// LineCount returns the number of lines in this file. An empty file has one
// line.
func (f *File) LineCount() int {
	return len(f.lineIndex())
}

// Line returns the text of the given 0-indexed line, including its trailing
// newline.
func (f *File) Line(line int) string {
	start, end := f.LineOffsets(line)
	return f.Text()[start:end]
}

// LineOffsets returns the byte range of the given 0-indexed line, including
// its trailing newline. Out-of-range lines produce an empty range at EOF.
func (f *File) LineOffsets(line int) (start, end int) {
	lines := f.lineIndex()
	switch {
	case line < 0 || line >= len(lines):
		return f.Len(), f.Len()
	case line == len(lines)-1:
		return lines[line], f.Len()
	default:
		return lines[line], lines[line+1]
	}
}

// Location implements [Source].
//
// This operation is O(log n) in the number of lines, plus the length of the
// line's prefix for units other than [Bytes].
func (f *File) Location(offset int, units Unit) Location {
	offset = min(max(offset, 0), f.Len())
	lines := f.lineIndex()

	// Find the largest index such that lines[line] <= offset.
	line, exact := slices.BinarySearch(lines, offset)
	if !exact {
		line--
	}

	return Location{
		Offset: offset,
		Line:   line,
		Column: measure(f.Text()[lines[line]:offset], units),
	}
}

// Offset implements [Source].
//
// Columns past the end of a line are snapped to the line's end (before its
// newline). Panics if units is [TermWidth].
func (f *File) Offset(line, column int, units Unit) int {
	if line < 0 || line >= f.LineCount() || column < 0 {
		return -1
	}

	start, end := f.LineOffsets(line)
	chunk := strings.TrimSuffix(f.Text()[start:end], "\n")
	chunk = strings.TrimSuffix(chunk, "\r")

	switch units {
	case Bytes:
		return start + min(column, len(chunk))
	case Runes:
		for i := range chunk {
			if column == 0 {
				return start + i
			}
			column--
		}
	case UTF16:
		for i, r := range chunk {
			if column <= 0 {
				return start + i
			}
			column -= utf16.RuneLen(r)
		}
	case TermWidth:
		panic("oak/source: cannot invert a TermWidth column")
	}
	return start + len(chunk)
}

// Apply applies edits to this file and returns the edited file.
//
// See [ApplyEdits].
func (f *File) Apply(edits ...TextEdit) *File {
	return NewFile(f.Path(), ApplyEdits(f.Text(), edits))
}

func (f *File) lineIndex() []int {
	if f == nil {
		return []int{0}
	}

	f.once.Do(func() {
		text := f.text
		f.lines = append(f.lines, 0)
		next := 0
		for {
			nl := strings.IndexByte(text, '\n') + 1
			if nl == 0 {
				break
			}
			text = text[nl:]
			next += nl
			f.lines = append(f.lines, next)
		}
	})
	return f.lines
}

// measure computes the width of text in the given units.
func measure(text string, units Unit) int {
	switch units {
	case Runes:
		n := 0
		for range text {
			n++
		}
		return n
	case UTF16:
		n := 0
		for _, r := range text {
			n += utf16.RuneLen(r)
		}
		return n
	case TermWidth:
		w := unicodex.Width{}
		_, _ = w.WriteString(text)
		return w.Column
	default:
		return len(text)
	}
}

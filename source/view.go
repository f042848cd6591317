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

// View is a zero-copy window over part of a [File].
//
// Offsets passed into a View are relative to its start, but every [Location]
// and [Span] it produces is absolute. This means a lexer can run over an
// embedded region of a document and still report positions that make sense
// for the whole document.
type View struct {
	file       *File
	start, end int
}

var _ Source = (*View)(nil)

// Len implements [Source].
func (v *View) Len() int {
	return v.end - v.start
}

// Text implements [Source].
func (v *View) Text() string {
	return v.file.Text()[v.start:v.end]
}

// Slice implements [Source].
func (v *View) Slice(start, end int) string {
	start, end = clampRange(v.Len(), start, end)
	return v.file.Text()[v.start+start : v.start+end]
}

// View implements [Source]. The new view is relative to this one.
func (v *View) View(start, end int) *View {
	start, end = clampRange(v.Len(), start, end)
	return &View{file: v.file, start: v.start + start, end: v.start + end}
}

// File implements [Source].
func (v *View) File() *File {
	return v.file
}

// Base implements [Source].
func (v *View) Base() int {
	return v.start
}

// Location implements [Source].
func (v *View) Location(offset int, units Unit) Location {
	offset = min(max(offset, 0), v.Len())
	return v.file.Location(v.start+offset, units)
}

// Offset implements [Source].
func (v *View) Offset(line, column int, units Unit) int {
	abs := v.file.Offset(line, column, units)
	if abs < v.start || abs > v.end {
		return -1
	}
	return abs - v.start
}

// Span returns an absolute span for the view-relative range [start, end).
func (v *View) Span(start, end int) Span {
	return v.file.Span(v.start+start, v.start+end)
}

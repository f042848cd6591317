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

import "fmt"

// Spanner is anything that has a position in a document.
type Spanner interface {
	// Returns the zero [Span] if there is no position to report.
	Span() Span
}

// Span is the byte range [Start, End) of a [File].
//
// The zero Span has no file, and means "nowhere".
type Span struct {
	*File
	Start, End int
}

// IsZero returns whether s is the zero span.
func (s Span) IsZero() bool { return s.File == nil }

// Text returns the text s covers.
func (s Span) Text() string { return s.File.Slice(s.Start, s.End) }

// Len returns the length of s in bytes.
func (s Span) Len() int { return s.End - s.Start }

// Contains returns whether offset lies within s.
func (s Span) Contains(offset int) bool {
	return s.Start <= offset && offset < s.End
}

// Overlaps returns whether s and [start, end) share at least one byte.
func (s Span) Overlaps(start, end int) bool {
	return s.Start < end && start < s.End
}

// Touches is like [Span.Overlaps], but also holds for ranges that merely
// abut s, and for empty ranges at either end of it.
func (s Span) Touches(start, end int) bool {
	return s.Start <= end && start <= s.End
}

// StartLoc returns the location of the start of s, with columns measured in
// terminal cells.
func (s Span) StartLoc() Location { return s.Location(s.Start, TermWidth) }

// EndLoc returns the location of the end of s, with columns measured in
// terminal cells.
func (s Span) EndLoc() Location { return s.Location(s.End, TermWidth) }

// Span implements [Spanner].
func (s Span) Span() Span { return s }

// String implements [fmt.Stringer].
func (s Span) String() string {
	if s.IsZero() {
		return "<nowhere>"
	}
	return fmt.Sprintf("%s:%v[%d:%d]", s.Path(), s.StartLoc(), s.Start, s.End)
}

// Join returns the smallest span covering every non-zero span in spans, or
// the zero span if there are none.
//
// Panics if the spans come from different files.
func Join(spans ...Spanner) Span {
	var joined Span
	for _, sp := range spans {
		s := GetSpan(sp)
		switch {
		case s.IsZero():
			continue
		case joined.IsZero():
			joined = s
			continue
		case s.File != joined.File:
			panic(fmt.Sprintf("source: cannot join spans of %q and %q", joined.Path(), s.Path()))
		}
		joined.Start = min(joined.Start, s.Start)
		joined.End = max(joined.End, s.End)
	}
	return joined
}

// GetSpan returns the span of sp, or the zero span if sp is nil.
func GetSpan(sp Spanner) Span {
	if sp == nil {
		return Span{}
	}
	return sp.Span()
}

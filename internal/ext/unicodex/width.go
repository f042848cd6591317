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

package unicodex

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"
)

// TabstopWidth is the size we render all tabstops as.
const TabstopWidth int = 4

// NonPrint defines whether or not a rune is considered unprintable for the
// purposes of rendering source text to a terminal.
func NonPrint(r rune) bool {
	return !strings.ContainsRune(" \r\t\n", r) && !unicode.IsPrint(r)
}

// Width is used for calculating the approximate width of a string in terminal
// columns.
type Width struct {
	// The column at which the text is being rendered. This is necessary for
	// tabstop calculations.
	Column int

	// The width of a tabstop in columns. If zero, [TabstopWidth] is used.
	Tabstop int

	// If set, non-printable characters are escaped in the format <U+NNNN>.
	EscapeNonPrint bool

	// If non-nil, text is written here, with tabs expanded to spaces and
	// unprintables escaped as requested.
	Out io.StringWriter
}

// WriteString writes the given text, advancing w.Column and writing to w.Out.
func (w *Width) WriteString(text string) (int, error) {
	tabstop := w.Tabstop
	if tabstop <= 0 {
		tabstop = TabstopWidth
	}

	var n int
	write := func(s string) error {
		if w.Out == nil {
			return nil
		}
		m, err := w.Out.WriteString(s)
		n += m
		return err
	}

	// Walk grapheme clusters rather than runes, so that combining sequences
	// and emoji are measured the way a terminal draws them.
	state := -1
	for text != "" {
		var cluster string
		var width int
		cluster, text, width, state = uniseg.FirstGraphemeClusterInString(text, state)

		switch r := []rune(cluster)[0]; {
		case r == '\t':
			tab := tabstop - (w.Column % tabstop)
			w.Column += tab
			if err := write(strings.Repeat(" ", tab)); err != nil {
				return n, err
			}
		case w.EscapeNonPrint && NonPrint(r):
			escape := fmt.Sprintf("<U+%04X>", r)
			w.Column += len(escape)
			if err := write(escape); err != nil {
				return n, err
			}
		default:
			w.Column += width
			if err := write(cluster); err != nil {
				return n, err
			}
		}
	}
	return n, nil
}

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

package red

import (
	"fmt"
	"strings"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/source"
)

// Dump renders a tree as indented text, one node or leaf per line, with
// leaves showing their text. This is the format used by golden tests and the
// command-line tools.
//
//	root@0..3
//	  lit@0..1
//	    num@0..1 "1"
//	  eof@3..3 ""
func Dump[T language.TokenKind, E language.ElementKind](n Node[T, E], src source.Source) string {
	var b strings.Builder
	depth := 0
	for t, enter := range n.Events() {
		if !enter {
			depth--
			continue
		}

		b.WriteString(strings.Repeat("  ", depth))
		if sub, ok := t.Node(); ok {
			fmt.Fprintf(&b, "%v@%d..%d\n", sub.Kind(), sub.Start(), sub.End())
			depth++
			continue
		}
		leaf, _ := t.Leaf()
		fmt.Fprintf(&b, "%v@%d..%d %q\n", leaf.Kind, leaf.Start, leaf.End, leaf.Text(src))
	}
	return b.String()
}

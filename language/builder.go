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

package language

import (
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
)

// Builder converts a syntax tree into a typed, language-specific value.
//
// Root is the type of the tree root handed to the builder (normally a red
// node), and Value is what gets built. Builders see only the tree, the text it
// was parsed from, and a report to add diagnostics to.
type Builder[Root, Value any] interface {
	Build(root Root, src source.Source, r *report.Report) Value
}

// BuilderFunc adapts a function into a [Builder].
type BuilderFunc[Root, Value any] func(Root, source.Source, *report.Report) Value

// Build implements [Builder].
func (f BuilderFunc[Root, Value]) Build(root Root, src source.Source, r *report.Report) Value {
	return f(root, src, r)
}

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

// Package highlight classifies the text of a parsed document for display.
//
// Classification only looks at token and element roles, so it works for any
// language plugged into the engine.
package highlight

import (
	"fmt"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
)

// Class is the display class of a run of text.
type Class uint8

const (
	Plain Class = iota
	Comment
	Keyword
	Literal
	Escape
	Operator
	Punctuation
	// A name that is not being defined or referenced, such as a field.
	Name
	// A name that is being defined.
	Binding
	// A name that refers to a definition.
	Reference
	// A name being called.
	Function
	Error
)

var classNames = [...]string{
	Plain:       "plain",
	Comment:     "comment",
	Keyword:     "keyword",
	Literal:     "literal",
	Escape:      "escape",
	Operator:    "operator",
	Punctuation: "punctuation",
	Name:        "name",
	Binding:     "binding",
	Reference:   "reference",
	Function:    "function",
	Error:       "error",
}

// String implements [fmt.Stringer].
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Span is a classified range of a document, in absolute byte offsets.
type Span struct {
	Start, End int
	Class      Class

	// Whether an error diagnostic covers any part of this span.
	Flagged bool
}

// Highlighter classifies the leaves of a tree.
//
// The returned spans are sorted, do not overlap, and may leave gaps, which
// are rendered as [Plain].
type Highlighter[T language.TokenKind, E language.ElementKind] interface {
	Highlight(root red.Node[T, E], src source.Source, r *report.Report) []Span
}

// Roles is a [Highlighter] that works purely from roles.
//
// A name token's class depends on the role of the element it appears in:
// inside a binding it is a [Binding], inside a reference a [Reference], and
// a reference that is the callee of a call is a [Function]. Everything
// inside an error element is an [Error].
type Roles[T language.TokenKind, E language.ElementKind] struct{}

// frame is an element being walked.
type frame struct {
	role language.ElementRole
	// Set once a non-trivia child has been seen.
	started bool
	// Whether this element is the first child of a call.
	callee bool
}

// Highlight implements [Highlighter].
func (Roles[T, E]) Highlight(root red.Node[T, E], _ source.Source, r *report.Report) []Span {
	var spans []Span
	var stack []frame
	errors := 0

	for t, enter := range root.Events() {
		if n, ok := t.Node(); ok {
			role := n.Kind().Role()
			if !enter {
				stack = stack[:len(stack)-1]
				if role == language.ElementError {
					errors--
				}
				continue
			}

			f := frame{role: role}
			if len(stack) > 0 {
				parent := &stack[len(stack)-1]
				f.callee = parent.role == language.ElementCall && !parent.started
				parent.started = true
			}
			if role == language.ElementError {
				errors++
			}
			stack = append(stack, f)
			continue
		}

		leaf, _ := t.Leaf()
		role := leaf.Kind.Role()
		if leaf.Len() == 0 || role == language.TokenWhitespace {
			continue
		}

		var class Class
		var parent *frame
		if len(stack) > 0 {
			parent = &stack[len(stack)-1]
			if !language.IsIgnored(leaf.Kind) {
				parent.started = true
			}
		}
		if errors > 0 {
			class = Error
		} else {
			class = classify(role, parent)
		}
		if class != Plain {
			spans = append(spans, Span{Start: leaf.Start, End: leaf.End, Class: class})
		}
	}

	flag(spans, r)
	return spans
}

func classify(role language.TokenRole, parent *frame) Class {
	switch role {
	case language.TokenComment:
		return Comment
	case language.TokenKeyword:
		return Keyword
	case language.TokenLiteral:
		return Literal
	case language.TokenEscape:
		return Escape
	case language.TokenOperator:
		return Operator
	case language.TokenPunctuation:
		return Punctuation
	case language.TokenError:
		return Error
	case language.TokenName:
		if parent == nil {
			return Name
		}
		switch parent.role {
		case language.ElementBinding:
			return Binding
		case language.ElementReference:
			if parent.callee {
				return Function
			}
			return Reference
		}
		return Name
	default:
		return Plain
	}
}

// flag marks every span that an error diagnostic touches.
func flag(spans []Span, r *report.Report) {
	if r == nil {
		return
	}
	for i := range r.Diagnostics {
		d := &r.Diagnostics[i]
		if d.Level() > report.Error {
			continue
		}
		at := d.Primary()
		if at.IsZero() {
			continue
		}
		// An empty span, such as a missing token, flags what follows it.
		if at.Len() == 0 {
			at.End++
		}
		for j := range spans {
			if at.Overlaps(spans[j].Start, spans[j].End) {
				spans[j].Flagged = true
			}
		}
	}
}

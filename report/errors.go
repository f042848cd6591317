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

package report

import (
	"fmt"

	"github.com/bufbuild/oak/source"
)

// Tags for the diagnostics defined in this package.
const (
	TagSyntax        Tag = "syntax-error"
	TagExpectedToken Tag = "expected-token"
	TagUnexpectedEOF Tag = "unexpected-eof"
	TagCustom        Tag = "custom-error"
	TagICE           Tag = "internal-error"
)

// SyntaxError is malformed input at some position.
type SyntaxError struct {
	Span    source.Span
	Message string
}

var _ Diagnose = SyntaxError{}

// Error implements [error].
func (e SyntaxError) Error() string {
	return e.Message
}

// Diagnose implements [Diagnose].
func (e SyntaxError) Diagnose(d *Diagnostic) {
	d.Apply(
		TagSyntax,
		Message("%s", e.Message),
		Snippet(e.Span),
	)
}

// ExpectedToken is a specific token that was required but not found.
type ExpectedToken struct {
	// Where the token was expected; usually the unexpected token that was
	// found instead, or an empty span where it should have been.
	Span source.Span

	// A human-readable description of what was expected, such as "`)`".
	Want string

	// What was found instead. May be empty.
	Got string
}

var _ Diagnose = ExpectedToken{}

// Error implements [error].
func (e ExpectedToken) Error() string {
	if e.Got == "" {
		return fmt.Sprintf("expected %s", e.Want)
	}
	return fmt.Sprintf("expected %s, found %s", e.Want, e.Got)
}

// Diagnose implements [Diagnose].
func (e ExpectedToken) Diagnose(d *Diagnostic) {
	d.Apply(
		TagExpectedToken,
		Message("%s", e.Error()),
		Snippet(e.Span, "expected %s", e.Want),
	)
}

// UnexpectedEOF is input that ended in the middle of a construct.
type UnexpectedEOF struct {
	Span source.Span

	// What was being parsed. May be empty.
	Where string
}

var _ Diagnose = UnexpectedEOF{}

// Error implements [error].
func (e UnexpectedEOF) Error() string {
	if e.Where == "" {
		return "unexpected end of input"
	}
	return "unexpected end of input in " + e.Where
}

// Diagnose implements [Diagnose].
func (e UnexpectedEOF) Diagnose(d *Diagnostic) {
	d.Apply(
		TagUnexpectedEOF,
		Message("%s", e.Error()),
		Snippet(e.Span),
	)
}

// CustomError is an opaque message, with an optional span.
type CustomError struct {
	Span    source.Span
	Message string
}

var _ Diagnose = CustomError{}

// Error implements [error].
func (e CustomError) Error() string {
	return e.Message
}

// Diagnose implements [Diagnose].
func (e CustomError) Diagnose(d *Diagnostic) {
	d.Apply(
		TagCustom,
		Message("%s", e.Message),
		Snippet(e.Span),
	)
}

// AsError wraps a [Report] as an [error].
type AsError struct {
	Report *Report
}

// Error implements [error].
func (e *AsError) Error() string {
	text, _, _ := Renderer{Compact: true}.RenderString(e.Report)
	return text
}

// internalError is a panic caught by [Report.CatchICE].
type internalError struct {
	panicked any
}

func (e internalError) Error() string {
	return fmt.Sprint(e.panicked)
}

func (e internalError) Diagnose(d *Diagnostic) {
	d.Apply(
		TagICE,
		Message("%v", e.panicked),
		Note("this is a bug in the parsing engine or in a language front-end"),
	)
}

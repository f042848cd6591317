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

// Level represents the severity of a diagnostic message.
type Level int8

const (
	// Internal compiler error. Indicates a panic within the engine or a
	// language front-end.
	ICE Level = 1 + iota
	// Red. The input is malformed.
	Error
	// Yellow. Something that probably should not be ignored.
	Warning
	// Cyan. The diagnostics version of "info".
	Remark

	noteLevel // Used internally within the diagnostic renderer.
)

// String implements [fmt.Stringer].
func (l Level) String() string {
	switch l {
	case ICE:
		return "internal error"
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Remark:
		return "remark"
	case noteLevel:
		return "note"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Tag is a machine-readable identification for a diagnostic, e.g.
// "expected-token".
type Tag string

// Apply implements [DiagnosticOption].
func (t Tag) Apply(d *Diagnostic) {
	if d.tag != "" {
		panic("oak/report: set diagnostic tag more than once")
	}
	d.tag = t
}

// Diagnose is an error that can be rendered as a diagnostic.
type Diagnose interface {
	error

	// Diagnose writes this error's message, spans, notes and tag into d.
	//
	// It should not set the level; that is set by the [Report] method the
	// error is pushed with.
	Diagnose(d *Diagnostic)
}

// Diagnostic is a single problem found in some input.
//
// To construct one, call a method like [Report.Error] and then
// [Diagnostic.Apply] options to it.
type Diagnostic struct {
	err     error
	tag     Tag
	message string
	level   Level
	inFile  string

	annotations        []annotation
	notes, help, debug []string
}

// DiagnosticOption is an option that can be applied to a [Diagnostic].
//
// Nil values passed to [Diagnostic.Apply] are ignored.
type DiagnosticOption interface {
	Apply(*Diagnostic)
}

// Level returns this diagnostic's level.
func (d *Diagnostic) Level() Level {
	return d.level
}

// Message returns this diagnostic's message.
func (d *Diagnostic) Message() string {
	if d.message == "" && d.err != nil {
		return d.err.Error()
	}
	return d.message
}

// Err returns the error this diagnostic was constructed from, if any.
func (d *Diagnostic) Err() error {
	return d.err
}

// Tag returns this diagnostic's tag, which may be empty.
func (d *Diagnostic) Tag() Tag {
	return d.tag
}

// Is checks whether this diagnostic has a particular tag.
func (d *Diagnostic) Is(tag Tag) bool {
	return d.tag == tag
}

// Primary returns this diagnostic's primary span, if it has one.
func (d *Diagnostic) Primary() source.Span {
	for _, a := range d.annotations {
		if a.primary {
			return a.Span
		}
	}
	return source.Span{}
}

// Notes returns the notes attached to this diagnostic.
func (d *Diagnostic) Notes() []string {
	return d.notes
}

// Help returns the help messages attached to this diagnostic.
func (d *Diagnostic) Help() []string {
	return d.help
}

// Apply applies the given options to this diagnostic.
func (d *Diagnostic) Apply(options ...DiagnosticOption) *Diagnostic {
	for _, option := range options {
		if option != nil {
			option.Apply(d)
		}
	}
	return d
}

// Message returns a DiagnosticOption that sets the main diagnostic message.
func Message(format string, args ...any) DiagnosticOption {
	return message(fmt.Sprintf(format, args...))
}

// InFile is a DiagnosticOption that causes a diagnostic without a primary
// span to mention the given file.
type InFile string

// Apply implements [DiagnosticOption].
func (f InFile) Apply(d *Diagnostic) {
	d.inFile = string(f)
}

// Snippet returns a DiagnosticOption that adds an annotated span to a
// diagnostic.
//
// Additional arguments are a format string and its arguments, producing the
// message shown under the span. The first snippet added is the primary one.
// Returns nil if at is nil or has a zero span.
func Snippet(at source.Spanner, args ...any) DiagnosticOption {
	span := source.GetSpan(at)
	if span.IsZero() {
		return nil
	}

	a := annotation{Span: span}
	if len(args) > 0 {
		format, ok := args[0].(string)
		if !ok {
			panic("oak/report: expected string as first Snippet argument")
		}
		a.message = fmt.Sprintf(format, args[1:]...)
	}
	return a
}

// Note returns a DiagnosticOption that adds factual context to a diagnostic.
func Note(format string, args ...any) DiagnosticOption {
	return note(fmt.Sprintf(format, args...))
}

// Help returns a DiagnosticOption that adds a prose suggestion for fixing
// the problem.
func Help(format string, args ...any) DiagnosticOption {
	return help(fmt.Sprintf(format, args...))
}

// Debug returns a DiagnosticOption that adds information only shown when
// debugging the engine itself.
func Debug(format string, args ...any) DiagnosticOption {
	return debug(fmt.Sprintf(format, args...))
}

// annotation is an annotated source code span within a [Diagnostic].
type annotation struct {
	source.Span

	// Shown under the span. May be empty.
	message string
	primary bool
}

func (a annotation) Apply(d *Diagnostic) {
	a.primary = len(d.annotations) == 0
	d.annotations = append(d.annotations, a)
}

type (
	message string
	note    string
	help    string
	debug   string
)

func (m message) Apply(d *Diagnostic) { d.message = string(m) }
func (n note) Apply(d *Diagnostic)    { d.notes = append(d.notes, string(n)) }
func (h help) Apply(d *Diagnostic)    { d.help = append(d.help, string(h)) }
func (g debug) Apply(d *Diagnostic)   { d.debug = append(d.debug, string(g)) }

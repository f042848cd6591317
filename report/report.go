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
	"cmp"
	"fmt"
	rtdebug "runtime/debug"
	"slices"
)

// Report is a collection of diagnostics.
//
// The zero value is empty and ready to use. Reports are not safe for
// concurrent use; each parse owns its own.
type Report struct {
	Diagnostics []Diagnostic
}

// Error pushes an error diagnostic onto this report.
func (r *Report) Error(err Diagnose) *Diagnostic {
	return r.push(err, Error)
}

// Warn pushes a warning diagnostic onto this report.
func (r *Report) Warn(err Diagnose) *Diagnostic {
	return r.push(err, Warning)
}

// Remark pushes a remark diagnostic onto this report.
func (r *Report) Remark(err Diagnose) *Diagnostic {
	return r.push(err, Remark)
}

// Errorf creates a new error diagnostic with an unspecified error type;
// analogous to [fmt.Errorf].
func (r *Report) Errorf(format string, args ...any) *Diagnostic {
	return r.push(CustomError{Message: fmt.Sprintf(format, args...)}, Error)
}

// Warnf creates a new warning diagnostic with an unspecified error type.
func (r *Report) Warnf(format string, args ...any) *Diagnostic {
	return r.push(CustomError{Message: fmt.Sprintf(format, args...)}, Warning)
}

// Remarkf creates a new remark diagnostic with an unspecified error type.
func (r *Report) Remarkf(format string, args ...any) *Diagnostic {
	return r.push(CustomError{Message: fmt.Sprintf(format, args...)}, Remark)
}

// Len returns the number of diagnostics in this report.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Diagnostics)
}

// HasErrors returns whether this report contains any diagnostics at level
// [Error] or worse.
func (r *Report) HasErrors() bool {
	if r == nil {
		return false
	}
	return slices.ContainsFunc(r.Diagnostics, func(d Diagnostic) bool {
		return d.level <= Error
	})
}

// Append appends all of the diagnostics of other onto this report.
//
// This is how the diagnostics of one layer (lexing, say) are aggregated into
// the next.
func (r *Report) Append(other *Report) {
	if other == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Sort sorts this report's diagnostics by primary span, then level, then
// message. Diagnostics without spans sort last.
func (r *Report) Sort() {
	slices.SortStableFunc(r.Diagnostics, func(a, b Diagnostic) int {
		pa, pb := a.Primary(), b.Primary()
		if pa.IsZero() != pb.IsZero() {
			if pa.IsZero() {
				return 1
			}
			return -1
		}
		return cmp.Or(
			cmp.Compare(pa.Path(), pb.Path()),
			cmp.Compare(pa.Start, pb.Start),
			cmp.Compare(pa.End, pb.End),
			cmp.Compare(a.level, b.level),
			cmp.Compare(a.Message(), b.Message()),
		)
	})
}

// CatchICE recovers from a panic in the calling function and converts it
// into an [ICE] diagnostic. It must be deferred directly.
//
// If resume is false, the panic is re-raised after being recorded. diagnose,
// if not nil, can add extra context to the ICE.
func (r *Report) CatchICE(resume bool, diagnose func(*Diagnostic)) {
	panicked := recover()
	if panicked == nil {
		return
	}

	d := r.push(internalError{panicked}, ICE)
	d.Apply(Debug("%s", rtdebug.Stack()))
	if diagnose != nil {
		diagnose(d)
	}

	if !resume {
		panic(panicked)
	}
}

// push is the core "make me a diagnostic" function.
func (r *Report) push(err Diagnose, level Level) *Diagnostic {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{err: err, level: level})
	d := &r.Diagnostics[len(r.Diagnostics)-1]
	err.Diagnose(d)
	return d
}

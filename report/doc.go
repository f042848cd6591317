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

/*
Package report collects and renders diagnostics.

Lexers and parsers never fail by returning an error for malformed input.
Instead, every problem they notice is recorded as a [Diagnostic] in a
[Report], and the caller receives a best-effort result together with that
report. Diagnostics carry a level, a message, a machine-readable [Tag], and
annotated source spans.

# Defining Diagnostics

To define a diagnostic, define a Go error type and make it implement
[Diagnose]. The engine's own taxonomy ([SyntaxError], [ExpectedToken],
[UnexpectedEOF], [CustomError]) is defined this way, which lets callers
inspect a report programmatically with [Diagnostic.Is] or [Diagnostic.Err].
For one-off diagnostics, use [Report.Errorf] and friends.

# Style

Diagnostic messages do not begin with a capital letter and do not end in
punctuation. The first snippet of a diagnostic (the primary span) should be
precisely the code that caused it.

Reports are rendered for humans with a [Renderer].
*/
package report

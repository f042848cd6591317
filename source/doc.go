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

// Package source provides the document abstraction that lexers and parsers
// run over.
//
// [File] is a whole document: its path, its text, and a lazily built line
// index for converting between byte offsets and line/column positions. A
// [View] is a zero-copy window into a [File] (or into another view) that
// keeps reporting positions in terms of the root document, so that nested
// languages can be lexed in place. Both implement [Source].
//
// [TextEdit] describes a change to a document, and is the unit of work the
// incremental lexer and parser consume.
package source

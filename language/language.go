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

// Package language defines the contracts a language front-end implements to
// plug into the lexer and parser engines.
//
// A front-end supplies two small enumerations, one of token kinds and one of
// element kinds, each of which maps onto a universal role. Everything else in
// this module is generic over those two types.
package language

import "fmt"

// TokenKind is the constraint satisfied by a language's token kinds.
type TokenKind interface {
	comparable
	fmt.Stringer

	// Role returns the universal role of this kind.
	Role() TokenRole
}

// ElementKind is the constraint satisfied by a language's element kinds.
type ElementKind interface {
	comparable
	fmt.Stringer

	// Role returns the universal role of this kind.
	Role() ElementRole
}

// Tokens is the part of a language binding needed by a lexer.
type Tokens[T TokenKind] interface {
	// EOF returns the kind of the end-of-stream sentinel, which the lexer
	// appends exactly once.
	EOF() T

	// ErrorToken returns the kind used for input no lexer rule matches.
	ErrorToken() T
}

// Language binds a language's token and element kinds together.
type Language[T TokenKind, E ElementKind] interface {
	Tokens[T]

	// Name returns the name of the language, such as "calc".
	Name() string

	// ErrorElement returns the kind wrapped around input the parser could
	// not make sense of.
	ErrorElement() E

	// RootElement returns the kind of the outermost node of every tree.
	RootElement() E
}

// IsIgnored returns whether a token is trivia that the parser skips over:
// whitespace or a comment.
func IsIgnored[T TokenKind](kind T) bool {
	switch kind.Role() {
	case TokenWhitespace, TokenComment:
		return true
	default:
		return false
	}
}

// IsWhitespace returns whether kind has the whitespace role.
func IsWhitespace[T TokenKind](kind T) bool { return kind.Role() == TokenWhitespace }

// IsComment returns whether kind has the comment role.
func IsComment[T TokenKind](kind T) bool { return kind.Role() == TokenComment }

// IsError returns whether kind has the error role.
func IsError[T TokenKind](kind T) bool { return kind.Role() == TokenError }

// IsEOF returns whether kind has the end-of-stream role.
func IsEOF[T TokenKind](kind T) bool { return kind.Role() == TokenEOF }

// IsRoot returns whether kind has the root role.
func IsRoot[E ElementKind](kind E) bool { return kind.Role() == ElementRoot }

// IsErrorElement returns whether kind has the error role.
func IsErrorElement[E ElementKind](kind E) bool { return kind.Role() == ElementError }

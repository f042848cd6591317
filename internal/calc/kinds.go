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

package calc

import (
	"fmt"
	"strings"

	"github.com/bufbuild/oak/language"
)

// Token is a kind of calc token.
type Token uint8

const (
	Unknown Token = iota

	Whitespace
	LineComment
	BlockComment

	Number
	String
	Ident
	Let
	True
	False

	Plus
	Minus
	Star
	Slash
	Caret
	EqEq
	Eq
	Bang
	LParen
	RParen
	LBracket
	RBracket
	Comma
	Dot
	Semi

	Error
	EOF
)

var tokenNames = [...]string{
	Unknown:      "Unknown",
	Whitespace:   "Space",
	LineComment:  "LineComment",
	BlockComment: "BlockComment",
	Number:       "Number",
	String:       "String",
	Ident:        "Ident",
	Let:          "Let",
	True:         "True",
	False:        "False",
	Plus:         "Plus",
	Minus:        "Minus",
	Star:         "Star",
	Slash:        "Slash",
	Caret:        "Caret",
	EqEq:         "EqEq",
	Eq:           "Eq",
	Bang:         "Bang",
	LParen:       "LParen",
	RParen:       "RParen",
	LBracket:     "LBracket",
	RBracket:     "RBracket",
	Comma:        "Comma",
	Dot:          "Dot",
	Semi:         "Semi",
	Error:        "Error",
	EOF:          "EOF",
}

// String implements [fmt.Stringer].
func (t Token) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// TokenByName looks up a token kind by its name, as printed by
// [Token.String], ignoring case.
func TokenByName(name string) (Token, bool) {
	for i, n := range tokenNames {
		if strings.EqualFold(n, name) {
			return Token(i), true
		}
	}
	return Unknown, false
}

// Role implements [language.TokenKind].
func (t Token) Role() language.TokenRole {
	switch t {
	case Whitespace:
		return language.TokenWhitespace
	case LineComment, BlockComment:
		return language.TokenComment
	case Number, String, True, False:
		return language.TokenLiteral
	case Ident:
		return language.TokenName
	case Let:
		return language.TokenKeyword
	case Plus, Minus, Star, Slash, Caret, EqEq, Eq, Bang:
		return language.TokenOperator
	case LParen, RParen, LBracket, RBracket, Comma, Dot, Semi:
		return language.TokenPunctuation
	case Error:
		return language.TokenError
	case EOF:
		return language.TokenEOF
	default:
		return language.TokenNone
	}
}

// Element is a kind of calc syntax tree node.
type Element uint8

const (
	Invalid Element = iota

	Root
	LetStmt
	ExprStmt
	Name

	Literal
	NameRef
	Paren
	Unary
	Binary
	Postfix
	Call
	ArgList
	Index
	Field

	ErrorNode
)

var elementNames = [...]string{
	Invalid:   "Invalid",
	Root:      "Root",
	LetStmt:   "LetStmt",
	ExprStmt:  "ExprStmt",
	Name:      "Name",
	Literal:   "Literal",
	NameRef:   "NameRef",
	Paren:     "Paren",
	Unary:     "Unary",
	Binary:    "Binary",
	Postfix:   "Postfix",
	Call:      "Call",
	ArgList:   "ArgList",
	Index:     "Index",
	Field:     "Field",
	ErrorNode: "Error",
}

// String implements [fmt.Stringer].
func (e Element) String() string {
	if int(e) < len(elementNames) {
		return elementNames[e]
	}
	return fmt.Sprintf("Element(%d)", int(e))
}

// Role implements [language.ElementKind].
func (e Element) Role() language.ElementRole {
	switch e {
	case Root:
		return language.ElementRoot
	case LetStmt:
		return language.ElementDefinition
	case ExprStmt:
		return language.ElementStatement
	case Name:
		return language.ElementBinding
	case Literal:
		return language.ElementValue
	case NameRef:
		return language.ElementReference
	case Paren, Unary, Binary, Postfix, Index, Field:
		return language.ElementExpression
	case Call:
		return language.ElementCall
	case ArgList:
		return language.ElementContainer
	case ErrorNode:
		return language.ElementError
	default:
		return language.ElementNone
	}
}

// ElementFor returns the node kind that wraps a lone token of the given kind
// when it appears as an operand.
//
// Every token kind is listed, so that adding one forces a decision here.
func ElementFor(t Token) (Element, bool) {
	switch t {
	case Number, String, True, False:
		return Literal, true
	case Ident:
		return NameRef, true
	case Error:
		return ErrorNode, true

	case Whitespace, LineComment, BlockComment, Let,
		Plus, Minus, Star, Slash, Caret, EqEq, Eq, Bang,
		LParen, RParen, LBracket, RBracket, Comma, Dot, Semi,
		EOF, Unknown:
		return Invalid, false
	}
	return Invalid, false
}

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

import "fmt"

// TokenRole is the universal classification of a token kind, shared by every
// language.
//
// Generic tooling (highlighters, tree dumps, editor services) works in terms
// of roles so that it never needs to know a particular language's kinds.
type TokenRole uint8

const (
	TokenNone TokenRole = iota
	TokenWhitespace
	TokenComment
	TokenName
	TokenKeyword
	TokenLiteral
	TokenEscape
	TokenOperator
	TokenPunctuation
	TokenError
	TokenEOF
)

var tokenRoleNames = [...]string{
	TokenNone:        "none",
	TokenWhitespace:  "whitespace",
	TokenComment:     "comment",
	TokenName:        "name",
	TokenKeyword:     "keyword",
	TokenLiteral:     "literal",
	TokenEscape:      "escape",
	TokenOperator:    "operator",
	TokenPunctuation: "punctuation",
	TokenError:       "error",
	TokenEOF:         "eof",
}

// String implements [fmt.Stringer].
func (r TokenRole) String() string {
	if int(r) < len(tokenRoleNames) {
		return tokenRoleNames[r]
	}
	return fmt.Sprintf("TokenRole(%d)", int(r))
}

// ElementRole is the universal classification of an element (node) kind.
type ElementRole uint8

const (
	ElementNone ElementRole = iota
	ElementRoot
	ElementStatement
	ElementExpression
	ElementDefinition
	ElementBinding
	ElementReference
	ElementContainer
	ElementCall
	ElementValue
	ElementTyping
	ElementAttribute
	ElementDocumentation
	ElementError
)

var elementRoleNames = [...]string{
	ElementNone:          "none",
	ElementRoot:          "root",
	ElementStatement:     "statement",
	ElementExpression:    "expression",
	ElementDefinition:    "definition",
	ElementBinding:       "binding",
	ElementReference:     "reference",
	ElementContainer:     "container",
	ElementCall:          "call",
	ElementValue:         "value",
	ElementTyping:        "typing",
	ElementAttribute:     "attribute",
	ElementDocumentation: "documentation",
	ElementError:         "error",
}

// String implements [fmt.Stringer].
func (r ElementRole) String() string {
	if int(r) < len(elementRoleNames) {
		return elementRoleNames[r]
	}
	return fmt.Sprintf("ElementRole(%d)", int(r))
}

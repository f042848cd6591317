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

package language_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/oak/language"
)

type kind string

func (k kind) String() string { return string(k) }
func (k kind) Role() language.TokenRole {
	switch k {
	case " ":
		return language.TokenWhitespace
	case "//":
		return language.TokenComment
	case "?":
		return language.TokenError
	case "":
		return language.TokenEOF
	default:
		return language.TokenName
	}
}

func TestPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, language.IsIgnored(kind(" ")))
	assert.True(t, language.IsIgnored(kind("//")))
	assert.False(t, language.IsIgnored(kind("x")))
	assert.True(t, language.IsWhitespace(kind(" ")))
	assert.True(t, language.IsComment(kind("//")))
	assert.True(t, language.IsError(kind("?")))
	assert.True(t, language.IsEOF(kind("")))
	assert.False(t, language.IsEOF(kind("x")))
}

func TestRoleNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "punctuation", language.TokenPunctuation.String())
	assert.Equal(t, "TokenRole(200)", language.TokenRole(200).String())
	assert.Equal(t, "definition", language.ElementDefinition.String())
	assert.Equal(t, "error", language.ElementError.String())
}

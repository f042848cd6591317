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

package unicodex_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/oak/internal/ext/unicodex"
)

func TestWidth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text  string
		width int
		out   string
	}{
		{text: "abc", width: 3, out: "abc"},
		{text: "a\tb", width: 5, out: "a   b"},
		{text: "日本", width: 4, out: "日本"},
		{text: "x\x00", width: 9, out: "x<U+0000>"},
	}

	for _, tt := range tests {
		var out strings.Builder
		w := unicodex.Width{EscapeNonPrint: true, Out: &out}
		_, err := w.WriteString(tt.text)
		assert.NoError(t, err)
		assert.Equal(t, tt.width, w.Column, "%q", tt.text)
		assert.Equal(t, tt.out, out.String(), "%q", tt.text)
	}
}

func TestXID(t *testing.T) {
	t.Parallel()

	assert.True(t, unicodex.IsXIDStart('a'))
	assert.True(t, unicodex.IsXIDStart('_'))
	assert.True(t, unicodex.IsXIDStart('é'))
	assert.False(t, unicodex.IsXIDStart('1'))
	assert.True(t, unicodex.IsXIDContinue('1'))
	assert.False(t, unicodex.IsXIDContinue('+'))
	assert.True(t, unicodex.IsXIDContinue('\u0301'))
	assert.False(t, unicodex.IsXIDStart('\u0301'))
	assert.False(t, unicodex.IsXIDContinue('\u00ab'))
}

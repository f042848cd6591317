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

package unicodex

import (
	"unicode"
	"unicode/utf8"
)

// Identifier character classes from UAX #31. Characters that are pattern
// syntax or pattern whitespace are never part of an identifier.
var (
	xidStart    = []*unicode.RangeTable{unicode.Letter, unicode.Nl, unicode.Other_ID_Start}
	xidContinue = []*unicode.RangeTable{
		unicode.Letter, unicode.Nl, unicode.Other_ID_Start,
		unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc,
		unicode.Cf, // Joiners.
	}
	notXID = []*unicode.RangeTable{unicode.Pattern_Syntax, unicode.Pattern_White_Space}
)

// IsXIDStart returns whether r may start an identifier.
func IsXIDStart(r rune) bool {
	if r < utf8.RuneSelf {
		return r == '_' || isASCIILetter(r)
	}
	return unicode.In(r, xidStart...) && !unicode.In(r, notXID...)
}

// IsXIDContinue returns whether r may appear after the first character of an
// identifier.
func IsXIDContinue(r rune) bool {
	if r < utf8.RuneSelf {
		return r == '_' || isASCIILetter(r) || ('0' <= r && r <= '9')
	}
	return unicode.In(r, xidContinue...) && !unicode.In(r, notXID...)
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

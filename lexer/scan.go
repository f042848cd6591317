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

package lexer

import (
	"strings"
	"unicode"

	"github.com/bufbuild/oak/internal/ext/unicodex"
)

// Common scanners. Each one checks whether the text at the cursor looks like
// the thing it scans; if so, it consumes it, emits a token of the given kind
// and returns true. Otherwise it returns false without moving the cursor.

// ScanWhitespace scans a run of Unicode whitespace.
func (s *State[T]) ScanWhitespace(kind T) bool {
	if s.TakeWhile(unicode.IsSpace) == 0 {
		return false
	}
	return s.Emit(kind)
}

// ScanLineComment scans a comment that starts with prefix and runs up to,
// but not including, the next newline.
func (s *State[T]) ScanLineComment(kind T, prefix string) bool {
	if !s.ConsumeIf(prefix) {
		return false
	}
	if end := strings.IndexByte(s.text[s.pos:], '\n'); end >= 0 {
		s.pos += end
		s.see(s.pos + 1)
	} else {
		s.pos = len(s.text)
		s.see(s.pos + 1)
	}
	return s.Emit(kind)
}

// ScanBlockComment scans a comment delimited by open and close. Block
// comments do not nest. An unterminated comment runs to the end of the input
// and is reported.
func (s *State[T]) ScanBlockComment(kind T, open, close string) bool {
	if !s.ConsumeIf(open) {
		return false
	}
	if end := strings.Index(s.text[s.pos:], close); end >= 0 {
		s.pos += end + len(close)
		s.see(s.pos)
	} else {
		s.pos = len(s.text)
		s.see(s.pos + 1)
		s.Errorf("unterminated block comment")
	}
	return s.Emit(kind)
}

// ScanIdentifier scans a Unicode identifier (XID_Start XID_Continue*).
//
// If the identifier is a key of keywords, the corresponding kind is emitted
// instead of kind.
func (s *State[T]) ScanIdentifier(kind T, keywords map[string]T) bool {
	if r := s.Peek(); r < 0 || !unicodex.IsXIDStart(r) {
		return false
	}
	s.Bump()
	s.TakeWhile(unicodex.IsXIDContinue)

	if k, ok := keywords[s.text[s.mark:s.pos]]; ok {
		kind = k
	}
	return s.Emit(kind)
}

// ScanNumber scans a numeric literal.
//
// This accepts decimal integers and floats (with optional fraction and
// exponent), and 0x/0o/0b prefixed integers. Underscores are allowed between
// digits.
func (s *State[T]) ScanNumber(kind T) bool {
	if r := s.Peek(); r < '0' || r > '9' {
		return false
	}

	digits := func(pred func(rune) bool) int {
		return s.TakeWhile(func(r rune) bool { return r == '_' || pred(r) })
	}

	for _, base := range []struct {
		prefix string
		digit  func(rune) bool
	}{
		{"0x", isHex}, {"0X", isHex},
		{"0o", isOctal}, {"0O", isOctal},
		{"0b", isBinary}, {"0B", isBinary},
	} {
		if s.ConsumeIf(base.prefix) {
			if digits(base.digit) == 0 {
				s.Errorf("missing digits after %q", base.prefix)
			}
			return s.Emit(kind)
		}
	}

	digits(isDecimal)

	// A fraction needs a digit after the dot, so that "1.foo" lexes as a
	// number followed by a dot.
	if s.Peek() == '.' && isDecimal(s.PeekAt(1)) {
		s.Bump()
		digits(isDecimal)
	}

	if r := s.Peek(); r == 'e' || r == 'E' {
		save := s.pos
		s.Bump()
		if r := s.Peek(); r == '+' || r == '-' {
			s.Bump()
		}
		if digits(isDecimal) == 0 {
			s.Seek(save)
		}
	}

	return s.Emit(kind)
}

// ScanString scans a string delimited by quote, in which a backslash escapes
// the following rune. Strings may not span lines; an unterminated string is
// reported and ends before the newline.
func (s *State[T]) ScanString(kind T, quote rune) bool {
	if s.Peek() != quote {
		return false
	}
	s.Bump()

	for {
		switch s.Peek() {
		case quote:
			s.Bump()
			return s.Emit(kind)
		case '\\':
			s.Bump()
			if r := s.Peek(); r >= 0 && r != '\n' {
				s.Bump()
			}
		case '\n', -1:
			s.Errorf("unterminated string")
			return s.Emit(kind)
		default:
			s.Bump()
		}
	}
}

func isDecimal(r rune) bool { return r >= '0' && r <= '9' }
func isOctal(r rune) bool   { return r >= '0' && r <= '7' }
func isBinary(r rune) bool  { return r == '0' || r == '1' }
func isHex(r rune) bool {
	return isDecimal(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

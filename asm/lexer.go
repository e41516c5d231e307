// This file is part of chipvm.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package asm

import (
	"regexp"
	"unicode"

	"github.com/circuitware/chipvm/vm"
)

// identRe matches a valid label identifier.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// isIdentRune allows letters, underscore and digits/hyphens anywhere but
// the first position, matching the label grammar's identifier rule.
func isIdentRune(ch rune, i int) bool {
	if i == 0 {
		return ch == '_' || unicode.IsLetter(ch)
	}
	return ch == '_' || ch == '-' || unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

// stripComment cuts line at the first ';' that is not inside a
// double-quoted string literal.
func stripComment(line string) string {
	inString := false
	escaped := false
	for i, r := range line {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
		case ';':
			return line[:i]
		}
	}
	return line
}

// parseRegister recognizes irN/frN/srN (N in 0..7) and inN/ouN (N in
// 0..3), returning the register class and index.
func parseRegister(name string) (vm.RegClass, int, bool) {
	if len(name) < 3 {
		return 0, 0, false
	}
	prefix, digits := name[:2], name[2:]
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, false
		}
	}
	n := 0
	for _, c := range digits {
		n = n*10 + int(c-'0')
	}
	switch prefix {
	case "ir":
		if n < vm.RegCount {
			return vm.RegIR, n, true
		}
	case "fr":
		if n < vm.RegCount {
			return vm.RegFR, n, true
		}
	case "sr":
		if n < vm.RegCount {
			return vm.RegSR, n, true
		}
	case "in":
		if n < vm.ChannelCount {
			return vm.RegIN, n, true
		}
	case "ou":
		if n < vm.ChannelCount {
			return vm.RegOU, n, true
		}
	}
	return 0, 0, false
}

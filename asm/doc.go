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

// Package asm assembles and disassembles chipvm programs.
//
// A program is a sequence of lines, each of which is blank, a
// comment, a label definition, or an instruction:
//
//	; a comment runs to end of line
//	loop:               ; a label definition
//	    mov ir0, 5       ; mnemonic plus up to three operands
//	    add ir0, [ir1]   ; [...]  addresses memory indirectly
//	    je loop
//
// Operands are a register/channel name (irN, frN, srN, inN, ouN), an
// integer literal (decimal or 0x-prefixed hex), a float literal
// (\d*\.\d+), a double-quoted string literal, or a label reference.
// An integer literal or an irN register may additionally be wrapped in
// [...] to address memory indirectly; the assembler rejects any other
// form inside [...] (ouN included), and never allows a memory reference
// as the third operand.
//
// Compile reports the first error it encounters, with the offending
// line (and column, where the error is tied to a token), and never
// returns a partial program.
package asm

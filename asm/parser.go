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
	"strconv"
	"strings"
	"text/scanner"

	"github.com/circuitware/chipvm/vm"
)

// mnemonicToOp is built once from vm.Table, so the assembler and the
// processor never disagree on which mnemonics exist.
var mnemonicToOp = buildMnemonicTable()

func buildMnemonicTable() map[string]vm.Op {
	m := make(map[string]vm.Op, len(vm.Table))
	for i := range vm.Table {
		op := vm.Op(i)
		m[op.Name()] = op
	}
	return m
}

// fixup records an operand that named a label instead of a resolved
// literal, to be patched in once every label definition has been seen.
type fixup struct {
	opIndex int
	slot    int // 1, 2 or 3
	name    string
	line    int
	col     int
}

// parser turns a program's source lines into a []vm.Opcode in three
// passes: classify lines, validate operand kinds against vm.Table, then
// resolve labels.
type parser struct {
	opcodes []vm.Opcode
	labels  map[string]int
	fixups  []fixup
}

// Compile assembles source into a program. It reports the first error
// encountered, with the offending 0-based line index and a column, and
// never returns a partial program.
func Compile(source string) ([]vm.Opcode, error) {
	p := &parser{labels: make(map[string]int)}
	lines := strings.Split(source, "\n")
	for lineNo, raw := range lines {
		text := strings.TrimSpace(stripComment(raw))
		if text == "" {
			continue
		}
		if name, ok := labelName(text); ok {
			if err := p.defineLabel(name, lineNo); err != nil {
				return nil, err
			}
			continue
		}
		opc, err := p.parseInstruction(text, lineNo)
		if err != nil {
			return nil, err
		}
		p.opcodes = append(p.opcodes, opc)
	}
	if err := p.resolveLabels(); err != nil {
		return nil, err
	}
	return p.opcodes, nil
}

// labelName reports whether text is a bare "<ident>:" label definition,
// returning the identifier with the colon stripped. Any other line
// (including a malformed near-miss) is left for parseInstruction, whose
// mnemonic lookup will produce a more specific diagnostic.
func labelName(text string) (string, bool) {
	if strings.ContainsAny(text, " \t") || !strings.HasSuffix(text, ":") {
		return "", false
	}
	return strings.TrimSuffix(text, ":"), true
}

func (p *parser) defineLabel(name string, lineNo int) error {
	switch {
	case name == "":
		return &CompileError{Line: lineNo, Msg: "empty label name"}
	case name[0] >= '0' && name[0] <= '9':
		return &CompileError{Line: lineNo, Msg: "label name must not start with a digit: " + name}
	case name[0] == '-':
		return &CompileError{Line: lineNo, Msg: "label name must not start with '-': " + name}
	case !identRe.MatchString(name):
		return &CompileError{Line: lineNo, Msg: "invalid label name: " + name}
	}
	if _, _, ok := parseRegister(name); ok {
		return &CompileError{Line: lineNo, Msg: "label reuses a register name: " + name}
	}
	if _, exists := p.labels[name]; exists {
		return &CompileError{Line: lineNo, Msg: "Label with same name already defined: " + name}
	}
	p.labels[name] = len(p.opcodes)
	return nil
}

func (p *parser) resolveLabels() error {
	for _, fx := range p.fixups {
		addr, ok := p.labels[fx.name]
		if !ok {
			return &CompileError{Line: fx.line, Column: fx.col, Msg: "undefined label: " + fx.name}
		}
		lit := vm.Int32(int32(addr))
		switch fx.slot {
		case 1:
			p.opcodes[fx.opIndex].Arg1.Literal = lit
		case 2:
			p.opcodes[fx.opIndex].Arg2.Literal = lit
		case 3:
			p.opcodes[fx.opIndex].Arg3.Literal = lit
		}
	}
	return nil
}

// parseInstruction tokenizes one non-blank, non-label, comment-stripped
// line into an Opcode, validating operand count and kind against
// vm.Table but leaving label references as pending fixups.
func (p *parser) parseInstruction(text string, lineNo int) (vm.Opcode, error) {
	var s scanner.Scanner
	s.Init(strings.NewReader(text))
	s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanChars
	s.IsIdentRune = isIdentRune
	s.Whitespace = scanner.GoWhitespace | 1<<','
	s.Filename = ""

	tok := s.Scan()
	if tok != scanner.Ident {
		return vm.Opcode{}, tokenError(&s, lineNo, "expected a mnemonic")
	}
	mnemonic := strings.ToLower(s.TokenText())
	op, ok := mnemonicToOp[mnemonic]
	if !ok {
		return vm.Opcode{}, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "unknown mnemonic: " + mnemonic}
	}
	info := vm.Table[op]

	opc := vm.Opcode{Line: lineNo, Op: op}
	var args [3]*vm.Arg
	args[0], args[1], args[2] = &opc.Arg1, &opc.Arg2, &opc.Arg3

	slot := 0
	for {
		peeked := s.Peek()
		if peeked == scanner.EOF {
			break
		}
		slot++
		if slot > 3 {
			return vm.Opcode{}, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "too many operands for " + mnemonic}
		}
		if slot > info.Arity {
			return vm.Opcode{}, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "too many operands for " + mnemonic}
		}
		arg, fx, err := p.parseArg(&s, lineNo)
		if err != nil {
			return vm.Opcode{}, err
		}
		if slot == 3 && arg.IsRef {
			// arg3 may never be a memory reference.
			return vm.Opcode{}, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "arg3 may not be a memory reference"}
		}

		// A label reference resolves to an integer literal address;
		// validate against that class now and patch it in once every
		// label definition has been seen.
		class := arg.ClassMaskFor()
		if fx != nil {
			class = vm.MLitInt
		}
		if info.Operands[slot-1].Mask&class == 0 {
			return vm.Opcode{}, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "operand " + strconv.Itoa(slot) + " not valid for " + mnemonic}
		}

		*args[slot-1] = arg
		if fx != nil {
			fx.opIndex = len(p.opcodes)
			fx.slot = slot
			p.fixups = append(p.fixups, *fx)
		}
	}

	if slot != info.Arity {
		return vm.Opcode{}, &CompileError{
			Line: lineNo,
			Msg:  mnemonic + " expects " + strconv.Itoa(info.Arity) + " operand(s), got " + strconv.Itoa(slot),
		}
	}

	if opc.Arg1.IsRef && opc.Arg2.IsRef && info.Operands[0].Mask&vm.MRead != 0 {
		return vm.Opcode{}, &CompileError{Line: lineNo, Msg: "only one memory-reference operand may be read per instruction"}
	}

	return opc, nil
}

func tokenError(s *scanner.Scanner, lineNo int, msg string) *CompileError {
	return &CompileError{Line: lineNo, Column: s.Position.Column, Msg: msg}
}

// parseArg scans one operand. It returns a non-nil *fixup instead of a
// resolved literal when the operand is a bare identifier that names
// neither a register nor a channel, i.e. a label reference.
func (p *parser) parseArg(s *scanner.Scanner, lineNo int) (vm.Arg, *fixup, error) {
	tok := s.Scan()
	isRef := false
	if tok == '[' {
		isRef = true
		tok = s.Scan()
	}
	negate := false
	if tok == '-' {
		negate = true
		tok = s.Scan()
	}

	var arg vm.Arg
	var fx *fixup

	switch tok {
	case scanner.Ident:
		name := s.TokenText()
		if rc, idx, ok := parseRegister(name); ok {
			if negate {
				return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "unexpected '-' before register"}
			}
			if isRef && rc != vm.RegIR {
				if rc == vm.RegOU {
					return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "ouN may not appear inside a memory reference"}
				}
				return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "memory reference must contain an integer literal or an irN register"}
			}
			arg = vm.Arg{Kind: vm.ArgKindReg, Reg: rc, Index: idx, IsRef: isRef}
		} else {
			if isRef {
				return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "memory reference must contain an integer literal or an irN register"}
			}
			if negate {
				return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "unexpected '-' before label reference"}
			}
			arg = vm.Arg{Kind: vm.ArgKindLit}
			fx = &fixup{name: name, line: lineNo, col: s.Position.Column}
		}
	case scanner.Int:
		n, err := strconv.ParseInt(s.TokenText(), 0, 32)
		if err != nil {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "malformed integer literal: " + s.TokenText()}
		}
		if negate {
			n = -n
		}
		arg = vm.Arg{Kind: vm.ArgKindLit, Literal: vm.Int32(int32(n)), IsRef: isRef}
	case scanner.Float:
		f, err := strconv.ParseFloat(s.TokenText(), 32)
		if err != nil {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "malformed float literal: " + s.TokenText()}
		}
		if isRef {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "memory reference must contain an integer literal or an irN register"}
		}
		if negate {
			f = -f
		}
		arg = vm.Arg{Kind: vm.ArgKindLit, Literal: vm.Float32(float32(f))}
	case scanner.String:
		text, err := strconv.Unquote(s.TokenText())
		if err != nil {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "malformed string literal"}
		}
		if isRef {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "memory reference must contain an integer literal or an irN register"}
		}
		if negate {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "unexpected '-' before string literal"}
		}
		arg = vm.Arg{Kind: vm.ArgKindLit, Literal: vm.String(text)}
	default:
		return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "unexpected token in operand position"}
	}

	if isRef {
		if closeTok := s.Scan(); closeTok != ']' {
			return vm.Arg{}, nil, &CompileError{Line: lineNo, Column: s.Position.Column, Msg: "expected ']'"}
		}
	}
	return arg, fx, nil
}

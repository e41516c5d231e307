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
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/circuitware/chipvm/internal/chio"
	"github.com/circuitware/chipvm/vm"
)

// CompileError is the error Compile returns on the first malformed line
// it encounters. Line is the 0-based index into the source's line slice;
// Column is 1-based and zero when the error is not tied to a specific
// token (e.g. a wrong operand count).
type CompileError struct {
	Line   int
	Column int
	Msg    string
}

func (e *CompileError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("line %d, col %d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Assemble compiles source read from r into a program. name is used only
// to wrap read errors, mirroring the (name, reader) shape of the
// teacher's Assemble entrypoint.
func Assemble(name string, r io.Reader) ([]vm.Opcode, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "asm: reading %s", name)
	}
	return Compile(string(b))
}

// Disassemble renders the opcode at position pc as one line of text to w
// and returns the position of the next opcode. w may be an *chio.ErrWriter
// already tracking a write error, in which case it is reused so a chain
// of Disassemble calls only needs to be checked once at the end.
func Disassemble(prog []vm.Opcode, pc int, w io.Writer) (next int, err error) {
	ew, _ := w.(*chio.ErrWriter)
	if ew == nil {
		ew = chio.NewErrWriter(w)
	}
	if pc < 0 || pc >= len(prog) {
		io.WriteString(ew, "???")
		return pc + 1, ew.Err
	}
	opc := prog[pc]
	io.WriteString(ew, opc.Op.Name())
	writeArg := func(a vm.Arg) {
		io.WriteString(ew, " ")
		io.WriteString(ew, formatArg(a))
	}
	info := vm.Table[opc.Op]
	if info.Arity >= 1 {
		writeArg(opc.Arg1)
	}
	if info.Arity >= 2 {
		writeArg(opc.Arg2)
	}
	if info.Arity >= 3 {
		writeArg(opc.Arg3)
	}
	return pc + 1, ew.Err
}

// DisassembleAll writes a disassembly of every opcode in prog to w, one
// per line prefixed with its address.
func DisassembleAll(prog []vm.Opcode, w io.Writer) error {
	ew := chio.NewErrWriter(w)
	for pc := 0; pc < len(prog); {
		fmt.Fprintf(ew, "%04d\t", pc)
		pc, _ = Disassemble(prog, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}

func formatArg(a vm.Arg) string {
	var s string
	switch a.Kind {
	case vm.ArgKindReg:
		s = regName(a.Reg) + strconv.Itoa(a.Index)
	case vm.ArgKindLit:
		s = a.Literal.AsString()
		if a.Literal.Selected() == vm.KindString {
			s = strconv.Quote(s)
		}
	}
	if a.IsRef {
		return "[" + s + "]"
	}
	return s
}

func regName(c vm.RegClass) string {
	switch c {
	case vm.RegIR:
		return "ir"
	case vm.RegFR:
		return "fr"
	case vm.RegSR:
		return "sr"
	case vm.RegIN:
		return "in"
	case vm.RegOU:
		return "ou"
	default:
		return "?"
	}
}

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

package vm

// Op identifies a processor operation.
type Op uint8

// The full operation catalogue.
const (
	OpNop Op = iota
	OpMov
	OpAdd
	OpAdc
	OpSub
	OpCmp
	OpInc
	OpDec
	OpMul
	OpDiv
	OpShl
	OpShr
	OpRol
	OpRor
	OpAnd
	OpOr
	OpXor
	OpNot
	OpTest
	OpInr
	OpFlr
	OpFls
	OpJmp
	OpJe
	OpJne
	OpJnz
	OpJg
	OpJge
	OpJl
	OpJle
	OpMvI2F
	OpMvI2S
	OpMvF2I
	OpMvF2S
	OpMvS2I
	OpMvS2F
	OpLdI2F
	OpLdF2I
	OpFind
	OpRmv
	OpSbs
	OpRpl
	OpChr
	OpBrk

	opCount
)

// Name is the canonical mnemonic used by the assembler and disassembler.
func (o Op) Name() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "???"
}

var opNames = [opCount]string{
	OpNop:   "nop",
	OpMov:   "mov",
	OpAdd:   "add",
	OpAdc:   "adc",
	OpSub:   "sub",
	OpCmp:   "cmp",
	OpInc:   "inc",
	OpDec:   "dec",
	OpMul:   "mul",
	OpDiv:   "div",
	OpShl:   "shl",
	OpShr:   "shr",
	OpRol:   "rol",
	OpRor:   "ror",
	OpAnd:   "and",
	OpOr:    "or",
	OpXor:   "xor",
	OpNot:   "not",
	OpTest:  "test",
	OpInr:   "inr",
	OpFlr:   "flr",
	OpFls:   "fls",
	OpJmp:   "jmp",
	OpJe:    "je",
	OpJne:   "jne",
	OpJnz:   "jnz",
	OpJg:    "jg",
	OpJge:   "jge",
	OpJl:    "jl",
	OpJle:   "jle",
	OpMvI2F: "mvi2f",
	OpMvI2S: "mvi2s",
	OpMvF2I: "mvf2i",
	OpMvF2S: "mvf2s",
	OpMvS2I: "mvs2i",
	OpMvS2F: "mvs2f",
	OpLdI2F: "ldi2f",
	OpLdF2I: "ldf2i",
	OpFind:  "find",
	OpRmv:   "rmv",
	OpSbs:   "sbs",
	OpRpl:   "rpl",
	OpChr:   "chr",
	OpBrk:   "brk",
}

// OperandMask is a bitmask over acceptable operand classes and the
// read/write access an opcode grants that operand slot.
type OperandMask uint32

// Register/literal/memory-reference classes and access flags. A kind is
// the union of one or more class bits plus at least one access flag.
const (
	MIR OperandMask = 1 << iota // irx register
	MFR                         // frx register
	MSR                         // srx register
	MIN                         // inx input latch
	MOU                         // oux output latch
	MLitInt
	MLitFloat
	MLitStr
	MMemInt // [im] memory reference materialized as int
	MMemFlt // [fm] memory reference materialized as float
	MMemStr // [sm] memory reference materialized as string
	MRead
	MWrite
)

// classMask is every class bit, with the two access flags stripped.
const classMask = MIR | MFR | MSR | MIN | MOU | MLitInt | MLitFloat | MLitStr | MMemInt | MMemFlt | MMemStr

// memMask is the subset of classes that denote memory-indirect addressing.
const memMask = MMemInt | MMemFlt | MMemStr

// numRW is the common "any numeric register or its memory form, read-write"
// mask shared by most arithmetic opcodes.
const numRW = MIR | MFR | MMemInt | MMemFlt | MRead | MWrite

// numR is the read-only counterpart, plus literals and input latches.
const numR = MIR | MFR | MIN | MLitInt | MLitFloat | MMemInt | MMemFlt | MRead

// strRW / strR mirror numRW/numR for the string-register family.
const strRW = MSR | MMemStr | MRead | MWrite
const strR = MSR | MIN | MLitStr | MMemStr | MRead

// intRW / intR restrict to the integer-only family (bitwise ops).
const intRW = MIR | MMemInt | MRead | MWrite
const intR = MIR | MIN | MLitInt | MMemInt | MRead

// addrR is the read-only mask accepted by jump targets and any operand
// that must resolve to an address (an int).
const addrR = intR

// OperandSpec describes one argument slot of an opcode.
type OperandSpec struct {
	Mask OperandMask
}

func (s OperandSpec) readable() bool { return s.Mask&MRead != 0 }
func (s OperandSpec) writable() bool { return s.Mask&MWrite != 0 }

// accepts reports whether the given class bit is a member of this spec's
// class mask.
func (s OperandSpec) accepts(class OperandMask) bool {
	return s.Mask&class != 0
}

// OpInfo is the static, per-opcode metadata consulted by both the
// assembler (operand validation) and the processor (fetch/write gating).
type OpInfo struct {
	Operands [3]OperandSpec // zero-value OperandSpec{} means "no such operand"
	Arity    int
}

func op1(a OperandSpec) OpInfo { return OpInfo{Operands: [3]OperandSpec{a}, Arity: 1} }
func op2(a, b OperandSpec) OpInfo {
	return OpInfo{Operands: [3]OperandSpec{a, b}, Arity: 2}
}
func op3(a, b, c OperandSpec) OpInfo {
	return OpInfo{Operands: [3]OperandSpec{a, b, c}, Arity: 3}
}
func op0() OpInfo { return OpInfo{Arity: 0} }

// Table is the static opcode metadata table, indexed by Op. It is the
// single source of truth used by both asm and vm.
var Table = buildTable()

func buildTable() [opCount]OpInfo {
	var t [opCount]OpInfo

	t[OpNop] = op0()

	// mov: arg1 is a write-only sink (any register/channel/memory class),
	// arg2 is a read-only source.
	t[OpMov] = op2(
		OperandSpec{MIR | MFR | MSR | MOU | memMask | MWrite},
		OperandSpec{MIR | MFR | MSR | MIN | MLitInt | MLitFloat | MLitStr | memMask | MRead},
	)

	// add/adc/sub/cmp: numeric or string, arg1 read-write (cmp discards
	// the result but still needs to read arg1), arg2 read-only.
	binArith := op2(OperandSpec{numRW | strRW}, OperandSpec{numR | strR})
	t[OpAdd] = binArith
	t[OpAdc] = binArith
	t[OpSub] = binArith
	t[OpCmp] = op2(OperandSpec{(numRW | strRW) &^ MWrite | MRead}, OperandSpec{numR | strR})

	t[OpInc] = op1(OperandSpec{MIR | MFR | MMemInt | MMemFlt | MRead | MWrite})
	t[OpDec] = t[OpInc]

	// mul/div: numeric only, no string effect.
	t[OpMul] = op2(OperandSpec{numRW}, OperandSpec{numR})
	t[OpDiv] = op2(OperandSpec{numRW}, OperandSpec{numR})

	// shl/shr/rol/ror: int or string on arg1, integer count on arg2.
	shiftLike := op2(OperandSpec{intRW | strRW}, OperandSpec{intR})
	t[OpShl] = shiftLike
	t[OpShr] = shiftLike
	t[OpRol] = shiftLike
	t[OpRor] = shiftLike

	// and/or/xor: integer only.
	bitwise := op2(OperandSpec{intRW}, OperandSpec{intR})
	t[OpAnd] = bitwise
	t[OpOr] = bitwise
	t[OpXor] = bitwise

	t[OpNot] = op1(OperandSpec{intRW})
	t[OpTest] = op2(OperandSpec{MIR | MLitInt | MMemInt | MRead}, OperandSpec{intR})

	t[OpInr] = op1(OperandSpec{MIR | MMemInt | MWrite})
	t[OpFlr] = op1(OperandSpec{MIR | MMemInt | MWrite})
	t[OpFls] = op1(OperandSpec{intR})

	jump := op1(OperandSpec{addrR})
	t[OpJmp] = jump
	t[OpJe] = jump
	t[OpJne] = jump
	t[OpJnz] = jump
	t[OpJg] = jump
	t[OpJge] = jump
	t[OpJl] = jump
	t[OpJle] = jump

	t[OpMvI2F] = op2(OperandSpec{MFR | MMemFlt | MWrite}, OperandSpec{intR})
	t[OpMvI2S] = op2(OperandSpec{MSR | MMemStr | MWrite}, OperandSpec{intR})
	t[OpMvF2I] = op2(OperandSpec{MIR | MMemInt | MWrite}, OperandSpec{MFR | MIN | MLitFloat | MMemFlt | MRead})
	t[OpMvF2S] = op2(OperandSpec{MSR | MMemStr | MWrite}, OperandSpec{MFR | MIN | MLitFloat | MMemFlt | MRead})
	t[OpMvS2I] = op2(OperandSpec{MIR | MMemInt | MWrite}, OperandSpec{strR})
	t[OpMvS2F] = op2(OperandSpec{MFR | MMemFlt | MWrite}, OperandSpec{strR})

	t[OpLdI2F] = op2(OperandSpec{MFR | MMemFlt | MWrite}, OperandSpec{intR})
	t[OpLdF2I] = op2(OperandSpec{MIR | MMemInt | MWrite}, OperandSpec{MFR | MIN | MLitFloat | MMemFlt | MRead})

	t[OpFind] = op3(OperandSpec{MIR | MMemInt | MWrite}, OperandSpec{strR}, OperandSpec{MSR | MIN | MLitStr | MRead})
	t[OpRmv] = op3(OperandSpec{MSR | MMemStr | MWrite}, OperandSpec{strR}, OperandSpec{MSR | MIN | MLitStr | MRead})
	t[OpSbs] = op3(OperandSpec{MSR | MMemStr | MRead | MWrite}, OperandSpec{intR}, OperandSpec{intR})
	t[OpRpl] = op3(OperandSpec{MSR | MMemStr | MRead | MWrite}, OperandSpec{strR}, OperandSpec{MSR | MIN | MLitStr | MRead})
	t[OpChr] = op3(OperandSpec{MIR | MMemInt | MWrite}, OperandSpec{strR}, OperandSpec{intR})

	t[OpBrk] = op0()

	assertTableWellFormed(&t)
	return t
}

// assertTableWellFormed is a build-time assertion: every declared
// operand must carry at least one access flag.
func assertTableWellFormed(t *[opCount]OpInfo) {
	for op, info := range t {
		for i := 0; i < info.Arity; i++ {
			spec := info.Operands[i]
			if spec.Mask&(MRead|MWrite) == 0 {
				panic("chipvm: opcode " + Op(op).Name() + " operand has neither read nor write access")
			}
		}
	}
}

// flagsUnaffected reports whether an opcode never touches the status
// flags: instructions that do not arithmetically alter arg1 (nop, jmp*,
// brk) leave flags exactly as they were.
func flagsUnaffected(op Op) bool {
	switch op {
	case OpNop, OpJmp, OpJe, OpJne, OpJnz, OpJg, OpJge, OpJl, OpJle, OpBrk:
		return true
	default:
		return false
	}
}

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

// operation is the fetch/execute scratch record for one instruction,
// carrying each resolved operand in its own parallel field per kind.
type operation struct {
	op         Op
	a1, a2, a3 Value
	// out is filled in by execute.
	out Value
	// noWrite suppresses the writeback register/channel write for
	// instructions that only affect flags (cmp, test).
	noWrite bool
	// jumped is set by jmp-family execution when the jump is taken; the
	// jump has already overwritten IP, and writeback skips the
	// destination write.
	jumped bool
	// flags, when non-nil, describes how status flags should be updated
	// after this instruction executes.
	flags *flagUpdate
	// halt requests that Working be cleared (brk, unknown opcode).
	halt bool
	// debugLine, when non-empty, is written to DebugAddress via
	// MemoryWrite once the instruction completes (brk, or Verbose mode).
	debugLine string
}

// resolveAddress computes the effective address of a memory-reference
// argument: either its literal int or the contents of the irx register
// it names.
func (p *Processor) resolveAddress(a Arg) uint32 {
	if a.Kind == ArgKindReg && a.Reg == RegIR {
		return uint32(p.Registers.IR[a.Index])
	}
	return uint32(a.Literal.Int)
}

// fetchMemory implements the memory-reference stall contract shared by
// arg1 and arg2.
func (p *Processor) fetchMemory(a Arg) (Value, bool) {
	addr := p.resolveAddress(a)
	if p.Pending.ready && p.Pending.Address == addr {
		v := FromMemory(p.Pending.LastValue)
		p.Pending.ready = false
		return v, true
	}
	p.Pending.Address = addr
	p.Pending.ready = false
	p.Pending.Awaiting = true
	p.obs.MemoryRead(addr)
	return Value{}, false
}

// fetchRegister reads a non-reference register/channel/literal argument.
// needRead is false when this operand slot is only written (arg1 of a
// write-only opcode): an oux destination still requires the "already
// set" stall check even when the value itself is never read.
func (p *Processor) fetchRegister(a Arg, needRead bool) (Value, bool) {
	if a.Kind == ArgKindLit {
		return a.Literal, true
	}
	switch a.Reg {
	case RegIR:
		return Int32(p.Registers.IR[a.Index]), true
	case RegFR:
		return Float32(p.Registers.FR[a.Index]), true
	case RegSR:
		return String(p.Registers.SR[a.Index]), true
	case RegIN:
		latch := &p.In[a.Index]
		if !latch.Set {
			return Value{}, false
		}
		v := Value{Kind: KindInt | KindFloat | KindString, Int: latch.Int, Float: latch.Float, Str: latch.Str}
		latch.clear()
		return v, true
	case RegOU:
		// A write-only oux operand: stall if the channel still holds an
		// undelivered value. There is nothing to read.
		if !needRead {
			if p.Out[a.Index].Set {
				return Value{}, false
			}
			return Value{}, true
		}
		return Value{}, true
	default:
		return Value{}, true
	}
}

// fetchArg dispatches a single operand slot, given whether that slot is
// declared writable and/or readable by the opcode.
func (p *Processor) fetchArg(a Arg, spec OperandSpec) (Value, bool) {
	if a.Kind == ArgKindNone {
		return Value{}, true
	}
	if a.IsRef {
		// A write-only memory destination (e.g. arg1 of mov) is never
		// read, so it must not issue a MemoryRead or stall on one — the
		// address is only needed later, at writeback.
		if spec.writable() && !spec.readable() {
			return Value{}, true
		}
		return p.fetchMemory(a)
	}
	needRead := spec.readable()
	return p.fetchRegister(a, needRead)
}

// fetch materializes all operands of opc into a scratch operation
// record. ok is false when any operand stalled; the caller then leaves
// IP on this instruction and ends the sub-step without advancing further.
func (p *Processor) fetch(opc Opcode) (operation, bool) {
	// A corrupt or hand-built program can carry an Op value past the end
	// of the table; treat it the same as the execute-stage default case
	// (halt) rather than indexing out of range: an unknown opcode byte
	// clears Working.
	if int(opc.Op) >= len(Table) {
		return operation{op: opc.Op, halt: true, noWrite: true}, true
	}
	info := Table[opc.Op]
	scr := operation{op: opc.Op}

	// arg1 special-case: if arg1 is write-only, its value is not needed,
	// but an oux operand must still be stall-checked.
	v1, ok := p.fetchArg(opc.Arg1, info.Operands[0])
	if !ok {
		return scr, false
	}
	scr.a1 = v1

	if info.Arity >= 2 {
		v2, ok := p.fetchArg(opc.Arg2, info.Operands[1])
		if !ok {
			return scr, false
		}
		scr.a2 = v2
	}
	if info.Arity >= 3 {
		v3, ok := p.fetchArg(opc.Arg3, info.Operands[2])
		if !ok {
			return scr, false
		}
		scr.a3 = v3
	}
	return scr, true
}

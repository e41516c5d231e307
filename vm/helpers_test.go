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

package vm_test

import (
	"testing"

	"github.com/circuitware/chipvm/vm"
)

// recorder is the vm.Observer used across the test suite: it just remembers
// what it was told, rather than driving a real memory or console.
type recorder struct {
	memReads  []uint32
	memWrites map[uint32]string
	chWrites  map[int]string
	chOrder   []int
}

func newRecorder() *recorder {
	return &recorder{memWrites: map[uint32]string{}, chWrites: map[int]string{}}
}

func (r *recorder) MemoryRead(addr uint32) { r.memReads = append(r.memReads, addr) }
func (r *recorder) MemoryWrite(addr uint32, v string) {
	r.memWrites[addr] = v
}
func (r *recorder) ChannelWrite(index int, v string) {
	r.chWrites[index] = v
	r.chOrder = append(r.chOrder, index)
}

// Argument-building helpers, one per addressing mode a hand-built Opcode
// needs. Mirrors what asm.Compile would produce, without going through the
// assembler.
func ir(n int) vm.Arg  { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegIR, Index: n} }
func fr(n int) vm.Arg  { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegFR, Index: n} }
func sr(n int) vm.Arg  { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegSR, Index: n} }
func in(n int) vm.Arg  { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegIN, Index: n} }
func out(n int) vm.Arg { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegOU, Index: n} }

func litI(v int32) vm.Arg   { return vm.Arg{Kind: vm.ArgKindLit, Literal: vm.Int32(v)} }
func litF(v float32) vm.Arg { return vm.Arg{Kind: vm.ArgKindLit, Literal: vm.Float32(v)} }
func litS(v string) vm.Arg  { return vm.Arg{Kind: vm.ArgKindLit, Literal: vm.String(v)} }

func memI(addr int32) vm.Arg { return vm.Arg{Kind: vm.ArgKindLit, Literal: vm.Int32(addr), IsRef: true} }
func memIR(n int) vm.Arg     { return vm.Arg{Kind: vm.ArgKindReg, Reg: vm.RegIR, Index: n, IsRef: true} }

func op0(o vm.Op) vm.Opcode { return vm.Opcode{Op: o} }
func op1(o vm.Op, a vm.Arg) vm.Opcode {
	return vm.Opcode{Op: o, Arg1: a}
}
func op2(o vm.Op, a, b vm.Arg) vm.Opcode {
	return vm.Opcode{Op: o, Arg1: a, Arg2: b}
}
func op3(o vm.Op, a, b, c vm.Arg) vm.Opcode {
	return vm.Opcode{Op: o, Arg1: a, Arg2: b, Arg3: c}
}

// mustNew builds a Processor over prog, backed by a fresh recorder.
func mustNew(t *testing.T, prog []vm.Opcode, opts ...vm.Option) (*vm.Processor, *recorder) {
	t.Helper()
	rec := newRecorder()
	p, err := vm.New(prog, append([]vm.Option{vm.WithObserver(rec)}, opts...)...)
	if err != nil {
		t.Fatalf("vm.New: %v", err)
	}
	return p, rec
}

// runToHalt drives Cycle until the processor stops working or maxCycles is
// exhausted, whichever comes first. A stall, a memory write or a nop ends
// a tick early, so a handful of instructions can need several Cycle
// calls.
func runToHalt(p *vm.Processor, maxCycles int) {
	for i := 0; i < maxCycles && p.State() == vm.Working; i++ {
		p.Cycle()
	}
}

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

// writeback commits scr.out to its destination and applies any pending
// flag update. It reports whether this instruction ends the current
// tick: only a memory-reference destination (a MemoryWrite request)
// does; an ordinary register or channel write, mov included, lets the
// tick continue into the next sub-step.
func (p *Processor) writeback(opc Opcode, scr operation) bool {
	if scr.flags != nil {
		scr.flags.apply(&p.Flags)
	}
	if scr.noWrite || scr.jumped {
		return false
	}

	dest := opc.Arg1
	if dest.Kind == ArgKindNone {
		return false
	}
	if dest.IsRef {
		addr := p.resolveAddress(dest)
		p.obs.MemoryWrite(addr, scr.out.AsString())
		return true
	}

	switch dest.Reg {
	case RegIR:
		p.Registers.IR[dest.Index] = scr.out.Int
	case RegFR:
		p.Registers.FR[dest.Index] = scr.out.Float
	case RegSR:
		p.Registers.SR[dest.Index] = scr.out.Str
	case RegOU:
		p.Out[dest.Index] = OutputLatch{Value: scr.out, Set: true}
	}

	return false
}

// flushOutputs delivers every Set output latch to the observer in
// ascending channel order and clears it, once per Cycle.
func (p *Processor) flushOutputs() {
	for i := range p.Out {
		if p.Out[i].Set {
			p.obs.ChannelWrite(i, p.Out[i].Value.AsString())
			p.Out[i] = OutputLatch{}
		}
	}
}

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

import "fmt"

// Cycle advances the processor by up to Multiplier instructions,
// stopping early on a stall, a halt, a step-mode boundary, or an
// instruction that ends the tick outright.
//
// A stalled sub-step never advances IP: the same instruction is
// re-fetched the next time Cycle runs, once the host has supplied the
// missing channel input or memory value. Running off the end of the
// program and executing an explicit nop are the same event: both end
// the tick and leave Working untouched, so the next Cycle simply picks
// up where this one left off.
func (p *Processor) Cycle() {
	p.lastLoad = FullyConsumed
	if !p.working {
		return
	}

	for i := 0; i < p.Multiplier; i++ {
		if !p.working {
			break
		}
		if int(p.IP) >= len(p.Program) {
			break
		}

		opc := p.Program[p.IP]
		if opc.Op == OpNop {
			p.IP++
			break
		}

		scr, ok := p.fetch(opc)
		if !ok {
			p.lastLoad = Underloaded
			break
		}

		fetchedAt := p.IP
		p.IP++

		scr = p.execute(opc, scr)
		if scr.halt {
			p.working = false
		}
		endsTick := p.writeback(opc, scr)

		if p.DebugMode == DebugVerbose {
			p.obs.MemoryWrite(DebugAddress, traceLine(fetchedAt, opc, scr))
		}
		if scr.debugLine != "" {
			p.obs.MemoryWrite(DebugAddress, scr.debugLine)
		}

		if p.DebugMode == DebugStepByStep {
			p.working = false
			break
		}
		if endsTick {
			break
		}
	}

	p.flushOutputs()
}

func traceLine(ip uint32, opc Opcode, scr operation) string {
	return fmt.Sprintf("%04x %-5s -> %s", ip, opc.Op.Name(), scr.out.AsString())
}

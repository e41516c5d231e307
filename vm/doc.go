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

// Package vm implements the chipvm register-machine processor: a small,
// cooperatively scheduled 32-bit CPU meant to be embedded in a larger
// simulation and driven one external clock tick at a time.
//
// A Processor owns eight integer registers, eight float registers,
// eight nullable string registers, four input signal latches and four
// output signal latches, an instruction pointer, four status flags and
// a single outstanding memory request. Every value flowing through the
// machine is a Value: a tri-typed tag that may simultaneously carry an
// int32, a float32 and a string, because values read off an input
// latch are materialized under all three interpretations at once.
//
// Load a Program (produced by the asm package, or hand-built) and call
// Cycle repeatedly; the host is expected to satisfy MemoryRead requests
// with Memory and to deliver signals with Channel, both of which are
// safe to call between Cycle invocations but never from within an
// Observer callback triggered by one.
//
// Cycle never blocks: a memory read or channel read that has no data
// yet simply stalls the current instruction until the next call.
package vm

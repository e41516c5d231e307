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

// RegCount is the fixed size of each register/latch bank.
const RegCount = 8

// ChannelCount is the fixed number of input and output signal channels.
const ChannelCount = 4

// Registers is the processor's register file. String registers are
// "nullable": the Go zero value "" doubles as null.
type Registers struct {
	IR [RegCount]int32
	FR [RegCount]float32
	SR [RegCount]string
}

// InputLatch is one of the four in0..in3 channel buffers. Set is cleared
// by any read and by a successful fetch.
type InputLatch struct {
	Int   int32
	Float float32
	Str   string
	Set   bool
}

// clear resets the latch to its empty state: (0, 0.0, null, false).
func (l *InputLatch) clear() { *l = InputLatch{} }

// OutputLatch is one of the four ou0..ou3 channel buffers. It stores the
// full tri-typed value written to it; ChannelWrite receives that value
// stringified under its highest-precedence Kind when the latch is flushed.
type OutputLatch struct {
	Value Value
	Set   bool
}

// Flags holds the four status bits.
type Flags struct {
	OF, SF, ZF, CF bool
}

// asNibble packs the flags as OF<<3 | SF<<2 | ZF<<1 | CF, per the flr/fls
// opcodes.
func (f Flags) asNibble() int32 {
	var n int32
	if f.OF {
		n |= 1 << 3
	}
	if f.SF {
		n |= 1 << 2
	}
	if f.ZF {
		n |= 1 << 1
	}
	if f.CF {
		n |= 1
	}
	return n
}

// setFromNibble is the inverse of asNibble, used by fls.
func (f *Flags) setFromNibble(n int32) {
	f.CF = n&1 != 0
	f.ZF = n&(1<<1) != 0
	f.SF = n&(1<<2) != 0
	f.OF = n&(1<<3) != 0
}

// PendingMemory tracks the single outstanding memory-read request: at
// any moment at most one memory read can be outstanding.
type PendingMemory struct {
	Address  uint32
	Awaiting bool
	// LastValue is the most recent raw string handed to Processor.Memory.
	LastValue string
	// ready is set once LastValue has been supplied for Address and
	// cleared again once a fetch has consumed it. It is not part of the
	// public (address, awaiting?, last_value) tuple but is needed
	// internally to implement the "address matches and the read has
	// completed" fetch condition.
	ready bool
}

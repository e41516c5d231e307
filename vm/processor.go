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

import "github.com/pkg/errors"

// DebugMode controls how many instructions a single Cycle executes and
// whether executed instructions are traced.
type DebugMode uint8

const (
	// DebugNone runs up to Multiplier sub-steps per Cycle, silently.
	DebugNone DebugMode = iota
	// DebugStepByStep executes at most one instruction per Cycle, then
	// stops the processor.
	DebugStepByStep
	// DebugVerbose runs like DebugNone but emits a MemoryWrite(0xFFFFFFFF, ...)
	// debug line for every executed instruction.
	DebugVerbose
)

// RunState is the processor's "state" signal.
type RunState uint8

const (
	Working RunState = iota
	Stopped
)

func (s RunState) String() string {
	if s == Working {
		return "working"
	}
	return "stopped"
}

// LoadState is the processor's "load" signal, reported once per Cycle:
// whether the tick ended on a stall ("underloaded") or for any other
// reason ("fully-consumed").
type LoadState uint8

const (
	FullyConsumed LoadState = iota
	Underloaded
)

func (s LoadState) String() string {
	if s == FullyConsumed {
		return "fully-consumed"
	}
	return "underloaded"
}

// Observer receives the three event callbacks a host must implement to
// drive external memory and I/O: a single small interface in place of
// per-slot callback fields.
type Observer interface {
	MemoryRead(address uint32)
	MemoryWrite(address uint32, value string)
	ChannelWrite(index int, value string)
}

type nopObserver struct{}

func (nopObserver) MemoryRead(uint32)          {}
func (nopObserver) MemoryWrite(uint32, string) {}
func (nopObserver) ChannelWrite(int, string)   {}

// DebugAddress is the magic memory address reserved for debug output.
const DebugAddress uint32 = 0xFFFFFFFF

// DefaultMultiplier is the default number of sub-steps per Cycle.
const DefaultMultiplier = 8

// Processor is a chipvm register-machine instance.
type Processor struct {
	Registers Registers
	In        [ChannelCount]InputLatch
	Out       [ChannelCount]OutputLatch

	IP      uint32
	Flags   Flags
	Pending PendingMemory
	Program []Opcode

	Multiplier int
	DebugMode  DebugMode

	working  bool
	lastLoad LoadState
	obs      Observer
}

// Option configures a Processor at construction time.
type Option func(*Processor) error

// WithMultiplier sets the number of sub-steps executed per Cycle,
// clamped to [1,16].
func WithMultiplier(n int) Option {
	return func(p *Processor) error {
		if n < 1 {
			n = 1
		}
		if n > 16 {
			n = 16
		}
		p.Multiplier = n
		return nil
	}
}

// WithDebugMode sets the debug mode.
func WithDebugMode(m DebugMode) Option {
	return func(p *Processor) error {
		p.DebugMode = m
		return nil
	}
}

// WithObserver binds the Observer that receives MemoryRead, MemoryWrite
// and ChannelWrite callbacks. The default is a no-op observer, which is
// convenient for unit-testing the fetch/execute/writeback machinery
// without a host.
func WithObserver(o Observer) Option {
	return func(p *Processor) error {
		if o == nil {
			return errors.New("WithObserver: nil observer")
		}
		p.obs = o
		return nil
	}
}

// SetOptions applies the given options in order.
func (p *Processor) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return errors.Wrap(err, "SetOptions")
		}
	}
	return nil
}

// New creates a Processor with the given program image already loaded.
func New(program []Opcode, opts ...Option) (*Processor, error) {
	p := &Processor{
		Multiplier: DefaultMultiplier,
		obs:        nopObserver{},
		working:    true,
	}
	p.Program = program
	if err := p.SetOptions(opts...); err != nil {
		return nil, err
	}
	return p, nil
}

// Load replaces the program image and resets all processor state.
func (p *Processor) Load(program []Opcode) {
	p.Program = program
	p.Reset()
}

// Reset clears registers, flags, latches and the pending memory request
// and sets IP to 0. The program image and configured options are left
// untouched.
func (p *Processor) Reset() {
	p.Registers = Registers{}
	p.In = [ChannelCount]InputLatch{}
	p.Out = [ChannelCount]OutputLatch{}
	p.IP = 0
	p.Flags = Flags{}
	p.Pending = PendingMemory{}
	p.working = true
	p.lastLoad = FullyConsumed
}

// Start flips the Working state bit on.
func (p *Processor) Start() { p.working = true }

// Stop flips the Working state bit off. Subsequent Cycle calls are
// no-ops until Start is called again.
func (p *Processor) Stop() { p.working = false }

// State reports the processor's current run state.
func (p *Processor) State() RunState {
	if p.working {
		return Working
	}
	return Stopped
}

// LastLoad reports the load signal emitted by the most recent Cycle.
func (p *Processor) LastLoad() LoadState { return p.lastLoad }

// Channel delivers an input signal on channel index (0..3). The raw text
// is parsed as int and float (0 on failure) and kept verbatim as a
// string; Set is raised so the next consuming read observes it.
func (p *Processor) Channel(index int, raw string) error {
	if index < 0 || index >= ChannelCount {
		return errors.Errorf("Channel: index %d out of range [0,%d)", index, ChannelCount)
	}
	v := FromChannel(raw)
	p.In[index] = InputLatch{Int: v.Int, Float: v.Float, Str: v.Str, Set: true}
	return nil
}

// Memory satisfies the outstanding memory read with raw. It does not
// validate that a read is actually pending — callers are responsible
// for pairing MemoryRead events with Memory calls.
func (p *Processor) Memory(raw string) {
	p.Pending.LastValue = raw
	p.Pending.Awaiting = false
	p.Pending.ready = true
}

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

func TestNew_MultiplierClamp(t *testing.T) {
	cases := []struct {
		set  int
		want int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{16, 16},
		{17, 16},
		{1000, 16},
	}
	for _, c := range cases {
		p, err := vm.New(nil, vm.WithMultiplier(c.set))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if p.Multiplier != c.want {
			t.Errorf("WithMultiplier(%d): Multiplier = %d, want %d", c.set, p.Multiplier, c.want)
		}
	}
}

func TestNew_DefaultMultiplier(t *testing.T) {
	p, err := vm.New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Multiplier != vm.DefaultMultiplier {
		t.Errorf("Multiplier = %d, want DefaultMultiplier(%d)", p.Multiplier, vm.DefaultMultiplier)
	}
}

func TestWithObserver_NilIsError(t *testing.T) {
	_, err := vm.New(nil, vm.WithObserver(nil))
	if err == nil {
		t.Fatal("New with WithObserver(nil) succeeded, want an error")
	}
}

func TestLoad_ResetsState(t *testing.T) {
	prog := []vm.Opcode{op2(vm.OpMov, ir(0), litI(1))}
	p, _ := mustNew(t, prog)
	p.Registers.IR[1] = 9
	p.Flags.ZF = true
	p.IP = 5

	p.Load([]vm.Opcode{op0(vm.OpBrk)})

	if p.Registers.IR[1] != 0 {
		t.Errorf("IR[1] = %d, want 0 after Load", p.Registers.IR[1])
	}
	if p.Flags.ZF {
		t.Errorf("Flags.ZF = true, want false after Load")
	}
	if p.IP != 0 {
		t.Errorf("IP = %d, want 0 after Load", p.IP)
	}
	if len(p.Program) != 1 || p.Program[0].Op != vm.OpBrk {
		t.Errorf("Program = %v, want the new single-brk image", p.Program)
	}
}

func TestReset_PreservesOptionsAndProgram(t *testing.T) {
	prog := []vm.Opcode{op0(vm.OpNop)}
	p, err := vm.New(prog, vm.WithMultiplier(4))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p.Reset()
	if p.Multiplier != 4 {
		t.Errorf("Multiplier = %d after Reset, want 4 (options must survive Reset)", p.Multiplier)
	}
	if len(p.Program) != 1 {
		t.Errorf("Program lost after Reset, want it untouched")
	}
}

func TestDebugStepByStep_OneInstructionPerCycle(t *testing.T) {
	prog := []vm.Opcode{
		op2(vm.OpMov, ir(0), litI(1)),
		op2(vm.OpMov, ir(1), litI(2)),
	}
	p, _ := mustNew(t, prog, vm.WithDebugMode(vm.DebugStepByStep))

	p.Cycle()
	if p.Registers.IR[0] != 1 {
		t.Errorf("IR[0] = %d, want 1 after first step", p.Registers.IR[0])
	}
	if p.Registers.IR[1] != 0 {
		t.Errorf("IR[1] = %d, want 0: step mode must not run a second instruction", p.Registers.IR[1])
	}
	if p.State() != vm.Stopped {
		t.Errorf("State() = %v, want Stopped: step mode stops after one instruction", p.State())
	}

	p.Start()
	p.Cycle()
	if p.Registers.IR[1] != 2 {
		t.Errorf("IR[1] = %d, want 2 after Start and a second step", p.Registers.IR[1])
	}
}

func TestStartStopState(t *testing.T) {
	prog := []vm.Opcode{op2(vm.OpMov, ir(0), litI(1))}
	p, _ := mustNew(t, prog)

	if p.State() != vm.Working {
		t.Fatalf("State() = %v, want Working immediately after New", p.State())
	}

	p.Stop()
	if p.State() != vm.Stopped {
		t.Errorf("State() = %v, want Stopped after Stop", p.State())
	}
	p.Cycle()
	if p.Registers.IR[0] != 0 {
		t.Errorf("IR[0] = %d, want 0: Cycle must be a no-op while stopped", p.Registers.IR[0])
	}

	p.Start()
	p.Cycle()
	if p.Registers.IR[0] != 1 {
		t.Errorf("IR[0] = %d, want 1 after Start reactivates the processor", p.Registers.IR[0])
	}
}

func TestRunState_String(t *testing.T) {
	if got, want := vm.Working.String(), "working"; got != want {
		t.Errorf("Working.String() = %q, want %q", got, want)
	}
	if got, want := vm.Stopped.String(), "stopped"; got != want {
		t.Errorf("Stopped.String() = %q, want %q", got, want)
	}
}

func TestLoadState_String(t *testing.T) {
	if got, want := vm.FullyConsumed.String(), "fully-consumed"; got != want {
		t.Errorf("FullyConsumed.String() = %q, want %q", got, want)
	}
	if got, want := vm.Underloaded.String(), "underloaded"; got != want {
		t.Errorf("Underloaded.String() = %q, want %q", got, want)
	}
}

func TestChannel_IndexOutOfRange(t *testing.T) {
	p, _ := mustNew(t, nil)
	if err := p.Channel(-1, "1"); err == nil {
		t.Error("Channel(-1, ...) succeeded, want an error")
	}
	if err := p.Channel(vm.ChannelCount, "1"); err == nil {
		t.Error("Channel(ChannelCount, ...) succeeded, want an error")
	}
}

func TestBrkHaltsAndEmitsDebugLine(t *testing.T) {
	prog := []vm.Opcode{op0(vm.OpBrk)}
	p, rec := mustNew(t, prog)

	p.Cycle()
	if p.State() != vm.Stopped {
		t.Errorf("State() = %v, want Stopped after brk", p.State())
	}
	if rec.memWrites[vm.DebugAddress] != "brk" {
		t.Errorf("debug line = %q, want \"brk\"", rec.memWrites[vm.DebugAddress])
	}
}

func TestUnknownOpcodeHalts(t *testing.T) {
	prog := []vm.Opcode{{Op: vm.Op(200)}}
	p, _ := mustNew(t, prog)
	p.Cycle()
	if p.State() != vm.Stopped {
		t.Errorf("State() = %v, want Stopped after an unrecognized opcode", p.State())
	}
}

func TestProgramEndLeavesWorkingUntouched(t *testing.T) {
	// Running off the end of the program is a silent nop, not an error:
	// this is distinct from an unknown opcode byte, which does halt
	// (TestUnknownOpcodeHalts) — running off the end of the program is not
	// itself an error condition, so a later Load with a longer image can
	// resume execution without an explicit Start.
	p, _ := mustNew(t, nil)
	p.Cycle()
	if p.State() != vm.Working {
		t.Errorf("State() = %v, want Working: running past the end of the program is not a halt", p.State())
	}
	if p.LastLoad() != vm.FullyConsumed {
		t.Errorf("LastLoad() = %v, want FullyConsumed", p.LastLoad())
	}
}

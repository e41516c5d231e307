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

func TestOpName(t *testing.T) {
	cases := []struct {
		op   vm.Op
		want string
	}{
		{vm.OpNop, "nop"},
		{vm.OpMov, "mov"},
		{vm.OpAdc, "adc"},
		{vm.OpLdI2F, "ldi2f"},
		{vm.OpBrk, "brk"},
	}
	for _, c := range cases {
		if got := c.op.Name(); got != c.want {
			t.Errorf("%v.Name() = %q, want %q", c.op, got, c.want)
		}
	}
}

func TestOpName_OutOfRange(t *testing.T) {
	var bogus vm.Op = 255
	if got := bogus.Name(); got != "???" {
		t.Errorf("out-of-range Op.Name() = %q, want \"???\"", got)
	}
}

func TestTable_Arity(t *testing.T) {
	cases := []struct {
		op    vm.Op
		arity int
	}{
		{vm.OpNop, 0},
		{vm.OpBrk, 0},
		{vm.OpMov, 2},
		{vm.OpInc, 1},
		{vm.OpJmp, 1},
		{vm.OpFind, 3},
		{vm.OpSbs, 3},
	}
	for _, c := range cases {
		info := vm.Table[c.op]
		if info.Arity != c.arity {
			t.Errorf("Table[%v].Arity = %d, want %d", c.op, info.Arity, c.arity)
		}
	}
}

func TestTable_JumpTargetsAreAddressOnly(t *testing.T) {
	for _, op := range []vm.Op{vm.OpJmp, vm.OpJe, vm.OpJne, vm.OpJnz, vm.OpJg, vm.OpJge, vm.OpJl, vm.OpJle} {
		info := vm.Table[op]
		spec := info.Operands[0]
		if spec.Mask&vm.MWrite != 0 {
			t.Errorf("Table[%v] jump target is writable, want read-only", op)
		}
	}
}

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

func TestValue_SelectedPriority(t *testing.T) {
	all := vm.FromChannel("42")
	if got := all.Selected(); got != vm.KindInt {
		t.Errorf("tri-typed value selects %v, want KindInt", got)
	}

	floatOnly := vm.Float32(1.5)
	if got := floatOnly.Selected(); got != vm.KindFloat {
		t.Errorf("float-only value selects %v, want KindFloat", got)
	}

	stringOnly := vm.String("hi")
	if got := stringOnly.Selected(); got != vm.KindString {
		t.Errorf("string-only value selects %v, want KindString", got)
	}
}

func TestValue_AsString(t *testing.T) {
	cases := []struct {
		name string
		v    vm.Value
		want string
	}{
		{"int", vm.Int32(-42), "-42"},
		{"float", vm.Float32(3.5), "3.5"},
		{"string", vm.String("hello"), "hello"},
	}
	for _, c := range cases {
		if got := c.v.AsString(); got != c.want {
			t.Errorf("%s: AsString() = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestFromChannel_ParseFailureFallsBackToZero(t *testing.T) {
	v := vm.FromChannel("not a number")
	if v.Int != 0 {
		t.Errorf("Int = %d, want 0 on parse failure", v.Int)
	}
	if v.Float != 0 {
		t.Errorf("Float = %g, want 0 on parse failure", v.Float)
	}
	if v.Str != "not a number" {
		t.Errorf("Str = %q, want original raw text preserved", v.Str)
	}
	if v.Selected() != vm.KindInt {
		t.Errorf("Selected() = %v, want KindInt: a channel value always carries all three kinds", v.Selected())
	}
}

func TestFromMemory_UnparseableIntIsAbsentNotZero(t *testing.T) {
	v := vm.FromMemory("hello")
	if v.Kind&vm.KindInt != 0 {
		t.Errorf("Kind has KindInt set for a non-numeric string, want it absent")
	}
	if v.Selected() != vm.KindString {
		t.Errorf("Selected() = %v, want KindString when int parse fails", v.Selected())
	}
}

func TestFromMemory_ParseableIntCarriesAllThree(t *testing.T) {
	v := vm.FromMemory("7")
	if v.Selected() != vm.KindInt {
		t.Errorf("Selected() = %v, want KindInt for a numeric raw value", v.Selected())
	}
	if v.Int != 7 {
		t.Errorf("Int = %d, want 7", v.Int)
	}
	if want := vm.KindInt | vm.KindFloat | vm.KindString; v.Kind != want {
		t.Errorf("Kind = %v, want %v", v.Kind, want)
	}
}

func TestKind_String(t *testing.T) {
	cases := []struct {
		k    vm.Kind
		want string
	}{
		{0, "none"},
		{vm.KindInt, "int"},
		{vm.KindInt | vm.KindFloat, "int|float"},
		{vm.KindInt | vm.KindFloat | vm.KindString, "int|float|string"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("Kind(%d).String() = %q, want %q", c.k, got, c.want)
		}
	}
}

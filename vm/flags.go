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

// flagUpdate is the flag-side effect of one executed instruction,
// computed during execute and applied during writeback. zero/negative/
// carry are computed per the selected output kind; OF is derived from
// the fixed formula `CF XOR (NOT SF)`.
//
// The SF term in that formula is read *before* this update overwrites
// it, i.e. the previous instruction's sign flag. This is exactly what a
// literal, field-order-dependent implementation of the formula computes
// if OF is derived first from the still-unmodified Flags struct (see
// DESIGN.md for the worked example that pins this reading).
type flagUpdate struct {
	zero, negative, carry bool
}

func (u flagUpdate) apply(f *Flags) {
	of := u.carry != !f.SF
	f.ZF = u.zero
	f.SF = u.negative
	f.CF = u.carry
	f.OF = of
}

// resultFlags computes the flagUpdate that any result-producing
// instruction with no accumulator concept (mov, conversions, string
// primitives, inr/flr) applies, using carry=false since there is no
// wide accumulator involved.
func resultFlags(v Value) *flagUpdate {
	switch v.Selected() {
	case KindInt:
		u := flagUpdate{zero: v.Int == 0, negative: v.Int < 0}
		return &u
	case KindFloat:
		u := floatFlags(v.Float)
		return &u
	case KindString:
		u := stringFlags(v.Str)
		return &u
	default:
		return nil
	}
}

// intFlags derives zero/negative/carry from a 32-bit result and a wide
// accumulator that carries the true 33rd-bit-and-beyond result of the
// underlying add/sub/mul, so that carry-out can be observed even though
// the architectural registers are only 32 bits wide.
func intFlags(result int32, wide uint64) flagUpdate {
	return flagUpdate{
		zero:     result == 0,
		negative: result < 0,
		carry:    wide > 0xFFFFFFFF,
	}
}

// intFlagsNoCarry is used by integer division with a non-zero divisor,
// whose result never produces a carry out.
func intFlagsNoCarry(result int32) flagUpdate {
	return flagUpdate{zero: result == 0, negative: result < 0}
}

func floatFlags(result float32) flagUpdate {
	return flagUpdate{zero: result == 0, negative: result < 0}
}

func stringFlags(result string) flagUpdate {
	return flagUpdate{zero: result == "", negative: false}
}

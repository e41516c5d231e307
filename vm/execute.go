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

import (
	"math"
	"strings"
)

func wideAdd(a, b int32) (int32, uint64) {
	wide := uint64(uint32(a)) + uint64(uint32(b))
	return int32(uint32(wide)), wide
}

func wideAddC(a, b int32, carryIn bool) (int32, uint64) {
	var c uint64
	if carryIn {
		c = 1
	}
	wide := uint64(uint32(a)) + uint64(uint32(b)) + c
	return int32(uint32(wide)), wide
}

func wideSub(a, b int32) (int32, uint64) {
	ua, ub := uint32(a), uint32(b)
	wide := uint64(ua) - uint64(ub)
	// a borrow occurred iff ua < ub; report it the same way an add
	// carry is reported, by pushing the result above the 32-bit range.
	if ua < ub {
		wide = 1<<32 + wide
	}
	return int32(ua - ub), wide
}

func wideMul(a, b int32) (int32, uint64) {
	wide := uint64(uint32(a)) * uint64(uint32(b))
	return int32(uint32(wide)), wide
}

// padShiftLeft drops n runes from the left and right-pads with spaces to
// keep the string's length unchanged (shl).
func padShiftLeft(s string, n int32) string {
	r := []rune(s)
	if n <= 0 {
		return s
	}
	if int(n) >= len(r) {
		return strings.Repeat(" ", len(r))
	}
	return string(r[n:]) + strings.Repeat(" ", int(n))
}

// truncateShiftRight drops n runes from the right without padding,
// shortening the string (shr). This is the asymmetric counterpart to
// padShiftLeft called out in DESIGN.md.
func truncateShiftRight(s string, n int32) string {
	r := []rune(s)
	if n <= 0 {
		return s
	}
	if int(n) >= len(r) {
		return ""
	}
	return string(r[:len(r)-int(n)])
}

func rotateString(s string, n int32, left bool) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	n = n % int32(len(r))
	if n < 0 {
		n += int32(len(r))
	}
	if !left {
		n = int32(len(r)) - n
	}
	return string(r[n:]) + string(r[:n])
}

// execute performs opc's operation over the already-fetched operands in
// scr, filling in scr.out, scr.flags, scr.jumped and scr.halt as
// appropriate.
func (p *Processor) execute(opc Opcode, scr operation) operation {
	switch opc.Op {

	case OpNop:
		// unreachable: Cycle ends the sub-step loop as soon as it reads a
		// nop, before fetch/execute/writeback ever run. Kept for switch
		// completeness against the opcode catalogue.

	case OpMov:
		scr.out = scr.a2
		scr.flags = resultFlags(scr.out)

	case OpAdd:
		scr = p.executeAddLike(scr, false)
	case OpAdc:
		scr = p.executeAddLike(scr, true)
	case OpSub:
		scr = p.executeArith(scr, func(a, b int32) (int32, uint64) { return wideSub(a, b) },
			func(a, b float32) float32 { return a - b },
			func(a, b string) string { return strings.ReplaceAll(a, b, "") })
	case OpCmp:
		tmp := p.executeArith(scr, func(a, b int32) (int32, uint64) { return wideSub(a, b) },
			func(a, b float32) float32 { return a - b },
			func(a, b string) string { return strings.ReplaceAll(a, b, "") })
		scr.flags = tmp.flags
		scr.noWrite = true

	case OpInc:
		scr = p.executeUnary(scr, func(a int32) (int32, uint64) { return wideAdd(a, 1) },
			func(a float32) float32 { return a + 1 }, nil)
	case OpDec:
		scr = p.executeUnary(scr, func(a int32) (int32, uint64) { return wideSub(a, 1) },
			func(a float32) float32 { return a - 1 }, nil)

	case OpMul:
		scr = p.executeArith(scr, wideMul,
			func(a, b float32) float32 { return a * b }, nil)
	case OpDiv:
		scr = p.executeDiv(scr)

	case OpShl:
		scr = p.executeShift(scr, true, false)
	case OpShr:
		scr = p.executeShift(scr, false, false)
	case OpRol:
		scr = p.executeShift(scr, true, true)
	case OpRor:
		scr = p.executeShift(scr, false, true)

	case OpAnd:
		r := scr.a1.Int & scr.a2.Int
		scr.out = Int32(r)
		scr.flags = &flagUpdate{zero: r == 0, negative: r < 0}
	case OpOr:
		r := scr.a1.Int | scr.a2.Int
		scr.out = Int32(r)
		scr.flags = &flagUpdate{zero: r == 0, negative: r < 0}
	case OpXor:
		r := scr.a1.Int ^ scr.a2.Int
		scr.out = Int32(r)
		scr.flags = &flagUpdate{zero: r == 0, negative: r < 0}
	case OpNot:
		r := ^scr.a1.Int
		scr.out = Int32(r)
		scr.flags = &flagUpdate{zero: r == 0, negative: r < 0}

	case OpTest:
		r := scr.a1.Int & scr.a2.Int
		scr.flags = &flagUpdate{zero: r == 0, negative: r < 0}
		scr.noWrite = true

	case OpInr:
		var bits int32
		for i := range p.In {
			if p.In[i].Set {
				bits |= 1 << uint(i)
			}
		}
		scr.out = Int32(bits)
		scr.flags = resultFlags(scr.out)
	case OpFlr:
		scr.out = Int32(p.Flags.asNibble())
		scr.flags = resultFlags(scr.out)
	case OpFls:
		p.Flags.setFromNibble(scr.a1.Int)
		scr.noWrite = true

	case OpJmp:
		p.IP = uint32(scr.a1.Int)
		scr.jumped = true
	case OpJe:
		scr = p.condJump(scr, p.Flags.ZF)
	case OpJne:
		scr = p.condJump(scr, !p.Flags.ZF)
	case OpJnz:
		scr = p.condJump(scr, !p.Flags.ZF)
	case OpJg:
		scr = p.condJump(scr, !p.Flags.ZF && p.Flags.SF == p.Flags.OF)
	case OpJge:
		scr = p.condJump(scr, p.Flags.SF == p.Flags.OF)
	case OpJl:
		scr = p.condJump(scr, p.Flags.SF != p.Flags.OF)
	case OpJle:
		scr = p.condJump(scr, p.Flags.ZF || p.Flags.SF != p.Flags.OF)

	case OpMvI2F:
		scr.out = Float32(float32(scr.a2.Int))
		scr.flags = resultFlags(scr.out)
	case OpMvI2S:
		scr.out = String(Int32(scr.a2.Int).AsString())
		scr.flags = resultFlags(scr.out)
	case OpMvF2I:
		scr.out = Int32(int32(scr.a2.Float))
		scr.flags = resultFlags(scr.out)
	case OpMvF2S:
		scr.out = String(Float32(scr.a2.Float).AsString())
		scr.flags = resultFlags(scr.out)
	case OpMvS2I:
		scr.out = Int32(parseAsInt(scr.a2.Str))
		scr.flags = resultFlags(scr.out)
	case OpMvS2F:
		scr.out = Float32(parseAsFloat(scr.a2.Str))
		scr.flags = resultFlags(scr.out)
	case OpLdI2F:
		scr.out = Float32(bitsToFloat(scr.a2.Int))
		scr.flags = resultFlags(scr.out)
	case OpLdF2I:
		scr.out = Int32(floatToBits(scr.a2.Float))
		scr.flags = resultFlags(scr.out)

	// find/rmv/chr write to arg1 without reading it; the operand they
	// act on is arg2, with arg3 as find's needle, rmv's removed substring
	// or chr's index.
	case OpFind:
		idx := strings.Index(scr.a2.Str, scr.a3.Str)
		scr.out = Int32(int32(idx))
		scr.flags = resultFlags(scr.out)
	case OpRmv:
		scr.out = String(strings.ReplaceAll(scr.a2.Str, scr.a3.Str, ""))
		scr.flags = resultFlags(scr.out)
	case OpSbs:
		scr.out = String(substring(scr.a1.Str, int(scr.a2.Int), int(scr.a3.Int)))
		scr.flags = resultFlags(scr.out)
	case OpRpl:
		scr.out = String(strings.ReplaceAll(scr.a1.Str, scr.a2.Str, scr.a3.Str))
		scr.flags = resultFlags(scr.out)
	case OpChr:
		scr.out = Int32(charCodeAt(scr.a2.Str, int(scr.a3.Int)))
		scr.flags = resultFlags(scr.out)

	case OpBrk:
		scr.halt = true
		scr.debugLine = "brk"

	default:
		scr.halt = true
	}

	// Belt-and-braces: nop/jmp*/brk never touch flags, no matter what an
	// individual case above did or didn't set.
	if flagsUnaffected(opc.Op) {
		scr.flags = nil
	}
	return scr
}

func (p *Processor) condJump(scr operation, take bool) operation {
	if take {
		p.IP = uint32(scr.a1.Int)
		scr.jumped = true
	}
	return scr
}

// executeAddLike handles add/adc, whose only difference is whether the
// current CF feeds in as an extra unit on the int path.
func (p *Processor) executeAddLike(scr operation, withCarry bool) operation {
	if withCarry {
		return p.executeArith(scr, func(a, b int32) (int32, uint64) { return wideAddC(a, b, p.Flags.CF) },
			func(a, b float32) float32 { return a + b },
			func(a, b string) string { return a + b })
	}
	return p.executeArith(scr, wideAdd,
		func(a, b float32) float32 { return a + b },
		func(a, b string) string { return a + b })
}

// executeArith dispatches a two-operand arithmetic opcode over whichever
// kind arg1 selects (numeric ops share this shape; strFn is nil for ops
// with no string effect, per Table's operand masks).
func (p *Processor) executeArith(scr operation, intFn func(a, b int32) (int32, uint64), floatFn func(a, b float32) float32, strFn func(a, b string) string) operation {
	switch scr.a1.Selected() {
	case KindInt:
		r, wide := intFn(scr.a1.Int, scr.a2.Int)
		scr.out = Int32(r)
		u := intFlags(r, wide)
		scr.flags = &u
	case KindFloat:
		r := floatFn(scr.a1.Float, scr.a2.Float)
		scr.out = Float32(r)
		u := floatFlags(r)
		scr.flags = &u
	case KindString:
		if strFn == nil {
			break
		}
		r := strFn(scr.a1.Str, scr.a2.Str)
		scr.out = String(r)
		u := stringFlags(r)
		scr.flags = &u
	}
	return scr
}

func (p *Processor) executeUnary(scr operation, intFn func(a int32) (int32, uint64), floatFn func(a float32) float32, strFn func(a string) string) operation {
	switch scr.a1.Selected() {
	case KindInt:
		r, wide := intFn(scr.a1.Int)
		scr.out = Int32(r)
		u := intFlags(r, wide)
		scr.flags = &u
	case KindFloat:
		r := floatFn(scr.a1.Float)
		scr.out = Float32(r)
		u := floatFlags(r)
		scr.flags = &u
	case KindString:
		if strFn == nil {
			break
		}
		r := strFn(scr.a1.Str)
		scr.out = String(r)
		u := stringFlags(r)
		scr.flags = &u
	}
	return scr
}

// executeDiv implements integer/float division. Integer division by
// zero yields 0 with CF forced true rather than panicking (see
// DESIGN.md for the reasoning).
func (p *Processor) executeDiv(scr operation) operation {
	switch scr.a1.Selected() {
	case KindInt:
		if scr.a2.Int == 0 {
			scr.out = Int32(0)
			scr.flags = &flagUpdate{zero: true, negative: false, carry: true}
			return scr
		}
		r := scr.a1.Int / scr.a2.Int
		scr.out = Int32(r)
		u := intFlagsNoCarry(r)
		scr.flags = &u
	case KindFloat:
		var r float32
		if scr.a2.Float == 0 {
			r = float32(math.NaN())
		} else {
			r = scr.a1.Float / scr.a2.Float
		}
		scr.out = Float32(r)
		u := floatFlags(r)
		scr.flags = &u
	}
	return scr
}

func (p *Processor) executeShift(scr operation, left, rotate bool) operation {
	switch scr.a1.Selected() {
	case KindInt:
		a, n := uint32(scr.a1.Int), uint(scr.a2.Int)%32
		var r uint32
		var carry bool
		if rotate {
			if left {
				r = a<<n | a>>(32-n)
			} else {
				if n == 0 {
					r = a
				} else {
					r = a>>n | a<<(32-n)
				}
			}
		} else {
			if left {
				r = a << n
				if n > 0 {
					carry = a&(1<<(32-n)) != 0
				}
			} else {
				r = a >> n
				if n > 0 {
					carry = a&(1<<(n-1)) != 0
				}
			}
		}
		out := int32(r)
		scr.out = Int32(out)
		scr.flags = &flagUpdate{zero: out == 0, negative: out < 0, carry: carry}
	case KindString:
		if rotate {
			scr.out = String(rotateString(scr.a1.Str, scr.a2.Int, left))
		} else if left {
			// shl pads: drops from the left, right-pads with spaces to
			// preserve length.
			scr.out = String(padShiftLeft(scr.a1.Str, scr.a2.Int))
		} else {
			// shr truncates instead of padding: the asymmetry is
			// preserved verbatim (see DESIGN.md).
			scr.out = String(truncateShiftRight(scr.a1.Str, scr.a2.Int))
		}
		u := stringFlags(scr.out.Str)
		scr.flags = &u
	}
	return scr
}

func substring(s string, start, length int) string {
	r := []rune(s)
	if start < 0 || start > len(r) {
		return ""
	}
	end := start + length
	if length < 0 || end > len(r) {
		end = len(r)
	}
	if end < start {
		return ""
	}
	return string(r[start:end])
}

func charCodeAt(s string, at int) int32 {
	r := []rune(s)
	if at < 0 || at >= len(r) {
		return -1
	}
	return int32(r[at])
}

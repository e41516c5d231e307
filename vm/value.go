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
	"strconv"
)

// Kind is a bitmask over the three interpretations a Value may carry
// simultaneously.
type Kind uint8

// Kind bits. A raw value fetched from an input channel latch carries all
// three at once; a value read from a typed register carries exactly one.
const (
	KindInt Kind = 1 << iota
	KindFloat
	KindString
)

func (k Kind) has(b Kind) bool { return k&b != 0 }

// String renders a Kind for debug output, e.g. "int|float".
func (k Kind) String() string {
	if k == 0 {
		return "none"
	}
	s := ""
	if k.has(KindInt) {
		s += "int"
	}
	if k.has(KindFloat) {
		if s != "" {
			s += "|"
		}
		s += "float"
	}
	if k.has(KindString) {
		if s != "" {
			s += "|"
		}
		s += "string"
	}
	return s
}

// Value is a tri-typed value: it may simultaneously be a valid int32,
// float32 and string. Kind records which of the three fields are
// meaningful. Selected picks the "most meaningful" single interpretation
// using the fixed priority Int > Float > String.
type Value struct {
	Kind  Kind
	Int   int32
	Float float32
	Str   string
}

// Int32 constructs a single-kind integer value.
func Int32(v int32) Value { return Value{Kind: KindInt, Int: v} }

// Float32 constructs a single-kind float value.
func Float32(v float32) Value { return Value{Kind: KindFloat, Float: v} }

// String constructs a single-kind string value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// FromChannel builds the tri-typed value a raw signal string is
// materialized into when read from an input channel latch: the same raw
// text is parsed as an int and a float (both fall back to 0 on a parse
// failure) and also kept verbatim, all three kinds always present at
// once.
func FromChannel(raw string) Value {
	v := Value{Kind: KindInt | KindFloat | KindString, Str: raw}
	if n, err := strconv.ParseInt(raw, 0, 32); err == nil {
		v.Int = int32(n)
	}
	if f, err := strconv.ParseFloat(raw, 32); err == nil {
		v.Float = float32(f)
	}
	return v
}

// FromMemory builds the value a completed memory read is materialized
// into: Int if parseable, always String. Unlike FromChannel, a value
// that fails to parse as int does not fall back to 0 — the Int kind bit
// is simply absent, so Selected() moves on to the next candidate kind.
// The float interpretation is conditional in the same way, for symmetry
// with the int case.
func FromMemory(raw string) Value {
	v := Value{Kind: KindString, Str: raw}
	if n, err := strconv.ParseInt(raw, 0, 32); err == nil {
		v.Kind |= KindInt
		v.Int = int32(n)
	}
	if f, err := strconv.ParseFloat(raw, 32); err == nil {
		v.Kind |= KindFloat
		v.Float = float32(f)
	}
	return v
}

// Selected returns the single Kind bit that a consumer requiring one
// concrete interpretation should use, per the fixed priority order
// Int -> Float -> String.
func (v Value) Selected() Kind {
	switch {
	case v.Kind.has(KindInt):
		return KindInt
	case v.Kind.has(KindFloat):
		return KindFloat
	case v.Kind.has(KindString):
		return KindString
	default:
		return 0
	}
}

// AsString stringifies v under its selected kind. This is the conversion
// used both by output-channel flushing and by memory writes.
func (v Value) AsString() string {
	switch v.Selected() {
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		return strconv.FormatFloat(float64(v.Float), 'g', -1, 32)
	case KindString:
		return v.Str
	default:
		return ""
	}
}

// bitsToFloat reinterprets the low 32 bits of an int32 as an IEEE-754
// binary32, with no numeric conversion. Used by ldi2f/ldf2i.
func bitsToFloat(v int32) float32 {
	return math.Float32frombits(uint32(v))
}

// floatToBits reinterprets a binary32 as its raw bit pattern. Used by
// ldi2f/ldf2i.
func floatToBits(v float32) int32 {
	return int32(math.Float32bits(v))
}

// parseAsInt converts a string to an int, per the value-preserving
// mvs2i conversion: yields -1 on parse failure.
func parseAsInt(s string) int32 {
	n, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return -1
	}
	return int32(n)
}

// parseAsFloat converts a string to a float, per the value-preserving
// mvs2f conversion: yields NaN on parse failure.
func parseAsFloat(s string) float32 {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return float32(math.NaN())
	}
	return float32(f)
}

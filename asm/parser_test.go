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

package asm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circuitware/chipvm/asm"
	"github.com/circuitware/chipvm/vm"
)

func TestCompileBasic(t *testing.T) {
	prog, err := asm.Compile("mov ir0 5\nadd ir0 1\nbrk\n")
	require.NoError(t, err)
	require.Len(t, prog, 3)
	assert.Equal(t, vm.OpMov, prog[0].Op)
	assert.Equal(t, vm.ArgKindLit, prog[0].Arg2.Kind)
	assert.Equal(t, int32(5), prog[0].Arg2.Literal.Int)
	assert.Equal(t, vm.OpBrk, prog[2].Op)
}

func TestCompileIgnoresBlankAndComment(t *testing.T) {
	prog, err := asm.Compile("\n; a comment\n   \nnop ; trailing\n")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, vm.OpNop, prog[0].Op)
}

func TestCompileMemoryReference(t *testing.T) {
	prog, err := asm.Compile("mov ir0 [ir1]\nmov [42] ir0\n")
	require.NoError(t, err)
	require.Len(t, prog, 2)
	assert.True(t, prog[0].Arg2.IsRef)
	assert.Equal(t, vm.RegIR, prog[0].Arg2.Reg)
	assert.True(t, prog[1].Arg1.IsRef)
	assert.Equal(t, int32(42), prog[1].Arg1.Literal.Int)
}

func TestCompileLabelForwardAndBackwardReference(t *testing.T) {
	src := strings.Join([]string{
		"jmp skip",
		"mov ir0 1",
		"skip:",
		"loop:",
		"mov ir1 2",
		"jmp loop",
	}, "\n")
	prog, err := asm.Compile(src)
	require.NoError(t, err)
	require.Len(t, prog, 4)
	assert.Equal(t, int32(2), prog[0].Arg1.Literal.Int) // "skip:" resolves to opcode index 2
	assert.Equal(t, int32(2), prog[3].Arg1.Literal.Int) // "loop:" resolves to opcode index 2
}

func TestCompileDuplicateLabel(t *testing.T) {
	_, err := asm.Compile("x:\nx:\n")
	require.Error(t, err)
	cerr, ok := err.(*asm.CompileError)
	require.True(t, ok)
	assert.Equal(t, 1, cerr.Line)
	assert.Equal(t, "Label with same name already defined: x", cerr.Msg)
}

func TestCompileUndefinedLabel(t *testing.T) {
	_, err := asm.Compile("jmp nowhere\n")
	require.Error(t, err)
}

func TestCompileLabelReusingRegisterName(t *testing.T) {
	_, err := asm.Compile("ir0:\nbrk\n")
	require.Error(t, err)
}

func TestCompileLabelStartingWithDigit(t *testing.T) {
	_, err := asm.Compile("1loop:\nbrk\n")
	require.Error(t, err)
}

func TestCompileUnknownMnemonic(t *testing.T) {
	_, err := asm.Compile("frobnicate ir0\n")
	require.Error(t, err)
}

func TestCompileWrongOperandCount(t *testing.T) {
	_, err := asm.Compile("mov ir0\n")
	require.Error(t, err)
	_, err = asm.Compile("nop ir0\n")
	require.Error(t, err)
}

func TestCompileArg3MemoryReferenceForbidden(t *testing.T) {
	_, err := asm.Compile("sbs sr0 ir0 [ir1]\n")
	require.Error(t, err)
}

func TestCompileTwoReadableMemoryReferencesForbidden(t *testing.T) {
	_, err := asm.Compile("add [ir0] [ir1]\n")
	require.Error(t, err)
}

func TestCompileOutputChannelInsideMemoryReference(t *testing.T) {
	_, err := asm.Compile("mov [ou0] ir0\n")
	require.Error(t, err)
}

func TestCompileStringLiteral(t *testing.T) {
	prog, err := asm.Compile(`mov sr0 "hello"` + "\n")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, "hello", prog[0].Arg2.Literal.Str)
}

func TestCompileFloatLiteral(t *testing.T) {
	prog, err := asm.Compile("mov fr0 3.5\n")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.InDelta(t, float32(3.5), prog[0].Arg2.Literal.Float, 0.0001)
}

func TestCompileNegativeLiteral(t *testing.T) {
	prog, err := asm.Compile("mov ir0 -7\n")
	require.NoError(t, err)
	require.Len(t, prog, 1)
	assert.Equal(t, int32(-7), prog[0].Arg2.Literal.Int)
}

func TestDisassembleRoundTrip(t *testing.T) {
	prog, err := asm.Compile("mov ir0 5\nadd ir0 1\nbrk\n")
	require.NoError(t, err)
	var buf strings.Builder
	require.NoError(t, asm.DisassembleAll(prog, &buf))
	out := buf.String()
	assert.Contains(t, out, "mov ir0 5")
	assert.Contains(t, out, "add ir0 1")
	assert.Contains(t, out, "brk")
}

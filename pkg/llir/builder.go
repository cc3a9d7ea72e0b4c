// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package llir

import (
	"strconv"

	"github.com/tornblom/p86c/pkg/types"
)

// Builder tracks the function currently being emitted into and a cursor
// into its current basic block, matching the single mutable
// "current-basic-block builder pointer" the lowering pass is specified to
// maintain (§4.6.1, §5: no shared mutable state beyond this and the symbol
// table, both owned by the current pass).
type Builder struct {
	Fn      *Function
	Block   *BasicBlock
	nextReg int
	nextLbl int
}

// NewBuilder starts building fn at its entry block.
func NewBuilder(fn *Function) *Builder {
	entry := fn.AddBlock("entry")
	return &Builder{Fn: fn, Block: entry}
}

// NewRegister allocates a fresh, function-unique virtual register.
func (b *Builder) NewRegister(ty types.Type) Register {
	name := strconv.Itoa(b.nextReg)
	b.nextReg++
	//
	return Register{Name: name, Type: ty}
}

// NewLabel allocates a fresh, function-unique block label with the given
// human-readable prefix (e.g. "if.then", "while.cond").
func (b *Builder) NewLabel(prefix string) string {
	n := b.nextLbl
	b.nextLbl++
	//
	return prefix + "." + strconv.Itoa(n)
}

// SetBlock repositions the builder's cursor, used after creating a new
// block to continue emitting into it.
func (b *Builder) SetBlock(block *BasicBlock) {
	b.Block = block
}

// NewBlockAt creates a new block in the enclosing function and repositions
// the cursor onto it.
func (b *Builder) NewBlockAt(label string) *BasicBlock {
	block := b.Fn.AddBlock(label)
	b.SetBlock(block)
	return block
}

// Emit appends insn to the current block. It is the caller's
// responsibility to never Emit into an already-terminated block (a
// terminator must always be the block's last instruction).
func (b *Builder) Emit(insn Instruction) {
	b.Block.Append(insn)
}

// EmitValue emits insn and returns its result register, for the common case
// of a value-producing instruction used immediately as an operand.
func (b *Builder) EmitValue(insn Instruction) Register {
	b.Emit(insn)
	reg, _ := insn.Result()
	return reg
}

// Terminate emits term as the current block's terminator. Callers that need
// to keep emitting into a fresh block afterwards should follow with
// NewBlockAt.
func (b *Builder) Terminate(term Terminator) {
	b.Emit(term)
}

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

// BasicBlock is a straight-line sequence of instructions ending in exactly
// one Terminator (an Unreachable block is terminator-only).
type BasicBlock struct {
	Label        string
	Instructions []Instruction
}

// NewBasicBlock constructs an empty block with the given label.
func NewBasicBlock(label string) *BasicBlock {
	return &BasicBlock{Label: label}
}

// Append adds insn to the end of the block.
func (b *BasicBlock) Append(insn Instruction) {
	b.Instructions = append(b.Instructions, insn)
}

// Terminator returns the block's final instruction if it is a Terminator,
// which is true of every well-formed block.
func (b *BasicBlock) Terminator() (Terminator, bool) {
	if len(b.Instructions) == 0 {
		return nil, false
	}
	//
	t, ok := b.Instructions[len(b.Instructions)-1].(Terminator)
	return t, ok
}

// IsTerminated reports whether the block already ends in a terminator, so a
// builder can avoid appending unreachable code after e.g. an early return.
func (b *BasicBlock) IsTerminated() bool {
	_, ok := b.Terminator()
	return ok
}

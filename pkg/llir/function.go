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

import "github.com/tornblom/p86c/pkg/types"

// Linkage mirrors the two visibilities a Pascal-86 public/private section
// maps to at the IR level (§4.6.6).
type Linkage int

// The two linkages a lowered global or function may carry.
const (
	Private Linkage = iota
	External
)

// Param is one formal parameter of a Function.
type Param struct {
	Name string
	Type types.Type
}

// Function is a lowered function or procedure: Ret is nil for a procedure.
// ScopeHookParam is present when the source declaration was a nested
// procedure capturing its enclosing scope (§4.6.4).
type Function struct {
	Name           string
	Params         []Param
	ScopeHookParam *Param
	Ret            types.Type
	Linkage        Linkage
	Blocks         []*BasicBlock
}

// NewFunction constructs a function with no blocks yet.
func NewFunction(name string, params []Param, ret types.Type, linkage Linkage) *Function {
	return &Function{Name: name, Params: params, Ret: ret, Linkage: linkage}
}

// IsProcedure reports whether this function has no return value.
func (f *Function) IsProcedure() bool { return f.Ret == nil }

// AddBlock appends and returns a new block.
func (f *Function) AddBlock(label string) *BasicBlock {
	b := NewBasicBlock(label)
	f.Blocks = append(f.Blocks, b)
	return b
}

// Block looks up one of this function's blocks by label.
func (f *Function) Block(label string) (*BasicBlock, bool) {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b, true
		}
	}
	//
	return nil, false
}

// Entry returns the function's first block, its entry point.
func (f *Function) Entry() *BasicBlock {
	if len(f.Blocks) == 0 {
		return nil
	}
	//
	return f.Blocks[0]
}

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

// Package llir implements the low-level IR that the lowering pass (pkg/lower)
// targets: a module of global values and functions, each function a list of
// basic blocks of instructions operating on SSA registers, closely
// resembling a textual LLVM IR module. pkg/types.Type doubles as this IR's
// type system throughout, since every lowered value already carries a
// concrete structural type from typing.
package llir

import (
	"fmt"
	"math/big"

	"github.com/tornblom/p86c/pkg/types"
)

// Value is anything an instruction may take as an operand: a named SSA
// register, a global, or a literal constant.
type Value interface {
	// ValueType returns the type this value carries.
	ValueType() types.Type
	// String renders this value the way it appears as an operand in
	// printed IR, e.g. "%3" or "i16 7".
	String() string
}

// Register names the destination of a value-producing instruction.
type Register struct {
	Name string
	Type types.Type
}

func (r Register) ValueType() types.Type { return r.Type }
func (r Register) String() string        { return "%" + r.Name }

// Global names a module-level value: a variable, a constant string, or a
// function, depending on Type.
type Global struct {
	Name string
	Type types.Type
}

func (g Global) ValueType() types.Type { return g.Type }
func (g Global) String() string        { return "@" + g.Name }

// ConstInt is an integer or char literal operand.
type ConstInt struct {
	Val  *big.Int
	Type types.Type
}

func (c ConstInt) ValueType() types.Type { return c.Type }
func (c ConstInt) String() string        { return fmt.Sprintf("%s %s", c.Type, c.Val.String()) }

// ConstReal is a floating-point literal operand.
type ConstReal struct {
	Val  float64
	Type types.Type
}

func (c ConstReal) ValueType() types.Type { return c.Type }
func (c ConstReal) String() string        { return fmt.Sprintf("%s %g", c.Type, c.Val) }

// ConstNull is a null pointer constant.
type ConstNull struct {
	Type types.Type
}

func (c ConstNull) ValueType() types.Type { return c.Type }
func (c ConstNull) String() string        { return fmt.Sprintf("%s null", c.Type) }

// Undef is the LLVM "undef" sentinel, used as the initial value of a global
// before its constructor (if any) runs.
type Undef struct {
	Type types.Type
}

func (c Undef) ValueType() types.Type { return c.Type }
func (c Undef) String() string        { return fmt.Sprintf("%s undef", c.Type) }

// NewRegister builds a typed register reference. name is the raw, unsliced
// identifier as allocated by the builder's NewRegister.
func NewRegister(name string, ty types.Type) Register { return Register{name, ty} }

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
	"fmt"
	"math/big"
	"strings"

	"github.com/tornblom/p86c/pkg/types"
)

// Instruction is implemented by every member of the closed instruction sum.
// Instructions appear in program order inside a BasicBlock; exactly one
// instruction per block, its last, is a Terminator.
type Instruction interface {
	// Result returns the register this instruction defines, if any.
	Result() (Register, bool)
	// String renders this instruction the way it appears in printed IR.
	String() string
	instructionMarker()
}

// Terminator is implemented by the subset of instructions legal as a basic
// block's final instruction.
type Terminator interface {
	Instruction
	// Successors lists the labels of every block this terminator may
	// transfer control to.
	Successors() []string
	terminatorMarker()
}

type insnBase struct{}

func (insnBase) instructionMarker() {}

// BinOp is an arithmetic, relational, logical or set-bitwise two-operand
// instruction; Op is one of the textual opcodes in OpKind.
type BinOp struct {
	insnBase
	Dest     Register
	Op       OpKind
	Lhs, Rhs Value
}

func (i *BinOp) Result() (Register, bool) { return i.Dest, true }
func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.Dest, i.Op, i.Lhs, i.Rhs)
}

// OpKind names a BinOp's operation.
type OpKind string

// The supported binary opcodes, spanning arithmetic, relational, logical and
// set-bitwise forms (§4.6.1): the same closed set lowering ever emits.
const (
	OpIAdd OpKind = "add"
	OpISub OpKind = "sub"
	OpIMul OpKind = "mul"
	OpSDiv OpKind = "sdiv"
	OpUDiv OpKind = "udiv"
	OpSRem OpKind = "srem"
	OpURem OpKind = "urem"
	OpFAdd OpKind = "fadd"
	OpFSub OpKind = "fsub"
	OpFMul OpKind = "fmul"
	OpFDiv OpKind = "fdiv"
	OpAnd  OpKind = "and"
	OpOr   OpKind = "or"
	OpXor  OpKind = "xor"
	OpShl  OpKind = "shl"
	OpLShr OpKind = "lshr"
	OpIEq  OpKind = "icmp eq"
	OpINe  OpKind = "icmp ne"
	OpISgt OpKind = "icmp sgt"
	OpISge OpKind = "icmp sge"
	OpISlt OpKind = "icmp slt"
	OpISle OpKind = "icmp sle"
	OpIUgt OpKind = "icmp ugt"
	OpIUge OpKind = "icmp uge"
	OpIUlt OpKind = "icmp ult"
	OpIUle OpKind = "icmp ule"
	OpFEq  OpKind = "fcmp oeq"
	OpFNe  OpKind = "fcmp one"
	OpFGt  OpKind = "fcmp ogt"
	OpFGe  OpKind = "fcmp oge"
	OpFLt  OpKind = "fcmp olt"
	OpFLe  OpKind = "fcmp ole"
)

// UnOp is a single-operand instruction: boolean negation or unary minus.
type UnOp struct {
	insnBase
	Dest Register
	Op   OpKind
	Val  Value
}

// The three unary opcodes UnOp supports.
const (
	OpNot  OpKind = "not"
	OpINeg OpKind = "ineg"
	OpFNeg OpKind = "fneg"
)

func (i *UnOp) Result() (Register, bool) { return i.Dest, true }
func (i *UnOp) String() string           { return fmt.Sprintf("%s = %s %s", i.Dest, i.Op, i.Val) }

// ConvertKind names the conversion a Convert instruction performs.
type ConvertKind string

// The conversion kinds emitted at TypeConvert sites (§4.6.1).
const (
	ConvSExt     ConvertKind = "sext"
	ConvZExt     ConvertKind = "zext"
	ConvTrunc    ConvertKind = "trunc"
	ConvFPExt    ConvertKind = "fpext"
	ConvFPTrunc  ConvertKind = "fptrunc"
	ConvSIToFP   ConvertKind = "sitofp"
	ConvUIToFP   ConvertKind = "uitofp"
	ConvFPToSI   ConvertKind = "fptosi"
	ConvBitcast  ConvertKind = "bitcast"
	ConvPtrToInt ConvertKind = "ptrtoint"
	ConvIntToPtr ConvertKind = "inttoptr"
)

// Convert casts Src to Dest.Type using Kind.
type Convert struct {
	insnBase
	Dest Register
	Kind ConvertKind
	Src  Value
}

func (i *Convert) Result() (Register, bool) { return i.Dest, true }
func (i *Convert) String() string {
	return fmt.Sprintf("%s = %s %s to %s", i.Dest, i.Kind, i.Src, i.Dest.Type)
}

// Alloca reserves a stack slot wide enough for one value of Elem, yielding a
// pointer to it in Dest.
type Alloca struct {
	insnBase
	Dest Register
	Elem types.Type
}

func (i *Alloca) Result() (Register, bool) { return i.Dest, true }
func (i *Alloca) String() string           { return fmt.Sprintf("%s = alloca %s", i.Dest, i.Elem) }

// Load reads the value stored at Addr into Dest.
type Load struct {
	insnBase
	Dest Register
	Addr Value
}

func (i *Load) Result() (Register, bool) { return i.Dest, true }
func (i *Load) String() string           { return fmt.Sprintf("%s = load %s, %s", i.Dest, i.Dest.Type, i.Addr) }

// Store writes Val to the address Addr.
type Store struct {
	insnBase
	Addr Value
	Val  Value
}

func (i *Store) Result() (Register, bool) { return Register{}, false }
func (i *Store) String() string           { return fmt.Sprintf("store %s, %s", i.Val, i.Addr) }

// GEP computes the address of one field/element of Base without
// dereferencing it, the mechanism behind record field access, array
// indexing and variant-arena field access (§4.6.2, §4.6.5). Each entry of
// Indices is itself a Value so that a runtime-computed array index and a
// compile-time-constant field index (see ConstIndex) can appear side by
// side in the same instruction, matching LLVM's own getelementptr.
type GEP struct {
	insnBase
	Dest    Register
	Base    Value
	Indices []Value
}

func (i *GEP) Result() (Register, bool) { return i.Dest, true }
func (i *GEP) String() string {
	idx := make([]string, len(i.Indices))
	//
	for j, v := range i.Indices {
		idx[j] = v.String()
	}
	//
	return fmt.Sprintf("%s = getelementptr %s, %s, %s", i.Dest, i.Base.ValueType(), i.Base, strings.Join(idx, ", "))
}

// ConstIndex wraps a compile-time-constant field/element index as a GEP
// operand.
func ConstIndex(i int) Value {
	return ConstInt{Val: big.NewInt(int64(i)), Type: indexType}
}

var indexType = types.NewIntType(true, 32)

// Call invokes Callee (a user function or a libc/built-in by symbol name)
// with Args, yielding Dest when the callee is non-void.
type Call struct {
	insnBase
	Dest    Register
	HasDest bool
	Callee  string
	Args    []Value
}

func (i *Call) Result() (Register, bool) { return i.Dest, i.HasDest }
func (i *Call) String() string {
	args := make([]string, len(i.Args))
	//
	for j, a := range i.Args {
		args[j] = a.String()
	}
	//
	prefix := ""
	if i.HasDest {
		prefix = i.Dest.String() + " = "
	}
	//
	return fmt.Sprintf("%scall %s(%s)", prefix, i.Callee, strings.Join(args, ", "))
}

// Phi is unused by the current lowering strategy (every mutable location is
// a stack slot reached via Alloca/Load/Store) but is kept in the sum for a
// future SSA-minimization pass.
type Phi struct {
	insnBase
	Dest        Register
	Incoming    []PhiEdge
}

// PhiEdge is one predecessor-block/value pair of a Phi.
type PhiEdge struct {
	Block string
	Val   Value
}

func (i *Phi) Result() (Register, bool) { return i.Dest, true }
func (i *Phi) String() string {
	parts := make([]string, len(i.Incoming))
	//
	for j, e := range i.Incoming {
		parts[j] = fmt.Sprintf("[%s, %%%s]", e.Val, e.Block)
	}
	//
	return fmt.Sprintf("%s = phi %s %s", i.Dest, i.Dest.Type, strings.Join(parts, ", "))
}

// ============================================================================
// Terminators
// ============================================================================

type termBase struct{ insnBase }

func (termBase) terminatorMarker() {}

// Ret returns from the enclosing function, with Val present unless the
// function is a procedure.
type Ret struct {
	termBase
	Val    Value
	HasVal bool
}

func (i *Ret) Result() (Register, bool) { return Register{}, false }
func (i *Ret) Successors() []string     { return nil }
func (i *Ret) String() string {
	if i.HasVal {
		return fmt.Sprintf("ret %s", i.Val)
	}
	//
	return "ret void"
}

// Br is an unconditional branch.
type Br struct {
	termBase
	Target string
}

func (i *Br) Result() (Register, bool) { return Register{}, false }
func (i *Br) Successors() []string     { return []string{i.Target} }
func (i *Br) String() string           { return "br label %" + i.Target }

// CondBr branches to Then if Cond is true, else to Else.
type CondBr struct {
	termBase
	Cond       Value
	Then, Else string
}

func (i *CondBr) Result() (Register, bool) { return Register{}, false }
func (i *CondBr) Successors() []string     { return []string{i.Then, i.Else} }
func (i *CondBr) String() string {
	return fmt.Sprintf("br %s, label %%%s, label %%%s", i.Cond, i.Then, i.Else)
}

// SwitchCase is one constant-valued arm of a Switch.
type SwitchCase struct {
	Val    Value
	Target string
}

// Switch dispatches on Val to the matching SwitchCase's Target, or Default
// if none match (§4.6.3 Case lowering).
type Switch struct {
	termBase
	Val     Value
	Cases   []SwitchCase
	Default string
}

func (i *Switch) Result() (Register, bool) { return Register{}, false }
func (i *Switch) Successors() []string {
	out := []string{i.Default}
	//
	for _, c := range i.Cases {
		out = append(out, c.Target)
	}
	//
	return out
}

func (i *Switch) String() string {
	arms := make([]string, len(i.Cases))
	//
	for j, c := range i.Cases {
		arms[j] = fmt.Sprintf("%s, label %%%s", c.Val, c.Target)
	}
	//
	return fmt.Sprintf("switch %s, label %%%s [%s]", i.Val, i.Default, strings.Join(arms, " "))
}

// Unreachable marks a block that legitimately has no fallthrough, e.g. the
// instructions after an unconditional goto, so the verifier does not reject
// the missing terminator as malformed (§5).
type Unreachable struct{ termBase }

func (i *Unreachable) Result() (Register, bool) { return Register{}, false }
func (i *Unreachable) Successors() []string     { return nil }
func (i *Unreachable) String() string           { return "unreachable" }

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
package ast

import "github.com/tornblom/p86c/pkg/types"

// Expr is implemented by every expression node.  Every node carries a
// mutable Type slot, initially nil and filled in exactly once by the typer
// pass (spec §8.2: running the typer twice is a no-op).
type Expr interface {
	Node
	Type() types.Type
	SetType(types.Type)
}

// Typed is embedded by every expression node to provide the Type/SetType
// pair required by Expr.
type Typed struct {
	Base
	typ types.Type
}

func (t *Typed) Type() types.Type    { return t.typ }
func (t *Typed) SetType(ty types.Type) { t.typ = ty }

// ============================================================================
// Literals
// ============================================================================

// IntLiteral is an integer constant as written in source, before the typer
// narrows its width.
type IntLiteral struct {
	Typed
	Value int64
}

// NewIntLiteral constructs an untyped integer literal.
func NewIntLiteral(pos Position, value int64) *IntLiteral {
	n := &IntLiteral{Value: value}
	n.Position = pos
	//
	return n
}

// RealLiteral is a floating point constant.
type RealLiteral struct {
	Typed
	Value float64
}

// CharLiteral is a single-character constant.
type CharLiteral struct {
	Typed
	Value byte
}

// StringLiteral is a packed-array-of-char constant.
type StringLiteral struct {
	Typed
	Value string
}

// ============================================================================
// Variable access
// ============================================================================

// Access describes what a VarLoad/VarReference node reads or takes the
// address of: a named variable, a field of a record, an indexed array
// element, or a pointer dereference.  Access nodes are not expressions in
// their own right (they carry no independent type slot): VarLoad/VarAccess/
// VarReference wrap them to form an expression.
type Access interface {
	Node
	accessMarker()
}

// NameAccess refers to a variable, constant or parameter by name, resolved
// against the symbol table during typing.
type NameAccess struct {
	Base
	Name string
}

func (*NameAccess) accessMarker() {}

// FieldAccessNode refers to a field of a record-typed access.
type FieldAccessNode struct {
	Base
	Record Access
	Field  string
}

func (*FieldAccessNode) accessMarker() {}

// IndexedAccess refers to one element of an array-typed access.
type IndexedAccess struct {
	Base
	Array Expr
	Index Expr
}

func (*IndexedAccess) accessMarker() {}

// PointerAccess dereferences a pointer-typed access (`p^`).
type PointerAccess struct {
	Base
	Pointer Expr
}

func (*PointerAccess) accessMarker() {}

// VarAccess wraps an Access and gives it a type slot: the *address-of*
// view, used as the operand of `new`/`dispose`/explicit `@` and as the
// building block consumed by VarLoad/VarReference.
type VarAccess struct {
	Typed
	Target Access
}

// VarLoad reads the current value at the given access.
type VarLoad struct {
	Typed
	Target Access
}

// VarReference takes the address of the given access, used for
// call-by-reference arguments (spec §4.4) and wherever a Reference type is
// required.
type VarReference struct {
	Typed
	Target Access
}

// ============================================================================
// Operators
// ============================================================================

// Op names an operator token.  Kept as a string (rather than an enum) to
// mirror the small, closed vocabulary of Pascal-86 operators and to let the
// mutation operators substitute operators by simple string comparison.
type Op string

// Binary operator tokens.
const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpIDiv   Op = "div"
	OpMod    Op = "mod"
	OpEq     Op = "="
	OpNeq    Op = "<>"
	OpLt     Op = "<"
	OpLte    Op = "<="
	OpGt     Op = ">"
	OpGte    Op = ">="
	OpIn     Op = "in"
	OpAnd    Op = "and"
	OpOr     Op = "or"
	OpTrue   Op = "true"
	OpFalse  Op = "false"
	OpLeft   Op = "left"
	OpRight  Op = "right"
)

// IsRelational reports whether op is one of {=,<>,<,<=,>,>=,in}.
func (op Op) IsRelational() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpIn:
		return true
	}
	//
	return false
}

// IsArithmetic reports whether op is one of {+,-,*,/,div,mod}.
func (op Op) IsArithmetic() bool {
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpIDiv, OpMod:
		return true
	}
	//
	return false
}

// BinaryOp is a binary operator application.  Mutation operators (ror, cor,
// aor) replace Op in place on a cloned copy of the enclosing statement.
type BinaryOp struct {
	Typed
	Op          Op
	Left, Right Expr
}

// NewBinaryOp constructs a binary operator node.
func NewBinaryOp(pos Position, op Op, left, right Expr) *BinaryOp {
	n := &BinaryOp{Op: op, Left: left, Right: right}
	n.Position = pos
	//
	return n
}

// UnaryOp is a unary operator application: `+`, `-`, `not`.
type UnaryOp struct {
	Typed
	Op   Op
	Expr Expr
}

// Unary operator tokens.
const (
	OpNeg Op = "-"
	OpPos Op = "+"
	OpNot Op = "not"
)

// ============================================================================
// Conversion
// ============================================================================

// TypeConvert is the only AST shape allowed to assert a type different from
// its child's (spec §3.3).  Inserted by the typer at every lossless or
// lossy conversion site; the lowering pass turns it into the appropriate
// primitive conversion instruction.
type TypeConvert struct {
	Typed
	Child   Expr
	Warning bool
}

// NewTypeConvert wraps child with an explicit conversion to ty.
func NewTypeConvert(child Expr, ty types.Type, warning bool) *TypeConvert {
	n := &TypeConvert{Child: child, Warning: warning}
	n.Position = child.Pos()
	n.typ = ty
	//
	return n
}

// ============================================================================
// Sets
// ============================================================================

// SetMember is one element of a SetLiteral: either a single expression or
// an inclusive range (`lo..hi`).
type SetMember struct {
	Base
	Single   Expr
	RangeLo  Expr
	RangeHi  Expr
}

// IsRange reports whether this member is a `lo..hi` range rather than a
// single value.
func (m SetMember) IsRange() bool { return m.RangeLo != nil }

// SetLiteral is a `[...]` set constructor; an empty literal (`[]`) has no
// members and types as EmptySet until context promotes it.
type SetLiteral struct {
	Typed
	Members []SetMember
}

// ============================================================================
// Calls
// ============================================================================

// Argument is one actual parameter of a FunctionCall.
type Argument struct {
	Base
	Expr Expr
	// ByRef is set by the call-by-reference fixup pass (§4.4) once it has
	// rewritten this argument's Expr from a VarLoad into a VarReference.
	ByRef bool
}

// FunctionCall invokes a user-defined function/procedure or one of the
// built-ins.  Name is resolved against the symbol table's function
// namespace (`module.name`) during typing.  Resolved is stashed by the
// typer so the call-by-reference fixup pass does not need to repeat the
// symbol lookup.
type FunctionCall struct {
	Typed
	Name     string
	Args     []*Argument
	Resolved *types.Function
}

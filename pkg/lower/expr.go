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
package lower

import (
	"fmt"
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/types"
)

// lowerExpr lowers e to the value it evaluates to.
func (l *Lowering) lowerExpr(e ast.Expr) (llir.Value, error) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return llir.ConstInt{Val: big.NewInt(n.Value), Type: n.Type()}, nil
	case *ast.RealLiteral:
		return llir.ConstReal{Val: n.Value, Type: n.Type()}, nil
	case *ast.CharLiteral:
		return llir.ConstInt{Val: big.NewInt(int64(n.Value)), Type: n.Type()}, nil
	case *ast.StringLiteral:
		gs := l.mod.InternString(n.Value)
		return llir.Global{Name: gs.Name, Type: types.NewPointerType(types.CHAR)}, nil
	case *ast.VarLoad:
		return l.lowerAccessLoad(n.Target)
	case *ast.VarReference:
		return l.lowerAccessAddr(n.Target)
	case *ast.VarAccess:
		return l.lowerAccessAddr(n.Target)
	case *ast.BinaryOp:
		return l.lowerBinaryOp(n)
	case *ast.UnaryOp:
		return l.lowerUnaryOp(n)
	case *ast.TypeConvert:
		return l.lowerTypeConvert(n)
	case *ast.SetLiteral:
		return l.lowerSetLiteral(n)
	case *ast.FunctionCall:
		return l.lowerCall(n)
	default:
		return nil, l.fail(e.Pos(), fmt.Errorf("%w: unhandled expression", diag.ErrUnsupportedConversion))
	}
}

// accessType recomputes the static type denoted by a, mirroring
// pkg/typer/expr.go's typeAccess but reading from the lowering pass's own
// symbol table (populated with the same types the typer assigned).
func (l *Lowering) accessType(a ast.Access) (types.Type, error) {
	switch n := a.(type) {
	case *ast.NameAccess:
		sym, err := l.table.FindSymbol(n.Name)
		if err != nil {
			return nil, l.fail(n.Pos(), diag.ErrUnknownSymbol)
		}
		//
		return sym.Type, nil
	case *ast.FieldAccessNode:
		recTy, err := l.accessType(n.Record)
		if err != nil {
			return nil, err
		}
		//
		rec := underlyingRecord(recTy)
		if rec == nil {
			return nil, l.fail(n.Pos(), diag.ErrUnknownField)
		}
		//
		f, ok := rec.FieldByName(n.Field)
		if !ok {
			return nil, l.fail(n.Pos(), diag.ErrUnknownField)
		}
		//
		return f.Type, nil
	case *ast.IndexedAccess:
		arr, ok := arrayTypeOf(n.Array.Type())
		if !ok {
			return nil, l.fail(n.Pos(), diag.ErrNonIndexedType)
		}
		//
		return arr.Element, nil
	case *ast.PointerAccess:
		p, ok := n.Pointer.Type().(*types.Pointer)
		if !ok {
			return nil, l.fail(n.Pos(), diag.ErrNonPointerType)
		}
		//
		return p.Pointee, nil
	default:
		return nil, l.fail(a.Pos(), diag.ErrUnknownSymbol)
	}
}

// arrayTypeOf unwraps a Reference to find the Array a loaded value denotes.
func arrayTypeOf(t types.Type) (*types.Array, bool) {
	switch v := t.(type) {
	case *types.Array:
		return v, true
	case *types.Reference:
		return arrayTypeOf(v.Referee)
	default:
		return nil, false
	}
}

// lowerAccessAddr computes the address an Access node denotes: for a plain
// variable this is its storage slot (or, for a by-reference parameter, the
// incoming pointer itself — both are stored identically in Symbol.Handle,
// see pkg/lower/lower.go's installParams); for a dereference it is the
// pointer's own value; for field/index access it is a GEP off the
// enclosing aggregate's address.
func (l *Lowering) lowerAccessAddr(a ast.Access) (llir.Value, error) {
	switch n := a.(type) {
	case *ast.NameAccess:
		sym, err := l.table.FindSymbol(n.Name)
		if err != nil {
			return nil, l.fail(n.Pos(), diag.ErrUnknownSymbol)
		}
		//
		addr, ok := sym.Handle.(llir.Value)
		if !ok {
			return nil, l.fail(n.Pos(), fmt.Errorf("%w: %s has no storage", diag.ErrUnsupportedConversion, n.Name))
		}
		//
		return addr, nil
	case *ast.FieldAccessNode:
		recAddr, rec, err := l.recordAddrAndType(n.Record)
		if err != nil {
			return nil, err
		}
		//
		addr, _, ferr := l.fieldSlot(recAddr, rec, n.Field)
		if ferr != nil {
			return nil, l.fail(n.Pos(), ferr)
		}
		//
		return addr, nil
	case *ast.IndexedAccess:
		return l.lowerIndexedAddr(n)
	case *ast.PointerAccess:
		return l.lowerExpr(n.Pointer)
	default:
		return nil, l.fail(a.Pos(), diag.ErrUnknownSymbol)
	}
}

// lowerAccessLoad reads the current value denoted by a: a constant
// NameAccess is inlined directly, everything else is a Load off its
// address.
func (l *Lowering) lowerAccessLoad(a ast.Access) (llir.Value, error) {
	if n, ok := a.(*ast.NameAccess); ok {
		if sym, err := l.table.FindSymbol(n.Name); err == nil && sym.IsConst {
			if _, ok := sym.Type.(*types.String); ok {
				gs := l.mod.InternString(sym.ConstString)
				return llir.Global{Name: gs.Name, Type: types.NewPointerType(types.CHAR)}, nil
			}
			//
			return llir.ConstInt{Val: sym.ConstValue, Type: sym.Type}, nil
		}
	}
	//
	addr, err := l.lowerAccessAddr(a)
	if err != nil {
		return nil, err
	}
	//
	ty, err := l.accessType(a)
	if err != nil {
		return nil, err
	}
	//
	return l.b.EmitValue(&llir.Load{Dest: l.b.NewRegister(ty), Addr: addr}), nil
}

// recordAddrAndType resolves the address of the record a Field access
// targets, auto-dereferencing one level of Pointer (spec §4.6.2): a.field
// is legal whether a is record-typed or pointer-to-record-typed.
func (l *Lowering) recordAddrAndType(a ast.Access) (llir.Value, *types.Record, error) {
	ty, err := l.accessType(a)
	if err != nil {
		return nil, nil, err
	}
	//
	switch t := ty.(type) {
	case *types.Record:
		addr, aerr := l.lowerAccessAddr(a)
		return addr, t, aerr
	case *types.Pointer:
		ptrVal, aerr := l.lowerAccessLoad(a)
		if aerr != nil {
			return nil, nil, aerr
		}
		//
		rec := underlyingRecord(t.Pointee)
		if rec == nil {
			return nil, nil, l.fail(a.Pos(), diag.ErrUnknownField)
		}
		//
		return ptrVal, rec, nil
	case *types.Reference:
		addr, aerr := l.lowerAccessAddr(a)
		rec := underlyingRecord(t.Referee)
		//
		if rec == nil {
			return nil, nil, l.fail(a.Pos(), diag.ErrUnknownField)
		}
		//
		return addr, rec, aerr
	default:
		return nil, nil, l.fail(a.Pos(), diag.ErrUnknownField)
	}
}

// lowerIndexedAddr computes the address of one array element: a GEP off the
// array's own address (never its loaded value — arrays are never moved
// through registers whole) using the already-typed index expression as a
// runtime GEP operand.
func (l *Lowering) lowerIndexedAddr(n *ast.IndexedAccess) (llir.Value, error) {
	arrAddr, arr, err := l.arrayAddrOf(n.Array)
	if err != nil {
		return nil, err
	}
	//
	idxVal, err := l.lowerExpr(n.Index)
	if err != nil {
		return nil, err
	}
	//
	offset := idxVal
	//
	if arr.MinIndex() != 0 {
		offsetTy := idxVal.ValueType()
		base := llir.ConstInt{Val: big.NewInt(arr.MinIndex()), Type: offsetTy}
		offset = l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(offsetTy), Op: llir.OpISub, Lhs: idxVal, Rhs: base})
	}
	//
	elemPtrTy := types.NewPointerType(arr.Element)
	//
	return l.b.EmitValue(&llir.GEP{Dest: l.b.NewRegister(elemPtrTy), Base: arrAddr, Indices: []llir.Value{llir.ConstIndex(0), offset}}), nil
}

// arrayAddrOf resolves the address of the array an index expression's Array
// operand denotes: it is always a VarLoad or VarReference wrapping an
// Access, since an array value is never itself the result of an arithmetic
// expression (spec §3.1).
func (l *Lowering) arrayAddrOf(e ast.Expr) (llir.Value, *types.Array, error) {
	arr, ok := arrayTypeOf(e.Type())
	if !ok {
		return nil, nil, l.fail(e.Pos(), diag.ErrNonIndexedType)
	}
	//
	switch n := e.(type) {
	case *ast.VarLoad:
		addr, err := l.lowerAccessAddr(n.Target)
		return addr, arr, err
	case *ast.VarReference:
		addr, err := l.lowerAccessAddr(n.Target)
		return addr, arr, err
	default:
		return nil, nil, l.fail(e.Pos(), diag.ErrNonIndexedType)
	}
}

// lowerBinaryOp lowers a binary operator application. The typer has already
// unified Left/Right onto a common operand type (spec §4.2.1/§4.2.2), so
// this never needs to re-derive an upcast.
func (l *Lowering) lowerBinaryOp(n *ast.BinaryOp) (llir.Value, error) {
	if n.Op == ast.OpIn {
		return l.lowerIn(n)
	}
	//
	lhs, err := l.lowerExpr(n.Left)
	if err != nil {
		return nil, err
	}
	//
	rhs, err := l.lowerExpr(n.Right)
	if err != nil {
		return nil, err
	}
	//
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		op := llir.OpAnd
		if n.Op == ast.OpOr {
			op = llir.OpOr
		}
		//
		return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(types.BOOL), Op: op, Lhs: lhs, Rhs: rhs}), nil
	}
	//
	if setTy, ok := n.Left.Type().(*types.Set); ok {
		return l.lowerSetBinOp(n.Op, lhs, rhs, setTy)
	}
	//
	opKind, err := binOpKind(n.Op, n.Left.Type())
	if err != nil {
		return nil, l.fail(n.Pos(), err)
	}
	//
	return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(n.Type()), Op: opKind, Lhs: lhs, Rhs: rhs}), nil
}

// lowerIn lowers `x in s`, including the EmptySet special case (always
// false) spec §4.2.1 leaves implicit.
func (l *Lowering) lowerIn(n *ast.BinaryOp) (llir.Value, error) {
	setTy, ok := n.Right.Type().(*types.Set)
	if !ok {
		return llir.ConstInt{Val: big.NewInt(0), Type: types.BOOL}, nil
	}
	//
	lhs, err := l.lowerExpr(n.Left)
	if err != nil {
		return nil, err
	}
	//
	rhs, err := l.lowerExpr(n.Right)
	if err != nil {
		return nil, err
	}
	//
	return l.lowerSetMembership(lhs, rhs, setTy)
}

func (l *Lowering) lowerUnaryOp(n *ast.UnaryOp) (llir.Value, error) {
	val, err := l.lowerExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	//
	switch n.Op {
	case ast.OpNot:
		return l.b.EmitValue(&llir.UnOp{Dest: l.b.NewRegister(types.BOOL), Op: llir.OpNot, Val: val}), nil
	case ast.OpPos:
		return val, nil
	case ast.OpNeg:
		if _, ok := n.Type().(*types.Real); ok {
			return l.b.EmitValue(&llir.UnOp{Dest: l.b.NewRegister(n.Type()), Op: llir.OpFNeg, Val: val}), nil
		}
		//
		return l.b.EmitValue(&llir.UnOp{Dest: l.b.NewRegister(n.Type()), Op: llir.OpINeg, Val: val}), nil
	}
	//
	return nil, l.fail(n.Pos(), fmt.Errorf("%w: unary %s", diag.ErrUnsupportedConversion, n.Op))
}

func (l *Lowering) lowerTypeConvert(n *ast.TypeConvert) (llir.Value, error) {
	val, err := l.lowerExpr(n.Child)
	if err != nil {
		return nil, err
	}
	//
	if types.Equals(n.Child.Type(), n.Type()) {
		return val, nil
	}
	//
	kind, err := convertKind(n.Child.Type(), n.Type())
	if err != nil {
		return nil, l.fail(n.Pos(), err)
	}
	//
	return l.b.EmitValue(&llir.Convert{Dest: l.b.NewRegister(n.Type()), Kind: kind, Src: val}), nil
}

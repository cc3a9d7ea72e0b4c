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
package typer

import (
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/types"
)

// typeExpr attaches a type to e and returns the node to install in the
// parent's child slot: usually e itself, occasionally e wrapped in a
// TypeConvert.
func (t *Typer) typeExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.IntLiteral:
		n.SetType(types.NewIntConstant(big.NewInt(n.Value)))
		return n
	case *ast.RealLiteral:
		n.SetType(types.REAL32)
		return n
	case *ast.CharLiteral:
		n.SetType(types.NewCharConstant(n.Value))
		return n
	case *ast.StringLiteral:
		n.SetType(types.NewStringType(uint(len(n.Value))))
		return n
	case *ast.VarAccess:
		n.SetType(t.typeAccess(n.Target))
		return n
	case *ast.VarLoad:
		n.SetType(t.typeAccess(n.Target))
		return n
	case *ast.VarReference:
		n.SetType(types.NewReferenceType(t.typeAccess(n.Target)))
		return n
	case *ast.BinaryOp:
		return t.typeBinaryOp(n)
	case *ast.UnaryOp:
		return t.typeUnaryOp(n)
	case *ast.TypeConvert:
		n.Child = t.typeExpr(n.Child)
		return n
	case *ast.SetLiteral:
		return t.typeSetLiteral(n)
	case *ast.FunctionCall:
		return t.typeFunctionCall(n)
	default:
		t.fail(e.Pos(), diag.ErrInvalidBinaryExpr)
		return e
	}
}

// typeAccess resolves the type denoted by an Access node, typing any
// sub-expressions it contains (array indices, pointer expressions) along
// the way.
func (t *Typer) typeAccess(a ast.Access) types.Type {
	switch n := a.(type) {
	case *ast.NameAccess:
		sym, err := t.table.FindSymbol(n.Name)
		if err != nil {
			t.fail(n.Pos(), diag.ErrUnknownSymbol)
			return types.ANY
		}
		//
		return sym.Type
	case *ast.FieldAccessNode:
		recTy := t.typeAccess(n.Record)
		rec := underlyingRecord(recTy)
		//
		if rec == nil {
			t.fail(n.Pos(), diag.ErrUnknownField)
			return types.ANY
		}
		//
		f, ok := rec.FieldByName(n.Field)
		if !ok {
			t.fail(n.Pos(), diag.ErrUnknownField)
			return types.ANY
		}
		//
		return f.Type
	case *ast.IndexedAccess:
		arrExpr := t.typeExpr(n.Array)
		n.Array = arrExpr
		//
		arr, ok := arrExpr.Type().(*types.Array)
		if !ok {
			t.fail(n.Pos(), diag.ErrNonIndexedType)
			return types.ANY
		}
		//
		idxExpr := t.typeExpr(n.Index)
		n.Index = t.convertAssign(idxExpr, arr.Range.AsInt())
		//
		return arr.Element
	case *ast.PointerAccess:
		ptrExpr := t.typeExpr(n.Pointer)
		n.Pointer = ptrExpr
		//
		p, ok := ptrExpr.Type().(*types.Pointer)
		if !ok {
			t.fail(n.Pos(), diag.ErrNonPointerType)
			return types.ANY
		}
		//
		return p.Pointee
	default:
		t.fail(a.Pos(), diag.ErrUnknownSymbol)
		return types.ANY
	}
}

func underlyingRecord(t types.Type) *types.Record {
	switch v := t.(type) {
	case *types.Record:
		return v
	case *types.Pointer:
		return underlyingRecord(v.Pointee)
	case *types.Reference:
		return underlyingRecord(v.Referee)
	default:
		return nil
	}
}

func (t *Typer) typeBinaryOp(n *ast.BinaryOp) ast.Expr {
	n.Left = t.typeExpr(n.Left)
	n.Right = t.typeExpr(n.Right)
	//
	switch {
	case n.Op == ast.OpIn:
		elemTy, ok := types.UpcastIn(n.Left.Type(), n.Right.Type())
		if !ok {
			t.fail(n.Pos(), diag.ErrInvalidBinaryExpr)
			n.SetType(types.BOOL)
			return n
		}
		//
		if set, ok := elemTy.(*types.Set); ok {
			n.Left = t.convertLift(n.Left, set.Element)
		}
		//
		n.SetType(types.BOOL)
		return n
	case n.Op.IsRelational():
		res, ok := types.UpcastRelational(n.Left.Type(), n.Right.Type())
		if !ok {
			t.fail(n.Pos(), diag.ErrInvalidBinaryExpr)
			n.SetType(types.BOOL)
			return n
		}
		//
		n.Left = t.convertLift(n.Left, res.OperandType)
		n.Right = t.convertLift(n.Right, res.OperandType)
		n.SetType(res.ResultType)
		return n
	case n.Op.IsArithmetic():
		res, ok := types.UpcastArithmetic(n.Left.Type(), n.Right.Type(), string(n.Op))
		if !ok {
			t.fail(n.Pos(), diag.ErrInvalidBinaryExpr)
			n.SetType(types.ANY)
			return n
		}
		//
		n.Left = t.convertLift(n.Left, res.OperandType)
		n.Right = t.convertLift(n.Right, res.OperandType)
		n.SetType(res.ResultType)
		return n
	case n.Op == ast.OpAnd || n.Op == ast.OpOr:
		n.Left = t.convertAssign(n.Left, types.BOOL)
		n.Right = t.convertAssign(n.Right, types.BOOL)
		n.SetType(types.BOOL)
		return n
	default:
		t.fail(n.Pos(), diag.ErrInvalidBinaryExpr)
		n.SetType(types.ANY)
		return n
	}
}

func (t *Typer) typeUnaryOp(n *ast.UnaryOp) ast.Expr {
	n.Expr = t.typeExpr(n.Expr)
	//
	switch n.Op {
	case ast.OpNot:
		n.Expr = t.convertAssign(n.Expr, types.BOOL)
		n.SetType(types.BOOL)
	default:
		n.SetType(n.Expr.Type())
	}
	//
	return n
}

func (t *Typer) typeSetLiteral(n *ast.SetLiteral) ast.Expr {
	var elemTy types.Type
	//
	for i := range n.Members {
		m := &n.Members[i]
		//
		if m.IsRange() {
			m.RangeLo = t.typeExpr(m.RangeLo)
			m.RangeHi = t.typeExpr(m.RangeHi)
			//
			if elemTy == nil {
				elemTy = m.RangeLo.Type()
			}
		} else {
			m.Single = t.typeExpr(m.Single)
			//
			if elemTy == nil {
				elemTy = m.Single.Type()
			}
		}
	}
	//
	if elemTy == nil {
		n.SetType(types.EMPTYSET)
		return n
	}
	//
	n.SetType(types.NewSetType(elemTy))
	return n
}

func (t *Typer) typeFunctionCall(n *ast.FunctionCall) ast.Expr {
	fn, err := t.table.FindFunction(n.Name)
	if err != nil {
		if ty, terr := t.table.FindTypedef(n.Name); terr == nil && len(n.Args) == 1 {
			n.Args[0].Expr = t.typeExpr(n.Args[0].Expr)
			n.SetType(ty)
			return n
		}
		//
		t.fail(n.Pos(), diag.ErrUnknownFunction)
		n.SetType(types.ANY)
		return n
	}
	//
	n.Resolved = fn
	//
	if fn.Variadic {
		for _, a := range n.Args {
			a.Expr = t.typeExpr(a.Expr)
			a.ByRef = variadicByRefBuiltins[n.Name]
		}
		//
		n.SetType(fn.Ret)
		return n
	}
	//
	if len(n.Args) != len(fn.Params) {
		t.fail(n.Pos(), diag.ErrWrongArgumentCount)
		n.SetType(fn.Ret)
		return n
	}
	//
	for i, a := range n.Args {
		param := fn.Params[i]
		argExpr := t.typeExpr(a.Expr)
		//
		if _, isRef := param.Type.(*types.Reference); isRef {
			switch argExpr.(type) {
			case *ast.VarLoad:
				// Deferred to the call-by-reference fixup pass (spec §4.4).
				n.Args[i].Expr = argExpr
			default:
				if _, isArr := argExpr.Type().(*types.Array); isArr {
					n.Args[i].Expr = argExpr
				} else {
					t.fail(a.Pos(), diag.ErrArgumentNotReferenceable)
					n.Args[i].Expr = argExpr
				}
			}
			//
			continue
		}
		//
		n.Args[i].Expr = t.convertAssign(argExpr, param.Type)
	}
	//
	n.SetType(fn.Ret)
	return n
}

// convertLift wraps e in a TypeConvert to target whenever they differ,
// without consulting the downcast-legality table: used for the lossless
// upcast lifting a binary operator's rules mandate (spec §4.2.1/§4.2.2).
func (t *Typer) convertLift(e ast.Expr, target types.Type) ast.Expr {
	if types.Equals(e.Type(), target) {
		return e
	}
	//
	return ast.NewTypeConvert(e, target, false)
}

// convertAssign wraps e in a TypeConvert to target if legal under the
// assignment downcast rules (spec §4.2.3), recording IllegalCast and a
// narrowing warning as appropriate.
func (t *Typer) convertAssign(e ast.Expr, target types.Type) ast.Expr {
	if types.Equals(e.Type(), target) {
		return e
	}
	//
	res := types.DowncastAssign(e.Type(), target)
	if !res.Legal {
		t.fail(e.Pos(), diag.ErrIllegalCast)
		return e
	}
	//
	if res.Warning && t.log != nil {
		t.log.WithField("module", t.module).Warnf("%s: narrowing conversion from %s to %s may lose precision",
			e.Pos().String(), e.Type().String(), target.String())
	}
	//
	return ast.NewTypeConvert(e, target, res.Warning)
}

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
	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/types"
)

// typeStmt types a statement and every expression it contains, recursing
// into nested statements.
func (t *Typer) typeStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.StatementList:
		for i := range n.Items {
			t.typeStmt(n.Items[i])
		}
	case *ast.Assignment:
		targetTy := t.typeAccess(n.Target)
		n.Expr = t.convertAssign(t.typeExpr(n.Expr), targetTy)
	case *ast.ExprStatement:
		if fc, ok := t.typeFunctionCall(n.Call).(*ast.FunctionCall); ok {
			n.Call = fc
		}
	case *ast.If:
		n.Cond = t.convertAssign(t.typeExpr(n.Cond), types.BOOL)
		t.typeStmt(n.Then)
		//
		if n.Else != nil {
			t.typeStmt(n.Else)
		}
	case *ast.While:
		n.Cond = t.convertAssign(t.typeExpr(n.Cond), types.BOOL)
		t.typeStmt(n.Body)
	case *ast.Repeat:
		t.typeStmt(n.Body)
		n.Cond = t.convertAssign(t.typeExpr(n.Cond), types.BOOL)
	case *ast.For:
		t.typeFor(n)
	case *ast.Case:
		t.typeCase(n)
	case *ast.With:
		t.typeWith(n)
	case *ast.Goto:
		if _, err := t.table.FindGoto(n.Label); err != nil {
			t.fail(n.Pos(), diag.ErrUnknownGoto)
		}
	case *ast.Labeled:
		t.typeStmt(n.Statement)
	case *ast.Null:
		// nothing to type.
	default:
		t.fail(s.Pos(), diag.ErrInvalidBinaryExpr)
	}
}

func (t *Typer) typeFor(n *ast.For) {
	varTy := t.typeAccess(n.Var)
	n.Start = t.convertAssign(t.typeExpr(n.Start), varTy)
	n.End = t.convertAssign(t.typeExpr(n.End), varTy)
	//
	if n.Direction != ast.LoopTo && n.Direction != ast.LoopDownto {
		t.fail(n.Pos(), diag.ErrUnknownLoopDirection)
	}
	//
	t.typeStmt(n.Body)
}

func (t *Typer) typeCase(n *ast.Case) {
	n.Selector = t.typeExpr(n.Selector)
	selTy := n.Selector.Type()
	//
	for _, arm := range n.Arms {
		for i := range arm.Labels {
			lbl := &arm.Labels[i]
			//
			if lbl.IsRange() {
				lbl.RangeLo = t.convertAssign(t.typeExpr(lbl.RangeLo), selTy)
				lbl.RangeHi = t.convertAssign(t.typeExpr(lbl.RangeHi), selTy)
			} else {
				lbl.Single = t.convertAssign(t.typeExpr(lbl.Single), selTy)
			}
		}
		//
		t.typeStmt(arm.Statement)
	}
	//
	if n.Otherwise != nil {
		t.typeStmt(n.Otherwise)
	}
}

func (t *Typer) typeWith(n *ast.With) {
	t.table.EnterScope()
	defer t.table.ExitScope()
	//
	for i := range n.Records {
		recTy := t.typeAccess(n.Records[i].Record)
		rec := underlyingRecord(recTy)
		//
		if rec == nil {
			t.fail(n.Records[i].Pos(), diag.ErrNonIndexedType)
			continue
		}
		//
		for _, f := range rec.Fields {
			t.table.InstallSymbol(f.Name, f.Type, nil)
		}
		//
		if rec.Variant != nil {
			t.table.InstallSymbol(rec.Variant.Selector.Name, rec.Variant.Selector.Type, nil)
			//
			for _, c := range rec.Variant.Cases {
				for _, f := range c.Fields {
					t.table.InstallSymbol(f.Name, f.Type, nil)
				}
			}
		}
	}
	//
	t.typeStmt(n.Body)
}

// declareFunctionSignature resolves a function/procedure's parameter and
// return types and installs its signature into the enclosing scope, without
// typing its body.  hook is non-nil for nested procedures (spec §4.6.4).
func (t *Typer) declareFunctionSignature(module string, fn *ast.FunctionDecl, scopeLevel uint, hook *types.ScopeHook) {
	var params []types.Parameter
	//
	for _, p := range fn.Params {
		pty := t.resolveTypeExprFinal(p.Type)
		if p.Kind == ast.ByReference {
			pty = types.NewReferenceType(pty)
		}
		//
		for _, name := range p.Names {
			params = append(params, types.Parameter{Name: name, Type: pty})
		}
	}
	//
	ret := types.Type(types.VOID)
	if fn.Ret != nil {
		ret = t.resolveTypeExprFinal(fn.Ret)
	}
	//
	resolved := &types.Function{
		Module:     module,
		Name:       fn.Name,
		Ret:        ret,
		Params:     params,
		ScopeLevel: scopeLevel,
		ScopeHook:  hook,
	}
	fn.Resolved = resolved
	//
	t.table.InstallFunction(fn.Name, resolved)
}

// typeFunctionBody pushes the function's scope, installs its parameters and
// local type/const/var block, recursively declares and types any nested
// procedures (each receiving a scope hook capturing this function's current
// locals), then types the body.
func (t *Typer) typeFunctionBody(fn *ast.FunctionDecl) {
	t.table.EnterScope()
	defer t.table.ExitScope()
	//
	for _, l := range fn.Labels {
		t.table.InstallGoto(l, nil)
	}
	//
	for _, p := range fn.Params {
		paramTy := t.resolveTypeExprFinal(p.Type)
		installTy := types.Type(paramTy)
		//
		if p.Kind == ast.ByReference {
			installTy = types.NewReferenceType(paramTy)
		}
		//
		for _, name := range p.Names {
			t.table.InstallSymbol(name, installTy, nil)
		}
	}
	//
	t.typeBlock(fn.TypeDecls, fn.ConstDecls, fn.VarDecls)
	//
	for _, nested := range fn.Nested {
		hook := t.buildScopeHook(nested.Name)
		t.declareFunctionSignature(fn.Resolved.Module, nested, fn.Resolved.ScopeLevel+1, hook)
	}
	//
	for _, nested := range fn.Nested {
		t.typeFunctionBody(nested)
	}
	//
	if fn.Body != nil {
		t.typeStmt(fn.Body)
	}
}

// buildScopeHook snapshots every symbol currently visible in the enclosing
// function as a captured pointer field (spec §4.6.4, scenario 4).
func (t *Typer) buildScopeHook(nestedName string) *types.ScopeHook {
	symbols := t.table.VisibleSymbols()
	if len(symbols) == 0 {
		return nil
	}
	//
	fields := make([]types.ScopeField, len(symbols))
	for i, sym := range symbols {
		fields[i] = types.ScopeField{Name: sym.Name, Type: sym.Type, Index: uint(i)}
	}
	//
	return types.NewScopeHook(t.table.Label("hook$"+nestedName), fields)
}

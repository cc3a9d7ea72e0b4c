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

// Package byref implements the call-by-reference fixup pass (spec §4.4): a
// second walk over the already-typed AST that rewrites every argument fed
// to a Reference-typed parameter from a plain VarLoad into a VarReference,
// and marks it so the lowering pass passes its address rather than its
// value.  Variadic read/readln always pass every argument by reference.
package byref

import (
	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

var variadicByRef = map[string]bool{
	"read":   true,
	"readln": true,
}

// Fixup rewrites every call site in mod in place.
func Fixup(mod *ast.Module) {
	for _, fn := range mod.Functions {
		fixupFunction(fn)
	}
	//
	if mod.Main != nil {
		fixupStmt(mod.Main)
	}
}

func fixupFunction(fn *ast.FunctionDecl) {
	if fn.Body != nil {
		fixupStmt(fn.Body)
	}
	//
	for _, nested := range fn.Nested {
		fixupFunction(nested)
	}
}

func fixupStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.StatementList:
		for i := range n.Items {
			fixupStmt(n.Items[i])
		}
	case *ast.Assignment:
		n.Expr = fixupExpr(n.Expr)
	case *ast.ExprStatement:
		fixupCall(n.Call)
	case *ast.If:
		n.Cond = fixupExpr(n.Cond)
		fixupStmt(n.Then)
		//
		if n.Else != nil {
			fixupStmt(n.Else)
		}
	case *ast.While:
		n.Cond = fixupExpr(n.Cond)
		fixupStmt(n.Body)
	case *ast.Repeat:
		fixupStmt(n.Body)
		n.Cond = fixupExpr(n.Cond)
	case *ast.For:
		n.Start = fixupExpr(n.Start)
		n.End = fixupExpr(n.End)
		fixupStmt(n.Body)
	case *ast.Case:
		for _, arm := range n.Arms {
			fixupStmt(arm.Statement)
		}
		//
		if n.Otherwise != nil {
			fixupStmt(n.Otherwise)
		}
	case *ast.With:
		fixupStmt(n.Body)
	case *ast.Labeled:
		fixupStmt(n.Statement)
	}
}

// fixupExpr recurses into an expression's children, rewriting any call
// found along the way.  Only FunctionCall nodes need rewriting; every other
// node shape is opaque to this pass.
func fixupExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.FunctionCall:
		fixupCall(n)
		return n
	case *ast.BinaryOp:
		n.Left = fixupExpr(n.Left)
		n.Right = fixupExpr(n.Right)
		return n
	case *ast.UnaryOp:
		n.Expr = fixupExpr(n.Expr)
		return n
	case *ast.TypeConvert:
		n.Child = fixupExpr(n.Child)
		return n
	default:
		return e
	}
}

func fixupCall(n *ast.FunctionCall) {
	if n.Resolved == nil {
		return
	}
	//
	for i, a := range n.Args {
		a.Expr = fixupExpr(a.Expr)
		//
		if !wantsByRef(n.Resolved, i) {
			continue
		}
		//
		load, ok := a.Expr.(*ast.VarLoad)
		if !ok {
			// Arrays (and already-by-reference call results) pass by
			// address without wrapping; see typer.typeFunctionCall.
			continue
		}
		//
		ref := &ast.VarReference{Target: load.Target}
		ref.Position = load.Pos()
		ref.SetType(types.NewReferenceType(load.Type()))
		//
		a.Expr = ref
		a.ByRef = true
	}
}

func wantsByRef(fn *types.Function, argIndex int) bool {
	if fn.Variadic {
		return variadicByRef[fn.Name]
	}
	//
	if argIndex >= len(fn.Params) {
		return false
	}
	//
	_, ok := fn.Params[argIndex].Type.(*types.Reference)
	return ok
}

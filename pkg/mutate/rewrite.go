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
package mutate

import "github.com/tornblom/p86c/pkg/ast"

// rewriteExpr rewrites every expression reachable from e in post-order
// (children first, then e itself), applying fn at each step. Used by every
// operator that needs to locate and replace one specific expression inside
// an otherwise-untouched clone of a statement.
func rewriteExpr(e ast.Expr, fn func(ast.Expr) ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	//
	switch n := e.(type) {
	case *ast.VarAccess:
		n.Target = rewriteAccess(n.Target, fn)
	case *ast.VarLoad:
		n.Target = rewriteAccess(n.Target, fn)
	case *ast.VarReference:
		n.Target = rewriteAccess(n.Target, fn)
	case *ast.BinaryOp:
		n.Left = rewriteExpr(n.Left, fn)
		n.Right = rewriteExpr(n.Right, fn)
	case *ast.UnaryOp:
		n.Expr = rewriteExpr(n.Expr, fn)
	case *ast.TypeConvert:
		n.Child = rewriteExpr(n.Child, fn)
	case *ast.SetLiteral:
		for i := range n.Members {
			n.Members[i].Single = rewriteExpr(n.Members[i].Single, fn)
			n.Members[i].RangeLo = rewriteExpr(n.Members[i].RangeLo, fn)
			n.Members[i].RangeHi = rewriteExpr(n.Members[i].RangeHi, fn)
		}
	case *ast.FunctionCall:
		for _, a := range n.Args {
			a.Expr = rewriteExpr(a.Expr, fn)
		}
	}
	//
	return fn(e)
}

func rewriteAccess(a ast.Access, fn func(ast.Expr) ast.Expr) ast.Access {
	switch n := a.(type) {
	case *ast.IndexedAccess:
		n.Array = rewriteExpr(n.Array, fn)
		n.Index = rewriteExpr(n.Index, fn)
	case *ast.PointerAccess:
		n.Pointer = rewriteExpr(n.Pointer, fn)
	case *ast.FieldAccessNode:
		n.Record = rewriteAccess(n.Record, fn)
	}
	//
	return a
}

// rewriteStmt applies rewriteExpr to every expression owned directly or
// transitively by s.
func rewriteStmt(s ast.Stmt, fn func(ast.Expr) ast.Expr) ast.Stmt {
	if s == nil {
		return nil
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		for i := range n.Items {
			n.Items[i] = rewriteStmt(n.Items[i], fn)
		}
	case *ast.Assignment:
		n.Target = rewriteAccess(n.Target, fn)
		n.Expr = rewriteExpr(n.Expr, fn)
	case *ast.ExprStatement:
		n.Call = rewriteExpr(n.Call, fn).(*ast.FunctionCall)
	case *ast.If:
		n.Cond = rewriteExpr(n.Cond, fn)
		n.Then = rewriteStmt(n.Then, fn)
		n.Else = rewriteStmt(n.Else, fn)
	case *ast.While:
		n.Cond = rewriteExpr(n.Cond, fn)
		n.Body = rewriteStmt(n.Body, fn)
	case *ast.Repeat:
		n.Body = rewriteStmt(n.Body, fn)
		n.Cond = rewriteExpr(n.Cond, fn)
	case *ast.For:
		n.Var = rewriteAccess(n.Var, fn)
		n.Start = rewriteExpr(n.Start, fn)
		n.End = rewriteExpr(n.End, fn)
		n.Body = rewriteStmt(n.Body, fn)
	case *ast.Case:
		n.Selector = rewriteExpr(n.Selector, fn)
		for _, a := range n.Arms {
			for i := range a.Labels {
				a.Labels[i].Single = rewriteExpr(a.Labels[i].Single, fn)
				a.Labels[i].RangeLo = rewriteExpr(a.Labels[i].RangeLo, fn)
				a.Labels[i].RangeHi = rewriteExpr(a.Labels[i].RangeHi, fn)
			}
			//
			a.Statement = rewriteStmt(a.Statement, fn)
		}
		//
		n.Otherwise = rewriteStmt(n.Otherwise, fn)
	case *ast.With:
		for i := range n.Records {
			n.Records[i].Record = rewriteAccess(n.Records[i].Record, fn)
		}
		//
		n.Body = rewriteStmt(n.Body, fn)
	case *ast.Labeled:
		n.Statement = rewriteStmt(n.Statement, fn)
	}
	//
	return s
}

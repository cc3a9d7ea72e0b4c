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

// findBinaryOp locates the BinaryOp occupying pos within the subtree rooted
// at s: every node keeps the position of the node it was cloned from, so a
// lex span recorded before cloning still identifies the same operator site
// afterwards. Returns nil if no such node exists.
func findBinaryOp(s ast.Stmt, pos ast.Position) *ast.BinaryOp {
	var found *ast.BinaryOp
	//
	walkStmt(s, func(e ast.Expr) bool {
		if b, ok := e.(*ast.BinaryOp); ok && b.Position == pos {
			found = b
			return false
		}
		//
		return true
	})
	//
	return found
}

// collectBinaryOps returns every BinaryOp reachable from s, in traversal
// order. The statement-level operators (aor, cor, ror) enumerate their
// mutation opportunities with collectBinaryOpsShallow instead.
func collectBinaryOps(s ast.Stmt) []*ast.BinaryOp {
	var found []*ast.BinaryOp
	//
	walkStmt(s, func(e ast.Expr) bool {
		if b, ok := e.(*ast.BinaryOp); ok {
			found = append(found, b)
		}
		//
		return true
	})
	//
	return found
}

// walkExpr applies visit to e and every expression reachable from it.
// visit's result is ignored: the whole tree below e is always walked.
func walkExpr(e ast.Expr, visit func(ast.Expr) bool) {
	if e == nil {
		return
	}
	//
	visit(e)
	//
	switch n := e.(type) {
	case *ast.VarAccess:
		walkAccessExprs(n.Target, visit)
	case *ast.VarLoad:
		walkAccessExprs(n.Target, visit)
	case *ast.VarReference:
		walkAccessExprs(n.Target, visit)
	case *ast.BinaryOp:
		walkExpr(n.Left, visit)
		walkExpr(n.Right, visit)
	case *ast.UnaryOp:
		walkExpr(n.Expr, visit)
	case *ast.TypeConvert:
		walkExpr(n.Child, visit)
	case *ast.SetLiteral:
		for _, m := range n.Members {
			walkExpr(m.Single, visit)
			walkExpr(m.RangeLo, visit)
			walkExpr(m.RangeHi, visit)
		}
	case *ast.FunctionCall:
		for _, a := range n.Args {
			walkExpr(a.Expr, visit)
		}
	}
}

func walkAccessExprs(a ast.Access, visit func(ast.Expr) bool) {
	switch n := a.(type) {
	case *ast.IndexedAccess:
		walkExpr(n.Array, visit)
		walkExpr(n.Index, visit)
	case *ast.PointerAccess:
		walkExpr(n.Pointer, visit)
	case *ast.FieldAccessNode:
		walkAccessExprs(n.Record, visit)
	}
}

// walkStmt applies visit to every expression reachable from s.
func walkStmt(s ast.Stmt, visit func(ast.Expr) bool) {
	if s == nil {
		return
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		for _, it := range n.Items {
			walkStmt(it, visit)
		}
	case *ast.Assignment:
		walkAccessExprs(n.Target, visit)
		walkExpr(n.Expr, visit)
	case *ast.ExprStatement:
		walkExpr(n.Call, visit)
	case *ast.If:
		walkExpr(n.Cond, visit)
		walkStmt(n.Then, visit)
		walkStmt(n.Else, visit)
	case *ast.While:
		walkExpr(n.Cond, visit)
		walkStmt(n.Body, visit)
	case *ast.Repeat:
		walkStmt(n.Body, visit)
		walkExpr(n.Cond, visit)
	case *ast.For:
		walkAccessExprs(n.Var, visit)
		walkExpr(n.Start, visit)
		walkExpr(n.End, visit)
		walkStmt(n.Body, visit)
	case *ast.Case:
		walkExpr(n.Selector, visit)
		for _, a := range n.Arms {
			for _, l := range a.Labels {
				walkExpr(l.Single, visit)
				walkExpr(l.RangeLo, visit)
				walkExpr(l.RangeHi, visit)
			}
			//
			walkStmt(a.Statement, visit)
		}
		//
		walkStmt(n.Otherwise, visit)
	case *ast.With:
		for _, r := range n.Records {
			walkAccessExprs(r.Record, visit)
		}
		//
		walkStmt(n.Body, visit)
	case *ast.Labeled:
		walkStmt(n.Statement, visit)
	}
}

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

// cloneStmt produces a structurally independent copy of s, so a mutation
// operator can apply one in-place edit to the copy without disturbing the
// statement any sibling mutant is built from.
func cloneStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		items := make([]ast.Stmt, len(n.Items))
		for i, it := range n.Items {
			items[i] = cloneStmt(it)
		}
		//
		c := &ast.StatementList{Items: items}
		c.Position = n.Position
		return c
	case *ast.Assignment:
		c := &ast.Assignment{Target: cloneAccess(n.Target), Expr: cloneExpr(n.Expr)}
		c.Position = n.Position
		return c
	case *ast.ExprStatement:
		c := &ast.ExprStatement{Call: cloneExpr(n.Call).(*ast.FunctionCall)}
		c.Position = n.Position
		return c
	case *ast.If:
		c := &ast.If{
			Cond:        cloneExpr(n.Cond),
			Then:        cloneStmt(n.Then),
			Else:        cloneStmt(n.Else),
			LikelyTrue:  n.LikelyTrue,
			LikelyFalse: n.LikelyFalse,
		}
		c.Position = n.Position
		return c
	case *ast.While:
		c := &ast.While{Cond: cloneExpr(n.Cond), Body: cloneStmt(n.Body)}
		c.Position = n.Position
		return c
	case *ast.Repeat:
		c := &ast.Repeat{Body: cloneStmt(n.Body), Cond: cloneExpr(n.Cond)}
		c.Position = n.Position
		return c
	case *ast.For:
		c := &ast.For{
			Var:       cloneAccess(n.Var),
			Start:     cloneExpr(n.Start),
			End:       cloneExpr(n.End),
			Direction: n.Direction,
			Body:      cloneStmt(n.Body),
		}
		c.Position = n.Position
		return c
	case *ast.Case:
		arms := make([]*ast.CaseArm, len(n.Arms))
		for i, a := range n.Arms {
			labels := make([]ast.CaseLabel, len(a.Labels))
			for j, l := range a.Labels {
				nl := ast.CaseLabel{Single: cloneExpr(l.Single), RangeLo: cloneExpr(l.RangeLo), RangeHi: cloneExpr(l.RangeHi)}
				nl.Position = l.Position
				labels[j] = nl
			}
			//
			na := &ast.CaseArm{Labels: labels, Statement: cloneStmt(a.Statement)}
			na.Position = a.Position
			arms[i] = na
		}
		//
		c := &ast.Case{Selector: cloneExpr(n.Selector), Arms: arms, Otherwise: cloneStmt(n.Otherwise)}
		c.Position = n.Position
		return c
	case *ast.With:
		records := make([]ast.WithRecord, len(n.Records))
		for i, r := range n.Records {
			nr := ast.WithRecord{Record: cloneAccess(r.Record)}
			nr.Position = r.Position
			records[i] = nr
		}
		//
		c := &ast.With{Records: records, Body: cloneStmt(n.Body)}
		c.Position = n.Position
		return c
	case *ast.Goto:
		c := &ast.Goto{Label: n.Label}
		c.Position = n.Position
		return c
	case *ast.Labeled:
		c := &ast.Labeled{Label: n.Label, Statement: cloneStmt(n.Statement)}
		c.Position = n.Position
		return c
	case *ast.Null:
		c := &ast.Null{}
		c.Position = n.Position
		return c
	default:
		return s
	}
}

func cloneExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	//
	switch n := e.(type) {
	case *ast.IntLiteral:
		c := &ast.IntLiteral{Value: n.Value}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.RealLiteral:
		c := &ast.RealLiteral{Value: n.Value}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.CharLiteral:
		c := &ast.CharLiteral{Value: n.Value}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.StringLiteral:
		c := &ast.StringLiteral{Value: n.Value}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.VarAccess:
		c := &ast.VarAccess{Target: cloneAccess(n.Target)}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.VarLoad:
		c := &ast.VarLoad{Target: cloneAccess(n.Target)}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.VarReference:
		c := &ast.VarReference{Target: cloneAccess(n.Target)}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.BinaryOp:
		c := &ast.BinaryOp{Op: n.Op, Left: cloneExpr(n.Left), Right: cloneExpr(n.Right)}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.UnaryOp:
		c := &ast.UnaryOp{Op: n.Op, Expr: cloneExpr(n.Expr)}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.TypeConvert:
		c := &ast.TypeConvert{Child: cloneExpr(n.Child), Warning: n.Warning}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.SetLiteral:
		members := make([]ast.SetMember, len(n.Members))
		for i, m := range n.Members {
			nm := ast.SetMember{Single: cloneExpr(m.Single), RangeLo: cloneExpr(m.RangeLo), RangeHi: cloneExpr(m.RangeHi)}
			nm.Position = m.Position
			members[i] = nm
		}
		//
		c := &ast.SetLiteral{Members: members}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	case *ast.FunctionCall:
		args := make([]*ast.Argument, len(n.Args))
		for i, a := range n.Args {
			na := &ast.Argument{Expr: cloneExpr(a.Expr), ByRef: a.ByRef}
			na.Position = a.Position
			args[i] = na
		}
		//
		c := &ast.FunctionCall{Name: n.Name, Args: args, Resolved: n.Resolved}
		c.Position = n.Position
		c.SetType(n.Type())
		return c
	default:
		return e
	}
}

func cloneAccess(a ast.Access) ast.Access {
	if a == nil {
		return nil
	}
	//
	switch n := a.(type) {
	case *ast.NameAccess:
		c := &ast.NameAccess{Name: n.Name}
		c.Position = n.Position
		return c
	case *ast.FieldAccessNode:
		c := &ast.FieldAccessNode{Record: cloneAccess(n.Record), Field: n.Field}
		c.Position = n.Position
		return c
	case *ast.IndexedAccess:
		c := &ast.IndexedAccess{Array: cloneExpr(n.Array), Index: cloneExpr(n.Index)}
		c.Position = n.Position
		return c
	case *ast.PointerAccess:
		c := &ast.PointerAccess{Pointer: cloneExpr(n.Pointer)}
		c.Position = n.Position
		return c
	default:
		return a
	}
}

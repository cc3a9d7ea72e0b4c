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

import (
	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

// DCC is the decision/condition coverage operator: every boolean-valued
// sub-expression is forced to true and to false in turn (with the original
// kept, guarded, as the fallback), and every case statement gets a bomb on
// each arm and on its otherwise clause, with a bomb-only otherwise added
// when there is none and the labels do not cover the selector's range.
type DCC struct{ Report *Report }

// NewDCC constructs a decision/condition-coverage operator.
func NewDCC(report *Report) *DCC { return &DCC{report} }

func isBool(ty types.Type) bool {
	_, ok := ty.(*types.Bool)
	if ok {
		return true
	}
	_, ok = ty.(types.Bool)
	return ok
}

func isConstantCond(e ast.Expr) bool {
	if load, ok := e.(*ast.VarLoad); ok {
		if na, ok := load.Target.(*ast.NameAccess); ok {
			return na.Name == "true" || na.Name == "false"
		}
	}
	//
	return getValue(e) != nil
}

// wrapOperand replaces cond with a form that can independently be forced to
// true or to false at runtime, while otherwise behaving like cond.
func (op *DCC) wrapOperand(cond ast.Expr) ast.Expr {
	if isConstantCond(cond) {
		return cond
	}
	//
	trueID, ok := op.Report.AddMutant(cond.Pos(), "true")
	if !ok {
		return cond
	}
	//
	falseID, ok := op.Report.AddMutant(cond.Pos(), "false")
	if !ok {
		return cond
	}
	//
	trueCond := cmp(ast.OpOr, makeMutEq(trueID), cond)
	return cmp(ast.OpAnd, trueCond, makeMutNeq(falseID))
}

// wrapDisableCond force-disables cond (replacing it with false) under one
// mutant, while leaving every other mutant's behavior unchanged; used for
// loop conditions so a disabled condition can't spin forever.
func (op *DCC) wrapDisableCond(cond ast.Expr) ast.Expr {
	if isConstantCond(cond) {
		return cond
	}
	//
	id, ok := op.Report.AddMutant(cond.Pos(), "false")
	if !ok {
		return cond
	}
	//
	return cmp(ast.OpAnd, makeMutNeq(id), cond)
}

func (op *DCC) mutateExpr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}
	//
	switch n := e.(type) {
	case *ast.UnaryOp:
		n.Expr = op.mutateExpr(n.Expr)
		//
		if n.Op == ast.OpNot && isBool(n.Type()) && isBool(n.Expr.Type()) {
			return op.wrapOperand(n)
		}
		//
		return n
	case *ast.BinaryOp:
		n.Left = op.mutateExpr(n.Left)
		n.Right = op.mutateExpr(n.Right)
		//
		if isBool(n.Type()) {
			return op.wrapOperand(n)
		}
		//
		return n
	case *ast.VarLoad:
		if isBool(n.Type()) {
			return op.wrapOperand(n)
		}
		//
		return n
	case *ast.FunctionCall:
		for _, a := range n.Args {
			a.Expr = op.mutateExpr(a.Expr)
			//
			if isBool(a.Expr.Type()) {
				a.Expr = op.wrapOperand(a.Expr)
			}
		}
		//
		if isBool(n.Type()) {
			return op.wrapOperand(n)
		}
		//
		return n
	case *ast.TypeConvert:
		n.Child = op.mutateExpr(n.Child)
		return n
	default:
		return e
	}
}

func (op *DCC) mutateStmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		for i := range n.Items {
			n.Items[i] = op.mutateStmt(n.Items[i])
		}
	case *ast.Assignment:
		n.Expr = op.mutateExpr(n.Expr)
	case *ast.ExprStatement:
		op.mutateExpr(n.Call)
	case *ast.If:
		n.Cond = op.wrapDisableCond(op.mutateExpr(n.Cond))
		n.Then = op.mutateStmt(n.Then)
		n.Else = op.mutateStmt(n.Else)
	case *ast.While:
		n.Cond = op.wrapDisableCond(op.mutateExpr(n.Cond))
		n.Body = op.mutateStmt(n.Body)
	case *ast.Repeat:
		n.Body = op.mutateStmt(n.Body)
		n.Cond = op.wrapDisableCond(op.mutateExpr(n.Cond))
	case *ast.For:
		n.Start = op.mutateExpr(n.Start)
		n.End = op.mutateExpr(n.End)
		n.Body = op.mutateStmt(n.Body)
	case *ast.Case:
		op.mutateCase(n)
	case *ast.With:
		n.Body = op.mutateStmt(n.Body)
	case *ast.Labeled:
		n.Statement = op.mutateStmt(n.Statement)
	}
	//
	return s
}

func (op *DCC) mutateCase(n *ast.Case) {
	n.Selector = op.mutateExpr(n.Selector)
	//
	seen := make(map[string]bool)
	//
	for _, a := range n.Arms {
		for _, l := range a.Labels {
			if l.IsRange() {
				continue
			}
			//
			if v := getValue(l.Single); v != nil {
				seen[v.String()] = true
			}
		}
		//
		id, ok := op.Report.AddMutant(a.Statement.Pos(), "halt")
		a.Statement = op.mutateStmt(a.Statement)
		//
		if ok {
			bomb := makeBombStmt(id)
			bomb.Else = a.Statement
			a.Statement = bomb
		}
	}
	//
	rng, ok := n.Selector.Type().(*types.IntRange)
	var span int64 = -1
	//
	if ok {
		span = rng.Hi.Int64() - rng.Lo.Int64() + 1
	}
	//
	if n.Otherwise != nil {
		n.Otherwise = op.mutateStmt(n.Otherwise)
		id, ok := op.Report.AddMutant(n.Otherwise.Pos(), "halt")
		//
		if ok {
			bomb := makeBombStmt(id)
			bomb.Else = n.Otherwise
			n.Otherwise = bomb
		}
	} else if span < 0 || int64(len(seen)) != span {
		pos := n.Position
		pos.LexStart = pos.LexEnd - 3
		pos.LexEnd = pos.LexStart
		//
		id, ok := op.Report.AddMutant(pos, "otherwise: halt ")
		//
		if ok {
			n.Otherwise = makeBombStmt(id)
		}
	}
}

// Mutate rewrites s in place.
func (op *DCC) Mutate(s ast.Stmt) ast.Stmt {
	return op.mutateStmt(s)
}

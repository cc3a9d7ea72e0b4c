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
	"testing"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

func intExpr(pos ast.Position, v int64) *ast.IntLiteral {
	n := &ast.IntLiteral{Value: v}
	n.Position = pos
	n.SetType(types.NewIntType(true, 16))
	return n
}

func assignStmt(pos ast.Position, name string, v int64) *ast.Assignment {
	n := &ast.Assignment{Target: &ast.NameAccess{Name: name}, Expr: intExpr(pos, v)}
	n.Position = pos
	return n
}

func TestSDLGuardsEveryStatement(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos1 := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	pos2 := ast.Position{File: "foo.pas", Line: 2, LexStart: 0, LexEnd: 5}
	list := &ast.StatementList{Items: []ast.Stmt{assignStmt(pos1, "a", 1), assignStmt(pos2, "b", 2)}}
	//
	out := NewSDL(report).Mutate(list).(*ast.StatementList)
	//
	if len(out.Items) != 2 {
		t.Fatalf("len(Items) = %d, want 2", len(out.Items))
	}
	//
	if report.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", report.Count())
	}
	//
	for _, it := range out.Items {
		guard, ok := it.(*ast.If)
		if !ok {
			t.Fatalf("item not wrapped in a guard: %T", it)
		}
		//
		if !guard.LikelyTrue {
			t.Fatal("SDL guard should predict the original behavior as the likely branch")
		}
	}
}

func TestSCBombsEveryStatement(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	list := &ast.StatementList{Items: []ast.Stmt{assignStmt(pos, "a", 1)}}
	//
	out := NewSC(report).Mutate(list).(*ast.StatementList)
	guard, ok := out.Items[0].(*ast.If)
	//
	if !ok {
		t.Fatalf("item not wrapped in a guard: %T", out.Items[0])
	}
	//
	if !guard.LikelyFalse {
		t.Fatal("SC bomb guard should predict the bomb branch as unlikely")
	}
	//
	call, ok := guard.Then.(*ast.ExprStatement)
	if !ok || call.Call.Name != "halt" {
		t.Fatalf("guarded branch is not a halt call: %#v", guard.Then)
	}
	//
	if guard.Else == nil {
		t.Fatal("bomb guard should fall through to the original statement")
	}
}

func TestRORReplacesComparisonOperator(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	lhs := intExpr(pos, 1)
	rhs := intExpr(pos, 2)
	bop := ast.NewBinaryOp(pos, ast.OpGt, lhs, rhs)
	bop.SetType(types.BOOL)
	ifStmt := &ast.If{Cond: bop, Then: assignStmt(pos, "a", 1)}
	ifStmt.Position = pos
	//
	out := NewROR(report).Mutate(ifStmt)
	//
	if report.Count() == 0 {
		t.Fatal("expected ROR to record at least one mutant")
	}
	//
	guard, ok := out.(*ast.If)
	if !ok {
		t.Fatalf("expected a chained guard, got %T", out)
	}
	//
	if !guard.LikelyFalse {
		t.Fatal("ROR variant guard should predict the mutant branch as unlikely")
	}
}

func TestDCCWrapsConditionAndOperand(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	lhs := intExpr(pos, 1)
	rhs := intExpr(pos, 2)
	bop := ast.NewBinaryOp(pos, ast.OpGt, lhs, rhs)
	bop.SetType(types.BOOL)
	ifStmt := &ast.If{Cond: bop, Then: assignStmt(pos, "a", 1)}
	ifStmt.Position = pos
	//
	NewDCC(report).Mutate(ifStmt)
	//
	if report.Count() != 3 {
		t.Fatalf("Count() = %d, want 3 (operand true/false plus disable-cond false)", report.Count())
	}
}

func TestDCCSkipsConstantCondition(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	load := &ast.VarLoad{Target: &ast.NameAccess{Name: "true"}}
	load.Position = pos
	load.SetType(types.BOOL)
	ifStmt := &ast.If{Cond: load, Then: assignStmt(pos, "a", 1)}
	ifStmt.Position = pos
	//
	NewDCC(report).Mutate(ifStmt)
	//
	if report.Count() != 0 {
		t.Fatalf("Count() = %d, want 0 for a constant condition", report.Count())
	}
}

func TestAORSkipsZeroOperand(t *testing.T) {
	report := NewReport("m", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 5}
	lhs := intExpr(pos, 0)
	rhs := intExpr(pos, 2)
	bop := ast.NewBinaryOp(pos, ast.OpAdd, lhs, rhs)
	bop.SetType(types.NewIntType(true, 16))
	stmt := &ast.Assignment{Target: &ast.NameAccess{Name: "a"}, Expr: bop}
	stmt.Position = pos
	//
	NewAOR(report).Mutate(stmt)
	//
	for _, m := range report.Mutants {
		if m.Value == string(ast.OpRight) {
			t.Fatal("AOR should skip disabling the right operand when the left operand is already zero")
		}
	}
}

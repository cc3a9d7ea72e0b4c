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
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

var (
	getMutationID    = &types.Function{Module: "$builtin", Name: "getmutationid", Ret: types.NewIntType(true, 32)}
	haltFn           = &types.Function{Module: "$builtin", Name: "halt", Ret: types.VOID, Params: []types.Parameter{{Name: "code", Type: types.NewIntType(true, 32)}}}
	boolConstantType = types.BOOL
)

// currentMutantID builds the zero-argument call that reads back the mutant
// id selected at runtime (set via the P86.mutant_id global, see pkg/runtime).
func currentMutantID() *ast.FunctionCall {
	n := &ast.FunctionCall{Name: "getmutationid", Resolved: getMutationID}
	n.SetType(getMutationID.Ret)
	return n
}

func intLiteral(v int32) *ast.IntLiteral {
	n := &ast.IntLiteral{Value: int64(v)}
	n.SetType(types.NewIntConstant(big.NewInt(int64(v))))
	return n
}

func boolName(name string) *ast.VarLoad {
	n := &ast.VarLoad{Target: &ast.NameAccess{Name: name}}
	n.SetType(boolConstantType)
	return n
}

func cmp(op ast.Op, left, right ast.Expr) *ast.BinaryOp {
	n := ast.NewBinaryOp(left.Pos(), op, left, right)
	n.SetType(types.BOOL)
	return n
}

// mutCmp builds `getmutationid() op mID`.
func mutCmp(mID int32, op ast.Op) *ast.BinaryOp {
	return cmp(op, currentMutantID(), intLiteral(mID))
}

// makeMutEq builds a condition true exactly when mID is the active mutant.
func makeMutEq(mID int32) *ast.BinaryOp { return mutCmp(mID, ast.OpEq) }

// makeMutNeq builds a condition true whenever mID is not the active mutant.
func makeMutNeq(mID int32) *ast.BinaryOp { return mutCmp(mID, ast.OpNeq) }

// makeMutIn builds a condition true whenever the active mutant is one of
// ids.
func makeMutIn(ids []int32) ast.Expr {
	var root ast.Expr = makeMutEq(ids[0])
	//
	for _, id := range ids[1:] {
		root = cmp(ast.OpOr, root, makeMutEq(id))
	}
	//
	return root
}

// makeMutNotIn builds a condition true whenever the active mutant is none
// of ids.
func makeMutNotIn(ids []int32) ast.Expr {
	var root ast.Expr = makeMutNeq(ids[0])
	//
	for _, id := range ids[1:] {
		root = cmp(ast.OpAnd, root, makeMutNeq(id))
	}
	//
	return root
}

// makeMutEqCond builds `mID is active AND cond`.
func makeMutEqCond(mID int32, cond ast.Expr) ast.Expr {
	return cmp(ast.OpAnd, makeMutEq(mID), cond)
}

// makeMutNeqCond builds `mID is not active AND cond`.
func makeMutNeqCond(mID int32, cond ast.Expr) ast.Expr {
	return cmp(ast.OpAnd, makeMutNeq(mID), cond)
}

// guardStmt wraps stmt with `if mID op getmutationid() then stmt`.
func guardStmt(mID int32, stmt ast.Stmt, op ast.Op) *ast.If {
	cond := cmp(op, intLiteral(mID), currentMutantID())
	n := &ast.If{Cond: cond, Then: stmt}
	n.Position = stmt.Pos()
	return n
}

// enableStmt wraps stmt so it runs only when mID is the active mutant: the
// branch is usually not taken.
func enableStmt(mID int32, stmt ast.Stmt) *ast.If {
	n := guardStmt(mID, stmt, ast.OpEq)
	n.LikelyFalse = true
	return n
}

// disableStmt wraps stmt so it runs unless mID is the active mutant: the
// branch is usually taken.
func disableStmt(mID int32, stmt ast.Stmt) *ast.If {
	n := guardStmt(mID, stmt, ast.OpNeq)
	n.LikelyTrue = true
	return n
}

// makeBombStmt builds an enable-guarded call to the halt built-in, used to
// terminate execution the instant a statement-coverage or decision-coverage
// mutant is selected and reached.
func makeBombStmt(mID int32) *ast.If {
	arg := intLiteral(1)
	call := &ast.FunctionCall{Name: "halt", Args: []*ast.Argument{{Expr: arg}}, Resolved: haltFn}
	call.SetType(types.VOID)
	//
	stmt := &ast.ExprStatement{Call: call}
	return enableStmt(mID, stmt)
}

// getValue returns the known constant value carried by e's type, or nil if
// e is not a constant.
func getValue(e ast.Expr) *big.Int {
	if tc, ok := e.(*ast.TypeConvert); ok {
		return getValue(tc.Child)
	}
	//
	switch n := e.(type) {
	case *ast.IntLiteral:
		return big.NewInt(n.Value)
	case *ast.CharLiteral:
		return big.NewInt(int64(n.Value))
	case *ast.VarLoad:
		if na, ok := n.Target.(*ast.NameAccess); ok {
			switch na.Name {
			case "true":
				return big.NewInt(1)
			case "false":
				return big.NewInt(0)
			}
		}
	}
	//
	switch ty := e.Type().(type) {
	case *types.Int:
		if ty.Value.HasValue() {
			return ty.Value.Unwrap()
		}
	case *types.Char:
		if ty.Value.HasValue() {
			return big.NewInt(int64(ty.Value.Unwrap()))
		}
	}
	//
	return nil
}

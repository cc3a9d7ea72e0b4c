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
package lower_test

import (
	"math/big"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/byref"
	"github.com/tornblom/p86c/pkg/lower"
	"github.com/tornblom/p86c/pkg/typer"
	"github.com/tornblom/p86c/pkg/types"
)

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func pos(line int) ast.Position { return ast.Position{File: "t.p86", Line: line} }

func nameType(name string) *ast.TypeName {
	n := &ast.TypeName{Name: name}
	n.Position = pos(1)
	return n
}

func resolvedType(ty types.Type) *ast.ResolvedLiteral {
	n := &ast.ResolvedLiteral{Resolved: ty}
	n.Position = pos(1)
	return n
}

func load(name string) *ast.VarLoad {
	v := &ast.VarLoad{Target: &ast.NameAccess{Name: name}}
	v.Position = pos(1)
	return v
}

func intLit(v int64) *ast.IntLiteral {
	n := &ast.IntLiteral{Value: v}
	n.Position = pos(1)
	return n
}

// compile types, fixes up and lowers mod in one shot, failing the test on
// any typing diagnostic.
func compile(t *testing.T, mod *ast.Module) string {
	t.Helper()
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Empty(t, ty.Diagnostics())
	//
	byref.Fixup(mod)
	//
	l := lower.New(nil, testLog())
	irMod, err := l.LowerModule(mod)
	require.NoError(t, err)
	//
	return irMod.String()
}

// scenario 1 of spec §8.3: `i := w + 1` with i: integer, w: word, forces a
// widen-add-narrow sequence.
func TestIntegerPromotionAndNarrowing(t *testing.T) {
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
			{Names: []string{"w"}, Type: nameType("word")},
		},
	}
	//
	add := ast.NewBinaryOp(pos(1), ast.OpAdd, load("w"), intLit(1))
	assign := &ast.Assignment{Target: &ast.NameAccess{Name: "i"}, Expr: add}
	assign.Position = pos(1)
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{assign})
	//
	out := compile(t, mod)
	//
	assert.Contains(t, out, "zext")
	assert.Contains(t, out, "add")
	assert.Contains(t, out, "trunc")
}

// spec §4.6.1: a set-of-interval literal folds its constant members into a
// bitmask, and `in` lowers to a shift-and-test sequence.
func TestSetOfIntervalBitmaskAndMembership(t *testing.T) {
	setTy := types.NewSetType(types.NewIntRange(big.NewInt(0), big.NewInt(15)))
	//
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"s"}, Type: resolvedType(setTy)},
			{Names: []string{"found"}, Type: nameType("boolean")},
		},
	}
	//
	lit := &ast.SetLiteral{Members: []ast.SetMember{
		{Single: intLit(2)},
		{RangeLo: intLit(4), RangeHi: intLit(6)},
	}}
	lit.Position = pos(1)
	//
	assignSet := &ast.Assignment{Target: &ast.NameAccess{Name: "s"}, Expr: lit}
	assignSet.Position = pos(1)
	//
	member := ast.NewBinaryOp(pos(2), ast.OpIn, intLit(5), load("s"))
	assignFound := &ast.Assignment{Target: &ast.NameAccess{Name: "found"}, Expr: member}
	assignFound.Position = pos(2)
	//
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{assignSet, assignFound})
	//
	out := compile(t, mod)
	//
	// bit 2 and bits 4..6 set: 0b1110100 = 116.
	assert.Contains(t, out, "i32 116")
	assert.Contains(t, out, "shl")
	assert.Contains(t, out, "and")
}

// spec §4.6.4 scenario 4: a nested procedure receives a scope-hook pointer
// carrying the address of every outer variable it references.
func TestNestedProcedureScopeHookCapture(t *testing.T) {
	inner := &ast.FunctionDecl{
		Name: "inner",
		Body: ast.NewStatementList(pos(2), []ast.Stmt{
			&ast.Assignment{
				Target: &ast.NameAccess{Name: "a"},
				Expr:   ast.NewBinaryOp(pos(2), ast.OpAdd, load("a"), intLit(1)),
			},
		}),
	}
	//
	outer := &ast.FunctionDecl{
		Name: "outer",
		VarDecls: []ast.VarDecl{
			{Names: []string{"a"}, Type: nameType("integer")},
		},
		Nested: []*ast.FunctionDecl{inner},
		Body: ast.NewStatementList(pos(1), []ast.Stmt{
			&ast.ExprStatement{Call: &ast.FunctionCall{Name: "inner"}},
		}),
	}
	//
	mod := &ast.Module{Name: "m", Functions: []*ast.FunctionDecl{outer}}
	//
	out := compile(t, mod)
	//
	assert.Contains(t, out, "alloca")
	require.NotNil(t, inner.Resolved)
	require.NotNil(t, inner.Resolved.ScopeHook)
	assert.Contains(t, out, "call m.inner(")
}

// spec §4.6.2: variant-record field access goes through the shared byte
// arena rather than a fixed offset.
func TestVariantRecordArmFieldAccess(t *testing.T) {
	intTy := types.NewIntType(true, 16)
	//
	intCase := types.NewRecordType("int_case")
	intCase.SetBody([]types.Field{{Name: "ival", Type: intTy, Index: 0}}, nil)
	//
	realCase := types.NewRecordType("real_case")
	realCase.SetBody([]types.Field{{Name: "rval", Type: types.TEMPREAL, Index: 0}}, nil)
	//
	rec := types.NewRecordType("tagged")
	variant := types.NewVariant(
		types.Field{Name: "kind", Type: intTy, Index: 0},
		[]*types.Record{intCase, realCase},
		map[string]int{"0": 0, "1": 1},
	)
	rec.SetBody(nil, variant)
	//
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"v"}, Type: resolvedType(rec)},
		},
	}
	//
	assign := &ast.Assignment{
		Target: &ast.FieldAccessNode{Record: &ast.NameAccess{Name: "v"}, Field: "ival"},
		Expr:   intLit(7),
	}
	assign.Position = pos(1)
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{assign})
	//
	out := compile(t, mod)
	//
	assert.Contains(t, out, "bitcast")
	assert.Contains(t, out, "getelementptr")
}

// spec §4.6.3: goto/label control flow lands at the same block whether
// reached by straight-line fallthrough or an explicit jump.
func TestGotoLabelControlFlow(t *testing.T) {
	mod := &ast.Module{
		Name:   "m",
		Labels: []string{"skip"},
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
		},
	}
	//
	gotoStmt := &ast.Goto{Label: "skip"}
	gotoStmt.Position = pos(1)
	//
	assign := &ast.Assignment{Target: &ast.NameAccess{Name: "i"}, Expr: intLit(1)}
	assign.Position = pos(2)
	//
	labeled := &ast.Labeled{Label: "skip", Statement: assign}
	labeled.Position = pos(3)
	//
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{gotoStmt, labeled})
	//
	out := compile(t, mod)
	//
	assert.Contains(t, out, "label.skip:")
	assert.Contains(t, out, "br label %label.skip")
}

// spec §4.6.3: a case arm's range label expands into one Switch arm per
// covered ordinal value.
func TestCaseRangeLabelFlattening(t *testing.T) {
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
			{Names: []string{"r"}, Type: nameType("integer")},
		},
	}
	//
	arm := &ast.CaseArm{
		Labels:    []ast.CaseLabel{{RangeLo: intLit(1), RangeHi: intLit(3)}},
		Statement: &ast.Assignment{Target: &ast.NameAccess{Name: "r"}, Expr: intLit(1)},
	}
	//
	caseStmt := &ast.Case{Selector: load("i"), Arms: []*ast.CaseArm{arm}}
	caseStmt.Position = pos(1)
	//
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{caseStmt})
	//
	out := compile(t, mod)
	//
	assert.Contains(t, out, "switch")
	// three individual arms for 1, 2 and 3, all branching to the same block.
	assert.Equal(t, 3, countOccurrences(out, "label %case.arm"))
}

func countOccurrences(haystack, needle string) int {
	count := 0
	//
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	//
	return count
}

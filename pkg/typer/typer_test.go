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
package typer_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tornblom/p86c/pkg/ast"
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

func load(name string) *ast.VarLoad {
	v := &ast.VarLoad{Target: &ast.NameAccess{Name: name}}
	v.Position = pos(1)
	return v
}

// scenario 1 of spec §8.3: `i := w + 1` with i: integer, w: word.
func TestIntegerPromotionScenario(t *testing.T) {
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
			{Names: []string{"w"}, Type: nameType("word")},
		},
	}
	//
	lit := &ast.IntLiteral{Value: 1}
	lit.Position = pos(1)
	//
	add := ast.NewBinaryOp(pos(1), ast.OpAdd, load("w"), lit)
	//
	assign := &ast.Assignment{Target: &ast.NameAccess{Name: "i"}, Expr: add}
	assign.Position = pos(1)
	//
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{assign})
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Empty(t, ty.Diagnostics())
	//
	assert.Equal(t, "int-s32[-2147483648..2147483647]", add.Type().String())
	//
	wrapped, ok := add.Left.(*ast.TypeConvert)
	require.True(t, ok)
	assert.Equal(t, "int-s32[-2147483648..2147483647]", wrapped.Type().String())
	//
	lconv, ok := add.Right.(*ast.TypeConvert)
	require.True(t, ok)
	assert.Equal(t, "int-s32[-2147483648..2147483647]", lconv.Type().String())
	//
	finalConv, ok := assign.Expr.(*ast.TypeConvert)
	require.True(t, ok)
	assert.True(t, finalConv.Warning)
	assert.Equal(t, "int-s16[-32768..32767]", finalConv.Type().String())
}

func TestUnknownSymbolRecordsDiagnostic(t *testing.T) {
	mod := &ast.Module{Name: "m"}
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{
		&ast.Assignment{Target: &ast.NameAccess{Name: "missing"}, Expr: &ast.IntLiteral{Value: 1}},
	})
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Len(t, ty.Diagnostics(), 1)
	assert.Contains(t, ty.Diagnostics()[0].Error(), "unknown symbol")
}

func TestDeferredTypeResolutionSelfReferentialPointer(t *testing.T) {
	recordExpr := &ast.RecordTypeExpr{
		Name: "node",
		Fields: []ast.RecordFieldExpr{
			{Name: "value", Type: nameType("integer")},
			{Name: "next", Type: &ast.PointerTypeExpr{Pointee: nameType("node")}},
		},
	}
	//
	mod := &ast.Module{
		Name:      "m",
		TypeDecls: []ast.TypeDecl{{Name: "node", Type: recordExpr}},
		VarDecls:  []ast.VarDecl{{Names: []string{"head"}, Type: nameType("node")}},
	}
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Empty(t, ty.Diagnostics())
	//
	rec, ok := mod.VarDecls[0].Resolved.(*types.Record)
	require.True(t, ok)
	//
	nextField, ok := rec.FieldByName("next")
	require.True(t, ok)
	//
	ptr, ok := nextField.Type.(*types.Pointer)
	require.True(t, ok)
	assert.Same(t, rec, ptr.Pointee)
}

func TestForLoopBoundsDowncastToLoopVariable(t *testing.T) {
	mod := &ast.Module{
		Name: "m",
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
		},
	}
	//
	startLit := &ast.IntLiteral{Value: 1}
	startLit.Position = pos(1)
	endLit := &ast.IntLiteral{Value: 10}
	endLit.Position = pos(1)
	//
	forStmt := &ast.For{
		Var:       &ast.NameAccess{Name: "i"},
		Start:     startLit,
		End:       endLit,
		Direction: ast.LoopTo,
		Body:      &ast.Null{},
	}
	forStmt.Position = pos(1)
	//
	mod.Main = ast.NewStatementList(pos(1), []ast.Stmt{forStmt})
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Empty(t, ty.Diagnostics())
	assert.Equal(t, types.NewIntType(true, 16).String(), forStmt.Start.Type().String())
}

func TestNestedProcedureReceivesScopeHook(t *testing.T) {
	inner := &ast.FunctionDecl{
		Name: "inner",
		Body: ast.NewStatementList(pos(2), []ast.Stmt{
			&ast.Assignment{
				Target: &ast.NameAccess{Name: "a"},
				Expr:   ast.NewBinaryOp(pos(2), ast.OpAdd, load("a"), &ast.IntLiteral{Value: 1}),
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
		Body:   ast.NewStatementList(pos(1), nil),
	}
	//
	mod := &ast.Module{Name: "m", Functions: []*ast.FunctionDecl{outer}}
	//
	ty := typer.New(testLog())
	ty.TypeModule(mod)
	require.Empty(t, ty.Diagnostics())
	//
	require.NotNil(t, inner.Resolved)
	require.NotNil(t, inner.Resolved.ScopeHook)
	//
	_, found := inner.Resolved.ScopeHook.FieldByName("a")
	assert.True(t, found)
}

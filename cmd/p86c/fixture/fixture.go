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

// Package fixture supplies a small built-in set of Pascal-86 programs for
// the driver to compile. The lexer/parser/preprocessor that turns real
// Pascal-86 source text into an untyped pkg/ast.Module is a separate,
// external component (the typed-AST boundary is this repository's actual
// interface); this package stands in for that component with a few
// hand-built trees covering the constructs the rest of the pipeline cares
// about, keyed by the source file name a caller would otherwise have
// parsed.
package fixture

import (
	"fmt"

	"github.com/tornblom/p86c/pkg/ast"
)

// Program bundles a module's original source text (kept only so the driver
// has real bytes to checksum for the mutation report's md5 field) with a
// constructor that rebuilds a fresh, untyped copy of its AST on every call.
type Program struct {
	Source string
	Build  func() *ast.Module
}

// byName lists every built-in program, keyed by the base file name a caller
// passes on the command line.
var byName = map[string]Program{
	"arith.p86":  {Source: arithSource, Build: buildArith},
	"sets.p86":   {Source: setsSource, Build: buildSets},
	"nested.p86": {Source: nestedSource, Build: buildNested},
}

// Lookup returns the named built-in program, or an error listing the known
// names if it isn't one of them.
func Lookup(name string) (Program, error) {
	if p, ok := byName[name]; ok {
		return p, nil
	}
	//
	return Program{}, fmt.Errorf("unknown input %q (built-in programs: arith.p86, sets.p86, nested.p86)", name)
}

func pos(line int) ast.Position { return ast.Position{File: "arith.p86", Line: line} }

func nameType(name string) *ast.TypeName {
	n := &ast.TypeName{Name: name}
	n.Position = ast.Position{Line: 1}
	return n
}

func load(name string) *ast.VarLoad {
	v := &ast.VarLoad{Target: &ast.NameAccess{Name: name}}
	return v
}

func intLit(v int64) *ast.IntLiteral {
	return &ast.IntLiteral{Value: v}
}

const arithSource = `module arith;
var
  i: integer;
  w: word;
begin
  w := 41;
  i := w + 1;
  writeln(i)
end.
`

// buildArith exercises integer promotion/narrowing (spec §4.6.1, §8.3
// scenario 1): assigning a word-typed expression to an integer variable
// forces a widen-add-narrow instruction sequence.
func buildArith() *ast.Module {
	mod := &ast.Module{
		Name: "arith",
		VarDecls: []ast.VarDecl{
			{Names: []string{"i"}, Type: nameType("integer")},
			{Names: []string{"w"}, Type: nameType("word")},
		},
	}
	//
	assignW := &ast.Assignment{Target: &ast.NameAccess{Name: "w"}, Expr: intLit(41)}
	assignW.Position = pos(6)
	//
	add := ast.NewBinaryOp(pos(7), ast.OpAdd, load("w"), intLit(1))
	assignI := &ast.Assignment{Target: &ast.NameAccess{Name: "i"}, Expr: add}
	assignI.Position = pos(7)
	//
	write := &ast.ExprStatement{Call: &ast.FunctionCall{Name: "writeln", Args: []*ast.Argument{{Expr: load("i")}}}}
	write.Position = pos(8)
	//
	mod.Main = ast.NewStatementList(pos(5), []ast.Stmt{assignW, assignI, write})
	//
	return mod
}

const setsSource = `module sets;
var
  s: set of 0..15;
  found: boolean;
begin
  s := [2, 4..6];
  found := 5 in s
end.
`

// buildSets exercises set-of-interval bitmask folding and membership
// lowering (spec §4.6.1).
func buildSets() *ast.Module {
	mod := &ast.Module{
		Name: "sets",
		VarDecls: []ast.VarDecl{
			{Names: []string{"s"}, Type: &ast.SetTypeExpr{Element: &ast.RangeType{Lo: intLit(0), Hi: intLit(15)}}},
			{Names: []string{"found"}, Type: nameType("boolean")},
		},
	}
	//
	lit := &ast.SetLiteral{Members: []ast.SetMember{
		{Single: intLit(2)},
		{RangeLo: intLit(4), RangeHi: intLit(6)},
	}}
	lit.Position = pos(6)
	//
	assignS := &ast.Assignment{Target: &ast.NameAccess{Name: "s"}, Expr: lit}
	assignS.Position = pos(6)
	//
	member := ast.NewBinaryOp(pos(7), ast.OpIn, intLit(5), load("s"))
	assignFound := &ast.Assignment{Target: &ast.NameAccess{Name: "found"}, Expr: member}
	assignFound.Position = pos(7)
	//
	mod.Main = ast.NewStatementList(pos(5), []ast.Stmt{assignS, assignFound})
	//
	return mod
}

const nestedSource = `module nested;
var
  a: integer;

  procedure bump;
  begin
    a := a + 1
  end;

begin
  a := 0;
  bump
end.
`

// buildNested exercises nested-procedure scope-hook capture (spec §4.6.4
// scenario 4): bump closes over its enclosing module's "a" by address.
func buildNested() *ast.Module {
	inner := &ast.FunctionDecl{
		Name: "bump",
		Body: ast.NewStatementList(pos(7), []ast.Stmt{
			&ast.Assignment{
				Target: &ast.NameAccess{Name: "a"},
				Expr:   ast.NewBinaryOp(pos(7), ast.OpAdd, load("a"), intLit(1)),
			},
		}),
	}
	inner.Position = pos(5)
	//
	mod := &ast.Module{
		Name: "nested",
		VarDecls: []ast.VarDecl{
			{Names: []string{"a"}, Type: nameType("integer")},
		},
		Functions: []*ast.FunctionDecl{inner},
	}
	//
	assignZero := &ast.Assignment{Target: &ast.NameAccess{Name: "a"}, Expr: intLit(0)}
	assignZero.Position = pos(10)
	//
	call := &ast.ExprStatement{Call: &ast.FunctionCall{Name: "bump"}}
	call.Position = pos(11)
	//
	mod.Main = ast.NewStatementList(pos(9), []ast.Stmt{assignZero, call})
	//
	return mod
}

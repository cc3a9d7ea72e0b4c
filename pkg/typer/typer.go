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

// Package typer implements the typer pass (spec §4.3): it walks the untyped
// AST produced by the parser, attaches a types.Type to every node, installs
// symbols/typedefs/functions into a symtab.Table, inserts explicit
// TypeConvert wrappers wherever a binary operation or assignment requires
// one, and resolves Deferred type placeholders once an enclosing `type`
// block has been fully processed.
package typer

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/symtab"
	"github.com/tornblom/p86c/pkg/types"
)

// Typer holds the state threaded through one compilation unit's type pass.
type Typer struct {
	table  *symtab.Table
	diags  []*diag.Diagnostic
	module string
	log    *logrus.Entry
}

// New constructs a Typer with a fresh global scope containing the built-in
// typedefs, constants and function signatures (spec §4.3).
func New(log *logrus.Entry) *Typer {
	t := &Typer{table: symtab.NewTable(), log: log}
	t.table.EnterScope()
	installBuiltins(t.table)
	//
	return t
}

func (t *Typer) fail(pos ast.Position, err error) {
	d := diag.New(diag.Position{File: pos.File, Line: pos.Line}, err)
	t.diags = append(t.diags, d)
	//
	if t.log != nil {
		t.log.WithField("module", t.module).Warn(d.Error())
	}
}

func (t *Typer) failf(pos ast.Position, base error, format string, args ...any) {
	t.fail(pos, fmt.Errorf(format+": %w", append(args, base)...))
}

// TypeProgram types every module in the program independently; a typing
// error in one module is recorded but does not prevent the remaining
// modules from being processed (spec §7).
func TypeProgram(prog *ast.Program, log *logrus.Entry) map[string][]*diag.Diagnostic {
	result := make(map[string][]*diag.Diagnostic)
	//
	for _, mod := range prog.Modules {
		t := New(log)
		t.TypeModule(mod)
		result[mod.Name] = t.diags
	}
	//
	return result
}

// TypeModule types a single module in place, returning the Typer so callers
// (tests, and the call-by-reference fixup pass) can inspect its symbol
// table and diagnostics afterwards.
func (t *Typer) TypeModule(mod *ast.Module) *Typer {
	t.module = mod.Name
	t.table.EnterScope()
	defer t.table.ExitScope()
	//
	for _, l := range mod.Labels {
		t.table.InstallGoto(l, nil)
	}
	//
	t.typeBlock(mod.TypeDecls, mod.ConstDecls, mod.VarDecls)
	//
	// Function signatures must all be visible to every function body
	// (mutual recursion, forward calls), so install all signatures first.
	for _, fn := range mod.Functions {
		t.declareFunctionSignature(mod.Name, fn, 0, nil)
	}
	//
	for _, fn := range mod.Functions {
		t.typeFunctionBody(fn)
	}
	//
	if mod.Main != nil {
		t.typeStmt(mod.Main)
	}
	//
	return t
}

// Diagnostics returns every diagnostic recorded while typing.
func (t *Typer) Diagnostics() []*diag.Diagnostic { return t.diags }

// Table returns the underlying symbol table, used by the call-by-reference
// fixup pass to re-resolve function signatures by name.
func (t *Typer) Table() *symtab.Table { return t.table }

// typeBlock installs a type block's typedefs (with deferred-name support),
// then its constants, then its variables, in that order (spec §4.2.5,
// §4.3).
func (t *Typer) typeBlock(typeDecls []ast.TypeDecl, constDecls []ast.ConstDecl, varDecls []ast.VarDecl) {
	t.resolveTypeBlock(typeDecls)
	//
	for i := range constDecls {
		c := &constDecls[i]
		//
		if s, ok := c.Value.(*ast.StringLiteral); ok {
			ty := types.NewStringType(uint(len(s.Value)))
			c.Resolved = ty
			c.ResolvedString = s.Value
			t.table.InstallStringConst(c.Name, ty, s.Value)
			continue
		}
		//
		ty, val := t.evalConst(c.Value)
		if ty == nil {
			continue
		}
		//
		c.Resolved = ty
		c.ResolvedValue = val
		t.table.InstallConst(c.Name, ty, val)
	}
	//
	for _, v := range varDecls {
		ty := t.resolveTypeExprFinal(v.Type)
		v.Resolved = ty
		//
		for _, name := range v.Names {
			t.table.InstallSymbol(name, ty, nil)
		}
	}
}

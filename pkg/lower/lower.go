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

// Package lower implements the lowering pass (spec §4.6): it turns one
// already-typed, call-by-reference-fixed-up, (optionally) mutated
// pkg/ast.Module into a pkg/llir.Module. Every mutable location becomes a
// stack slot reached via Alloca/Load/Store; control flow becomes explicit
// basic blocks; records, variants and sets get their bit-level
// representations; nested procedures receive a captured-pointer scope hook
// argument (§4.6.4).
//
// Lowering owns its own pkg/symtab.Table, re-populated as declarations are
// walked, whose Symbol.Handle now holds the LLIR storage address (or, for a
// constant, nothing — constant references are inlined directly). This
// mirrors how pkg/typer threads the table through the typing pass (spec
// §4.1, §5): each pass owns the table exclusively while it runs.
package lower

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/runtime"
	"github.com/tornblom/p86c/pkg/symtab"
	"github.com/tornblom/p86c/pkg/types"
)

// Lowering holds the state threaded through lowering one module. A fresh
// Lowering must be constructed per pkg/ast.Module, matching the "single
// mutable pass state, owned exclusively and sequentially" model of spec §5.
type Lowering struct {
	table *symtab.Table
	mod   *llir.Module
	rt    *runtime.Globals
	log   *logrus.Entry

	// b is the current function's instruction builder; nil at module
	// scope, between function bodies.
	b *llir.Builder
	// gotoBlocks maps a label name to its pre-created basic block within
	// the function currently being lowered (spec §4.6.3).
	gotoBlocks map[string]*llir.BasicBlock
	fn         *ast.FunctionDecl
	fnType     *types.Function
}

// New constructs a Lowering that emits well-known globals and main/ctor
// machinery through rt (see pkg/runtime); rt may be nil when lowering a
// module in isolation (e.g. unit tests) that does not need the mutant
// runtime shim wired in.
func New(rt *runtime.Globals, log *logrus.Entry) *Lowering {
	return &Lowering{table: symtab.NewTable(), rt: rt, log: log}
}

func (l *Lowering) fail(pos ast.Position, err error) error {
	d := diag.New(diag.Position{File: pos.File, Line: pos.Line}, err)
	//
	if l.log != nil {
		l.log.Error(d.Error())
	}
	//
	return d
}

// LowerModule lowers one typed module into an LLIR module. Errors abort
// lowering of this module only; other modules in the same compilation unit
// continue independently (spec §7).
func (l *Lowering) LowerModule(mod *ast.Module) (*llir.Module, error) {
	l.mod = llir.NewModule(mod.Name)
	l.table.EnterScope()
	defer l.table.ExitScope()
	//
	for _, l2 := range mod.Labels {
		l.table.InstallGoto(l2, nil)
	}
	//
	for i := range mod.ConstDecls {
		l.lowerConstDecl(&mod.ConstDecls[i])
	}
	//
	for i := range mod.VarDecls {
		if err := l.lowerGlobalVarDecl(&mod.VarDecls[i]); err != nil {
			return nil, err
		}
	}
	//
	// Function signatures are installed before any body is lowered so
	// mutually recursive and forward calls resolve (mirrors typer.TypeModule).
	for _, fn := range mod.Functions {
		l.table.InstallFunction(fn.Name, fn.Resolved)
	}
	//
	for _, fn := range mod.Functions {
		if err := l.lowerFunction(mod.Name, fn); err != nil {
			return nil, err
		}
	}
	//
	if mod.Main != nil {
		entryName := l.mod.FunctionName("entry")
		fn := llir.NewFunction(entryName, nil, nil, llir.Private)
		l.b = llir.NewBuilder(fn)
		l.fn = nil
		l.fnType = nil
		l.gotoBlocks = l.precreateLabelBlocks(mod.Main)
		//
		if err := l.lowerStmt(mod.Main); err != nil {
			return nil, err
		}
		//
		if !l.b.Block.IsTerminated() {
			l.b.Terminate(&llir.Ret{})
		}
		//
		l.mod.AddFunction(fn)
		//
		if l.rt != nil {
			l.mod.AddFunction(runtime.BuildMain(l.rt, entryName))
		}
	}
	//
	return l.mod, nil
}

// lowerConstDecl installs a module-level constant into the lowering scope
// as an inlinable value; constants never get a storage slot (spec §4.6.6:
// "constants become internal global string literals ... or inlined constant
// values").
func (l *Lowering) lowerConstDecl(c *ast.ConstDecl) {
	if c.Resolved == nil {
		return
	}
	//
	if _, ok := c.Resolved.(*types.String); ok {
		l.table.InstallStringConst(c.Name, c.Resolved, c.ResolvedString)
		return
	}
	//
	l.table.InstallConst(c.Name, c.Resolved, c.ResolvedValue)
}

// lowerGlobalVarDecl emits one global per declared name, `undef`
// initialized, with linkage following the declaring section (spec §4.6.6).
func (l *Lowering) lowerGlobalVarDecl(v *ast.VarDecl) error {
	if v.Resolved == nil {
		return l.fail(v.Pos(), diag.ErrUnsupportedConversion)
	}
	//
	linkage := llir.Private
	if v.Visibility == ast.Public {
		linkage = llir.External
	}
	//
	for _, name := range v.Names {
		qualified := l.mod.Id + "." + name
		g := l.mod.AddGlobal(&llir.GlobalVar{
			Name:    qualified,
			Type:    v.Resolved,
			Init:    llir.Undef{Type: v.Resolved},
			Linkage: linkage,
		})
		//
		addr := llir.Global{Name: g.Name, Type: v.Resolved}
		l.table.InstallSymbol(name, v.Resolved, addr)
	}
	//
	return nil
}

// lowerFunction lowers one top-level or nested function/procedure
// declaration and everything nested inside it.
func (l *Lowering) lowerFunction(module string, fn *ast.FunctionDecl) error {
	if fn.Resolved == nil {
		return l.fail(fn.Pos(), diag.ErrUnsupportedConversion)
	}
	//
	irFn, err := l.buildFunctionSkeleton(fn)
	if err != nil {
		return err
	}
	//
	l.mod.AddFunction(irFn)
	//
	if fn.Body == nil {
		// Forward declaration only: no body to lower.
		return nil
	}
	//
	prevB, prevFn, prevFnType, prevGotos := l.b, l.fn, l.fnType, l.gotoBlocks
	l.table.EnterScope()
	//
	l.b = llir.NewBuilder(irFn)
	l.fn = fn
	l.fnType = fn.Resolved
	l.gotoBlocks = l.precreateLabelBlocks(fn.Body)
	//
	if err := l.installParams(fn, irFn); err != nil {
		l.table.ExitScope()
		l.b, l.fn, l.fnType, l.gotoBlocks = prevB, prevFn, prevFnType, prevGotos
		return err
	}
	//
	for i := range fn.VarDecls {
		if err := l.declareLocal(&fn.VarDecls[i]); err != nil {
			l.table.ExitScope()
			l.b, l.fn, l.fnType, l.gotoBlocks = prevB, prevFn, prevFnType, prevGotos
			return err
		}
	}
	//
	for i := range fn.ConstDecls {
		l.lowerConstDecl(&fn.ConstDecls[i])
	}
	//
	for _, l2 := range fn.Labels {
		l.table.InstallGoto(l2, nil)
	}
	//
	for _, nested := range fn.Nested {
		l.table.InstallFunction(nested.Name, nested.Resolved)
	}
	//
	if err := l.lowerStmt(fn.Body); err != nil {
		l.table.ExitScope()
		l.b, l.fn, l.fnType, l.gotoBlocks = prevB, prevFn, prevFnType, prevGotos
		return err
	}
	//
	if !l.b.Block.IsTerminated() {
		l.emitImplicitReturn(fn)
	}
	//
	l.table.ExitScope()
	//
	for _, nested := range fn.Nested {
		if err := l.lowerFunction(module, nested); err != nil {
			l.b, l.fn, l.fnType, l.gotoBlocks = prevB, prevFn, prevFnType, prevGotos
			return err
		}
	}
	//
	l.b, l.fn, l.fnType, l.gotoBlocks = prevB, prevFn, prevFnType, prevGotos
	//
	return nil
}

// buildFunctionSkeleton allocates the llir.Function with its parameter list
// (including a trailing scope-hook parameter for nested procedures, spec
// §4.6.4) but no blocks yet.
func (l *Lowering) buildFunctionSkeleton(fn *ast.FunctionDecl) (*llir.Function, error) {
	ft := fn.Resolved
	//
	var params []llir.Param
	//
	for _, p := range ft.Params {
		params = append(params, llir.Param{Name: p.Name, Type: p.Type})
	}
	//
	name := l.mod.FunctionName(fn.Name)
	linkage := llir.Private
	if fn.Visibility == ast.Public {
		linkage = llir.External
	}
	//
	var ret types.Type
	if !ft.IsProcedure() {
		ret = ft.Ret
	}
	//
	irFn := llir.NewFunction(name, params, ret, linkage)
	//
	if ft.IsNested() {
		hookTy := types.NewPointerType(hookStructType(ft.ScopeHook))
		irFn.ScopeHookParam = &llir.Param{Name: "hook", Type: hookTy}
	}
	//
	return irFn, nil
}

// installParams allocates a stack slot for every by-value parameter (copying
// the incoming argument in) and installs by-reference parameters directly as
// the pointer they arrive as. Nested functions additionally unpack their
// scope-hook argument into the local scope so the body can reference outer
// names unchanged (spec §4.6.4, scenario 4).
func (l *Lowering) installParams(fn *ast.FunctionDecl, irFn *llir.Function) error {
	for _, p := range irFn.Params {
		if ref, ok := p.Type.(*types.Reference); ok {
			l.table.InstallSymbol(p.Name, ref.Referee, llir.Register{Name: p.Name, Type: p.Type})
			continue
		}
		//
		slot := l.b.EmitValue(&llir.Alloca{Dest: l.b.NewRegister(types.NewPointerType(p.Type)), Elem: p.Type})
		l.b.Emit(&llir.Store{Addr: slot, Val: llir.Register{Name: p.Name, Type: p.Type}})
		l.table.InstallSymbol(p.Name, p.Type, slot)
	}
	//
	if irFn.ScopeHookParam != nil {
		hookReg := llir.Register{Name: irFn.ScopeHookParam.Name, Type: irFn.ScopeHookParam.Type}
		//
		for _, field := range fn.Resolved.ScopeHook.Fields {
			ptrTy := types.NewPointerType(field.Type)
			slotAddr := l.b.EmitValue(&llir.GEP{Dest: l.b.NewRegister(types.NewPointerType(ptrTy)), Base: hookReg, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(int(field.Index))}})
			captured := l.b.EmitValue(&llir.Load{Dest: l.b.NewRegister(ptrTy), Addr: slotAddr})
			l.table.InstallSymbol(field.Name, field.Type, captured)
		}
	}
	//
	return nil
}

// declareLocal allocates stack storage for one local variable declaration.
func (l *Lowering) declareLocal(v *ast.VarDecl) error {
	if v.Resolved == nil {
		return l.fail(v.Pos(), diag.ErrUnsupportedConversion)
	}
	//
	for _, name := range v.Names {
		slot := l.b.EmitValue(&llir.Alloca{Dest: l.b.NewRegister(types.NewPointerType(v.Resolved)), Elem: v.Resolved})
		l.table.InstallSymbol(name, v.Resolved, slot)
	}
	//
	return nil
}

// emitImplicitReturn terminates a function body that fell off the end
// without an explicit assignment-to-function-name return convention; since
// Pascal-86 functions return via assigning their own name, the return value
// is read back from that slot.
func (l *Lowering) emitImplicitReturn(fn *ast.FunctionDecl) {
	if fn.IsProcedure() {
		l.b.Terminate(&llir.Ret{})
		return
	}
	//
	sym, err := l.table.FindSymbol(fn.Name)
	if err != nil {
		// The function's own name has no slot to read back: emit a bare
		// ret without a value.
		l.b.Terminate(&llir.Ret{})
		return
	}
	//
	addr, ok := sym.Handle.(llir.Value)
	if !ok {
		l.b.Terminate(&llir.Ret{})
		return
	}
	//
	val := l.b.EmitValue(&llir.Load{Dest: l.b.NewRegister(sym.Type), Addr: addr})
	l.b.Terminate(&llir.Ret{Val: val, HasVal: true})
}

// hookStructType builds the IR-level struct layout of a ScopeHook: one
// pointer-to-captured-type field per entry, in Index order (spec §4.6.4).
func hookStructType(hook *types.ScopeHook) *types.Record {
	fields := make([]types.Field, len(hook.Fields))
	//
	for i, f := range hook.Fields {
		fields[i] = types.Field{Name: f.Name, Type: types.NewPointerType(f.Type), Index: f.Index}
	}
	//
	rec := types.NewRecordType(hook.Name)
	rec.SetBody(fields, nil)
	//
	return rec
}

// precreateLabelBlocks walks body collecting every Labeled statement and
// pre-creates its target block (already attached to the function being
// built, just out of textual order), so a Goto reached before its label is
// typed can still branch forward to it (spec §4.6.3).
func (l *Lowering) precreateLabelBlocks(body ast.Stmt) map[string]*llir.BasicBlock {
	blocks := make(map[string]*llir.BasicBlock)
	l.collectLabels(body, blocks)
	return blocks
}

func (l *Lowering) collectLabels(s ast.Stmt, out map[string]*llir.BasicBlock) {
	switch n := s.(type) {
	case *ast.StatementList:
		for _, item := range n.Items {
			l.collectLabels(item, out)
		}
	case *ast.Labeled:
		out[n.Label] = l.b.Fn.AddBlock(fmt.Sprintf("label.%s", n.Label))
		l.collectLabels(n.Statement, out)
	case *ast.If:
		l.collectLabels(n.Then, out)
		if n.Else != nil {
			l.collectLabels(n.Else, out)
		}
	case *ast.While:
		l.collectLabels(n.Body, out)
	case *ast.Repeat:
		l.collectLabels(n.Body, out)
	case *ast.For:
		l.collectLabels(n.Body, out)
	case *ast.Case:
		for _, arm := range n.Arms {
			l.collectLabels(arm.Statement, out)
		}
		if n.Otherwise != nil {
			l.collectLabels(n.Otherwise, out)
		}
	case *ast.With:
		l.collectLabels(n.Body, out)
	}
}

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
package typer

import (
	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/types"
)

// resolveTypeBlock resolves every TypeDecl in one `type` block, supporting
// forward references to names defined later in the same block via
// types.Deferred placeholders (spec §4.2.5).  Resolution runs in three
// stages: install a Deferred placeholder for every name so self- and
// mutually-recursive references find something bound; resolve each body
// against that placeholder environment; then iterate substitution until no
// Deferred reference into this block remains (or the block's own size is
// exhausted, at which point any surviving Deferred is a genuinely unknown
// type name).
func (t *Typer) resolveTypeBlock(decls []ast.TypeDecl) {
	if len(decls) == 0 {
		return
	}
	//
	for _, d := range decls {
		t.table.InstallTypedef(d.Name, &types.Deferred{Name: d.Name})
	}
	//
	raw := make(map[string]types.Type, len(decls))
	//
	for _, d := range decls {
		raw[d.Name] = t.resolveTypeExpr(d.Type)
	}
	//
	for i := 0; i < len(decls)+1; i++ {
		changed := false
		//
		for _, d := range decls {
			patched := patchDeferred(raw[d.Name], raw, map[any]bool{})
			if patched != raw[d.Name] {
				changed = true
			}
			//
			raw[d.Name] = patched
		}
		//
		if !changed {
			break
		}
	}
	//
	for _, d := range decls {
		if containsUnresolvedDeferred(raw[d.Name], map[any]bool{}) {
			t.fail(d.Pos(), diag.ErrUnknownTypedef)
		}
		//
		t.table.InstallTypedef(d.Name, raw[d.Name])
	}
}

// patchDeferred substitutes every Deferred reference into env, mutating
// composite containers in place (so other references to the same pointer
// identity observe the fix) and returning the substituted value for the
// top-level case where there is no container to mutate.
func patchDeferred(t types.Type, env map[string]types.Type, seen map[any]bool) types.Type {
	switch v := t.(type) {
	case *types.Deferred:
		if resolved, ok := env[v.Name]; ok {
			return resolved
		}
		//
		return v
	case *types.Pointer:
		if seen[v] {
			return v
		}
		//
		seen[v] = true
		if v.Pointee != nil {
			v.Pointee = patchDeferred(v.Pointee, env, seen)
		}
		//
		return v
	case *types.Reference:
		if seen[v] {
			return v
		}
		//
		seen[v] = true
		v.Referee = patchDeferred(v.Referee, env, seen)
		//
		return v
	case *types.Array:
		if seen[v] {
			return v
		}
		//
		seen[v] = true
		v.Element = patchDeferred(v.Element, env, seen)
		//
		return v
	case *types.Set:
		if seen[v] {
			return v
		}
		//
		seen[v] = true
		v.Element = patchDeferred(v.Element, env, seen)
		//
		return v
	case *types.Record:
		if seen[v] {
			return v
		}
		//
		seen[v] = true
		//
		for i := range v.Fields {
			v.Fields[i].Type = patchDeferred(v.Fields[i].Type, env, seen)
		}
		//
		if v.Variant != nil {
			v.Variant.Selector.Type = patchDeferred(v.Variant.Selector.Type, env, seen)
			//
			for _, c := range v.Variant.Cases {
				patchDeferred(c, env, seen)
			}
		}
		//
		return v
	default:
		return t
	}
}

func containsUnresolvedDeferred(t types.Type, seen map[any]bool) bool {
	switch v := t.(type) {
	case *types.Deferred:
		return true
	case *types.Pointer:
		if seen[v] || v.Pointee == nil {
			return false
		}
		//
		seen[v] = true
		return containsUnresolvedDeferred(v.Pointee, seen)
	case *types.Reference:
		if seen[v] {
			return false
		}
		//
		seen[v] = true
		return containsUnresolvedDeferred(v.Referee, seen)
	case *types.Array:
		if seen[v] {
			return false
		}
		//
		seen[v] = true
		return containsUnresolvedDeferred(v.Element, seen)
	case *types.Set:
		if seen[v] {
			return false
		}
		//
		seen[v] = true
		return containsUnresolvedDeferred(v.Element, seen)
	case *types.Record:
		if seen[v] {
			return false
		}
		//
		seen[v] = true
		//
		for _, f := range v.Fields {
			if containsUnresolvedDeferred(f.Type, seen) {
				return true
			}
		}
		//
		if v.Variant != nil {
			for _, c := range v.Variant.Cases {
				if containsUnresolvedDeferred(c, seen) {
					return true
				}
			}
		}
		//
		return false
	default:
		return false
	}
}

// resolveTypeExpr resolves one source-level type expression against the
// current scope, without any deferred patching: callers outside a `type`
// block (variable declarations, parameter lists) use resolveTypeExprFinal
// instead, which additionally verifies no Deferred placeholder survived.
func (t *Typer) resolveTypeExpr(te ast.TypeExpr) types.Type {
	switch n := te.(type) {
	case *ast.ResolvedLiteral:
		return n.Resolved
	case *ast.TypeName:
		if ty, err := t.table.FindTypedef(n.Name); err == nil {
			return ty
		}
		//
		t.fail(n.Pos(), diag.ErrUnknownTypedef)
		return types.ANY
	case *ast.RangeType:
		return t.resolveRangeType(n)
	case *ast.ArrayTypeExpr:
		idx := t.resolveTypeExpr(n.Index)
		elem := t.resolveTypeExpr(n.Element)
		rng := ordinalRange(idx)
		//
		if rng == nil {
			t.fail(n.Pos(), diag.ErrIllegalRangeType)
			rng = types.NewIntRange(bigZero(), bigZero())
		}
		//
		return types.NewArrayType(elem, rng)
	case *ast.StringTypeExpr:
		_, v := t.evalConst(n.Length)
		if v == nil {
			t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
			return types.NewStringType(0)
		}
		//
		return types.NewStringType(uint(v.Int64()))
	case *ast.SetTypeExpr:
		return types.NewSetType(t.resolveTypeExpr(n.Element))
	case *ast.EnumTypeExpr:
		return types.NewEnumType(n.Names)
	case *ast.PointerTypeExpr:
		return types.NewPointerType(t.resolveTypeExpr(n.Pointee))
	case *ast.FileTypeExpr:
		return &types.File{Component: t.resolveTypeExpr(n.Component)}
	case *ast.RecordTypeExpr:
		return t.resolveRecordType(n)
	default:
		t.fail(te.Pos(), diag.ErrUnknownTypedef)
		return types.ANY
	}
}

// resolveTypeExprFinal resolves te and reports an error if any Deferred
// placeholder survives (meaning the name was never defined anywhere in
// scope).
func (t *Typer) resolveTypeExprFinal(te ast.TypeExpr) types.Type {
	ty := t.resolveTypeExpr(te)
	if containsUnresolvedDeferred(ty, map[any]bool{}) {
		t.fail(te.Pos(), diag.ErrUnknownTypedef)
	}
	//
	return ty
}

func (t *Typer) resolveRangeType(n *ast.RangeType) types.Type {
	loTy, lo := t.evalConst(n.Lo)
	hiTy, hi := t.evalConst(n.Hi)
	//
	if lo == nil || hi == nil {
		t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
		return types.NewIntRange(bigZero(), bigZero())
	}
	//
	if _, ok := loTy.(*types.Char); ok {
		return types.NewCharRange(byte(lo.Int64()), byte(hi.Int64()))
	}
	//
	if _, ok := hiTy.(*types.Char); ok {
		return types.NewCharRange(byte(lo.Int64()), byte(hi.Int64()))
	}
	//
	return types.NewIntRange(lo, hi)
}

// ordinalRange extracts the index bounds of an array's index type, which
// must be an ordinal (Int, IntRange, Enum, Char, CharRange or Bool).
func ordinalRange(t types.Type) *types.IntRange {
	switch v := t.(type) {
	case *types.IntRange:
		return v
	case *types.Int:
		return types.NewIntRange(v.Lo, v.Hi)
	case *types.CharRange:
		return types.NewIntRange(bigInt(int64(v.Lo)), bigInt(int64(v.Hi)))
	case *types.Char:
		return types.NewIntRange(bigZero(), bigInt(255))
	case *types.Enum:
		return types.NewIntRange(v.Lo(), v.Hi())
	case types.Bool:
		return types.NewIntRange(bigZero(), bigInt(1))
	default:
		return nil
	}
}

func (t *Typer) resolveRecordType(n *ast.RecordTypeExpr) types.Type {
	rec := types.NewRecordType(recordName(n, t))
	//
	fields := make([]types.Field, len(n.Fields))
	for i, f := range n.Fields {
		fields[i] = types.Field{Name: f.Name, Type: t.resolveTypeExpr(f.Type), Index: uint(i)}
	}
	//
	var variant *types.Variant
	//
	if n.Variant != nil {
		selType := t.resolveTypeExpr(n.Variant.SelectorType)
		sel := types.Field{Name: n.Variant.SelectorName, Type: selType, Index: uint(len(fields))}
		//
		cases := make([]*types.Record, len(n.Variant.Cases))
		labels := make(map[string]int, len(n.Variant.Cases))
		//
		for i, c := range n.Variant.Cases {
			caseFields := make([]types.Field, len(c.Fields))
			for j, f := range c.Fields {
				caseFields[j] = types.Field{Name: f.Name, Type: t.resolveTypeExpr(f.Type), Index: uint(j)}
			}
			//
			caseRec := types.NewRecordType(t.table.Label(rec.Name + ".case"))
			caseRec.SetBody(caseFields, nil)
			cases[i] = caseRec
			//
			for _, lbl := range c.Labels {
				_, v := t.evalConst(lbl)
				if v != nil {
					labels[v.String()] = i
				}
			}
		}
		//
		variant = types.NewVariant(sel, cases, labels)
	}
	//
	rec.SetBody(fields, variant)
	//
	return rec
}

func recordName(n *ast.RecordTypeExpr, t *Typer) string {
	if n.Name != "" {
		return n.Name
	}
	//
	return t.table.Label("record")
}

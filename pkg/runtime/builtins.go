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
package runtime

import (
	"math/big"

	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/types"
)

// Selector builds the five mutant-selection built-ins of §4.5.2:
// getmutationid, getmutationmod, getmutationcount, setmutation and
// setmutationid, each a small function over the well-known globals.
func Selector(g *Globals) []*llir.Function {
	return []*llir.Function{
		buildGetMutationID(g),
		buildGetMutationMod(g),
		buildGetMutationCount(g),
		buildSetMutation(g),
		buildSetMutationID(g),
	}
}

func buildGetMutationID(g *Globals) *llir.Function {
	i32 := types.NewIntType(true, 32)
	fn := llir.NewFunction(llir.BuiltinName("builtin", "getmutationid"), nil, i32, llir.External)
	b := llir.NewBuilder(fn)
	val := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: llir.Global{Name: g.MutantID.Name, Type: i32}})
	b.Terminate(&llir.Ret{Val: val, HasVal: true})
	//
	return fn
}

func buildGetMutationMod(g *Globals) *llir.Function {
	charPtr := types.NewPointerType(types.CHAR)
	fn := llir.NewFunction(llir.BuiltinName("builtin", "getmutationmod"), nil, charPtr, llir.External)
	b := llir.NewBuilder(fn)
	val := b.EmitValue(&llir.Load{Dest: b.NewRegister(charPtr), Addr: llir.Global{Name: g.MutantMod.Name, Type: charPtr}})
	b.Terminate(&llir.Ret{Val: val, HasVal: true})
	//
	return fn
}

func buildGetMutationCount(g *Globals) *llir.Function {
	i32 := types.NewIntType(true, 32)
	fn := llir.NewFunction(llir.BuiltinName("builtin", "getmutationcount"), nil, i32, llir.External)
	b := llir.NewBuilder(fn)
	val := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: llir.Global{Name: g.MutantCount.Name, Type: i32}})
	b.Terminate(&llir.Ret{Val: val, HasVal: true})
	//
	return fn
}

// buildSetMutation walks P86.mutant_list n steps from the head, writing the
// reached node's id/module into P86.mutant_id/P86.mutant_mod. n=0
// deactivates every mutant (id=0, module=null), matching §4.5.2 without
// walking the list at all.
func buildSetMutation(g *Globals) *llir.Function {
	i32 := types.NewIntType(true, 32)
	charPtr := types.NewPointerType(types.CHAR)
	fn := llir.NewFunction(llir.BuiltinName("builtin", "setmutation"), []llir.Param{{Name: "n", Type: i32}}, nil, llir.External)
	b := llir.NewBuilder(fn)
	n := llir.Register{Name: "n", Type: i32}
	//
	isZero := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(types.BOOL), Op: llir.OpIEq, Lhs: n, Rhs: llir.ConstInt{Val: big.NewInt(0), Type: i32}})
	resetLbl, walkLbl := b.NewLabel("setmutation.reset"), b.NewLabel("setmutation.walk")
	b.Terminate(&llir.CondBr{Cond: isZero, Then: resetLbl, Else: walkLbl})
	//
	b.NewBlockAt(resetLbl)
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantID.Name, Type: i32}, Val: llir.ConstInt{Val: big.NewInt(0), Type: i32}})
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantMod.Name, Type: charPtr}, Val: llir.ConstNull{Type: charPtr}})
	b.Terminate(&llir.Ret{})
	//
	b.NewBlockAt(walkLbl)
	cur := b.EmitValue(&llir.Alloca{Dest: b.NewRegister(types.NewPointerType(NodePtr)), Elem: NodePtr})
	b.Emit(&llir.Store{Addr: cur, Val: llir.Global{Name: g.MutantList.Name, Type: NodePtr}})
	i := b.EmitValue(&llir.Alloca{Dest: b.NewRegister(types.NewPointerType(i32)), Elem: i32})
	b.Emit(&llir.Store{Addr: i, Val: llir.ConstInt{Val: big.NewInt(0), Type: i32}})
	//
	condLbl, bodyLbl, doneLbl := b.NewLabel("setmutation.cond"), b.NewLabel("setmutation.body"), b.NewLabel("setmutation.done")
	b.Terminate(&llir.Br{Target: condLbl})
	//
	b.NewBlockAt(condLbl)
	iv := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: i})
	reached := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(types.BOOL), Op: llir.OpISlt, Lhs: iv, Rhs: n})
	b.Terminate(&llir.CondBr{Cond: reached, Then: bodyLbl, Else: doneLbl})
	//
	b.NewBlockAt(bodyLbl)
	curNode := b.EmitValue(&llir.Load{Dest: b.NewRegister(NodePtr), Addr: cur})
	nextAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(NodePtr)), Base: curNode, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(2)}})
	next := b.EmitValue(&llir.Load{Dest: b.NewRegister(NodePtr), Addr: nextAddr})
	b.Emit(&llir.Store{Addr: cur, Val: next})
	iv2 := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: i})
	iv3 := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(i32), Op: llir.OpIAdd, Lhs: iv2, Rhs: llir.ConstInt{Val: big.NewInt(1), Type: i32}})
	b.Emit(&llir.Store{Addr: i, Val: iv3})
	b.Terminate(&llir.Br{Target: condLbl})
	//
	b.NewBlockAt(doneLbl)
	finalNode := b.EmitValue(&llir.Load{Dest: b.NewRegister(NodePtr), Addr: cur})
	idAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(i32)), Base: finalNode, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(0)}})
	idVal := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: idAddr})
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantID.Name, Type: i32}, Val: idVal})
	modAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(charPtr)), Base: finalNode, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(1)}})
	modVal := b.EmitValue(&llir.Load{Dest: b.NewRegister(charPtr), Addr: modAddr})
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantMod.Name, Type: charPtr}, Val: modVal})
	b.Terminate(&llir.Ret{})
	//
	return fn
}

// buildSetMutationID linearly scans the mutant list by index until
// getmutationid() equals target, calling setmutation at each step (§4.5.2).
func buildSetMutationID(g *Globals) *llir.Function {
	i32 := types.NewIntType(true, 32)
	fn := llir.NewFunction(llir.BuiltinName("builtin", "setmutationid"), []llir.Param{{Name: "target", Type: i32}}, nil, llir.External)
	b := llir.NewBuilder(fn)
	target := llir.Register{Name: "target", Type: i32}
	//
	count := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: llir.Global{Name: g.MutantCount.Name, Type: i32}})
	i := b.EmitValue(&llir.Alloca{Dest: b.NewRegister(types.NewPointerType(i32)), Elem: i32})
	b.Emit(&llir.Store{Addr: i, Val: llir.ConstInt{Val: big.NewInt(0), Type: i32}})
	//
	condLbl, bodyLbl, matchLbl, nextLbl, doneLbl := b.NewLabel("setmutationid.cond"), b.NewLabel("setmutationid.body"),
		b.NewLabel("setmutationid.match"), b.NewLabel("setmutationid.next"), b.NewLabel("setmutationid.done")
	b.Terminate(&llir.Br{Target: condLbl})
	//
	b.NewBlockAt(condLbl)
	iv := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: i})
	inRange := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(types.BOOL), Op: llir.OpISlt, Lhs: iv, Rhs: count})
	b.Terminate(&llir.CondBr{Cond: inRange, Then: bodyLbl, Else: doneLbl})
	//
	b.NewBlockAt(bodyLbl)
	iv2 := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: i})
	b.Emit(&llir.Call{Callee: llir.BuiltinName("builtin", "setmutation"), Args: []llir.Value{iv2}})
	cur := b.EmitValue(&llir.Call{Dest: b.NewRegister(i32), HasDest: true, Callee: llir.BuiltinName("builtin", "getmutationid")})
	isMatch := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(types.BOOL), Op: llir.OpIEq, Lhs: cur, Rhs: target})
	b.Terminate(&llir.CondBr{Cond: isMatch, Then: matchLbl, Else: nextLbl})
	//
	b.NewBlockAt(matchLbl)
	b.Terminate(&llir.Ret{})
	//
	b.NewBlockAt(nextLbl)
	iv3 := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: i})
	iv4 := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(i32), Op: llir.OpIAdd, Lhs: iv3, Rhs: llir.ConstInt{Val: big.NewInt(1), Type: i32}})
	b.Emit(&llir.Store{Addr: i, Val: iv4})
	b.Terminate(&llir.Br{Target: condLbl})
	//
	b.NewBlockAt(doneLbl)
	b.Terminate(&llir.Ret{})
	//
	return fn
}

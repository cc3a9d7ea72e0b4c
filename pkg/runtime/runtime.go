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

// Package runtime emits the mutant-registry shim every compiled program
// carries (§4.7, §6.4): the well-known globals backing
// getmutationid/getmutationmod/getmutationcount/setmutation/setmutationid,
// the linked-list node type those globals point into, a main() trampoline
// that captures argc/argv, and the per-module constructor that links a
// module's mutants into the shared list at process start.
package runtime

import (
	"math/big"
	"strconv"

	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/mutate"
	"github.com/tornblom/p86c/pkg/types"
)

// NodeType is the public mutant linked-list node type (§6.4):
// {i32 id, i8* module_name, ptr next}.
var NodeType = newNodeType()

func newNodeType() *types.Record {
	node := types.NewRecordType("P86.mutant_node")
	charPtr := types.NewPointerType(types.CHAR)
	selfPtr := types.NewPointerType(node)
	//
	node.SetBody([]types.Field{
		{Name: "id", Type: types.NewIntType(true, 32), Index: 0},
		{Name: "module_name", Type: charPtr, Index: 1},
		{Name: "next", Type: selfPtr, Index: 2},
	}, nil)
	//
	return node
}

// NodePtr is the pointer-to-node type every well-known global below that
// walks the list is typed with.
var NodePtr = types.NewPointerType(NodeType)

// Globals holds the four process-wide well-known globals (§6.4), plus the
// two argc/argv capture slots main() populates.
type Globals struct {
	MutantID    *llir.GlobalVar
	MutantMod   *llir.GlobalVar
	MutantCount *llir.GlobalVar
	MutantList  *llir.GlobalVar
	Argc        *llir.GlobalVar
	Argv        *llir.GlobalVar
}

// Declare installs the well-known globals into prog (the module containing
// the program's main entry point); every other module references them as
// external declarations with the same names.
func Declare(prog *llir.Module) *Globals {
	i32 := types.NewIntType(true, 32)
	charPtrPtr := types.NewPointerType(types.NewPointerType(types.CHAR))
	//
	g := &Globals{
		MutantID:    prog.AddGlobal(&llir.GlobalVar{Name: "P86.mutant_id", Type: i32, Init: llir.ConstInt{Val: big.NewInt(0), Type: i32}, Linkage: llir.External}),
		MutantMod:   prog.AddGlobal(&llir.GlobalVar{Name: "P86.mutant_mod", Type: types.NewPointerType(types.CHAR), Init: llir.ConstNull{Type: types.NewPointerType(types.CHAR)}, Linkage: llir.External}),
		MutantCount: prog.AddGlobal(&llir.GlobalVar{Name: "P86.mutant_count", Type: i32, Init: llir.ConstInt{Val: big.NewInt(0), Type: i32}, Linkage: llir.External}),
		MutantList:  prog.AddGlobal(&llir.GlobalVar{Name: "P86.mutant_list", Type: NodePtr, Init: llir.ConstNull{Type: NodePtr}, Linkage: llir.External}),
		Argc:        prog.AddGlobal(&llir.GlobalVar{Name: "P86.argc", Type: i32, Init: llir.ConstInt{Val: big.NewInt(0), Type: i32}, Linkage: llir.External}),
		Argv:        prog.AddGlobal(&llir.GlobalVar{Name: "P86.argv", Type: charPtrPtr, Init: llir.ConstNull{Type: charPtrPtr}, Linkage: llir.External}),
	}
	//
	return g
}

// BuildMain emits `main(i32 argc, i8** argv)`, which stores its two
// parameters into P86.argc/P86.argv and calls the user program's entry
// point (§4.7).
func BuildMain(g *Globals, entry string) *llir.Function {
	i32 := types.NewIntType(true, 32)
	charPtrPtr := types.NewPointerType(types.NewPointerType(types.CHAR))
	//
	fn := llir.NewFunction("main", []llir.Param{{Name: "argc", Type: i32}, {Name: "argv", Type: charPtrPtr}}, i32, llir.External)
	b := llir.NewBuilder(fn)
	//
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.Argc.Name, Type: i32}, Val: llir.Register{Name: "argc", Type: i32}})
	b.Emit(&llir.Store{Addr: llir.Global{Name: g.Argv.Name, Type: charPtrPtr}, Val: llir.Register{Name: "argv", Type: charPtrPtr}})
	b.Emit(&llir.Call{Callee: entry, HasDest: false})
	b.Terminate(&llir.Ret{Val: llir.ConstInt{Val: big.NewInt(0), Type: i32}, HasVal: true})
	//
	return fn
}

// BuildCtor emits a module's `P86.ctor.<module>` constructor (§4.7): for
// each of ids, prepend a freshly allocated node holding (id, moduleName) to
// P86.mutant_list and increment P86.mutant_count.
func BuildCtor(g *Globals, moduleName string, ids []int32) *llir.Function {
	fn := llir.NewFunction(llir.BuiltinName("ctor", moduleName), nil, nil, llir.Private)
	b := llir.NewBuilder(fn)
	i32 := types.NewIntType(true, 32)
	charPtr := types.NewPointerType(types.CHAR)
	nameGlobal := llir.Global{Name: moduleName + ".name", Type: charPtr}
	//
	for _, id := range ids {
		node := b.EmitValue(&llir.Alloca{Dest: b.NewRegister(NodePtr), Elem: NodeType})
		idAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(i32)), Base: node, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(0)}})
		b.Emit(&llir.Store{Addr: idAddr, Val: llir.ConstInt{Val: big.NewInt(int64(id)), Type: i32}})
		modAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(charPtr)), Base: node, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(1)}})
		b.Emit(&llir.Store{Addr: modAddr, Val: nameGlobal})
		nextAddr := b.EmitValue(&llir.GEP{Dest: b.NewRegister(types.NewPointerType(NodePtr)), Base: node, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(2)}})
		prevHead := b.EmitValue(&llir.Load{Dest: b.NewRegister(NodePtr), Addr: llir.Global{Name: g.MutantList.Name, Type: NodePtr}})
		b.Emit(&llir.Store{Addr: nextAddr, Val: prevHead})
		b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantList.Name, Type: NodePtr}, Val: node})
		//
		count := b.EmitValue(&llir.Load{Dest: b.NewRegister(i32), Addr: llir.Global{Name: g.MutantCount.Name, Type: i32}})
		incr := b.EmitValue(&llir.BinOp{Dest: b.NewRegister(i32), Op: llir.OpIAdd, Lhs: count, Rhs: llir.ConstInt{Val: big.NewInt(1), Type: i32}})
		b.Emit(&llir.Store{Addr: llir.Global{Name: g.MutantCount.Name, Type: i32}, Val: incr})
	}
	//
	b.Terminate(&llir.Ret{})
	//
	return fn
}

// CollectIDs flattens every mutant id recorded across reports into a stable
// order (the order each report's Mutants slice was populated in), the
// sequence BuildCtor links into the shared list.
func CollectIDs(reports map[mutate.Kind]*mutate.Report) []int32 {
	var ids []int32
	//
	for _, kind := range mutate.AllKinds {
		report, ok := reports[kind]
		if !ok {
			continue
		}
		//
		for _, m := range report.Mutants {
			if id, err := strconv.ParseInt(m.ID, 10, 32); err == nil {
				ids = append(ids, int32(id))
			}
		}
	}
	//
	return ids
}

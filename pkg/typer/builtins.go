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
	"math/big"

	"github.com/tornblom/p86c/pkg/symtab"
	"github.com/tornblom/p86c/pkg/types"
)

// builtinModule names the synthetic module owning every built-in typedef,
// constant and function, so their String() identifiers never collide with a
// user module of the same name.
const builtinModule = "$builtin"

// installBuiltins populates the top scope with the built-in typedefs,
// constants and the ~40 built-in function signatures (spec §4.3).
func installBuiltins(t *symtab.Table) {
	for name, ty := range builtinTypedefs() {
		t.InstallTypedef(name, ty)
	}
	//
	for name, c := range builtinConstants() {
		t.InstallConst(name, c.ty, c.val)
	}
	//
	for _, fn := range builtinFunctions() {
		t.InstallFunction(fn.Name, fn)
	}
}

func builtinTypedefs() map[string]types.Type {
	return map[string]types.Type{
		"integer":  types.NewIntType(true, 16),
		"longint":  types.NewIntType(true, 32),
		"word":     types.NewIntType(false, 16),
		"real":     types.REAL32,
		"longreal": types.REAL64,
		"tempreal": types.TEMPREAL,
		"char":     types.CHAR,
		"boolean":  types.BOOL,
		"bytes":    types.ANY,
	}
}

type builtinConst struct {
	ty  types.Type
	val *big.Int
}

func builtinConstants() map[string]builtinConst {
	return map[string]builtinConst{
		"true":       {types.BOOL, big.NewInt(1)},
		"false":      {types.BOOL, big.NewInt(0)},
		"maxint":     {types.NewIntType(true, 16), big.NewInt(32767)},
		"maxlongint": {types.NewIntType(true, 32), big.NewInt(2147483647)},
		"maxword":    {types.NewIntType(false, 16), big.NewInt(65535)},
		"cr":         {types.CHAR, big.NewInt(13)},
		"lf":         {types.CHAR, big.NewInt(10)},
	}
}

// builtinFunctions returns the ~40 built-in routine signatures registered
// into the global function namespace (spec §4.3, §4.6.4).  write/writeln/
// read/readln are variadic; every other built-in has a fixed arity checked
// by the normal call-matching rule.
func builtinFunctions() []*types.Function {
	p := func(name string, ty types.Type) types.Parameter { return types.Parameter{Name: name, Type: ty} }
	fn := func(name string, ret types.Type, params ...types.Parameter) *types.Function {
		return &types.Function{Module: builtinModule, Name: name, Ret: ret, Params: params}
	}
	variadic := func(name string) *types.Function {
		return &types.Function{Module: builtinModule, Name: name, Ret: types.VOID, Variadic: true}
	}
	//
	integer := types.NewIntType(true, 16)
	//
	return []*types.Function{
		variadic("write"),
		variadic("writeln"),
		variadic("read"),
		variadic("readln"),
		fn("halt", types.VOID, p("code", integer)),
		fn("new", types.VOID, p("p", types.NewReferenceType(types.ANY))),
		fn("dispose", types.VOID, p("p", types.NewReferenceType(types.ANY))),
		fn("ord", integer, p("x", types.ANY)),
		fn("chr", types.CHAR, p("x", integer)),
		fn("succ", types.ANY, p("x", types.ANY)),
		fn("pred", types.ANY, p("x", types.ANY)),
		fn("odd", types.BOOL, p("x", integer)),
		fn("trunc", integer, p("x", types.TEMPREAL)),
		fn("round", integer, p("x", types.TEMPREAL)),
		fn("ltrunc", types.NewIntType(true, 32), p("x", types.TEMPREAL)),
		fn("lround", types.NewIntType(true, 32), p("x", types.TEMPREAL)),
		fn("size", integer, p("x", types.ANY)),
		fn("sqrt", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("sin", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("cos", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("tan", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("arcsin", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("arccos", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("arctan", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("exp", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("ln", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("abs", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("sqr", types.TEMPREAL, p("x", types.TEMPREAL)),
		fn("paramcount", integer),
		fn("paramstr", types.NewStringType(255), p("n", integer)),
		fn("outbyt", types.VOID, p("port", integer), p("value", integer)),
		fn("inbyt", integer, p("port", integer)),
		fn("setinterrupt", types.VOID, p("vector", integer), p("handler", types.ANY)),
		fn("enableinterrupts", types.VOID),
		fn("disableinterrupts", types.VOID),
		fn("setmutation", types.VOID, p("n", integer)),
		fn("setmutationid", types.VOID, p("id", types.NewIntType(true, 32))),
		fn("getmutationid", types.NewIntType(true, 32)),
		fn("getmutationmod", types.NewStringType(255)),
		fn("getmutationcount", integer),
	}
}

// variadicByRefBuiltins lists the names whose arguments are always passed by
// reference regardless of declared kind (spec §4.4).
var variadicByRefBuiltins = map[string]bool{
	"read":   true,
	"readln": true,
}

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
package byref_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/byref"
	"github.com/tornblom/p86c/pkg/types"
)

func TestVarLoadRewrittenToVarReference(t *testing.T) {
	load := &ast.VarLoad{Target: &ast.NameAccess{Name: "x"}}
	load.SetType(types.NewIntType(true, 16))
	//
	arg := &ast.Argument{Expr: load}
	//
	call := &ast.FunctionCall{
		Name: "swap",
		Args: []*ast.Argument{arg},
		Resolved: &types.Function{
			Module: "m",
			Name:   "swap",
			Ret:    types.VOID,
			Params: []types.Parameter{{Name: "p", Type: types.NewReferenceType(types.NewIntType(true, 16))}},
		},
	}
	//
	mod := &ast.Module{
		Name: "m",
		Main: ast.NewStatementList(ast.Position{}, []ast.Stmt{
			&ast.ExprStatement{Call: call},
		}),
	}
	//
	byref.Fixup(mod)
	//
	ref, ok := arg.Expr.(*ast.VarReference)
	require.True(t, ok)
	assert.True(t, arg.ByRef)
	assert.Equal(t, "ref int-s16[-32768..32767]", ref.Type().String())
}

func TestReadAlwaysByRef(t *testing.T) {
	load := &ast.VarLoad{Target: &ast.NameAccess{Name: "x"}}
	load.SetType(types.NewIntType(true, 16))
	arg := &ast.Argument{Expr: load}
	//
	call := &ast.FunctionCall{
		Name:     "read",
		Args:     []*ast.Argument{arg},
		Resolved: &types.Function{Module: "$builtin", Name: "read", Ret: types.VOID, Variadic: true},
	}
	//
	mod := &ast.Module{
		Name: "m",
		Main: ast.NewStatementList(ast.Position{}, []ast.Stmt{
			&ast.ExprStatement{Call: call},
		}),
	}
	//
	byref.Fixup(mod)
	//
	_, ok := arg.Expr.(*ast.VarReference)
	assert.True(t, ok)
	assert.True(t, arg.ByRef)
}

func TestArrayArgumentPassesByAddressWithoutWrapping(t *testing.T) {
	arr := &ast.VarAccess{Target: &ast.NameAccess{Name: "buf"}}
	arr.SetType(types.NewArrayType(types.CHAR, types.NewIntRange(big.NewInt(0), big.NewInt(9))))
	arg := &ast.Argument{Expr: arr}
	//
	call := &ast.FunctionCall{
		Name: "fill",
		Args: []*ast.Argument{arg},
		Resolved: &types.Function{
			Module: "m",
			Name:   "fill",
			Ret:    types.VOID,
			Params: []types.Parameter{{Name: "p", Type: types.NewReferenceType(types.ANY)}},
		},
	}
	//
	mod := &ast.Module{
		Name: "m",
		Main: ast.NewStatementList(ast.Position{}, []ast.Stmt{
			&ast.ExprStatement{Call: call},
		}),
	}
	//
	byref.Fixup(mod)
	//
	assert.Same(t, arr, arg.Expr)
	assert.False(t, arg.ByRef)
}

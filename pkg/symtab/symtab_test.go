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
package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tornblom/p86c/pkg/symtab"
	"github.com/tornblom/p86c/pkg/types"
)

func TestInnermostFirstLookup(t *testing.T) {
	tab := symtab.NewTable()
	tab.EnterScope()
	tab.InstallSymbol("x", types.NewIntType(true, 16), nil)
	//
	tab.EnterScope()
	tab.InstallSymbol("x", types.NewIntType(false, 8), nil)
	//
	sym, err := tab.FindSymbol("x")
	require.NoError(t, err)
	assert.Equal(t, "int-u8[0..255]", sym.Type.String())
	//
	tab.ExitScope()
	//
	sym, err = tab.FindSymbol("x")
	require.NoError(t, err)
	assert.Equal(t, "int-s16[-32768..32767]", sym.Type.String())
}

func TestUnknownSymbolError(t *testing.T) {
	tab := symtab.NewTable()
	tab.EnterScope()
	//
	_, err := tab.FindSymbol("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestScopeDisciplineSymbolDoesNotLeak(t *testing.T) {
	tab := symtab.NewTable()
	tab.EnterScope()
	tab.EnterScope()
	tab.InstallSymbol("inner", types.BOOL, nil)
	assert.True(t, tab.IsFindableInScope(1, "inner"))
	tab.ExitScope()
	//
	_, err := tab.FindSymbol("inner")
	assert.Error(t, err)
	assert.Equal(t, 1, tab.Depth())
}

func TestExitScopeWithoutEnterPanics(t *testing.T) {
	tab := symtab.NewTable()
	assert.Panics(t, func() { tab.ExitScope() })
}

func TestLabelYieldsGloballyUniqueNames(t *testing.T) {
	tab := symtab.NewTable()
	a := tab.Label("variant")
	b := tab.Label("variant")
	c := tab.Label("selector")
	//
	assert.NotEqual(t, a, b)
	assert.Equal(t, "variant$0", a)
	assert.Equal(t, "variant$1", b)
	assert.Equal(t, "selector$0", c)
}

func TestFourNamespacesAreDisjoint(t *testing.T) {
	tab := symtab.NewTable()
	tab.EnterScope()
	tab.InstallSymbol("thing", types.BOOL, nil)
	tab.InstallTypedef("thing", types.CHAR)
	tab.InstallFunction("thing", &types.Function{Module: "m", Name: "thing", Ret: types.VOID})
	tab.InstallGoto("thing", 42)
	//
	_, err := tab.FindSymbol("thing")
	require.NoError(t, err)
	_, err = tab.FindTypedef("thing")
	require.NoError(t, err)
	_, err = tab.FindFunction("thing")
	require.NoError(t, err)
	target, err := tab.FindGoto("thing")
	require.NoError(t, err)
	assert.Equal(t, 42, target.Handle)
}

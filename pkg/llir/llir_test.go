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
package llir

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tornblom/p86c/pkg/types"
)

func TestBuilderEmitsTerminatedBlocks(t *testing.T) {
	i16 := types.NewIntType(true, 16)
	fn := NewFunction("add1", []Param{{"x", i16}}, i16, External)
	b := NewBuilder(fn)
	//
	sum := b.EmitValue(&BinOp{Dest: b.NewRegister(i16), Op: OpIAdd, Lhs: Register{"x", i16}, Rhs: ConstInt{big.NewInt(1), i16}})
	b.Terminate(&Ret{Val: sum, HasVal: true})
	//
	require.Len(t, fn.Blocks, 1)
	//
	term, ok := fn.Entry().Terminator()
	require.True(t, ok)
	require.Empty(t, term.Successors())
}

func TestCondBrSuccessors(t *testing.T) {
	cb := &CondBr{Cond: ConstInt{big.NewInt(1), types.BOOL}, Then: "if.then.0", Else: "if.end.0"}
	require.Equal(t, []string{"if.then.0", "if.end.0"}, cb.Successors())
}

func TestModuleStringIncludesFunctions(t *testing.T) {
	mod := NewModule("demo")
	fn := NewFunction("demo.run", nil, nil, External)
	b := NewBuilder(fn)
	b.Terminate(&Ret{})
	mod.AddFunction(fn)
	//
	out := mod.String()
	require.True(t, strings.Contains(out, "demo.run"))
	require.True(t, strings.Contains(out, "ret void"))
}

func TestInternStringDedups(t *testing.T) {
	mod := NewModule("demo")
	a := mod.InternString("hello")
	b := mod.InternString("hello")
	require.Same(t, a, b)
	require.Len(t, mod.Strings, 1)
}

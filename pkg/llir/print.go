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
	"fmt"
	"strings"
)

// String renders the module as a textual IR stream (§6.2), the `-S` driver
// flag's output.
func (m *Module) String() string {
	var b strings.Builder
	//
	fmt.Fprintf(&b, "; module %s\n", m.Id)
	//
	for _, g := range m.Strings {
		fmt.Fprintf(&b, "@%s = private constant [%d x i8] c\"%s\\00\"\n", g.Name, len(g.Value)+1, g.Value)
	}
	//
	for _, g := range m.Globals {
		fmt.Fprintf(&b, "@%s = %s global %s %s\n", g.Name, linkageString(g.Linkage), g.Type, g.Init)
	}
	//
	for _, f := range m.Functions {
		b.WriteString(f.String())
		b.WriteString("\n")
	}
	//
	if m.Ctor != nil {
		b.WriteString(m.Ctor.String())
		b.WriteString("\n")
	}
	//
	return b.String()
}

func linkageString(l Linkage) string {
	if l == External {
		return "external"
	}
	//
	return "private"
}

// String renders the function as a textual IR define block.
func (f *Function) String() string {
	var b strings.Builder
	//
	params := make([]string, len(f.Params))
	//
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", p.Type, p.Name)
	}
	//
	if f.ScopeHookParam != nil {
		params = append(params, fmt.Sprintf("%s %%%s", f.ScopeHookParam.Type, f.ScopeHookParam.Name))
	}
	//
	ret := "void"
	if f.Ret != nil {
		ret = f.Ret.String()
	}
	//
	fmt.Fprintf(&b, "define %s %s @%s(%s) {\n", linkageString(f.Linkage), ret, f.Name, strings.Join(params, ", "))
	//
	for _, block := range f.Blocks {
		b.WriteString(block.String())
	}
	//
	b.WriteString("}\n")
	//
	return b.String()
}

// String renders the block as a labeled list of instructions.
func (bb *BasicBlock) String() string {
	var b strings.Builder
	//
	fmt.Fprintf(&b, "%s:\n", bb.Label)
	//
	for _, insn := range bb.Instructions {
		fmt.Fprintf(&b, "  %s\n", insn)
	}
	//
	return b.String()
}

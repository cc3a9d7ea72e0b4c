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
	"strconv"

	"github.com/tornblom/p86c/pkg/types"
)

// GlobalVar is a module-level storage slot: a declared variable (Init is
// Undef, linkage follows its public/private section) or a constant (a
// string literal or an inlined scalar, Linkage always Private).
type GlobalVar struct {
	Name    string
	Type    types.Type
	Init    Value
	Linkage Linkage
	Const   bool
}

// GlobalString is an internal constant holding a `\0`-terminated string
// literal, addressed by name wherever the source used the literal.
type GlobalString struct {
	Name  string
	Value string
}

// Module is the output of lowering one source module (§4.6, §6.2): a
// source-identified unit of globals and functions, plus the constructor
// this module contributes to the mutant-registration chain (§4.7).
type Module struct {
	// Id is the module's source identifier, used as the textual IR
	// module id and as the naming prefix for its user functions
	// (`<module>.<name>`).
	Id        string
	Globals   []*GlobalVar
	Strings   []*GlobalString
	Functions []*Function
	// Ctor is this module's `P86.ctor.<module>` constructor, registered
	// into the process's appending-linkage global constructors array.
	Ctor *Function
}

// NewModule constructs an empty module with the given source identifier.
func NewModule(id string) *Module {
	return &Module{Id: id}
}

// FunctionName returns the external symbol lowering uses for a user
// function declared in this module (§6.2): "<module>.<name>".
func (m *Module) FunctionName(name string) string {
	return m.Id + "." + name
}

// BuiltinName returns the external symbol for one of the compiler's own
// synthesized helper functions: "P86.<kind>.<name>".
func BuiltinName(kind, name string) string {
	return "P86." + kind + "." + name
}

// CtorName returns this module's constructor symbol: "P86.ctor.<module>".
func (m *Module) CtorName() string {
	return BuiltinName("ctor", m.Id)
}

// AddFunction appends fn to the module and returns it.
func (m *Module) AddFunction(fn *Function) *Function {
	m.Functions = append(m.Functions, fn)
	return fn
}

// AddGlobal appends a global variable declaration and returns it.
func (m *Module) AddGlobal(g *GlobalVar) *GlobalVar {
	m.Globals = append(m.Globals, g)
	return g
}

// InternString registers a string literal as a module-level constant,
// reusing an existing entry with the same text, and returns its symbol.
func (m *Module) InternString(s string) *GlobalString {
	for _, g := range m.Strings {
		if g.Value == s {
			return g
		}
	}
	//
	g := &GlobalString{Name: m.Id + ".str." + strconv.Itoa(len(m.Strings)), Value: s}
	m.Strings = append(m.Strings, g)
	return g
}

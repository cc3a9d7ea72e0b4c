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
package types

import "strings"

// ScopeField is one captured-variable slot within a ScopeHook.
type ScopeField struct {
	Name  string
	Type  Type
	Index uint
}

// ScopeHook is a synthetic struct type carrying pointers to every variable
// and constant visible in an enclosing scope, appended as an extra argument
// whenever a nested procedure is called (spec §4.6.4).  It is used only for
// nested procedures; top-level functions have a nil ScopeHook.
type ScopeHook struct {
	Name   string
	Fields []ScopeField
}

// NewScopeHook constructs a scope hook with the given synthetic name (as
// produced by the symbol table's Label function) and captured fields.
func NewScopeHook(name string, fields []ScopeField) *ScopeHook {
	return &ScopeHook{name, fields}
}

func (t *ScopeHook) String() string {
	var b strings.Builder
	//
	b.WriteString("scopehook ")
	b.WriteString(t.Name)
	b.WriteString("{")
	//
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString(",")
		}
		//
		b.WriteString(f.Name)
	}
	//
	b.WriteString("}")
	//
	return b.String()
}

// Width is the sum of its captured fields, each a 64-bit pointer slot: one
// per captured outer-scope variable or constant.
func (t *ScopeHook) Width() uint { return uint(len(t.Fields)) * 64 }

// AsPointer returns the pointer-to-scope-hook type passed as the final
// implicit call argument.
func (t *ScopeHook) AsPointer() *Pointer {
	return NewPointerType(t)
}

// FieldByName looks up a captured field by its original (outer-scope) name.
func (t *ScopeHook) FieldByName(name string) (ScopeField, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	//
	return ScopeField{}, false
}

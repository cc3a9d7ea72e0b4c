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

// Parameter is one formal parameter of a Function.
type Parameter struct {
	Name string
	Type Type
}

// Function describes a callable: a procedure/function declaration or one of
// the ~40 built-in routines.  Its namespace is `module.name`, which is what
// String() reports, matching the identifier-equality rule used throughout
// the type system.
type Function struct {
	Module     string
	Name       string
	Ret        Type
	Params     []Parameter
	ScopeLevel uint
	// ScopeHook is present only for nested procedures/functions: the
	// synthetic struct type carrying captured pointers from the enclosing
	// scope, appended as an implicit final parameter at lowering time.
	ScopeHook *ScopeHook
	// Variadic marks a built-in whose trailing arguments are not checked
	// against Params: write/writeln/read/readln (spec §4.6.4).
	Variadic bool
}

func (t *Function) String() string {
	var b strings.Builder
	//
	b.WriteString(t.Module)
	b.WriteString(".")
	b.WriteString(t.Name)
	b.WriteString("(")
	//
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(",")
		}
		//
		b.WriteString(p.Type.String())
	}
	//
	b.WriteString(")->")
	b.WriteString(t.Ret.String())
	//
	return b.String()
}

func (t *Function) Width() uint { panic("function type cannot be lowered") }

// IsProcedure reports whether this function returns Void.
func (t *Function) IsProcedure() bool {
	_, ok := t.Ret.(Void)
	return ok
}

// IsNested reports whether this function requires a scope-hook parameter.
func (t *Function) IsNested() bool {
	return t.ScopeHook != nil
}

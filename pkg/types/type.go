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

// Package types implements the structural type model of Pascal-86: a tagged
// sum of type variants (§3.1 of the specification) along with the
// arithmetic/relational upcast rules, assignment downcast rules and deferred
// type resolution that the typer pass relies on.
package types

// Type is the common interface implemented by every member of the type sum.
// Equality between two types is defined as equality of their String()
// identifiers: the identifier encodes the full structural signature (e.g.
// "set of int-range[1..10]"), so two independently constructed types that
// describe the same shape compare equal.
type Type interface {
	// String returns the canonical identifier of this type.
	String() string
	// Width returns the bit-width of the underlying representation of this
	// type, as used when it is lowered.
	Width() uint
}

// Equals reports whether a and b denote the same type, by identifier.
func Equals(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	//
	return a.String() == b.String()
}

// Deferred is a placeholder bound to a type name whose definition appears
// later in the same `type` block.  It must be rewritten to the real type
// (via a second visitor, see pkg/typer) before lowering is attempted; any
// Deferred type reaching the lowering pass indicates a typer bug.
type Deferred struct {
	Name string
}

func (d *Deferred) String() string { return "deferred<" + d.Name + ">" }
func (d *Deferred) Width() uint    { panic("deferred type has no width: " + d.Name) }

// Any is a universal placeholder used for untyped built-ins (new, read) and
// for the "bytes" built-in typedef.  It is lowered as a single byte.
type Any struct{}

func (Any) String() string { return "any" }
func (Any) Width() uint    { return 8 }

// ANY is the sole instance of Any; the untyped placeholder type is a
// singleton since it carries no data.
var ANY Type = Any{}

// Void represents the absence of a value, used as the return type of
// procedures.
type Void struct{}

func (Void) String() string { return "void" }
func (Void) Width() uint    { return 0 }

// VOID is the sole instance of Void.
var VOID Type = Void{}

// File is a placeholder for Pascal-86 file types.  Files are accepted by the
// type system but are never lowered (spec §3.1): no file I/O primitive is
// specified beyond the textual write/read builtins.
type File struct {
	Component Type
}

func (f *File) String() string { return "file of " + f.Component.String() }
func (f *File) Width() uint    { panic("file type cannot be lowered") }

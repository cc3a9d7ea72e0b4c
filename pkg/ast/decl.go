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
package ast

import (
	"math/big"

	"github.com/tornblom/p86c/pkg/types"
)

// Visibility distinguishes the `public`/`private` sections a module-level
// declaration appears in, which determines its emitted linkage (spec
// §4.6.6).
type Visibility uint8

const (
	Private Visibility = iota
	Public
)

// VarDecl declares one or more variables of a given type.
type VarDecl struct {
	Base
	Names      []string
	Type       TypeExpr
	Visibility Visibility
	// Resolved is filled in by the typer.
	Resolved types.Type
}

// ConstDecl declares a named constant, whose value must fold to a constant
// expression (spec §4.2.4).
type ConstDecl struct {
	Base
	Name       string
	Value      Expr
	Visibility Visibility
	// Resolved and ResolvedValue are filled in by the typer once the
	// constant evaluator has folded Value; lowering emits globals and
	// inlines constant references from these rather than re-folding Value.
	// A string-typed constant folds into ResolvedString instead, with
	// ResolvedValue left nil.
	Resolved       types.Type
	ResolvedValue  *big.Int
	ResolvedString string
}

// TypeDecl binds a name to a type expression inside a `type` block.
type TypeDecl struct {
	Base
	Name       string
	Type       TypeExpr
	Visibility Visibility
}

// ParamKind distinguishes value parameters from reference (`var`)
// parameters.
type ParamKind uint8

const (
	ByValue ParamKind = iota
	ByReference
)

// ParamDecl is one formal parameter of a function/procedure head.
type ParamDecl struct {
	Base
	Names []string
	Type  TypeExpr
	Kind  ParamKind
}

// FunctionDecl declares a function or procedure (a procedure has Ret ==
// nil).  Body is nil for a forward declaration.
type FunctionDecl struct {
	Base
	Name       string
	Params     []ParamDecl
	Ret        TypeExpr
	Labels     []string
	TypeDecls  []TypeDecl
	ConstDecls []ConstDecl
	VarDecls   []VarDecl
	Nested     []*FunctionDecl
	Body       *StatementList
	Visibility Visibility
	// Resolved is filled in by the typer once the signature has been
	// processed.
	Resolved *types.Function
}

// IsProcedure reports whether this declaration has no return type.
func (f *FunctionDecl) IsProcedure() bool { return f.Ret == nil }

// Module is a single compilation unit: a top-level block of type/const/var/
// function declarations split across public and private sections, plus an
// optional main statement body (spec §1, §4.6.6).
type Module struct {
	Base
	Name       string
	TypeDecls  []TypeDecl
	ConstDecls []ConstDecl
	VarDecls   []VarDecl
	Functions  []*FunctionDecl
	Labels     []string
	Main       *StatementList
}

// Program is the root of the untyped AST handed down by the parser: an
// ordered list of modules (spec §6.1).
type Program struct {
	Base
	Modules []*Module
}

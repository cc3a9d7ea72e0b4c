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

import "github.com/tornblom/p86c/pkg/types"

// TypeExpr is the source-level syntax for a type, as produced by the parser
// inside a `type` block, a variable declaration or a parameter list.  The
// typer resolves each TypeExpr into a concrete types.Type, installing a
// types.Deferred placeholder for names not yet declared within the same
// block (spec §4.2.5, §9).
type TypeExpr interface {
	Node
	typeExprMarker()
}

type typeExprBase struct{ Base }

func (*typeExprBase) typeExprMarker() {}

// TypeName refers to a type by identifier: a built-in (`integer`, `char`,
// ...) or a name declared elsewhere in scope (possibly later in the same
// `type` block, in which case resolution is deferred).
type TypeName struct {
	typeExprBase
	Name string
}

// RangeType is a `lo..hi` subrange type expression.
type RangeType struct {
	typeExprBase
	Lo, Hi Expr
}

// ArrayTypeExpr is `array[Index] of Element`.
type ArrayTypeExpr struct {
	typeExprBase
	Index   TypeExpr
	Element TypeExpr
}

// StringTypeExpr is `string[Length]`.
type StringTypeExpr struct {
	typeExprBase
	Length Expr
}

// SetTypeExpr is `set of Element`.
type SetTypeExpr struct {
	typeExprBase
	Element TypeExpr
}

// EnumTypeExpr is `(a, b, c)`.
type EnumTypeExpr struct {
	typeExprBase
	Names []string
}

// PointerTypeExpr is `^Pointee`.
type PointerTypeExpr struct {
	typeExprBase
	Pointee TypeExpr
}

// FileTypeExpr is `file of Component`.
type FileTypeExpr struct {
	typeExprBase
	Component TypeExpr
}

// RecordFieldExpr is one fixed field of a RecordTypeExpr.
type RecordFieldExpr struct {
	Base
	Name string
	Type TypeExpr
}

// VariantCaseExpr is one `label-list: (fields)` arm of a variant part.
type VariantCaseExpr struct {
	Base
	Labels []Expr
	Fields []RecordFieldExpr
}

// VariantPartExpr is the `case Selector: SelectorType of ...` tail of a
// record type.
type VariantPartExpr struct {
	Base
	SelectorName string
	SelectorType TypeExpr
	Cases        []VariantCaseExpr
}

// RecordTypeExpr is `record Fields [VariantPart] end`.
type RecordTypeExpr struct {
	typeExprBase
	Name    string
	Fields  []RecordFieldExpr
	Variant *VariantPartExpr
}

// ResolvedLiteral wraps an already-resolved types.Type so that built-in
// typedefs can be injected into scope as TypeExpr values without an
// intermediate name lookup.
type ResolvedLiteral struct {
	typeExprBase
	Resolved types.Type
}

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

// Package diag collects the sentinel error kinds shared across the typing,
// lowering and symbol-table passes, plus a Diagnostic wrapper which attaches
// source position to them for reporting.
package diag

import (
	"errors"
	"fmt"
)

// Typing errors (spec §7).
var (
	ErrIllegalCast               = errors.New("illegal cast")
	ErrInvalidBinaryExpr         = errors.New("invalid binary expression")
	ErrUnknownField              = errors.New("unknown field")
	ErrUnknownFunction           = errors.New("unknown function")
	ErrUnknownSymbol             = errors.New("unknown symbol")
	ErrWrongArgumentCount        = errors.New("wrong argument count")
	ErrArgumentNotReferenceable  = errors.New("argument not referenceable")
	ErrIllegalConstantExpression = errors.New("illegal constant expression")
	ErrIllegalRangeType          = errors.New("illegal range type")
	ErrInvalidSetRange           = errors.New("invalid set range")
	ErrNonIndexedType            = errors.New("non-indexed type")
	ErrNonPointerType            = errors.New("non-pointer type")
	ErrUnknownLoopDirection      = errors.New("unknown loop direction")
)

// Lowering errors (spec §7).
var (
	ErrUnsupportedConversion = errors.New("unsupported conversion")
	ErrUnknownBuiltin        = errors.New("unknown builtin")
	ErrUnsupportedSetRange   = errors.New("unsupported set range: non-constant endpoint")
)

// Symtab errors (spec §7).
var (
	ErrUnknownTypedef = errors.New("unknown typedef")
	ErrUnknownGoto    = errors.New("unknown goto label")
)

// Position is the minimal (file, line) pair needed to format a diagnostic.
// It deliberately mirrors pkg/ast.Position's exported fields rather than
// importing pkg/ast, so that pkg/ast itself may depend on pkg/diag without
// creating an import cycle.
type Position struct {
	File string
	Line int
}

func (p Position) String() string {
	if p.File == "" {
		return "?"
	}
	//
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// Diagnostic is an error with source position attached, formatted the way
// spec §7 requires: "<file:line>: <message>".
type Diagnostic struct {
	Pos Position
	Err error
}

// New constructs a diagnostic wrapping err at the given position.
func New(pos Position, err error) *Diagnostic {
	return &Diagnostic{pos, err}
}

// Newf constructs a diagnostic wrapping a formatted error at the given
// position, rooted in one of the sentinel error kinds above via %w.
func Newf(pos Position, kind error, format string, args ...any) *Diagnostic {
	err := fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
	return &Diagnostic{pos, err}
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Pos, d.Err)
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

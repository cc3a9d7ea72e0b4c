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

// Package mutate implements the mutation testing passes: each operator
// rewrites a module's statement trees in place, wrapping every mutable site
// in a runtime guard selected by a single integer mutant id, and records
// every site it touched in a Report for the driver to serialize alongside
// the mutated source.
package mutate

import "github.com/tornblom/p86c/pkg/ast"

// Operator is the common interface implemented by every mutation operator.
type Operator interface {
	Mutate(ast.Stmt) ast.Stmt
}

// Kind names one of the six mutation operators.
type Kind string

// The six supported mutation operators.
const (
	SDLKind Kind = "sdl"
	SCKind  Kind = "sc"
	DCCKind Kind = "dcc"
	RORKind Kind = "ror"
	CORKind Kind = "cor"
	AORKind Kind = "aor"
)

// AllKinds lists every operator in a stable, deterministic order.
var AllKinds = []Kind{SDLKind, SCKind, DCCKind, RORKind, CORKind, AORKind}

func newOperator(kind Kind, report *Report) Operator {
	switch kind {
	case SDLKind:
		return NewSDL(report)
	case SCKind:
		return NewSC(report)
	case DCCKind:
		return NewDCC(report)
	case RORKind:
		return NewROR(report)
	case CORKind:
		return NewCOR(report)
	case AORKind:
		return NewAOR(report)
	default:
		return nil
	}
}

// Run applies every operator in kinds to mod's main body and every function
// body (including nested functions), producing one Report per operator
// keyed by Kind. filename and md5 identify the source file being mutated
// and seed every mutant id computed for it.
func Run(mod *ast.Module, filename, md5 string, kinds []Kind) map[Kind]*Report {
	reports := make(map[Kind]*Report, len(kinds))
	//
	for _, kind := range kinds {
		report := NewReport(mod.Name, filename, md5)
		op := newOperator(kind, report)
		//
		if mod.Main != nil {
			mod.Main = asStatementList(op.Mutate(mod.Main))
		}
		//
		mutateFunctions(op, mod.Functions)
		reports[kind] = report
	}
	//
	return reports
}

func mutateFunctions(op Operator, fns []*ast.FunctionDecl) {
	for _, fn := range fns {
		if fn.Body == nil {
			continue
		}
		//
		fn.Body = asStatementList(op.Mutate(fn.Body))
		mutateFunctions(op, fn.Nested)
	}
}

func asStatementList(s ast.Stmt) *ast.StatementList {
	if sl, ok := s.(*ast.StatementList); ok {
		return sl
	}
	//
	return &ast.StatementList{Items: []ast.Stmt{s}}
}

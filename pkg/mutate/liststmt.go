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
package mutate

import "github.com/tornblom/p86c/pkg/ast"

// wrapEachStatement visits every StatementList reachable from s (bottom-up,
// so a nested compound block is fully processed before the statement that
// contains it is wrapped), replacing each of its items with wrap(item).
func wrapEachStatement(s ast.Stmt, wrap func(ast.Stmt) ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		for i, it := range n.Items {
			processed := wrapEachStatement(it, wrap)
			n.Items[i] = wrap(processed)
		}
	case *ast.If:
		n.Then = wrapEachStatement(n.Then, wrap)
		n.Else = wrapEachStatement(n.Else, wrap)
	case *ast.While:
		n.Body = wrapEachStatement(n.Body, wrap)
	case *ast.Repeat:
		n.Body = wrapEachStatement(n.Body, wrap)
	case *ast.For:
		n.Body = wrapEachStatement(n.Body, wrap)
	case *ast.Case:
		for _, a := range n.Arms {
			a.Statement = wrapEachStatement(a.Statement, wrap)
		}
		//
		n.Otherwise = wrapEachStatement(n.Otherwise, wrap)
	case *ast.With:
		n.Body = wrapEachStatement(n.Body, wrap)
	case *ast.Labeled:
		n.Statement = wrapEachStatement(n.Statement, wrap)
	}
	//
	return s
}

// SDL is the statement deletion operator: it guards every statement with a
// disable condition, so any single statement can be skipped at runtime by
// selecting its mutant.
type SDL struct{ Report *Report }

// NewSDL constructs a statement-deletion operator reporting against report.
func NewSDL(report *Report) *SDL { return &SDL{report} }

// Mutate rewrites s in place, guarding every statement it contains.
func (op *SDL) Mutate(s ast.Stmt) ast.Stmt {
	return wrapEachStatement(s, func(c ast.Stmt) ast.Stmt {
		if c == nil {
			return nil
		}
		//
		id, ok := op.Report.AddMutant(c.Pos(), "(* NOP *)")
		if !ok {
			return c
		}
		//
		return disableStmt(id, c)
	})
}

// SC is the statement coverage operator: it injects a halt bomb ahead of
// every statement, so reaching any statement at all can be proven by
// selecting its mutant and observing the program terminate there.
type SC struct{ Report *Report }

// NewSC constructs a statement-coverage operator reporting against report.
func NewSC(report *Report) *SC { return &SC{report} }

// Mutate rewrites s in place, injecting a bomb ahead of every statement.
func (op *SC) Mutate(s ast.Stmt) ast.Stmt {
	return wrapEachStatement(s, func(c ast.Stmt) ast.Stmt {
		if c == nil {
			return nil
		}
		//
		id, ok := op.Report.AddMutant(c.Pos(), "halt")
		if !ok {
			return c
		}
		//
		bomb := makeBombStmt(id)
		bomb.Else = c
		return bomb
	})
}

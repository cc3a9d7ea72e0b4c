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

// collectBinaryOpsShallow returns every BinaryOp owned directly by s: its
// own header/condition expressions and those of any non-compound
// sub-statement, but not expressions living inside a nested StatementList
// (those are mutated independently, at their own nesting level, by the
// bottom-up traversal in processChain).
func collectBinaryOpsShallow(s ast.Stmt) []*ast.BinaryOp {
	var out []*ast.BinaryOp
	collect := func(e ast.Expr) bool {
		if b, ok := e.(*ast.BinaryOp); ok {
			out = append(out, b)
		}
		//
		return true
	}
	//
	var walk func(ast.Stmt)
	walk = func(st ast.Stmt) {
		switch n := st.(type) {
		case *ast.StatementList:
			return
		case *ast.Assignment:
			walkExpr(n.Expr, collect)
		case *ast.ExprStatement:
			walkExpr(n.Call, collect)
		case *ast.If:
			walkExpr(n.Cond, collect)
			walk(n.Then)
			walk(n.Else)
		case *ast.While:
			walkExpr(n.Cond, collect)
			walk(n.Body)
		case *ast.Repeat:
			walk(n.Body)
			walkExpr(n.Cond, collect)
		case *ast.For:
			walkExpr(n.Start, collect)
			walkExpr(n.End, collect)
			walk(n.Body)
		case *ast.Case:
			walkExpr(n.Selector, collect)
			for _, a := range n.Arms {
				for _, l := range a.Labels {
					walkExpr(l.Single, collect)
					walkExpr(l.RangeLo, collect)
					walkExpr(l.RangeHi, collect)
				}
				//
				walk(a.Statement)
			}
			//
			walk(n.Otherwise)
		case *ast.With:
			walk(n.Body)
		case *ast.Labeled:
			walk(n.Statement)
		}
	}
	//
	walk(s)
	return out
}

// chainVariants threads a list of guarded clones into nested
// if-then-else-if... structure, falling through to original when none of
// the guards match the active mutant.
func chainVariants(variants []*ast.If, original ast.Stmt) ast.Stmt {
	if len(variants) == 0 {
		return original
	}
	//
	head := variants[0]
	prev := variants[0]
	//
	for _, v := range variants[1:] {
		prev.Else = v
		prev = v
	}
	//
	prev.Else = original
	return head
}

// processChain applies genVariants to every item of every StatementList
// reachable from s, bottom-up so a nested compound block's own
// opportunities are threaded into its own chain before the enclosing
// statement is considered. A statement that is not an item of a
// StatementList, including s itself when s is not a list, gets no variants
// of its own.
func processChain(s ast.Stmt, genVariants func(item ast.Stmt) []*ast.If) ast.Stmt {
	if s == nil {
		return nil
	}
	//
	switch n := s.(type) {
	case *ast.StatementList:
		for i, it := range n.Items {
			processed := processChain(it, genVariants)
			n.Items[i] = chainVariants(genVariants(processed), processed)
		}
	case *ast.If:
		n.Then = processChain(n.Then, genVariants)
		n.Else = processChain(n.Else, genVariants)
	case *ast.While:
		n.Body = processChain(n.Body, genVariants)
	case *ast.Repeat:
		n.Body = processChain(n.Body, genVariants)
	case *ast.For:
		n.Body = processChain(n.Body, genVariants)
	case *ast.Case:
		for _, a := range n.Arms {
			a.Statement = processChain(a.Statement, genVariants)
		}
		//
		n.Otherwise = processChain(n.Otherwise, genVariants)
	case *ast.With:
		n.Body = processChain(n.Body, genVariants)
	case *ast.Labeled:
		n.Statement = processChain(n.Statement, genVariants)
	}
	//
	return s
}

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

var corMutants = map[ast.Op][]ast.Op{
	ast.OpAnd: {ast.OpEq, ast.OpFalse, ast.OpLeft, ast.OpRight},
	ast.OpOr:  {ast.OpNeq, ast.OpTrue, ast.OpLeft, ast.OpRight},
}

// COR is the conditional operator replacement operator.
type COR struct{ Report *Report }

// NewCOR constructs a conditional-operator-replacement operator.
func NewCOR(report *Report) *COR { return &COR{report} }

// Mutate rewrites s in place.
func (op *COR) Mutate(s ast.Stmt) ast.Stmt {
	return processChain(s, func(item ast.Stmt) []*ast.If {
		var variants []*ast.If
		//
		for _, bop := range collectBinaryOpsShallow(item) {
			subs, ok := corMutants[bop.Op]
			if !ok {
				continue
			}
			//
			pos := bop.Position
			leftPos, rightPos := bop.Left.Pos(), bop.Right.Pos()
			//
			for _, sub := range subs {
				id, ok := op.Report.AddMutant(pos, string(sub))
				if !ok {
					continue
				}
				//
				clone := cloneStmt(item)
				//
				switch sub {
				case ast.OpLeft, ast.OpRight:
					operandPos := rightPos
					if sub == ast.OpRight {
						operandPos = leftPos
					}
					//
					disableValue := ast.Op("false")
					if bop.Op == ast.OpAnd {
						disableValue = "true"
					}
					//
					rewriteStmt(clone, func(e ast.Expr) ast.Expr {
						if e.Pos() == operandPos {
							return boolName(string(disableValue))
						}
						//
						return e
					})
				case ast.OpEq, ast.OpNeq:
					rewriteStmt(clone, func(e ast.Expr) ast.Expr {
						if b, ok := e.(*ast.BinaryOp); ok && b.Position == pos {
							b.Op = sub
						}
						//
						return e
					})
				default:
					rewriteStmt(clone, func(e ast.Expr) ast.Expr {
						if e.Pos() == pos {
							return boolName(string(sub))
						}
						//
						return e
					})
				}
				//
				variants = append(variants, enableStmt(id, clone))
			}
		}
		//
		return variants
	})
}

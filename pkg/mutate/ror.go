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

import (
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

var rorMutants = map[ast.Op][]ast.Op{
	ast.OpGt:  {ast.OpLte, ast.OpNeq, ast.OpFalse},
	ast.OpLt:  {ast.OpGte, ast.OpNeq, ast.OpFalse},
	ast.OpLte: {ast.OpLt, ast.OpEq, ast.OpTrue},
	ast.OpGte: {ast.OpGt, ast.OpEq, ast.OpTrue},
	ast.OpEq:  {ast.OpGte, ast.OpLte, ast.OpFalse},
	ast.OpNeq: {ast.OpLt, ast.OpGt, ast.OpTrue},
}

// ROR is the relational operator replacement operator.
type ROR struct{ Report *Report }

// NewROR constructs a relational-operator-replacement operator.
func NewROR(report *Report) *ROR { return &ROR{report} }

// Mutate rewrites s in place.
func (op *ROR) Mutate(s ast.Stmt) ast.Stmt {
	return processChain(s, func(item ast.Stmt) []*ast.If {
		var variants []*ast.If
		//
		for _, bop := range collectBinaryOpsShallow(item) {
			if !isBool(bop.Type()) {
				continue
			}
			//
			if _, ok := bop.Left.Type().(*types.Set); ok {
				continue
			}
			//
			if _, ok := bop.Right.Type().(*types.Set); ok {
				continue
			}
			//
			subs, ok := rorMutants[bop.Op]
			if !ok {
				continue
			}
			//
			pos := bop.Position
			//
			for _, sub := range subs {
				if rorEquivalent(bop, sub) {
					continue
				}
				//
				id, ok := op.Report.AddMutant(pos, string(sub))
				if !ok {
					continue
				}
				//
				clone := cloneStmt(item)
				rewriteStmt(clone, rorReplacer(pos, sub))
				variants = append(variants, enableStmt(id, clone))
			}
		}
		//
		return variants
	})
}

func rorReplacer(pos ast.Position, sub ast.Op) func(ast.Expr) ast.Expr {
	return func(e ast.Expr) ast.Expr {
		b, ok := e.(*ast.BinaryOp)
		if !ok || b.Position != pos {
			return e
		}
		//
		if sub == ast.OpTrue || sub == ast.OpFalse {
			return boolName(string(sub))
		}
		//
		b.Op = sub
		return b
	}
}

// rorEquivalent flags relational-operator substitutions that are provably
// equivalent to the original given the operand ranges, e.g. `b = true`
// mutated to `b >= true` when true is boolean's maximum value.
func rorEquivalent(node *ast.BinaryOp, sub ast.Op) bool {
	lo, lv, lok := ordinalBounds(node.Left)
	ro, rv, rok := ordinalBounds(node.Right)
	//
	if !lok || !rok {
		return false
	}
	//
	if node.Op == ast.OpEq && sub == ast.OpGte && lo.hi != nil && rv != nil && lo.hi.Cmp(rv) == 0 {
		return true
	}
	//
	if node.Op == ast.OpEq && sub == ast.OpLte && lo.lo != nil && rv != nil && lo.lo.Cmp(rv) == 0 {
		return true
	}
	//
	if node.Op == ast.OpEq && sub == ast.OpGte && ro.hi != nil && lv != nil && ro.hi.Cmp(lv) == 0 {
		return true
	}
	//
	if node.Op == ast.OpEq && sub == ast.OpLte && ro.lo != nil && lv != nil && ro.lo.Cmp(lv) == 0 {
		return true
	}
	//
	return false
}

type ordRange struct{ lo, hi *big.Int }

func ordinalBounds(e ast.Expr) (ordRange, *big.Int, bool) {
	var r ordRange
	//
	switch t := e.Type().(type) {
	case *types.Int:
		r = ordRange{t.Lo, t.Hi}
	case *types.IntRange:
		r = ordRange{t.Lo, t.Hi}
	case types.Bool:
		r = ordRange{big.NewInt(0), big.NewInt(1)}
	default:
		return ordRange{}, nil, false
	}
	//
	return r, getValue(e), true
}

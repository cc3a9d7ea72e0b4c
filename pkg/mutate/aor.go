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
	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/types"
)

var aorMutants = map[ast.Op][]ast.Op{
	ast.OpAdd:  {ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIDiv, ast.OpMod, ast.OpLeft, ast.OpRight},
	ast.OpSub:  {ast.OpAdd, ast.OpMul, ast.OpDiv, ast.OpIDiv, ast.OpMod, ast.OpLeft, ast.OpRight},
	ast.OpMul:  {ast.OpAdd, ast.OpSub, ast.OpDiv, ast.OpIDiv, ast.OpMod, ast.OpLeft, ast.OpRight},
	ast.OpDiv:  {ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpIDiv, ast.OpMod, ast.OpLeft, ast.OpRight},
	ast.OpIDiv: {ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpLeft, ast.OpRight},
	ast.OpMod:  {ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpIDiv, ast.OpLeft, ast.OpRight},
}

// validAorMutants lists which of aorMutants' candidates make sense for a
// binary operator whose result has the given type.
func validAorMutants(ty types.Type) map[ast.Op]bool {
	var ops []ast.Op
	//
	switch ty.(type) {
	case *types.Int, *types.IntRange:
		ops = []ast.Op{ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpIDiv, ast.OpMod, ast.OpLeft, ast.OpRight}
	case *types.Real:
		ops = []ast.Op{ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpLeft, ast.OpRight}
	case *types.Set, types.EmptySet:
		ops = []ast.Op{ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpLeft, ast.OpRight}
	default:
		return nil
	}
	//
	out := make(map[ast.Op]bool, len(ops))
	for _, o := range ops {
		out[o] = true
	}
	//
	return out
}

func zeroValue(ty types.Type) ast.Expr {
	switch ty.(type) {
	case *types.Set, types.EmptySet:
		n := &ast.SetLiteral{}
		n.SetType(types.EMPTYSET)
		return n
	case *types.Real:
		n := &ast.RealLiteral{Value: 0}
		n.SetType(types.REAL32)
		return n
	default:
		n := &ast.IntLiteral{Value: 0}
		n.SetType(types.NewIntType(true, 16))
		return n
	}
}

// AOR is the arithmetic operator replacement operator.
type AOR struct{ Report *Report }

// NewAOR constructs an arithmetic-operator-replacement operator.
func NewAOR(report *Report) *AOR { return &AOR{report} }

// Mutate rewrites s in place.
func (op *AOR) Mutate(s ast.Stmt) ast.Stmt {
	return processChain(s, func(item ast.Stmt) []*ast.If {
		var variants []*ast.If
		//
		for _, bop := range collectBinaryOpsShallow(item) {
			candidates, ok := aorMutants[bop.Op]
			if !ok {
				continue
			}
			//
			valid := validAorMutants(bop.Type())
			if valid == nil {
				continue
			}
			//
			pos := bop.Position
			leftVal, rightVal := getValue(bop.Left), getValue(bop.Right)
			leftTy, rightTy := bop.Left.Type(), bop.Right.Type()
			//
			for _, sub := range candidates {
				if !valid[sub] {
					continue
				}
				//
				if sub == ast.OpRight && leftVal != nil && leftVal.Sign() == 0 {
					continue
				}
				//
				if sub == ast.OpLeft && rightVal != nil && rightVal.Sign() == 0 {
					continue
				}
				//
				if sub == ast.OpLeft || sub == ast.OpRight {
					id, ok := op.Report.AddMutant(pos, "(* NOP *)")
					if !ok {
						continue
					}
					//
					clone := cloneStmt(item)
					disableLeft := sub == ast.OpRight
					//
					rewriteStmt(clone, func(e ast.Expr) ast.Expr {
						b, ok := e.(*ast.BinaryOp)
						if !ok || b.Position != pos {
							return e
						}
						//
						b.Op = ast.OpAdd
						//
						if disableLeft {
							b.Left = ast.NewTypeConvert(zeroValue(leftTy), rightTy, false)
						} else {
							b.Right = ast.NewTypeConvert(zeroValue(rightTy), leftTy, false)
						}
						//
						return b
					})
					//
					variants = append(variants, enableStmt(id, clone))
					//
					continue
				}
				//
				text := string(sub)
				id, ok := op.Report.AddMutant(pos, text)
				if !ok {
					continue
				}
				//
				clone := cloneStmt(item)
				rewriteStmt(clone, func(e ast.Expr) ast.Expr {
					if b, ok := e.(*ast.BinaryOp); ok && b.Position == pos {
						b.Op = sub
					}
					//
					return e
				})
				//
				variants = append(variants, enableStmt(id, clone))
			}
		}
		//
		return variants
	})
}

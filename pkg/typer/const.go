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
package typer

import (
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/types"
)

// evalConst implements the constant evaluator of spec §4.2.4 for the
// ordinal domain (integer, char, boolean): the values needed by range
// bounds, array lengths, case labels and enum-adjacent constant
// declarations.  It folds unary +/-/not, all binary arithmetic/relational/
// logical operators, ordinal literals, and references to previously
// installed constants.  A nil value return means the subtree failed to
// fold; the caller has already recorded IllegalConstantExpression.
func (t *Typer) evalConst(e ast.Expr) (types.Type, *big.Int) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return builtinTypeOf("integer"), big.NewInt(n.Value)
	case *ast.CharLiteral:
		return builtinTypeOf("char"), big.NewInt(int64(n.Value))
	case *ast.VarLoad:
		na, ok := n.Target.(*ast.NameAccess)
		if !ok {
			t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
			return nil, nil
		}
		//
		sym, err := t.table.FindSymbol(na.Name)
		if err != nil || !sym.IsConst {
			t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
			return nil, nil
		}
		//
		return sym.Type, sym.ConstValue
	case *ast.UnaryOp:
		ty, v := t.evalConst(n.Expr)
		if v == nil {
			return nil, nil
		}
		//
		switch n.Op {
		case ast.OpNeg:
			return ty, new(big.Int).Neg(v)
		case ast.OpPos:
			return ty, v
		case ast.OpNot:
			if v.Sign() == 0 {
				return ty, big.NewInt(1)
			}
			//
			return ty, big.NewInt(0)
		}
		//
		t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
		return nil, nil
	case *ast.BinaryOp:
		return t.evalConstBinary(n)
	default:
		t.fail(e.Pos(), diag.ErrIllegalConstantExpression)
		return nil, nil
	}
}

func (t *Typer) evalConstBinary(n *ast.BinaryOp) (types.Type, *big.Int) {
	lty, lv := t.evalConst(n.Left)
	rty, rv := t.evalConst(n.Right)
	//
	if lv == nil || rv == nil {
		return nil, nil
	}
	//
	switch n.Op {
	case ast.OpAdd:
		return lty, new(big.Int).Add(lv, rv)
	case ast.OpSub:
		return lty, new(big.Int).Sub(lv, rv)
	case ast.OpMul:
		return lty, new(big.Int).Mul(lv, rv)
	case ast.OpIDiv:
		if rv.Sign() == 0 {
			t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
			return nil, nil
		}
		//
		return lty, new(big.Int).Quo(lv, rv)
	case ast.OpMod:
		if rv.Sign() == 0 {
			t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
			return nil, nil
		}
		//
		return lty, new(big.Int).Rem(lv, rv)
	case ast.OpAnd:
		if lv.Sign() != 0 && rv.Sign() != 0 {
			return builtinTypeOf("boolean"), big.NewInt(1)
		}
		//
		return builtinTypeOf("boolean"), big.NewInt(0)
	case ast.OpOr:
		if lv.Sign() != 0 || rv.Sign() != 0 {
			return builtinTypeOf("boolean"), big.NewInt(1)
		}
		//
		return builtinTypeOf("boolean"), big.NewInt(0)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return builtinTypeOf("boolean"), big.NewInt(boolToInt(compareOp(n.Op, lv, rv)))
	default:
		t.fail(n.Pos(), diag.ErrIllegalConstantExpression)
		return nil, nil
	}
}

func compareOp(op ast.Op, l, r *big.Int) bool {
	c := l.Cmp(r)
	//
	switch op {
	case ast.OpEq:
		return c == 0
	case ast.OpNeq:
		return c != 0
	case ast.OpLt:
		return c < 0
	case ast.OpLte:
		return c <= 0
	case ast.OpGt:
		return c > 0
	case ast.OpGte:
		return c >= 0
	}
	//
	return false
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	//
	return 0
}

func builtinTypeOf(name string) types.Type {
	return builtinTypedefs()[name]
}

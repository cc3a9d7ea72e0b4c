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
package lower

import (
	"fmt"
	"math/big"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/types"
)

// lowerStmt lowers one statement into the current block, possibly opening
// and leaving several new blocks along the way. Callers must never invoke
// this with the builder positioned on an already-terminated block, except
// for an *ast.Labeled, which opens the label's own block.
func (l *Lowering) lowerStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.StatementList:
		for _, item := range n.Items {
			if l.b.Block.IsTerminated() {
				if _, ok := item.(*ast.Labeled); !ok {
					continue
				}
			}
			//
			if err := l.lowerStmt(item); err != nil {
				return err
			}
		}
		//
		return nil
	case *ast.Assignment:
		return l.lowerAssignment(n)
	case *ast.ExprStatement:
		_, err := l.lowerCall(n.Call)
		return err
	case *ast.If:
		return l.lowerIf(n)
	case *ast.While:
		return l.lowerWhile(n)
	case *ast.Repeat:
		return l.lowerRepeat(n)
	case *ast.For:
		return l.lowerFor(n)
	case *ast.Case:
		return l.lowerCase(n)
	case *ast.With:
		return l.lowerWith(n)
	case *ast.Goto:
		return l.lowerGoto(n)
	case *ast.Labeled:
		return l.lowerLabeled(n)
	case *ast.Null:
		return nil
	default:
		return l.fail(s.Pos(), fmt.Errorf("%w: unhandled statement", diag.ErrUnsupportedConversion))
	}
}

func (l *Lowering) lowerAssignment(n *ast.Assignment) error {
	addr, err := l.lowerAccessAddr(n.Target)
	if err != nil {
		return err
	}
	//
	val, err := l.lowerExpr(n.Expr)
	if err != nil {
		return err
	}
	//
	l.b.Emit(&llir.Store{Addr: addr, Val: val})
	//
	return nil
}

// lowerIf lowers Cond, Then and Else into a two- or three-way branch. The
// LikelyTrue/LikelyFalse hints are not consulted: the blocks are laid out
// the same way whatever the hint, and the emitted CondBr carries no branch
// weights. The mutation pass's guard synthesis (spec §4.6's sc/sdl operators) relies on
// nothing beyond the standard branch here, since a disabled/enabled guard
// is just another Cond expression by the time it reaches lowering.
func (l *Lowering) lowerIf(n *ast.If) error {
	cond, err := l.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	//
	thenLbl := l.b.NewLabel("if.then")
	endLbl := l.b.NewLabel("if.end")
	elseLbl := endLbl
	//
	if n.Else != nil {
		elseLbl = l.b.NewLabel("if.else")
	}
	//
	l.b.Terminate(&llir.CondBr{Cond: cond, Then: thenLbl, Else: elseLbl})
	//
	l.b.NewBlockAt(thenLbl)
	//
	if err := l.lowerStmt(n.Then); err != nil {
		return err
	}
	//
	if !l.b.Block.IsTerminated() {
		l.b.Terminate(&llir.Br{Target: endLbl})
	}
	//
	if n.Else != nil {
		l.b.NewBlockAt(elseLbl)
		//
		if err := l.lowerStmt(n.Else); err != nil {
			return err
		}
		//
		if !l.b.Block.IsTerminated() {
			l.b.Terminate(&llir.Br{Target: endLbl})
		}
	}
	//
	l.b.NewBlockAt(endLbl)
	//
	return nil
}

func (l *Lowering) lowerWhile(n *ast.While) error {
	condLbl := l.b.NewLabel("while.cond")
	bodyLbl := l.b.NewLabel("while.body")
	endLbl := l.b.NewLabel("while.end")
	//
	l.b.Terminate(&llir.Br{Target: condLbl})
	l.b.NewBlockAt(condLbl)
	//
	cond, err := l.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	//
	l.b.Terminate(&llir.CondBr{Cond: cond, Then: bodyLbl, Else: endLbl})
	l.b.NewBlockAt(bodyLbl)
	//
	if err := l.lowerStmt(n.Body); err != nil {
		return err
	}
	//
	if !l.b.Block.IsTerminated() {
		l.b.Terminate(&llir.Br{Target: condLbl})
	}
	//
	l.b.NewBlockAt(endLbl)
	//
	return nil
}

func (l *Lowering) lowerRepeat(n *ast.Repeat) error {
	bodyLbl := l.b.NewLabel("repeat.body")
	endLbl := l.b.NewLabel("repeat.end")
	//
	l.b.Terminate(&llir.Br{Target: bodyLbl})
	l.b.NewBlockAt(bodyLbl)
	//
	if err := l.lowerStmt(n.Body); err != nil {
		return err
	}
	//
	if l.b.Block.IsTerminated() {
		l.b.NewBlockAt(endLbl)
		return nil
	}
	//
	cond, err := l.lowerExpr(n.Cond)
	if err != nil {
		return err
	}
	//
	l.b.Terminate(&llir.CondBr{Cond: cond, Then: endLbl, Else: bodyLbl})
	l.b.NewBlockAt(endLbl)
	//
	return nil
}

// lowerFor lowers a counted loop into the usual four-block shape: init in
// the current block, a condition test comparing the loop variable against
// End with <= or >= depending on Direction, a body that increments or
// decrements before looping back, and an exit block (spec §4.6.3).
func (l *Lowering) lowerFor(n *ast.For) error {
	varAddr, err := l.lowerAccessAddr(n.Var)
	if err != nil {
		return err
	}
	//
	varTy, err := l.accessType(n.Var)
	if err != nil {
		return err
	}
	//
	start, err := l.lowerExpr(n.Start)
	if err != nil {
		return err
	}
	//
	l.b.Emit(&llir.Store{Addr: varAddr, Val: start})
	//
	end, err := l.lowerExpr(n.End)
	if err != nil {
		return err
	}
	//
	condLbl := l.b.NewLabel("for.cond")
	bodyLbl := l.b.NewLabel("for.body")
	endLbl := l.b.NewLabel("for.end")
	//
	l.b.Terminate(&llir.Br{Target: condLbl})
	l.b.NewBlockAt(condLbl)
	//
	cur := l.b.EmitValue(&llir.Load{Dest: l.b.NewRegister(varTy), Addr: varAddr})
	//
	cmpOp, err := loopCompare(n.Direction, varTy)
	if err != nil {
		return l.fail(n.Pos(), err)
	}
	//
	cond := l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(types.BOOL), Op: cmpOp, Lhs: cur, Rhs: end})
	l.b.Terminate(&llir.CondBr{Cond: cond, Then: bodyLbl, Else: endLbl})
	l.b.NewBlockAt(bodyLbl)
	//
	if err := l.lowerStmt(n.Body); err != nil {
		return err
	}
	//
	if !l.b.Block.IsTerminated() {
		stepOp := llir.OpIAdd
		if n.Direction == ast.LoopDownto {
			stepOp = llir.OpISub
		}
		//
		loaded := l.b.EmitValue(&llir.Load{Dest: l.b.NewRegister(varTy), Addr: varAddr})
		one := llir.ConstInt{Val: big.NewInt(1), Type: varTy}
		next := l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(varTy), Op: stepOp, Lhs: loaded, Rhs: one})
		l.b.Emit(&llir.Store{Addr: varAddr, Val: next})
		l.b.Terminate(&llir.Br{Target: condLbl})
	}
	//
	l.b.NewBlockAt(endLbl)
	//
	return nil
}

func loopCompare(dir ast.LoopDirection, ty types.Type) (llir.OpKind, error) {
	signed := isSignedOperand(ty)
	//
	switch dir {
	case ast.LoopTo:
		if signed {
			return llir.OpISle, nil
		}
		//
		return llir.OpIUle, nil
	case ast.LoopDownto:
		if signed {
			return llir.OpISge, nil
		}
		//
		return llir.OpIUge, nil
	}
	//
	return "", diag.ErrUnknownLoopDirection
}

// lowerCase lowers a Case statement to a Switch, flattening every range
// label into its individual constant arms since llir.Switch only dispatches
// on single values (spec §4.6.3).
func (l *Lowering) lowerCase(n *ast.Case) error {
	sel, err := l.lowerExpr(n.Selector)
	if err != nil {
		return err
	}
	//
	endLbl := l.b.NewLabel("case.end")
	otherwiseLbl := endLbl
	//
	if n.Otherwise != nil {
		otherwiseLbl = l.b.NewLabel("case.otherwise")
	}
	//
	var cases []llir.SwitchCase
	armLbls := make([]string, len(n.Arms))
	//
	for i, arm := range n.Arms {
		armLbl := l.b.NewLabel("case.arm")
		armLbls[i] = armLbl
		//
		for _, lbl := range arm.Labels {
			if lbl.IsRange() {
				lo, loOK := constLabelValue(lbl.RangeLo)
				hi, hiOK := constLabelValue(lbl.RangeHi)
				//
				if !loOK || !hiOK {
					return l.fail(lbl.Pos(), diag.ErrIllegalConstantExpression)
				}
				//
				for v := new(big.Int).Set(lo); v.Cmp(hi) <= 0; v.Add(v, big.NewInt(1)) {
					cases = append(cases, llir.SwitchCase{Val: llir.ConstInt{Val: new(big.Int).Set(v), Type: sel.ValueType()}, Target: armLbl})
				}
				//
				continue
			}
			//
			val, ok := constLabelValue(lbl.Single)
			if !ok {
				return l.fail(lbl.Pos(), diag.ErrIllegalConstantExpression)
			}
			//
			cases = append(cases, llir.SwitchCase{Val: llir.ConstInt{Val: val, Type: sel.ValueType()}, Target: armLbl})
		}
	}
	//
	l.b.Terminate(&llir.Switch{Val: sel, Cases: cases, Default: otherwiseLbl})
	//
	for i, arm := range n.Arms {
		l.b.NewBlockAt(armLbls[i])
		//
		if err := l.lowerStmt(arm.Statement); err != nil {
			return err
		}
		//
		if !l.b.Block.IsTerminated() {
			l.b.Terminate(&llir.Br{Target: endLbl})
		}
	}
	//
	if n.Otherwise != nil {
		l.b.NewBlockAt(otherwiseLbl)
		//
		if err := l.lowerStmt(n.Otherwise); err != nil {
			return err
		}
		//
		if !l.b.Block.IsTerminated() {
			l.b.Terminate(&llir.Br{Target: endLbl})
		}
	}
	//
	l.b.NewBlockAt(endLbl)
	//
	return nil
}

// constLabelValue extracts the constant ordinal a case label denotes, as
// left behind by the typer's convertAssign (an IntLiteral/CharLiteral,
// possibly wrapped in a TypeConvert).
func constLabelValue(e ast.Expr) (*big.Int, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return big.NewInt(n.Value), true
	case *ast.CharLiteral:
		return big.NewInt(int64(n.Value)), true
	case *ast.TypeConvert:
		return constLabelValue(n.Child)
	}
	//
	return nil, false
}

// lowerWith pushes a scope binding every field (and, for a variant record,
// every arm's fields) of each listed record directly to its address,
// mirroring pkg/typer/stmt.go's typeWith (spec §4.6.5).
func (l *Lowering) lowerWith(n *ast.With) error {
	l.table.EnterScope()
	defer l.table.ExitScope()
	//
	for _, wr := range n.Records {
		recAddr, rec, err := l.recordAddrAndType(wr.Record)
		if err != nil {
			return err
		}
		//
		for _, f := range rec.Fields {
			l.table.InstallSymbol(f.Name, f.Type, l.fieldAddr(recAddr, rec, f))
		}
		//
		if rec.Variant != nil {
			l.table.InstallSymbol(rec.Variant.Selector.Name, rec.Variant.Selector.Type, l.fieldAddr(recAddr, rec, rec.Variant.Selector))
			//
			for _, c := range rec.Variant.Cases {
				for _, f := range c.Fields {
					l.table.InstallSymbol(f.Name, f.Type, l.variantArmAddr(recAddr, rec, c, f))
				}
			}
		}
	}
	//
	return l.lowerStmt(n.Body)
}

// lowerGoto branches directly to the label's pre-created block (spec
// §4.6.3); precreateLabelBlocks guarantees every label within this function
// already has one, whether lexically before or after this Goto.
func (l *Lowering) lowerGoto(n *ast.Goto) error {
	block, ok := l.gotoBlocks[n.Label]
	if !ok {
		return l.fail(n.Pos(), diag.ErrUnknownGoto)
	}
	//
	l.b.Terminate(&llir.Br{Target: block.Label})
	//
	return nil
}

// lowerLabeled falls through into the label's pre-created block and
// continues emitting there, so any Goto reaching it (forward or backward)
// lands in the same block as straight-line execution.
func (l *Lowering) lowerLabeled(n *ast.Labeled) error {
	block, ok := l.gotoBlocks[n.Label]
	if !ok {
		return l.fail(n.Pos(), diag.ErrUnknownGoto)
	}
	//
	if !l.b.Block.IsTerminated() {
		l.b.Terminate(&llir.Br{Target: block.Label})
	}
	//
	l.b.SetBlock(block)
	//
	return l.lowerStmt(n.Statement)
}

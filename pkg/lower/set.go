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
	"math/big"

	"github.com/bits-and-blooms/bitset"

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/types"
)

// lowerSetLiteral desugars a `[...]` constructor into its bitmask
// representation (spec §4.6.1): every constant member and range is folded
// into one mask via a bitset.BitSet, then any non-constant single members
// are OR'd in at runtime as `1 << value`. A non-constant range endpoint is
// rejected outright, since its extent cannot be folded.
func (l *Lowering) lowerSetLiteral(n *ast.SetLiteral) (llir.Value, error) {
	setTy, ok := n.Type().(*types.Set)
	if !ok {
		// EmptySet: the canonical zero-valued mask.
		width := n.Type().Width()
		return llir.ConstInt{Val: big.NewInt(0), Type: types.NewIntType(false, width)}, nil
	}
	//
	width := setTy.Width()
	maskTy := types.NewIntType(false, width)
	mask := bitset.New(width)
	var dynamic []llir.Value
	//
	for _, m := range n.Members {
		if m.IsRange() {
			lo, loOK := constBitIndex(m.RangeLo)
			hi, hiOK := constBitIndex(m.RangeHi)
			//
			if !loOK || !hiOK {
				return nil, l.fail(m.Pos(), diag.ErrUnsupportedSetRange)
			}
			//
			for i := lo; i <= hi; i++ {
				mask.Set(i)
			}
			//
			continue
		}
		//
		if bit, ok := constBitIndex(m.Single); ok {
			mask.Set(bit)
			continue
		}
		//
		val, err := l.lowerExpr(m.Single)
		if err != nil {
			return nil, err
		}
		//
		dynamic = append(dynamic, val)
	}
	//
	result := llir.Value(llir.ConstInt{Val: maskToBigInt(mask, width), Type: maskTy})
	//
	for _, d := range dynamic {
		shiftAmt, err := l.widen(d, maskTy)
		if err != nil {
			return nil, err
		}
		//
		one := llir.ConstInt{Val: big.NewInt(1), Type: maskTy}
		bit := l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpShl, Lhs: one, Rhs: shiftAmt})
		result = l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpOr, Lhs: result, Rhs: bit})
	}
	//
	return result, nil
}

// constBitIndex extracts a constant ordinal value from e, as folded by the
// typer into an IntLiteral/CharLiteral or a TypeConvert wrapping one.
func constBitIndex(e ast.Expr) (uint, bool) {
	switch n := e.(type) {
	case *ast.IntLiteral:
		return uint(n.Value), true
	case *ast.CharLiteral:
		return uint(n.Value), true
	case *ast.TypeConvert:
		return constBitIndex(n.Child)
	}
	//
	return 0, false
}

// maskToBigInt reads every set bit out of bs (indices [0, width)) into a
// big.Int suitable for a ConstInt operand.
func maskToBigInt(bs *bitset.BitSet, width uint) *big.Int {
	mask := new(big.Int)
	//
	for i := uint(0); i < width; i++ {
		if bs.Test(i) {
			mask.SetBit(mask, int(i), 1)
		}
	}
	//
	return mask
}

// lowerSetBinOp lowers the set-valued forms of +, - and * (union,
// difference, intersection; spec §4.2.1) as bitwise mask operations.
func (l *Lowering) lowerSetBinOp(op ast.Op, lhs, rhs llir.Value, setTy *types.Set) (llir.Value, error) {
	maskTy := types.NewIntType(false, setTy.Width())
	//
	switch op {
	case ast.OpAdd:
		return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpOr, Lhs: lhs, Rhs: rhs}), nil
	case ast.OpMul:
		return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpAnd, Lhs: lhs, Rhs: rhs}), nil
	case ast.OpSub:
		notRhs := l.b.EmitValue(&llir.UnOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpNot, Val: rhs})
		return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpAnd, Lhs: lhs, Rhs: notRhs}), nil
	}
	//
	return nil, diag.ErrUnsupportedConversion
}

// lowerSetMembership lowers `x in s` as `((1 << zext(x)) & s) != 0` (spec
// §4.6.1).
func (l *Lowering) lowerSetMembership(x llir.Value, setVal llir.Value, setTy *types.Set) (llir.Value, error) {
	maskTy := types.NewIntType(false, setTy.Width())
	//
	xw, err := l.widen(x, maskTy)
	if err != nil {
		return nil, err
	}
	//
	one := llir.ConstInt{Val: big.NewInt(1), Type: maskTy}
	bit := l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpShl, Lhs: one, Rhs: xw})
	masked := l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(maskTy), Op: llir.OpAnd, Lhs: bit, Rhs: setVal})
	//
	return l.b.EmitValue(&llir.BinOp{Dest: l.b.NewRegister(types.BOOL), Op: llir.OpINe, Lhs: masked, Rhs: llir.ConstInt{Val: big.NewInt(0), Type: maskTy}}), nil
}

// widen zero-extends or truncates v to target's width (returning v as is
// when the widths already match), used to align a set
// element's ordinal value with the mask's integer width before shifting.
func (l *Lowering) widen(v llir.Value, target *types.Int) (llir.Value, error) {
	srcWidth := v.ValueType().Width()
	if srcWidth == target.BitWidth {
		return v, nil
	}
	//
	if srcWidth > target.BitWidth {
		return l.b.EmitValue(&llir.Convert{Dest: l.b.NewRegister(target), Kind: llir.ConvTrunc, Src: v}), nil
	}
	//
	return l.b.EmitValue(&llir.Convert{Dest: l.b.NewRegister(target), Kind: llir.ConvZExt, Src: v}), nil
}

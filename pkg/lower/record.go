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

	"github.com/tornblom/p86c/pkg/ast"
	"github.com/tornblom/p86c/pkg/diag"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/types"
)

// fieldAddr computes the address of one fixed field of a record whose
// address is recAddr (spec §4.6.2): a single GEP to the field's index.
func (l *Lowering) fieldAddr(recAddr llir.Value, rec *types.Record, field types.Field) llir.Value {
	ptrTy := types.NewPointerType(field.Type)
	return l.b.EmitValue(&llir.GEP{Dest: l.b.NewRegister(ptrTy), Base: recAddr, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(int(field.Index))}})
}

// variantArmAddr computes the address of a field belonging to one case of a
// variant record: a GEP to the shared byte arena (the slot immediately past
// the selector), bitcast to a pointer to that case's synthetic record, then
// a GEP to the requested field within it (spec §4.6.2).
func (l *Lowering) variantArmAddr(recAddr llir.Value, rec *types.Record, caseRec *types.Record, field types.Field) llir.Value {
	arenaIndex := len(rec.Fields) + 1
	armPtrTy := types.NewPointerType(caseRec)
	//
	arenaAddr := l.b.EmitValue(&llir.GEP{Dest: l.b.NewRegister(types.NewPointerType(types.ANY)), Base: recAddr, Indices: []llir.Value{llir.ConstIndex(0), llir.ConstIndex(arenaIndex)}})
	armAddr := l.b.EmitValue(&llir.Convert{Dest: l.b.NewRegister(armPtrTy), Kind: llir.ConvBitcast, Src: arenaAddr})
	//
	return l.fieldAddr(armAddr, caseRec, field)
}

// fieldSlot resolves name against rec, returning either a fixed-field
// address or, for a field that lives in a variant arm, the bitcast arm
// address — uniformly as a single address computation.
func (l *Lowering) fieldSlot(recAddr llir.Value, rec *types.Record, name string) (llir.Value, types.Type, error) {
	for _, f := range rec.Fields {
		if f.Name == name {
			return l.fieldAddr(recAddr, rec, f), f.Type, nil
		}
	}
	//
	if rec.Variant != nil {
		if rec.Variant.Selector.Name == name {
			return l.fieldAddr(recAddr, rec, rec.Variant.Selector), rec.Variant.Selector.Type, nil
		}
		//
		for _, c := range rec.Variant.Cases {
			for _, f := range c.Fields {
				if f.Name == name {
					return l.variantArmAddr(recAddr, rec, c, f), f.Type, nil
				}
			}
		}
	}
	//
	return nil, nil, fmt.Errorf("%w: %s", diag.ErrUnknownField, name)
}

// underlyingRecord unwraps Pointer/Reference indirection to find the Record
// a field access or With-statement targets, mirroring pkg/typer/expr.go's
// helper of the same name.
func underlyingRecord(t types.Type) *types.Record {
	switch v := t.(type) {
	case *types.Record:
		return v
	case *types.Pointer:
		return underlyingRecord(v.Pointee)
	case *types.Reference:
		return underlyingRecord(v.Referee)
	default:
		return nil
	}
}

// binOpKind selects the primitive BinOp opcode for op over values of the
// given (already-upcast-unified) operand type. Set operands are handled by
// the caller via lowerSetBinOp rather than through this table.
func binOpKind(op ast.Op, operand types.Type) (llir.OpKind, error) {
	if r, ok := operand.(*types.Real); ok {
		_ = r
		switch op {
		case ast.OpAdd:
			return llir.OpFAdd, nil
		case ast.OpSub:
			return llir.OpFSub, nil
		case ast.OpMul:
			return llir.OpFMul, nil
		case ast.OpDiv:
			return llir.OpFDiv, nil
		case ast.OpEq:
			return llir.OpFEq, nil
		case ast.OpNeq:
			return llir.OpFNe, nil
		case ast.OpGt:
			return llir.OpFGt, nil
		case ast.OpGte:
			return llir.OpFGe, nil
		case ast.OpLt:
			return llir.OpFLt, nil
		case ast.OpLte:
			return llir.OpFLe, nil
		}
		//
		return "", fmt.Errorf("%w: real %s", diag.ErrUnsupportedConversion, op)
	}
	//
	signed := isSignedOperand(operand)
	//
	switch op {
	case ast.OpAdd:
		return llir.OpIAdd, nil
	case ast.OpSub:
		return llir.OpISub, nil
	case ast.OpMul:
		return llir.OpIMul, nil
	case ast.OpIDiv:
		if signed {
			return llir.OpSDiv, nil
		}
		//
		return llir.OpUDiv, nil
	case ast.OpMod:
		if signed {
			return llir.OpSRem, nil
		}
		//
		return llir.OpURem, nil
	case ast.OpEq:
		return llir.OpIEq, nil
	case ast.OpNeq:
		return llir.OpINe, nil
	case ast.OpGt:
		if signed {
			return llir.OpISgt, nil
		}
		//
		return llir.OpIUgt, nil
	case ast.OpGte:
		if signed {
			return llir.OpISge, nil
		}
		//
		return llir.OpIUge, nil
	case ast.OpLt:
		if signed {
			return llir.OpISlt, nil
		}
		//
		return llir.OpIUlt, nil
	case ast.OpLte:
		if signed {
			return llir.OpISle, nil
		}
		//
		return llir.OpIUle, nil
	}
	//
	return "", fmt.Errorf("%w: %s", diag.ErrUnsupportedConversion, op)
}

// isSignedOperand reports whether integer-like operand should use signed
// comparison/division opcodes: everything but an explicitly unsigned Int is
// treated as signed (Bool, Char, Enum never carry a sign but are narrow
// enough that signed/unsigned comparison coincide).
func isSignedOperand(t types.Type) bool {
	if i, ok := t.(*types.Int); ok {
		return i.Signed
	}
	//
	return true
}

// convertKind selects the primitive Convert opcode for a TypeConvert from
// one resolved type to another (spec §4.6.1).
func convertKind(from, to types.Type) (llir.ConvertKind, error) {
	fi, fIsInt := asIntLike(from)
	ti, tIsInt := asIntLike(to)
	//
	if fIsInt && tIsInt {
		switch {
		case ti.BitWidth > fi.BitWidth:
			if fi.Signed {
				return llir.ConvSExt, nil
			}
			//
			return llir.ConvZExt, nil
		case ti.BitWidth < fi.BitWidth:
			return llir.ConvTrunc, nil
		default:
			return llir.ConvBitcast, nil
		}
	}
	//
	_, fIsReal := from.(*types.Real)
	tr, tIsReal := to.(*types.Real)
	//
	if fIsInt && tIsReal {
		if fi.Signed {
			return llir.ConvSIToFP, nil
		}
		//
		return llir.ConvUIToFP, nil
	}
	//
	if fIsReal && tIsInt {
		return llir.ConvFPToSI, nil
	}
	//
	if fr, ok := from.(*types.Real); ok && tIsReal {
		if tr.BitWidth > fr.BitWidth {
			return llir.ConvFPExt, nil
		}
		//
		return llir.ConvFPTrunc, nil
	}
	//
	if _, ok := from.(*types.Array); ok {
		if _, ok := to.(*types.String); ok {
			return llir.ConvBitcast, nil
		}
	}
	//
	if _, ok := from.(*types.Pointer); ok {
		if _, ok := to.(*types.Pointer); ok {
			return llir.ConvBitcast, nil
		}
	}
	//
	if _, ok := from.(*types.Reference); ok {
		if _, ok := to.(*types.Reference); ok {
			return llir.ConvBitcast, nil
		}
	}
	//
	return "", fmt.Errorf("%w: %s to %s", diag.ErrUnsupportedConversion, from.String(), to.String())
}

// asIntLike views Bool, Char and Enum as narrow unsigned integers for the
// purposes of conversion-opcode selection, matching their lowered
// representation.
func asIntLike(t types.Type) (*types.Int, bool) {
	switch v := t.(type) {
	case *types.Int:
		return v, true
	case types.Bool:
		return types.NewIntType(false, 1), true
	case *types.Char:
		return types.NewIntType(false, 8), true
	case *types.Enum:
		return types.NewIntType(false, v.Width()), true
	}
	//
	return nil, false
}

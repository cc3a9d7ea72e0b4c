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
package types

// BinaryKind classifies an operator for the purposes of upcast selection.
type BinaryKind uint8

const (
	// KindArith covers +, -, *, div, mod, /.
	KindArith BinaryKind = iota
	// KindRelational covers =, <>, <, <=, >, >=, in.
	KindRelational
)

// UpcastResult is the outcome of upcasting two operand types for a binary
// operation: the common type each side is converted to, and the type of the
// expression as a whole.
type UpcastResult struct {
	// OperandType is the type both operands must be converted to before the
	// primitive operator applies.
	OperandType Type
	// ResultType is the type of the binary expression itself.  For
	// arithmetic this equals OperandType; for relational it is always Bool.
	ResultType Type
	// DivOrMod indicates this was a div/mod operator, which is forbidden
	// with any Real operand.
	DivOrMod bool
}

// UpcastArithmetic implements spec §4.2.1.  op is one of "+","-","*","div",
// "mod","/".
func UpcastArithmetic(lhs, rhs Type, op string) (UpcastResult, bool) {
	divOrMod := op == "div" || op == "mod"
	//
	if _, ok := lhs.(Any); ok {
		return UpcastResult{TEMPREAL, TEMPREAL, divOrMod}, true
	}
	//
	if _, ok := rhs.(Any); ok {
		return UpcastResult{TEMPREAL, TEMPREAL, divOrMod}, true
	}
	//
	lr, lIsReal := lhs.(*Real)
	rr, rIsReal := rhs.(*Real)
	//
	if lIsReal && rIsReal {
		if divOrMod {
			return UpcastResult{}, false
		}
		//
		if op == "/" {
			return UpcastResult{TEMPREAL, TEMPREAL, false}, true
		}
		//
		if lr.BitWidth >= rr.BitWidth {
			return UpcastResult{lr, lr, false}, true
		}
		//
		return UpcastResult{rr, rr, false}, true
	}
	//
	li, lIsInt := lhs.(*Int)
	ri, rIsInt := rhs.(*Int)
	//
	if (lIsReal && rIsInt) || (lIsInt && rIsReal) {
		if divOrMod {
			return UpcastResult{}, false
		}
		//
		if op == "/" {
			return UpcastResult{TEMPREAL, TEMPREAL, false}, true
		}
		//
		return UpcastResult{TEMPREAL, TEMPREAL, false}, true
	}
	//
	if lIsInt && rIsInt {
		merged, ok := mergeIntSignedness(li, ri)
		if !ok {
			return UpcastResult{}, false
		}
		//
		if op == "/" {
			return UpcastResult{TEMPREAL, TEMPREAL, false}, true
		}
		//
		return UpcastResult{merged, merged, divOrMod}, true
	}
	//
	// Set arithmetic (+, -, * only; enforced by the aor mutation operator's
	// validAorMutants filter and by the typer for source-level operators).
	if ls, ok := lhs.(*Set); ok {
		if rs, ok := rhs.(*Set); ok && Equals(ls.Element, rs.Element) {
			return UpcastResult{ls, ls, false}, true
		}
		//
		if _, ok := rhs.(EmptySet); ok {
			return UpcastResult{ls, ls, false}, true
		}
	}
	//
	if _, ok := lhs.(EmptySet); ok {
		if rs, ok := rhs.(*Set); ok {
			return UpcastResult{rs, rs, false}, true
		}
	}
	//
	return UpcastResult{}, false
}

// mergeIntSignedness implements the integer-signedness merge rule of spec
// §4.2.1: operands are first promoted to >= 16 bits, a known constant value
// that fits the other side's range takes the other side's type, and
// otherwise signedness determines the merge.
func mergeIntSignedness(lhs, rhs *Int) (*Int, bool) {
	lhs = promote16(lhs)
	rhs = promote16(rhs)
	//
	if lhs.Value.HasValue() && rhs.Contains(lhs.Value.Unwrap()) {
		return rhs, true
	}
	//
	if rhs.Value.HasValue() && lhs.Contains(rhs.Value.Unwrap()) {
		return lhs, true
	}
	//
	if lhs.Signed == rhs.Signed {
		if lhs.BitWidth >= rhs.BitWidth {
			return lhs, true
		}
		//
		return rhs, true
	}
	//
	var signedSide, unsignedSide *Int
	//
	if lhs.Signed {
		signedSide, unsignedSide = lhs, rhs
	} else {
		signedSide, unsignedSide = rhs, lhs
	}
	//
	if signedSide.BitWidth > unsignedSide.BitWidth {
		return NewIntType(true, signedSide.BitWidth), true
	}
	//
	return NewIntType(true, unsignedSide.BitWidth*2), true
}

func promote16(t *Int) *Int {
	if t.BitWidth >= 16 {
		return t
	}
	//
	widened := NewIntType(t.Signed, 16)
	widened.Value = t.Value
	//
	return widened
}

// UpcastRelational implements spec §4.2.2: both operands upcast to a common
// type (using the arithmetic rules), and the result is always Bool.  `in`
// is handled separately via UpcastIn, since its operands play asymmetric
// roles.
func UpcastRelational(lhs, rhs Type) (UpcastResult, bool) {
	res, ok := UpcastArithmetic(lhs, rhs, "=")
	if !ok {
		// Non-numeric comparisons (char, enum, bool, pointer) simply require
		// identical types.
		if Equals(lhs, rhs) {
			return UpcastResult{lhs, BOOL, false}, true
		}
		//
		return UpcastResult{}, false
	}
	//
	return UpcastResult{res.OperandType, BOOL, false}, true
}

// UpcastIn implements the `in` operator's rule: the LHS must upcast to the
// set's element type; an empty-set RHS promotes to Set<LHS>.
func UpcastIn(lhs Type, set Type) (Type, bool) {
	if _, ok := set.(EmptySet); ok {
		return NewSetType(lhs), true
	}
	//
	s, ok := set.(*Set)
	if !ok {
		return nil, false
	}
	//
	if Equals(lhs, s.Element) {
		return s, true
	}
	//
	// Allow e.g. a narrower int literal to widen into the set's element
	// type, using the same arithmetic merge rule.
	if _, ok := lhs.(*Int); ok {
		if _, ok := s.Element.(*Int); ok {
			return s, true
		}
	}
	//
	return nil, false
}

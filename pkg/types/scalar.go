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

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/tornblom/p86c/internal/option"
)

// Int represents a fixed-width signed or unsigned integer type.  If Value is
// present, this type describes a single constant (used for constant-folded
// expressions prior to range widening); the invariant Lo <= Value <= Hi must
// then hold.
type Int struct {
	Signed   bool
	BitWidth uint
	Lo, Hi   *big.Int
	Value    option.Option[*big.Int]
}

// NewIntType constructs a native integer type of the given signedness and
// width, with bounds derived from two's-complement range rules.
func NewIntType(signed bool, width uint) *Int {
	var lo, hi big.Int
	//
	if signed {
		hi.Sub(new(big.Int).Lsh(big.NewInt(1), width-1), big.NewInt(1))
		lo.Neg(new(big.Int).Lsh(big.NewInt(1), width-1))
	} else {
		hi.Sub(new(big.Int).Lsh(big.NewInt(1), width), big.NewInt(1))
		lo.SetInt64(0)
	}
	//
	return &Int{signed, width, &lo, &hi, option.None[*big.Int]()}
}

// NewIntConstant constructs a constant integer type holding a single known
// value, widened to the narrowest native width that fits it.
func NewIntConstant(value *big.Int) *Int {
	signed := value.Sign() < 0
	width := narrowestWidth(signed, value, value)
	base := NewIntType(signed, width)
	base.Value = option.Some(value)
	//
	return base
}

func narrowestWidth(signed bool, lo, hi *big.Int) uint {
	for _, w := range []uint{8, 16, 32, 64} {
		cand := NewIntType(signed, w)
		if lo.Cmp(cand.Lo) >= 0 && hi.Cmp(cand.Hi) <= 0 {
			return w
		}
	}
	//
	return 64
}

func (t *Int) String() string {
	sign := "u"
	if t.Signed {
		sign = "s"
	}
	//
	if t.Value.HasValue() {
		return fmt.Sprintf("int-%s%d{%s}", sign, t.BitWidth, t.Value.Unwrap().String())
	}
	//
	return fmt.Sprintf("int-%s%d[%s..%s]", sign, t.BitWidth, t.Lo.String(), t.Hi.String())
}

func (t *Int) Width() uint { return t.BitWidth }

// IsConstant reports whether this type pins a single known value.
func (t *Int) IsConstant() bool { return t.Value.HasValue() }

// Contains reports whether v lies within [Lo, Hi].
func (t *Int) Contains(v *big.Int) bool {
	return v.Cmp(t.Lo) >= 0 && v.Cmp(t.Hi) <= 0
}

// IntRange is the type inferred for a bare subrange (e.g. a `for` loop bound
// or a `1..10` case label range) before it is bound to a concrete width; its
// width is the narrowest one that fits both endpoints.
type IntRange struct {
	Lo, Hi *big.Int
}

// NewIntRange constructs an inferred subrange type; panics if lo > hi, which
// would violate the type's invariant.
func NewIntRange(lo, hi *big.Int) *IntRange {
	if lo.Cmp(hi) > 0 {
		panic("invalid range: lo > hi")
	}
	//
	return &IntRange{lo, hi}
}

func (t *IntRange) String() string {
	return fmt.Sprintf("int-range[%s..%s]", t.Lo.String(), t.Hi.String())
}

func (t *IntRange) Width() uint {
	return narrowestWidth(t.Lo.Sign() < 0, t.Lo, t.Hi)
}

// AsInt widens this range into a concrete Int type of its narrowest fitting
// width.
func (t *IntRange) AsInt() *Int {
	signed := t.Lo.Sign() < 0
	return NewIntType(signed, t.Width())
}

// Enum represents an ordered enumeration of identifiers, ordinal 0..n-1.
type Enum struct {
	Names    []string
	bitWidth uint
}

// NewEnumType constructs an enumeration type over the given identifiers in
// declaration order, with a width wide enough to index them all.
func NewEnumType(names []string) *Enum {
	hi := big.NewInt(int64(len(names) - 1))
	return &Enum{names, narrowestWidth(false, big.NewInt(0), hi)}
}

func (t *Enum) String() string {
	return "enum(" + strings.Join(t.Names, ",") + ")"
}

// Lo is always 0 for an enumeration.
func (t *Enum) Lo() *big.Int { return big.NewInt(0) }

// Hi is the ordinal of the last enumerator.
func (t *Enum) Hi() *big.Int { return big.NewInt(int64(len(t.Names) - 1)) }

func (t *Enum) Width() uint { return t.bitWidth }

// Bool is the single boolean type, width 1.
type Bool struct{}

func (Bool) String() string { return "boolean" }
func (Bool) Width() uint    { return 1 }

// BOOL is the sole instance of Bool.
var BOOL Type = Bool{}

// Char represents the character type; if Value is present this describes a
// single constant character.
type Char struct {
	Value option.Option[byte]
}

func (t *Char) String() string {
	if t.Value.HasValue() {
		return fmt.Sprintf("char{%d}", t.Value.Unwrap())
	}
	//
	return "char"
}

func (t *Char) Width() uint { return 8 }

// CHAR is a non-constant character type.
var CHAR Type = &Char{option.None[byte]()}

// NewCharConstant constructs a constant character type.
func NewCharConstant(v byte) *Char {
	return &Char{option.Some(v)}
}

// CharRange is a subrange of the character type, e.g. 'a'..'z'.
type CharRange struct {
	Lo, Hi byte
}

// NewCharRange constructs a character subrange; panics if lo > hi.
func NewCharRange(lo, hi byte) *CharRange {
	if lo > hi {
		panic("invalid char range: lo > hi")
	}
	//
	return &CharRange{lo, hi}
}

func (t *CharRange) String() string {
	return fmt.Sprintf("char-range[%d..%d]", t.Lo, t.Hi)
}

func (t *CharRange) Width() uint { return 8 }

// Real represents a floating point type of the given width (32, 64 or 80
// bits, the latter being TempReal, the widest supported and the result type
// of division and all transcendental built-ins).
type Real struct {
	BitWidth uint
}

// NewRealType constructs a real type of the given width.
func NewRealType(width uint) *Real { return &Real{width} }

// REAL32, REAL64 and TEMPREAL are the three concrete real widths Pascal-86
// supports, corresponding to the built-in typedefs `real`, `longreal` and
// `tempreal`.
var (
	REAL32   = NewRealType(32)
	REAL64   = NewRealType(64)
	TEMPREAL = NewRealType(80)
)

func (t *Real) String() string { return fmt.Sprintf("real%d", t.BitWidth) }
func (t *Real) Width() uint    { return t.BitWidth }

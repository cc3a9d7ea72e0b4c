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
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpcastIntegerPromotion(t *testing.T) {
	// var i: integer (signed 16); var w: word (unsigned 16); w + 1
	word := NewIntType(false, 16)
	one := NewIntConstant(big.NewInt(1))
	//
	res, ok := UpcastArithmetic(word, one, "+")
	assert.True(t, ok)
	assert.Equal(t, uint(32), res.ResultType.Width())
	assert.True(t, res.ResultType.(*Int).Signed)
}

func TestUpcastSameSignWiderWins(t *testing.T) {
	a := NewIntType(true, 16)
	b := NewIntType(true, 32)
	//
	res, ok := UpcastArithmetic(a, b, "+")
	assert.True(t, ok)
	assert.Equal(t, uint(32), res.ResultType.Width())
}

func TestUpcastRealForbidsDivMod(t *testing.T) {
	_, ok := UpcastArithmetic(REAL32, REAL32, "div")
	assert.False(t, ok)
	_, ok = UpcastArithmetic(REAL32, NewIntType(true, 16), "mod")
	assert.False(t, ok)
}

func TestUpcastDivisionYieldsTempReal(t *testing.T) {
	res, ok := UpcastArithmetic(NewIntType(true, 16), NewIntType(true, 16), "/")
	assert.True(t, ok)
	assert.True(t, Equals(res.ResultType, TEMPREAL))
}

func TestUpcastAnyYieldsTempReal(t *testing.T) {
	res, ok := UpcastArithmetic(ANY, NewIntType(true, 16), "+")
	assert.True(t, ok)
	assert.True(t, Equals(res.ResultType, TEMPREAL))
}

func TestDowncastIntNarrowingWarns(t *testing.T) {
	wide := NewIntType(true, 32)
	narrow := NewIntType(true, 16)
	//
	res := DowncastAssign(wide, narrow)
	assert.True(t, res.Legal)
	assert.True(t, res.Warning)
}

func TestDowncastIntWideningNoWarning(t *testing.T) {
	narrow := NewIntType(true, 16)
	wide := NewIntType(true, 32)
	//
	res := DowncastAssign(narrow, wide)
	assert.True(t, res.Legal)
	assert.False(t, res.Warning)
}

func TestDowncastArrayRequiresMatchingElementWidth(t *testing.T) {
	src := NewArrayType(CHAR, NewIntRange(big.NewInt(0), big.NewInt(4)))
	dst := NewArrayType(CHAR, NewIntRange(big.NewInt(0), big.NewInt(9)))
	//
	res := DowncastAssign(src, dst)
	assert.True(t, res.Legal)
	//
	tooLong := NewArrayType(CHAR, NewIntRange(big.NewInt(0), big.NewInt(20)))
	res = DowncastAssign(tooLong, dst)
	assert.False(t, res.Legal)
}

func TestDowncastNilToAnyPointer(t *testing.T) {
	target := NewPointerType(NewIntType(true, 16))
	res := DowncastAssign(NIL, target)
	assert.True(t, res.Legal)
}

func TestDowncastIllegalPairing(t *testing.T) {
	res := DowncastAssign(BOOL, NewIntType(true, 16))
	assert.False(t, res.Legal)
}

func TestSetWidthIsPowerOfTwoOfElementWidth(t *testing.T) {
	element := NewIntType(false, 4)
	s := NewSetType(element)
	assert.Equal(t, uint(16), s.Width())
}

func TestEnumOrdinalsAndWidth(t *testing.T) {
	e := NewEnumType([]string{"red", "green", "blue"})
	assert.Equal(t, uint(8), e.Width())
	assert.Equal(t, int64(0), e.Lo().Int64())
	assert.Equal(t, int64(2), e.Hi().Int64())
}

func TestTypeEqualityByIdentifierString(t *testing.T) {
	a := NewSetType(NewIntRange(big.NewInt(1), big.NewInt(10)).AsInt())
	b := NewSetType(NewIntRange(big.NewInt(1), big.NewInt(10)).AsInt())
	assert.True(t, Equals(a, b))
}

func TestIntConstantInvariant(t *testing.T) {
	c := NewIntConstant(big.NewInt(42))
	assert.True(t, c.IsConstant())
	assert.True(t, c.Contains(c.Value.UnwrapOr(nil)))
}

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

// LeastUpperBound returns the smallest type into which both a and b can
// flow, using the arithmetic upcast rule where applicable.  Used by the
// typer for `case` label widening and by the constant evaluator when
// folding conditional expressions.
func LeastUpperBound(a, b Type) (Type, bool) {
	if Equals(a, b) {
		return a, true
	}
	//
	res, ok := UpcastArithmetic(a, b, "+")
	if ok {
		return res.ResultType, true
	}
	//
	if _, isRangeA := a.(*IntRange); isRangeA {
		return LeastUpperBound(a.(*IntRange).AsInt(), b)
	}
	//
	if _, isRangeB := b.(*IntRange); isRangeB {
		return LeastUpperBound(a, b.(*IntRange).AsInt())
	}
	//
	return nil, false
}

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

// DowncastResult reports whether an assignment source..target pairing is
// legal, and whether it may be lossy at runtime (spec §4.2.3: a warning is
// emitted for narrowing Int->Int conversions where overflow is possible).
type DowncastResult struct {
	Legal   bool
	Warning bool
}

// DowncastAssign determines whether a value of type source may be assigned
// to a location of type target, implementing the rules of spec §4.2.3.
func DowncastAssign(source, target Type) DowncastResult {
	if Equals(source, target) {
		return DowncastResult{true, false}
	}
	//
	switch t := target.(type) {
	case *Int:
		if s, ok := source.(*Int); ok {
			return DowncastResult{true, intNarrows(s, t)}
		}
	case *Real:
		switch source.(type) {
		case *Int, *Real:
			return DowncastResult{true, false}
		}
	case *Set:
		if s, ok := source.(*Set); ok && Equals(s.Element, t.Element) {
			return DowncastResult{true, false}
		}
		//
		if _, ok := source.(EmptySet); ok {
			return DowncastResult{true, false}
		}
	case *Array:
		if s, ok := source.(*Array); ok {
			if s.Element.Width() == t.Element.Width() && s.Length() <= t.Length() {
				return DowncastResult{true, false}
			}
		}
		//
		if s, ok := source.(*String); ok {
			sa := s.AsArray()
			if sa.Element.Width() == t.Element.Width() && sa.Length() <= t.Length() {
				return DowncastResult{true, false}
			}
		}
	case *String:
		if s, ok := source.(*Array); ok {
			ta := t.AsArray()
			if s.Element.Width() == ta.Element.Width() && s.Length() <= ta.Length() {
				return DowncastResult{true, false}
			}
		}
		//
		if s, ok := source.(*String); ok && s.Length <= t.Length {
			return DowncastResult{true, false}
		}
	case *Reference:
		if isAnyPointerLike(t.Referee) {
			if _, ok := source.(*Reference); ok {
				return DowncastResult{true, false}
			}
			//
			if _, ok := source.(*Pointer); ok {
				return DowncastResult{true, false}
			}
			//
			if _, ok := source.(*Array); ok {
				return DowncastResult{true, false}
			}
		}
		//
		if s, ok := source.(*Reference); ok && s.Referee.Width() == t.Referee.Width() {
			if sub := DowncastAssign(s.Referee, t.Referee); sub.Legal {
				return DowncastResult{true, sub.Warning}
			}
		}
	case *Pointer:
		if isAnyPointerLike(t.Pointee) {
			switch source.(type) {
			case *Reference, *Pointer, *Array:
				return DowncastResult{true, false}
			}
		}
		//
		if s, ok := source.(*Pointer); ok {
			if _, isAny := s.Pointee.(Any); isAny {
				// NIL -> any pointer
				return DowncastResult{true, false}
			}
		}
	}
	//
	return DowncastResult{false, false}
}

func isAnyPointerLike(t Type) bool {
	_, ok := t.(Any)
	return ok
}

// intNarrows reports whether assigning source to target can lose
// information at runtime: the source's declared range is not fully
// contained within the target's range.
func intNarrows(source, target *Int) bool {
	if source.Value.HasValue() {
		return !target.Contains(source.Value.Unwrap())
	}
	//
	return source.Lo.Cmp(target.Lo) < 0 || source.Hi.Cmp(target.Hi) > 0
}

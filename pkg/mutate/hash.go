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

// Package mutate implements the mutation testing passes: six operators that
// each walk a typed, call-by-reference-fixed AST and produce one guarded
// variant per mutation opportunity, plus the deterministic id/report
// machinery that ties a mutant back to the source span it came from.
package mutate

// hash32 reproduces a 32-bit string hash: a length-mixed multiplicative
// rolling hash over the bytes of s, folded into the signed int32 range the
// same way the mutant id format has always expected. Not cryptographic;
// collisions are possible but rare enough in practice that a clash simply
// causes two mutants to share one id.
func hash32(s string) int32 {
	if s == "" {
		return 0
	}
	//
	value := uint32(s[0]) << 7
	//
	for i := 0; i < len(s); i++ {
		value = (1000003 * value) ^ uint32(s[i])
	}
	//
	value ^= uint32(len(s))
	//
	return int32(value)
}

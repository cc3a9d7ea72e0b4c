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

// Package ast implements the Pascal-86 typed abstract syntax tree: the
// closed sum of node kinds produced (untyped) by the parser and consumed
// (typed) by every later pass, plus the Position metadata that every pass
// must preserve (spec §3.3, §8.1 position-preservation invariant).
package ast

import "fmt"

// Position records where a node originated in the original source text, as
// handed down from the parser through the preprocessor's fragment tags
// (spec §6.1). It survives every transformation: cloned nodes created by
// the mutation pass carry the position of the node they displace.
type Position struct {
	File     string
	Line     int
	LexStart int
	LexEnd   int
}

func (p Position) String() string {
	if p.File == "" {
		return "?"
	}
	//
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// IsZero reports whether this position was never set, which is legal only
// for synthetic nodes that never need to be blamed in a diagnostic (e.g. a
// guard condition's boolean type).
func (p Position) IsZero() bool {
	return p.File == "" && p.Line == 0 && p.LexStart == 0 && p.LexEnd == 0
}

// Base is embedded by every AST node to provide the common Position and
// Pos() accessor without repeating the field declaration everywhere.
type Base struct {
	Position Position
}

// Pos returns this node's source position.
func (b Base) Pos() Position { return b.Position }

// Node is implemented by every member of the AST sum.
type Node interface {
	Pos() Position
}

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
package mutate

import (
	"encoding/json"
	"testing"

	"github.com/tornblom/p86c/pkg/ast"
)

func TestReportAddMutantDedup(t *testing.T) {
	r := NewReport("foo", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 12, LexStart: 3, LexEnd: 7}
	//
	id1, ok := r.AddMutant(pos, "x + y")
	if !ok {
		t.Fatal("expected AddMutant to succeed")
	}
	//
	id2, ok := r.AddMutant(pos, "x + y")
	if !ok {
		t.Fatal("expected AddMutant to succeed on repeat")
	}
	//
	if id1 != id2 {
		t.Fatalf("duplicate mutant got different ids: %d != %d", id1, id2)
	}
	//
	if r.Count() != 1 {
		t.Fatalf("Count() = %d, want 1 after a duplicate add", r.Count())
	}
}

func TestReportAddMutantCrossFileRejected(t *testing.T) {
	r := NewReport("foo", "foo.pas", "deadbeef")
	pos := ast.Position{File: "other.pas", Line: 1, LexStart: 0, LexEnd: 1}
	//
	if _, ok := r.AddMutant(pos, "x"); ok {
		t.Fatal("expected AddMutant to reject a position outside the report's file")
	}
	//
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
}

func TestReportAddMutantDistinctSpans(t *testing.T) {
	r := NewReport("foo", "foo.pas", "deadbeef")
	pos1 := ast.Position{File: "foo.pas", Line: 12, LexStart: 3, LexEnd: 7}
	pos2 := ast.Position{File: "foo.pas", Line: 13, LexStart: 3, LexEnd: 7}
	//
	r.AddMutant(pos1, "x + y")
	r.AddMutant(pos2, "x + y")
	//
	if r.Count() != 2 {
		t.Fatalf("Count() = %d, want 2 for mutants at distinct lines", r.Count())
	}
}

func TestReportMarshalJSONNeverNull(t *testing.T) {
	r := NewReport("foo", "foo.pas", "deadbeef")
	//
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	//
	var doc struct {
		Mutants []*Mutant `json:"mutants"`
	}
	//
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	//
	if doc.Mutants == nil {
		t.Fatal("mutants field marshaled as null, want []")
	}
}

func TestReportMutantIDIsString(t *testing.T) {
	r := NewReport("foo", "foo.pas", "deadbeef")
	pos := ast.Position{File: "foo.pas", Line: 1, LexStart: 0, LexEnd: 1}
	r.AddMutant(pos, "x")
	//
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	//
	var doc struct {
		Mutants []struct {
			ID string `json:"id"`
		} `json:"mutants"`
	}
	//
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	//
	if len(doc.Mutants) != 1 {
		t.Fatalf("len(mutants) = %d, want 1", len(doc.Mutants))
	}
}

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
	"path/filepath"
	"strconv"
	"time"

	"github.com/segmentio/encoding/json"

	"github.com/tornblom/p86c/pkg/ast"
)

// Mutant records one generated mutation opportunity: a unique id, the
// source span it displaces, and the textual replacement applied there.
type Mutant struct {
	ID    string `json:"id"`
	File  string `json:"file"`
	Line  int    `json:"line"`
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
	Value string `json:"value"`
}

// Report accumulates the mutants produced by a single operator over a
// single source file, and serializes to the json shape consumed by the
// mutant runtime and coverage tooling.
type Report struct {
	Name     string    `json:"name"`
	Filename string    `json:"filename"`
	MD5      string    `json:"md5"`
	Mutants  []*Mutant `json:"mutants"`

	seen map[int32]bool
}

// NewReport constructs an empty report for operator name over filename,
// tagged with the md5 checksum of the module's source text.
func NewReport(name, filename, md5 string) *Report {
	return &Report{
		Name:     name,
		Filename: filename,
		MD5:      md5,
		seen:     make(map[int32]bool),
	}
}

// Count returns the number of distinct mutants recorded so far.
func (r *Report) Count() int { return len(r.Mutants) }

// AddMutant records a mutation opportunity at pos whose replacement text is
// s, and returns the id that should guard it. Positions outside this
// report's own file are rejected (a mutant must never guard code in a
// different compilation unit than the one it was generated for). A second
// call with the same (file, line, span, replacement) tuple reuses the
// existing id rather than appending a duplicate entry.
func (r *Report) AddMutant(pos ast.Position, s string) (int32, bool) {
	if pos.File == "" || filepath.Base(pos.File) != filepath.Base(r.Filename) {
		return 0, false
	}
	//
	idstr := r.MD5 + strconv.Itoa(pos.Line) + strconv.Itoa(pos.LexStart) + strconv.Itoa(pos.LexEnd) + s
	id := hash32(idstr)
	//
	if !r.seen[id] {
		r.seen[id] = true
		r.Mutants = append(r.Mutants, &Mutant{
			ID:    strconv.Itoa(int(id)),
			File:  filepath.Base(pos.File),
			Line:  pos.Line,
			Start: pos.LexStart,
			Stop:  pos.LexEnd,
			Value: s,
		})
	}
	//
	return id, true
}

// reportDoc is the on-the-wire shape of a Report, with the timestamp
// stamped at serialization time rather than at construction, so that
// accumulating mutants over a report's lifetime doesn't go stale against an
// earlier timestamp.
type reportDoc struct {
	Name      string    `json:"name"`
	Filename  string    `json:"filename"`
	MD5       string    `json:"md5"`
	Timestamp int64     `json:"timestamp"`
	Mutants   []*Mutant `json:"mutants"`
}

// MarshalJSON renders the report in the {name, filename, md5, timestamp,
// mutants} shape the mutation report consumers expect.
func (r *Report) MarshalJSON() ([]byte, error) {
	mutants := r.Mutants
	if mutants == nil {
		mutants = []*Mutant{}
	}
	//
	return json.Marshal(reportDoc{
		Name:      r.Name,
		Filename:  r.Filename,
		MD5:       r.MD5,
		Timestamp: time.Now().Unix(),
		Mutants:   mutants,
	})
}

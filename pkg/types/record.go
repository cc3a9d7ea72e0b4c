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

import "strings"

// Field is one member of a Record, at a fixed offset (Index) within its
// parent.
type Field struct {
	Name  string
	Type  Type
	Index uint
}

// Record is a structural product type.  Field names must be unique within
// each variant arm.  Records may be declared opaquely (Fields == nil) and
// filled in afterwards, supporting the "opaque-then-complete" pattern used
// for self-referential (`^self`) record types: a named handle is installed
// in scope before the body is known, and pointer fields referencing it use
// the handle as a forward declaration.
type Record struct {
	Name    string
	Fields  []Field
	Variant *Variant
}

// NewRecordType constructs an opaque named record, to be completed later via
// SetBody.
func NewRecordType(name string) *Record {
	return &Record{Name: name}
}

// SetBody fills in a previously-opaque record's fields and optional variant
// part.  It may only be called once.
func (t *Record) SetBody(fields []Field, variant *Variant) {
	if t.Fields != nil || t.Variant != nil {
		panic("record body already set: " + t.Name)
	}
	//
	t.Fields = fields
	t.Variant = variant
}

func (t *Record) String() string {
	var b strings.Builder
	b.WriteString("record ")
	b.WriteString(t.Name)
	b.WriteString("{")
	//
	for i, f := range t.Fields {
		if i > 0 {
			b.WriteString(",")
		}
		//
		b.WriteString(f.Name)
		b.WriteString(":")
		b.WriteString(f.Type.String())
	}
	//
	if t.Variant != nil {
		b.WriteString(";")
		b.WriteString(t.Variant.String())
	}
	//
	b.WriteString("}")
	//
	return b.String()
}

func (t *Record) Width() uint {
	var w uint
	//
	for _, f := range t.Fields {
		w += f.Type.Width()
	}
	//
	if t.Variant != nil {
		w += t.Variant.Selector.Type.Width()
		w += t.Variant.Width()
	}
	//
	return w
}

// FieldByName looks up a field by name, searching the fixed fields first and
// then, if present, every variant arm (matching the With-statement scoping
// rule of spec §4.6.5, where all arms' fields are installed simultaneously).
func (t *Record) FieldByName(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	//
	if t.Variant != nil {
		for _, c := range t.Variant.Cases {
			for _, f := range c.Fields {
				if f.Name == name {
					return f, true
				}
			}
		}
	}
	//
	return Field{}, false
}

// Variant represents the `case` part of a record: a discriminating selector
// field plus a list of synthetic per-case record bodies sharing one arena.
type Variant struct {
	Selector Field
	Cases    []*Record
	// LabelToCase maps a constant selector label (its canonical String())
	// to the index of the case it activates.
	LabelToCase map[string]int
}

// NewVariant constructs a variant part with the given selector and cases.
func NewVariant(selector Field, cases []*Record, labels map[string]int) *Variant {
	return &Variant{selector, cases, labels}
}

func (t *Variant) String() string {
	var b strings.Builder
	//
	b.WriteString("case ")
	b.WriteString(t.Selector.Name)
	b.WriteString(" of ")
	//
	for i, c := range t.Cases {
		if i > 0 {
			b.WriteString("|")
		}
		//
		b.WriteString(c.String())
	}
	//
	return b.String()
}

// Width is the width of the widest arm: the variant arena is a fixed-size
// buffer sized to accommodate any case.
func (t *Variant) Width() uint {
	var max uint
	//
	for _, c := range t.Cases {
		if w := c.Width(); w > max {
			max = w
		}
	}
	//
	return max
}

// CaseFor returns the case Record activated by the given constant selector
// label, if any.
func (t *Variant) CaseFor(label string) (*Record, bool) {
	idx, ok := t.LabelToCase[label]
	if !ok {
		return nil, false
	}
	//
	return t.Cases[idx], true
}

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
package main

import (
	"fmt"
	"strings"

	"github.com/tornblom/p86c/pkg/ast"
)

// printModule writes a human-readable rendering of a typed module tree.
// width sets the length of the dashed separator rule; the dump itself is
// not wrapped.
func printModule(mod *ast.Module, width uint) {
	fmt.Printf("module %s\n", mod.Name)
	rule(width)
	//
	for _, v := range mod.VarDecls {
		fmt.Printf("  var %s: %s\n", strings.Join(v.Names, ", "), typeString(v.Resolved))
	}
	//
	for _, c := range mod.ConstDecls {
		fmt.Printf("  const %s = %s\n", c.Name, exprString(c.Value))
	}
	//
	for _, fn := range mod.Functions {
		printFunction(fn, 1)
	}
	//
	if mod.Main != nil {
		fmt.Println("  begin")
		printStmt(mod.Main, 2)
		fmt.Println("  end.")
	}
}

func printFunction(fn *ast.FunctionDecl, indent int) {
	pad := strings.Repeat("  ", indent)
	kind := "function"
	//
	if fn.IsProcedure() {
		kind = "procedure"
	}
	//
	fmt.Printf("%s%s %s", pad, kind, fn.Name)
	//
	if fn.Resolved != nil && fn.Resolved.ScopeHook != nil {
		fmt.Printf(" [scope-hook: %d captured]", len(fn.Resolved.ScopeHook.Fields))
	}
	//
	fmt.Println()
	//
	for _, nested := range fn.Nested {
		printFunction(nested, indent+1)
	}
	//
	if fn.Body != nil {
		printStmt(fn.Body, indent+1)
	}
}

func printStmt(s ast.Stmt, indent int) {
	pad := strings.Repeat("  ", indent)
	//
	switch s := s.(type) {
	case *ast.StatementList:
		for _, item := range s.Items {
			printStmt(item, indent)
		}
	case *ast.Assignment:
		fmt.Printf("%s%s := %s\n", pad, accessString(s.Target), exprString(s.Expr))
	case *ast.ExprStatement:
		fmt.Printf("%s%s\n", pad, exprString(s.Call))
	case *ast.If:
		fmt.Printf("%sif %s then\n", pad, exprString(s.Cond))
		printStmt(s.Then, indent+1)
		//
		if s.Else != nil {
			fmt.Printf("%selse\n", pad)
			printStmt(s.Else, indent+1)
		}
	case *ast.While:
		fmt.Printf("%swhile %s do\n", pad, exprString(s.Cond))
		printStmt(s.Body, indent+1)
	case *ast.Repeat:
		fmt.Printf("%srepeat\n", pad)
		printStmt(s.Body, indent+1)
		fmt.Printf("%suntil %s\n", pad, exprString(s.Cond))
	case *ast.For:
		dir := "to"
		//
		if s.Direction == ast.LoopDownto {
			dir = "downto"
		}
		//
		fmt.Printf("%sfor %s := %s %s %s do\n", pad, accessString(s.Var), exprString(s.Start), dir, exprString(s.End))
		printStmt(s.Body, indent+1)
	case *ast.Case:
		fmt.Printf("%scase %s of\n", pad, exprString(s.Selector))
		//
		for _, arm := range s.Arms {
			fmt.Printf("%s  %s:\n", pad, caseLabelsString(arm.Labels))
			printStmt(arm.Statement, indent+2)
		}
		//
		if s.Otherwise != nil {
			fmt.Printf("%s  otherwise:\n", pad)
			printStmt(s.Otherwise, indent+2)
		}
	case *ast.With:
		fmt.Printf("%swith ... do\n", pad)
		printStmt(s.Body, indent+1)
	case *ast.Goto:
		fmt.Printf("%sgoto %s\n", pad, s.Label)
	case *ast.Labeled:
		fmt.Printf("%s%s:\n", pad, s.Label)
		printStmt(s.Statement, indent)
	case *ast.Null:
		fmt.Printf("%s;\n", pad)
	default:
		fmt.Printf("%s<%T at %s>\n", pad, s, s.Pos())
	}
}

func caseLabelsString(labels []ast.CaseLabel) string {
	parts := make([]string, len(labels))
	//
	for i, l := range labels {
		if l.IsRange() {
			parts[i] = exprString(l.RangeLo) + ".." + exprString(l.RangeHi)
		} else {
			parts[i] = exprString(l.Single)
		}
	}
	//
	return strings.Join(parts, ", ")
}

func accessString(a ast.Access) string {
	switch a := a.(type) {
	case *ast.NameAccess:
		return a.Name
	case *ast.FieldAccessNode:
		return accessString(a.Record) + "." + a.Field
	case *ast.IndexedAccess:
		return exprString(a.Array) + "[" + exprString(a.Index) + "]"
	case *ast.PointerAccess:
		return exprString(a.Pointer) + "^"
	default:
		return fmt.Sprintf("<%T>", a)
	}
}

func exprString(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.IntLiteral:
		return fmt.Sprintf("%d", e.Value)
	case *ast.RealLiteral:
		return fmt.Sprintf("%g", e.Value)
	case *ast.CharLiteral:
		return fmt.Sprintf("%q", e.Value)
	case *ast.StringLiteral:
		return fmt.Sprintf("%q", e.Value)
	case *ast.VarLoad:
		return accessString(e.Target)
	case *ast.VarReference:
		return "@" + accessString(e.Target)
	case *ast.VarAccess:
		return accessString(e.Target)
	case *ast.BinaryOp:
		return fmt.Sprintf("(%s %s %s)", exprString(e.Left), e.Op, exprString(e.Right))
	case *ast.UnaryOp:
		return fmt.Sprintf("(%s%s)", e.Op, exprString(e.Expr))
	case *ast.TypeConvert:
		return fmt.Sprintf("%s(%s)", typeString(e.Type()), exprString(e.Child))
	case *ast.SetLiteral:
		return "[" + caseMembersString(e.Members) + "]"
	case *ast.FunctionCall:
		args := make([]string, len(e.Args))
		//
		for i, a := range e.Args {
			args[i] = exprString(a.Expr)
		}
		//
		return e.Name + "(" + strings.Join(args, ", ") + ")"
	default:
		return fmt.Sprintf("<%T>", e)
	}
}

func caseMembersString(members []ast.SetMember) string {
	parts := make([]string, len(members))
	//
	for i, m := range members {
		if m.IsRange() {
			parts[i] = exprString(m.RangeLo) + ".." + exprString(m.RangeHi)
		} else {
			parts[i] = exprString(m.Single)
		}
	}
	//
	return strings.Join(parts, ", ")
}

func typeString(t interface{ String() string }) string {
	if t == nil {
		return "<untyped>"
	}
	//
	return t.String()
}

func rule(width uint) {
	fmt.Println(strings.Repeat("-", int(width)))
}

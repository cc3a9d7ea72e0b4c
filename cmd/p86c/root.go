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
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tornblom/p86c/cmd/p86c/fixture"
	"github.com/tornblom/p86c/pkg/byref"
	"github.com/tornblom/p86c/pkg/llir"
	"github.com/tornblom/p86c/pkg/lower"
	"github.com/tornblom/p86c/pkg/mutate"
	"github.com/tornblom/p86c/pkg/runtime"
	"github.com/tornblom/p86c/pkg/typer"
)

var rootCmd = &cobra.Command{
	Use:   "p86c [flags] input.p86",
	Short: "Pascal-86 front/middle-end: type, mutate and lower a module to LLIR.",
	Long: `p86c drives the typer, call-by-reference fixup, source-level mutation
operators and the LLIR lowering pass over a Pascal-86 module, and links the
mutant-runtime shim into the emitted program.

The lexer, parser and preprocessor that turn Pascal-86 source text into an
untyped AST module are external collaborators of this tool; p86c itself ships
a handful of built-in modules (arith.p86, sets.p86, nested.p86) to compile
in their place.`,
	Args: cobra.ExactArgs(1),
	Run:  runCompile,
}

// Execute runs the root command, exiting the process on any cobra-level
// error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("print-tree", "t", false, "print the typed syntax tree")
	rootCmd.Flags().StringP("emit-ir", "S", "", "write LLIR text to PATH (- for stdout)")
	rootCmd.Flags().StringP("emit-bitcode", "b", "", "write LLVM bitcode to PATH (unsupported: no bitcode backend)")
	rootCmd.Flags().StringP("output", "o", "", "write a native object file to PATH (unsupported: no object backend)")
	rootCmd.Flags().IntP("optimize", "O", 0, "optimization level 0-3 (accepted, no optimizer in this tool)")
	rootCmd.Flags().StringP("target", "T", "", "target triple (accepted, no codegen backend)")
	rootCmd.Flags().String("mcpu", "", "target CPU (accepted, no codegen backend)")
	rootCmd.Flags().String("mattrs", "", "target feature attributes (accepted, no codegen backend)")
	rootCmd.Flags().StringArrayP("define", "D", nil, "preprocessor define K=V (accepted, no preprocessor in this tool)")
	rootCmd.Flags().StringArrayP("include", "I", nil, "preprocessor include path (accepted, no preprocessor in this tool)")
	rootCmd.Flags().BoolP("execute", "e", false, "JIT-execute the result (unsupported: no JIT in this tool)")
	rootCmd.Flags().StringArrayP("args", "a", nil, "arguments passed to a JIT-executed program")
	rootCmd.Flags().StringArrayP("mutate", "m", nil, "mutation operator to apply: sc, dcc, ror, cor, aor, sdl (repeatable)")
	rootCmd.Flags().StringP("report-dir", "r", "", "write one JSON mutation report per -m operator into DIR")
	rootCmd.Flags().CountP("verbose", "v", "increase logging verbosity (repeatable)")
}

func runCompile(cmd *cobra.Command, args []string) {
	log := newLogger(GetCount(cmd, "verbose"))
	//
	name := args[0]
	prog, err := fixture.Lookup(name)
	//
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	//
	for _, flag := range []string{"emit-bitcode", "output", "optimize", "target", "mcpu", "mattrs", "define", "include", "execute", "args"} {
		if cmd.Flags().Changed(flag) {
			log.Warnf("-%s is accepted for compatibility but has no effect in this tool", flag)
		}
	}
	//
	mod := prog.Build()
	sum := md5.Sum([]byte(prog.Source))
	digest := hex.EncodeToString(sum[:])
	//
	ty := typer.New(log)
	ty.TypeModule(mod)
	//
	if diags := ty.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			fmt.Println(d.Error())
		}
		//
		os.Exit(1)
	}
	//
	byref.Fixup(mod)
	//
	if GetFlag(cmd, "print-tree") {
		printModule(mod, textWidth())
	}
	//
	kinds, err := parseMutationKinds(GetStringArray(cmd, "mutate"))
	//
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	//
	var reports map[mutate.Kind]*mutate.Report
	//
	if len(kinds) > 0 {
		reports = mutate.Run(mod, name, digest, kinds)
		//
		if dir := GetString(cmd, "report-dir"); dir != "" {
			if err := writeReports(dir, reports); err != nil {
				fmt.Println(err.Error())
				os.Exit(1)
			}
		}
	}
	//
	scratch := llir.NewModule("rt")
	rt := runtime.Declare(scratch)
	//
	l := lower.New(rt, log)
	irMod, err := l.LowerModule(mod)
	//
	if err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
	//
	runtime.Declare(irMod)
	//
	ids := runtime.CollectIDs(reports)
	irMod.Ctor = runtime.BuildCtor(rt, irMod.Id, ids)
	//
	for _, fn := range runtime.Selector(rt) {
		irMod.AddFunction(fn)
	}
	//
	emitIR(cmd, irMod)
}

func emitIR(cmd *cobra.Command, irMod fmt.Stringer) {
	path := GetString(cmd, "emit-ir")
	//
	if path == "" || path == "-" {
		fmt.Println(irMod.String())
		return
	}
	//
	if err := os.WriteFile(path, []byte(irMod.String()), 0o644); err != nil {
		fmt.Println(err.Error())
		os.Exit(1)
	}
}

func writeReports(dir string, reports map[mutate.Kind]*mutate.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	//
	for kind, report := range reports {
		data, err := report.MarshalJSON()
		//
		if err != nil {
			return err
		}
		//
		path := filepath.Join(dir, string(kind)+".json")
		//
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	//
	return nil
}

func parseMutationKinds(names []string) ([]mutate.Kind, error) {
	kinds := make([]mutate.Kind, 0, len(names))
	//
	for _, n := range names {
		k := mutate.Kind(n)
		//
		if !slices.Contains(mutate.AllKinds, k) {
			return nil, fmt.Errorf("unknown mutation operator %q", n)
		}
		//
		kinds = append(kinds, k)
	}
	//
	return kinds, nil
}

func newLogger(verbosity int) *logrus.Entry {
	l := logrus.New()
	//
	switch {
	case verbosity >= 2:
		l.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	//
	return logrus.NewEntry(l)
}

// textWidth picks a wrap width for -t output: the terminal's real width
// when stdout is a tty, otherwise a fixed fallback.
func textWidth() uint {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return uint(w)
	}
	//
	return 80
}

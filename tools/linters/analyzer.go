package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/types/typeutil"
)

const doc = `nosetenv reports environment mutation in test files

Tests build configuration with config.LoadFromMap and pass it to constructors.
os.Setenv, os.Unsetenv and the testing Setenv helpers mutate process state
shared by parallel tests and are rejected in _test.go files.`

// Analyzer flags environment mutation inside _test.go files.
var Analyzer = &analysis.Analyzer{
	Name: "nosetenv",
	Doc:  doc,
	Run:  run,
}

// Keyed by types.Func.FullName. B and F inherit Setenv from testing.common.
var forbidden = map[string]string{
	"os.Setenv":                "os.Setenv",
	"os.Unsetenv":              "os.Unsetenv",
	"(*testing.T).Setenv":      "t.Setenv",
	"(*testing.common).Setenv": "Setenv",
	"(testing.TB).Setenv":      "Setenv",
}

func run(pass *analysis.Pass) (interface{}, error) {
	for _, file := range pass.Files {
		if !strings.HasSuffix(pass.Fset.Position(file.Package).Filename, "_test.go") {
			continue
		}

		ast.Inspect(file, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
			if !ok {
				return true
			}
			if label, ok := forbidden[fn.FullName()]; ok {
				pass.Reportf(call.Pos(), "%s is forbidden in tests; build the config with config.LoadFromMap and pass it to the constructor", label)
			}
			return true
		})
	}
	return nil, nil
}

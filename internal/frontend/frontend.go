// Package frontend wires the lexer and parser together into the two
// load shapes the CLI needs: a single literal expression (-e) or a whole
// source file (-f). It is the repurposed descendant of the teacher's
// internal/loader, trimmed down from package/manifest resolution (out of
// scope per spec.md's Non-goals) to the one thing this spec's CLI needs:
// turning source text into the AST internal/codegen consumes.
package frontend

import (
	"fmt"
	"os"

	"sexpc/internal/ast"
	"sexpc/internal/diag"
	"sexpc/internal/parser"
)

// LoadExpr parses the command line's literal expression. Per spec.md §6's
// CLI scenarios, EXPR is not necessarily a single form (e.g.
// `[var x 1] [fprint "%d\n" x]` is two) — it is parsed the same way a file
// is, as a sequence of top-level forms wrapped in a synthetic outer list,
// so a single-form EXPR like `(break)` dispatches through genExpr as one
// list rather than being misread as a multi-form sequence whose first
// "form" is the bare symbol `break`.
func LoadExpr(expr string) (ast.Node, *diag.Bag) {
	file := diag.NewFile("<expr>", expr)
	prog, diags := parser.ParseProgram(file)
	return prog, diags
}

// LoadFile reads path and parses it as a sequence of top-level forms.
func LoadFile(path string) (*ast.List, *diag.Bag, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("frontend: %w", err)
	}
	file := diag.NewFile(path, string(b))
	prog, diags := parser.ParseProgram(file)
	return prog, diags, nil
}

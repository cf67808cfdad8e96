// Command sexpc compiles a single S-expression program (spec.md §1) to a
// native binary by emitting LLVM IR and shelling out to opt/clang++.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"sexpc/internal/ast"
	"sexpc/internal/codegen"
	"sexpc/internal/diag"
	"sexpc/internal/frontend"
	"sexpc/internal/lint"
)

const forbiddenOutputChars = `/\:*?"<>|`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sexpc", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	expr := fs.String("e", "", "compile a literal expression")
	file := fs.String("f", "", "compile a file")
	out := fs.String("o", "out", "output base name")
	keep := fs.Bool("k", false, "keep emitted .ll files")
	lintPath := fs.String("l", "", "lint a file and print warnings")
	version := fs.Bool("v", false, "print version and exit")
	fs.Usage = func() { printUsage(fs) }

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	if *version {
		fmt.Println("sexpc", codegen.Version)
		return 0
	}
	if *lintPath != "" {
		return runLint(*lintPath)
	}
	if *expr == "" && *file == "" {
		fs.Usage()
		return 1
	}
	if strings.ContainsAny(*out, forbiddenOutputChars) {
		fmt.Fprintf(os.Stderr, "sexpc: invalid output name %q: must not contain %s\n", *out, forbiddenOutputChars)
		return 1
	}

	root, err := load(*expr, *file)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sexpc:", err)
		return 1
	}

	mod, err := codegen.Generate(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	llPath := *out + ".ll"
	if err := os.WriteFile(llPath, []byte(mod.String()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "sexpc: writing IR:", err)
		return 1
	}
	if !*keep {
		defer os.Remove(llPath)
	}

	optPath := *out + "-opt.ll"
	if err := runTool("opt", llPath, "-O3", "-S", "-o", optPath); err != nil {
		fmt.Fprintln(os.Stderr, "sexpc: optimization failed:", err)
		return 1
	}
	if !*keep {
		defer os.Remove(optPath)
	}

	if err := runTool("clang++", "-O3", optPath, "-o", *out); err != nil {
		fmt.Fprintln(os.Stderr, "sexpc: linking failed:", err)
		return 1
	}
	return 0
}

func runTool(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func load(expr, filePath string) (ast.Node, error) {
	if expr != "" {
		root, diags := frontend.LoadExpr(expr)
		if diags != nil && len(diags.Items) > 0 {
			diag.Print(os.Stderr, diags)
			return nil, fmt.Errorf("parse failed")
		}
		return root, nil
	}
	root, diags, err := frontend.LoadFile(filePath)
	if err != nil {
		return nil, err
	}
	if diags != nil && len(diags.Items) > 0 {
		diag.Print(os.Stderr, diags)
		return nil, fmt.Errorf("parse failed")
	}
	return root, nil
}

func runLint(path string) int {
	root, diags, err := frontend.LoadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sexpc:", err)
		return 1
	}
	if diags != nil && len(diags.Items) > 0 {
		diag.Print(os.Stderr, diags)
		return 1
	}
	warnings := lint.Check(root)
	for _, w := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", w.String())
	}
	if len(warnings) > 0 {
		return 2
	}
	return 0
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "sexpc - S-expression compiler")
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  sexpc -e EXPR [-o NAME] [-k]")
	fmt.Fprintln(os.Stderr, "  sexpc -f PATH [-o NAME] [-k]")
	fmt.Fprintln(os.Stderr, "  sexpc -l PATH")
	fmt.Fprintln(os.Stderr, "")
	fs.PrintDefaults()
}

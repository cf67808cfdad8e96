// Package codegen is the semantic analyzer / IR generator: the walker that
// turns a parsed AST (internal/ast) into LLVM IR (github.com/llir/llvm),
// maintaining lexical scopes (internal/env), resolving declared type tags
// (internal/types), and enforcing the assignment/type rules of spec §4.
//
// The dispatcher in dispatch.go is the main entry point; the rest of this
// file holds the process-wide compiler state spec §3 calls out explicitly:
// the active module, the active function, the active insertion block, the
// loop context stack, and the global scope.
package codegen

import (
	"fmt"
	"io"
	"os"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"

	"sexpc/internal/ast"
	"sexpc/internal/diag"
	"sexpc/internal/env"
	"sexpc/internal/irverify"
)

// warnSink is where non-fatal warnings (spec §7) are written. Tests may
// swap it for a buffer; cmd/sexpc leaves it at stderr.
var warnSink io.Writer = os.Stderr

// TargetTriple is a configuration constant, not intrinsic to the design
// (spec §4.6): the downstream toolchain this compiler feeds is fixed.
const TargetTriple = "x86_64-unknown-linux-gnu"

// Version is surfaced to the program as the `_VERSION` global (spec §3:
// "populated with built-in globals") and to the CLI's -v flag.
const Version = "0.1.0"

// Compiler holds every piece of process-wide state spec §3 names under
// "Compiler state". It is strictly single-threaded (spec §5); nothing here
// is safe for concurrent use, and nothing needs to be.
type Compiler struct {
	Module *ir.Module

	global *env.Scope

	curFn      *ir.Func
	curBlock   *ir.Block
	entryBlock *ir.Block // hoisting point for this function's allocas

	loopStack []loopFrame

	mallocFn  *ir.Func
	freeFn    *ir.Func
	printfFn  *ir.Func
	scanfFn   *ir.Func
	getcharFn *ir.Func

	anonCount int
	tb        diag.Traceback
}

type loopFrame struct {
	breakTarget, continueTarget *ir.Block
}

// Generate compiles root (the implicit top-level (scope ...) wrapping the
// whole program, per spec §4.6) into a verified LLVM module. It never
// returns a partially-built module on error: a *diag.Fatal aborts the walk
// via panic and is recovered here, matching spec §7's "no user-visible
// recovery; the contract is all-or-nothing IR emission".
func Generate(root ast.Node) (mod *ir.Module, err error) {
	c := &Compiler{Module: ir.NewModule()}
	c.Module.TargetTriple = TargetTriple
	c.global = env.NewGlobal()
	c.defineGlobals()
	c.ensurePrintf()
	c.ensureScanf()
	c.ensureGetchar()

	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diag.Fatal); ok {
				err = f
				mod = nil
				return
			}
			panic(r)
		}
	}()

	c.buildMain(root)

	if verr := irverify.Verify(c.Module); verr != nil {
		return nil, verr
	}
	return c.Module, nil
}

func (c *Compiler) fatal(n ast.Node, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	expr := ""
	if n != nil {
		expr = ast.Text(n)
	}
	panic(diag.NewFatal(msg, expr, &c.tb))
}

func (c *Compiler) warn(format string, args ...any) {
	diag.Warn(warnSink, format, args...)
}

// newAnonName mints a unique name for anonymous globals (string literals,
// array constants).
func (c *Compiler) newAnonName(prefix string) string {
	c.anonCount++
	return fmt.Sprintf(".%s.%d", prefix, c.anonCount)
}

func zeroI64() *constant.Int { return constant.NewInt(i64Type, 0) }

// Fatalf returns a *diag.Fatal carrying only the formatted message, with no
// expression text and no traceback. It does not panic.
func Fatalf(format string, args ...any) error {
	return diag.NewFatal(fmt.Sprintf(format, args...), "", nil)
}

package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"

	"sexpc/internal/ast"
	"sexpc/internal/env"
)

var (
	i64Type = irtypes.I64
	i32Type = irtypes.I32
	i8Type  = irtypes.I8
	i1Type  = irtypes.I1
)

// defineGlobals populates the root scope with the language's built-in
// globals (spec §3, "populated with built-in globals"): currently just
// `_VERSION`, a global signed-64 constant (spec §4.6).
func (c *Compiler) defineGlobals() {
	versionInt, err := versionToInt(Version)
	if err != nil {
		versionInt = 0
	}
	g := c.Module.NewGlobalDef(c.newAnonName("version"), constant.NewInt(i64Type, versionInt))
	g.Immutable = true
	c.global.Define("_VERSION", &env.Slot{Ptr: g, Elem: i64Type, Const: true})
}

// versionToInt packs a "MAJOR.MINOR.PATCH" tag into a single signed-64
// value (MAJOR*1_000_000 + MINOR*1_000 + PATCH) so `_VERSION` can be the
// int64 constant spec §4.6 calls for while the human-readable tag stays
// available to the CLI's -v flag.
func versionToInt(v string) (int64, error) {
	var major, minor, patch int64
	_, err := fmt.Sscanf(v, "%d.%d.%d", &major, &minor, &patch)
	if err != nil {
		return 0, err
	}
	return major*1_000_000 + minor*1_000 + patch, nil
}

// buildMain wraps root in the implicit top-level (scope ...) spec §4.6
// describes, builds it inside `main`, and emits `ret i64 0` once the body
// falls through (a program that never explicitly returns still produces a
// well-formed module). spec §6 fixes main's signature at `() -> i64`.
func (c *Compiler) buildMain(root ast.Node) {
	fn := c.Module.NewFunc("main", i64Type)
	entry := fn.NewBlock("entry")

	c.curFn = fn
	c.curBlock = entry
	c.entryBlock = entry

	bodyScope := c.global.MakeChild()
	if list, ok := root.(*ast.List); ok {
		c.evalSeq(list.Items, bodyScope)
	} else {
		c.evalSeq([]ast.Node{root}, bodyScope)
	}

	if c.curBlock.Term == nil {
		c.curBlock.NewRet(constant.NewInt(i64Type, 0))
	}
}

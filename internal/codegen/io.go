package codegen

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	"sexpc/internal/stringlit"
	sctypes "sexpc/internal/types"
)

func (c *Compiler) ensurePrintf() {
	if c.printfFn != nil {
		return
	}
	fn := c.Module.NewFunc("printf", i64Type, ir.NewParam("", sctypes.BytePtr))
	fn.Sig.Variadic = true
	c.printfFn = fn
}

func (c *Compiler) ensureScanf() {
	if c.scanfFn != nil {
		return
	}
	fn := c.Module.NewFunc("scanf", i64Type, ir.NewParam("", sctypes.BytePtr))
	fn.Sig.Variadic = true
	c.scanfFn = fn
}

func (c *Compiler) ensureGetchar() {
	if c.getcharFn != nil {
		return
	}
	c.getcharFn = c.Module.NewFunc("getchar", i64Type)
}

// newStringGlobal emits an anonymous NUL-terminated global for s and
// returns a pointer to its first byte, the shared tail of genStringLit and
// finput's %s-substituted format string.
func (c *Compiler) newStringGlobal(s string) value.Value {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := c.Module.NewGlobalDef(c.newAnonName("str"), data)
	g.Immutable = true
	return constant.NewGetElementPtr(data.Typ, g, constant.NewInt(i64Type, 0), constant.NewInt(i64Type, 0))
}

// genFprint implements (fprint FMT ARG…) (spec §4.4.9).
func (c *Compiler) genFprint(list *ast.List, scope *env.Scope) value.Value {
	c.arityAtLeast(list, 1, "fprint")
	c.ensurePrintf()
	args := make([]value.Value, 0, len(list.Items)-1)
	for _, item := range list.Items[1:] {
		args = append(args, c.genExpr(item, scope))
	}
	return c.curBlock.NewCall(c.printfFn, args...)
}

// genFinput implements (finput FMT VAR…) (spec §4.4.9): scanf plus the
// string-target buffer dance plus the getchar drain loop.
func (c *Compiler) genFinput(list *ast.List, scope *env.Scope) value.Value {
	c.arityAtLeast(list, 1, "finput")
	c.ensureScanf()

	varNodes := list.Items[2:]
	slots := make([]*env.Slot, len(varNodes))
	hasStringTarget := false
	for i, vn := range varNodes {
		name := c.headSymbol(vn, "finput")
		slot, ok := scope.Lookup(name)
		if !ok {
			c.fatal(vn, "undefined variable %q", name)
		}
		slots[i] = slot
		if sctypes.IsPointer(slot.Elem) {
			hasStringTarget = true
		}
	}

	var fmtVal value.Value
	if lit, ok := list.Items[1].(*ast.String); ok && hasStringTarget {
		decoded := stringlit.Decode(lit.Raw)
		fmtVal = c.newStringGlobal(strings.ReplaceAll(decoded, "%s", "%[^\n]"))
	} else {
		fmtVal = c.genExpr(list.Items[1], scope)
	}

	zero := constant.NewInt(i64Type, 0)
	scanfArgs := make([]value.Value, 0, len(slots)+1)
	scanfArgs = append(scanfArgs, fmtVal)
	for _, slot := range slots {
		if sctypes.IsPointer(slot.Elem) {
			buf := c.entryBlock.NewAlloca(irtypes.NewArray(256, i8Type))
			bufPtr := c.curBlock.NewGetElementPtr(buf.ElemType, buf, zero, zero)
			c.curBlock.NewStore(bufPtr, slot.Ptr)
			scanfArgs = append(scanfArgs, bufPtr)
			continue
		}
		scanfArgs = append(scanfArgs, slot.Ptr)
	}
	result := c.curBlock.NewCall(c.scanfFn, scanfArgs...)

	c.ensureGetchar()
	drainBlock := c.curFn.NewBlock(c.newAnonName("finput.drain"))
	afterBlock := c.curFn.NewBlock(c.newAnonName("finput.after"))
	c.curBlock.NewBr(drainBlock)

	c.curBlock = drainBlock
	ch := drainBlock.NewCall(c.getcharFn)
	isNewline := drainBlock.NewICmp(enum.IPredEQ, ch, constant.NewInt(i64Type, '\n'))
	isEOF := drainBlock.NewICmp(enum.IPredEQ, ch, constant.NewInt(i64Type, -1))
	stop := drainBlock.NewOr(isNewline, isEOF)
	drainBlock.NewCondBr(stop, afterBlock, drainBlock)

	c.curBlock = afterBlock
	return result
}

package codegen

import (
	"github.com/llir/llvm/ir"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	sctypes "sexpc/internal/types"
)

// genFuncForm implements (func NAME (PARAMS) [-> RET] BODY…) (spec §4.3):
// prototype synthesis, entry-block parameter slots, then body compilation
// with the previous insertion point saved and restored around it.
func (c *Compiler) genFuncForm(list *ast.List, scope *env.Scope) value.Value {
	c.arityAtLeast(list, 3, "func")
	name := c.headSymbol(list.Items[1], "func")
	paramList, ok := list.Items[2].(*ast.List)
	if !ok {
		c.fatal(list, "func %s: parameter list must be a list", name)
	}
	rest := list.Items[3:]

	retTag := "!int"
	if len(rest) >= 2 {
		if sym, ok := rest[0].(*ast.Symbol); ok && sym.Name == "->" {
			retTag = c.headSymbol(rest[1], "func")
			rest = rest[2:]
		}
	}
	if len(rest) == 0 {
		c.fatal(list, "func %s: missing body", name)
	}

	paramNames := make([]string, len(paramList.Items))
	paramTypes := make([]irtypes.Type, len(paramList.Items))
	for i, p := range paramList.Items {
		pname, ptag := c.parseNameDecl(p)
		pty, err := sctypes.Resolve(ptag, pname)
		if err != nil {
			if _, unknown := err.(*sctypes.UnknownTag); unknown {
				c.warn("%s", err.Error())
			} else {
				c.fatal(p, "%v", err)
			}
		}
		paramNames[i] = pname
		paramTypes[i] = pty
	}

	retTy, err := sctypes.Resolve(retTag, name)
	if err != nil {
		if _, unknown := err.(*sctypes.UnknownTag); unknown {
			c.warn("%s", err.Error())
		} else {
			c.fatal(list, "%v", err)
		}
	}

	irParams := make([]*ir.Param, len(paramNames))
	for i, pn := range paramNames {
		irParams[i] = ir.NewParam(pn, paramTypes[i])
	}
	fn := c.Module.NewFunc(name, retTy, irParams...)
	entry := fn.NewBlock(c.newAnonName("entry"))

	if scope.Define(name, &env.Slot{Func: fn}) {
		c.warn("func: %q redeclared in this scope", name)
	}

	prevFn, prevBlock, prevEntry := c.curFn, c.curBlock, c.entryBlock
	c.curFn, c.curBlock, c.entryBlock = fn, entry, entry

	fnScope := scope.MakeChild()
	for i, pn := range paramNames {
		ptr := entry.NewAlloca(paramTypes[i])
		entry.NewStore(irParams[i], ptr)
		fnScope.Define(pn, &env.Slot{Ptr: ptr, Elem: paramTypes[i]})
	}

	bodyVal := c.evalSeq(rest, fnScope)
	if c.curBlock.Term == nil {
		if _, isVoid := retTy.(*irtypes.VoidType); isVoid {
			c.curBlock.NewRet(nil)
		} else {
			ret := c.castTo(bodyVal, retTy)
			if !sctypes.Equal(ret.Type(), retTy) {
				c.fatal(list, "func %s: body type does not match declared return type", name)
			}
			c.curBlock.NewRet(ret)
		}
	}

	c.curFn, c.curBlock, c.entryBlock = prevFn, prevBlock, prevEntry
	return fn
}

// genCall implements the catch-all "non-special list is a call" rule
// (spec §4.4.10): CALLEE must resolve to a function reference, and the
// argument count must match the declared parameter count exactly.
func (c *Compiler) genCall(list *ast.List, scope *env.Scope) value.Value {
	calleeVal := c.genExpr(list.Items[0], scope)
	fn, ok := calleeVal.(*ir.Func)
	if !ok {
		c.fatal(list.Items[0], "call target is not a function")
	}
	if len(list.Items)-1 != len(fn.Params) {
		c.fatal(list, "%s: expected %d argument(s), got %d", fn.Name(), len(fn.Params), len(list.Items)-1)
	}
	args := make([]value.Value, len(fn.Params))
	for i, item := range list.Items[1:] {
		args[i] = c.castTo(c.genExpr(item, scope), fn.Params[i].Typ)
	}
	return c.curBlock.NewCall(fn, args...)
}

package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
)

// pushLoop/popLoop maintain the LIFO break/continue target stack (spec §3,
// "Loop context stack").
func (c *Compiler) pushLoop(breakTarget, continueTarget *ir.Block) {
	c.loopStack = append(c.loopStack, loopFrame{breakTarget: breakTarget, continueTarget: continueTarget})
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

// genLoop implements (loop E…): an unconditional infinite loop whose body
// falls through to itself (spec §4.4.7).
func (c *Compiler) genLoop(list *ast.List, scope *env.Scope) value.Value {
	headBlock := c.curFn.NewBlock(c.newAnonName("loop.head"))
	exitBlock := c.curFn.NewBlock(c.newAnonName("loop.exit"))

	c.curBlock.NewBr(headBlock)
	c.curBlock = headBlock

	c.pushLoop(exitBlock, headBlock)
	c.evalSeq(list.Items[1:], scope.MakeChild())
	if c.curBlock.Term == nil {
		c.curBlock.NewBr(headBlock)
	}
	c.popLoop()

	c.curBlock = exitBlock
	return zeroI64()
}

// genWhile implements (while COND BODY): pre-test loop, blocks
// cond -> body -> continue(=cond) -> break (spec §4.4.7).
func (c *Compiler) genWhile(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "while")

	condBlock := c.curFn.NewBlock(c.newAnonName("while.cond"))
	bodyBlock := c.curFn.NewBlock(c.newAnonName("while.body"))
	breakBlock := c.curFn.NewBlock(c.newAnonName("while.break"))

	c.curBlock.NewBr(condBlock)
	c.curBlock = condBlock
	condVal := c.genExpr(list.Items[1], scope)
	condBlock.NewCondBr(c.toBool1(list.Items[1], condVal), bodyBlock, breakBlock)

	c.pushLoop(breakBlock, condBlock)
	c.curBlock = bodyBlock
	c.genExpr(list.Items[2], scope.MakeChild())
	if c.curBlock.Term == nil {
		c.curBlock.NewBr(condBlock)
	}
	c.popLoop()

	c.curBlock = breakBlock
	return zeroI64()
}

// genFor implements (for INIT COND STEP BODY): classic three-part loop,
// blocks cond -> body -> step -> break, with INIT bound in a nested scope
// (spec §4.4.7).
func (c *Compiler) genFor(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 4, "for")
	forScope := scope.MakeChild()
	c.genExpr(list.Items[1], forScope) // INIT

	condBlock := c.curFn.NewBlock(c.newAnonName("for.cond"))
	bodyBlock := c.curFn.NewBlock(c.newAnonName("for.body"))
	stepBlock := c.curFn.NewBlock(c.newAnonName("for.step"))
	breakBlock := c.curFn.NewBlock(c.newAnonName("for.break"))

	c.curBlock.NewBr(condBlock)
	c.curBlock = condBlock
	condVal := c.genExpr(list.Items[2], forScope) // COND
	condBlock.NewCondBr(c.toBool1(list.Items[2], condVal), bodyBlock, breakBlock)

	c.pushLoop(breakBlock, stepBlock)
	c.curBlock = bodyBlock
	c.genExpr(list.Items[4], forScope.MakeChild()) // BODY
	if c.curBlock.Term == nil {
		c.curBlock.NewBr(stepBlock)
	}
	c.popLoop()

	c.curBlock = stepBlock
	c.genExpr(list.Items[3], forScope) // STEP
	if c.curBlock.Term == nil {
		c.curBlock.NewBr(condBlock)
	}

	c.curBlock = breakBlock
	return zeroI64()
}

// genBreak implements (break): branch to the innermost loop's break
// target, then open a fresh unreachable block so any source text that
// follows still has a valid insertion point (spec §4.4.7).
func (c *Compiler) genBreak(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 0, "break")
	if len(c.loopStack) == 0 {
		c.fatal(list, "break used outside any loop")
	}
	top := c.loopStack[len(c.loopStack)-1]
	c.curBlock.NewBr(top.breakTarget)
	c.curBlock = c.curFn.NewBlock(c.newAnonName("after.break"))
	return zeroI64()
}

// genContinue implements (continue): branch to the innermost loop's
// continue target (spec §4.4.7).
func (c *Compiler) genContinue(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 0, "continue")
	if len(c.loopStack) == 0 {
		c.fatal(list, "continue used outside any loop")
	}
	top := c.loopStack[len(c.loopStack)-1]
	c.curBlock.NewBr(top.continueTarget)
	c.curBlock = c.curFn.NewBlock(c.newAnonName("after.continue"))
	return zeroI64()
}

package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	sctypes "sexpc/internal/types"
)

// toBool1 converts a numeric value to the native i1 a condbr needs,
// testing against zero. Every boolean this compiler surfaces elsewhere is
// i8 (see internal/types.Bool); this is the one place it gets narrowed
// back down to LLVM's native predicate width.
func (c *Compiler) toBool1(n ast.Node, v value.Value) value.Value {
	switch t := v.Type().(type) {
	case *irtypes.IntType:
		return c.curBlock.NewICmp(enum.IPredNE, v, constant.NewInt(t, 0))
	case *irtypes.FloatType:
		return c.curBlock.NewFCmp(enum.FPredONE, v, constant.NewFloat(t, 0))
	default:
		c.fatal(n, "condition must be numeric")
		panic("unreachable")
	}
}

// branchArm is one live contributor to a merge block's φ-node.
type branchArm struct {
	block *ir.Block
	val   value.Value
}

// finishArm closes out a branch body: if its ending block hasn't already
// terminated, branch it to the merge block and record it as a live
// contributor. A break/continue inside the arm leaves the insertion point
// at a fresh unterminated block, which is branched to merge like any other.
func (c *Compiler) finishArm(mergeBlock *ir.Block, val value.Value) *branchArm {
	end := c.curBlock
	if end.Term != nil {
		return nil
	}
	end.NewBr(mergeBlock)
	return &branchArm{block: end, val: val}
}

// buildMerge assembles the φ-node (or degenerate 0/1-predecessor cases) for
// a set of live arms reaching mergeBlock, enforcing spec §4.4.6's "all
// branches must produce the same type" rule.
func (c *Compiler) buildMerge(n ast.Node, mergeBlock *ir.Block, arms []*branchArm, form string) value.Value {
	live := make([]*branchArm, 0, len(arms))
	for _, a := range arms {
		if a != nil {
			live = append(live, a)
		}
	}
	if len(live) == 0 {
		return zeroI64()
	}
	want := live[0].val.Type()
	for _, a := range live[1:] {
		if !sctypes.Equal(a.val.Type(), want) {
			c.fatal(n, "%s: branch types do not match", form)
		}
	}
	if len(live) == 1 {
		return live[0].val
	}
	incs := make([]*ir.Incoming, len(live))
	for i, a := range live {
		incs[i] = ir.NewIncoming(a.val, a.block)
	}
	return mergeBlock.NewPhi(incs...)
}

// genCheck implements (check COND THEN ELSE): exactly two branches,
// φ-merged (spec §4.4.6).
func (c *Compiler) genCheck(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 3, "check")

	condVal := c.genExpr(list.Items[1], scope)
	condBit := c.toBool1(list.Items[1], condVal)

	thenBlock := c.curFn.NewBlock(c.newAnonName("check.then"))
	elseBlock := c.curFn.NewBlock(c.newAnonName("check.else"))
	mergeBlock := c.curFn.NewBlock(c.newAnonName("check.merge"))

	c.curBlock.NewCondBr(condBit, thenBlock, elseBlock)

	c.curBlock = thenBlock
	thenVal := c.genExpr(list.Items[2], scope)
	thenArm := c.finishArm(mergeBlock, thenVal)

	c.curBlock = elseBlock
	elseVal := c.genExpr(list.Items[3], scope)
	elseArm := c.finishArm(mergeBlock, elseVal)

	c.curBlock = mergeBlock
	return c.buildMerge(list, mergeBlock, []*branchArm{thenArm, elseArm}, "check")
}

type ifArm struct {
	cond, body ast.Node
}

// parseIfArms accepts both bare COND BLOCK chaining and explicit
// elif/else markers, per spec §4.4.6's bracketed grammar.
func (c *Compiler) parseIfArms(list *ast.List) (arms []ifArm, elseBody ast.Node) {
	rest := list.Items[1:]
	if len(rest) < 2 {
		c.fatal(list, "if: expected at least a condition and a block")
	}
	arms = append(arms, ifArm{rest[0], rest[1]})
	i := 2
	for i < len(rest) {
		if sym, ok := rest[i].(*ast.Symbol); ok {
			switch sym.Name {
			case "elif":
				if i+2 >= len(rest) {
					c.fatal(list, "if: elif missing condition or block")
				}
				arms = append(arms, ifArm{rest[i+1], rest[i+2]})
				i += 3
				continue
			case "else":
				if i+1 >= len(rest) {
					c.fatal(list, "if: else missing block")
				}
				elseBody = rest[i+1]
				i += 2
				continue
			}
		}
		if i+1 >= len(rest) {
			c.fatal(list, "if: trailing condition without a block")
		}
		arms = append(arms, ifArm{rest[i], rest[i+1]})
		i += 2
	}
	return arms, elseBody
}

// genIf implements the chained (if C1 B1 [elif C2 B2]* [else Be]) form
// (spec §4.4.6): a linear chain of conditional branches, φ-merged.
func (c *Compiler) genIf(list *ast.List, scope *env.Scope) value.Value {
	arms, elseBody := c.parseIfArms(list)
	mergeBlock := c.curFn.NewBlock(c.newAnonName("if.merge"))

	var results []*branchArm
	cur := c.curBlock
	for i, a := range arms {
		isLast := i == len(arms)-1
		thenBlock := c.curFn.NewBlock(c.newAnonName("if.then"))

		var falseBlock *ir.Block
		switch {
		case !isLast:
			falseBlock = c.curFn.NewBlock(c.newAnonName("if.next"))
		case elseBody != nil:
			falseBlock = c.curFn.NewBlock(c.newAnonName("if.else"))
		default:
			falseBlock = mergeBlock
		}

		c.curBlock = cur
		condVal := c.genExpr(a.cond, scope)
		condBit := c.toBool1(a.cond, condVal)
		cur.NewCondBr(condBit, thenBlock, falseBlock)

		if isLast && elseBody == nil {
			// The chain falls straight through to merge without any
			// arm matching: spec §4.4.6's "return the signed-64 zero".
			results = append(results, &branchArm{block: cur, val: zeroI64()})
		}

		c.curBlock = thenBlock
		thenVal := c.genExpr(a.body, scope)
		results = append(results, c.finishArm(mergeBlock, thenVal))

		cur = falseBlock
	}

	if elseBody != nil {
		c.curBlock = cur
		elseVal := c.genExpr(elseBody, scope)
		results = append(results, c.finishArm(mergeBlock, elseVal))
	}

	c.curBlock = mergeBlock
	return c.buildMerge(list, mergeBlock, results, "if")
}

package codegen

import (
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
)

// genScopeForm implements (scope E1 E2 ... En) (spec §4.4.5): a child
// environment whose bindings vanish once this call returns, while any
// `var` inside it still allocates in the enclosing function's entry block
// — name visibility is scoped, storage lifetime is function-wide.
func (c *Compiler) genScopeForm(list *ast.List, scope *env.Scope) value.Value {
	return c.evalSeq(list.Items[1:], scope.MakeChild())
}

// evalSeq evaluates a sequence of forms in scope for side effect, in
// order, and returns the last one's value (the zero i64 constant if the
// sequence is empty). It stops early once the current block already has a
// terminator. break and continue leave the insertion point at a fresh,
// unterminated block, so forms after them are still compiled, into that
// unreachable block.
func (c *Compiler) evalSeq(items []ast.Node, scope *env.Scope) value.Value {
	last := value.Value(zeroI64())
	for _, item := range items {
		if c.curBlock.Term != nil {
			return last
		}
		last = c.genExpr(item, scope)
	}
	return last
}

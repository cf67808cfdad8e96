package codegen

import (
	"math"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
	irtypes "github.com/llir/llvm/ir/types"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	"sexpc/internal/stringlit"
)

// genNumberLit materializes a Number as the narrowest signed integer width
// that fits it (spec §4.4.1). Wider expressions widen it later via §4.5;
// there is no ambient "default to i64" here, only at the narrowing edges
// (type resolution, unknown tags) that spec.md actually names.
func (c *Compiler) genNumberLit(n *ast.Number) value.Value {
	switch {
	case n.Value >= math.MinInt8 && n.Value <= math.MaxInt8:
		return constant.NewInt(i8Type, n.Value)
	case n.Value >= math.MinInt16 && n.Value <= math.MaxInt16:
		return constant.NewInt(irtypes.I16, n.Value)
	case n.Value >= math.MinInt32 && n.Value <= math.MaxInt32:
		return constant.NewInt(i32Type, n.Value)
	default:
		return constant.NewInt(i64Type, n.Value)
	}
}

func (c *Compiler) genFractionalLit(n *ast.Fractional) value.Value {
	return constant.NewFloat(irtypes.Double, n.Value)
}

// genStringLit decodes the literal's escapes, emits an anonymous read-only
// global holding the NUL-terminated bytes, and returns a pointer to its
// first byte (spec §4.4.1).
func (c *Compiler) genStringLit(n *ast.String) value.Value {
	return c.newStringGlobal(stringlit.Decode(n.Raw))
}

// genSymbolRef resolves a bare Symbol: the two boolean literals, or a
// lookup against scope that either surfaces a function reference or loads
// a storage slot's current value (spec §4.4.1).
func (c *Compiler) genSymbolRef(n *ast.Symbol, scope *env.Scope) value.Value {
	switch n.Name {
	case "true":
		return constant.NewInt(i8Type, 1)
	case "false":
		return constant.NewInt(i8Type, 0)
	}
	slot, ok := scope.Lookup(n.Name)
	if !ok {
		c.fatal(n, "undefined variable %q", n.Name)
	}
	if slot.IsFunc() {
		return slot.Func
	}
	return c.curBlock.NewLoad(slot.Elem, slot.Ptr)
}

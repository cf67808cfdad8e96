package codegen

import (
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	sctypes "sexpc/internal/types"
)

// castTo implements spec §4.5's implicit casting rules: identity,
// integer-to-double (signed), pointer-to-pointer bitcast, and
// integer-width zext/trunc. A constant array of the same length as an
// array target is re-minted element-wise at the target's element type
// (castConstArray). Anything else is returned unchanged, leaving the
// caller's own type check (if any) to fail.
func (c *Compiler) castTo(v value.Value, target irtypes.Type) value.Value {
	vt := v.Type()
	if sctypes.Equal(vt, target) {
		return v
	}
	if varr, ok := vt.(*irtypes.ArrayType); ok {
		if tarr, ok2 := target.(*irtypes.ArrayType); ok2 {
			if arrConst, ok3 := v.(*constant.Array); ok3 && varr.Len == tarr.Len {
				return castConstArray(arrConst, tarr)
			}
		}
		return v
	}
	switch {
	case sctypes.IsInt(vt) && sctypes.IsFloat(target):
		return c.curBlock.NewSIToFP(v, target)
	case sctypes.IsPointer(vt) && sctypes.IsPointer(target):
		return c.curBlock.NewBitCast(v, target)
	case sctypes.IsInt(vt) && sctypes.IsInt(target):
		if sctypes.BitSize(target) > sctypes.BitSize(vt) {
			return c.curBlock.NewZExt(v, target)
		}
		return c.curBlock.NewTrunc(v, target)
	default:
		return v
	}
}

// castConstArray re-mints each element of a constant array literal at the
// declared array type's element width (spec §4.4.8's elements "share a
// type" refers to each other, not necessarily to the array variable's own
// declared element type — §4.5's widening still applies once the two
// meet at a var/const declaration). Elements that aren't plain integer or
// float constants are left as-is; the caller's own Equal check then
// reports the mismatch.
func castConstArray(arr *constant.Array, target *irtypes.ArrayType) *constant.Array {
	elems := make([]constant.Constant, len(arr.Elems))
	for i, e := range arr.Elems {
		elems[i] = castConstScalar(e, target.ElemType)
	}
	return constant.NewArray(target, elems...)
}

func castConstScalar(v constant.Constant, target irtypes.Type) constant.Constant {
	switch cv := v.(type) {
	case *constant.Int:
		if it, ok := target.(*irtypes.IntType); ok {
			return constant.NewInt(it, cv.X.Int64())
		}
	case *constant.Float:
		if ft, ok := target.(*irtypes.FloatType); ok {
			f, _ := cv.X.Float64()
			return constant.NewFloat(ft, f)
		}
	}
	return v
}

// commonType implements spec §4.4.2 step 1: double wins outright;
// otherwise the common type is the left operand's type, not the wider of
// the two — this is a deliberate asymmetry the spec states explicitly.
func commonType(lt, rt irtypes.Type) irtypes.Type {
	if sctypes.IsFloat(lt) || sctypes.IsFloat(rt) {
		return irtypes.Double
	}
	return lt
}

var binOpcode = map[string]struct {
	iop func(c *Compiler, x, y value.Value) value.Value
	fop func(c *Compiler, x, y value.Value) value.Value
}{
	"+": {
		iop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewAdd(x, y) },
		fop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewFAdd(x, y) },
	},
	"-": {
		iop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewSub(x, y) },
		fop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewFSub(x, y) },
	},
	"*": {
		iop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewMul(x, y) },
		fop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewFMul(x, y) },
	},
	"/": {
		iop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewSDiv(x, y) },
		fop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewFDiv(x, y) },
	},
	"%": {
		iop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewSRem(x, y) },
		fop: func(c *Compiler, x, y value.Value) value.Value { return c.curBlock.NewFRem(x, y) },
	},
}

var cmpPred = map[string]struct {
	ipred enum.IPred
	fpred enum.FPred
}{
	"<":  {enum.IPredSLT, enum.FPredOLT},
	"<=": {enum.IPredSLE, enum.FPredOLE},
	">":  {enum.IPredSGT, enum.FPredOGT},
	">=": {enum.IPredSGE, enum.FPredOGE},
	"==": {enum.IPredEQ, enum.FPredOEQ},
	"!=": {enum.IPredNE, enum.FPredONE},
}

// genBinOp handles the shared arithmetic/comparison family (spec §4.4.2).
func (c *Compiler) genBinOp(list *ast.List, scope *env.Scope) value.Value {
	op := canonicalOp(c.headSymbol(list.Items[0], "binary operator"))
	c.arity(list, 2, op)
	lhs := c.genExpr(list.Items[1], scope)
	rhs := c.genExpr(list.Items[2], scope)

	ct := commonType(lhs.Type(), rhs.Type())
	lhs = c.castTo(lhs, ct)
	rhs = c.castTo(rhs, ct)
	isFloat := sctypes.IsFloat(ct)

	if entry, ok := binOpcode[op]; ok {
		if isFloat {
			return entry.fop(c, lhs, rhs)
		}
		return entry.iop(c, lhs, rhs)
	}

	pred, ok := cmpPred[op]
	if !ok {
		c.fatal(list, "unknown arithmetic operator %q", op)
	}
	var bit1 value.Value
	if isFloat {
		bit1 = c.curBlock.NewFCmp(pred.fpred, lhs, rhs)
	} else {
		bit1 = c.curBlock.NewICmp(pred.ipred, lhs, rhs)
	}
	return c.curBlock.NewZExt(bit1, sctypes.Bool)
}

// unifyWidth widens the narrower of two integer operands up to the wider
// one's width (spec §4.4.3: "operand widths are unified by extension or
// truncation to the wider operand" — distinct from genBinOp's left-biased
// rule above).
func (c *Compiler) unifyWidth(x, y value.Value) (value.Value, value.Value) {
	xw, yw := sctypes.BitSize(x.Type()), sctypes.BitSize(y.Type())
	switch {
	case xw > yw:
		return x, c.curBlock.NewZExt(y, x.Type())
	case yw > xw:
		return c.curBlock.NewZExt(x, y.Type()), y
	default:
		return x, y
	}
}

// genBitwise handles bit-and/bit-or/bit-xor/bit-shl/bit-shr/bit-not (spec
// §4.4.3). All operands must be integer typed; that is enforced by
// castTo/unifyWidth's int-only helpers producing nonsense only if the
// caller already violated the type rule, which is itself a fatal error
// reported here.
func (c *Compiler) genBitwise(list *ast.List, scope *env.Scope) value.Value {
	op := c.headSymbol(list.Items[0], "bitwise operator")

	if op == "bit-not" {
		c.arity(list, 1, op)
		x := c.genExpr(list.Items[1], scope)
		if !sctypes.IsInt(x.Type()) {
			c.fatal(list, "bit-not: operand must be an integer type")
		}
		allOnes := constant.NewInt(x.Type().(*irtypes.IntType), -1)
		return c.curBlock.NewXor(x, allOnes)
	}

	c.arity(list, 2, op)
	x := c.genExpr(list.Items[1], scope)
	y := c.genExpr(list.Items[2], scope)
	if !sctypes.IsInt(x.Type()) || !sctypes.IsInt(y.Type()) {
		c.fatal(list, "%s: operands must be integer types", op)
	}
	x, y = c.unifyWidth(x, y)

	switch op {
	case "bit-and":
		return c.curBlock.NewAnd(x, y)
	case "bit-or":
		return c.curBlock.NewOr(x, y)
	case "bit-xor":
		return c.curBlock.NewXor(x, y)
	case "bit-shl":
		return c.curBlock.NewShl(x, y)
	case "bit-shr":
		return c.curBlock.NewLShr(x, y)
	default:
		c.fatal(list, "unknown bitwise operator %q", op)
		panic("unreachable")
	}
}

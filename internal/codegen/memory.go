package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	sctypes "sexpc/internal/types"
)

// genArray implements (array E1 … En) (spec §4.4.8): every element must be
// a compile-time constant, and the first element's type governs the rest.
func (c *Compiler) genArray(list *ast.List, scope *env.Scope) value.Value {
	c.arityAtLeast(list, 1, "array")
	elems := make([]constant.Constant, 0, len(list.Items)-1)
	var elemTy irtypes.Type
	for _, item := range list.Items[1:] {
		v := c.genExpr(item, scope)
		cv, ok := v.(constant.Constant)
		if !ok {
			c.fatal(item, "array: element must be a compile-time constant")
		}
		if elemTy == nil {
			elemTy = cv.Type()
		} else if !sctypes.Equal(cv.Type(), elemTy) {
			c.fatal(item, "array: element type does not match the array's element type")
		}
		elems = append(elems, cv)
	}
	return constant.NewArray(irtypes.NewArray(uint64(len(elems)), elemTy), elems...)
}

// indexPtr resolves (index NAME IDX) to an element pointer plus its
// pointee type, shared by genIndex (load) and genSet (store).
func (c *Compiler) indexPtr(list *ast.List, scope *env.Scope) (value.Value, irtypes.Type) {
	c.arity(list, 2, "index")
	name := c.headSymbol(list.Items[1], "index")
	slot, ok := scope.Lookup(name)
	if !ok {
		c.fatal(list, "undefined variable %q", name)
	}
	if slot.ArrayElem == nil {
		c.fatal(list, "%q is not an array variable", name)
	}
	idxVal := c.genExpr(list.Items[2], scope)
	if !sctypes.IsInt(idxVal.Type()) {
		c.fatal(list, "index: subscript must be an integer")
	}
	zero := constant.NewInt(i64Type, 0)
	ptr := c.curBlock.NewGetElementPtr(slot.Elem, slot.Ptr, zero, idxVal)
	return ptr, slot.ArrayElem
}

func (c *Compiler) genIndex(list *ast.List, scope *env.Scope) value.Value {
	ptr, elemTy := c.indexPtr(list, scope)
	return c.curBlock.NewLoad(elemTy, ptr)
}

// genSizeof implements (sizeof TYPETAG) (spec §4.4.8).
func (c *Compiler) genSizeof(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 1, "sizeof")
	tag := c.headSymbol(list.Items[1], "sizeof")
	ty, err := sctypes.Resolve(tag, "sizeof")
	if err != nil {
		if _, unknown := err.(*sctypes.UnknownTag); unknown {
			c.warn("%s", err.Error())
		} else {
			c.fatal(list, "%v", err)
		}
	}
	return constant.NewInt(i64Type, sctypes.SizeOf(ty))
}

func (c *Compiler) ensureMalloc() {
	if c.mallocFn != nil {
		return
	}
	c.mallocFn = c.Module.NewFunc("malloc", sctypes.BytePtr, ir.NewParam("", i64Type))
}

func (c *Compiler) ensureFree() {
	if c.freeFn != nil {
		return
	}
	c.freeFn = c.Module.NewFunc("free", irtypes.Void, ir.NewParam("", sctypes.BytePtr))
}

// genMemAlloc implements (mem-alloc SIZE), declaring malloc on first use
// (spec §4.4.8, §6.2).
func (c *Compiler) genMemAlloc(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 1, "mem-alloc")
	c.ensureMalloc()
	size := c.castTo(c.genExpr(list.Items[1], scope), i64Type)
	return c.curBlock.NewCall(c.mallocFn, size)
}

// genMemFree implements (mem-free PTR).
func (c *Compiler) genMemFree(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 1, "mem-free")
	c.ensureFree()
	ptr := c.castTo(c.genExpr(list.Items[1], scope), sctypes.BytePtr)
	c.curBlock.NewCall(c.freeFn, ptr)
	return zeroI64()
}

func (c *Compiler) resolveMemType(n ast.Node, form string) irtypes.Type {
	tag := c.headSymbol(n, form)
	ty, err := sctypes.Resolve(tag, form)
	if err != nil {
		if _, unknown := err.(*sctypes.UnknownTag); unknown {
			c.warn("%s", err.Error())
		} else {
			c.fatal(n, "%v", err)
		}
	}
	return ty
}

// genMemRead implements (mem-read PTR TYPETAG): cast PTR to a pointer of
// the named type, then load (spec §4.4.8).
func (c *Compiler) genMemRead(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "mem-read")
	ptr := c.genExpr(list.Items[1], scope)
	ty := c.resolveMemType(list.Items[2], "mem-read")
	typed := c.castTo(ptr, irtypes.NewPointer(ty))
	return c.curBlock.NewLoad(ty, typed)
}

// genMemWrite implements (mem-write PTR VALUE): cast PTR to a pointer of
// VALUE's own type, then store (spec §4.4.8).
func (c *Compiler) genMemWrite(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "mem-write")
	ptr := c.genExpr(list.Items[1], scope)
	val := c.genExpr(list.Items[2], scope)
	typed := c.castTo(ptr, irtypes.NewPointer(val.Type()))
	c.curBlock.NewStore(val, typed)
	return val
}

// genMemPtr implements (mem-ptr NAME): the variable's storage address as
// an opaque byte pointer (spec §4.4.8).
func (c *Compiler) genMemPtr(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 1, "mem-ptr")
	name := c.headSymbol(list.Items[1], "mem-ptr")
	slot, ok := scope.Lookup(name)
	if !ok {
		c.fatal(list, "undefined variable %q", name)
	}
	return c.curBlock.NewBitCast(slot.Ptr, sctypes.BytePtr)
}

// genMemDeref implements (mem-deref PTR TYPETAG): load PTR as TYPETAG,
// same shape as mem-read (spec §4.4.8 names it separately for the
// dereference-expression position rather than the read-statement one).
func (c *Compiler) genMemDeref(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "mem-deref")
	ptr := c.genExpr(list.Items[1], scope)
	ty := c.resolveMemType(list.Items[2], "mem-deref")
	typed := c.castTo(ptr, irtypes.NewPointer(ty))
	return c.curBlock.NewLoad(ty, typed)
}

// genByteRead/genByteWrite are the 8-bit specializations of mem-read/
// mem-write (spec §4.4.8).
func (c *Compiler) genByteRead(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 1, "byte-read")
	ptr := c.genExpr(list.Items[1], scope)
	typed := c.castTo(ptr, irtypes.NewPointer(i8Type))
	return c.curBlock.NewLoad(i8Type, typed)
}

func (c *Compiler) genByteWrite(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "byte-write")
	ptr := c.genExpr(list.Items[1], scope)
	val := c.castTo(c.genExpr(list.Items[2], scope), i8Type)
	typed := c.castTo(ptr, irtypes.NewPointer(i8Type))
	c.curBlock.NewStore(val, typed)
	return val
}

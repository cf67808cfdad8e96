package codegen

import (
	irtypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"sexpc/internal/ast"
	"sexpc/internal/env"
	sctypes "sexpc/internal/types"
)

// parseNameDecl reads a NAMEDECL: a bare Symbol (type defaults to !int)
// or a (NAME TYPETAG) list (spec §4.4.4).
func (c *Compiler) parseNameDecl(n ast.Node) (name, tag string) {
	switch decl := n.(type) {
	case *ast.Symbol:
		return decl.Name, "!int"
	case *ast.List:
		if len(decl.Items) != 2 {
			c.fatal(n, "malformed name declaration: expected (NAME TYPETAG)")
		}
		return c.headSymbol(decl.Items[0], "name declaration"), c.headSymbol(decl.Items[1], "name declaration")
	default:
		c.fatal(n, "malformed name declaration")
		panic("unreachable")
	}
}

func (c *Compiler) genVarForm(list *ast.List, scope *env.Scope) value.Value {
	return c.genDecl(list, scope, false)
}

func (c *Compiler) genConstForm(list *ast.List, scope *env.Scope) value.Value {
	return c.genDecl(list, scope, true)
}

// genDecl implements (var NAMEDECL INIT) and (const NAMEDECL INIT) (spec
// §4.4.4): resolve the declared type, evaluate and widen the initializer,
// hoist a stack slot into the entry block, store, and bind.
func (c *Compiler) genDecl(list *ast.List, scope *env.Scope, isConst bool) value.Value {
	form := "var"
	if isConst {
		form = "const"
	}
	c.arity(list, 2, form)
	name, tag := c.parseNameDecl(list.Items[1])

	elemTy, err := sctypes.Resolve(tag, name)
	if err != nil {
		if _, unknown := err.(*sctypes.UnknownTag); unknown {
			c.warn("%s", err.Error())
		} else {
			c.fatal(list, "%v", err)
		}
	}

	init := c.genExpr(list.Items[2], scope)
	casted := c.castTo(init, elemTy)
	if !sctypes.Equal(casted.Type(), elemTy) {
		c.fatal(list, "%s %s: initializer type does not match declared type", form, name)
	}

	ptr := c.entryBlock.NewAlloca(elemTy)
	c.curBlock.NewStore(casted, ptr)

	slot := &env.Slot{Ptr: ptr, Elem: elemTy, Const: isConst}
	if arr, ok := elemTy.(*irtypes.ArrayType); ok {
		slot.ArrayElem = arr.ElemType
		slot.ArrayLen = arr.Len
	}
	if scope.Define(name, slot) {
		c.warn("%s: %q redeclared in this scope", form, name)
	}
	return casted
}

// genSet implements (set TARGET VALUE): TARGET is a plain variable name or
// an (index NAME IDX) array element target (spec §4.4.4).
func (c *Compiler) genSet(list *ast.List, scope *env.Scope) value.Value {
	c.arity(list, 2, "set")

	if idxList, ok := list.Items[1].(*ast.List); ok {
		if head, ok := idxList.Head(); ok && canonicalOp(head) == "index" {
			ptr, elemTy := c.indexPtr(idxList, scope)
			val := c.genExpr(list.Items[2], scope)
			casted := c.castTo(val, elemTy)
			if !sctypes.Equal(casted.Type(), elemTy) {
				c.fatal(list, "set: value type does not match array element type")
			}
			c.curBlock.NewStore(casted, ptr)
			return casted
		}
	}

	target, ok := list.Items[1].(*ast.Symbol)
	if !ok {
		c.fatal(list, "set: target must be a variable name or (index NAME IDX)")
	}
	slot, ok := scope.Lookup(target.Name)
	if !ok {
		c.fatal(list, "undefined variable %q", target.Name)
	}
	if slot.Const {
		c.fatal(list, "cannot set %q: declared const", target.Name)
	}
	val := c.genExpr(list.Items[2], scope)
	casted := c.castTo(val, slot.Elem)
	if !sctypes.Equal(casted.Type(), slot.Elem) {
		c.fatal(list, "set %q: value type does not match variable's declared type", target.Name)
	}
	c.curBlock.NewStore(casted, slot.Ptr)
	return casted
}

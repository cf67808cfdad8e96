// Package lint implements the small set of stylistic checks spec.md names
// as an external collaborator ("out of scope") but the CLI's -l flag still
// needs something concrete to run. These are syntactic heuristics over the
// AST, not a second type checker: unused var, shadowed name, an `if`
// without `else` used where its value is consumed, and a `for` step that
// doesn't touch the loop's own induction variable.
package lint

import (
	"fmt"

	"sexpc/internal/ast"
)

// Warning is one lint finding; it never aborts compilation (spec §7's
// taxonomy has no "lint" row — these are advisory only).
type Warning struct {
	Msg  string
	Span ast.Node
}

func (w Warning) String() string { return w.Msg }

type scope struct {
	declared map[string]bool
	used     map[string]bool
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{declared: map[string]bool{}, used: map[string]bool{}, parent: parent}
}

// Check walks root and returns every warning found. Shadowing, if and for
// warnings appear in traversal order; unused-declaration warnings are
// appended when each scope is closed, in no defined order among themselves.
func Check(root ast.Node) []Warning {
	c := &checker{}
	top := newScope(nil)
	c.walk(root, top, false)
	c.flushUnused(top)
	return c.warnings
}

type checker struct {
	warnings []Warning
}

func (c *checker) warn(n ast.Node, format string, args ...any) {
	c.warnings = append(c.warnings, Warning{Msg: fmt.Sprintf(format, args...), Span: n})
}

// walk visits n. nested reports whether n sits in a sub-expression
// position (an argument to another list) rather than a sequential
// statement position — the signal checkIf uses to guess
// whether the merged value is actually consumed.
func (c *checker) walk(n ast.Node, sc *scope, nested bool) {
	list, ok := n.(*ast.List)
	if !ok {
		if sym, ok := n.(*ast.Symbol); ok {
			c.markUsed(sym.Name, sc)
		}
		return
	}
	if len(list.Items) == 0 {
		return
	}
	head, isSym := list.Head()
	if !isSym {
		c.walkChildren(list.Items, sc, true)
		return
	}

	switch head {
	case "var", "const":
		c.checkDecl(list, sc)
	case "scope":
		inner := newScope(sc)
		c.walkChildren(list.Items[1:], inner, false)
		c.flushUnused(inner)
	case "func":
		c.checkFunc(list, sc)
	case "if":
		c.checkIf(list, sc, nested)
		c.walkChildren(list.Items[1:], sc, true)
	case "for":
		c.checkFor(list, sc)
		inner := newScope(sc)
		c.walkChildren(list.Items[1:], inner, true)
		c.flushUnused(inner)
	default:
		c.walkChildren(list.Items, sc, true)
	}
}

func (c *checker) walkChildren(items []ast.Node, sc *scope, nested bool) {
	for _, item := range items {
		c.walk(item, sc, nested)
	}
}

func (c *checker) markUsed(name string, sc *scope) {
	for s := sc; s != nil; s = s.parent {
		if s.declared[name] {
			s.used[name] = true
			return
		}
	}
}

// checkDecl flags shadowing (a name declared in this scope that already
// exists in an ancestor) and registers the name as unused until a
// reference is seen.
func (c *checker) checkDecl(list *ast.List, sc *scope) {
	if len(list.Items) < 3 {
		return
	}
	name := declName(list.Items[1])
	if name == "" {
		return
	}
	for s := sc.parent; s != nil; s = s.parent {
		if s.declared[name] {
			c.warn(list, "%q shadows an outer declaration", name)
			break
		}
	}
	sc.declared[name] = true
	c.walk(list.Items[2], sc, true)
}

func declName(n ast.Node) string {
	switch d := n.(type) {
	case *ast.Symbol:
		return d.Name
	case *ast.List:
		if len(d.Items) > 0 {
			if sym, ok := d.Items[0].(*ast.Symbol); ok {
				return sym.Name
			}
		}
	}
	return ""
}

func (c *checker) checkFunc(list *ast.List, sc *scope) {
	inner := newScope(sc)
	for _, item := range list.Items {
		c.walk(item, inner, true)
	}
	c.flushUnused(inner)
}

// checkIf warns when an (if ...) carrying no `else` clause sits in a
// sub-expression position, where its implicit zero-on-fallthrough value
// is likely being relied upon silently.
func (c *checker) checkIf(list *ast.List, sc *scope, nested bool) {
	if !nested {
		return
	}
	for _, item := range list.Items[1:] {
		if sym, ok := item.(*ast.Symbol); ok && sym.Name == "else" {
			return
		}
	}
	c.warn(list, "if without else used where its value is consumed")
}

// checkFor warns when the STEP clause's outer `set` targets a variable
// other than the one `for` itself declared in INIT.
func (c *checker) checkFor(list *ast.List, sc *scope) {
	if len(list.Items) != 5 {
		return
	}
	loopVar := ""
	if initList, ok := list.Items[1].(*ast.List); ok && len(initList.Items) >= 2 {
		loopVar = declName(initList.Items[1])
	}
	if loopVar == "" {
		return
	}
	if step, ok := list.Items[3].(*ast.List); ok {
		if head, ok := step.Head(); ok && head == "set" && len(step.Items) >= 2 {
			if target, ok := step.Items[1].(*ast.Symbol); ok && target.Name != loopVar {
				c.warn(list, "for: step modifies %q, not the declared loop variable %q", target.Name, loopVar)
			}
		}
	}
}

func (c *checker) flushUnused(sc *scope) {
	for name := range sc.declared {
		if !sc.used[name] {
			c.warn(nil, "%q is declared but never used", name)
		}
	}
}

// Package ast defines the S-expression AST produced by the parser and
// consumed by the semantic analyzer / IR generator in internal/codegen.
package ast

import (
	"strconv"

	"sexpc/internal/diag"
)

// Node is the closed sum of AST variants. A non-empty List's first child
// determines the construct's head when it is a Symbol; otherwise the list
// is a call whose callee is an expression.
type Node interface {
	nodeKind()
	Span() diag.Span
}

type Number struct {
	Value int64
	S     diag.Span
}

func (*Number) nodeKind()           {}
func (n *Number) Span() diag.Span { return n.S }

type Fractional struct {
	Value float64
	S     diag.Span
}

func (*Fractional) nodeKind()           {}
func (n *Fractional) Span() diag.Span { return n.S }

type Symbol struct {
	Name string
	S    diag.Span
}

func (*Symbol) nodeKind()           {}
func (n *Symbol) Span() diag.Span { return n.S }

type List struct {
	Items []Node
	S     diag.Span
}

func (*List) nodeKind()           {}
func (n *List) Span() diag.Span { return n.S }

// Head returns the list's head symbol name and true if the list is
// non-empty and its first child is a Symbol.
func (n *List) Head() (string, bool) {
	if len(n.Items) == 0 {
		return "", false
	}
	sym, ok := n.Items[0].(*Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// String is a raw, unescaped string literal. Escape processing (\n, \t) is
// a codegen-time concern (internal/stringlit), not a parse-time one.
type String struct {
	Raw string
	S   diag.Span
}

func (*String) nodeKind()           {}
func (n *String) Span() diag.Span { return n.S }

// Text renders a node's textual form for diagnostics and traceback entries.
// It is not a full pretty-printer; it is intentionally compact.
func Text(n Node) string {
	switch v := n.(type) {
	case *Number:
		return strconv.FormatInt(v.Value, 10)
	case *Fractional:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *Symbol:
		return v.Name
	case *String:
		return `"` + v.Raw + `"`
	case *List:
		s := "("
		for i, it := range v.Items {
			if i > 0 {
				s += " "
			}
			s += Text(it)
		}
		return s + ")"
	default:
		return "<?>"
	}
}

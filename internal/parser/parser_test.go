package parser

import (
	"testing"

	"sexpc/internal/ast"
	"sexpc/internal/diag"
)

func TestParseSimpleList(t *testing.T) {
	f := diag.NewFile("t", `(+ 1 2)`)
	n, diags := Parse(f)
	if diags != nil && len(diags.Items) > 0 {
		t.Fatalf("unexpected diags: %+v", diags.Items)
	}
	list, ok := n.(*ast.List)
	if !ok {
		t.Fatalf("expected *ast.List, got %T", n)
	}
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(list.Items))
	}
	head, ok := list.Head()
	if !ok || head != "+" {
		t.Fatalf("expected head '+', got %q (ok=%v)", head, ok)
	}
}

func TestParseSquareBracketsEquivalentToParens(t *testing.T) {
	paren, _ := Parse(diag.NewFile("t", `(var x 1)`))
	square, _ := Parse(diag.NewFile("t", `[var x 1]`))
	if ast.Text(paren) != ast.Text(square) {
		t.Fatalf("expected equivalent ASTs, got %q vs %q", ast.Text(paren), ast.Text(square))
	}
}

func TestParseMismatchedBracketsStillAccepted(t *testing.T) {
	n, diags := Parse(diag.NewFile("t", `(var x 1]`))
	if diags != nil && len(diags.Items) > 0 {
		t.Fatalf("unexpected diags for interchangeable brackets: %+v", diags.Items)
	}
	if _, ok := n.(*ast.List); !ok {
		t.Fatalf("expected *ast.List, got %T", n)
	}
}

func TestParseProgramWrapsTopLevelForms(t *testing.T) {
	f := diag.NewFile("t", `(var x 1) (fprint "%d\n" x)`)
	prog, diags := ParseProgram(f)
	if diags != nil && len(diags.Items) > 0 {
		t.Fatalf("unexpected diags: %+v", diags.Items)
	}
	if len(prog.Items) != 2 {
		t.Fatalf("expected 2 top-level forms, got %d", len(prog.Items))
	}
}

func TestParseUnclosedListReportsDiag(t *testing.T) {
	_, diags := Parse(diag.NewFile("t", `(+ 1 2`))
	if diags == nil || len(diags.Items) == 0 {
		t.Fatalf("expected a diagnostic for an unclosed list")
	}
}

func TestParseNestedTypeTag(t *testing.T) {
	n, diags := Parse(diag.NewFile("t", `(var (x !ptr<!int>) 0)`))
	if diags != nil && len(diags.Items) > 0 {
		t.Fatalf("unexpected diags: %+v", diags.Items)
	}
	list := n.(*ast.List)
	decl := list.Items[1].(*ast.List)
	tag := decl.Items[1].(*ast.Symbol)
	if tag.Name != "!ptr<!int>" {
		t.Fatalf("expected tag !ptr<!int>, got %q", tag.Name)
	}
}

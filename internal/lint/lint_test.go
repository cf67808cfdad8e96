package lint

import (
	"strings"
	"testing"

	"sexpc/internal/diag"
	"sexpc/internal/parser"
)

func check(t *testing.T, src string) []Warning {
	t.Helper()
	n, diags := parser.Parse(diag.NewFile("t", src))
	if diags != nil && len(diags.Items) > 0 {
		t.Fatalf("unexpected parse diags: %+v", diags.Items)
	}
	return Check(n)
}

func containsMsg(warnings []Warning, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w.Msg, substr) {
			return true
		}
	}
	return false
}

func TestUnusedVarWarns(t *testing.T) {
	warnings := check(t, `(scope (var x 1) (var y 2) (fprint "%d\n" y))`)
	if !containsMsg(warnings, `"x" is declared but never used`) {
		t.Fatalf("expected an unused-variable warning, got %+v", warnings)
	}
	if containsMsg(warnings, `"y" is declared but never used`) {
		t.Fatalf("did not expect a warning for the used variable y, got %+v", warnings)
	}
}

func TestShadowedNameWarns(t *testing.T) {
	warnings := check(t, `(scope (var x 1) (scope (var x 2) (fprint "%d\n" x)))`)
	if !containsMsg(warnings, `shadows an outer declaration`) {
		t.Fatalf("expected a shadowing warning, got %+v", warnings)
	}
}

func TestIfWithoutElseUsedAsValueWarns(t *testing.T) {
	warnings := check(t, `(var x (+ 1 (if (> 1 0) 2)))`)
	if !containsMsg(warnings, "if without else used where its value is consumed") {
		t.Fatalf("expected an if-without-else warning, got %+v", warnings)
	}
}

func TestIfWithoutElseAsStatementDoesNotWarn(t *testing.T) {
	warnings := check(t, `(scope (if (> 1 0) (fprint "hi\n")))`)
	if containsMsg(warnings, "if without else") {
		t.Fatalf("did not expect a warning for a statement-position if, got %+v", warnings)
	}
}

func TestForStepOnWrongVariableWarns(t *testing.T) {
	warnings := check(t, `(for (var i 0) (< i 10) (set j (+ i 1)) (fprint "%d\n" i))`)
	if !containsMsg(warnings, `step modifies "j"`) {
		t.Fatalf("expected a for-step warning, got %+v", warnings)
	}
}

func TestForStepOnLoopVariableDoesNotWarn(t *testing.T) {
	warnings := check(t, `(for (var i 0) (< i 10) (set i (+ i 1)) (fprint "%d\n" i))`)
	if containsMsg(warnings, "step modifies") {
		t.Fatalf("did not expect a for-step warning, got %+v", warnings)
	}
}

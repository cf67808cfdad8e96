package irverify

import (
	"strings"
	"testing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	irtypes "github.com/llir/llvm/ir/types"
)

func TestVerifyAcceptsTerminatedSingleBlock(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("main", irtypes.I64)
	entry := fn.NewBlock("entry")
	entry.NewRet(constant.NewInt(irtypes.I64, 0))

	if err := Verify(mod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyRejectsMissingTerminator(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("main", irtypes.I64)
	fn.NewBlock("entry") // never terminated

	err := Verify(mod)
	if err == nil || !strings.Contains(err.Error(), "no terminator") {
		t.Fatalf("expected a missing-terminator error, got %v", err)
	}
}

func TestVerifySkipsDeclarationsWithoutBlocks(t *testing.T) {
	mod := ir.NewModule()
	mod.NewFunc("printf", irtypes.I64) // external declaration, no body

	if err := Verify(mod); err != nil {
		t.Fatalf("unexpected error for a bodyless declaration: %v", err)
	}
}

func TestVerifyAcceptsCorrectPhi(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("main", irtypes.I64)
	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	merge := fn.NewBlock("merge")

	entry.NewCondBr(constant.NewInt(irtypes.I1, 1), thenB, elseB)
	thenB.NewBr(merge)
	elseB.NewBr(merge)
	phi := merge.NewPhi(
		ir.NewIncoming(constant.NewInt(irtypes.I64, 1), thenB),
		ir.NewIncoming(constant.NewInt(irtypes.I64, 2), elseB),
	)
	merge.NewRet(phi)

	if err := Verify(mod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyRejectsPhiMissingPredecessor(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("main", irtypes.I64)
	entry := fn.NewBlock("entry")
	thenB := fn.NewBlock("then")
	elseB := fn.NewBlock("else")
	merge := fn.NewBlock("merge")

	entry.NewCondBr(constant.NewInt(irtypes.I1, 1), thenB, elseB)
	thenB.NewBr(merge)
	elseB.NewBr(merge)
	// Missing the elseB incoming value.
	phi := merge.NewPhi(
		ir.NewIncoming(constant.NewInt(irtypes.I64, 1), thenB),
	)
	merge.NewRet(phi)

	err := Verify(mod)
	if err == nil || !strings.Contains(err.Error(), "missing predecessor") {
		t.Fatalf("expected a missing-predecessor error, got %v", err)
	}
}

func TestVerifyRejectsPhiWithExtraPredecessor(t *testing.T) {
	mod := ir.NewModule()
	fn := mod.NewFunc("main", irtypes.I64)
	entry := fn.NewBlock("entry")
	merge := fn.NewBlock("merge")
	other := fn.NewBlock("other")

	entry.NewBr(merge)
	other.NewRet(constant.NewInt(irtypes.I64, 0))
	// other is not actually a predecessor of merge, but claims to be.
	phi := merge.NewPhi(
		ir.NewIncoming(constant.NewInt(irtypes.I64, 1), entry),
		ir.NewIncoming(constant.NewInt(irtypes.I64, 2), other),
	)
	merge.NewRet(phi)

	if err := Verify(mod); err == nil {
		t.Fatalf("expected an error for a phi with an extra, non-predecessor incoming block")
	}
}

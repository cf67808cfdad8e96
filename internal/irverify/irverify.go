// Package irverify checks the structural invariants spec §3/§8 name that
// github.com/llir/llvm's builder API does not itself enforce: llir/llvm
// happily constructs a module with an unterminated block or a φ-node whose
// incoming list doesn't match its block's actual predecessors — it is a
// builder, not a verifier. This is the pass internal/codegen's module
// emitter (§4.6, "verify the module") calls before printing textual IR,
// grounded on the C++ original's own call into LLVM's verifier
// (original_source/source/morningllvm.cpp).
package irverify

import (
	"fmt"

	"github.com/llir/llvm/ir"
)

// Verify checks every defined function in mod for the invariants this
// compiler relies on. Declared (bodyless) functions are skipped.
func Verify(mod *ir.Module) error {
	for _, fn := range mod.Funcs {
		if len(fn.Blocks) == 0 {
			continue
		}
		if err := verifyFunc(fn); err != nil {
			return err
		}
	}
	return nil
}

func verifyFunc(fn *ir.Func) error {
	preds := predecessors(fn)
	for _, b := range fn.Blocks {
		if b.Term == nil {
			return fmt.Errorf("irverify: function %q: block %q has no terminator", fn.Name(), b.Name())
		}
		for _, inst := range b.Insts {
			phi, ok := inst.(*ir.InstPhi)
			if !ok {
				continue
			}
			if err := verifyPhi(fn, b, phi, preds[b]); err != nil {
				return err
			}
		}
	}
	return nil
}

// predecessors maps each block to the set of blocks whose terminator
// branches to it, by scanning every block's terminator once.
func predecessors(fn *ir.Func) map[*ir.Block]map[*ir.Block]bool {
	preds := make(map[*ir.Block]map[*ir.Block]bool, len(fn.Blocks))
	for _, b := range fn.Blocks {
		preds[b] = map[*ir.Block]bool{}
	}
	for _, b := range fn.Blocks {
		for _, succ := range successors(b) {
			if preds[succ] == nil {
				preds[succ] = map[*ir.Block]bool{}
			}
			preds[succ][b] = true
		}
	}
	return preds
}

func successors(b *ir.Block) []*ir.Block {
	switch term := b.Term.(type) {
	case *ir.TermBr:
		return []*ir.Block{term.Target}
	case *ir.TermCondBr:
		return []*ir.Block{term.TargetTrue, term.TargetFalse}
	default:
		return nil
	}
}

// verifyPhi checks that phi's incoming block set is exactly want (spec §3:
// "A φ-node's incoming list enumerates exactly the predecessor blocks live
// at the merge point").
func verifyPhi(fn *ir.Func, b *ir.Block, phi *ir.InstPhi, want map[*ir.Block]bool) error {
	got := make(map[*ir.Block]bool, len(phi.Incs))
	for _, inc := range phi.Incs {
		got[inc.Pred] = true
	}
	for p := range want {
		if !got[p] {
			return fmt.Errorf("irverify: function %q: block %q: phi is missing predecessor %q",
				fn.Name(), b.Name(), p.Name())
		}
	}
	if len(got) != len(want) {
		return fmt.Errorf("irverify: function %q: block %q: phi has %d incoming block(s), block has %d predecessor(s)",
			fn.Name(), b.Name(), len(got), len(want))
	}
	return nil
}

// Package env implements the persistent, tree-shaped lexical environment
// of spec §3/§4.2: a chain of name->slot mappings, rooted at one global
// scope, with children holding a reference to their parent.
//
// Per the REDESIGN FLAG in spec §9, a Slot carries its own mutability and
// array-element metadata instead of the constants-set / arrays-map pair of
// parallel globals the original implementation used — there is exactly one
// place a binding's facts live, so they cannot drift apart.
package env

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Slot is one binding: a stack allocation, a global variable, or a
// function reference.
type Slot struct {
	// Func is non-nil when this slot names a function.
	Func *ir.Func

	// The remaining fields apply to variable slots (Func == nil).

	// Ptr is the storage location: an *ir.InstAlloca for locals, an
	// *ir.Global for module-level globals.
	Ptr value.Value
	// Elem is the type stored at Ptr (the variable's declared type).
	Elem types.Type
	// Const marks a `const`-declared binding; `set` against it is fatal.
	Const bool
	// ArrayElem/ArrayLen are set when Elem is a fixed-size array, so
	// (index NAME IDX) can reconstruct the element type without a second
	// lookup structure.
	ArrayElem types.Type
	ArrayLen  uint64
}

// IsFunc reports whether the slot names a function rather than storage.
func (s *Slot) IsFunc() bool { return s.Func != nil }

// Scope is one node of the environment tree.
type Scope struct {
	bindings map[string]*Slot
	parent   *Scope
}

// NewGlobal creates the root scope, populated once at module
// initialization (spec §3, "Lifecycle").
func NewGlobal() *Scope {
	return &Scope{bindings: map[string]*Slot{}}
}

// MakeChild creates a nested scope sharing this scope as its parent.
// Lifetime of the child is bounded by the expression that created it
// (a function body, a `scope` form, a loop body); Go's garbage collector
// reclaims it once nothing holds a reference back to it, matching spec
// §3's "destroyed on exit... via ownership" without manual bookkeeping.
func (s *Scope) MakeChild() *Scope {
	return &Scope{bindings: map[string]*Slot{}, parent: s}
}

// Define inserts name into the current scope only; it never recurses to a
// parent. It reports whether name was already bound in this scope (the
// caller turns that into spec §7's "Redeclaration" warning — Define
// itself never fails).
func (s *Scope) Define(name string, slot *Slot) (redefined bool) {
	_, redefined = s.bindings[name]
	s.bindings[name] = slot
	return redefined
}

// Lookup walks the scope chain toward the root. ok is false if no scope in
// the chain binds name; per spec §4.2 that is a hard compile-time error,
// raised by the caller (internal/codegen), not by Lookup.
func (s *Scope) Lookup(name string) (*Slot, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if slot, ok := cur.bindings[name]; ok {
			return slot, true
		}
	}
	return nil, false
}

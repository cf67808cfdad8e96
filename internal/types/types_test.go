package types

import (
	"testing"

	irtypes "github.com/llir/llvm/ir/types"
)

func TestResolvePrimitives(t *testing.T) {
	cases := []struct {
		tag  string
		want irtypes.Type
	}{
		{"!int", irtypes.I64},
		{"!int64", irtypes.I64},
		{"!int32", irtypes.I32},
		{"!int16", irtypes.I16},
		{"!int8", irtypes.I8},
		{"!bool", Bool},
		{"!frac", irtypes.Double},
		{"!none", irtypes.Void},
	}
	for _, c := range cases {
		got, err := Resolve(c.tag, "x")
		if err != nil {
			t.Errorf("Resolve(%q): unexpected error %v", c.tag, err)
			continue
		}
		if !Equal(got, c.want) {
			t.Errorf("Resolve(%q) = %v, want %v", c.tag, got, c.want)
		}
	}
}

func TestResolvePointerTags(t *testing.T) {
	for _, tag := range []string{"!str", "!ptr", "!ptr<!int>", "!ptr<!ptr<!int8>>"} {
		got, err := Resolve(tag, "x")
		if err != nil {
			t.Fatalf("Resolve(%q): unexpected error %v", tag, err)
		}
		if !IsPointer(got) {
			t.Fatalf("Resolve(%q) = %v, want a pointer type", tag, got)
		}
	}
}

func TestResolveIllFormedPointerIsFatal(t *testing.T) {
	_, err := Resolve("!ptr<!array<!int,>>", "x")
	if err == nil {
		t.Fatalf("expected an error for an ill-formed pointee type")
	}
	if _, unknown := err.(*UnknownTag); unknown {
		t.Fatalf("ill-formed pointee should not be classified as merely unknown")
	}
}

func TestResolveArray(t *testing.T) {
	got, err := Resolve("!array<!int,4>", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arr, ok := got.(*irtypes.ArrayType)
	if !ok {
		t.Fatalf("expected an array type, got %T", got)
	}
	if arr.Len != 4 || !Equal(arr.ElemType, irtypes.I64) {
		t.Fatalf("unexpected array shape: len=%d elem=%v", arr.Len, arr.ElemType)
	}
}

func TestResolveArrayNestedElement(t *testing.T) {
	got, err := Resolve("!array<!array<!int8,2>,3>", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer := got.(*irtypes.ArrayType)
	inner, ok := outer.ElemType.(*irtypes.ArrayType)
	if !ok || inner.Len != 2 || outer.Len != 3 {
		t.Fatalf("expected !array<!array<!int8,2>,3>, got %v", got)
	}
}

func TestResolveArrayZeroLengthIsFatal(t *testing.T) {
	if _, err := Resolve("!array<!int,0>", "x"); err == nil {
		t.Fatalf("expected zero-length array to be a malformed-form error")
	}
}

func TestResolveArrayNegativeLengthIsFatal(t *testing.T) {
	if _, err := Resolve("!array<!int,-4>", "x"); err == nil {
		t.Fatalf("expected negative array length to be a malformed-form error")
	}
}

func TestResolveSizeMatch(t *testing.T) {
	got, err := Resolve("!size:8:!int", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Equal(got, irtypes.I64) {
		t.Fatalf("expected !size:8:!int to resolve to i64, got %v", got)
	}
}

func TestResolveSizeMismatchIsFatal(t *testing.T) {
	if _, err := Resolve("!size:4:!int", "x"); err == nil {
		t.Fatalf("expected a size mismatch to be a fatal error")
	}
}

func TestResolveUnknownTagDefaultsAndWarns(t *testing.T) {
	got, err := Resolve("!bogus", "x")
	if got != Default {
		t.Fatalf("expected unknown tag to default to int64, got %v", got)
	}
	if _, ok := err.(*UnknownTag); !ok {
		t.Fatalf("expected *UnknownTag, got %T (%v)", err, err)
	}
}

func TestSizeOf(t *testing.T) {
	cases := []struct {
		t    irtypes.Type
		want int64
	}{
		{irtypes.I8, 1},
		{irtypes.I16, 2},
		{irtypes.I32, 4},
		{irtypes.I64, 8},
		{irtypes.Double, 8},
		{BytePtr, 8},
		{irtypes.Void, 0},
		{irtypes.NewArray(4, irtypes.I32), 16},
	}
	for _, c := range cases {
		if got := SizeOf(c.t); got != c.want {
			t.Errorf("SizeOf(%v) = %d, want %d", c.t, got, c.want)
		}
	}
}

func TestEqualArraysRequireSameLengthAndElement(t *testing.T) {
	a := irtypes.NewArray(4, irtypes.I32)
	b := irtypes.NewArray(4, irtypes.I32)
	c := irtypes.NewArray(5, irtypes.I32)
	if !Equal(a, b) {
		t.Fatalf("expected structurally equal arrays to compare equal")
	}
	if Equal(a, c) {
		t.Fatalf("expected arrays of different length to compare unequal")
	}
}

func TestBitSizeNonInt(t *testing.T) {
	if got := BitSize(irtypes.Double); got != 0 {
		t.Fatalf("expected BitSize of a non-integer type to be 0, got %d", got)
	}
}

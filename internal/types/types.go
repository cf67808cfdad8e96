// Package types resolves the language's declared type tags ("!int",
// "!ptr<T>", "!array<T,N>", ...) to github.com/llir/llvm/ir/types.Type
// values, per spec §4.1. It deliberately does not invent a parallel type
// representation: llir/llvm's *types.IntType / *types.FloatType /
// *types.PointerType / *types.ArrayType already distinguish everything the
// semantic analyzer needs to branch on (see internal/codegen/arith.go).
package types

import (
	"fmt"
	"strconv"
	"strings"

	irtypes "github.com/llir/llvm/ir/types"
)

// Default is the signed-64 integer fallback used whenever a type tag is
// absent or unrecognized.
var Default = irtypes.I64

// BytePtr is the opaque byte pointer used for !str, !ptr, and !ptr<T> (the
// inner type of !ptr<T> is validated but discarded; LLVM pointers are
// opaque at this IR level).
var BytePtr = irtypes.NewPointer(irtypes.I8)

// Bool is the storage type for !bool: an 8-bit integer holding 0 or 1.
// Raw icmp/fcmp results are 1-bit in LLVM; codegen zero-extends them to
// this type immediately (see internal/codegen/arith.go) so every
// surfaced boolean Value in this compiler is i8, matching spec §3's table.
var Bool = irtypes.I8

// UnknownTag is returned alongside Default when Resolve sees a tag it does
// not recognize, so the caller can emit spec §7's "unknown type tag"
// warning (Resolve itself never writes to a diagnostic sink).
type UnknownTag struct {
	Tag string
}

func (e *UnknownTag) Error() string { return fmt.Sprintf("unknown type tag %q", e.Tag) }

// Resolve maps a type tag to an IR type. varName is carried only for
// diagnostics built by the caller. A non-nil, non-*UnknownTag error means
// the tag was malformed (bad array length, size mismatch, ill-formed
// pointer) and is fatal per spec §7 "Malformed form".
func Resolve(tag, varName string) (irtypes.Type, error) {
	switch tag {
	case "!int", "!int64":
		return irtypes.I64, nil
	case "!int32":
		return irtypes.I32, nil
	case "!int16":
		return irtypes.I16, nil
	case "!int8":
		return irtypes.I8, nil
	case "!bool":
		return Bool, nil
	case "!str", "!ptr":
		return BytePtr, nil
	case "!frac":
		return irtypes.Double, nil
	case "!none":
		return irtypes.Void, nil
	}
	switch {
	case strings.HasPrefix(tag, "!ptr<") && strings.HasSuffix(tag, ">"):
		inner := tag[len("!ptr<") : len(tag)-1]
		if _, err := Resolve(inner, varName); err != nil {
			if _, isUnknown := err.(*UnknownTag); !isUnknown {
				return nil, fmt.Errorf("ill-formed pointee type in %q: %w", tag, err)
			}
		}
		return BytePtr, nil
	case strings.HasPrefix(tag, "!array<") && strings.HasSuffix(tag, ">"):
		return resolveArray(tag, varName)
	case strings.HasPrefix(tag, "!size:"):
		return resolveSize(tag, varName)
	}
	return Default, &UnknownTag{Tag: tag}
}

// resolveArray parses "!array<T,N>", splitting only on commas at bracket
// nesting depth 0 so T may itself be an !array<...> or !ptr<...>.
func resolveArray(tag, varName string) (irtypes.Type, error) {
	inner := tag[len("!array<") : len(tag)-1]
	elemTag, nTag, ok := splitOuterComma(inner)
	if !ok {
		return nil, fmt.Errorf("malformed array type %q for %q: expected !array<T,N>", tag, varName)
	}
	elemTy, err := Resolve(elemTag, varName)
	if err != nil {
		if _, isUnknown := err.(*UnknownTag); !isUnknown {
			return nil, fmt.Errorf("malformed array element type in %q: %w", tag, err)
		}
	}
	n, err := strconv.ParseUint(nTag, 10, 64)
	if err != nil || n == 0 {
		return nil, fmt.Errorf("malformed array length in %q: length must be a positive decimal integer", tag)
	}
	return irtypes.NewArray(n, elemTy), nil
}

// resolveSize parses "!size:N:T", asserting sizeof(T) == N.
func resolveSize(tag, varName string) (irtypes.Type, error) {
	rest := strings.TrimPrefix(tag, "!size:")
	i := strings.IndexByte(rest, ':')
	if i < 0 {
		return nil, fmt.Errorf("malformed size type %q for %q: expected !size:N:T", tag, varName)
	}
	nTag, tTag := rest[:i], rest[i+1:]
	n, err := strconv.ParseUint(nTag, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed size type %q: N must be a decimal integer", tag)
	}
	ty, err := Resolve(tTag, varName)
	if err != nil {
		if _, isUnknown := err.(*UnknownTag); !isUnknown {
			return nil, fmt.Errorf("malformed size type %q: %w", tag, err)
		}
	}
	got := SizeOf(ty)
	if got != int64(n) {
		return nil, fmt.Errorf("!size assertion failed for %q: sizeof(%s)=%d, declared %d", varName, tTag, got, n)
	}
	return ty, nil
}

// splitOuterComma splits "T,N" on the first comma at nesting depth 0,
// respecting <...> nesting so T may contain its own angle brackets.
func splitOuterComma(s string) (left, right string, ok bool) {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
			}
		}
	}
	return "", "", false
}

// SizeOf computes the allocation size, in bytes, of an IR type — needed by
// (sizeof TYPETAG) and by the !size:N:T assertion.
func SizeOf(t irtypes.Type) int64 {
	switch v := t.(type) {
	case *irtypes.IntType:
		return int64((v.BitSize + 7) / 8)
	case *irtypes.FloatType:
		return 8 // only Double is used by this language
	case *irtypes.PointerType:
		return 8
	case *irtypes.ArrayType:
		return int64(v.Len) * SizeOf(v.ElemType)
	case *irtypes.VoidType:
		return 0
	default:
		return 8
	}
}

// IsFloat reports whether t is the double-precision float type.
func IsFloat(t irtypes.Type) bool {
	_, ok := t.(*irtypes.FloatType)
	return ok
}

// IsInt reports whether t is one of the signed integer widths this
// language uses (i8/i16/i32/i64). i1 appears in internal/codegen only as a
// branch condition or an intermediate compare result; it is never a
// language-level value.
func IsInt(t irtypes.Type) bool {
	_, ok := t.(*irtypes.IntType)
	return ok
}

// IsPointer reports whether t is a pointer type.
func IsPointer(t irtypes.Type) bool {
	_, ok := t.(*irtypes.PointerType)
	return ok
}

// BitSize returns the bit width of an integer type, or 0 if t is not one.
func BitSize(t irtypes.Type) int64 {
	if it, ok := t.(*irtypes.IntType); ok {
		return int64(it.BitSize)
	}
	return 0
}

// Equal reports structural equality for the type shapes this compiler
// produces (ints by width, the one float width, pointer-to-anything, and
// arrays by length+element).
func Equal(a, b irtypes.Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case *irtypes.IntType:
		bv, ok := b.(*irtypes.IntType)
		return ok && av.BitSize == bv.BitSize
	case *irtypes.FloatType:
		_, ok := b.(*irtypes.FloatType)
		return ok
	case *irtypes.PointerType:
		_, ok := b.(*irtypes.PointerType)
		return ok
	case *irtypes.ArrayType:
		bv, ok := b.(*irtypes.ArrayType)
		return ok && av.Len == bv.Len && Equal(av.ElemType, bv.ElemType)
	case *irtypes.VoidType:
		_, ok := b.(*irtypes.VoidType)
		return ok
	default:
		return a.Equal(b)
	}
}

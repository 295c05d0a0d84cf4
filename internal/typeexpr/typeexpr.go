// Package typeexpr implements the scalar and array type expressions used by
// annotations, together with a registry that knows the byte size of every
// named type.
package typeexpr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is returned for malformed type expressions.
var ErrParse = errors.New("invalid type expression")

// Type is a parsed type expression of the form BASE, BASE[N] or BASE[].
type Type struct {
	Base    string
	IsArray bool
	Len     *int // nil for scalars and unsized arrays
}

// Parse parses a type expression.
func Parse(s string) (Type, error) {
	parts := strings.Split(s, "[")
	if len(parts) > 2 {
		return Type{}, fmt.Errorf("%w: '%s'", ErrParse, s)
	}

	typ := Type{Base: parts[0]}
	if typ.Base == "" {
		return Type{}, fmt.Errorf("%w: missing base type in '%s'", ErrParse, s)
	}
	if strings.ContainsAny(typ.Base, "] \t\r\n") {
		return Type{}, fmt.Errorf("%w: invalid base type in '%s'", ErrParse, s)
	}
	if len(parts) == 1 {
		return typ, nil
	}

	typ.IsArray = true
	rest := parts[1]
	if !strings.HasSuffix(rest, "]") {
		return Type{}, fmt.Errorf("%w: expected closing brace in array type '%s'", ErrParse, s)
	}

	digits := strings.TrimSuffix(rest, "]")
	if strings.Contains(digits, "]") {
		return Type{}, fmt.Errorf("%w: unexpected closing brace in '%s'", ErrParse, s)
	}
	if digits == "" {
		return typ, nil
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 {
		return Type{}, fmt.Errorf("%w: invalid array length in '%s'", ErrParse, s)
	}
	typ.Len = &n
	return typ, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// static tables.
func MustParse(s string) Type {
	typ, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return typ
}

// AsScalar returns the element type with array-ness stripped.
func (t Type) AsScalar() Type {
	return Type{Base: t.Base}
}

// WithLen returns a copy of the array type with the given length.
func (t Type) WithLen(n int) Type {
	t.Len = &n
	return t
}

// Sized returns whether the length of an array type is known.
// Scalars are always sized.
func (t Type) Sized() bool {
	return !t.IsArray || t.Len != nil
}

// SizeInBytes returns the size of the type as known to the registry.
// The second return value is false if the size can not be determined,
// which happens for unregistered base types and unsized arrays.
func (t Type) SizeInBytes(reg *Registry) (int, bool) {
	base, ok := reg.Size(t.Base)
	if !t.IsArray || !ok {
		return base, ok
	}
	if t.Len == nil {
		return 0, false
	}
	return base * *t.Len, true
}

// Equal reports whether both type expressions are identical.
func (t Type) Equal(other Type) bool {
	if t.Base != other.Base || t.IsArray != other.IsArray {
		return false
	}
	if t.Len == nil || other.Len == nil {
		return t.Len == nil && other.Len == nil
	}
	return *t.Len == *other.Len
}

// String formats the type back into its expression form.
func (t Type) String() string {
	if !t.IsArray {
		return t.Base
	}
	if t.Len == nil {
		return t.Base + "[]"
	}
	return fmt.Sprintf("%s[%d]", t.Base, *t.Len)
}

// CDecl returns a C declaration of a variable or member of this type.
func (t Type) CDecl(name string) (string, error) {
	if !t.Sized() {
		return "", fmt.Errorf("no array length provided for '%s %s'", t, name)
	}
	suffix := ""
	if t.IsArray {
		suffix = fmt.Sprintf("[%d]", *t.Len)
	}
	return fmt.Sprintf("%-15s %s%s", t.Base, name, suffix), nil
}

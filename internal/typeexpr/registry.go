package typeexpr

import (
	"errors"
	"fmt"
)

// ErrDuplicateType is returned when a type name is registered twice.
var ErrDuplicateType = errors.New("type name has already been defined")

var primitives = map[string]int{
	"u8":  1,
	"i8":  1,
	"u16": 2,
	"i16": 2,
	"u32": 4,
	"i32": 4,
}

// Registry maps type names to their byte size. A registry lives for one
// compilation run and only grows.
type Registry struct {
	sizes map[string]int
}

// NewRegistry returns a registry that knows all primitive types.
func NewRegistry() *Registry {
	sizes := make(map[string]int, len(primitives))
	for name, size := range primitives {
		sizes[name] = size
	}
	return &Registry{sizes: sizes}
}

// Register adds a named type of the given size.
func (r *Registry) Register(name string, size int) error {
	if r.Has(name) {
		return fmt.Errorf("%w: %s", ErrDuplicateType, name)
	}
	if size < 0 {
		return fmt.Errorf("negative size %d for type %s", size, name)
	}
	r.sizes[name] = size
	return nil
}

// Size returns the byte size of a named type.
func (r *Registry) Size(name string) (int, bool) {
	size, ok := r.sizes[name]
	return size, ok
}

// Has returns whether the type name is known.
func (r *Registry) Has(name string) bool {
	_, ok := r.sizes[name]
	return ok
}

// Package annotations contains the annotation model of a real-mode binary
// and validates it before any output is generated from it.
package annotations

import (
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/hydragen/internal/typeexpr"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const dataSectionSize = 1 << 16

var (
	ErrParse             = errors.New("invalid annotation")
	ErrDuplicateFunction = errors.New("duplicate function name")
	ErrStructName        = errors.New("struct names should end with " + StructSuffix)
	ErrPacking           = errors.New("struct packing violation")
	ErrOverlap           = errors.New("data section overlap")
	ErrRegion            = errors.New("invalid text section region")
)

// Input contains the entity collections as handed over by a loader.
type Input struct {
	CodeSegments []CodeSegment
	Functions    []Function
	Structs      []Struct
	Globals      []Global
	TextRegions  []TextRegion
	Callstack    []CallstackConf
}

// Model is a validated annotation set. The order of all collections equals
// the declaration order of the input.
type Model struct {
	CodeSegments []CodeSegment
	Functions    []Function
	Structs      []Struct
	Globals      []Global
	TextRegions  []TextRegion
	Callstack    []CallstackConf

	Types *typeexpr.Registry
}

// New validates the input and returns the generation ready model.
// The input is not modified.
func New(logger *log.Logger, in Input) (*Model, error) {
	m := &Model{
		CodeSegments: slices.Clone(in.CodeSegments),
		Functions:    slices.Clone(in.Functions),
		Structs:      slices.Clone(in.Structs),
		Globals:      slices.Clone(in.Globals),
		TextRegions:  slices.Clone(in.TextRegions),
		Callstack:    slices.Clone(in.Callstack),
		Types:        typeexpr.NewRegistry(),
	}

	if err := m.verifyFunctionNames(); err != nil {
		return nil, err
	}
	if err := m.registerStructs(); err != nil {
		return nil, err
	}
	if err := m.verifyDataSection(logger); err != nil {
		return nil, err
	}
	if err := m.inferTextRegions(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) verifyFunctionNames() error {
	names := set.New[string]()
	for _, fun := range m.Functions {
		if names.Contains(fun.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateFunction, fun.Name)
		}
		names.Add(fun.Name)
	}
	return nil
}

// registerStructs registers all structs in declaration order, a struct can
// only use the structs that were declared before it.
func (m *Model) registerStructs() error {
	for _, st := range m.Structs {
		if err := registerStruct(m.Types, st); err != nil {
			return err
		}
	}
	return nil
}

func registerStruct(reg *typeexpr.Registry, st Struct) error {
	if len(st.Name) <= len(StructSuffix) || st.CName()+StructSuffix != st.Name {
		return fmt.Errorf("%w: %s", ErrStructName, st.Name)
	}
	if err := reg.Register(st.Name, st.Size); err != nil {
		return fmt.Errorf("registering struct: %w", err)
	}

	off := 0
	for _, mbr := range st.Members {
		mbrOff := int(mbr.Offset)
		if mbrOff > off {
			return fmt.Errorf("%w: skipped bytes range %d-%d in struct '%s'", ErrPacking, off, mbrOff, st.Name)
		}
		if mbrOff < off {
			return fmt.Errorf("%w: overlapping byte range %d-%d in struct '%s'", ErrPacking, mbrOff, off, st.Name)
		}

		size, ok := mbr.Type.SizeInBytes(reg)
		if !ok {
			return fmt.Errorf("%w: member in struct has no known size: %s.%s", ErrPacking, st.Name, mbr.Name)
		}
		off += size
	}

	if off != st.Size {
		return fmt.Errorf("%w: size mismatch in struct '%s': struct size is %d but members use %d bytes",
			ErrPacking, st.Name, st.Size, off)
	}
	return nil
}

// verifyDataSection checks that no two globals share a byte. Globals with an
// unknown size only produce a warning and are left out of the check, which
// leaves a gap in the coverage on purpose.
func (m *Model) verifyDataSection(logger *log.Logger) error {
	var owners [dataSectionSize]string

	for _, g := range m.Globals {
		if g.Flag == GlobalSkipValidate {
			continue
		}

		size, ok := g.Type.SizeInBytes(m.Types)
		if !ok {
			logger.Warn("Cannot determine size of data section global",
				log.String("name", g.Name),
				log.String("type", g.Type.String()))
			continue
		}

		start := int(g.Offset)
		end := start + size
		if end > dataSectionSize {
			return fmt.Errorf("%w: %s [0x%04x, 0x%04x] extends beyond the data section",
				ErrOverlap, g.Name, start, end)
		}

		for i := start; i < end; i++ {
			if owner := owners[i]; owner != "" {
				return fmt.Errorf("%w: %s [0x%04x, 0x%04x] overlaps %s at 0x%04x",
					ErrOverlap, g.Name, start, end, owner, i)
			}
			owners[i] = g.Name
		}
	}
	return nil
}

// inferTextRegions computes the array length of every text region from its
// byte span, or verifies a length that was given explicitly.
func (m *Model) inferTextRegions() error {
	for i, region := range m.TextRegions {
		length, err := inferRegionLength(m.Types, region)
		if err != nil {
			return err
		}
		m.TextRegions[i].Type = region.Type.WithLen(length)
	}
	return nil
}

func inferRegionLength(reg *typeexpr.Registry, region TextRegion) (int, error) {
	if !region.Type.IsArray {
		return 0, fmt.Errorf("%w: expected array type for region %s", ErrRegion, region.Name)
	}

	nbytes, err := region.End.BytesSince(region.Start)
	if err != nil {
		return 0, fmt.Errorf("region %s: %w", region.Name, err)
	}
	if nbytes < 0 {
		return 0, fmt.Errorf("%w: negatively sized region %s", ErrRegion, region.Name)
	}

	eltSize, ok := region.Type.AsScalar().SizeInBytes(reg)
	if !ok || eltSize == 0 {
		return 0, fmt.Errorf("%w: unknown element size of type %s for region %s",
			ErrRegion, region.Type.Base, region.Name)
	}
	if nbytes%eltSize != 0 {
		return 0, fmt.Errorf("%w: region %s of %d bytes is not a multiple of %d",
			ErrRegion, region.Name, nbytes, eltSize)
	}

	length := nbytes / eltSize
	if region.Type.Len != nil && *region.Type.Len != length {
		return 0, fmt.Errorf("%w: config specified %d elements, but region %s contains %d",
			ErrRegion, *region.Type.Len, region.Name, length)
	}
	return length, nil
}

// Package loader handles annotation file loading operations.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/retroenv/hydragen/internal/addr"
	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/typeexpr"
	"gopkg.in/yaml.v3"
)

// SchemaConstraint is the range of annotation schema versions this loader
// understands.
const SchemaConstraint = "^1"

// ErrSchemaVersion is returned for documents declaring an unsupported schema.
var ErrSchemaVersion = errors.New("unsupported schema version")

// Loader handles loading annotation files from disk.
type Loader struct {
	constraint *semver.Constraints
}

// New creates a new annotation loader.
func New() *Loader {
	c, err := semver.NewConstraint(SchemaConstraint)
	if err != nil {
		panic(err)
	}
	return &Loader{constraint: c}
}

// Load reads and decodes the annotation file at the given path.
func (l *Loader) Load(path string) (annotations.Input, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return annotations.Input{}, fmt.Errorf("reading file %s: %w", path, err)
	}
	return l.LoadFromBytes(data)
}

// LoadFromBytes decodes an annotation document. Unknown keys are rejected.
func (l *Loader) LoadFromBytes(data []byte) (annotations.Input, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return annotations.Input{}, fmt.Errorf("decoding annotations: %w", err)
	}

	if err := l.checkSchemaVersion(doc.SchemaVersion); err != nil {
		return annotations.Input{}, err
	}
	return doc.convert()
}

// checkSchemaVersion accepts documents without a version.
func (l *Loader) checkSchemaVersion(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: '%s': %w", ErrSchemaVersion, version, err)
	}
	if !l.constraint.Check(v) {
		return fmt.Errorf("%w: '%s' does not satisfy %s", ErrSchemaVersion, version, SchemaConstraint)
	}
	return nil
}

type document struct {
	SchemaVersion string          `yaml:"schema_version"`
	CodeSegments  []codeSegment   `yaml:"code_segments"`
	Functions     []function      `yaml:"functions"`
	Structures    []structure     `yaml:"structures"`
	DataSection   []global        `yaml:"data_section"`
	TextSection   []textRegion    `yaml:"text_section"`
	Callstack     []callstackConf `yaml:"callstack"`
}

type codeSegment struct {
	Seg  hex16  `yaml:"seg"`
	Name string `yaml:"name"`
}

type function struct {
	Name          string   `yaml:"name"`
	Ret           string   `yaml:"ret"`
	Args          *int     `yaml:"args"`
	Start         string   `yaml:"start"`
	End           string   `yaml:"end"`
	Entry         string   `yaml:"entry"`
	Flag          string   `yaml:"flag"`
	RegArgs       []string `yaml:"regargs"`
	Reimplemented bool     `yaml:"reimplemented"`
}

type structure struct {
	Name    string   `yaml:"name"`
	Size    int      `yaml:"size"`
	Members []member `yaml:"members"`
}

type member struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Off  hex16  `yaml:"off"`
}

type global struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Off  hex16  `yaml:"off"`
	Flag string `yaml:"flag"`
}

type textRegion struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Start  string `yaml:"start"`
	End    string `yaml:"end"`
	Access string `yaml:"access"`
}

type callstackConf struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	Addr string `yaml:"addr"`
}

// hex16 is a 16 bit value written in hex, with or without a 0x prefix.
// The scalar text is always read as hex, the YAML integer resolution would
// read leading zeros as octal and plain digits as decimal.
type hex16 uint16

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *hex16) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a 16 bit hex value", value.Line)
	}

	off, err := addr.ParseOffset(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*h = hex16(off)
	return nil
}

func (d document) convert() (annotations.Input, error) {
	var in annotations.Input

	for _, cs := range d.CodeSegments {
		in.CodeSegments = append(in.CodeSegments, annotations.CodeSegment{Segment: uint16(cs.Seg), Name: cs.Name})
	}

	for _, fun := range d.Functions {
		f, err := fun.convert()
		if err != nil {
			return annotations.Input{}, fmt.Errorf("function '%s': %w", fun.Name, err)
		}
		in.Functions = append(in.Functions, f)
	}

	for _, st := range d.Structures {
		s, err := st.convert()
		if err != nil {
			return annotations.Input{}, fmt.Errorf("structure '%s': %w", st.Name, err)
		}
		in.Structs = append(in.Structs, s)
	}

	for _, g := range d.DataSection {
		typ, err := typeexpr.Parse(g.Type)
		if err != nil {
			return annotations.Input{}, fmt.Errorf("global '%s': %w", g.Name, err)
		}
		flag, err := annotations.ParseGlobalFlag(enumName(g.Flag))
		if err != nil {
			return annotations.Input{}, fmt.Errorf("global '%s': %w", g.Name, err)
		}
		in.Globals = append(in.Globals, annotations.Global{Name: g.Name, Type: typ, Offset: uint16(g.Off), Flag: flag})
	}

	for _, r := range d.TextSection {
		region, err := r.convert()
		if err != nil {
			return annotations.Input{}, fmt.Errorf("text region '%s': %w", r.Name, err)
		}
		in.TextRegions = append(in.TextRegions, region)
	}

	for _, cs := range d.Callstack {
		kind, err := annotations.ParseCallstackKind(enumName(cs.Kind))
		if err != nil {
			return annotations.Input{}, fmt.Errorf("callstack entry '%s': %w", cs.Name, err)
		}
		a, err := addr.Parse(cs.Addr)
		if err != nil {
			return annotations.Input{}, fmt.Errorf("callstack entry '%s': %w", cs.Name, err)
		}
		in.Callstack = append(in.Callstack, annotations.CallstackConf{Name: cs.Name, Kind: kind, Addr: a})
	}

	return in, nil
}

func (fun function) convert() (annotations.Function, error) {
	start, err := addr.Parse(fun.Start)
	if err != nil {
		return annotations.Function{}, fmt.Errorf("start: %w", err)
	}
	end, err := optionalAddr(fun.End)
	if err != nil {
		return annotations.Function{}, fmt.Errorf("end: %w", err)
	}
	entry, err := optionalAddr(fun.Entry)
	if err != nil {
		return annotations.Function{}, fmt.Errorf("entry: %w", err)
	}
	flag, err := annotations.ParseFunctionFlag(enumName(fun.Flag))
	if err != nil {
		return annotations.Function{}, err
	}

	return annotations.Function{
		Name:          fun.Name,
		Ret:           fun.Ret,
		Args:          fun.Args,
		Start:         start,
		End:           end,
		Entry:         entry,
		Flag:          flag,
		RegArgs:       fun.RegArgs,
		Reimplemented: fun.Reimplemented,
	}, nil
}

func (st structure) convert() (annotations.Struct, error) {
	s := annotations.Struct{Name: st.Name, Size: st.Size}
	for _, mbr := range st.Members {
		typ, err := typeexpr.Parse(mbr.Type)
		if err != nil {
			return annotations.Struct{}, fmt.Errorf("member '%s': %w", mbr.Name, err)
		}
		s.Members = append(s.Members, annotations.Member{Name: mbr.Name, Type: typ, Offset: uint16(mbr.Off)})
	}
	return s, nil
}

func (r textRegion) convert() (annotations.TextRegion, error) {
	typ, err := typeexpr.Parse(r.Type)
	if err != nil {
		return annotations.TextRegion{}, err
	}
	start, err := addr.Parse(r.Start)
	if err != nil {
		return annotations.TextRegion{}, fmt.Errorf("start: %w", err)
	}
	end, err := addr.Parse(r.End)
	if err != nil {
		return annotations.TextRegion{}, fmt.Errorf("end: %w", err)
	}
	access, err := optionalAddr(r.Access)
	if err != nil {
		return annotations.TextRegion{}, fmt.Errorf("access: %w", err)
	}
	return annotations.TextRegion{Name: r.Name, Type: typ, Start: start, End: end, Access: access}, nil
}

func optionalAddr(s string) (*addr.Addr, error) {
	if s == "" {
		return nil, nil
	}
	a, err := addr.Parse(s)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// enumName allows lower case flag names in annotation files.
func enumName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

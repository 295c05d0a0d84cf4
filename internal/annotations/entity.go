package annotations

import (
	"fmt"
	"strings"

	"github.com/retroenv/hydragen/internal/addr"
	"github.com/retroenv/hydragen/internal/typeexpr"
)

// StructSuffix is the suffix that every structure type name must carry.
const StructSuffix = "_t"

// FunctionFlag controls how a function is called or whether it is a call site.
type FunctionFlag int

// function flags.
const (
	FlagNone FunctionFlag = iota
	FlagNear
	FlagDontPopArgs
	FlagIndirectCallLocation // entry marks a call site, not a callable function
)

// ParseFunctionFlag converts the annotation name of a flag. An empty string
// maps to FlagNone.
func ParseFunctionFlag(s string) (FunctionFlag, error) {
	switch s {
	case "", "NONE":
		return FlagNone, nil
	case "NEAR":
		return FlagNear, nil
	case "DONT_POP_ARGS":
		return FlagDontPopArgs, nil
	case "INDIRECT_CALL_LOCATION":
		return FlagIndirectCallLocation, nil
	default:
		return FlagNone, fmt.Errorf("%w: unknown function flag '%s'", ErrParse, s)
	}
}

func (f FunctionFlag) String() string {
	switch f {
	case FlagNone:
		return "NONE"
	case FlagNear:
		return "NEAR"
	case FlagDontPopArgs:
		return "DONT_POP_ARGS"
	case FlagIndirectCallLocation:
		return "INDIRECT_CALL_LOCATION"
	default:
		return fmt.Sprintf("FunctionFlag(%d)", int(f))
	}
}

// GlobalFlag controls the validation of a data section global.
type GlobalFlag int

// global flags.
const (
	GlobalNone GlobalFlag = iota
	GlobalSkipValidate
)

// ParseGlobalFlag converts the annotation name of a global flag.
func ParseGlobalFlag(s string) (GlobalFlag, error) {
	switch s {
	case "", "NONE":
		return GlobalNone, nil
	case "SKIP_VALIDATE":
		return GlobalSkipValidate, nil
	default:
		return GlobalNone, fmt.Errorf("%w: unknown global flag '%s'", ErrParse, s)
	}
}

func (f GlobalFlag) String() string {
	switch f {
	case GlobalNone:
		return "NONE"
	case GlobalSkipValidate:
		return "SKIP_VALIDATE"
	default:
		return fmt.Sprintf("GlobalFlag(%d)", int(f))
	}
}

// CallstackKind tells the runtime how to treat a return address while
// unwinding the call stack.
type CallstackKind int

// callstack config kinds.
const (
	CallstackHandler CallstackKind = iota
	CallstackIgnoreAddr
	CallstackJumpRet
)

// ParseCallstackKind converts the annotation name of a callstack kind.
func ParseCallstackKind(s string) (CallstackKind, error) {
	switch s {
	case "HANDLER":
		return CallstackHandler, nil
	case "IGNORE_ADDR":
		return CallstackIgnoreAddr, nil
	case "JUMPRET":
		return CallstackJumpRet, nil
	default:
		return CallstackHandler, fmt.Errorf("%w: not a valid callstack conf type '%s'", ErrParse, s)
	}
}

func (k CallstackKind) String() string {
	switch k {
	case CallstackHandler:
		return "HANDLER"
	case CallstackIgnoreAddr:
		return "IGNORE_ADDR"
	case CallstackJumpRet:
		return "JUMPRET"
	default:
		return fmt.Sprintf("CallstackKind(%d)", int(k))
	}
}

// Function describes a function or, flagged as indirect call location,
// a call site of the binary.
type Function struct {
	Name          string
	Ret           string // empty if unspecified
	Args          *int   // nil if unknown
	Start         addr.Addr
	End           *addr.Addr
	Entry         *addr.Addr // entry stub of an overlay function
	Flag          FunctionFlag
	RegArgs       []string
	Reimplemented bool
}

// IsOverlayEntry returns whether the function lives in an overlay and is
// called through a fixed entry stub.
func (f Function) IsOverlayEntry() bool {
	return f.Start.Overlay && f.Entry != nil
}

// Global is a variable in the data section.
type Global struct {
	Name   string
	Type   typeexpr.Type
	Offset uint16
	Flag   GlobalFlag
}

// Member is a structure member.
type Member struct {
	Name   string
	Type   typeexpr.Type
	Offset uint16
}

// Struct is a packed structure type.
type Struct struct {
	Name    string
	Size    int
	Members []Member
}

// CName returns the structure tag name, which is the type name without
// its suffix.
func (s Struct) CName() string {
	return strings.TrimSuffix(s.Name, StructSuffix)
}

// TextRegion is an array of data located in a code segment.
type TextRegion struct {
	Name   string
	Type   typeexpr.Type
	Start  addr.Addr
	End    addr.Addr
	Access *addr.Addr
}

// CallstackConf is a named call stack unwinding rule.
type CallstackConf struct {
	Name string
	Kind CallstackKind
	Addr addr.Addr
}

// CodeSegment names a code segment of the binary.
type CodeSegment struct {
	Segment uint16
	Name    string
}

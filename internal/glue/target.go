package glue

import (
	"strconv"

	"github.com/retroenv/hydragen/internal/addr"
	"github.com/retroenv/hydragen/internal/annotations"
)

const (
	overlaySuffix = "_OVERLAY"

	// defaultReturnType is used for functions without a declared return type.
	// Assuming the widest type is the worst case and keeps the register
	// cleanup of the call stub safe.
	defaultReturnType = "u32"

	ignoreArgs = "IGNORE"
)

// Target is a callable address that gets a call stub and a metadata entry.
type Target struct {
	Name  string
	Addr  addr.Addr
	Ret   string
	Args  string
	Flags string
}

// Targets expands the functions into the list of callable targets.
// Indirect call locations are call sites and are dropped. Overlay functions
// that are called through an entry stub result in 2 targets: the stub under
// the function name and the overlay resident body with an _OVERLAY suffix.
func Targets(functions []annotations.Function) []Target {
	targets := make([]Target, 0, len(functions))

	for _, fun := range functions {
		if fun.Flag == annotations.FlagIndirectCallLocation {
			continue
		}

		if fun.IsOverlayEntry() {
			targets = append(targets,
				newTarget(fun, fun.Name, *fun.Entry),
				newTarget(fun, fun.Name+overlaySuffix, fun.Start),
			)
			continue
		}
		targets = append(targets, newTarget(fun, fun.Name, fun.Start))
	}

	return targets
}

func newTarget(fun annotations.Function, name string, address addr.Addr) Target {
	t := Target{
		Name:  name,
		Addr:  address,
		Ret:   fun.Ret,
		Args:  ignoreArgs,
		Flags: flagsToken(fun.Flag),
	}
	if t.Ret == "" {
		t.Ret = defaultReturnType
	}
	if fun.Args != nil && *fun.Args >= 0 {
		t.Args = strconv.Itoa(*fun.Args)
	}
	return t
}

// flagsToken returns the call stub flags macro for a function flag.
func flagsToken(flag annotations.FunctionFlag) string {
	switch flag {
	case annotations.FlagNone:
		return "0"
	case annotations.FlagNear:
		return "NEAR"
	case annotations.FlagDontPopArgs:
		return "DONT_POP_ARGS"
	case annotations.FlagIndirectCallLocation:
		return "INDIRECT_CALL_LOCATION"
	default:
		return "0"
	}
}

// callstackToken returns the runtime enum name of a callstack kind.
func callstackToken(kind annotations.CallstackKind) string {
	const prefix = "HYDRA_CALLSTACK_CONF_TYPE_"

	switch kind {
	case annotations.CallstackHandler:
		return prefix + "HANDLER"
	case annotations.CallstackIgnoreAddr:
		return prefix + "IGNORE_ADDR"
	case annotations.CallstackJumpRet:
		return prefix + "JUMPRET"
	default:
		return prefix + kind.String()
	}
}

// Package confgen generates the dis86 disassembler configuration from an
// annotation model.
package confgen

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/hydragen/internal/addr"
	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/writer"
)

// RootNode is the name of the top level block of the configuration.
const RootNode = "dis86"

// Block names of the configuration sections.
const (
	CodeSegmentsNode = "code_segments"
	FunctionsNode    = "functions"
	StructuresNode   = "structures"
	GlobalsNode      = "globals"
	TextSectionNode  = "text_section"
)

// unknownArgs is understood by dis86 as an unknown argument count.
const unknownArgs = -1

const emptyValue = `""`

// Write writes the configuration. The model is expected to be validated,
// nothing is checked here.
func Write(out io.Writer, m *annotations.Model) error {
	w := writer.New(out)

	w.Linef("%s {", RootNode)
	writeCodeSegments(w, m.CodeSegments)
	writeFunctions(w, m.Functions)
	writeStructures(w, m.Structs)
	writeGlobals(w, m.Globals)
	writeTextSection(w, m.TextRegions)
	w.Line("}")

	if err := w.Err(); err != nil {
		return fmt.Errorf("writing dis86 config: %w", err)
	}
	return nil
}

func writeCodeSegments(w *writer.Writer, segments []annotations.CodeSegment) {
	w.Linef("  %s {", CodeSegmentsNode)
	for i, cs := range segments {
		w.Linef("    _%04d { seg %d name %-15s  }", i, cs.Segment, cs.Name)
	}
	w.Line("  }")
}

func writeFunctions(w *writer.Writer, functions []annotations.Function) {
	w.Linef("  %s {", FunctionsNode)
	for _, fun := range functions {
		end := FormatAddr(fun.End)
		if end == "" {
			end = emptyValue
		}
		ret := fun.Ret
		if ret == "" {
			ret = emptyValue
		}

		w.Linef("    %-30s { start %s end %s mode %s ret %s args %s %s}",
			fun.Name, fun.Start, end, CallMode(fun.Flag), ret, FormatArgs(fun.Args), functionExtras(fun))
	}
	w.Line("  }")
}

// CallMode returns the calling convention of the function as written to the
// mode property.
func CallMode(flag annotations.FunctionFlag) string {
	switch flag {
	case annotations.FlagNear:
		return "near"
	case annotations.FlagNone, annotations.FlagDontPopArgs, annotations.FlagIndirectCallLocation:
		return "far"
	default:
		return "far"
	}
}

// functionExtras returns the optional properties of a function, each one
// followed by a space.
func functionExtras(fun annotations.Function) string {
	buf := &strings.Builder{}

	switch fun.Flag {
	case annotations.FlagDontPopArgs:
		buf.WriteString("dont_pop_args 1 ")
	case annotations.FlagIndirectCallLocation:
		buf.WriteString("indirect_call_location 1 ")
	case annotations.FlagNone, annotations.FlagNear:
	}

	if fun.Entry != nil {
		fmt.Fprintf(buf, "entry %s ", fun.Entry)
	}
	if len(fun.RegArgs) > 0 {
		fmt.Fprintf(buf, "regargs %s ", strings.Join(fun.RegArgs, ","))
	}
	return buf.String()
}

func writeStructures(w *writer.Writer, structs []annotations.Struct) {
	w.Linef("  %s {", StructuresNode)
	for _, st := range structs {
		w.Linef("    %-15s { size %d members {", st.Name, st.Size)
		for _, mbr := range st.Members {
			w.Linef("      %-20s { type %-15s off 0x%02x }", mbr.Name, mbr.Type, mbr.Offset)
		}
		w.Line("    }}")
	}
	w.Line("  }")
}

func writeGlobals(w *writer.Writer, globals []annotations.Global) {
	w.Linef("  %s {", GlobalsNode)
	for _, g := range globals {
		w.Linef("    %-30s { off 0x%04x  type %-20s }", g.Name, g.Offset, g.Type)
	}
	w.Line("  }")
}

func writeTextSection(w *writer.Writer, regions []annotations.TextRegion) {
	w.Linef("  %s {", TextSectionNode)
	for _, r := range regions {
		extra := ""
		if r.Access != nil {
			extra = "access " + r.Access.String() + " "
		}
		w.Linef("    %-30s { start %s  end %s type %-20s %s}", r.Name, r.Start, r.End, r.Type, extra)
	}
	w.Line("  }")
}

// FormatArgs formats an argument count the way it is written to the config.
func FormatArgs(args *int) string {
	if args == nil {
		return strconv.Itoa(unknownArgs)
	}
	return strconv.Itoa(*args)
}

// FormatAddr formats an optional address the way it is written to the config.
func FormatAddr(a *addr.Addr) string {
	if a == nil {
		return ""
	}
	return a.String()
}

// Package glue generates the C header and source files that make an
// annotated binary known to the hydra hooking runtime.
package glue

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/writer"
)

const (
	functionPrefix = "F_"
	handlerPrefix  = "H_"
	bannerLine     = "/**************************************************************************************************************/"
)

// WriteHeader writes the application data header: call stubs, overlay entry
// flags, structures, data section globals and the hook registration.
func WriteHeader(out io.Writer, m *annotations.Model) error {
	w := writer.New(out)

	w.Line("#pragma once")
	w.Line(`#include "hydra/hydra.h"`)
	w.Line(`#if __has_include ("hydra_user_defs.h")`)
	w.Line(`  #include "hydra_user_defs.h"`)
	w.Line("#endif")
	w.Empty()

	writeCallStubs(w, Targets(m.Functions))
	writeOverlayEntryFlags(w, m.Functions)
	if err := writeStructs(w, m.Structs); err != nil {
		return err
	}
	writeGlobals(w, m.Globals)
	writeHookRegistration(w, m.Functions)

	if err := w.Err(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

func writeBanner(w *writer.Writer, title string) {
	w.Line(bannerLine)
	w.Linef("/* %s */", title)
	w.Line(bannerLine)
}

func writeCallStubs(w *writer.Writer, targets []Target) {
	writeBanner(w, "Callstubs")
	for _, t := range targets {
		address := fmt.Sprintf("ADDR_MAKE_EXT(%d, 0x%04x, 0x%04x)", t.Addr.OverlayBit(), t.Addr.Segment, t.Addr.Offset)
		w.Linef("HYDRA_DEFINE_CALLSTUB( %-30s %-8s %-10s %s, %-15s )",
			t.Name+",", t.Ret+",", t.Args+",", address, t.Flags)
	}
	w.Empty()
}

func writeOverlayEntryFlags(w *writer.Writer, functions []annotations.Function) {
	writeBanner(w, "IS_OVERLAY_ENTRY flags")
	for _, fun := range functions {
		flag := 0
		if fun.IsOverlayEntry() {
			flag = 1
		}
		w.Linef("#define IS_OVERLAY_ENTRY_%s %d", fun.Name, flag)
	}
	w.Empty()
}

// writeStructs writes packed structure declarations followed by a size
// assertion, so that the C compiler catches any drift from the annotations.
func writeStructs(w *writer.Writer, structs []annotations.Struct) error {
	writeBanner(w, "Structures")
	w.Empty()

	for _, st := range structs {
		w.Linef("typedef struct %s %s;", st.CName(), st.Name)
		w.Linef("struct __attribute__((packed)) %s", st.CName())
		w.Line("{")
		for _, mbr := range st.Members {
			decl, err := mbr.Type.CDecl(mbr.Name)
			if err != nil {
				return fmt.Errorf("struct %s: %w", st.Name, err)
			}
			w.Linef("  %-40s  /* 0x%02x */", decl+";", mbr.Offset)
		}
		w.Line("};")
		w.Linef(`static_assert(sizeof(%s) == %d, "");`, st.Name, st.Size)
		w.Empty()
	}
	return nil
}

func writeGlobals(w *writer.Writer, globals []annotations.Global) {
	writeBanner(w, "Data Section Globals")
	w.Empty()

	for _, g := range globals {
		cast := fmt.Sprintf("(%s*)", g.Type.Base)
		comment := ""
		if g.Type.IsArray {
			comment = fmt.Sprintf(" /* array: %s */", g.Type)
		} else {
			cast = "*" + cast
		}
		w.Linef("#define %-30s (%-15s (hydra_datasection_baseptr() + 0x%04x))%s", g.Name, cast, g.Offset, comment)
	}
	w.Empty()
}

func writeHookRegistration(w *writer.Writer, functions []annotations.Function) {
	writeBanner(w, "Hook Registration")
	w.Line("static inline void hydra_user_appdata__register_all_hooks(void) {")
	for _, fun := range functions {
		if !fun.Reimplemented {
			continue
		}
		name := strings.TrimPrefix(fun.Name, functionPrefix)
		w.Linef("  extern HYDRA_FUNC(%s);", handlerPrefix+name)
		w.Linef("  HYDRA_REGISTER(%s);", name)
	}
	w.Line("}")
	w.Empty()
}

package glue

import (
	"fmt"
	"io"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/writer"
)

// HeaderName is the file name under which the generated header is included
// by the generated source.
const HeaderName = "hydra_user_appdata.h"

// WriteSource writes the application data source containing the function
// and callstack metadata tables.
func WriteSource(out io.Writer, m *annotations.Model) error {
	w := writer.New(out)

	w.Linef(`#include "%s"`, HeaderName)
	w.Empty()
	writeBanner(w, "Generate Function Metadata")
	w.Empty()

	writeFunctionMetadata(w, Targets(m.Functions))
	writeCallstackMetadata(w, m.Callstack)

	if err := w.Err(); err != nil {
		return fmt.Errorf("writing source: %w", err)
	}
	return nil
}

func writeFunctionMetadata(w *writer.Writer, targets []Target) {
	w.Line("static hydra_function_def_t metadata[] = {")
	for _, t := range targets {
		name := fmt.Sprintf(`"%s",`, t.Name)
		w.Linef("  { %-30s {{ %d, 0x%04x, 0x%04x }} },", name, t.Addr.OverlayBit(), t.Addr.Segment, t.Addr.Offset)
	}
	w.Line("};")
	w.Empty()
	w.Line("const hydra_function_metadata_t * hydra_user_functions(void)")
	w.Line("{")
	w.Line("  static hydra_function_metadata_t md[1];")
	w.Line("  md->n_defs = sizeof(metadata)/sizeof(metadata[0]);")
	w.Line("  md->defs = metadata;")
	w.Empty()
	w.Line("  return md;")
	w.Line("}")
	w.Empty()
}

func writeCallstackMetadata(w *writer.Writer, confs []annotations.CallstackConf) {
	w.Line("const hydra_callstack_metadata_t * hydra_user_callstack(void)")
	w.Line("{")
	w.Line("  static hydra_callstack_conf_t confs[] = {")
	for _, conf := range confs {
		kind := callstackToken(conf.Kind) + ","
		name := fmt.Sprintf(`"%s",`, conf.Name)
		w.Linef("    { %-40s %-25s {{ %d, 0x%04x, 0x%04x }} },",
			kind, name, conf.Addr.OverlayBit(), conf.Addr.Segment, conf.Addr.Offset)
	}
	w.Line("  };")
	w.Empty()
	w.Line("  static hydra_callstack_metadata_t md[1];")
	w.Line("  md->n_confs = sizeof(confs)/sizeof(confs[0]);")
	w.Line("  md->confs = confs;")
	w.Empty()
	w.Line("  return md;")
	w.Line("}")
	w.Empty()
}

// Package options contains the program options.
package options

// Stdout is the output name that selects the console as output.
const Stdout = "-"

// Output modes.
const (
	ModeHeader = "header" // runtime glue header
	ModeSource = "source" // runtime glue source
	ModeConf   = "conf"   // dis86 configuration
)

// Modes lists all supported output modes.
var Modes = []string{ModeHeader, ModeSource, ModeConf}

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"annotation file"`
	Output string `flag:"o" usage:"output file, '-' or empty for stdout"`
}

// Flags contains behavior options.
type Flags struct {
	Mode   string `flag:"mode" usage:"output to generate: header, source, conf" default:"conf"`
	Verify bool   `flag:"verify" usage:"verify a written conf output by parsing it and comparing it to the annotations"`
	Watch  bool   `flag:"watch" usage:"regenerate the output whenever the annotation file changes"`
	Debug  bool   `flag:"debug" usage:"enable debug logging"`
	Quiet  bool   `flag:"q" usage:"quiet mode"`
}

// Program options of the generator.
type Program struct {
	Parameters
	Flags
}

// WritesToStdout returns whether the output goes to the console.
func (p Program) WritesToStdout() bool {
	return p.Output == "" || p.Output == Stdout
}

// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/retroenv/hydragen/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
func ParseFlags() (options.Program, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	var opts options.Program
	modeAliases := readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}
	opts.Input = args[0]

	if err := applyModeAliases(&opts, *modeAliases); err != nil {
		return opts, err
	}
	if err := normalizeOptions(&opts); err != nil {
		return opts, err
	}
	if err := validateOptionCombinations(opts); err != nil {
		return opts, err
	}

	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: hydragen [options] <annotation file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg != "" && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after annotation file, please pass the annotation file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{msg: "only one annotation file can be processed"}
	}
	return nil
}

// modeAliases are the boolean flags that select an output mode directly.
type modeAliases struct {
	header bool
	source bool
	conf   bool
}

func applyModeAliases(opts *options.Program, aliases modeAliases) error {
	var selected []string
	if aliases.header {
		selected = append(selected, options.ModeHeader)
	}
	if aliases.source {
		selected = append(selected, options.ModeSource)
	}
	if aliases.conf {
		selected = append(selected, options.ModeConf)
	}

	switch len(selected) {
	case 0:
		return nil
	case 1:
		opts.Mode = selected[0]
		return nil
	default:
		return fmt.Errorf("only one output mode can be selected, got %s", strings.Join(selected, ", "))
	}
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Mode = strings.ToLower(opts.Mode)
	if opts.Output == options.Stdout {
		opts.Output = ""
	}

	if slices.Contains(options.Modes, opts.Mode) {
		return nil
	}
	return fmt.Errorf("unsupported mode: %s. Valid options: %s",
		opts.Mode, strings.Join(options.Modes, ", "))
}

// validateOptionCombinations rejects options that can not be used together.
func validateOptionCombinations(opts options.Program) error {
	if !opts.Verify {
		return nil
	}
	if opts.Mode != options.ModeConf {
		return fmt.Errorf("-verify is only supported for mode %s", options.ModeConf)
	}
	if opts.WritesToStdout() {
		return fmt.Errorf("-verify requires an output file")
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) *modeAliases {
	aliases := &modeAliases{}

	flags.StringVar(&opts.Output, "o", "", "name of the output file, printed on console if no name given or '-'")
	flags.StringVar(&opts.Mode, "mode", options.ModeConf, "output to generate (header/source/conf)")
	flags.BoolVar(&aliases.header, "appdata-hdr", false, "generate the runtime glue header, same as -mode header")
	flags.BoolVar(&aliases.source, "appdata-src", false, "generate the runtime glue source, same as -mode source")
	flags.BoolVar(&aliases.conf, "dis86-conf", false, "generate the dis86 configuration, same as -mode conf")
	flags.BoolVar(&opts.Verify, "verify", false, "verify the written dis86 configuration by parsing it and comparing it to the annotations")
	flags.BoolVar(&opts.Watch, "watch", false, "regenerate the output whenever the annotation file changes")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	return aliases
}

// Package verification verifies that a generated dis86 configuration
// describes the annotation model it was generated from.
package verification

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/bsl"
	"github.com/retroenv/hydragen/internal/confgen"
	"github.com/retroenv/hydragen/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// ErrMismatch is returned when the configuration does not match the model.
var ErrMismatch = errors.New("configuration mismatch")

// maxLoggedDiffs limits the number of mismatches that are logged.
const maxLoggedDiffs = 10

// VerifyOutput parses the written output file and compares it against the model.
func VerifyOutput(logger *log.Logger, opts options.Program, m *annotations.Model) error {
	if opts.Output == "" || opts.Output == options.Stdout {
		return errors.New("can not verify console output")
	}
	if opts.Mode != options.ModeConf {
		return fmt.Errorf("verification is not supported for mode '%s'", opts.Mode)
	}

	data, err := os.ReadFile(opts.Output)
	if err != nil {
		return fmt.Errorf("reading output file for comparison: %w", err)
	}
	return VerifyConfig(logger, string(data), m)
}

// VerifyConfig parses a dis86 configuration and compares every block against
// the model.
func VerifyConfig(logger *log.Logger, config string, m *annotations.Model) error {
	root, err := bsl.Parse(config)
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	dis86, ok := root.GetNode(confgen.RootNode)
	if !ok {
		return fmt.Errorf("%w: missing '%s' node", ErrMismatch, confgen.RootNode)
	}

	c := &checker{logger: logger}
	c.codeSegments(dis86, m.CodeSegments)
	c.functions(dis86, m.Functions)
	c.structures(dis86, m.Structs)
	c.globals(dis86, m.Globals)
	c.textSection(dis86, m.TextRegions)

	if c.diffs == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d differences", ErrMismatch, c.diffs)
}

type checker struct {
	logger *log.Logger
	diffs  int
}

func (c *checker) mismatch(path, expected, got string) {
	c.diffs++
	if c.diffs <= maxLoggedDiffs {
		c.logger.Error("Config mismatch",
			log.String("path", path),
			log.String("expected", expected),
			log.String("got", got))
	}
}

// block returns the block node and checks that its keys equal the expected
// names in order and without duplicates.
func (c *checker) block(root *bsl.Node, name string, expected []string) (*bsl.Node, bool) {
	value, ok := root.Child(name)
	node := value.Node
	if !ok || node == nil {
		c.mismatch(name, "block", "missing")
		return nil, false
	}

	keys := node.Keys()
	seen := set.New[string]()
	for _, key := range keys {
		if seen.Contains(key) {
			c.mismatch(name+"."+key, "unique key", "duplicate")
		}
		seen.Add(key)
	}

	if len(keys) != len(expected) {
		c.mismatch(name, strconv.Itoa(len(expected))+" entries", strconv.Itoa(len(keys))+" entries")
		return node, false
	}
	for i, key := range keys {
		if key != expected[i] {
			c.mismatch(fmt.Sprintf("%s[%d]", name, i), expected[i], key)
			return node, false
		}
	}
	return node, true
}

// entry returns the node of a named entry of a block.
func (c *checker) entry(block *bsl.Node, blockName, key string) (*bsl.Node, bool) {
	value, ok := block.Child(key)
	if !ok || !value.IsNode() {
		c.mismatch(blockName+"."+key, "properties", "missing")
		return nil, false
	}
	return value.Node, true
}

// property compares a string property, names of properties never contain
// dots so the path lookup of the node can be used.
func (c *checker) property(entry *bsl.Node, path, name, expected string) {
	value, ok := entry.GetStr(name)
	path += "." + name
	switch {
	case !ok:
		c.mismatch(path, expected, "missing")
	case value != expected:
		c.mismatch(path, expected, value)
	}
}

// optional compares a property that is only written when it has a value.
func (c *checker) optional(entry *bsl.Node, path, name, expected string) {
	if expected == "" {
		c.absent(entry, path, name)
		return
	}
	c.property(entry, path, name, expected)
}

func (c *checker) absent(entry *bsl.Node, path, name string) {
	if _, ok := entry.Child(name); ok {
		c.mismatch(path+"."+name, "absent", "present")
	}
}

func (c *checker) codeSegments(root *bsl.Node, segments []annotations.CodeSegment) {
	keys := make([]string, 0, len(segments))
	for i := range segments {
		keys = append(keys, fmt.Sprintf("_%04d", i))
	}
	node, ok := c.block(root, confgen.CodeSegmentsNode, keys)
	if !ok {
		return
	}
	for i, cs := range segments {
		path := confgen.CodeSegmentsNode + "." + keys[i]
		entry, ok := c.entry(node, confgen.CodeSegmentsNode, keys[i])
		if !ok {
			continue
		}
		c.property(entry, path, "seg", strconv.Itoa(int(cs.Segment)))
		c.property(entry, path, "name", cs.Name)
	}
}

func (c *checker) functions(root *bsl.Node, functions []annotations.Function) {
	names := make([]string, 0, len(functions))
	for _, fun := range functions {
		names = append(names, fun.Name)
	}
	node, ok := c.block(root, confgen.FunctionsNode, names)
	if !ok {
		return
	}
	for _, fun := range functions {
		path := confgen.FunctionsNode + "." + fun.Name
		entry, ok := c.entry(node, confgen.FunctionsNode, fun.Name)
		if !ok {
			continue
		}
		c.property(entry, path, "start", fun.Start.String())
		c.property(entry, path, "end", confgen.FormatAddr(fun.End))
		c.property(entry, path, "args", confgen.FormatArgs(fun.Args))
		c.property(entry, path, "ret", fun.Ret)
		c.property(entry, path, "mode", confgen.CallMode(fun.Flag))
		c.optional(entry, path, "dont_pop_args", flagValue(fun.Flag == annotations.FlagDontPopArgs))
		c.optional(entry, path, "indirect_call_location", flagValue(fun.Flag == annotations.FlagIndirectCallLocation))
		c.optional(entry, path, "entry", confgen.FormatAddr(fun.Entry))
		c.optional(entry, path, "regargs", strings.Join(fun.RegArgs, ","))
	}
}

func (c *checker) structures(root *bsl.Node, structs []annotations.Struct) {
	names := make([]string, 0, len(structs))
	for _, st := range structs {
		names = append(names, st.Name)
	}
	node, ok := c.block(root, confgen.StructuresNode, names)
	if !ok {
		return
	}
	for _, st := range structs {
		path := confgen.StructuresNode + "." + st.Name
		entry, ok := c.entry(node, confgen.StructuresNode, st.Name)
		if !ok {
			continue
		}
		c.property(entry, path, "size", strconv.Itoa(st.Size))

		members := make([]string, 0, len(st.Members))
		for _, mbr := range st.Members {
			members = append(members, mbr.Name)
		}
		memberBlock, ok := c.block(entry, "members", members)
		if !ok {
			continue
		}
		for _, mbr := range st.Members {
			mbrPath := path + ".members." + mbr.Name
			mbrEntry, ok := c.entry(memberBlock, path+".members", mbr.Name)
			if !ok {
				continue
			}
			c.property(mbrEntry, mbrPath, "type", mbr.Type.String())
			c.property(mbrEntry, mbrPath, "off", fmt.Sprintf("0x%02x", mbr.Offset))
		}
	}
}

func (c *checker) globals(root *bsl.Node, globals []annotations.Global) {
	names := make([]string, 0, len(globals))
	for _, g := range globals {
		names = append(names, g.Name)
	}
	node, ok := c.block(root, confgen.GlobalsNode, names)
	if !ok {
		return
	}
	for _, g := range globals {
		path := confgen.GlobalsNode + "." + g.Name
		entry, ok := c.entry(node, confgen.GlobalsNode, g.Name)
		if !ok {
			continue
		}
		c.property(entry, path, "off", fmt.Sprintf("0x%04x", g.Offset))
		c.property(entry, path, "type", g.Type.String())
	}
}

func (c *checker) textSection(root *bsl.Node, regions []annotations.TextRegion) {
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		names = append(names, r.Name)
	}
	node, ok := c.block(root, confgen.TextSectionNode, names)
	if !ok {
		return
	}
	for _, r := range regions {
		path := confgen.TextSectionNode + "." + r.Name
		entry, ok := c.entry(node, confgen.TextSectionNode, r.Name)
		if !ok {
			continue
		}
		c.property(entry, path, "start", r.Start.String())
		c.property(entry, path, "end", r.End.String())
		c.property(entry, path, "type", r.Type.String())
		c.optional(entry, path, "access", confgen.FormatAddr(r.Access))
	}
}

// flagValue returns the value of a boolean property, which is omitted when
// not set.
func flagValue(enabled bool) string {
	if enabled {
		return "1"
	}
	return ""
}

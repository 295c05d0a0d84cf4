package confgen

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/hydragen/internal/addr"
	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/typeexpr"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func ptr[T any](v T) *T {
	return &v
}

func testModel(t *testing.T) *annotations.Model {
	t.Helper()

	in := annotations.Input{
		CodeSegments: []annotations.CodeSegment{{Segment: 0x1000, Name: "main"}, {Segment: 0x1200, Name: "gfx"}},
		Functions: []annotations.Function{
			{Name: "F_Main", Ret: "u16", Args: ptr(2), Start: addr.MustParse("1000:0000"),
				End: ptr(addr.MustParse("1000:0020")), Flag: annotations.FlagNear},
			{Name: "F_Foo", Start: addr.MustParse("overlay_05:0010"), Entry: ptr(addr.MustParse("05:0200"))},
			{Name: "F_Call", Ret: "u8", Args: ptr(0), Start: addr.MustParse("1000:0100"),
				Flag: annotations.FlagIndirectCallLocation, RegArgs: []string{"ax", "dx"}},
			{Name: "F_Cdecl", Ret: "void", Args: ptr(1), Start: addr.MustParse("1000:0200"), Flag: annotations.FlagDontPopArgs},
		},
		Structs: []annotations.Struct{
			{Name: "pos_t", Size: 4, Members: []annotations.Member{
				{Name: "x", Type: typeexpr.MustParse("u16"), Offset: 0},
				{Name: "y", Type: typeexpr.MustParse("u16"), Offset: 2},
			}},
		},
		Globals: []annotations.Global{
			{Name: "G_Table", Type: typeexpr.MustParse("pos_t[4]"), Offset: 0x200},
		},
		TextRegions: []annotations.TextRegion{
			{Name: "T_Bytes", Type: typeexpr.MustParse("u8[]"), Start: addr.MustParse("1000:0000"),
				End: addr.MustParse("1000:0010"), Access: ptr(addr.MustParse("1000:0004"))},
		},
	}

	m, err := annotations.New(log.NewTestLogger(t), in)
	assert.NoError(t, err)
	return m
}

func TestWrite(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.NoError(t, Write(buf, testModel(t)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "dis86 {\n  code_segments {\n"))
	assert.True(t, strings.HasSuffix(out, "  }\n}\n"))

	expected := []string{
		"    _0000 { seg 4096 name main             }\n",
		"    _0001 { seg 4608 name gfx              }\n",
		"    F_Main                         { start 1000:0000 end 1000:0020 mode near ret u16 args 2 }\n",
		"    F_Foo                          { start overlay_0005:0010 end \"\" mode far ret \"\" args -1 entry 0005:0200 }\n",
		"    F_Call                         { start 1000:0100 end \"\" mode far ret u8 args 0 indirect_call_location 1 regargs ax,dx }\n",
		"dont_pop_args 1 }\n",
		"    pos_t           { size 4 members {\n",
		"      x                    { type u16             off 0x00 }\n",
		"      y                    { type u16             off 0x02 }\n    }}\n",
		"    G_Table                        { off 0x0200  type pos_t[4]             }\n",
		"    T_Bytes                        { start 1000:0000  end 1000:0010 type u8[16]               access 1000:0004 }\n",
	}
	for _, s := range expected {
		assert.Contains(t, out, s)
	}

	blocks := []string{"code_segments {", "functions {", "structures {", "globals {", "text_section {"}
	last := -1
	for _, block := range blocks {
		idx := strings.Index(out, block)
		assert.True(t, idx > last)
		last = idx
	}
}

func TestWriteEmptyModel(t *testing.T) {
	buf := &bytes.Buffer{}
	assert.NoError(t, Write(buf, &annotations.Model{}))

	expected := "dis86 {\n" +
		"  code_segments {\n  }\n" +
		"  functions {\n  }\n" +
		"  structures {\n  }\n" +
		"  globals {\n  }\n" +
		"  text_section {\n  }\n" +
		"}\n"
	assert.Equal(t, expected, buf.String())
}

var errClosed = errors.New("closed")

type closedWriter struct{}

func (closedWriter) Write([]byte) (int, error) {
	return 0, errClosed
}

func TestWriteError(t *testing.T) {
	err := Write(closedWriter{}, &annotations.Model{})
	assert.True(t, errors.Is(err, errClosed))
}

package addr

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Addr
	}{
		{input: "1000:0010", want: Addr{Segment: 0x1000, Offset: 0x10}},
		{input: "05:0200", want: Addr{Segment: 5, Offset: 0x200}},
		{input: "overlay_05:0010", want: Addr{Overlay: true, Segment: 5, Offset: 0x10}},
		{input: "ffff:ffff", want: Addr{Segment: 0xffff, Offset: 0xffff}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{"1000", "1000:0010:0020", "zz:0010", "1000:10000", "overlay:0010", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.True(t, errors.Is(err, ErrParse))
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "0005:0200", MustParse("05:0200").String())
	assert.Equal(t, "overlay_0005:0010", MustParse("overlay_05:0010").String())

	a := MustParse("overlay_1234:abcd")
	again, err := Parse(a.String())
	assert.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestBytesSince(t *testing.T) {
	n, err := MustParse("1000:0010").BytesSince(MustParse("1000:0000"))
	assert.NoError(t, err)
	assert.Equal(t, 16, n)

	n, err = MustParse("1000:0000").BytesSince(MustParse("1000:0010"))
	assert.NoError(t, err)
	assert.Equal(t, -16, n)

	n, err = MustParse("overlay_05:0020").BytesSince(MustParse("overlay_05:0010"))
	assert.NoError(t, err)
	assert.Equal(t, 16, n)
}

func TestBytesSinceMismatch(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{a: "05:0000", b: "06:0000"},
		{a: "overlay_05:0010", b: "05:0000"},
	}

	for _, tt := range tests {
		_, err := MustParse(tt.a).BytesSince(MustParse(tt.b))
		assert.True(t, errors.Is(err, ErrAddressSpaceMismatch))
	}
}

func TestParseOffset(t *testing.T) {
	off, err := ParseOffset("0x1234")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1234), off)

	off, err = ParseOffset("ff")
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xff), off)

	_, err = ParseOffset("0x10000")
	assert.True(t, errors.Is(err, ErrParse))
}

package typeexpr

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		base    string
		isArray bool
		length  int // -1 for unsized
	}{
		{input: "u8", base: "u8", length: -1},
		{input: "u16[4]", base: "u16", isArray: true, length: 4},
		{input: "u8[]", base: "u8", isArray: true, length: -1},
		{input: "player_t[0]", base: "player_t", isArray: true, length: 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			typ, err := Parse(tt.input)
			assert.NoError(t, err)
			assert.Equal(t, tt.base, typ.Base)
			assert.Equal(t, tt.isArray, typ.IsArray)
			if tt.length < 0 {
				assert.Nil(t, typ.Len)
			} else {
				assert.NotNil(t, typ.Len)
				assert.Equal(t, tt.length, *typ.Len)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{"u8[2][3]", "u8[2", "u8[x]", "[4]", "u8[-1]", "u8]", "u8[3]]", " u8", "u8 ", "pos t[2]"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			assert.True(t, errors.Is(err, ErrParse))
			assert.ErrorContains(t, err, input)
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, input := range []string{"u16[4]", "u8", "i32[]", "pos_t[12]"} {
		typ, err := Parse(input)
		assert.NoError(t, err)
		assert.Equal(t, input, typ.String())

		again, err := Parse(typ.String())
		assert.NoError(t, err)
		assert.True(t, typ.Equal(again))
	}
}

func TestSizeInBytes(t *testing.T) {
	reg := NewRegistry()
	assert.NoError(t, reg.Register("pos_t", 6))

	tests := []struct {
		input string
		size  int
		known bool
	}{
		{input: "u8", size: 1, known: true},
		{input: "i16", size: 2, known: true},
		{input: "u32[3]", size: 12, known: true},
		{input: "pos_t[2]", size: 12, known: true},
		{input: "pos_t", size: 6, known: true},
		{input: "u16[]", known: false},
		{input: "unknown_t", known: false},
		{input: "unknown_t[4]", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			size, ok := MustParse(tt.input).SizeInBytes(reg)
			assert.Equal(t, tt.known, ok)
			if tt.known {
				assert.Equal(t, tt.size, size)
			}
		})
	}
}

func TestAsScalar(t *testing.T) {
	typ := MustParse("u16[8]").AsScalar()
	assert.False(t, typ.IsArray)
	assert.Nil(t, typ.Len)
	assert.Equal(t, "u16", typ.String())
}

func TestCDecl(t *testing.T) {
	decl, err := MustParse("u16[4]").CDecl("table")
	assert.NoError(t, err)
	assert.Equal(t, "u16             table[4]", decl)

	decl, err = MustParse("u8").CDecl("flag")
	assert.NoError(t, err)
	assert.Equal(t, "u8              flag", decl)

	_, err = MustParse("u8[]").CDecl("open")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.True(t, reg.Has("u8"))
	assert.False(t, reg.Has("obj_t"))

	assert.NoError(t, reg.Register("obj_t", 16))
	size, ok := reg.Size("obj_t")
	assert.True(t, ok)
	assert.Equal(t, 16, size)

	err := reg.Register("obj_t", 16)
	assert.True(t, errors.Is(err, ErrDuplicateType))

	err = reg.Register("u16", 2)
	assert.True(t, errors.Is(err, ErrDuplicateType))

	// registries are independent of each other
	assert.False(t, NewRegistry().Has("obj_t"))
}

package config

import (
	"bytes"
	"testing"

	"github.com/retroenv/hydragen/internal/annotations"
	"github.com/retroenv/hydragen/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestCreateGenerator(t *testing.T) {
	tests := []struct {
		mode   string
		prefix string
	}{
		{mode: options.ModeHeader, prefix: "#pragma once"},
		{mode: options.ModeSource, prefix: "#include"},
		{mode: options.ModeConf, prefix: "dis86 {"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			gen, err := CreateGenerator(tt.mode)
			assert.NoError(t, err)

			buf := &bytes.Buffer{}
			assert.NoError(t, gen(buf, &annotations.Model{}))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte(tt.prefix)))
		})
	}

	_, err := CreateGenerator("asm")
	assert.ErrorContains(t, err, "unsupported mode")
}

func TestCreateLogger(t *testing.T) {
	assert.NotNil(t, CreateLogger(true, false))
	assert.NotNil(t, CreateLogger(false, true))
}

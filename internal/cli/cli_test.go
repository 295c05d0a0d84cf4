package cli

import (
	"errors"
	"testing"

	"github.com/retroenv/hydragen/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options.Program
	}{
		{
			name: "defaults",
			args: []string{"prog", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml"},
				Flags:      options.Flags{Mode: options.ModeConf},
			},
		},
		{
			name: "stdout output is normalized",
			args: []string{"prog", "-o", "-", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml"},
				Flags:      options.Flags{Mode: options.ModeConf},
			},
		},
		{
			name: "mode flag",
			args: []string{"prog", "-mode", "HEADER", "-o", "appdata.h", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml", Output: "appdata.h"},
				Flags:      options.Flags{Mode: options.ModeHeader},
			},
		},
		{
			name: "mode alias",
			args: []string{"prog", "-appdata-src", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml"},
				Flags:      options.Flags{Mode: options.ModeSource},
			},
		},
		{
			name: "verify with output file",
			args: []string{"prog", "-verify", "-o", "dis86.bsl", "-debug", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml", Output: "dis86.bsl"},
				Flags:      options.Flags{Mode: options.ModeConf, Verify: true, Debug: true},
			},
		},
		{
			name: "watch and quiet",
			args: []string{"prog", "-watch", "-q", "game.yaml"},
			want: options.Program{
				Parameters: options.Parameters{Input: "game.yaml"},
				Flags:      options.Flags{Mode: options.ModeConf, Watch: true, Quiet: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		usageError bool
		errorText  string
	}{
		{name: "missing input", args: []string{"prog"}, usageError: true},
		{name: "unknown flag", args: []string{"prog", "-unknown", "game.yaml"}, usageError: true},
		{name: "flag after input", args: []string{"prog", "game.yaml", "-q"}, usageError: true, errorText: "last argument"},
		{name: "two inputs", args: []string{"prog", "a.yaml", "b.yaml"}, usageError: true, errorText: "only one"},
		{name: "unsupported mode", args: []string{"prog", "-mode", "asm", "game.yaml"}, errorText: "unsupported mode: asm"},
		{name: "two aliases", args: []string{"prog", "-appdata-hdr", "-dis86-conf", "game.yaml"}, errorText: "only one output mode"},
		{name: "verify header", args: []string{"prog", "-verify", "-mode", "header", "-o", "a.h", "game.yaml"}, errorText: "only supported for mode conf"},
		{name: "verify stdout", args: []string{"prog", "-verify", "game.yaml"}, errorText: "requires an output file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseArgs(tt.args)
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usageError, errors.As(err, &usageErr))
			if tt.errorText != "" {
				assert.ErrorContains(t, err, tt.errorText)
			}
		})
	}
}

func TestValidateArgs(t *testing.T) {
	assert.NoError(t, validateArgs([]string{"game.yaml"}))
	assert.Error(t, validateArgs([]string{"game.yaml", "-o"}))
}

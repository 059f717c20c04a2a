package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/regvm/aot"
	"github.com/timewinder-dev/regvm/codec"
)

func TestDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 16, c.VM.Registers)
	assert.Equal(t, 128, c.Cache.Programs)

	f, err := c.CodecFormat()
	require.NoError(t, err)
	assert.Equal(t, codec.MsgPack, f)
	tg, err := c.Target()
	require.NoError(t, err)
	assert.Equal(t, aot.Win64, tg)
	lvl, err := c.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, lvl)
}

func TestParseOverridesDefaults(t *testing.T) {
	c, err := Parse(strings.NewReader(`
[vm]
registers = 4

[codec]
format = "cbor"

[aot]
target = "sysv"
`))
	require.NoError(t, err)
	assert.Equal(t, 4, c.VM.Registers)
	assert.Equal(t, "cbor", c.Codec.Format)
	assert.Equal(t, "sysv", c.AOT.Target)
	assert.Equal(t, 128, c.Cache.Programs, "unset keys keep their default")
	assert.Equal(t, "info", c.Log.Level)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad toml", "[vm", "toml"},
		{"unknown key", "[vm]\nstack = 3", `unknown config key "vm.stack"`},
		{"zero registers", "[vm]\nregisters = 0", "vm.registers must be positive"},
		{"zero cache", "[cache]\nprograms = 0", "cache.programs must be positive"},
		{"bad format", "[codec]\nformat = \"json\"", "unknown format"},
		{"bad target", "[aot]\ntarget = \"arm64\"", "unknown target"},
		{"bad level", "[log]\nlevel = \"loud\"", "loud"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	c, err := Load(filepath.Join(dir, DefaultPath), true)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	_, err = Load(filepath.Join(dir, DefaultPath), false)
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644))
	c, err = Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Log.Level)

	require.NoError(t, os.WriteFile(path, []byte("[vm]\nregisters = -1\n"), 0o644))
	_, err = Load(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}

// Package config loads regvm.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"github.com/timewinder-dev/regvm/aot"
	"github.com/timewinder-dev/regvm/codec"
)

// DefaultPath is read when no --config flag is given. A missing default file
// is not an error.
const DefaultPath = "regvm.toml"

type Config struct {
	VM    VMConfig    `toml:"vm"`
	Codec CodecConfig `toml:"codec"`
	AOT   AOTConfig   `toml:"aot"`
	Cache CacheConfig `toml:"cache"`
	Log   LogConfig   `toml:"log"`
}

type VMConfig struct {
	Registers int `toml:"registers,omitempty"`
}

type CodecConfig struct {
	Format string `toml:"format,omitempty"`
}

type AOTConfig struct {
	Target string `toml:"target,omitempty"`
}

type CacheConfig struct {
	Programs int `toml:"programs,omitempty"`
}

type LogConfig struct {
	Level string `toml:"level,omitempty"`
}

func Default() *Config {
	return &Config{
		VM:    VMConfig{Registers: 16},
		Codec: CodecConfig{Format: codec.MsgPack.String()},
		AOT:   AOTConfig{Target: aot.Win64.String()},
		Cache: CacheConfig{Programs: 128},
		Log:   LogConfig{Level: zerolog.InfoLevel.String()},
	}
}

// Parse decodes TOML over the defaults, so absent keys keep their default.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	md, err := toml.NewDecoder(r).Decode(c)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return c, c.Validate()
}

// Load reads path. When optional is set a missing file yields the defaults.
func Load(path string, optional bool) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.VM.Registers < 1 {
		return fmt.Errorf("vm.registers must be positive, got %d", c.VM.Registers)
	}
	if c.Cache.Programs < 1 {
		return fmt.Errorf("cache.programs must be positive, got %d", c.Cache.Programs)
	}
	if _, err := c.CodecFormat(); err != nil {
		return err
	}
	if _, err := c.Target(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

func (c *Config) CodecFormat() (codec.Format, error) {
	return codec.ParseFormat(c.Codec.Format)
}

func (c *Config) Target() (aot.Target, error) {
	return aot.ParseTarget(c.AOT.Target)
}

func (c *Config) LogLevel() (zerolog.Level, error) {
	return zerolog.ParseLevel(c.Log.Level)
}

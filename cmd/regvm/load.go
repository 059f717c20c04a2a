package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/regvm/asm"
	"github.com/timewinder-dev/regvm/cas"
	"github.com/timewinder-dev/regvm/codec"
	"github.com/timewinder-dev/regvm/vm"
)

func newLoader() (*cas.Loader, error) {
	format, err := cfg.CodecFormat()
	if err != nil {
		return nil, err
	}
	return cas.NewLoader(cas.NewMemoryStore(), cfg.Cache.Programs, format)
}

// loadProgram reads a .star builder script or an encoded program. Encoded
// programs go through loader so identical files decode once.
func loadProgram(loader *cas.Loader, path string) (*vm.Program, error) {
	if filepath.Ext(path) == ".star" {
		return asm.LoadFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !codec.Sniff(data) {
		return nil, fmt.Errorf("%s: not an encoded program or .star script", path)
	}
	h, prog, err := loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debug().Str("file", path).Stringer("hash", h).Msg("loaded program")
	return prog, nil
}

func reportError(err error) {
	var fault *vm.Fault
	if errors.As(err, &fault) {
		fmt.Fprintln(os.Stderr, color.Red.Sprint("fault: ")+color.Yellow.Sprint(fault.Kind)+": "+fault.Error())
		return
	}
	fmt.Fprintln(os.Stderr, color.Red.Sprint("error: ")+err.Error())
}

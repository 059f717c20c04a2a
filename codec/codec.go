// Package codec serializes programs to bytes and back.
//
// An encoded program is a 4-byte magic "RGVM", one format byte and the body
// in that format. Both formats carry the same wire records; msgpack is the
// default and CBOR uses canonical encoding so equal programs produce equal
// bytes.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"github.com/shamaton/msgpack/v2"
	"github.com/timewinder-dev/regvm/vm"
)

type Format uint8

const (
	MsgPack Format = iota
	CBOR
)

func (f Format) String() string {
	switch f {
	case MsgPack:
		return "msgpack"
	case CBOR:
		return "cbor"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "msgpack":
		return MsgPack, nil
	case "cbor":
		return CBOR, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

var magic = []byte("RGVM")

const headerLen = 5

var (
	ErrBadMagic        = errors.New("not an encoded program")
	ErrUnknownFormat   = errors.New("unknown format")
	ErrVersionMismatch = errors.New("version mismatch")
	ErrMalformed       = errors.New("malformed program")
)

// DecodeError is returned by Decode for every failure.
type DecodeError struct {
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return "decode program: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

func Encode(p *vm.Program, f Format) ([]byte, error) {
	w := decomposeProgram(p)
	var body []byte
	var err error
	switch f {
	case MsgPack:
		body, err = msgpack.Marshal(&w)
	case CBOR:
		body, err = cborEncMode.Marshal(&w)
	default:
		return nil, fmt.Errorf("encode program: %w: %d", ErrUnknownFormat, uint8(f))
	}
	if err != nil {
		return nil, fmt.Errorf("encode program as %s: %w", f, err)
	}
	out := make([]byte, 0, headerLen+len(body))
	out = append(out, magic...)
	out = append(out, byte(f))
	out = append(out, body...)
	log.Trace().Str("format", f.String()).Int("instructions", len(p.Instructions)).Int("bytes", len(out)).Msg("codec: encoded program")
	return out, nil
}

// Decode reverses Encode. Programs whose version differs from
// vm.CurrentVersion are rejected.
func Decode(data []byte) (*vm.Program, error) {
	if len(data) < headerLen || !bytes.Equal(data[:len(magic)], magic) {
		return nil, &DecodeError{Err: ErrBadMagic}
	}
	f := Format(data[len(magic)])
	body := data[headerLen:]

	var w wireProgram
	var err error
	switch f {
	case MsgPack:
		err = msgpack.Unmarshal(body, &w)
	case CBOR:
		err = cbor.Unmarshal(body, &w)
	default:
		return nil, &DecodeError{Format: f, Err: fmt.Errorf("%w: %d", ErrUnknownFormat, uint8(f))}
	}
	if err != nil {
		return nil, &DecodeError{Format: f, Err: fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if w.Version != vm.CurrentVersion {
		return nil, &DecodeError{Format: f, Err: fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, w.Version, vm.CurrentVersion)}
	}
	p, err := recomposeProgram(&w)
	if err != nil {
		return nil, &DecodeError{Format: f, Err: err}
	}
	log.Trace().Str("format", f.String()).Int("instructions", len(p.Instructions)).Msg("codec: decoded program")
	return p, nil
}

// Sniff reports whether data starts with the encoded-program magic.
func Sniff(data []byte) bool {
	return len(data) >= headerLen && bytes.Equal(data[:len(magic)], magic)
}

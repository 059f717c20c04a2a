package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/regvm/vm"
)

func sampleProgram() *vm.Program {
	obj := vm.NewObject()
	obj.Set(vm.StrValue("name"), vm.StrValue("regvm"))
	obj.Set(vm.IntValue(1), vm.NewArray(vm.FloatValue(-0.25), vm.Null))
	obj.Delete(vm.BoolTrue)
	obj.Set(vm.FloatValue(1), vm.StrValue("float key"))

	return vm.NewProgram([]vm.Op{
		vm.LoadV(0, vm.IntValue(10)),
		vm.Store(0, "x"),
		vm.IncInto("x", 1, true),
		vm.Dec("x"),
		vm.BinaryK(vm.ADDK, 2, vm.FloatValue(1.5), 1),
		vm.MakeObject(3),
		vm.StoreIndexK(3, vm.StrValue("k"), 2),
		vm.IndexN(2, 3, 4),
		vm.LoadV(3, obj),
		vm.JumpIf(vm.JNEQ, 0, 1, 12),
		vm.Call(12),
		vm.Halt(),
		vm.PrintK(vm.StrValue("héllo")),
		vm.LoadV(0, vm.FloatValue(math.Copysign(0, -1))),
		vm.LoadV(1, vm.FloatValue(math.NaN())),
		vm.LoadV(2, vm.FloatValue(math.Inf(-1))),
		vm.Return(),
	}, []vm.Value{vm.IntValue(7), vm.StrValue("const"), vm.NewArray(vm.BoolFalse)})
}

func TestRoundTrip(t *testing.T) {
	for _, f := range []Format{MsgPack, CBOR} {
		t.Run(f.String(), func(t *testing.T) {
			p := sampleProgram()
			data, err := Encode(p, f)
			require.NoError(t, err)
			assert.Equal(t, "RGVM", string(data[:4]))
			assert.Equal(t, byte(f), data[4])
			assert.True(t, Sniff(data))

			out, err := Decode(data)
			require.NoError(t, err)
			assert.True(t, out.Equal(p))
			assert.Equal(t, vm.CurrentVersion, out.Version)
		})
	}
}

func TestRoundTripEmpty(t *testing.T) {
	for _, f := range []Format{MsgPack, CBOR} {
		data, err := Encode(vm.FromInstructions(), f)
		require.NoError(t, err)
		out, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	}
}

func TestCBORIsDeterministic(t *testing.T) {
	a, err := Encode(sampleProgram(), CBOR)
	require.NoError(t, err)
	b, err := Encode(sampleProgram(), CBOR)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecodeErrors(t *testing.T) {
	good, err := Encode(sampleProgram(), MsgPack)
	require.NoError(t, err)

	old := sampleProgram()
	old.Version = 0
	stale, err := Encode(old, CBOR)
	require.NoError(t, err)

	unknown := append([]byte{}, good...)
	unknown[4] = 9

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrBadMagic},
		{"wrong magic", []byte("ELF\x00\x00rest"), ErrBadMagic},
		{"unknown format", unknown, ErrUnknownFormat},
		{"version mismatch", stale, ErrVersionMismatch},
		{"truncated body", good[:len(good)/2], ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.want)
			var de *DecodeError
			require.ErrorAs(t, err, &de)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("CBOR")
	require.NoError(t, err)
	assert.Equal(t, CBOR, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, MsgPack, f)

	_, err = ParseFormat("bincode")
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestEncodedProgramRuns(t *testing.T) {
	data, err := Encode(sampleProgram(), MsgPack)
	require.NoError(t, err)
	p, err := Decode(data)
	require.NoError(t, err)
	require.NoError(t, p.Verify(4))
}

func TestFloatBitsSurvive(t *testing.T) {
	negZero := vm.FloatValue(math.Copysign(0, -1))
	nan := vm.FloatValue(math.Float64frombits(0x7ff8000000000bad))
	for _, f := range []Format{MsgPack, CBOR} {
		t.Run(f.String(), func(t *testing.T) {
			data, err := Encode(vm.FromInstructions(vm.LoadV(0, negZero), vm.PrintK(nan)), f)
			require.NoError(t, err)
			out, err := Decode(data)
			require.NoError(t, err)

			z := out.Instructions[0].Value.(vm.FloatValue)
			assert.True(t, math.Signbit(float64(z)), "sign of -0 lost")
			n := out.Instructions[1].Value.(vm.FloatValue)
			assert.Equal(t, uint64(0x7ff8000000000bad), math.Float64bits(float64(n)))
		})
	}
}

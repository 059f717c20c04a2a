package cas

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timewinder-dev/regvm/codec"
	"github.com/timewinder-dev/regvm/vm"
	"golang.org/x/sync/errgroup"
)

func counterProgram(n int32) *vm.Program {
	return vm.FromInstructions(
		vm.StoreK("x", vm.IntValue(n)),
		vm.IncInto("x", 0, false),
		vm.Print(0),
		vm.Halt(),
	)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	h1, err := s.Put([]byte("alpha"))
	require.NoError(t, err)
	h2, err := s.Put([]byte("alpha"))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Has(h1))

	data, err := s.Get(h1)
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	_, err = s.Get(h1 + 1)
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.Has(h1+1))
}

func TestHashString(t *testing.T) {
	h := HashBytes([]byte("program"))
	parsed, err := ParseHash(h.String())
	require.NoError(t, err)
	assert.Equal(t, h, parsed)
	assert.Len(t, h.String(), 16)

	_, err = ParseHash("not-hex")
	require.Error(t, err)
}

func TestLoaderSharesPrograms(t *testing.T) {
	store := NewMemoryStore()
	l, err := NewLoader(store, 4, codec.MsgPack)
	require.NoError(t, err)

	h, err := l.PutProgram(counterProgram(1))
	require.NoError(t, err)
	assert.True(t, store.Has(h))

	a, err := l.Load(h)
	require.NoError(t, err)
	b, err := l.Load(h)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, a.Equal(counterProgram(1)))

	stats := l.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(0), stats.Misses)
}

func TestLoaderDecodesOnMiss(t *testing.T) {
	store := NewMemoryStore()
	data, err := codec.Encode(counterProgram(5), codec.CBOR)
	require.NoError(t, err)
	h, err := store.Put(data)
	require.NoError(t, err)

	l, err := NewLoader(store, 0, codec.MsgPack)
	require.NoError(t, err)
	p, err := l.Load(h)
	require.NoError(t, err)
	assert.True(t, p.Equal(counterProgram(5)))
	assert.Equal(t, int64(1), l.Stats().Misses)

	_, err = l.Load(h + 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoaderEviction(t *testing.T) {
	store := NewMemoryStore()
	l, err := NewLoader(store, 2, codec.MsgPack)
	require.NoError(t, err)

	var hashes []Hash
	for i := range 3 {
		h, err := l.PutProgram(counterProgram(int32(i)))
		require.NoError(t, err)
		hashes = append(hashes, h)
	}
	assert.Equal(t, 2, l.Stats().Size)

	// The first program was evicted but is still in the store.
	p, err := l.Load(hashes[0])
	require.NoError(t, err)
	assert.True(t, p.Equal(counterProgram(0)))
	assert.Equal(t, int64(1), l.Stats().Misses)
}

func TestLoadBytes(t *testing.T) {
	l, err := NewLoader(NewMemoryStore(), 8, codec.MsgPack)
	require.NoError(t, err)
	data, err := codec.Encode(counterProgram(9), codec.MsgPack)
	require.NoError(t, err)

	h, p, err := l.LoadBytes(data)
	require.NoError(t, err)
	assert.Equal(t, HashBytes(data), h)

	again, err := l.Load(h)
	require.NoError(t, err)
	assert.Same(t, p, again)

	_, _, err = l.LoadBytes([]byte("garbage"))
	require.ErrorIs(t, err, codec.ErrBadMagic)
}

func TestLoaderConcurrentUse(t *testing.T) {
	l, err := NewLoader(NewMemoryStore(), 4, codec.MsgPack)
	require.NoError(t, err)
	var hashes []Hash
	for i := range 8 {
		h, err := l.PutProgram(counterProgram(int32(i)))
		require.NoError(t, err)
		hashes = append(hashes, h)
	}

	var g errgroup.Group
	for i := range 32 {
		h := hashes[i%len(hashes)]
		want := int32(i % len(hashes))
		g.Go(func() error {
			p, err := l.Load(h)
			if err != nil {
				return err
			}
			if !p.Equal(counterProgram(want)) {
				return fmt.Errorf("hash %s: wrong program", h)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

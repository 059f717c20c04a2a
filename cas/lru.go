package cas

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"github.com/timewinder-dev/regvm/codec"
	"github.com/timewinder-dev/regvm/vm"
)

const DefaultCacheSize = 128

// Loader fronts a Store with an LRU of decoded programs. Every caller that
// loads the same hash gets the same *vm.Program, which must be treated as
// read-only.
type Loader struct {
	store  Store
	format codec.Format
	cache  *lru.Cache[Hash, *vm.Program]

	hits   atomic.Int64
	misses atomic.Int64
}

// NewLoader creates a loader that encodes new programs with format and
// caches up to size decoded programs (DefaultCacheSize when size <= 0).
func NewLoader(store Store, size int, format codec.Format) (*Loader, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[Hash, *vm.Program](size)
	if err != nil {
		return nil, fmt.Errorf("create program cache: %w", err)
	}
	return &Loader{
		store:  store,
		format: format,
		cache:  cache,
	}, nil
}

// PutProgram encodes p, stores it and primes the cache with p itself.
func (l *Loader) PutProgram(p *vm.Program) (Hash, error) {
	data, err := codec.Encode(p, l.format)
	if err != nil {
		return 0, err
	}
	h, err := l.store.Put(data)
	if err != nil {
		return 0, fmt.Errorf("store program: %w", err)
	}
	l.cache.Add(h, p)
	return h, nil
}

func (l *Loader) Load(h Hash) (*vm.Program, error) {
	if p, ok := l.cache.Get(h); ok {
		l.hits.Add(1)
		return p, nil
	}
	l.misses.Add(1)
	data, err := l.store.Get(h)
	if err != nil {
		return nil, err
	}
	p, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", h, err)
	}
	l.cache.Add(h, p)
	log.Trace().Str("hash", h.String()).Int("instructions", p.Len()).Msg("Loader: decoded program")
	return p, nil
}

// LoadBytes stores an already encoded program and returns its decoded form.
func (l *Loader) LoadBytes(data []byte) (Hash, *vm.Program, error) {
	h := HashBytes(data)
	if p, ok := l.cache.Get(h); ok {
		l.hits.Add(1)
		return h, p, nil
	}
	l.misses.Add(1)
	p, err := codec.Decode(data)
	if err != nil {
		return 0, nil, err
	}
	if _, err := l.store.Put(data); err != nil {
		return 0, nil, fmt.Errorf("store program: %w", err)
	}
	l.cache.Add(h, p)
	return h, p, nil
}

type CacheStats struct {
	Size   int
	Hits   int64
	Misses int64
}

func (l *Loader) Stats() CacheStats {
	return CacheStats{
		Size:   l.cache.Len(),
		Hits:   l.hits.Load(),
		Misses: l.misses.Load(),
	}
}

// Package cas stores encoded programs by content address and hands out
// shared decoded programs.
package cas

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dgryski/go-farm"
)

type Hash uint64

func (h Hash) String() string {
	return fmt.Sprintf("%016x", uint64(h))
}

func ParseHash(s string) (Hash, error) {
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return Hash(n), nil
}

// HashBytes is the content address of data.
func HashBytes(data []byte) Hash {
	return Hash(farm.Hash64(data))
}

var ErrNotFound = errors.New("hash not found in store")

// Store is a content-addressed byte store. Implementations must be safe for
// concurrent use.
type Store interface {
	Put(data []byte) (Hash, error)
	Has(hash Hash) bool
	Get(hash Hash) ([]byte, error)
}

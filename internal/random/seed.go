// Package random seeds the pseudo-random generators behind the synthetic
// datasets.
//
// Seeds come from crypto/rand unless the caller pins one, so a run can be
// reproduced by passing back the seed it logged.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
)

// streamSalt separates the two PCG words derived from one seed.
const streamSalt = 0x9e3779b97f4a7c15

// NewSeed generates a non-zero seed using crypto/rand.
func NewSeed() (uint64, error) {
	return NewSeedFrom(crand.Reader)
}

// NewSeedFrom reads a non-zero seed from r.
func NewSeedFrom(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	seed := binary.LittleEndian.Uint64(b[:])
	if seed == 0 {
		// Zero means "pick one for me" to callers; never hand it back.
		seed = streamSalt
	}
	return seed, nil
}

// NewSource returns a PCG source for seed.
func NewSource(seed uint64) *rand.PCG {
	return rand.NewPCG(seed, seed^streamSalt)
}

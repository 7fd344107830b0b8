// Package random provides cryptographic seed generation helpers.
//
// It uses crypto/rand to generate high-entropy seeds suitable for
// initializing pseudo-random number generators, so that repeated draws
// are never reproducible from prior ones.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewChaCha8Key generates a 32-byte key for seeding a ChaCha8 source.
func NewChaCha8Key() ([32]byte, error) {
	var key [32]byte
	if _, err := crand.Read(key[:]); err != nil {
		return key, fmt.Errorf("read random key: %w", err)
	}
	return key, nil
}

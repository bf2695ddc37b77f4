// Package zobrist generates and holds the [8][8][256] table of Zobrist keys.
//
// The first two indices are board coordinates (rank, file) and the third is a
// square-state byte. The meaning of the state byte belongs to the consumer;
// see the position package for the one used by the engine.
package zobrist

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// Table dimensions.
const (
	Ranks  = 8
	Files  = 8
	States = 256

	// Size is the number of keys in a table.
	Size = Ranks * Files * States

	// EncodedSize is the length of the binary encoding in bytes.
	EncodedSize = Size * 8
)

// Table is a [rank][file][state] array of Zobrist keys.
// Tables are filled once and treated as read-only afterwards.
type Table [Ranks][Files][States]uint64

// At returns the key for a square state on (rank, file).
func (t *Table) At(rank, file int, state uint8) uint64 {
	return t[rank][file][state]
}

// Equal reports whether both tables hold the same keys at every index.
func (t *Table) Equal(other *Table) bool {
	if t == nil || other == nil {
		return t == other
	}
	return *t == *other
}

// Fingerprint returns the xxhash64 of the binary encoding.
// Two tables with the same fingerprint are, for all practical purposes, equal.
func (t *Table) Fingerprint() uint64 {
	data, _ := t.MarshalBinary()
	return xxhash.Sum64(data)
}

// MarshalBinary encodes the table as big-endian uint64 values in row-major order.
func (t *Table) MarshalBinary() ([]byte, error) {
	buf := make([]byte, EncodedSize)
	off := 0
	for r := 0; r < Ranks; r++ {
		for f := 0; f < Files; f++ {
			for s := 0; s < States; s++ {
				binary.BigEndian.PutUint64(buf[off:], t[r][f][s])
				off += 8
			}
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) != EncodedSize {
		return errors.Errorf("zobrist: binary table is %d bytes, want %d", len(data), EncodedSize)
	}
	off := 0
	for r := 0; r < Ranks; r++ {
		for f := 0; f < Files; f++ {
			for s := 0; s < States; s++ {
				t[r][f][s] = binary.BigEndian.Uint64(data[off:])
				off += 8
			}
		}
	}
	return nil
}

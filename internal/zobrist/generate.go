package zobrist

import (
	"crypto/rand"
	"io"

	"github.com/pkg/errors"
)

// Source supplies uniformly distributed 64-bit values.
// *math/rand/v2.Rand satisfies it.
type Source interface {
	Uint64() uint64
}

// Generate fills a new table from src in row-major order.
func Generate(src Source) *Table {
	t := new(Table)
	for r := 0; r < Ranks; r++ {
		for f := 0; f < Files; f++ {
			for s := 0; s < States; s++ {
				t[r][f][s] = src.Uint64()
			}
		}
	}
	return t
}

// GenerateRandom builds a table from the operating system's entropy source.
// Every call yields a fresh table that cannot be reproduced.
func GenerateRandom() (*Table, error) {
	return generateFrom(rand.Reader)
}

func generateFrom(r io.Reader) (*Table, error) {
	buf := make([]byte, EncodedSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, errors.Wrap(err, "zobrist: read entropy")
	}
	t := new(Table)
	if err := t.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return t, nil
}

// GenerateSeeded builds a reproducible table: the same seed always yields
// the same keys.
func GenerateSeeded(seed uint64) *Table {
	return Generate(NewPRNG(seed))
}

// PRNG is an xorshift64* generator.
type PRNG struct {
	state uint64
}

// NewPRNG returns a generator whose state is derived from seed.
// Any seed, including zero, gives a non-zero starting state.
func NewPRNG(seed uint64) *PRNG {
	state := splitmix64(seed)
	if state == 0 {
		state = 0x9E3779B97F4A7C15
	}
	return &PRNG{state: state}
}

// Uint64 returns the next value of the xorshift64* sequence.
func (p *PRNG) Uint64() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}

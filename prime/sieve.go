package prime

import (
	"github.com/bits-and-blooms/bitset"
)

// DefaultSieveLimit is the largest integer covered by the default sieve (64 KiB of
// candidates, 8 KiB of bits).
const DefaultSieveLimit = 65536

// Sieve is an immutable primality bitmap over [0, limit].
type Sieve struct {
	bits  *bitset.BitSet
	limit uint64
}

// NewSieve runs the sieve of Eratosthenes up to and including limit.
func NewSieve(limit uint64) *Sieve {
	bits := bitset.New(uint(limit + 1))
	if limit >= 2 {
		bits.FlipRange(2, uint(limit+1))
	}

	for i := uint64(2); i*i <= limit; i++ {
		if !bits.Test(uint(i)) {
			continue
		}
		for j := i * i; j <= limit; j += i {
			bits.Clear(uint(j))
		}
	}

	return &Sieve{bits: bits, limit: limit}
}

// Limit returns the largest integer covered by the sieve.
func (s *Sieve) Limit() uint64 { return s.limit }

// IsPrime reports whether n is prime. Callers must range-check: n above Limit
// reports false.
func (s *Sieve) IsPrime(n uint64) bool {
	if n > s.limit {
		return false
	}
	return s.bits.Test(uint(n))
}

// Count returns the number of primes in [0, limit].
func (s *Sieve) Count() int {
	return int(s.bits.Count())
}

// Primes returns the primes in [0, limit] in increasing order.
func (s *Sieve) Primes() []uint64 {
	out := make([]uint64, 0, s.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, uint64(i))
	}
	return out
}

package testutil

import (
	"math/big"
	"math/rand"
	"strconv"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic test data
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Uint64n returns a pseudo-random number in [0, n). n must be positive.
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n&(n-1) == 0 {
		return r.rand.Uint64() & (n - 1)
	}
	limit := ^uint64(0) - (^uint64(0) % n)
	for {
		v := r.rand.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// OddUint64 returns a pseudo-random odd uint64 with the top bit set, i.e. in the
// range where the oracle uses its widest witness set.
func (r *RNG) OddUint64() uint64 {
	return r.Uint64() | 1 | 1<<63
}

// IsPrimeTrial decides primality by exhaustive trial division.
func IsPrimeTrial(n uint64) bool {
	if n < 2 {
		return false
	}
	if n < 4 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uint64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// IsPrimeBig decides primality with math/big, which is exact below 2^64.
func IsPrimeBig(n uint64) bool {
	return new(big.Int).SetUint64(n).ProbablyPrime(0)
}

// IsProductiveNaive decides the productive condition by slicing the decimal string
// and computing in big integers, so overflow cannot occur.
func IsProductiveNaive(n uint64) bool {
	if !IsPrimeBig(n + 1) || n == ^uint64(0) {
		return false
	}
	s := strconv.FormatUint(n, 10)
	one := big.NewInt(1)
	for k := 1; k < len(s); k++ {
		a, _ := new(big.Int).SetString(s[:k], 10)
		b, _ := new(big.Int).SetString(s[k:], 10)
		c := new(big.Int).Mul(a, b)
		c.Add(c, one)
		if !c.IsUint64() || !c.ProbablyPrime(0) {
			return false
		}
	}
	return true
}

// ProductiveBelow returns every productive number in [lo, hi) using the naive
// reference.
func ProductiveBelow(lo, hi uint64) []uint64 {
	var out []uint64
	for n := lo; n < hi; n++ {
		if IsProductiveNaive(n) {
			out = append(out, n)
		}
	}
	return out
}

package prime

import (
	"math/bits"
)

// smallPrimes are trial divisors applied before the witness rounds.
var smallPrimes = [...]uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}

// Options configures an Oracle.
type Options struct {
	// SieveLimit is the largest integer answered from the sieve. It must be at
	// least 37 so the small-prime filter never rejects one of its own divisors.
	SieveLimit uint64

	// Witnesses selects strong-pseudoprime witnesses per n.
	Witnesses WitnessTable
}

// DefaultOptions are the options used by New.
var DefaultOptions = Options{
	SieveLimit: DefaultSieveLimit,
	Witnesses:  DefaultWitnessTable(),
}

// Oracle is a deterministic primality test for uint64. It is immutable after
// construction and safe for concurrent use.
type Oracle struct {
	sieve     *Sieve
	witnesses WitnessTable
}

// New builds the sieve and witness table. Construction is the only expensive step;
// share the result.
func New(optFns ...func(o *Options)) *Oracle {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.SieveLimit < smallPrimes[len(smallPrimes)-1] {
		opts.SieveLimit = smallPrimes[len(smallPrimes)-1]
	}
	if opts.Witnesses.Fallback == nil {
		opts.Witnesses.Fallback = fullRangeWitnesses
	}

	return &Oracle{
		sieve:     NewSieve(opts.SieveLimit),
		witnesses: opts.Witnesses,
	}
}

// Sieve returns the oracle's sieve table.
func (o *Oracle) Sieve() *Sieve { return o.sieve }

// IsPrime reports whether n is prime.
func (o *Oracle) IsPrime(n uint64) bool {
	if n <= o.sieve.limit {
		return o.sieve.IsPrime(n)
	}

	// n exceeds every small prime here, so any hit is a proper divisor.
	for _, p := range smallPrimes {
		if n%p == 0 {
			return false
		}
	}

	// n-1 = 2^r * d with d odd.
	r := bits.TrailingZeros64(n - 1)
	d := (n - 1) >> uint(r)

	for _, a := range o.witnesses.Select(n) {
		if a >= n {
			continue
		}
		if !strongProbablePrime(n, d, r, a) {
			return false
		}
	}
	return true
}

// strongProbablePrime runs one Miller–Rabin round of base a against odd n > 2.
func strongProbablePrime(n, d uint64, r int, a uint64) bool {
	nm1 := n - 1
	x := PowMod(a, d, n)
	if x == 1 || x == nm1 {
		return true
	}
	for i := 1; i < r; i++ {
		x = MulMod(x, x, n)
		if x == nm1 {
			return true
		}
	}
	return false
}

// MulMod returns a*b mod m using a 128-bit intermediate product. m must be
// non-zero.
func MulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, m)
}

// PowMod returns base^exp mod m by binary exponentiation. m must be non-zero.
func PowMod(base, exp, m uint64) uint64 {
	if m == 1 {
		return 0
	}
	result := uint64(1)
	base %= m
	for exp > 0 {
		if exp&1 == 1 {
			result = MulMod(result, base, m)
		}
		exp >>= 1
		base = MulMod(base, base, m)
	}
	return result
}

package productive

// PrimeTester is satisfied by *prime.Oracle.
type PrimeTester interface {
	IsPrime(n uint64) bool
}

// Predicate evaluates productivity against a shared primality oracle. It holds no
// mutable state and is safe for concurrent use.
type Predicate struct {
	primes PrimeTester
}

// New returns a Predicate backed by primes.
func New(primes PrimeTester) *Predicate {
	return &Predicate{primes: primes}
}

// IsProductive reports whether n is productive.
func (p *Predicate) IsProductive(n uint64) bool {
	if n > 1 && n&1 == 1 {
		return false
	}
	if n == ^uint64(0) || !p.primes.IsPrime(n+1) {
		return false
	}

	d := DigitCount(n)
	for k := 1; k < d; k++ {
		m := pow10[k]
		c, ok := candidate(n/m, n%m)
		if !ok || !p.primes.IsPrime(c) {
			return false
		}
	}
	return true
}

// SplitResult describes one split of n at k digits from the right.
type SplitResult struct {
	K         int
	A         uint64
	B         uint64
	Candidate uint64 // A*B+1; zero when Overflow is set
	Overflow  bool
	Prime     bool
}

// Splits evaluates every split of n without short-circuiting. It is meant for
// inspection; use IsProductive on hot paths.
func (p *Predicate) Splits(n uint64) []SplitResult {
	d := DigitCount(n)
	out := make([]SplitResult, 0, d-1)
	for k := 1; k < d; k++ {
		m := pow10[k]
		s := SplitResult{K: k, A: n / m, B: n % m}
		c, ok := candidate(s.A, s.B)
		if ok {
			s.Candidate = c
			s.Prime = p.primes.IsPrime(c)
		} else {
			s.Overflow = true
		}
		out = append(out, s)
	}
	return out
}

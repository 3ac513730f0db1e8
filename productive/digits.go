package productive

import "math/bits"

// MaxDigits is the number of decimal digits in the largest uint64.
const MaxDigits = 20

var pow10 = func() [MaxDigits]uint64 {
	var p [MaxDigits]uint64
	p[0] = 1
	for i := 1; i < MaxDigits; i++ {
		p[i] = p[i-1] * 10
	}
	return p
}()

// Pow10 returns 10^k for k in [0, 19]. It panics for larger k.
func Pow10(k int) uint64 {
	return pow10[k]
}

// DigitCount returns the number of decimal digits in n. Zero has one digit.
func DigitCount(n uint64) int {
	d := 1
	for d < MaxDigits && n >= pow10[d] {
		d++
	}
	return d
}

// candidate computes a*b+1 and reports false if either step overflows.
func candidate(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 || lo == ^uint64(0) {
		return 0, false
	}
	return lo + 1, true
}

// Package productive decides whether a number is productive.
//
// A non-negative integer n with decimal digits d is productive when n+1 is prime
// and, for every split point k in 1..d-1, A*B+1 is prime where A = n / 10^k and
// B = n mod 10^k. Single-digit numbers have no splits, so only the n+1 test
// applies: the productive single digits are 1, 2, 4 and 6.
//
// Every odd n > 1 fails immediately because n+1 is even and greater than 2.
// Candidates whose product or product+1 would exceed uint64 are treated as not
// productive; no arbitrary-precision arithmetic is used.
package productive

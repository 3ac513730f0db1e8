// Package prime implements a deterministic primality oracle for the full uint64
// domain.
//
// An Oracle answers in three stages, each of which may short-circuit:
//
//  1. n ≤ sieve limit: O(1) lookup in a precomputed bitmap ([Sieve]).
//  2. Division by the twelve primes 2..37 rejects most composites cheaply.
//  3. Strong-pseudoprime (Miller–Rabin) rounds with the smallest witness set that is
//     proven deterministic below n ([WitnessTable]).
//
// There is no probabilistic fallback. For every n < 2^64 the answer matches trial
// division.
//
// The sieve and witness table are built once and never mutated, so a single Oracle
// is shared by all scan workers without synchronization:
//
//	oracle := prime.New()
//	oracle.IsPrime(2027) // true
package prime

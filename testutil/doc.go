// Package testutil provides reference implementations and deterministic random
// sources for tests.
//
// The references here are deliberately naive (trial division, digit strings) so
// they share no code path with the engine they check.
package testutil

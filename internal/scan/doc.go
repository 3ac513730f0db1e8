// Package scan splits a search range into chunks and evaluates a chunk on a
// bounded set of goroutines.
//
// A chunk is divided into disjoint, ascending sub-slices. Each goroutine writes
// only its own result slot, and slots are concatenated in sub-slice order, so the
// merged output is sorted and identical for any worker count.
package scan

package prodsearch_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/prodsearch"
	"github.com/hupe1980/prodsearch/prime"
	"github.com/hupe1980/prodsearch/productive"
	"github.com/hupe1980/prodsearch/resultlog"
)

// Example_run scans a small range and prints the results.
func Example_run() {
	dir, err := os.MkdirTemp("", "prodsearch-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	out := filepath.Join(dir, "found.txt")
	s, err := prodsearch.New(
		prodsearch.WithOutputPath(out),
		prodsearch.WithStatePath(filepath.Join(dir, "state.json")),
		prodsearch.WithChunkSize(10),
	)
	if err != nil {
		log.Fatal(err)
	}

	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 50})
	if err != nil {
		log.Fatal(err)
	}

	values, err := resultlog.ReadAll(nil, out)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(report.Phase, report.Chunks, values)
	// Output: done 5 [1 2 4 6 12 16 22 28 36]
}

// Example_splits shows why 2026 is productive.
func Example_splits() {
	p := productive.New(prime.New())
	for _, s := range p.Splits(2026) {
		fmt.Printf("%d*%d+1 = %d prime=%v\n", s.A, s.B, s.Candidate, s.Prime)
	}
	fmt.Println(p.IsProductive(2026))
	// Output:
	// 202*6+1 = 1213 prime=true
	// 20*26+1 = 521 prime=true
	// 2*26+1 = 53 prime=true
	// true
}

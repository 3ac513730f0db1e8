//go:build unix

package prodsearch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/prodsearch"
	"github.com/hupe1980/prodsearch/checkpoint"
)

func TestRun_Locked(t *testing.T) {
	p := newPaths(t)
	lock, err := checkpoint.Lock(nil, p.state)
	require.NoError(t, err)

	s := newSearcher(t, p.options()...)
	report, err := s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 1_000})
	require.ErrorIs(t, err, prodsearch.ErrLocked)
	assert.Equal(t, prodsearch.PhaseFailed, report.Phase)

	require.NoError(t, lock.Unlock())
	_, err = s.Run(context.Background(), prodsearch.Range{Start: 1, Limit: 1_000})
	require.NoError(t, err)
}

package scan

// Chunk is the half-open interval [Lo, Hi).
type Chunk struct {
	Lo uint64
	Hi uint64
}

// Len returns Hi-Lo.
func (c Chunk) Len() uint64 {
	if c.Hi <= c.Lo {
		return 0
	}
	return c.Hi - c.Lo
}

// Empty reports whether the chunk holds no integers.
func (c Chunk) Empty() bool { return c.Hi <= c.Lo }

// Next returns [next, min(next+size, limit)). The addition saturates, so a range
// ending at the top of the uint64 domain is chunked correctly.
func Next(next, limit, size uint64) Chunk {
	if next >= limit {
		return Chunk{Lo: next, Hi: next}
	}
	hi := next + size
	if hi < next || hi > limit {
		hi = limit
	}
	return Chunk{Lo: next, Hi: hi}
}

// Partition splits c into at most parts contiguous sub-chunks of near-equal size,
// in ascending order. Empty sub-chunks are never returned.
func Partition(c Chunk, parts int) []Chunk {
	n := c.Len()
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if uint64(parts) > n {
		parts = int(n)
	}

	out := make([]Chunk, 0, parts)
	step, rem := n/uint64(parts), n%uint64(parts)
	lo := c.Lo
	for i := 0; i < parts; i++ {
		size := step
		if uint64(i) < rem {
			size++
		}
		out = append(out, Chunk{Lo: lo, Hi: lo + size})
		lo += size
	}
	return out
}

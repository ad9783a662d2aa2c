package search_test

import (
	"context"
	"testing"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/herohde/eloi/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheReadWrite(t *testing.T) {
	ctx := context.Background()
	c := search.NewCache(ctx, 1)

	key := board.Key(0x123456789abcdef0)
	move := board.NewMove(board.WhiteKnight, board.G1, board.F3)

	_, ok := c.Read(key)
	assert.False(t, ok)

	c.Write(key, search.ExactBound, 7, 42, move)

	e, ok := c.Read(key)
	require.True(t, ok)
	assert.Equal(t, search.ExactBound, e.Bound)
	assert.Equal(t, 7, e.Depth)
	assert.Equal(t, eval.Score(42), e.Score)
	assert.True(t, e.Move.Equals(move))

	// Overwrite same key.
	c.Write(key, search.LowerBound, 9, -10, move)
	e, _ = c.Read(key)
	assert.Equal(t, search.LowerBound, e.Bound)
	assert.Equal(t, 9, e.Depth)
	assert.Equal(t, eval.Score(-10), e.Score)

	assert.Greater(t, c.Used(), float64(0))

	c.Clear()
	_, ok = c.Read(key)
	assert.False(t, ok)
	assert.Equal(t, float64(0), c.Used())
}

func TestCachePromotionMove(t *testing.T) {
	ctx := context.Background()
	c := search.NewCache(ctx, 1)

	key := board.Key(0xfeedface12345678)
	move := board.NewMove(board.WhitePawn, board.E7, board.E8).WithPromotion(board.WhiteQueen)

	c.Write(key, search.ExactBound, 3, 900, move)

	e, ok := c.Read(key)
	require.True(t, ok)
	assert.Equal(t, board.E7, e.Move.From())
	assert.Equal(t, board.E8, e.Move.To())
	assert.Equal(t, board.WhiteQueen, e.Move.Promotion())
}

// TestCacheReplacement fills a bucket beyond capacity and verifies that the
// oldest generation is evicted while recently read entries survive.
func TestCacheReplacement(t *testing.T) {
	ctx := context.Background()
	c := search.NewCache(ctx, 1)

	// A 1MB cache has 16384 buckets, so keys that differ only in the high 32
	// bits share a bucket.
	key := func(i int) board.Key {
		return board.Key(i)<<32 | 5
	}

	c.Write(key(1), search.ExactBound, 1, 1, board.NullMove)
	c.NextGeneration()
	c.Write(key(2), search.ExactBound, 1, 2, board.NullMove)
	c.NextGeneration()
	c.Write(key(3), search.ExactBound, 1, 3, board.NullMove)
	c.NextGeneration()
	c.Write(key(4), search.ExactBound, 1, 4, board.NullMove)
	c.NextGeneration()

	// Touch the oldest entry so it is re-stamped with the current generation.
	_, ok := c.Read(key(1))
	require.True(t, ok)

	// The fifth write evicts the oldest untouched entry: key(2).
	c.Write(key(5), search.ExactBound, 1, 5, board.NullMove)

	_, ok = c.Read(key(1))
	assert.True(t, ok)
	_, ok = c.Read(key(2))
	assert.False(t, ok)
	_, ok = c.Read(key(5))
	assert.True(t, ok)
}

func TestNoTranspositionTable(t *testing.T) {
	var tt search.NoTranspositionTable

	tt.Write(1, search.ExactBound, 1, 1, board.NullMove)
	_, ok := tt.Read(1)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), tt.Size())
}

package search_test

import (
	"testing"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestKillers(t *testing.T) {
	var k search.Killers

	m1 := board.NewMove(board.WhiteKnight, board.G1, board.F3)
	m2 := board.NewMove(board.WhiteKnight, board.B1, board.C3)
	m3 := board.NewMove(board.WhitePawn, board.E2, board.E4)

	assert.Equal(t, int32(0), k.Rank(3, m1))

	k.Add(3, m1)
	assert.Equal(t, int32(2), k.Rank(3, m1))
	assert.Equal(t, int32(0), k.Rank(4, m1), "killers are per ply")

	k.Add(3, m2)
	assert.Equal(t, int32(2), k.Rank(3, m2))
	assert.Equal(t, int32(1), k.Rank(3, m1))

	// Re-adding the primary killer does not demote it.
	k.Add(3, m2)
	assert.Equal(t, int32(2), k.Rank(3, m2))
	assert.Equal(t, int32(1), k.Rank(3, m1))

	k.Add(3, m3)
	assert.Equal(t, int32(2), k.Rank(3, m3))
	assert.Equal(t, int32(1), k.Rank(3, m2))
	assert.Equal(t, int32(0), k.Rank(3, m1))

	k.Clear()
	assert.Equal(t, int32(0), k.Rank(3, m3))
}

func TestHistoryDecay(t *testing.T) {
	h := search.NewHistory()

	prev := board.NewMove(board.BlackPawn, board.E7, board.E5)
	m := board.NewMove(board.WhiteKnight, board.G1, board.F3)

	assert.Equal(t, int32(0), h.Quiet(prev, m))

	// Positive updates increase the value but stay below the asymptote.
	last := int32(0)
	for i := 0; i < 1000; i++ {
		h.UpdateQuiet(prev, m, 10)
		v := h.Quiet(prev, m)
		assert.GreaterOrEqual(t, v, last)
		last = v
	}
	assert.LessOrEqual(t, last, int32(2*search.HistoryMax))
	assert.Greater(t, last, int32(0))

	// Negative updates pull it back down.
	for i := 0; i < 1000; i++ {
		h.UpdateQuiet(prev, m, -10)
	}
	assert.Less(t, h.Quiet(prev, m), int32(0))

	h.Clear()
	assert.Equal(t, int32(0), h.Quiet(prev, m))
}

func TestCaptureHistory(t *testing.T) {
	h := search.NewHistory()

	m := board.NewMove(board.WhiteKnight, board.F3, board.E5).WithVictim(board.BlackPawn)

	assert.Equal(t, int32(0), h.Capture(m))
	h.UpdateCapture(m, 5)
	assert.Greater(t, h.Capture(m), int32(0))
}

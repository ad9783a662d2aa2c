package board_test

import (
	"testing"

	"github.com/herohde/eloi/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	assert.True(t, board.Rank1.IsValid())
	assert.True(t, board.Rank3.IsValid())
	assert.True(t, board.Rank8.IsValid())
	assert.False(t, board.Rank(8).IsValid())

	assert.Equal(t, "1", board.Rank1.String())
	assert.Equal(t, "7", board.Rank7.String())
}

func TestFile(t *testing.T) {
	assert.True(t, board.FileA.IsValid())
	assert.True(t, board.FileH.IsValid())
	assert.False(t, board.File(8).IsValid())

	assert.Equal(t, "a", board.FileA.String())
	assert.Equal(t, "g", board.FileG.String())
}

func TestSquare(t *testing.T) {
	// The numbering reads the board top-left to bottom-right.
	assert.Equal(t, board.Square(0), board.A8)
	assert.Equal(t, board.Square(7), board.H8)
	assert.Equal(t, board.Square(56), board.A1)
	assert.Equal(t, board.Square(63), board.H1)

	assert.Equal(t, board.C2, board.NewSquare(board.FileC, board.Rank2))
	assert.Equal(t, board.G5, board.NewSquare(board.FileG, board.Rank5))

	assert.True(t, board.H1.IsValid())
	assert.True(t, board.D4.IsValid())
	assert.False(t, board.IllegalSquare.IsValid())

	assert.Equal(t, board.Rank2, board.C2.Rank())
	assert.Equal(t, board.FileC, board.C2.File())

	assert.Equal(t, "h1", board.H1.String())
	assert.Equal(t, "a8", board.A8.String())
	assert.Equal(t, "e4", board.E4.String())
}

func TestSquareRelativeRank(t *testing.T) {
	assert.Equal(t, board.Rank2, board.E2.RelativeRank(board.White))
	assert.Equal(t, board.Rank7, board.E2.RelativeRank(board.Black))
	assert.Equal(t, board.Rank1, board.H8.RelativeRank(board.Black))
	assert.Equal(t, board.Rank8, board.H8.RelativeRank(board.White))
}

func TestParseSquare(t *testing.T) {
	tests := []struct {
		str      string
		expected board.Square
	}{
		{"a1", board.A1},
		{"e4", board.E4},
		{"h8", board.H8},
		{"d6", board.D6},
	}

	for _, tt := range tests {
		actual, err := board.ParseSquareStr(tt.str)
		assert.NoError(t, err)
		assert.Equal(t, tt.expected, actual)
		assert.Equal(t, tt.str, actual.String())
	}

	_, err := board.ParseSquareStr("i9")
	assert.Error(t, err)
}

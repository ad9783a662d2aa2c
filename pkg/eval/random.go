package eval

import "math/rand"

// Random is a randomized noise generator. It is used to add a small amount of
// randomness to leaf evaluations, breaking ties between equal moves. The limit
// specifies how many millipawns to add/remove in the range [-limit/2; limit/2].
// The zero value always returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Noise returns the next noise amount in centi-pawns.
func (n Random) Noise() Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit)-n.limit/2) / 10
}

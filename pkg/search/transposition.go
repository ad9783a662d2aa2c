package search

import (
	"context"
	"fmt"
	"unsafe" // for sizeof

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/seekerror/logw"
)

// Bound represents the precision of a -- possibly inexact -- search score.
type Bound uint8

const (
	NoBound Bound = iota
	ExactBound
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// Entry is a transposition table payload: the score with its precision and depth,
// and the best move found. The move may be stale after a key collision; callers
// must validate it against the position before use.
type Entry struct {
	Bound Bound
	Depth int
	Score eval.Score
	Move  board.Move // (from, to, promotion) identity only
}

// TranspositionTable caches search results by position key to speed up search.
type TranspositionTable interface {
	// Read returns the entry for the given key, if present.
	Read(key board.Key) (Entry, bool)
	// Write stores an entry, subject to the replacement policy.
	Write(key board.Key, bound Bound, depth int, score eval.Score, move board.Move)

	// NextGeneration advances the aging byte used by the replacement policy.
	NextGeneration()
	// Clear removes all entries.
	Clear()
	// Size returns the size of the table in bytes.
	Size() uint64
	// Used returns the utilization as a fraction [0;1].
	Used() float64
}

// entry is a packed slot. The partial key is the high half of the position key;
// the index derives from the low half, so together they identify the position
// with high confidence. 16 bytes.
type entry struct {
	key32 uint32
	move  uint32 // from | to<<6 | promotion<<12
	score int32
	depth int8
	bound Bound
	gen   uint8
}

const bucketSize = 4

// bucket groups entries sharing an index; replacement evicts the oldest
// generation within the bucket.
type bucket [bucketSize]entry

// Cache is a fixed-capacity bucket-addressed transposition table.
type Cache struct {
	buckets []bucket
	gen     uint8
	used    uint64
}

// NewCache returns a cache using up to the given number of megabytes.
func NewCache(ctx context.Context, sizeMB uint64) *Cache {
	n := sizeMB << 20 / uint64(unsafe.Sizeof(bucket{}))
	if n == 0 {
		n = 1
	}

	logw.Infof(ctx, "Allocating %vMB TT with %v buckets", sizeMB, n)

	return &Cache{buckets: make([]bucket, n)}
}

func (c *Cache) Read(key board.Key) (Entry, bool) {
	b := &c.buckets[c.index(key)]
	partial := uint32(key >> 32)

	for i := range b {
		if e := &b[i]; e.bound != NoBound && e.key32 == partial {
			e.gen = c.gen // active entries survive replacement
			return Entry{
				Bound: e.bound,
				Depth: int(e.depth),
				Score: eval.Score(e.score),
				Move:  unpackMove(e.move),
			}, true
		}
	}
	return Entry{}, false
}

func (c *Cache) Write(key board.Key, bound Bound, depth int, score eval.Score, move board.Move) {
	b := &c.buckets[c.index(key)]
	partial := uint32(key >> 32)

	victim := &b[0]
	for i := range b {
		e := &b[i]
		if e.bound == NoBound || e.key32 == partial {
			victim = e
			break
		}
		// Prefer the oldest generation; the byte wraps, so compare by distance.
		if c.gen-e.gen > c.gen-victim.gen {
			victim = e
		}
	}

	if victim.bound == NoBound {
		c.used++
	}
	*victim = entry{
		key32: partial,
		move:  packMove(move),
		score: int32(score),
		depth: int8(depth),
		bound: bound,
		gen:   c.gen,
	}
}

func (c *Cache) NextGeneration() {
	c.gen++ // wraps every 256 generations
}

func (c *Cache) Clear() {
	for i := range c.buckets {
		c.buckets[i] = bucket{}
	}
	c.gen = 0
	c.used = 0
}

func (c *Cache) Size() uint64 {
	return uint64(len(c.buckets)) * uint64(unsafe.Sizeof(bucket{}))
}

func (c *Cache) Used() float64 {
	return float64(c.used) / float64(uint64(len(c.buckets))*bucketSize)
}

func (c *Cache) String() string {
	return fmt.Sprintf("TT[%v @ %v%%]", c.Size(), int(100*c.Used()))
}

func (c *Cache) index(key board.Key) uint64 {
	return uint64(key) % uint64(len(c.buckets))
}

func packMove(m board.Move) uint32 {
	return uint32(m.From()) | uint32(m.To())<<6 | uint32(m.Promotion())<<12
}

func unpackMove(v uint32) board.Move {
	return board.Move(v&0x3f) | board.Move(v>>6&0x3f)<<6 | board.Move(v>>12&0xf)<<20
}

// NoTranspositionTable is a nop implementation.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Read(key board.Key) (Entry, bool) {
	return Entry{}, false
}

func (NoTranspositionTable) Write(key board.Key, bound Bound, depth int, score eval.Score, move board.Move) {
}

func (NoTranspositionTable) NextGeneration() {}

func (NoTranspositionTable) Clear() {}

func (NoTranspositionTable) Size() uint64 {
	return 0
}

func (NoTranspositionTable) Used() float64 {
	return 0
}

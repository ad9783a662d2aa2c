// perft is a movegen debugging tool. See: https://www.chessprogramming.org/Perft_Results.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/board/fen"
	"github.com/seekerror/logw"
)

var (
	depth    = flag.Int("depth", 4, "Search depth")
	position = flag.String("fen", "", "Start position (default to standard)")
	divide   = flag.Bool("divide", false, "Divide counts by initial move")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *position == "" {
		*position = fen.Initial
	}

	pos, err := fen.Decode(*position)
	if err != nil {
		logw.Exitf(ctx, "Invalid fen '%v': %v", *position, err)
	}

	for i := 1; i <= *depth; i++ {
		b := board.NewBoard(pos)

		start := time.Now()
		var nodes uint64
		if *divide && i == *depth {
			for _, m := range b.LegalMoves() {
				b.Play(m)
				count := b.Perft(i - 1)
				b.Undo()

				println(fmt.Sprintf("%v: %v", m, count))
				nodes += count
			}
		} else {
			nodes = b.Perft(i)
		}
		duration := time.Since(start)

		println(fmt.Sprintf("perft,%v,%v,%v,%v", *position, i, nodes, duration.Microseconds()))
	}
}

// eloi is a bitboard-based UCI chess engine with a tapered evaluation and a
// principal-variation search.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/herohde/eloi/pkg/engine"
	"github.com/herohde/eloi/pkg/engine/console"
	"github.com/herohde/eloi/pkg/engine/uci"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/herohde/eloi/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash  = flag.Uint("hash", 64, "Transposition table size in MB (zero if none)")
	depth = flag.Uint("depth", 0, "Search depth limit (zero if no limit)")
	noise = flag.Uint("noise", 0, "Evaluation noise in millipawns (zero if deterministic)")
	elo   = flag.Uint("elo", 0, "Limit playing strength to the given Elo (zero if full strength)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: eloi [options]

ELOI is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	ev := eval.NewEvaluator(eval.NewConfig())
	s := search.PVS{Eval: ev}

	e := engine.New(ctx, "eloi", "herohde", s, ev,
		engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash, Noise: *noise}),
		engine.WithSeed(time.Now().UnixNano()),
	)
	if *elo > 0 {
		if err := e.SetElo(int(*elo)); err != nil {
			logw.Exitf(ctx, "Invalid elo: %v", err)
		}
		e.SetLimitStrength(true)
	}

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, s, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}

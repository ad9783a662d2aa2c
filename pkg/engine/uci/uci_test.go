package uci_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/herohde/eloi/pkg/engine"
	"github.com/herohde/eloi/pkg/engine/uci"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/herohde/eloi/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDriver(ctx context.Context) (chan string, <-chan string, *uci.Driver) {
	ev := eval.NewEvaluator(eval.NewConfig())
	e := engine.New(ctx, "eloi-test", "test", search.PVS{Eval: ev}, ev,
		engine.WithOptions(engine.Options{Hash: 8}))

	in := make(chan string, 16)
	d, out := uci.NewDriver(ctx, e, in)
	return in, out, d
}

// expect reads output lines until one matches the prefix.
func expect(t *testing.T, out <-chan string, prefix string) string {
	t.Helper()

	deadline := time.After(30 * time.Second)
	for {
		select {
		case line, ok := <-out:
			if !ok {
				t.Fatalf("output closed while waiting for '%v'", prefix)
			}
			if strings.HasPrefix(line, prefix) {
				return line
			}
		case <-deadline:
			t.Fatalf("timeout waiting for '%v'", prefix)
		}
	}
}

func TestDriverHandshake(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	assert.Contains(t, expect(t, out, "id name"), "eloi-test")
	expect(t, out, "id author")
	expect(t, out, "option name HashSizeMB")
	expect(t, out, "option name Clear Hash")
	expect(t, out, "option name LimitStrength")
	expect(t, out, "option name UCI_Elo")
	expect(t, out, "uciok")

	in <- "isready"
	expect(t, out, "readyok")
}

func TestDriverSearch(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	expect(t, out, "uciok")

	in <- "position startpos moves e2e4 e7e5"
	in <- "go depth 3"

	info := expect(t, out, "info depth")
	assert.Contains(t, info, "score cp")
	assert.Contains(t, info, "nodes")

	best := expect(t, out, "bestmove")
	require.NotEqual(t, "bestmove 0000", best)
}

func TestDriverStop(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	expect(t, out, "uciok")

	in <- "position startpos"
	in <- "go infinite"

	// Give the search a moment, then stop. A bestmove must follow.
	time.Sleep(100 * time.Millisecond)
	in <- "stop"
	expect(t, out, "bestmove")
}

func TestDriverSetOption(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	expect(t, out, "uciok")

	in <- "setoption name MgPawnMaterial value 111"
	in <- "setoption name Clear Hash"
	in <- "setoption name UCI_Elo value 1200"
	in <- "setoption name LimitStrength value true"
	in <- "setoption name Bogus value 1"
	assert.Contains(t, expect(t, out, "info string"), "Bogus")

	in <- "isready"
	expect(t, out, "readyok")
}

func TestDriverInvalidPosition(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	expect(t, out, "uciok")

	in <- "position fen not a real fen at all x"
	expect(t, out, "info string")

	// The driver remains responsive.
	in <- "isready"
	expect(t, out, "readyok")
}

func TestDriverMateScore(t *testing.T) {
	ctx := context.Background()
	in, out, d := newDriver(ctx)
	defer d.Close()

	expect(t, out, "uciok")

	in <- "position fen 6k1/1R6/R7/8/8/8/8/6K1 w - - 0 1"
	in <- "go depth 4"

	assert.Contains(t, expect(t, out, "info depth"), "score mate 1")
	assert.Contains(t, expect(t, out, "bestmove"), "a6a8")
}

func TestDriverQuit(t *testing.T) {
	ctx := context.Background()
	in, _, d := newDriver(ctx)

	in <- "quit"

	select {
	case <-d.Closed():
	case <-time.After(10 * time.Second):
		t.Fatal("driver did not close on quit")
	}
}

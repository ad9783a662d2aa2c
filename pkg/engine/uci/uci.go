// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/board/fen"
	"github.com/herohde/eloi/pkg/engine"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/herohde/eloi/pkg/search"
	"github.com/herohde/eloi/pkg/search/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e *engine.Engine

	out chan<- string

	active       atomic.Bool    // user is waiting for engine to move
	ponder       chan search.PV // chan for intermediate search information
	lastPosition string         // last position line (empty if no last position)

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		ponder: make(chan search.PV, 400),
		quit:   make(chan struct{}),
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CAS(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	// * uci
	//
	//	After receiving the uci command the engine must identify itself with the
	//	"id" command and send the "option" commands to tell the GUI which engine
	//	settings the engine supports, then "uciok".

	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())

	d.out <- fmt.Sprintf("option name HashSizeMB type spin default %v min 0 max 4096", d.e.Options().Hash)
	d.out <- "option name Clear Hash type button"
	d.out <- "option name LimitStrength type check default false"
	d.out <- fmt.Sprintf("option name UCI_Elo type spin default %v min %v max %v", eval.MaxElo, eval.MinElo, eval.MaxElo)
	for _, name := range d.e.Config().ParamNames() {
		v, _ := d.e.Config().Param(name)
		d.out <- fmt.Sprintf("option name %v type spin default %v min -4096 max 4096", name, v)
	}

	d.out <- "uciok"

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Split(strings.TrimSpace(line), " ")
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "isready":
				// * isready
				//
				//	Used to synchronize the engine with the GUI. Must always be
				//	answered with "readyok", even while searching.

				d.out <- "readyok"

			case "debug":
				// * debug [ on | off ]
				//
				//	No additional debug output supported.

			case "setoption":
				// * setoption name <id> [value <x>]
				//
				//	Change an internal parameter. Option names can include spaces,
				//	e.g. "setoption name Clear Hash".

				d.setOption(ctx, args)

			case "register":
				// * register
				//
				//	Registration not required.

			case "ucinewgame":
				// * ucinewgame
				//
				//	The next position/search is from a different game: reset the
				//	cache and heuristics.

				d.ensureInactive(ctx)
				d.e.NewGame(ctx)
				d.lastPosition = ""

			case "position":
				// * position [fen <fenstring> | startpos ] moves <move1> ... <movei>
				//
				//	Set up the position and play the listed moves.

				d.ensureInactive(ctx)

				if d.lastPosition != "" && strings.HasPrefix(line, d.lastPosition) {
					// Continuation of game.

					ok := true
					moves := strings.TrimSpace(strings.TrimPrefix(line, d.lastPosition))
					for _, arg := range strings.Split(moves, " ") {
						if arg == "moves" || arg == "" {
							continue
						}
						if err := d.e.Move(ctx, arg); err != nil {
							d.out <- fmt.Sprintf("info string invalid move '%v': %v", arg, err)
							ok = false
							break
						}
					}
					if ok {
						d.lastPosition = line
						break
					}
					// Fall through to a full reset on error.
				}

				position := fen.Initial
				if len(args) >= 7 && args[0] == "fen" {
					position = strings.Join(args[1:7], " ")
				}

				if err := d.e.Reset(ctx, position); err != nil {
					d.out <- fmt.Sprintf("info string invalid position: %v", err)
					d.lastPosition = ""
					break
				}

				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						d.out <- fmt.Sprintf("info string invalid move '%v': %v", arg, err)
						break
					}
				}
				d.lastPosition = line

			case "go":
				// * go [depth x] [nodes x] [movetime x] [wtime x] [btime x]
				//      [winc x] [binc x] [movestogo x] [infinite]
				//
				//	Start calculating on the current position.

				d.ensureInactive(ctx)

				opt, infinite, err := parseGo(args)
				if err != nil {
					d.out <- fmt.Sprintf("info string %v", err)
					break
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					d.out <- fmt.Sprintf("info string analyze failed: %v", err)
					break
				}
				d.active.Store(true)

				// Forward search info. Complete search if it ends, unless infinite.

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.ponder <- pv
					}
					if !infinite {
						d.searchCompleted(ctx, last)
					}
				}()

			case "stop":
				// * stop
				//
				//	Stop calculating as soon as possible. Always answer with
				//	"bestmove".

				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, pv)
				}

			case "ponderhit":
				// * ponderhit
				//
				//	Pondering not supported.

			case "quit":
				// * quit
				//
				//	Quit the program as soon as possible.

				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case pv := <-d.ponder:
			// * info
			//
			//	e.g. "info depth 2 score cp 214 time 1242 nodes 2124 nps 34928 pv e2e4 e7e5 g1f3"

			if d.active.Load() {
				d.out <- printPV(pv)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// setOption handles "setoption name <id> [value <x>]" with possibly multi-word
// names and values. Errors leave the configuration unchanged and are reported as
// info strings.
func (d *Driver) setOption(ctx context.Context, args []string) {
	name, value := parseNameValue(args)

	var err error
	switch name {
	case "HashSizeMB":
		var mb int
		if mb, err = strconv.Atoi(value); err == nil {
			err = d.e.SetHash(ctx, uint(mb))
		}
	case "Clear Hash":
		d.e.ClearHash()
	case "LimitStrength":
		var limited bool
		if limited, err = strconv.ParseBool(value); err == nil {
			d.e.SetLimitStrength(limited)
		}
	case "UCI_Elo":
		var elo int
		if elo, err = strconv.Atoi(value); err == nil {
			err = d.e.SetElo(elo)
		}
	default:
		err = d.e.SetEvalParam(name, value)
	}

	if err != nil {
		d.out <- fmt.Sprintf("info string setoption %v: %v", name, err)
	}
}

func parseNameValue(args []string) (string, string) {
	if len(args) == 0 || args[0] != "name" {
		return strings.Join(args, " "), ""
	}
	args = args[1:]

	for i, arg := range args {
		if arg == "value" {
			return strings.Join(args[:i], " "), strings.Join(args[i+1:], " ")
		}
	}
	return strings.Join(args, " "), ""
}

func parseGo(args []string) (searchctl.Options, bool, error) {
	var opt searchctl.Options
	var tc searchctl.TimeControl
	useTC := false
	infinite := false

	for i := 0; i < len(args); i++ {
		cmd := args[i]
		switch cmd {
		case "depth", "nodes", "movetime", "wtime", "btime", "winc", "binc", "movestogo":
			// Next argument is an int.

			i++
			if i == len(args) {
				return opt, false, fmt.Errorf("no argument for %v", cmd)
			}
			n, err := strconv.Atoi(args[i])
			if err != nil {
				return opt, false, fmt.Errorf("invalid argument for %v: %v", cmd, args[i])
			}

			switch cmd {
			case "depth":
				opt.DepthLimit = lang.Some(uint(n))
			case "nodes":
				opt.NodeLimit = lang.Some(uint64(n))
			case "movetime":
				opt.MoveTime = lang.Some(time.Millisecond * time.Duration(n))
			case "wtime":
				tc.White, useTC = time.Millisecond*time.Duration(n), true
			case "btime":
				tc.Black, useTC = time.Millisecond*time.Duration(n), true
			case "winc":
				tc.WhiteInc, useTC = time.Millisecond*time.Duration(n), true
			case "binc":
				tc.BlackInc, useTC = time.Millisecond*time.Duration(n), true
			case "movestogo":
				tc.Moves, useTC = n, true
			}

		case "infinite":
			infinite = true

		default:
			// silently ignore anything not handled.
		}
	}

	if useTC {
		opt.TimeControl = lang.Some(tc)
	}
	return opt, infinite, nil
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, pv search.PV) {
	if d.active.CAS(true, false) {
		if len(pv.Moves) > 0 {
			// * bestmove <move1> [ ponder <move2> ]
			//
			//	The engine has stopped searching. Must always be sent after a
			//	"go", preceded by a final "info".

			d.out <- printPV(pv)
			if len(pv.Moves) > 1 {
				d.out <- fmt.Sprintf("bestmove %v ponder %v", pv.Moves[0], pv.Moves[1])
			} else {
				d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
			}
		} else {
			// No PV. Position is checkmate or stalemate. Send NullMove.

			d.out <- "bestmove 0000"
		}
	} // else: stale or duplicate result
}

func printPV(pv search.PV) string {
	// "info depth 2 score cp 214 time 1242 nodes 2124 nps 34928 pv e2e4 e7e5 g1f3"

	parts := []string{"info"}
	parts = append(parts, fmt.Sprintf("depth %v", pv.Depth))
	if d, ok := eval.MateDistance(pv.Score); ok {
		moves := (d + 1) / 2
		if d < 0 {
			moves = (d - 1) / 2
		}
		parts = append(parts, fmt.Sprintf("score mate %v", moves))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %v", int(pv.Score)))
	}
	if pv.Nodes > 0 {
		parts = append(parts, fmt.Sprintf("nodes %v", pv.Nodes))
	}
	if pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("time %v", pv.Time.Milliseconds()))
	}
	if pv.Nodes > 0 && pv.Time > 0 {
		parts = append(parts, fmt.Sprintf("nps %v", uint64(time.Second)*pv.Nodes/uint64(pv.Time)))
	}
	if pv.Hash > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %v", int(1000*pv.Hash)))
	}
	if len(pv.Moves) > 0 {
		parts = append(parts, "pv")
		parts = append(parts, board.PrintMoves(pv.Moves))
	}

	return strings.Join(parts, " ")
}

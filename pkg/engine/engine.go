package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/herohde/eloi/pkg/board"
	"github.com/herohde/eloi/pkg/board/fen"
	"github.com/herohde/eloi/pkg/eval"
	"github.com/herohde/eloi/pkg/search"
	"github.com/herohde/eloi/pkg/search/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 9, 1)

// Options are engine runtime options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by
	// search options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not
	// use a transposition table.
	Hash uint
	// Noise adds some millipawn randomness to the leaf evaluations.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v}", o.Depth, o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic, search and evaluation. It owns the
// board stack, the transposition table and the search heuristic tables.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	ev       *eval.Evaluator
	seed     int64
	opts     Options

	b       *board.Board
	tt      search.TranspositionTable
	killers search.Killers
	history *search.History
	noise   eval.Random
	active  searchctl.Handle
	mu      sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithSeed configures the noise seed instead of the default of zero.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New returns an engine searching with the given root search and evaluator.
func New(ctx context.Context, name, author string, root search.Search, ev *eval.Evaluator, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{Root: root},
		ev:       ev,
		history:  search.NewHistory(),
	}
	for _, fn := range opts {
		fn(e)
	}

	e.allocateTable(ctx)
	e.noise = eval.NewRandom(int(e.opts.Noise), e.seed)
	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

// Config returns the evaluation configuration.
func (e *Engine) Config() *eval.Config {
	return e.ev.Config()
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetHash resizes the transposition table. Not allowed during a search.
func (e *Engine) SetHash(ctx context.Context, size uint) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return fmt.Errorf("search active")
	}
	e.opts.Hash = size
	e.allocateTable(ctx)
	return nil
}

func (e *Engine) SetNoise(millipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = millipawns
	e.noise = eval.NewRandom(int(millipawns), e.seed)
}

// SetLimitStrength enables or disables limited-strength play.
func (e *Engine) SetLimitStrength(limited bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ev.Config().LimitedStrength = limited
	e.ev.Rebuild()
}

// SetElo sets the limited playing strength.
func (e *Engine) SetElo(elo int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ev.Config().SetElo(elo); err != nil {
		return err
	}
	e.ev.Rebuild()
	return nil
}

// SetEvalParam sets an evaluation parameter by name. The configuration is
// unchanged on error.
func (e *Engine) SetEvalParam(name, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ev.Config().SetParam(name, value); err != nil {
		return err
	}
	e.ev.Rebuild()
	return nil
}

// ClearHash clears the transposition table.
func (e *Engine) ClearHash() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tt.Clear()
}

// NewGame resets the cache and the search heuristics for a fresh game.
func (e *Engine) NewGame(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	e.tt.Clear()
	e.killers.Clear()
	e.history.Clear()
}

// Board returns a forked board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b.Position())
}

// Reset resets the engine to a new starting position in FEN format. The
// transposition table is kept; see NewGame.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	pos, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.b = board.NewBoard(pos)

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%vmp", position, e.opts.Depth, e.opts.Hash, e.opts.Noise)
	return nil
}

// Move plays the given move in coordinate notation, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	from, to, promo, err := board.ParseMoveStr(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}
	candidate := board.NewMove(board.NoColoredPiece, from, to)
	if promo != board.NoPiece {
		candidate = candidate.WithPromotion(board.PieceOfColor(promo, e.b.Turn()))
	}

	for _, m := range e.b.GenerateAll() {
		if !candidate.Equals(m) {
			continue
		}

		// Candidate is at least pseudo-legal.

		if !e.b.IsMoveLegal(&m) {
			return fmt.Errorf("illegal move: %v", m)
		}
		e.b.Play(m)

		logw.Infof(ctx, "Move %v: %v", m, e.b.Position())
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if e.b.Ply() == 0 {
		return fmt.Errorf("no move to take back")
	}
	e.b.Undo()

	logw.Infof(ctx, "Takeback: %v", e.b.Position())
	return nil
}

// Analyze analyzes the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b.Position(), opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	sctx := &search.Context{
		TT:      e.tt,
		Killers: &e.killers,
		History: e.history,
		Noise:   e.noise,
	}
	handle, out := e.launcher.Launch(ctx, e.b.Fork(), sctx, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search halted: %v", pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}

func (e *Engine) allocateTable(ctx context.Context) {
	if e.opts.Hash == 0 {
		e.tt = search.NoTranspositionTable{}
		return
	}
	e.tt = search.NewCache(ctx, uint64(e.opts.Hash))
}

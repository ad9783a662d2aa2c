package eval

import (
	"math"

	"github.com/herohde/eloi/pkg/board"
)

// pair is a middlegame/endgame score pair, blended by game phase.
type pair struct {
	mg, eg int32
}

func (p *pair) add(o pair, times int32) {
	p.mg += o.mg * times
	p.eg += o.eg * times
}

// Evaluator computes a tapered static score for a position: material, piece
// location, pawn structure, passed pawns, mobility, king safety, threats and
// minor-piece terms, with recognition of simple endgames. The derived tables are
// rebuilt from the configuration via Rebuild.
type Evaluator struct {
	cfg *Config

	material    [board.NumPieces]pair
	pst         [board.NumPieces][board.NumSquares]pair
	mobility    [board.NumPieces][]pair
	passed      [8]pair
	freePassed  [8]int32
	kingSafety  [64]int32
	unstoppable int32
}

// NewEvaluator returns an evaluator over the given configuration.
func NewEvaluator(cfg *Config) *Evaluator {
	e := &Evaluator{cfg: cfg}
	e.Rebuild()
	return e
}

// Config returns the underlying configuration. Call Rebuild after mutating it.
func (e *Evaluator) Config() *Config {
	return e.cfg
}

// Rebuild recomputes the derived tables from the configuration.
func (e *Evaluator) Rebuild() {
	c := e.cfg

	e.material[board.Pawn] = pair{int32(c.MgPawnMaterial), int32(c.EgPawnMaterial)}
	e.material[board.Knight] = pair{int32(c.MgKnightMaterial), int32(c.EgKnightMaterial)}
	e.material[board.Bishop] = pair{int32(c.MgBishopMaterial), int32(c.EgBishopMaterial)}
	e.material[board.Rook] = pair{int32(c.MgRookMaterial), int32(c.EgRookMaterial)}
	e.material[board.Queen] = pair{int32(c.MgQueenMaterial), int32(c.EgQueenMaterial)}

	factors := map[board.Piece][6]int{
		// mgAdv, egAdv, mgCent, egCent, mgCorner, egCorner
		board.Pawn:   {c.MgPawnAdvancement, c.EgPawnAdvancement, c.MgPawnCentrality, c.EgPawnCentrality, 0, 0},
		board.Knight: {c.MgKnightAdvancement, c.EgKnightAdvancement, c.MgKnightCentrality, c.EgKnightCentrality, c.MgKnightCorner, c.EgKnightCorner},
		board.Bishop: {c.MgBishopAdvancement, c.EgBishopAdvancement, c.MgBishopCentrality, c.EgBishopCentrality, c.MgBishopCorner, c.EgBishopCorner},
		board.Rook:   {c.MgRookAdvancement, c.EgRookAdvancement, c.MgRookCentrality, c.EgRookCentrality, c.MgRookCorner, c.EgRookCorner},
		board.Queen:  {c.MgQueenAdvancement, c.EgQueenAdvancement, c.MgQueenCentrality, c.EgQueenCentrality, c.MgQueenCorner, c.EgQueenCorner},
		board.King:   {c.MgKingAdvancement, c.EgKingAdvancement, c.MgKingCentrality, c.EgKingCentrality, c.MgKingCorner, c.EgKingCorner},
	}
	for piece, f := range factors {
		for sq := board.ZeroSquare; sq < board.NumSquares; sq++ {
			adv := sq.Rank().V() - 3
			cent := 3 - board.DistanceToCenter(sq)
			corner := 3 - board.DistanceToNearestCorner(sq)
			e.pst[piece][sq] = pair{
				mg: int32(f[0]*adv + f[2]*cent + f[4]*corner),
				eg: int32(f[1]*adv + f[3]*cent + f[5]*corner),
			}
		}
	}

	// Mobility arrays are normalized so the bonus at average mobility is zero.
	maxMoves := map[board.Piece]int{board.Knight: 8, board.Bishop: 13, board.Rook: 14, board.Queen: 27}
	for piece, n := range maxMoves {
		arr := make([]pair, n+1)
		mid := n / 2
		for i := 0; i <= n; i++ {
			arr[i] = pair{
				mg: nonLinearBonus(i, c.MgPieceMobilityScale, c.PieceMobilityPowerPer128) -
					nonLinearBonus(mid, c.MgPieceMobilityScale, c.PieceMobilityPowerPer128),
				eg: nonLinearBonus(i, c.EgPieceMobilityScale, c.PieceMobilityPowerPer128) -
					nonLinearBonus(mid, c.EgPieceMobilityScale, c.PieceMobilityPowerPer128),
			}
		}
		e.mobility[piece] = arr
	}

	for r := 0; r < 8; r++ {
		e.passed[r] = pair{
			mg: nonLinearBonus(r, c.MgPassedPawnScalePer128, c.PassedPawnPowerPer128),
			eg: nonLinearBonus(r, c.EgPassedPawnScalePer128, c.PassedPawnPowerPer128),
		}
		e.freePassed[r] = nonLinearBonus(r, c.EgFreePassedPawnScalePer128, c.PassedPawnPowerPer128)
	}

	for i := 0; i < len(e.kingSafety); i++ {
		e.kingSafety[i] = nonLinearBonus(i, c.MgKingSafetyScalePer128, c.MgKingSafetyPowerPer128)
	}

	e.unstoppable = int32(c.EgQueenMaterial - 2*c.EgPawnMaterial)
}

// nonLinearBonus returns scale/128 * x^(power/128), rounded down.
func nonLinearBonus(x, scalePer128, powerPer128 int) int32 {
	return int32(float64(scalePer128) / 128 * math.Pow(float64(x), float64(powerPer128)/128))
}

// Evaluate returns the static score of the position from the side to move's
// perspective, and whether the position is a recognized drawn endgame.
func (e *Evaluator) Evaluate(p *board.Position) (Score, bool) {
	if p.HasInsufficientMaterial() {
		return DrawScore, true
	}
	if score, drawn, ok := e.simpleEndgame(p); ok {
		return Crop(score), drawn
	}

	var material, location, pawns, passed, mobility, safety, threats, minor pair
	var safetyUnits [board.NumColors]int

	for c := board.White; c <= board.Black; c++ {
		sign := int32(1)
		if c == board.Black {
			sign = -1
		}
		e.evalMaterial(p, c, sign, &material)
		e.evalLocation(p, c, sign, &location)
		e.evalPawnStructure(p, c, sign, &pawns)
		e.evalPassedPawns(p, c, sign, &passed)
		e.evalMobility(p, c, sign, &mobility, &safetyUnits)
		e.evalThreats(p, c, sign, &threats)
		e.evalMinorPieces(p, c, sign, &minor)
	}
	e.evalKingSafety(p, safetyUnits, &safety)

	if e.cfg.LimitedStrength {
		scalePair(&location, e.cfg.LsPieceLocationPer128)
		scalePair(&passed, e.cfg.LsPassedPawnsPer128)
		scalePair(&mobility, e.cfg.LsPieceMobilityPer128)
		scalePair(&safety, e.cfg.LsKingSafetyPer128)
		scalePair(&minor, e.cfg.LsMinorPiecesPer128)
	}

	var total pair
	for _, g := range []pair{material, location, pawns, passed, mobility, safety, threats, minor} {
		total.add(g, 1)
	}

	drawn := e.isDrawnPattern(p)
	egScale := int32(0)
	if !drawn {
		egScale = e.endgameScale(p, total.eg)
	}

	phase := gamePhase(p)
	eg := total.eg * egScale / 128
	tapered := (total.mg*phase + eg*(MiddlegamePhase-phase)) / MiddlegamePhase

	score := Score(tapered)
	if p.Turn() == board.Black {
		score = -score
	}
	return Crop(score), drawn
}

// gamePhase returns the game phase in [0;MiddlegamePhase]: the full middlegame
// value with all pieces on the board, zero with none.
func gamePhase(p *board.Position) int32 {
	phase := KnightPhase*(p.Piece(board.White, board.Knight)|p.Piece(board.Black, board.Knight)).PopCount() +
		BishopPhase*(p.Piece(board.White, board.Bishop)|p.Piece(board.Black, board.Bishop)).PopCount() +
		RookPhase*(p.Piece(board.White, board.Rook)|p.Piece(board.Black, board.Rook)).PopCount() +
		QueenPhase*(p.Piece(board.White, board.Queen)|p.Piece(board.Black, board.Queen)).PopCount()
	if phase > MiddlegamePhase {
		phase = MiddlegamePhase
	}
	return int32(phase)
}

func scalePair(p *pair, per128 int) {
	p.mg = p.mg * int32(per128) / 128
	p.eg = p.eg * int32(per128) / 128
}

func (e *Evaluator) evalMaterial(p *board.Position, c board.Color, sign int32, acc *pair) {
	for piece := board.Pawn; piece <= board.Queen; piece++ {
		if n := p.Piece(c, piece).PopCount(); n > 0 {
			acc.add(e.material[piece], sign*int32(n))
		}
	}
}

func (e *Evaluator) evalLocation(p *board.Position, c board.Color, sign int32, acc *pair) {
	for piece := board.Pawn; piece <= board.King; piece++ {
		bb := p.Piece(c, piece)
		for bb != 0 {
			sq := bb.Pop()
			if c == board.Black {
				sq ^= 56 // mirror ranks to white's perspective
			}
			acc.add(e.pst[piece][sq], sign)
		}
	}
}

func (e *Evaluator) evalPawnStructure(p *board.Position, c board.Color, sign int32, acc *pair) {
	cfg := e.cfg
	own := p.Piece(c, board.Pawn)

	bb := own
	for bb != 0 {
		sq := bb.Pop()

		adjacent := board.EmptyBitboard
		if f := sq.File(); f > board.FileA {
			adjacent |= board.BitFile(f - 1)
		}
		if f := sq.File(); f < board.FileH {
			adjacent |= board.BitFile(f + 1)
		}
		if adjacent&own == 0 {
			acc.add(pair{int32(cfg.MgIsolatedPawn), int32(cfg.EgIsolatedPawn)}, -sign)
		}
	}

	for f := board.ZeroFile; f < board.NumFiles; f++ {
		if n := (own & board.BitFile(f)).PopCount(); n > 1 {
			acc.add(pair{int32(cfg.MgDoubledPawn), int32(cfg.EgDoubledPawn)}, -sign*int32(n-1))
		}
	}
}

func (e *Evaluator) evalPassedPawns(p *board.Position, c board.Color, sign int32, acc *pair) {
	them := c.Opponent()
	enemyPawns := p.Piece(them, board.Pawn)
	enemyPieces := p.Piece(them, board.Knight) | p.Piece(them, board.Bishop) |
		p.Piece(them, board.Rook) | p.Piece(them, board.Queen)
	ownKing, enemyKing := p.KingSquare(c), p.KingSquare(them)

	bb := p.Piece(c, board.Pawn)
	for bb != 0 {
		sq := bb.Pop()
		if board.PassedPawnMask(c, sq)&enemyPawns != 0 {
			continue
		}

		r := sq.RelativeRank(c).V()
		acc.add(e.passed[r], sign)

		if board.FreePawnMask(c, sq)&p.All() == 0 {
			acc.add(pair{0, e.freePassed[r]}, sign)
		}

		// Unstoppable: the defender has no pieces and the king loses the race to
		// the promotion square, accounting for the tempo.
		if enemyPieces == 0 {
			promo := board.NewSquare(sq.File(), board.Rank8)
			if c == board.Black {
				promo = board.NewSquare(sq.File(), board.Rank1)
			}
			pawnDist := 7 - r
			if r == 1 {
				pawnDist-- // double step available
			}
			tempo := 0
			if p.Turn() == c {
				tempo = 1
			}
			if board.Distance(enemyKing, promo) > pawnDist-tempo {
				acc.add(pair{0, e.unstoppable}, sign)
			}
		}

		escort := int32(board.Distance(enemyKing, sq)-board.Distance(ownKing, sq)) * int32(e.cfg.EgKingEscortedPassedPawn)
		acc.add(pair{0, escort}, sign)
	}
}

// evalMobility accumulates piece mobility and, for the same attack sets, the
// weighted attack units against the enemy king zone.
func (e *Evaluator) evalMobility(p *board.Position, c board.Color, sign int32, acc *pair, units *[board.NumColors]int) {
	cfg := e.cfg
	them := c.Opponent()
	enemyKing := p.KingSquare(them)
	inner, outer := board.InnerRingMask(enemyKing), board.OuterRingMask(enemyKing)

	for piece := board.Knight; piece <= board.Queen; piece++ {
		var innerWeight, outerWeight int
		switch piece {
		case board.Knight, board.Bishop:
			innerWeight, outerWeight = cfg.MgKingSafetyMinorAttackInnerRingPer8, cfg.MgKingSafetyMinorAttackOuterRingPer8
		case board.Rook:
			innerWeight, outerWeight = cfg.MgKingSafetyRookAttackInnerRingPer8, cfg.MgKingSafetyRookAttackOuterRingPer8
		case board.Queen:
			innerWeight, outerWeight = cfg.MgKingSafetyQueenAttackInnerRingPer8, cfg.MgKingSafetyQueenAttackOuterRingPer8
		}

		bb := p.Piece(c, piece)
		for bb != 0 {
			sq := bb.Pop()
			attacks := board.Attackboard(p.All(), sq, piece)

			moves := (attacks &^ p.Color(c)).PopCount()
			if moves >= len(e.mobility[piece]) {
				moves = len(e.mobility[piece]) - 1
			}
			acc.add(e.mobility[piece][moves], sign)

			units[them] += (attacks & inner).PopCount()*innerWeight +
				(attacks & outer).PopCount()*outerWeight
		}
	}
}

// evalKingSafety converts the accumulated attack units per defender into a
// non-linear middlegame penalty, adding semi-open files near the king and
// missing shield pawns.
func (e *Evaluator) evalKingSafety(p *board.Position, units [board.NumColors]int, acc *pair) {
	cfg := e.cfg

	for c := board.White; c <= board.Black; c++ {
		king := p.KingSquare(c)
		pawns := p.Piece(c, board.Pawn)

		total := units[c]

		for df := -1; df <= 1; df++ {
			f := king.File().V() + df
			if f < 0 || f > 7 {
				continue
			}
			if board.BitFile(board.File(f))&pawns == 0 {
				total += cfg.MgKingSafetySemiOpenFilePer8
			}
		}

		missing := 3 - (board.PawnShieldMask(c, king) & pawns).PopCount()
		total += missing * cfg.MgKingSafetyPawnShieldPer8

		idx := total / 8
		if idx >= len(e.kingSafety) {
			idx = len(e.kingSafety) - 1
		}
		if c == board.White {
			acc.mg -= e.kingSafety[idx]
		} else {
			acc.mg += e.kingSafety[idx]
		}
	}
}

func (e *Evaluator) evalThreats(p *board.Position, c board.Color, sign int32, acc *pair) {
	cfg := e.cfg
	them := c.Opponent()

	minors := p.Piece(them, board.Knight) | p.Piece(them, board.Bishop)
	majors := p.Piece(them, board.Rook) | p.Piece(them, board.Queen)

	pawnAttacks := board.PawnCaptureboard(c, p.Piece(c, board.Pawn))
	acc.add(pair{int32(cfg.MgPawnThreatenMinor), int32(cfg.EgPawnThreatenMinor)}, sign*int32((pawnAttacks&minors).PopCount()))
	acc.add(pair{int32(cfg.MgPawnThreatenMajor), int32(cfg.EgPawnThreatenMajor)}, sign*int32((pawnAttacks&majors).PopCount()))

	var minorAttacks board.Bitboard
	for bb := p.Piece(c, board.Knight); bb != 0; {
		minorAttacks |= board.KnightAttackboard(bb.Pop())
	}
	for bb := p.Piece(c, board.Bishop); bb != 0; {
		minorAttacks |= board.BishopAttackboard(p.All(), bb.Pop())
	}
	acc.add(pair{int32(cfg.MgMinorThreatenMajor), int32(cfg.EgMinorThreatenMajor)}, sign*int32((minorAttacks&majors).PopCount()))
}

func (e *Evaluator) evalMinorPieces(p *board.Position, c board.Color, sign int32, acc *pair) {
	bishops := p.Piece(c, board.Bishop)
	if bishops&board.LightSquares != 0 && bishops&board.DarkSquares != 0 {
		acc.add(pair{int32(e.cfg.MgBishopPair), int32(e.cfg.EgBishopPair)}, sign)
	}
}

// endgameScale returns the endgame scaling factor per 128 as a linear function of
// the winning side's pawn count, halved for pure opposite-colored-bishop endings.
func (e *Evaluator) endgameScale(p *board.Position, egLead int32) int32 {
	winner := board.White
	if egLead < 0 {
		winner = board.Black
	}
	pawns := p.Piece(winner, board.Pawn).PopCount()

	scale := int32(e.cfg.EgScaleBasePer128) + int32(pawns)*int32(e.cfg.EgScalePerPawnPer128)

	wb, bb := p.Piece(board.White, board.Bishop), p.Piece(board.Black, board.Bishop)
	others := p.Piece(board.White, board.Knight) | p.Piece(board.Black, board.Knight) |
		p.Piece(board.White, board.Rook) | p.Piece(board.Black, board.Rook) |
		p.Piece(board.White, board.Queen) | p.Piece(board.Black, board.Queen)
	if others == 0 && wb.PopCount() == 1 && bb.PopCount() == 1 {
		light := (wb | bb) & board.LightSquares
		if light == wb || light == bb {
			scale /= 2
		}
	}

	if scale > 128 {
		scale = 128
	}
	return scale
}

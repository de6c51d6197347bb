// Package game holds the turn-based state of a voice chess game and the
// session loop that drives it from speech, clicks, the clock and the
// opponent.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"voicechess/pkg/chessrules"
)

type Status string

const (
	StatusPlaying   Status = "playing"
	StatusCheck     Status = "check"
	StatusCheckmate Status = "checkmate"
	StatusStalemate Status = "stalemate"
	StatusDraw      Status = "draw"
	StatusTimeout   Status = "timeout"
)

// Terminal statuses never change again within a game.
func (s Status) Terminal() bool {
	switch s {
	case StatusCheckmate, StatusStalemate, StatusDraw, StatusTimeout:
		return true
	}
	return false
}

type Mover string

const (
	ByPlayer   Mover = "player"
	ByOpponent Mover = "opponent"
)

// MoveRecord is one applied move.
type MoveRecord struct {
	Ply       int             `json:"ply"`
	SAN       string          `json:"san"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Promotion string          `json:"promotion,omitempty"`
	By        Mover           `json:"by"`
	Side      chessrules.Side `json:"side"`
	Status    Status          `json:"status"`
	Fallback  bool            `json:"fallback,omitempty"`
}

// OpponentRequest tags a search with the position it was issued for.
type OpponentRequest struct {
	ID  uint64
	Ply int
	FEN string
}

type TickResult struct {
	Side      chessrules.Side
	Remaining int
	TimedOut  bool
	Active    bool
}

type Config struct {
	Oracle      chessrules.Oracle
	TimeControl TimeControl
	PlayerSide  chessrules.Side
	StartFEN    string
	Rand        *rand.Rand
}

// Game is the synchronous state machine. It is not safe for concurrent use;
// Session serialises access to it.
type Game struct {
	oracle     chessrules.Oracle
	tc         TimeControl
	playerSide chessrules.Side
	rng        *rand.Rand

	positions []chessrules.Position
	history   []MoveRecord
	clocks    ClockPair
	status    Status
	winner    chessrules.Side

	pending   *OpponentRequest
	requestID uint64
}

func NewGame(cfg Config) (*Game, error) {
	if cfg.Oracle == nil {
		cfg.Oracle = chessrules.NewStandard()
	}
	if cfg.PlayerSide == "" {
		cfg.PlayerSide = chessrules.White
	}
	if cfg.PlayerSide != chessrules.White && cfg.PlayerSide != chessrules.Black {
		return nil, ErrInvalidSide
	}
	if cfg.TimeControl.BaseSeconds <= 0 {
		tc, err := ParseTimeControl(cfg.TimeControl.Label)
		if err != nil {
			return nil, err
		}
		cfg.TimeControl = tc
	}
	if cfg.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		cfg.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}

	start := cfg.Oracle.Start()
	if cfg.StartFEN != "" {
		pos, err := cfg.Oracle.Load(cfg.StartFEN)
		if err != nil {
			return nil, err
		}
		start = pos
	}

	g := &Game{
		oracle:     cfg.Oracle,
		tc:         cfg.TimeControl,
		playerSide: cfg.PlayerSide,
		rng:        cfg.Rand,
		positions:  []chessrules.Position{start},
		clocks:     NewClockPair(cfg.TimeControl.BaseSeconds),
	}
	g.status = g.statusOf(start)
	if g.status == StatusCheckmate {
		g.winner = g.oracle.Turn(start).Opponent()
	}
	return g, nil
}

func (g *Game) position() chessrules.Position {
	return g.positions[len(g.positions)-1]
}

func (g *Game) FEN() string                      { return g.position().FEN() }
func (g *Game) Status() Status                   { return g.status }
func (g *Game) Winner() chessrules.Side          { return g.winner }
func (g *Game) Clocks() ClockPair                { return g.clocks }
func (g *Game) TimeControl() TimeControl         { return g.tc }
func (g *Game) PlayerSide() chessrules.Side      { return g.playerSide }
func (g *Game) OpponentSide() chessrules.Side    { return g.playerSide.Opponent() }
func (g *Game) Ply() int                         { return len(g.history) }
func (g *Game) AwaitingOpponent() bool           { return g.pending != nil }
func (g *Game) LegalMoves() []chessrules.Move    { return g.oracle.LegalMoves(g.position()) }
func (g *Game) Turn() chessrules.Side            { return g.oracle.Turn(g.position()) }
func (g *Game) PendingRequest() *OpponentRequest { return g.pending }

func (g *Game) History() []MoveRecord {
	return append([]MoveRecord(nil), g.history...)
}

// SAN is the move list in algebraic notation.
func (g *Game) SAN() []string {
	out := make([]string, len(g.history))
	for i, rec := range g.history {
		out[i] = rec.SAN
	}
	return out
}

func (g *Game) sideOf(by Mover) chessrules.Side {
	if by == ByOpponent {
		return g.playerSide.Opponent()
	}
	return g.playerSide
}

// ApplyMove plays from-to for by. A rejected move leaves every part of the
// game untouched.
func (g *Game) ApplyMove(from, to string, by Mover, promotion chessrules.PieceType) (MoveRecord, error) {
	if g.status.Terminal() {
		return MoveRecord{}, ErrGameOver
	}
	if by == ByPlayer && g.pending != nil {
		return MoveRecord{}, ErrAwaitingOpponent
	}
	side := g.sideOf(by)
	if g.Turn() != side {
		return MoveRecord{}, ErrNotYourTurn
	}
	return g.apply(from, to, by, side, promotion)
}

func (g *Game) apply(from, to string, by Mover, side chessrules.Side, promotion chessrules.PieceType) (MoveRecord, error) {
	next, move, err := g.oracle.Apply(g.position(), from, to, promotion)
	if err != nil {
		if errors.Is(err, chessrules.ErrIllegalMove) {
			return MoveRecord{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
		}
		return MoveRecord{}, err
	}

	status := g.statusOf(next)
	clocks := g.clocks
	clocks.Add(side, g.tc.IncrementSeconds)

	rec := MoveRecord{
		Ply:       len(g.history) + 1,
		SAN:       move.Notation,
		From:      move.From,
		To:        move.To,
		Promotion: move.Promotion.Letter(),
		By:        by,
		Side:      side,
		Status:    status,
	}

	g.positions = append(g.positions, next)
	g.history = append(g.history, rec)
	g.clocks = clocks
	g.status = status
	if status == StatusCheckmate {
		g.winner = side
	}
	return rec, nil
}

// statusOf ranks checkmate over stalemate over draw over check.
func (g *Game) statusOf(pos chessrules.Position) Status {
	switch {
	case g.oracle.IsCheckmate(pos):
		return StatusCheckmate
	case g.oracle.IsStalemate(pos):
		return StatusStalemate
	case g.oracle.IsDraw(pos):
		return StatusDraw
	case g.oracle.IsCheck(pos):
		return StatusCheck
	}
	return StatusPlaying
}

// NeedsOpponent is true when the opponent is to move and no search is out.
func (g *Game) NeedsOpponent() bool {
	return !g.status.Terminal() && g.pending == nil && g.Turn() == g.OpponentSide()
}

// BeginOpponentRequest marks a search as outstanding. Player moves are
// refused until it completes or is cancelled.
func (g *Game) BeginOpponentRequest() (OpponentRequest, bool) {
	if !g.NeedsOpponent() {
		return OpponentRequest{}, false
	}
	g.requestID++
	req := OpponentRequest{ID: g.requestID, Ply: len(g.history), FEN: g.FEN()}
	g.pending = &req
	return req, true
}

// CompleteOpponentRequest applies the engine's answer to req. A missing or
// illegal answer is replaced by a random legal move. Answers to cancelled or
// superseded requests return ErrStaleResponse without touching the game.
func (g *Game) CompleteOpponentRequest(req OpponentRequest, move *OpponentMove) (MoveRecord, error) {
	if g.pending == nil || g.pending.ID != req.ID || req.Ply != len(g.history) {
		return MoveRecord{}, ErrStaleResponse
	}
	g.pending = nil

	if g.status.Terminal() {
		return MoveRecord{}, ErrGameOver
	}

	side := g.OpponentSide()
	if move != nil {
		rec, err := g.apply(move.From, move.To, ByOpponent, side, move.Promotion)
		if err == nil {
			return rec, nil
		}
	}

	legal := g.LegalMoves()
	if len(legal) == 0 {
		return MoveRecord{}, ErrGameOver
	}
	pick := legal[g.rng.IntN(len(legal))]
	rec, err := g.apply(pick.From, pick.To, ByOpponent, side, pick.Promotion)
	if err != nil {
		return MoveRecord{}, err
	}
	rec.Fallback = true
	g.history[len(g.history)-1].Fallback = true
	return rec, nil
}

func (g *Game) CancelOpponentRequest() {
	g.pending = nil
}

// Tick takes one second from the side to move. Reaching zero ends the game
// on time and freezes both clocks.
func (g *Game) Tick() TickResult {
	if g.status.Terminal() {
		return TickResult{}
	}

	side := g.Turn()
	remaining := g.clocks.Get(side) - 1
	if remaining <= 0 {
		remaining = 0
	}
	g.clocks.Set(side, remaining)

	res := TickResult{Side: side, Remaining: remaining, Active: true}
	if remaining == 0 {
		g.status = StatusTimeout
		g.winner = side.Opponent()
		g.pending = nil
		res.TimedOut = true
	}
	return res
}

// UndoLastExchange takes back the opponent's last move, if it was the last
// one played, and the player move before it. It returns how many plies were
// removed. Clocks are not rewound.
func (g *Game) UndoLastExchange() (int, error) {
	if g.status.Terminal() {
		return 0, ErrGameOver
	}

	playerMoved := false
	for _, rec := range g.history {
		if rec.By == ByPlayer {
			playerMoved = true
			break
		}
	}
	if !playerMoved {
		return 0, ErrNothingToUndo
	}

	g.pending = nil

	n := len(g.history)
	if g.history[n-1].By == ByOpponent {
		n--
	}
	if g.history[n-1].By == ByPlayer {
		n--
	}
	removed := len(g.history) - n

	g.history = g.history[:n]
	g.positions = g.positions[:n+1]
	g.status = g.statusOf(g.position())
	g.winner = ""
	return removed, nil
}

// Snapshot is a read-only copy of the game for callers outside the session.
type Snapshot struct {
	Status           Status          `json:"status"`
	FEN              string          `json:"fen"`
	Turn             chessrules.Side `json:"turn"`
	PlayerSide       chessrules.Side `json:"player_side"`
	Moves            []string        `json:"moves"`
	LastMove         *MoveRecord     `json:"last_move,omitempty"`
	Clocks           ClockPair       `json:"clocks"`
	TimeControl      TimeControl     `json:"time_control"`
	AwaitingOpponent bool            `json:"awaiting_opponent"`
	Winner           chessrules.Side `json:"winner,omitempty"`
}

func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Status:           g.status,
		FEN:              g.FEN(),
		Turn:             g.Turn(),
		PlayerSide:       g.playerSide,
		Moves:            g.SAN(),
		Clocks:           g.clocks,
		TimeControl:      g.tc,
		AwaitingOpponent: g.pending != nil,
		Winner:           g.winner,
	}
	if n := len(g.history); n > 0 {
		last := g.history[n-1]
		snap.LastMove = &last
	}
	return snap
}

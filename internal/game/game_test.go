package game

import (
	"errors"
	"math/rand/v2"
	"testing"

	"voicechess/pkg/chessrules"
)

func newTestGame(t *testing.T, label string, side chessrules.Side) *Game {
	t.Helper()
	tc, err := ParseTimeControl(label)
	if err != nil {
		t.Fatalf("ParseTimeControl(%q): %v", label, err)
	}
	g, err := NewGame(Config{
		TimeControl: tc,
		PlayerSide:  side,
		Rand:        rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

// opponentPlays runs one full opponent request with the given answer.
func opponentPlays(t *testing.T, g *Game, move *OpponentMove) MoveRecord {
	t.Helper()
	req, ok := g.BeginOpponentRequest()
	if !ok {
		t.Fatal("BeginOpponentRequest: opponent is not to move")
	}
	rec, err := g.CompleteOpponentRequest(req, move)
	if err != nil {
		t.Fatalf("CompleteOpponentRequest: %v", err)
	}
	return rec
}

func TestNewGame_Defaults(t *testing.T) {
	g, err := NewGame(Config{})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if g.PlayerSide() != chessrules.White {
		t.Errorf("PlayerSide = %s, want white", g.PlayerSide())
	}
	if g.TimeControl().Label != DefaultTimeControl {
		t.Errorf("TimeControl = %s, want %s", g.TimeControl(), DefaultTimeControl)
	}
	if c := g.Clocks(); c.White != 300 || c.Black != 300 {
		t.Errorf("Clocks = %+v, want 300/300", c)
	}
	if g.Status() != StatusPlaying || g.Ply() != 0 {
		t.Errorf("Status = %s, Ply = %d; want playing, 0", g.Status(), g.Ply())
	}
	if g.NeedsOpponent() {
		t.Error("white player should move first")
	}
}

func TestNewGame_InvalidSide(t *testing.T) {
	if _, err := NewGame(Config{PlayerSide: "red"}); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("error = %v, want ErrInvalidSide", err)
	}
}

func TestApplyMove_AddsIncrement(t *testing.T) {
	g := newTestGame(t, "3+2", chessrules.White)

	rec, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece)
	if err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	if rec.SAN != "e4" || rec.Ply != 1 || rec.By != ByPlayer || rec.Side != chessrules.White {
		t.Errorf("record = %+v", rec)
	}
	if c := g.Clocks(); c.White != 182 || c.Black != 180 {
		t.Errorf("Clocks = %+v, want white 182, black 180", c)
	}
	if !g.NeedsOpponent() {
		t.Error("NeedsOpponent = false after the player moved")
	}
}

func TestApplyMove_IncrementAfterElapsedTime(t *testing.T) {
	for _, ticks := range []int{1, 5, 42} {
		g := newTestGame(t, "3+2", chessrules.White)
		for i := 0; i < ticks; i++ {
			if res := g.Tick(); res.Side != chessrules.White {
				t.Fatalf("tick %d charged %s, want white", i, res.Side)
			}
		}

		if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
			t.Fatalf("ApplyMove: %v", err)
		}
		if c := g.Clocks(); c.White != 180-ticks+2 || c.Black != 180 {
			t.Errorf("after %d ticks Clocks = %+v, want white %d, black 180", ticks, c, 180-ticks+2)
		}
	}
}

func TestApplyMove_RejectionLeavesGameUntouched(t *testing.T) {
	g := newTestGame(t, "3+2", chessrules.White)
	before := g.Snapshot()

	if _, err := g.ApplyMove("e2", "e5", ByPlayer, chessrules.NoPiece); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("error = %v, want ErrIllegalMove", err)
	}
	after := g.Snapshot()
	if after.FEN != before.FEN || after.Clocks != before.Clocks || len(after.Moves) != 0 || after.Status != before.Status {
		t.Errorf("game changed after a rejected move: %+v", after)
	}

	if _, err := g.ApplyMove("e7", "e5", ByOpponent, chessrules.NoPiece); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("opponent out of turn error = %v, want ErrNotYourTurn", err)
	}
}

func TestApplyMove_WhileAwaitingOpponent(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}

	if _, err := g.ApplyMove("d2", "d4", ByPlayer, chessrules.NoPiece); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("before request error = %v, want ErrNotYourTurn", err)
	}

	if _, ok := g.BeginOpponentRequest(); !ok {
		t.Fatal("BeginOpponentRequest failed")
	}
	if _, err := g.ApplyMove("d2", "d4", ByPlayer, chessrules.NoPiece); !errors.Is(err, ErrAwaitingOpponent) {
		t.Errorf("during request error = %v, want ErrAwaitingOpponent", err)
	}
	if _, ok := g.BeginOpponentRequest(); ok {
		t.Error("a second request started while one is pending")
	}
}

func TestCompleteOpponentRequest(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}

	req, _ := g.BeginOpponentRequest()
	rec, err := g.CompleteOpponentRequest(req, &OpponentMove{From: "e7", To: "e5"})
	if err != nil {
		t.Fatalf("CompleteOpponentRequest: %v", err)
	}
	if rec.SAN != "e5" || rec.By != ByOpponent || rec.Fallback {
		t.Errorf("record = %+v", rec)
	}
	if g.AwaitingOpponent() {
		t.Error("still awaiting the opponent")
	}

	if _, err := g.CompleteOpponentRequest(req, &OpponentMove{From: "d7", To: "d5"}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("second answer error = %v, want ErrStaleResponse", err)
	}
	if g.Ply() != 2 {
		t.Errorf("Ply = %d, want 2", g.Ply())
	}
}

func TestCompleteOpponentRequest_Fallback(t *testing.T) {
	tests := []struct {
		name string
		move *OpponentMove
	}{
		{"no answer", nil},
		{"illegal answer", &OpponentMove{From: "a8", To: "a1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, "5+0", chessrules.White)
			if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
				t.Fatalf("ApplyMove: %v", err)
			}

			rec := opponentPlays(t, g, tt.move)
			if !rec.Fallback {
				t.Error("Fallback = false")
			}
			if rec.Side != chessrules.Black {
				t.Errorf("Side = %s, want black", rec.Side)
			}
			if !g.History()[1].Fallback {
				t.Error("history entry not marked as fallback")
			}
			if g.Turn() != chessrules.White {
				t.Errorf("Turn = %s, want white", g.Turn())
			}
		})
	}
}

func TestCancelOpponentRequest_MakesAnswerStale(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}

	req, _ := g.BeginOpponentRequest()
	g.CancelOpponentRequest()

	if _, err := g.CompleteOpponentRequest(req, &OpponentMove{From: "e7", To: "e5"}); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("error = %v, want ErrStaleResponse", err)
	}
	if g.Ply() != 1 {
		t.Errorf("Ply = %d, want 1", g.Ply())
	}
}

func TestCheckmateByOpponent(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)

	if _, err := g.ApplyMove("f2", "f3", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("f3: %v", err)
	}
	opponentPlays(t, g, &OpponentMove{From: "e7", To: "e5"})
	if _, err := g.ApplyMove("g2", "g4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("g4: %v", err)
	}
	rec := opponentPlays(t, g, &OpponentMove{From: "d8", To: "h4"})

	if rec.SAN != "Qh4#" {
		t.Errorf("SAN = %q, want Qh4#", rec.SAN)
	}
	if g.Status() != StatusCheckmate || g.Winner() != chessrules.Black {
		t.Errorf("Status = %s, Winner = %s; want checkmate, black", g.Status(), g.Winner())
	}
	if g.NeedsOpponent() {
		t.Error("NeedsOpponent after mate")
	}
	if _, err := g.ApplyMove("a2", "a3", ByPlayer, chessrules.NoPiece); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after mate error = %v, want ErrGameOver", err)
	}
	if _, err := g.UndoLastExchange(); !errors.Is(err, ErrGameOver) {
		t.Errorf("undo after mate error = %v, want ErrGameOver", err)
	}
}

func TestUndoLastExchange(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	start := g.FEN()

	if _, err := g.UndoLastExchange(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo at start error = %v, want ErrNothingToUndo", err)
	}

	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	opponentPlays(t, g, &OpponentMove{From: "e7", To: "e5"})

	n, err := g.UndoLastExchange()
	if err != nil {
		t.Fatalf("UndoLastExchange: %v", err)
	}
	if n != 2 || g.Ply() != 0 || g.FEN() != start {
		t.Errorf("after undo: removed %d, ply %d, fen %s", n, g.Ply(), g.FEN())
	}
}

func TestUndoLastExchange_WhileOpponentThinks(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	req, _ := g.BeginOpponentRequest()

	n, err := g.UndoLastExchange()
	if err != nil {
		t.Fatalf("UndoLastExchange: %v", err)
	}
	if n != 1 || g.AwaitingOpponent() {
		t.Errorf("removed %d, awaiting %v; want 1, false", n, g.AwaitingOpponent())
	}
	if _, err := g.CompleteOpponentRequest(req, nil); !errors.Is(err, ErrStaleResponse) {
		t.Errorf("late answer error = %v, want ErrStaleResponse", err)
	}
}

func TestUndoLastExchange_PlayerBlack(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.Black)
	if !g.NeedsOpponent() {
		t.Fatal("opponent should open as white")
	}
	opponentPlays(t, g, &OpponentMove{From: "e2", To: "e4"})

	if _, err := g.UndoLastExchange(); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo before any player move error = %v, want ErrNothingToUndo", err)
	}

	if _, err := g.ApplyMove("e7", "e5", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	opponentPlays(t, g, &OpponentMove{From: "g1", To: "f3"})

	n, err := g.UndoLastExchange()
	if err != nil {
		t.Fatalf("UndoLastExchange: %v", err)
	}
	if n != 2 || g.Ply() != 1 || g.Turn() != chessrules.Black {
		t.Errorf("removed %d, ply %d, turn %s; want 2, 1, black", n, g.Ply(), g.Turn())
	}
}

func TestTick_Timeout(t *testing.T) {
	g := newTestGame(t, "0.05+0", chessrules.White)
	if g.Clocks().White != 3 {
		t.Fatalf("White clock = %d, want 3", g.Clocks().White)
	}

	for i := 0; i < 2; i++ {
		if res := g.Tick(); res.TimedOut || !res.Active {
			t.Fatalf("tick %d = %+v", i, res)
		}
	}
	res := g.Tick()
	if !res.TimedOut || res.Side != chessrules.White || res.Remaining != 0 {
		t.Errorf("final tick = %+v", res)
	}
	if g.Status() != StatusTimeout || g.Winner() != chessrules.Black {
		t.Errorf("Status = %s, Winner = %s; want timeout, black", g.Status(), g.Winner())
	}

	if res := g.Tick(); res.Active {
		t.Error("clock still running after timeout")
	}
	if g.Clocks().White != 0 || g.Clocks().Black != 3 {
		t.Errorf("Clocks = %+v, want 0/3", g.Clocks())
	}
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after timeout error = %v, want ErrGameOver", err)
	}
}

func TestTick_OnlySideToMove(t *testing.T) {
	g := newTestGame(t, "1+0", chessrules.White)
	g.Tick()
	if _, err := g.ApplyMove("e2", "e4", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}
	g.Tick()
	g.Tick()

	if c := g.Clocks(); c.White != 59 || c.Black != 58 {
		t.Errorf("Clocks = %+v, want white 59, black 58", c)
	}
}

func TestSnapshot(t *testing.T) {
	g := newTestGame(t, "5+0", chessrules.White)
	if _, err := g.ApplyMove("g1", "f3", ByPlayer, chessrules.NoPiece); err != nil {
		t.Fatalf("ApplyMove: %v", err)
	}

	snap := g.Snapshot()
	if len(snap.Moves) != 1 || snap.Moves[0] != "Nf3" {
		t.Errorf("Moves = %v, want [Nf3]", snap.Moves)
	}
	if snap.LastMove == nil || snap.LastMove.To != "f3" {
		t.Errorf("LastMove = %+v", snap.LastMove)
	}
	if snap.Turn != chessrules.Black {
		t.Errorf("Turn = %s, want black", snap.Turn)
	}
}

func TestCompleteOpponentRequest_FallbackCheckmates(t *testing.T) {
	// Black's only legal move is Nf2, smothering the white king on h1.
	g, err := NewGame(Config{
		StartFEN:   "k7/p7/P1N5/8/8/2p1p3/1pP1P1PP/1N1n2NK b - - 0 1",
		PlayerSide: chessrules.White,
		Rand:       rand.New(rand.NewPCG(5, 6)),
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	if moves := g.LegalMoves(); len(moves) != 1 {
		t.Fatalf("LegalMoves = %d, want 1", len(moves))
	}

	rec := opponentPlays(t, g, nil)
	if !rec.Fallback || rec.From != "d1" || rec.To != "f2" {
		t.Errorf("record = %+v, want fallback d1f2", rec)
	}
	if rec.Status != StatusCheckmate {
		t.Errorf("record status = %s, want checkmate", rec.Status)
	}
	if g.Status() != StatusCheckmate || g.Winner() != chessrules.Black {
		t.Errorf("Status = %s, Winner = %s; want checkmate, black", g.Status(), g.Winner())
	}
	if g.NeedsOpponent() {
		t.Error("NeedsOpponent after mate")
	}
}

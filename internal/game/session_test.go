package game

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"voicechess/internal/announce"
	"voicechess/internal/entity"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/nlp"
	"voicechess/pkg/speech"
)

const stopMarker = "<stop>"

type recordingSynth struct {
	mu     sync.Mutex
	spoken []string
	// calls holds spoken text and stopMarker in call order.
	calls []string
}

func (r *recordingSynth) Speak(_ context.Context, text string, _ speech.Options) error {
	r.mu.Lock()
	r.spoken = append(r.spoken, text)
	r.calls = append(r.calls, text)
	r.mu.Unlock()
	return nil
}

func (r *recordingSynth) Stop() {
	r.mu.Lock()
	r.calls = append(r.calls, stopMarker)
	r.mu.Unlock()
}

// stoppedAfter reports whether Stop was called after text was spoken.
func (r *recordingSynth) stoppedAfter(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := false
	for _, c := range r.calls {
		switch {
		case c == text:
			seen = true
		case c == stopMarker && seen:
			return true
		}
	}
	return false
}

func (r *recordingSynth) said(text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.spoken {
		if s == text {
			return true
		}
	}
	return false
}

func testOptions(label string, source MoveSource) Options {
	tc, _ := ParseTimeControl(label)
	opts := DefaultOptions()
	opts.Game = Config{TimeControl: tc, Rand: rand.New(rand.NewPCG(3, 4))}
	opts.Source = source
	opts.ThinkDelay = 0
	opts.TickInterval = 0
	opts.CommandCooldown = 0
	opts.OpponentTimeout = 50 * time.Millisecond
	return opts
}

// startSession runs a session until the test ends.
func startSession(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := NewSession(opts, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
	return s
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func scripted(from, to string) MoveSource {
	return MoveSourceFunc(func(context.Context, string, SearchBudget) (*OpponentMove, error) {
		return &OpponentMove{From: from, To: to}, nil
	})
}

func TestSession_ClickMoveAndOpponentReply(t *testing.T) {
	s := startSession(t, testOptions("5+0", scripted("e7", "e5")))

	rec, err := s.Move(context.Background(), "e2", "e4", chessrules.NoPiece)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if rec.SAN != "e4" {
		t.Errorf("SAN = %q, want e4", rec.SAN)
	}

	eventually(t, "opponent reply", func() bool { return len(s.Snapshot().Moves) == 2 })
	last := s.Snapshot().LastMove
	if last.By != ByOpponent || last.SAN != "e5" || last.Fallback {
		t.Errorf("opponent move = %+v", last)
	}
}

func TestSession_SlowSourceFallsBack(t *testing.T) {
	slow := MoveSourceFunc(func(ctx context.Context, _ string, _ SearchBudget) (*OpponentMove, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	s := startSession(t, testOptions("5+0", slow))

	if _, err := s.Move(context.Background(), "d2", "d4", chessrules.NoPiece); err != nil {
		t.Fatalf("Move: %v", err)
	}

	eventually(t, "fallback move", func() bool { return len(s.Snapshot().Moves) == 2 })
	last := s.Snapshot().LastMove
	if !last.Fallback || last.Side != chessrules.Black {
		t.Errorf("opponent move = %+v, want a black fallback", last)
	}
}

func TestSession_RejectsIllegalClick(t *testing.T) {
	synth := &recordingSynth{}
	opts := testOptions("5+0", nil)
	opts.Synthesizer = synth
	s := startSession(t, opts)

	if _, err := s.Move(context.Background(), "e2", "e5", chessrules.NoPiece); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("error = %v, want ErrIllegalMove", err)
	}
	if n := len(s.Snapshot().Moves); n != 0 {
		t.Errorf("Moves = %d, want 0", n)
	}
	eventually(t, "illegal move phrase", func() bool { return synth.said(announce.IllegalMove) })
}

func TestSession_VoiceCommands(t *testing.T) {
	s := startSession(t, testOptions("5+0", scripted("e7", "e5")))

	submit := func(text string, final bool) {
		t.Helper()
		if err := s.SubmitTranscript(speech.NewTranscript(text, final)); err != nil {
			t.Fatalf("SubmitTranscript(%q): %v", text, err)
		}
	}

	submit("e4", false)
	submit("knight to f3", true)
	eventually(t, "voice move and reply", func() bool { return len(s.Snapshot().Moves) == 2 })
	if got := s.Snapshot().Moves[0]; got != "Nf3" {
		t.Errorf("first move = %q, want Nf3", got)
	}

	submit("xyz", true)
	submit("flip board", true)
	eventually(t, "board flip", func() bool { return s.Snapshot().Orientation == chessrules.Black })

	history := s.VoiceHistory()
	want := []struct {
		text   string
		status entity.VoiceStatus
		intent string
	}{
		{"knight to f3", entity.VoiceStatusExecuted, nlp.IntentNone.String()},
		{"xyz", entity.VoiceStatusFailed, nlp.IntentNone.String()},
		{"flip board", entity.VoiceStatusExecuted, nlp.FlipBoard.String()},
	}
	if len(history) != len(want) {
		t.Fatalf("history has %d entries, want %d: %+v", len(history), len(want), history)
	}
	for i, w := range want {
		got := history[i]
		if got.Text != w.text || got.Status != w.status || got.Intent != w.intent {
			t.Errorf("history[%d] = {%q %s %q}, want {%q %s %q}",
				i, got.Text, got.Status, got.Intent, w.text, w.status, w.intent)
		}
	}
}

func TestSession_Undo(t *testing.T) {
	s := startSession(t, testOptions("5+0", scripted("e7", "e5")))
	ctx := context.Background()

	if _, err := s.Undo(ctx); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("undo at start error = %v, want ErrNothingToUndo", err)
	}

	if _, err := s.Move(ctx, "e2", "e4", chessrules.NoPiece); err != nil {
		t.Fatalf("Move: %v", err)
	}
	eventually(t, "opponent reply", func() bool { return len(s.Snapshot().Moves) == 2 })

	n, err := s.Undo(ctx)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if n != 2 {
		t.Errorf("Undo removed %d plies, want 2", n)
	}
	snap := s.Snapshot()
	if len(snap.Moves) != 0 || snap.Turn != chessrules.White || snap.AwaitingOpponent {
		t.Errorf("after undo = %+v", snap.Snapshot)
	}
}

func TestSession_ManualClockTimeout(t *testing.T) {
	s := startSession(t, testOptions("0.05+0", nil))

	for i := 0; i < 3; i++ {
		if err := s.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	eventually(t, "timeout", func() bool { return s.Snapshot().Status == StatusTimeout })

	snap := s.Snapshot()
	if snap.Winner != chessrules.Black || snap.Clocks.White != 0 {
		t.Errorf("after timeout = %+v", snap.Snapshot)
	}
	if _, err := s.Move(context.Background(), "e2", "e4", chessrules.NoPiece); !errors.Is(err, ErrGameOver) {
		t.Errorf("move after timeout error = %v, want ErrGameOver", err)
	}
}

func TestSession_GoBackEndsRun(t *testing.T) {
	synth := &recordingSynth{}
	opts := testOptions("5+0", nil)
	opts.Synthesizer = synth
	s, err := NewSession(opts, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- s.Run(context.Background()) }()

	if err := s.SubmitTranscript(speech.NewTranscript("go back", true)); err != nil {
		t.Fatalf("SubmitTranscript: %v", err)
	}

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after go back")
	}
	if !synth.said(announce.LeavingGame) {
		t.Error("leaving phrase was not spoken")
	}
	if synth.stoppedAfter(announce.LeavingGame) {
		t.Error("leaving phrase was cancelled on teardown")
	}
	if !s.Snapshot().Ended {
		t.Error("snapshot not marked ended")
	}
}

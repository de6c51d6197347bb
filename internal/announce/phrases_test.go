package announce

import (
	"context"
	"sync"
	"testing"
	"time"

	"voicechess/pkg/chessrules"
	"voicechess/pkg/speech"
)

func TestNaturalize(t *testing.T) {
	tests := []struct {
		san  string
		want string
	}{
		{"Nf3", "Knight to f3"},
		{"e4", "e4"},
		{"exd5", "e takes d5"},
		{"Bxe5+", "Bishop takes e5"},
		{"e8=Q", "e8 promotes to Queen"},
		{"exd8=N+", "e takes d8 promotes to Knight"},
		{"O-O", "castle kingside"},
		{"O-O-O#", "castle queenside"},
		{"Nbd7", "Knight to d7"},
		{"R1a3", "Rook to a3"},
		{"Qh4#", "Queen to h4"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Naturalize(tt.san); got != tt.want {
			t.Errorf("Naturalize(%q) = %q, want %q", tt.san, got, tt.want)
		}
	}
}

func TestOutcomePhrase(t *testing.T) {
	tests := []struct {
		outcome Outcome
		winner  chessrules.Side
		want    string
	}{
		{OutcomeNone, "", ""},
		{OutcomeCheck, "", "Check."},
		{OutcomeCheckmate, chessrules.Black, "Checkmate, black wins by checkmate."},
		{OutcomeTimeout, chessrules.White, "Time is up. White wins by timeout."},
		{OutcomeStalemate, "", "The game is a stalemate."},
	}

	for _, tt := range tests {
		if got := OutcomePhrase(tt.outcome, tt.winner); got != tt.want {
			t.Errorf("OutcomePhrase(%q) = %q, want %q", tt.outcome, got, tt.want)
		}
	}
}

func TestPhrases(t *testing.T) {
	if got, want := GameStart("3+2", chessrules.White), "Game started, 3 plus 2. You play white. Say your move when ready."; got != want {
		t.Errorf("GameStart = %q, want %q", got, want)
	}
	if got := Undone(1); got != "Took back one move." {
		t.Errorf("Undone(1) = %q", got)
	}
	if got := Undone(2); got != "Took back 2 moves." {
		t.Errorf("Undone(2) = %q", got)
	}
	if got := MovePhrase(false, "Nf6"); got != "Opponent played Knight to f6" {
		t.Errorf("MovePhrase = %q", got)
	}
}

// blockingSynth speaks until cancelled and records what it was asked to say.
type blockingSynth struct {
	mu        sync.Mutex
	started   []string
	cancelled []string
}

func (b *blockingSynth) Speak(ctx context.Context, text string, _ speech.Options) error {
	b.mu.Lock()
	b.started = append(b.started, text)
	b.mu.Unlock()

	<-ctx.Done()

	b.mu.Lock()
	b.cancelled = append(b.cancelled, text)
	b.mu.Unlock()
	return ctx.Err()
}

func (b *blockingSynth) Stop() {}

func (b *blockingSynth) counts() (started, cancelled int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.started), len(b.cancelled)
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCoordinator_NewPhraseInterrupts(t *testing.T) {
	synth := &blockingSynth{}
	c := NewCoordinator(synth, speech.Options{}, nil)

	c.Say("first")
	waitUntil(t, func() bool { s, _ := synth.counts(); return s == 1 })
	c.Say("second")
	waitUntil(t, func() bool { s, cl := synth.counts(); return s == 2 && cl == 1 })

	c.Close()
	if s, cl := synth.counts(); s != 2 || cl != 2 {
		t.Errorf("started %d, cancelled %d; want 2, 2", s, cl)
	}
}

func TestCoordinator_SoundOff(t *testing.T) {
	synth := &blockingSynth{}
	c := NewCoordinator(synth, speech.Options{}, nil)
	defer c.Close()

	if c.ToggleSound() {
		t.Fatal("ToggleSound should turn sound off first")
	}
	c.Say("ignored")
	c.Move(true, "e4", OutcomeNone, "")

	if s, _ := synth.counts(); s != 0 {
		t.Errorf("spoke %d phrases with sound off", s)
	}
	if c.SoundOn() {
		t.Error("SoundOn = true")
	}
}

// timedSynth finishes each phrase after delay unless cancelled, and counts
// Stop calls.
type timedSynth struct {
	delay time.Duration

	mu       sync.Mutex
	finished []string
	stops    int
}

func (s *timedSynth) Speak(ctx context.Context, text string, _ speech.Options) error {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	s.finished = append(s.finished, text)
	s.mu.Unlock()
	return nil
}

func (s *timedSynth) Stop() {
	s.mu.Lock()
	s.stops++
	s.mu.Unlock()
}

func (s *timedSynth) state() (finished []string, stops int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.finished...), s.stops
}

func TestCoordinator_DrainLetsLastPhraseFinish(t *testing.T) {
	synth := &timedSynth{delay: 30 * time.Millisecond}
	c := NewCoordinator(synth, speech.Options{}, nil)

	c.Say(LeavingGame)
	_, stopsBefore := synth.state()
	c.Drain()

	finished, stops := synth.state()
	if len(finished) != 1 || finished[0] != LeavingGame {
		t.Errorf("finished = %q, want [%q]", finished, LeavingGame)
	}
	if stops != stopsBefore {
		t.Errorf("Drain called Stop %d times, want 0", stops-stopsBefore)
	}

	c.Say("after drain")
	time.Sleep(50 * time.Millisecond)
	if finished, _ := synth.state(); len(finished) != 1 {
		t.Errorf("spoke after Drain: %q", finished)
	}
}

func TestCoordinator_CloseCancels(t *testing.T) {
	synth := &timedSynth{delay: time.Minute}
	c := NewCoordinator(synth, speech.Options{}, nil)

	c.Say("long phrase")
	_, stopsBefore := synth.state()
	c.Close()

	finished, stops := synth.state()
	if len(finished) != 0 {
		t.Errorf("finished = %q after Close, want none", finished)
	}
	if stops != stopsBefore+1 {
		t.Errorf("Close called Stop %d times, want 1", stops-stopsBefore)
	}
}

package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// endingRecognizer stops on its own right after each start.
type endingRecognizer struct {
	calls atomic.Int32
}

func (e *endingRecognizer) Listen(context.Context) (<-chan Transcript, error) {
	e.calls.Add(1)
	ch := make(chan Transcript)
	close(ch)
	return ch, nil
}

// heldRecognizer listens until its context ends.
type heldRecognizer struct{}

func (heldRecognizer) Listen(ctx context.Context) (<-chan Transcript, error) {
	ch := make(chan Transcript)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

type stateLog struct {
	mu     sync.Mutex
	states []State
}

func (l *stateLog) add(s State) {
	l.mu.Lock()
	l.states = append(l.states, s)
	l.mu.Unlock()
}

func (l *stateLog) has(s State) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, got := range l.states {
		if got == s {
			return true
		}
	}
	return false
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestSupervisor_NoRecognizer(t *testing.T) {
	s := NewSupervisor(nil, SupervisorConfig{}, nil)
	if s.Available() {
		t.Error("Available = true without a recognizer")
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrRecognitionUnavailable) {
		t.Errorf("Start error = %v, want ErrRecognitionUnavailable", err)
	}
}

func TestSupervisor_GivesUpAfterMaxRestarts(t *testing.T) {
	rec := &endingRecognizer{}
	states := &stateLog{}
	s := NewSupervisor(rec, SupervisorConfig{
		MaxRestarts:  2,
		RestartDelay: time.Millisecond,
		OnState:      states.add,
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "unavailable state", func() bool { return s.State() == StateUnavailable })

	if got := rec.calls.Load(); got != 3 {
		t.Errorf("Listen called %d times, want 3", got)
	}
	if !states.has(StateRestarting) || !states.has(StateUnavailable) {
		t.Errorf("states = %v", states.states)
	}
}

func TestSupervisor_DeliversTranscripts(t *testing.T) {
	rec := NewLineRecognizer(strings.NewReader("e4\n\n  Knight to F3 \n"))

	var mu sync.Mutex
	var got []string
	s := NewSupervisor(rec, SupervisorConfig{
		MaxRestarts:  1,
		RestartDelay: time.Millisecond,
		OnTranscript: func(t Transcript) {
			mu.Lock()
			got = append(got, t.Text)
			mu.Unlock()
		},
	}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, "end of input", func() bool { return s.State() == StateUnavailable })

	mu.Lock()
	defer mu.Unlock()
	want := []string{"e4", "knight to f3"}
	if len(got) != len(want) {
		t.Fatalf("transcripts = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transcript %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSupervisor_StopDoesNotRestart(t *testing.T) {
	s := NewSupervisor(heldRecognizer{}, SupervisorConfig{RestartDelay: time.Millisecond}, nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State() != StateListening {
		t.Fatalf("State = %s, want listening", s.State())
	}

	s.Stop()
	time.Sleep(20 * time.Millisecond)
	if s.State() != StateStopped {
		t.Errorf("State = %s, want stopped", s.State())
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if s.State() != StateListening {
		t.Errorf("State after restart = %s, want listening", s.State())
	}
	s.Stop()
}

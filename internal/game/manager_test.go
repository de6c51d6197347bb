package game

import (
	"errors"
	"testing"
	"time"

	"voicechess/pkg/log"
)

func TestManager_StartEndForget(t *testing.T) {
	m := NewManager(log.Discard())

	s, err := NewSession(testOptions("5+0", scripted("e7", "e5")), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	m.Start(s)

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get = (%v, %v), want the started session", got, err)
	}

	if err := m.End(s.ID(), time.Second); err != nil {
		t.Fatalf("End: %v", err)
	}
	eventually(t, "session forgotten", func() bool { return m.Len() == 0 })

	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get after end = %v, want ErrSessionNotFound", err)
	}
	if err := m.End(s.ID(), time.Second); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("End twice = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_CloseAll(t *testing.T) {
	m := NewManager(log.Discard())
	for i := 0; i < 3; i++ {
		s, err := NewSession(testOptions("5+0", nil), nil)
		if err != nil {
			t.Fatalf("NewSession: %v", err)
		}
		m.Start(s)
	}

	done := make(chan struct{})
	go func() {
		m.CloseAll()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("CloseAll did not return")
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after CloseAll", m.Len())
	}
}

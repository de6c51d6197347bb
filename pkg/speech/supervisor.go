package speech

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type State string

const (
	StateIdle        State = "idle"
	StateListening   State = "listening"
	StateRestarting  State = "restarting"
	StateStopped     State = "stopped"
	StateUnavailable State = "unavailable"
)

const (
	DefaultMaxRestarts  = 5
	DefaultRestartDelay = 100 * time.Millisecond
)

type SupervisorConfig struct {
	MaxRestarts  int
	RestartDelay time.Duration
	OnTranscript func(Transcript)
	OnState      func(State)
}

// Supervisor keeps a Recognizer listening. When recognition ends by itself it
// is restarted, at most MaxRestarts times in a row; a final transcript resets
// the count. Past the limit the supervisor gives up and reports
// StateUnavailable.
type Supervisor struct {
	rec Recognizer
	cfg SupervisorConfig
	log *logrus.Logger

	mu       sync.Mutex
	state    State
	gen      int
	cancel   context.CancelFunc
	restarts int
}

func NewSupervisor(rec Recognizer, cfg SupervisorConfig, logger *logrus.Logger) *Supervisor {
	if cfg.MaxRestarts <= 0 {
		cfg.MaxRestarts = DefaultMaxRestarts
	}
	if cfg.RestartDelay <= 0 {
		cfg.RestartDelay = DefaultRestartDelay
	}
	state := StateIdle
	if rec == nil {
		state = StateUnavailable
	}
	return &Supervisor{rec: rec, cfg: cfg, log: logger, state: state}
}

func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Available is false when there is no recognizer or it could not be kept
// running.
func (s *Supervisor) Available() bool {
	return s.State() != StateUnavailable
}

// Start begins listening. Calling it while already listening does nothing.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.rec == nil {
		s.mu.Unlock()
		return ErrRecognitionUnavailable
	}
	if s.state == StateListening || s.state == StateRestarting {
		s.mu.Unlock()
		return nil
	}

	s.gen++
	gen := s.gen
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.restarts = 0
	s.state = StateListening
	s.mu.Unlock()

	s.notify(StateListening)
	go s.run(runCtx, gen)
	return nil
}

// Stop ends listening without triggering a restart. It does not wait for the
// recognizer goroutine.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.cancel = nil
	s.gen++
	if s.state != StateUnavailable {
		s.state = StateStopped
	}
	state := s.state
	s.mu.Unlock()

	s.notify(state)
}

func (s *Supervisor) run(ctx context.Context, gen int) {
	for {
		ch, err := s.rec.Listen(ctx)
		if err != nil {
			if s.log != nil {
				s.log.WithFields(logrus.Fields{
					"error": err.Error(),
				}).Warn("Speech recognition failed to start")
			}
		} else {
			s.setState(gen, StateListening)
			s.drain(ctx, gen, ch)
		}

		if ctx.Err() != nil {
			return
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.restarts++
		attempt := s.restarts
		s.mu.Unlock()

		if attempt > s.cfg.MaxRestarts {
			if s.log != nil {
				s.log.WithFields(logrus.Fields{
					"restarts": attempt - 1,
				}).Warn("Speech recognition keeps stopping, giving up")
			}
			s.setState(gen, StateUnavailable)
			return
		}

		if s.log != nil {
			s.log.WithFields(logrus.Fields{
				"attempt": attempt,
			}).Debug("Restarting speech recognition")
		}
		s.setState(gen, StateRestarting)

		timer := time.NewTimer(s.cfg.RestartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (s *Supervisor) drain(ctx context.Context, gen int, ch <-chan Transcript) {
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			if t.Final {
				s.mu.Lock()
				if s.gen == gen {
					s.restarts = 0
				}
				s.mu.Unlock()
			}
			if s.cfg.OnTranscript != nil {
				s.cfg.OnTranscript(t)
			}
		}
	}
}

func (s *Supervisor) setState(gen int, state State) {
	s.mu.Lock()
	if s.gen != gen || s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	if state == StateUnavailable && s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.notify(state)
}

func (s *Supervisor) notify(state State) {
	if s.cfg.OnState != nil {
		s.cfg.OnState(state)
	}
}

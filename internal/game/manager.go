package game

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager keeps the running sessions of the HTTP service.
type Manager struct {
	log *logrus.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{log: logger, sessions: make(map[string]*Session)}
}

// Start runs s until it ends, then forgets it.
func (m *Manager) Start(s *Session) {
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := s.Run(context.Background()); err != nil {
			m.log.WithFields(logrus.Fields{
				"session_id": s.ID(),
				"error":      err.Error(),
			}).Warn("Game session stopped with error")
		}

		m.mu.Lock()
		if m.sessions[s.ID()] == s {
			delete(m.sessions, s.ID())
		}
		m.mu.Unlock()
	}()
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// End stops a session and waits up to timeout for it to finish.
func (m *Manager) End(id string, timeout time.Duration) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Stop()

	select {
	case <-s.Done():
	case <-time.After(timeout):
	}
	return nil
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll stops every session and waits for them to finish.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	for _, s := range m.sessions {
		s.Stop()
	}
	m.mu.RUnlock()

	m.wg.Wait()
}

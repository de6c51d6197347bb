package lobby

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"voicechess/internal/entity"
	"voicechess/pkg/redis"
	"voicechess/pkg/utils"
)

// Registry keeps the lobbies opened by browsers in this process.
type Registry struct {
	store ConfigStore
	ids   utils.IUtils
	log   *logrus.Logger

	mu      sync.RWMutex
	wizards map[string]*Wizard
}

func NewRegistry(store ConfigStore, ids utils.IUtils, logger *logrus.Logger) *Registry {
	return &Registry{
		store:   store,
		ids:     ids,
		log:     logger,
		wizards: make(map[string]*Wizard),
	}
}

func (r *Registry) Create() *Wizard {
	w := NewWizard(r.ids.NewID(), r.store, r.log)
	r.mu.Lock()
	r.wizards[w.ID()] = w
	r.mu.Unlock()
	return w
}

func (r *Registry) Get(id string) (*Wizard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wizards[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return w, nil
}

// Config returns the finished setup of a lobby. It reads the store directly
// so a lobby created by another instance still resolves.
func (r *Registry) Config(ctx context.Context, id string) (entity.SessionConfig, error) {
	if w, err := r.Get(id); err == nil {
		cfg, err := w.Saved(ctx)
		if errors.Is(err, redis.ErrNotFound) {
			return entity.SessionConfig{}, ErrConfigNotFound
		}
		return cfg, err
	}
	if r.store == nil {
		return entity.SessionConfig{}, ErrLobbyNotFound
	}

	var cfg entity.SessionConfig
	if err := r.store.LoadSessionConfig(ctx, id, &cfg); err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return entity.SessionConfig{}, ErrConfigNotFound
		}
		return entity.SessionConfig{}, err
	}
	return cfg, nil
}

// Remove forgets a lobby once its game has ended, including the stored
// setup.
func (r *Registry) Remove(ctx context.Context, id string) {
	r.mu.Lock()
	delete(r.wizards, id)
	r.mu.Unlock()

	if r.store == nil {
		return
	}
	if err := r.store.DeleteSessionConfig(ctx, id); err != nil {
		r.log.WithFields(logrus.Fields{
			"lobby_id": id,
			"error":    err.Error(),
		}).Warn("Failed to delete session config")
	}
}

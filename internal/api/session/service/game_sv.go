package sessionService

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"voicechess/internal/api/session"
	"voicechess/internal/entity"
	"voicechess/internal/game"
	"voicechess/pkg/chessrules"
)

const endTimeout = 5 * time.Second

func (s *sessionService) StartGame(ctx context.Context, req session.StartGameRequest) (*session.GameResponse, error) {
	cfg, err := s.resolveConfig(ctx, req)
	if err != nil {
		return nil, err
	}
	if cfg.Opponent == entity.OpponentFriends {
		return nil, game.ErrFriendsUnsupported
	}

	tc, err := game.ParseTimeControl(cfg.TimeControl)
	if err != nil {
		return nil, err
	}

	side := s.defaults.PlayerSide
	if req.PlayerSide != "" {
		parsed, ok := chessrules.ParseSide(req.PlayerSide)
		if !ok {
			return nil, fmt.Errorf("%w: %q", game.ErrInvalidSide, req.PlayerSide)
		}
		side = parsed
	}

	bridge := session.NewBridge(s.log)

	opts := s.template
	opts.ID = s.utils.NewID()
	opts.IDs = s.utils
	opts.Game = game.Config{TimeControl: tc, PlayerSide: side}
	opts.Synthesizer = bridge
	opts.Observer = bridge.Observe
	opts.Recognizer = nil
	if cfg.Mode == entity.GameModeVoice {
		opts.Recognizer = bridge
	}

	sess, err := game.NewSession(opts, s.log)
	if err != nil {
		return nil, err
	}

	entry := &gameEntry{bridge: bridge, mode: cfg.Mode, versus: cfg.Opponent, lobbyID: req.LobbyID}
	s.mu.Lock()
	s.entries[sess.ID()] = entry
	s.mu.Unlock()

	s.games.Start(sess)
	go s.forget(sess)

	s.log.WithFields(logrus.Fields{
		"game_id":      sess.ID(),
		"lobby_id":     req.LobbyID,
		"mode":         cfg.Mode,
		"time_control": tc.Label,
		"player_side":  side,
	}).Info("Game started")

	return s.response(sess, entry), nil
}

// resolveConfig takes the lobby's saved setup when a lobby is named and the
// request fields otherwise.
func (s *sessionService) resolveConfig(ctx context.Context, req session.StartGameRequest) (entity.SessionConfig, error) {
	if req.LobbyID != "" {
		return s.lobbies.Config(ctx, req.LobbyID)
	}

	cfg := entity.SessionConfig{
		Mode:        entity.GameMode(req.Mode),
		TimeControl: req.TimeControl,
		Opponent:    entity.Opponent(req.Opponent),
	}
	if cfg.Mode == "" {
		cfg.Mode = entity.GameModeVoice
	}
	if cfg.TimeControl == "" {
		cfg.TimeControl = s.defaults.TimeControl
	}
	if cfg.Opponent == "" {
		cfg.Opponent = entity.OpponentRandom
	}
	return cfg, nil
}

func (s *sessionService) forget(sess *game.Session) {
	<-sess.Done()

	s.mu.Lock()
	entry := s.entries[sess.ID()]
	delete(s.entries, sess.ID())
	s.mu.Unlock()

	if entry != nil && entry.lobbyID != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		s.lobbies.Remove(ctx, entry.lobbyID)
		cancel()
	}
}

func (s *sessionService) lookup(gameID string) (*game.Session, *gameEntry, error) {
	sess, err := s.games.Get(gameID)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	entry, ok := s.entries[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, session.ErrBridgeNotFound
	}
	return sess, entry, nil
}

func (s *sessionService) response(sess *game.Session, entry *gameEntry) *session.GameResponse {
	return &session.GameResponse{
		Mode:     entry.mode,
		Opponent: entry.versus,
		LobbyID:  entry.lobbyID,
		State:    sess.Snapshot(),
	}
}

func (s *sessionService) GetGame(ctx context.Context, gameID string) (*session.GameResponse, error) {
	sess, entry, err := s.lookup(gameID)
	if err != nil {
		return nil, err
	}
	return s.response(sess, entry), nil
}

func (s *sessionService) EndGame(ctx context.Context, gameID string) error {
	if err := s.games.End(gameID, endTimeout); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"game_id": gameID,
	}).Info("Game ended by client")
	return nil
}

func (s *sessionService) Connect(gameID string) (*game.Session, *session.Bridge, error) {
	sess, entry, err := s.lookup(gameID)
	if err != nil {
		return nil, nil, err
	}
	return sess, entry.bridge, nil
}

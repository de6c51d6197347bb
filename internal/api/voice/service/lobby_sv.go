package voiceService

import (
	"context"

	"github.com/sirupsen/logrus"

	"voicechess/internal/api/voice"
)

func (s *voiceService) CreateLobby(ctx context.Context) (*voice.LobbyResponse, error) {
	w := s.lobbies.Create()

	s.log.WithFields(logrus.Fields{
		"lobby_id": w.ID(),
	}).Info("Lobby created")

	return &voice.LobbyResponse{Lobby: w.State()}, nil
}

func (s *voiceService) GetLobby(ctx context.Context, lobbyID string) (*voice.LobbyResponse, error) {
	w, err := s.lobbies.Get(lobbyID)
	if err != nil {
		return nil, err
	}
	return &voice.LobbyResponse{Lobby: w.State()}, nil
}

func (s *voiceService) HandleLobbyCommand(ctx context.Context, lobbyID string, req voice.CommandRequest) (*voice.LobbyResponse, error) {
	w, err := s.lobbies.Get(lobbyID)
	if err != nil {
		return nil, err
	}

	reply, err := w.Handle(ctx, req.Text)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"lobby_id":   lobbyID,
		"text":       req.Text,
		"intent":     reply.Intent,
		"confidence": reply.Confidence,
		"action":     reply.Action,
	}).Debug("Lobby command handled")

	return &voice.LobbyResponse{Lobby: w.State(), Reply: &reply}, nil
}

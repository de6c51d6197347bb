package voiceService

import (
	"context"

	"github.com/sirupsen/logrus"

	"voicechess/internal/api/voice"
	"voicechess/internal/lobby"
	"voicechess/pkg/chessrules"
)

type IVoiceService interface {
	CreateLobby(ctx context.Context) (*voice.LobbyResponse, error)
	GetLobby(ctx context.Context, lobbyID string) (*voice.LobbyResponse, error)
	HandleLobbyCommand(ctx context.Context, lobbyID string, req voice.CommandRequest) (*voice.LobbyResponse, error)

	Classify(ctx context.Context, req voice.ClassifyRequest) (*voice.ClassifyResponse, error)
	Commands(ctx context.Context, catalog string) (*voice.CommandsResponse, error)
	ResolveMove(ctx context.Context, req voice.ResolveRequest) (*voice.ResolveResponse, error)
}

type voiceService struct {
	log     *logrus.Logger
	lobbies *lobby.Registry
	oracle  chessrules.Oracle
}

func NewVoiceService(log *logrus.Logger, lobbies *lobby.Registry) IVoiceService {
	return &voiceService{
		log:     log,
		lobbies: lobbies,
		oracle:  chessrules.NewStandard(),
	}
}

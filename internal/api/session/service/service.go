package sessionService

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"voicechess/internal/api/session"
	"voicechess/internal/entity"
	"voicechess/internal/game"
	"voicechess/internal/lobby"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/utils"
)

type ISessionService interface {
	StartGame(ctx context.Context, req session.StartGameRequest) (*session.GameResponse, error)
	GetGame(ctx context.Context, gameID string) (*session.GameResponse, error)
	EndGame(ctx context.Context, gameID string) error

	SubmitTranscript(ctx context.Context, gameID string, req session.TranscriptRequest) error
	Move(ctx context.Context, gameID string, req session.MoveRequest) (*session.MoveResponse, error)
	Undo(ctx context.Context, gameID string) (*session.UndoResponse, error)
	History(ctx context.Context, gameID string) (*session.HistoryResponse, error)

	// Connect returns the running session and its speech bridge.
	Connect(gameID string) (*game.Session, *session.Bridge, error)
}

// Defaults fill in what neither the lobby nor the request chose.
type Defaults struct {
	TimeControl string
	PlayerSide  chessrules.Side
}

type sessionService struct {
	log      *logrus.Logger
	games    *game.Manager
	lobbies  *lobby.Registry
	utils    utils.IUtils
	template game.Options
	defaults Defaults

	mu      sync.RWMutex
	entries map[string]*gameEntry
}

type gameEntry struct {
	bridge  *session.Bridge
	mode    entity.GameMode
	versus  entity.Opponent
	lobbyID string
}

func NewSessionService(
	log *logrus.Logger,
	games *game.Manager,
	lobbies *lobby.Registry,
	utils utils.IUtils,
	template game.Options,
	defaults Defaults,
) ISessionService {
	if defaults.TimeControl == "" {
		defaults.TimeControl = game.DefaultTimeControl
	}
	if defaults.PlayerSide == "" {
		defaults.PlayerSide = chessrules.White
	}
	return &sessionService{
		log:      log,
		games:    games,
		lobbies:  lobbies,
		utils:    utils,
		template: template,
		defaults: defaults,
		entries:  make(map[string]*gameEntry),
	}
}

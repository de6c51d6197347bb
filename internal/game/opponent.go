package game

import (
	"context"
	"time"

	"voicechess/pkg/chessrules"
	"voicechess/pkg/stockfish"
	websocketPkg "voicechess/pkg/websocket"
)

const (
	DefaultSearchDepth     = 8
	DefaultOpponentTimeout = 5 * time.Second
	DefaultThinkDelay      = 600 * time.Millisecond
)

// SearchBudget bounds one engine search. Depth wins when both are set.
type SearchBudget struct {
	Depth    int           `json:"depth"`
	MoveTime time.Duration `json:"move_time"`
}

type OpponentMove struct {
	From      string
	To        string
	Promotion chessrules.PieceType
}

// MoveSource proposes the opponent's move. It may be slow or fail; the
// session bounds the wait and falls back to a random legal move.
type MoveSource interface {
	BestMove(ctx context.Context, fen string, budget SearchBudget) (*OpponentMove, error)
}

type MoveSourceFunc func(ctx context.Context, fen string, budget SearchBudget) (*OpponentMove, error)

func (f MoveSourceFunc) BestMove(ctx context.Context, fen string, budget SearchBudget) (*OpponentMove, error) {
	return f(ctx, fen, budget)
}

// EngineSource searches with a local UCI engine process.
func EngineSource(engine *stockfish.Engine) MoveSource {
	return MoveSourceFunc(func(ctx context.Context, fen string, budget SearchBudget) (*OpponentMove, error) {
		res, err := engine.BestMove(ctx, fen, budget.Depth, budget.MoveTime)
		if err != nil {
			return nil, err
		}
		return &OpponentMove{From: res.From, To: res.To, Promotion: chessrules.PromotionFromLetter(res.Promotion)}, nil
	})
}

// RemoteSource asks an engine service over WebSocket.
func RemoteSource(client websocketPkg.IEngineClient) MoveSource {
	return MoveSourceFunc(func(ctx context.Context, fen string, budget SearchBudget) (*OpponentMove, error) {
		res, err := client.BestMove(ctx, fen, budget.Depth, budget.MoveTime)
		if err != nil {
			return nil, err
		}
		return &OpponentMove{From: res.From, To: res.To, Promotion: chessrules.PromotionFromLetter(res.Promotion)}, nil
	})
}

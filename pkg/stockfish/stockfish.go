// Package stockfish drives a UCI chess engine process.
package stockfish

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/notnil/chess"
	"github.com/notnil/chess/uci"
	"github.com/sirupsen/logrus"
)

var ErrNoBestMove = errors.New("engine returned no move")

// Result is the engine's choice in coordinate form.
type Result struct {
	From      string
	To        string
	Promotion string
}

type Config struct {
	Path       string
	SkillLevel int
	Threads    int
}

// Engine serialises searches: UCI engines handle one "go" at a time.
type Engine struct {
	eng  *uci.Engine
	log  *logrus.Logger
	slot chan struct{}
}

func New(cfg Config, logger *logrus.Logger) (*Engine, error) {
	if cfg.Path == "" {
		cfg.Path = "stockfish"
	}

	eng, err := uci.New(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("start engine %q: %w", cfg.Path, err)
	}

	cmds := []uci.Cmd{uci.CmdUCI, uci.CmdIsReady}
	if cfg.SkillLevel > 0 {
		cmds = append(cmds, uci.CmdSetOption{Name: "Skill Level", Value: strconv.Itoa(cfg.SkillLevel)})
	}
	if cfg.Threads > 0 {
		cmds = append(cmds, uci.CmdSetOption{Name: "Threads", Value: strconv.Itoa(cfg.Threads)})
	}
	cmds = append(cmds, uci.CmdUCINewGame)

	if err := eng.Run(cmds...); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("engine handshake: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"path": cfg.Path,
	}).Info("UCI engine ready")

	return &Engine{eng: eng, log: logger, slot: make(chan struct{}, 1)}, nil
}

// BestMove searches fen to depth, or for moveTime when depth is zero. If ctx
// ends first the search keeps running in the background and its result is
// dropped.
func (e *Engine) BestMove(ctx context.Context, fen string, depth int, moveTime time.Duration) (*Result, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid position: %w", err)
	}
	pos := chess.NewGame(opt).Position()

	select {
	case e.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() { <-e.slot }()

		search := uci.CmdGo{Depth: depth}
		if depth <= 0 {
			search = uci.CmdGo{MoveTime: moveTime}
		}
		if err := e.eng.Run(uci.CmdPosition{Position: pos}, search); err != nil {
			done <- outcome{err: fmt.Errorf("engine search: %w", err)}
			return
		}

		best := e.eng.SearchResults().BestMove
		if best == nil {
			done <- outcome{err: ErrNoBestMove}
			return
		}

		res := &Result{From: best.S1().String(), To: best.S2().String()}
		if best.Promo() != chess.NoPieceType {
			res.Promotion = promotionLetter(best.Promo())
		}
		done <- outcome{res: res}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		e.log.WithFields(logrus.Fields{
			"fen": fen,
		}).Warn("Engine search abandoned")
		return nil, ctx.Err()
	}
}

func (e *Engine) Close() error {
	return e.eng.Close()
}

func promotionLetter(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	}
	return ""
}

package config

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"voicechess/internal/game"
	"voicechess/pkg/stockfish"
	websocketPkg "voicechess/pkg/websocket"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewMoveSource builds the opponent engine named by cfg.Kind. "none" returns
// a nil source, so every opponent move is the random fallback.
func NewMoveSource(cfg EngineConfig, logger *logrus.Logger) (game.MoveSource, io.Closer, error) {
	switch cfg.Kind {
	case "", "none":
		logger.Info("No opponent engine configured, opponent plays random legal moves")
		return nil, nil, nil
	case "uci":
		engine, err := stockfish.New(stockfish.Config{
			Path:       cfg.Path,
			SkillLevel: cfg.SkillLevel,
			Threads:    cfg.Threads,
		}, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start UCI engine: %w", err)
		}
		return game.EngineSource(engine), engine, nil
	case "remote":
		client := websocketPkg.NewEngineClient(cfg.URL, logger)
		return game.RemoteSource(client), closerFunc(func() error {
			client.Close()
			return nil
		}), nil
	}
	return nil, nil, fmt.Errorf("unknown engine kind %q", cfg.Kind)
}

// SessionTemplate turns the game and speech settings into the options every
// new session starts from.
func SessionTemplate(cfg *Config, source game.MoveSource) game.Options {
	opts := game.DefaultOptions()
	opts.Source = source
	opts.Budget = game.SearchBudget{Depth: cfg.Engine.Depth, MoveTime: cfg.Engine.MoveTime}
	if cfg.Engine.Timeout > 0 {
		opts.OpponentTimeout = cfg.Engine.Timeout
	}
	opts.ThinkDelay = cfg.Game.ThinkDelay
	opts.TickInterval = cfg.Game.TickInterval
	opts.CommandCooldown = cfg.Game.CommandCooldown
	opts.MaxRestarts = cfg.Speech.MaxRestarts
	opts.RestartDelay = cfg.Speech.RestartDelay
	opts.SpeechOptions.Rate = cfg.Speech.Rate
	opts.SpeechOptions.Volume = cfg.Speech.Volume
	return opts
}

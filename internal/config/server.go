package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	sessionHandler "voicechess/internal/api/session/handler"
	sessionService "voicechess/internal/api/session/service"
	voiceHandler "voicechess/internal/api/voice/handler"
	voiceService "voicechess/internal/api/voice/service"
	"voicechess/internal/game"
	"voicechess/internal/lobby"
	"voicechess/internal/middleware"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/redis"
	"voicechess/pkg/utils"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	moveSource  game.MoveSource
	cfg         *Config
	games       *game.Manager
	closers     []io.Closer
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.cfg == nil {
		cfg := Default()
		server.cfg = &cfg
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log, middleware.Options{})
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithConfig(cfg *Config) ServerOption {
	return func(s *Server) error {
		s.cfg = cfg
		return nil
	}
}

// WithRedisServer keeps lobby setups in Redis. Without it they live in
// memory and a game can only start on the instance that ran the lobby.
func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		s.closers = append(s.closers, redisServer)
		return nil
	}
}

func WithMoveSource(source game.MoveSource, closer io.Closer) ServerOption {
	return func(s *Server) error {
		s.moveSource = source
		if closer != nil {
			s.closers = append(s.closers, closer)
		}
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		opts := middleware.Options{}
		if s.cfg != nil {
			opts.RequestsPerSecond = s.cfg.RateLimit.RequestsPerSecond
			opts.Burst = s.cfg.RateLimit.Burst
		}
		s.middleware = middleware.New(s.log, opts)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	var store lobby.ConfigStore
	if s.redisServer != nil {
		store = s.redisServer
	}
	lobbies := lobby.NewRegistry(store, s.utils, s.log)
	s.games = game.NewManager(s.log)

	// Voice lobby and NLP
	voiceServices := voiceService.NewVoiceService(s.log, lobbies)
	voiceHandlers := voiceHandler.New(s.log, s.validator, s.middleware, voiceServices)

	// Game sessions
	side, _ := chessrules.ParseSide(s.cfg.Game.PlayerSide)
	sessionServices := sessionService.NewSessionService(
		s.log,
		s.games,
		lobbies,
		s.utils,
		SessionTemplate(s.cfg, s.moveSource),
		sessionService.Defaults{TimeControl: s.cfg.Game.TimeControl, PlayerSide: side},
	)
	sessionHandlers := sessionHandler.New(s.log, s.validator, s.middleware, sessionServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, voiceHandlers, sessionHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := s.cfg.App.Port
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, ends every running game and releases
// the engine and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	var errs []error
	if err := s.engine.ShutdownWithTimeout(timeout); err != nil {
		errs = append(errs, fmt.Errorf("fiber shutdown: %w", err))
	}
	if s.games != nil {
		s.games.CloseAll()
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.log.Info("Server stopped")
	return errors.Join(errs...)
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		games := 0
		if s.games != nil {
			games = s.games.Len()
		}
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
			"games":   games,
		})
	})
}

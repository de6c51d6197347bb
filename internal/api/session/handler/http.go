package sessionHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"

	sessionService "voicechess/internal/api/session/service"
	"voicechess/internal/middleware"
)

type SessionHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	sessionService sessionService.ISessionService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ss sessionService.ISessionService,
) *SessionHandler {
	return &SessionHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		sessionService: ss,
	}
}

func (h *SessionHandler) Start(srv fiber.Router) {
	games := srv.Group("/games")

	games.Get("/:id/ws", h.middleware.NewUpgradeMiddleware, websocket.New(h.handleWebSocket))

	games.Use(h.middleware.NewRateLimiter)

	games.Post("", h.StartGame)
	games.Get("/:id", h.GetGame)
	games.Delete("/:id", h.EndGame)
	games.Post("/:id/transcript", h.SubmitTranscript)
	games.Post("/:id/move", h.Move)
	games.Post("/:id/undo", h.Undo)
	games.Get("/:id/history", h.History)
}

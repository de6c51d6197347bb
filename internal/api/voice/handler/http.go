package voiceHandler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	voiceService "voicechess/internal/api/voice/service"
	"voicechess/internal/middleware"
)

type VoiceHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	voiceService voiceService.IVoiceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	vs voiceService.IVoiceService,
) *VoiceHandler {
	return &VoiceHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		voiceService: vs,
	}
}

func (h *VoiceHandler) Start(srv fiber.Router) {
	lobby := srv.Group("/lobby")
	lobby.Use(h.middleware.NewRateLimiter)

	lobby.Post("", h.CreateLobby)
	lobby.Get("/:id", h.GetLobby)
	lobby.Post("/:id/command", h.HandleLobbyCommand)

	nlp := srv.Group("/nlp")
	nlp.Use(h.middleware.NewRateLimiter)

	nlp.Post("/classify", h.Classify)
	nlp.Get("/commands", h.Commands)
	nlp.Post("/resolve", h.ResolveMove)
}

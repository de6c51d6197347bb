package voiceHandler

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"

	"voicechess/internal/api/voice"
	contextPkg "voicechess/pkg/context"
	"voicechess/pkg/handlerUtil"
	"voicechess/pkg/log"
)

func (h *VoiceHandler) CreateLobby(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Creating lobby")

	res, err := h.voiceService.CreateLobby(c)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_lobby")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
	}
}

func (h *VoiceHandler) GetLobby(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	lobbyID := ctx.Params("id")

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"lobby_id":   lobbyID,
		"path":       ctx.Path(),
	}).Debug("Getting lobby")

	res, err := h.voiceService.GetLobby(c, lobbyID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_lobby")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

func (h *VoiceHandler) HandleLobbyCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	lobbyID := ctx.Params("id")

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"lobby_id":   lobbyID,
		"path":       ctx.Path(),
	}).Debug("Handling lobby command")

	var req voice.CommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	res, err := h.voiceService.HandleLobbyCommand(c, lobbyID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "handle_lobby_command")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
	}
}

package handlerUtil

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"voicechess/internal/game"
	"voicechess/internal/lobby"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/log"
	"voicechess/pkg/nlp"
	"voicechess/pkg/response"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

type mapping struct {
	err    error
	status int
	code   string
}

// Checked in order; the first match wins.
var mappings = []mapping{
	{game.ErrSessionNotFound, fiber.StatusNotFound, "SESSION_NOT_FOUND"},
	{game.ErrSessionClosed, fiber.StatusGone, "SESSION_CLOSED"},
	{game.ErrGameOver, fiber.StatusConflict, "GAME_OVER"},
	{game.ErrNotYourTurn, fiber.StatusConflict, "NOT_YOUR_TURN"},
	{game.ErrAwaitingOpponent, fiber.StatusConflict, "AWAITING_OPPONENT"},
	{game.ErrIllegalMove, fiber.StatusUnprocessableEntity, "ILLEGAL_MOVE"},
	{game.ErrNothingToUndo, fiber.StatusConflict, "NOTHING_TO_UNDO"},
	{game.ErrFriendsUnsupported, fiber.StatusBadRequest, "FRIENDS_UNSUPPORTED"},
	{game.ErrInvalidTimeControl, fiber.StatusBadRequest, "INVALID_TIME_CONTROL"},
	{game.ErrInvalidSide, fiber.StatusBadRequest, "INVALID_SIDE"},
	{lobby.ErrLobbyNotFound, fiber.StatusNotFound, "LOBBY_NOT_FOUND"},
	{lobby.ErrConfigNotFound, fiber.StatusNotFound, "CONFIG_NOT_FOUND"},
	{lobby.ErrConfigIncomplete, fiber.StatusConflict, "CONFIG_INCOMPLETE"},
	{lobby.ErrSaveConfig, fiber.StatusInternalServerError, "CONFIG_SAVE_FAILED"},
	{nlp.ErrNoMoveFound, fiber.StatusUnprocessableEntity, "NO_MOVE_FOUND"},
	{nlp.ErrAmbiguousMove, fiber.StatusUnprocessableEntity, "AMBIGUOUS_MOVE"},
	{chessrules.ErrInvalidFEN, fiber.StatusBadRequest, "INVALID_FEN"},
	{chessrules.ErrIllegalMove, fiber.StatusUnprocessableEntity, "ILLEGAL_MOVE"},
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	fields := log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}

	for _, m := range mappings {
		if errors.Is(err, m.err) {
			fields["code"] = m.code
			if m.status >= fiber.StatusInternalServerError {
				h.logger.WithFields(fields).Error("Operation failed")
			} else {
				h.logger.WithFields(fields).Warn("Operation rejected")
			}
			return c.Status(m.status).JSON(ErrorResponse{Error: err.Error(), Code: m.code})
		}
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		fields["code"] = respErr.Code
		h.logger.WithFields(fields).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(ErrorResponse{Error: err.Error()})
	}

	traceID := log.ErrorWithTraceID(fields, "Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error:   "An unexpected error occurred",
		Details: "trace id " + traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error: "Validation failed: " + err.Error(),
		Code:  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}

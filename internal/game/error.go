package game

import "voicechess/pkg/response"

var (
	ErrGameOver           = response.NewError(409, "game is over")
	ErrNotYourTurn        = response.NewError(409, "not your turn")
	ErrAwaitingOpponent   = response.NewError(409, "waiting for the opponent's move")
	ErrIllegalMove        = response.NewError(422, "illegal move")
	ErrNothingToUndo      = response.NewError(409, "no move to undo")
	ErrStaleResponse      = response.NewError(409, "opponent response is stale")
	ErrSessionNotFound    = response.NewError(404, "game session not found")
	ErrSessionClosed      = response.NewError(410, "game session has ended")
	ErrFriendsUnsupported = response.NewError(400, "playing with friends is not supported")
	ErrInvalidTimeControl = response.NewError(400, "invalid time control")
	ErrInvalidSide        = response.NewError(400, "invalid player side")
)

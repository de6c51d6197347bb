package session

import "voicechess/pkg/response"

var (
	ErrBridgeNotFound = response.NewError(404, "no speech bridge for this game")
	ErrUnknownMessage = response.NewError(400, "unknown message type")
)

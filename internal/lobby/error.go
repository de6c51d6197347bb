package lobby

import "voicechess/pkg/response"

var (
	ErrLobbyNotFound    = response.NewError(404, "lobby not found")
	ErrConfigIncomplete = response.NewError(409, "game setup is not complete")
	ErrConfigNotFound   = response.NewError(404, "no saved game setup for this lobby")
	ErrSaveConfig       = response.NewError(500, "failed to save game setup")
)

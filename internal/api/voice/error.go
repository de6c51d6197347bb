package voice

import "voicechess/pkg/response"

var (
	ErrUnknownCatalog = response.NewError(400, "unknown command catalog")
)

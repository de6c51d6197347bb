package voice

import (
	"voicechess/internal/entity"
	"voicechess/internal/lobby"
	"voicechess/pkg/nlp"
)

type CommandRequest struct {
	Text string `json:"text" validate:"required,max=500"`
}

type ClassifyRequest struct {
	Text    string `json:"text" validate:"required,max=500"`
	Catalog string `json:"catalog" validate:"omitempty,oneof=lobby game default"`
}

type ClassifyResponse struct {
	Recognized bool               `json:"recognized"`
	Match      *nlp.MatchedIntent `json:"match,omitempty"`
	Feedback   string             `json:"feedback,omitempty"`
	Normalized string             `json:"normalized"`
}

type ResolveRequest struct {
	Text string `json:"text" validate:"required,max=500"`
	FEN  string `json:"fen" validate:"omitempty,max=100"`
}

type ResolveResponse struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	UCI       string `json:"uci"`
	SAN       string `json:"san"`
}

type CommandsResponse struct {
	Catalog  string               `json:"catalog"`
	Commands []nlp.CommandPattern `json:"commands"`
	Help     string               `json:"help"`
}

type LobbyResponse struct {
	Lobby entity.Lobby `json:"lobby"`
	Reply *lobby.Reply `json:"reply,omitempty"`
}

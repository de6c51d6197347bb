package session

import (
	"voicechess/internal/entity"
	"voicechess/internal/game"
)

type StartGameRequest struct {
	LobbyID     string `json:"lobby_id" validate:"omitempty,max=64"`
	TimeControl string `json:"time_control" validate:"omitempty,timecontrol"`
	Mode        string `json:"mode" validate:"omitempty,oneof=voice classic"`
	Opponent    string `json:"opponent" validate:"omitempty,oneof=random friends"`
	PlayerSide  string `json:"player_side" validate:"omitempty,oneof=white black w b"`
}

type TranscriptRequest struct {
	Text  string `json:"text" validate:"required,max=500"`
	Final *bool  `json:"final"`
}

type MoveRequest struct {
	From      string `json:"from" validate:"required,len=2"`
	To        string `json:"to" validate:"required,len=2"`
	Promotion string `json:"promotion" validate:"omitempty,oneof=q r b n"`
}

type GameResponse struct {
	Mode     entity.GameMode      `json:"mode"`
	Opponent entity.Opponent      `json:"opponent"`
	LobbyID  string               `json:"lobby_id,omitempty"`
	State    game.SessionSnapshot `json:"state"`
}

type MoveResponse struct {
	Move  game.MoveRecord      `json:"move"`
	State game.SessionSnapshot `json:"state"`
}

type UndoResponse struct {
	Plies int                  `json:"plies"`
	State game.SessionSnapshot `json:"state"`
}

type HistoryResponse struct {
	Entries []entity.VoiceHistoryEntry `json:"entries"`
}

// Message types exchanged over the game WebSocket.
const (
	MsgTranscript       = "transcript"
	MsgRecognitionEnded = "recognition_ended"
	MsgMove             = "move"
	MsgUndo             = "undo"
	MsgFlipBoard        = "flip_board"
	MsgToggleSound      = "toggle_sound"
	MsgStartListening   = "start_listening"
	MsgStopListening    = "stop_listening"

	MsgSpeak       = "speak"
	MsgSpeakCancel = "speak_cancel"
	MsgListen      = "listen"
	MsgState       = "state"
	MsgError       = "error"
)

type ClientMessage struct {
	Type      string `json:"type" validate:"required"`
	Text      string `json:"text,omitempty"`
	Final     *bool  `json:"final,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

type ServerMessage struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Rate   float64               `json:"rate,omitempty"`
	Volume float64               `json:"volume,omitempty"`
	State  *game.SessionSnapshot `json:"state,omitempty"`
	Error  string                `json:"error,omitempty"`
}

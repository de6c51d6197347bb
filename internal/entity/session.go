package entity

import "time"

type GameMode string

const (
	GameModeVoice   GameMode = "voice"
	GameModeClassic GameMode = "classic"
)

type Opponent string

const (
	OpponentRandom  Opponent = "random"
	OpponentFriends Opponent = "friends"
)

// SessionConfig is what the voice lobby collects before a game starts. The
// JSON names match what the browser stores for the session.
type SessionConfig struct {
	Mode        GameMode `json:"mode" validate:"required,oneof=voice classic"`
	TimeControl string   `json:"time" validate:"required,max=16"`
	Opponent    Opponent `json:"versus" validate:"required,oneof=random friends"`
}

type Lobby struct {
	ID        string        `json:"id"`
	Stage     string        `json:"stage"`
	Config    SessionConfig `json:"config"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

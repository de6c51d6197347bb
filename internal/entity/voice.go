package entity

import (
	"time"
)

type VoiceStatus uint8

const (
	VoiceStatusProcessing VoiceStatus = iota
	VoiceStatusExecuted
	VoiceStatusFailed
)

var VoiceStatusMap = map[VoiceStatus]string{
	VoiceStatusProcessing: "processing",
	VoiceStatusExecuted:   "executed",
	VoiceStatusFailed:     "failed",
}

func (s VoiceStatus) String() string {
	return VoiceStatusMap[s]
}

func (s VoiceStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// VoiceHistoryEntry is one spoken command as shown in the game sidebar.
type VoiceHistoryEntry struct {
	ID        string      `json:"id"`
	Text      string      `json:"text"`
	Intent    string      `json:"intent,omitempty"`
	Status    VoiceStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

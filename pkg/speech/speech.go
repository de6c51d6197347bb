// Package speech defines the recognition and synthesis capabilities a game
// session talks through, and keeps recognition running.
package speech

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrRecognitionUnavailable = errors.New("speech recognition unavailable")

// Transcript is one recognition result. Interim results may be revised by a
// later final one.
type Transcript struct {
	Text      string    `json:"text"`
	Final     bool      `json:"final"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTranscript(text string, final bool) Transcript {
	return Transcript{
		Text:      strings.ToLower(strings.TrimSpace(text)),
		Final:     final,
		Timestamp: time.Now(),
	}
}

// Recognizer turns speech into transcripts. The returned channel is closed
// when recognition ends on its own (silence, lost device) or ctx is done.
type Recognizer interface {
	Listen(ctx context.Context) (<-chan Transcript, error)
}

type Options struct {
	Rate   float64 `json:"rate,omitempty"`
	Volume float64 `json:"volume,omitempty"`
}

// Synthesizer speaks text. Speak returns once the utterance has finished or
// was cancelled; Stop cancels whatever is being spoken right away.
type Synthesizer interface {
	Speak(ctx context.Context, text string, opts Options) error
	Stop()
}

// Silent is the synthesizer used when no audio output exists.
type Silent struct{}

func (Silent) Speak(context.Context, string, Options) error { return nil }
func (Silent) Stop()                                        {}

package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"voicechess/internal/game"
	"voicechess/pkg/speech"
)

// Writer is the client side of the bridge, a WebSocket connection in
// production.
type Writer interface {
	WriteJSON(v interface{}) error
}

// Bridge lets a game session listen and speak through the browser. It is the
// session's Recognizer and Synthesizer: "listen" and "speak" go out as
// messages, and transcripts come back through Deliver.
type Bridge struct {
	log *logrus.Logger

	mu        sync.Mutex
	current   *recognition
	listening bool

	wmu    sync.Mutex
	writer Writer
}

type recognition struct {
	ch    chan speech.Transcript
	ended chan struct{}
}

func NewBridge(logger *logrus.Logger) *Bridge {
	return &Bridge{log: logger}
}

// Attach routes outgoing messages to w. A recognition started before the
// client connected is requested again.
func (b *Bridge) Attach(w Writer) {
	b.wmu.Lock()
	b.writer = w
	b.wmu.Unlock()

	b.mu.Lock()
	listening := b.listening
	b.mu.Unlock()
	if listening {
		b.send(ServerMessage{Type: MsgListen})
	}
}

// Detach drops w if it is still the attached writer and ends the running
// recognition, the way a closed tab stops the browser recognizer.
func (b *Bridge) Detach(w Writer) {
	b.wmu.Lock()
	if b.writer == w {
		b.writer = nil
	}
	b.wmu.Unlock()

	b.RecognitionEnded()
}

func (b *Bridge) Listen(ctx context.Context) (<-chan speech.Transcript, error) {
	r := &recognition{
		ch:    make(chan speech.Transcript, 16),
		ended: make(chan struct{}),
	}

	b.mu.Lock()
	prev := b.current
	b.current = r
	b.listening = true
	b.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	b.send(ServerMessage{Type: MsgListen})

	go func() {
		select {
		case <-ctx.Done():
			if b.end(r) {
				b.send(ServerMessage{Type: MsgStopListening})
			}
		case <-r.ended:
		}
	}()
	return r.ch, nil
}

// Deliver hands a transcript to the running recognition. It reports false
// when nothing is listening.
func (b *Bridge) Deliver(t speech.Transcript) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.current == nil {
		return false
	}
	select {
	case b.current.ch <- t:
		return true
	default:
		b.log.WithField("text", t.Text).Warn("Transcript dropped, recognition queue full")
		return true
	}
}

// RecognitionEnded closes the running recognition so the supervisor restarts
// it.
func (b *Bridge) RecognitionEnded() {
	b.mu.Lock()
	r := b.current
	b.mu.Unlock()
	if r != nil {
		b.end(r)
	}
}

func (b *Bridge) end(r *recognition) bool {
	b.mu.Lock()
	if b.current != r {
		b.mu.Unlock()
		return false
	}
	b.current = nil
	b.listening = false
	b.mu.Unlock()

	r.close()
	return true
}

// close must run at most once per recognition; callers clear b.current
// under the lock first.
func (r *recognition) close() {
	close(r.ch)
	close(r.ended)
}

func (b *Bridge) Speak(ctx context.Context, text string, opts speech.Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.send(ServerMessage{Type: MsgSpeak, Text: text, Rate: opts.Rate, Volume: opts.Volume})
	return nil
}

func (b *Bridge) Stop() {
	b.send(ServerMessage{Type: MsgSpeakCancel})
}

// Observe forwards every published snapshot.
func (b *Bridge) Observe(snap game.SessionSnapshot) {
	b.send(ServerMessage{Type: MsgState, State: &snap})
}

func (b *Bridge) send(msg ServerMessage) {
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if b.writer == nil {
		return
	}
	if err := b.writer.WriteJSON(msg); err != nil {
		b.log.WithFields(logrus.Fields{
			"type":  msg.Type,
			"error": err.Error(),
		}).Debug("Failed to write bridge message")
	}
}

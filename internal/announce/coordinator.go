package announce

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"voicechess/pkg/chessrules"
	"voicechess/pkg/speech"
)

// Coordinator speaks one phrase at a time. A new phrase cancels the one in
// flight, and nothing is spoken while sound is off.
type Coordinator struct {
	synth speech.Synthesizer
	opts  speech.Options
	log   *logrus.Logger

	mu      sync.Mutex
	base    context.Context
	stop    context.CancelFunc
	cancel  context.CancelFunc
	soundOn bool
	closed  bool
	wg      sync.WaitGroup
}

func NewCoordinator(synth speech.Synthesizer, opts speech.Options, logger *logrus.Logger) *Coordinator {
	if synth == nil {
		synth = speech.Silent{}
	}
	base, stop := context.WithCancel(context.Background())
	return &Coordinator{
		synth:   synth,
		opts:    opts,
		log:     logger,
		base:    base,
		stop:    stop,
		soundOn: true,
	}
}

// Say interrupts the current utterance and speaks text without waiting for
// it to finish.
func (c *Coordinator) Say(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	c.mu.Lock()
	if !c.soundOn || c.closed {
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.synth.Stop()
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		defer cancel()
		if err := c.synth.Speak(ctx, text, c.opts); err != nil && ctx.Err() == nil && c.log != nil {
			c.log.WithFields(logrus.Fields{
				"text":  text,
				"error": err.Error(),
			}).Warn("Speech synthesis failed")
		}
	}()
}

// Move speaks the move and, when the game changed state, the outcome in the
// same utterance so one does not cut off the other.
func (c *Coordinator) Move(byPlayer bool, san string, outcome Outcome, winner chessrules.Side) {
	phrase := MovePhrase(byPlayer, san) + "."
	if extra := OutcomePhrase(outcome, winner); extra != "" {
		phrase += " " + extra
	}
	c.Say(phrase)
}

func (c *Coordinator) Outcome(outcome Outcome, winner chessrules.Side) {
	c.Say(OutcomePhrase(outcome, winner))
}

func (c *Coordinator) SoundOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.soundOn
}

// ToggleSound flips the sound flag and returns the new value. Turning sound
// off silences the current utterance.
func (c *Coordinator) ToggleSound() bool {
	c.mu.Lock()
	c.soundOn = !c.soundOn
	on := c.soundOn
	if !on && c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	if !on {
		c.synth.Stop()
	} else {
		c.Say(SoundOn)
	}
	return on
}

// Close stops speaking and waits for the synthesizer to return.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stop()
	c.cancel = nil
	c.mu.Unlock()

	c.synth.Stop()
	c.wg.Wait()
}

// Drain refuses new phrases but lets the current one finish, without the
// cancel Close sends to the synthesizer.
func (c *Coordinator) Drain() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	c.stop()
	c.cancel = nil
	c.mu.Unlock()
}

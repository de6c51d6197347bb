package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"voicechess/internal/announce"
	"voicechess/internal/entity"
	"voicechess/pkg/chessrules"
	"voicechess/pkg/log"
	"voicechess/pkg/nlp"
	"voicechess/pkg/speech"
	"voicechess/pkg/utils"
)

const DefaultCommandCooldown = 500 * time.Millisecond

type Options struct {
	ID     string
	Game   Config
	Source MoveSource
	Budget SearchBudget

	OpponentTimeout time.Duration
	ThinkDelay      time.Duration
	// TickInterval of zero disables the wall clock; Tick drives it instead.
	TickInterval    time.Duration
	CommandCooldown time.Duration

	Recognizer    speech.Recognizer
	Synthesizer   speech.Synthesizer
	SpeechOptions speech.Options
	MaxRestarts   int
	RestartDelay  time.Duration

	Observer Observer
	IDs      utils.IUtils
}

func DefaultOptions() Options {
	return Options{
		Budget:          SearchBudget{Depth: DefaultSearchDepth},
		OpponentTimeout: DefaultOpponentTimeout,
		ThinkDelay:      DefaultThinkDelay,
		TickInterval:    time.Second,
		CommandCooldown: DefaultCommandCooldown,
		MaxRestarts:     speech.DefaultMaxRestarts,
		RestartDelay:    speech.DefaultRestartDelay,
	}
}

// Observer receives every published snapshot on the session goroutine.
type Observer func(SessionSnapshot)

type SessionSnapshot struct {
	ID string `json:"id"`
	Snapshot
	Orientation    chessrules.Side `json:"orientation"`
	SoundOn        bool            `json:"sound_on"`
	Listening      speech.State    `json:"listening"`
	VoiceAvailable bool            `json:"voice_available"`
	Ended          bool            `json:"ended"`
}

type eventKind uint8

const (
	evTranscript eventKind = iota
	evMove
	evUndo
	evTick
	evOpponent
	evRecognition
	evControl
)

type control uint8

const (
	ctlStartListening control = iota
	ctlStopListening
	ctlFlipBoard
	ctlToggleSound
)

type event struct {
	kind eventKind

	transcript speech.Transcript
	from, to   string
	promotion  chessrules.PieceType

	request OpponentRequest
	move    *OpponentMove
	err     error

	state   speech.State
	control control

	reply chan result
}

type result struct {
	record MoveRecord
	plies  int
	err    error
}

// Session is the single writer of a Game. Transcripts, clicks, clock ticks
// and engine answers all arrive as events on one goroutine (Run).
type Session struct {
	id   string
	game *Game
	opts Options
	log  *logrus.Logger

	announcer  *announce.Coordinator
	supervisor *speech.Supervisor
	cooldown   *rate.Limiter
	ids        utils.IUtils

	events   chan event
	quit     chan struct{}
	done     chan struct{}
	running  atomic.Bool
	stopOnce sync.Once

	// Owned by the Run goroutine.
	runCtx       context.Context
	ticker       *time.Ticker
	tickC        <-chan time.Time
	cancelSearch context.CancelFunc
	orientation  chessrules.Side
	voiceLost    bool
	leaving      bool
	ended        bool

	mu       sync.RWMutex
	snapshot SessionSnapshot
	history  []entity.VoiceHistoryEntry
}

func NewSession(opts Options, logger *logrus.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Discard()
	}
	if opts.IDs == nil {
		opts.IDs = utils.New()
	}

	g, err := NewGame(opts.Game)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:          opts.ID,
		game:        g,
		opts:        opts,
		log:         logger,
		ids:         opts.IDs,
		events:      make(chan event, 64),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		orientation: g.PlayerSide(),
	}
	if s.id == "" {
		s.id = opts.IDs.NewID()
	}
	if opts.CommandCooldown > 0 {
		s.cooldown = rate.NewLimiter(rate.Every(opts.CommandCooldown), 1)
	}

	s.announcer = announce.NewCoordinator(opts.Synthesizer, opts.SpeechOptions, logger)
	s.supervisor = speech.NewSupervisor(opts.Recognizer, speech.SupervisorConfig{
		MaxRestarts:  opts.MaxRestarts,
		RestartDelay: opts.RestartDelay,
		OnTranscript: func(t speech.Transcript) { _ = s.SubmitTranscript(t) },
		OnState:      s.recognitionChanged,
	}, logger)

	s.storeSnapshot(s.buildSnapshot())
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run processes events until ctx ends, Stop is called or the player leaves
// the game by voice.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("session is already running")
	}
	defer close(s.done)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.runCtx = ctx

	if s.opts.TickInterval > 0 {
		s.ticker = time.NewTicker(s.opts.TickInterval)
		s.tickC = s.ticker.C
	}
	defer s.teardown()

	s.log.WithFields(logrus.Fields{
		"session_id":   s.id,
		"time_control": s.game.TimeControl().Label,
		"player_side":  s.game.PlayerSide(),
	}).Info("Game session started")

	s.announcer.Say(announce.GameStart(s.game.TimeControl().Label, s.game.PlayerSide()))
	if s.supervisor.Available() {
		if err := s.supervisor.Start(ctx); err != nil {
			s.log.WithFields(logrus.Fields{
				"session_id": s.id,
				"error":      err.Error(),
			}).Warn("Voice recognition could not start")
		}
	}
	s.afterChange()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.quit:
			return nil
		case <-s.tickC:
			s.handleTick()
		case ev := <-s.events:
			if s.handle(ev) {
				return nil
			}
		}
	}
}

// Stop ends Run. It does not wait; use Done for that.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

func (s *Session) teardown() {
	s.stopTicker()
	s.cancelOpponent()
	s.supervisor.Stop()
	if s.leaving {
		// The farewell is still playing.
		s.announcer.Drain()
	} else {
		s.announcer.Close()
	}
	s.ended = true
	s.publish()

	s.log.WithFields(logrus.Fields{
		"session_id": s.id,
		"status":     s.game.Status(),
		"moves":      s.game.Ply(),
	}).Info("Game session ended")
}

func (s *Session) handle(ev event) bool {
	switch ev.kind {
	case evTranscript:
		return s.handleTranscript(ev.transcript)
	case evMove:
		rec, err := s.playerMove(ev.from, ev.to, ev.promotion)
		ev.reply <- result{record: rec, err: err}
	case evUndo:
		n, err := s.undo()
		ev.reply <- result{plies: n, err: err}
	case evTick:
		s.handleTick()
	case evOpponent:
		s.handleOpponent(ev)
	case evRecognition:
		s.handleRecognition(ev.state)
	case evControl:
		s.handleControl(ev.control)
		if ev.reply != nil {
			ev.reply <- result{}
		}
	}
	return false
}

func (s *Session) post(ev event) error {
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	}
}

func (s *Session) call(ctx context.Context, ev event) (result, error) {
	ev.reply = make(chan result, 1)
	select {
	case s.events <- ev:
	case <-s.done:
		return result{}, ErrSessionClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case r := <-ev.reply:
		return r, r.err
	case <-s.done:
		return result{}, ErrSessionClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// SubmitTranscript queues a recognition result. Interim results are ignored.
func (s *Session) SubmitTranscript(t speech.Transcript) error {
	return s.post(event{kind: evTranscript, transcript: t})
}

// Move plays a clicked move for the player.
func (s *Session) Move(ctx context.Context, from, to string, promotion chessrules.PieceType) (MoveRecord, error) {
	r, err := s.call(ctx, event{kind: evMove, from: from, to: to, promotion: promotion})
	return r.record, err
}

func (s *Session) Undo(ctx context.Context) (int, error) {
	r, err := s.call(ctx, event{kind: evUndo})
	return r.plies, err
}

// Tick advances the clock by one second, for sessions without a wall clock.
func (s *Session) Tick() error {
	return s.post(event{kind: evTick})
}

func (s *Session) StartListening(ctx context.Context) error {
	_, err := s.call(ctx, event{kind: evControl, control: ctlStartListening})
	return err
}

func (s *Session) StopListening(ctx context.Context) error {
	_, err := s.call(ctx, event{kind: evControl, control: ctlStopListening})
	return err
}

func (s *Session) FlipBoard(ctx context.Context) error {
	_, err := s.call(ctx, event{kind: evControl, control: ctlFlipBoard})
	return err
}

func (s *Session) ToggleSound(ctx context.Context) error {
	_, err := s.call(ctx, event{kind: evControl, control: ctlToggleSound})
	return err
}

func (s *Session) Snapshot() SessionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Session) VoiceHistory() []entity.VoiceHistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entity.VoiceHistoryEntry(nil), s.history...)
}

// recognitionChanged runs on the supervisor's goroutine or, for Start and
// Stop, on the session goroutine itself, so it must never block on the queue.
func (s *Session) recognitionChanged(state speech.State) {
	ev := event{kind: evRecognition, state: state}
	select {
	case s.events <- ev:
	default:
		go func() { _ = s.post(ev) }()
	}
}

func (s *Session) handleTranscript(t speech.Transcript) bool {
	text := strings.TrimSpace(t.Text)
	if !t.Final || text == "" {
		return false
	}
	if s.cooldown != nil && !s.cooldown.Allow() {
		s.log.WithFields(logrus.Fields{
			"session_id": s.id,
			"text":       text,
		}).Debug("Voice command ignored during cooldown")
		return false
	}

	entryID := s.addHistory(text)

	if !nlp.MentionsMove(text) {
		if m, ok := nlp.GameCatalog.Classify(text); ok {
			executed, leave := s.runIntent(m.Intent)
			s.finishHistory(entryID, m.Intent, executed)
			return leave
		}
	}

	err := s.voiceMove(text)
	s.finishHistory(entryID, nlp.IntentNone, err == nil)
	return false
}

func (s *Session) voiceMove(text string) error {
	if s.game.Status().Terminal() {
		s.announcer.Say(announce.GameOver)
		return ErrGameOver
	}
	if s.game.AwaitingOpponent() || s.game.Turn() != s.game.PlayerSide() {
		s.announcer.Say(announce.WaitForOpponent)
		return ErrAwaitingOpponent
	}

	resolved, err := nlp.ResolveMove(text, s.game.LegalMoves())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": s.id,
			"text":       text,
			"error":      err.Error(),
		}).Info("No move resolved from transcript")
		s.announcer.Say(announce.NoMoveDetected)
		return err
	}

	_, err = s.playerMove(resolved.From, resolved.To, resolved.Promotion)
	return err
}

// runIntent reports whether the command did something and whether the
// player asked to leave the game.
func (s *Session) runIntent(intent nlp.Intent) (executed bool, leave bool) {
	switch intent {
	case nlp.UndoMove:
		_, err := s.undo()
		return err == nil, false
	case nlp.FlipBoard:
		s.handleControl(ctlFlipBoard)
	case nlp.ToggleSound:
		s.handleControl(ctlToggleSound)
	case nlp.StopListening:
		s.handleControl(ctlStopListening)
	case nlp.ShowCommands:
		s.announcer.Say(nlp.GameCatalog.Help() + ". " + announce.MoveHint)
	case nlp.GoBack:
		s.announcer.Say(announce.LeavingGame)
		s.leaving = true
		return true, true
	default:
		return false, false
	}
	return true, false
}

func (s *Session) handleControl(c control) {
	switch c {
	case ctlStartListening:
		if err := s.supervisor.Start(s.runCtx); err != nil {
			s.announcer.Say(announce.VoiceUnavailable)
		}
	case ctlStopListening:
		s.supervisor.Stop()
		s.announcer.Say(announce.StoppedListening)
	case ctlFlipBoard:
		s.orientation = s.orientation.Opponent()
		s.announcer.Say(announce.BoardFlipped)
	case ctlToggleSound:
		s.announcer.ToggleSound()
	}
	s.publish()
}

func (s *Session) playerMove(from, to string, promotion chessrules.PieceType) (MoveRecord, error) {
	rec, err := s.game.ApplyMove(from, to, ByPlayer, promotion)
	if err != nil {
		s.announceRejection(err)
		return MoveRecord{}, err
	}
	s.announceMove(rec)
	s.afterChange()
	return rec, nil
}

func (s *Session) undo() (int, error) {
	n, err := s.game.UndoLastExchange()
	if err != nil {
		s.announceRejection(err)
		return 0, err
	}
	s.cancelOpponent()
	s.announcer.Say(announce.Undone(n))
	s.afterChange()
	return n, nil
}

func (s *Session) announceRejection(err error) {
	switch {
	case errors.Is(err, ErrIllegalMove):
		s.announcer.Say(announce.IllegalMove)
	case errors.Is(err, ErrAwaitingOpponent), errors.Is(err, ErrNotYourTurn):
		s.announcer.Say(announce.WaitForOpponent)
	case errors.Is(err, ErrGameOver):
		s.announcer.Say(announce.GameOver)
	case errors.Is(err, ErrNothingToUndo):
		s.announcer.Say(announce.NothingToUndo)
	}
}

func (s *Session) announceMove(rec MoveRecord) {
	s.announcer.Move(rec.By == ByPlayer, rec.SAN, outcomeOf(rec.Status), s.game.Winner())
}

func outcomeOf(status Status) announce.Outcome {
	switch status {
	case StatusCheck:
		return announce.OutcomeCheck
	case StatusCheckmate:
		return announce.OutcomeCheckmate
	case StatusStalemate:
		return announce.OutcomeStalemate
	case StatusDraw:
		return announce.OutcomeDraw
	case StatusTimeout:
		return announce.OutcomeTimeout
	}
	return announce.OutcomeNone
}

// afterChange stops the clock on a finished game or asks the opponent to
// move when it is their turn, then publishes.
func (s *Session) afterChange() {
	if s.game.Status().Terminal() {
		s.stopTicker()
		s.cancelOpponent()
	} else if s.game.NeedsOpponent() {
		s.scheduleOpponent()
	}
	s.publish()
}

func (s *Session) scheduleOpponent() {
	req, ok := s.game.BeginOpponentRequest()
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(s.runCtx)
	s.cancelSearch = cancel
	go s.search(ctx, req)
}

func (s *Session) search(ctx context.Context, req OpponentRequest) {
	if s.opts.ThinkDelay > 0 {
		timer := time.NewTimer(s.opts.ThinkDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	var move *OpponentMove
	var err error
	if s.opts.Source != nil {
		move, err = s.askSource(ctx, req)
	}
	if ctx.Err() != nil {
		return
	}
	_ = s.post(event{kind: evOpponent, request: req, move: move, err: err})
}

// askSource gives up after OpponentTimeout even if the source ignores ctx.
func (s *Session) askSource(ctx context.Context, req OpponentRequest) (*OpponentMove, error) {
	if s.opts.OpponentTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OpponentTimeout)
		defer cancel()
	}

	type answer struct {
		move *OpponentMove
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		move, err := s.opts.Source.BestMove(ctx, req.FEN, s.opts.Budget)
		ch <- answer{move, err}
	}()

	select {
	case a := <-ch:
		return a.move, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Session) handleOpponent(ev event) {
	rec, err := s.game.CompleteOpponentRequest(ev.request, ev.move)
	if errors.Is(err, ErrStaleResponse) {
		s.log.WithFields(logrus.Fields{
			"session_id": s.id,
			"request_id": ev.request.ID,
		}).Debug("Discarded stale opponent response")
		return
	}
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"session_id": s.id,
			"error":      err.Error(),
		}).Warn("Opponent could not move")
		s.afterChange()
		return
	}

	if rec.Fallback {
		fields := logrus.Fields{
			"session_id": s.id,
			"move":       rec.SAN,
		}
		if ev.err != nil {
			fields["error"] = ev.err.Error()
		}
		s.log.WithFields(fields).Warn("Opponent source failed, played a random move")
	}

	s.announceMove(rec)
	s.afterChange()
}

func (s *Session) handleTick() {
	res := s.game.Tick()
	if !res.Active {
		s.stopTicker()
		return
	}
	if res.TimedOut {
		s.stopTicker()
		s.cancelOpponent()
		s.announcer.Outcome(announce.OutcomeTimeout, s.game.Winner())
	}
	s.publish()
}

func (s *Session) handleRecognition(state speech.State) {
	if state == speech.StateUnavailable && !s.voiceLost {
		s.voiceLost = true
		s.log.WithFields(logrus.Fields{
			"session_id": s.id,
		}).Warn("Voice recognition unavailable, continuing click-only")
		s.announcer.Say(announce.VoiceUnavailable)
	}
	s.publish()
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
	s.tickC = nil
}

func (s *Session) cancelOpponent() {
	if s.cancelSearch != nil {
		s.cancelSearch()
		s.cancelSearch = nil
	}
	s.game.CancelOpponentRequest()
}

func (s *Session) addHistory(text string) string {
	entry := entity.VoiceHistoryEntry{
		ID:        s.ids.NewID(),
		Text:      text,
		Status:    entity.VoiceStatusProcessing,
		Timestamp: time.Now(),
	}
	s.mu.Lock()
	s.history = append(s.history, entry)
	s.mu.Unlock()
	return entry.ID
}

func (s *Session) finishHistory(id string, intent nlp.Intent, executed bool) {
	status := entity.VoiceStatusFailed
	if executed {
		status = entity.VoiceStatusExecuted
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].ID == id {
			s.history[i].Status = status
			s.history[i].Intent = intent.String()
			return
		}
	}
}

func (s *Session) buildSnapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:             s.id,
		Snapshot:       s.game.Snapshot(),
		Orientation:    s.orientation,
		SoundOn:        s.announcer.SoundOn(),
		Listening:      s.supervisor.State(),
		VoiceAvailable: s.supervisor.Available(),
		Ended:          s.ended,
	}
}

func (s *Session) storeSnapshot(snap SessionSnapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *Session) publish() {
	snap := s.buildSnapshot()
	s.storeSnapshot(snap)
	if s.opts.Observer != nil {
		s.opts.Observer(snap)
	}
}

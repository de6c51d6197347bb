// Package lobby is the spoken setup flow that precedes a game: pick a mode,
// then a time control, then an opponent.
package lobby

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"voicechess/internal/entity"
	"voicechess/pkg/nlp"
)

type Stage string

const (
	StageMode     Stage = "mode"
	StageTime     Stage = "time"
	StageOpponent Stage = "opponent"
	StageReady    Stage = "ready"
)

type Action string

const (
	ActionNone          Action = "none"
	ActionSpeak         Action = "speak"
	ActionStartGame     Action = "start_game"
	ActionStopListening Action = "stop_listening"
	ActionShowCommands  Action = "show_commands"
	ActionLeave         Action = "leave"
)

const (
	notUnderstood      = "Sorry, I did not understand. Say show commands to hear what you can say."
	chooseOpponent     = "Now choose your opponent. Say random to play the computer, or play with friends."
	chooseTimeFirst    = "Please choose a time control first."
	classicTimeControl = "Choose a time control: bullet, blitz, rapid or classical."
)

// ConfigStore keeps the finished setup until the game page picks it up.
type ConfigStore interface {
	SaveSessionConfig(ctx context.Context, lobbyID string, value any) error
	LoadSessionConfig(ctx context.Context, lobbyID string, dst any) error
	DeleteSessionConfig(ctx context.Context, lobbyID string) error
}

// Reply tells the client what to say and do after a command.
type Reply struct {
	Recognized bool                  `json:"recognized"`
	Intent     nlp.Intent            `json:"intent,omitempty"`
	Confidence float64               `json:"confidence,omitempty"`
	Feedback   string                `json:"feedback,omitempty"`
	Action     Action                `json:"action"`
	Target     string                `json:"target,omitempty"`
	Stage      Stage                 `json:"stage"`
	Config     *entity.SessionConfig `json:"config,omitempty"`
}

type Wizard struct {
	id    string
	store ConfigStore
	log   *logrus.Logger

	mu        sync.Mutex
	stage     Stage
	config    entity.SessionConfig
	createdAt time.Time
	updatedAt time.Time
}

func NewWizard(id string, store ConfigStore, logger *logrus.Logger) *Wizard {
	now := time.Now()
	return &Wizard{
		id:        id,
		store:     store,
		log:       logger,
		stage:     StageMode,
		createdAt: now,
		updatedAt: now,
	}
}

func (w *Wizard) ID() string {
	return w.id
}

func (w *Wizard) State() entity.Lobby {
	w.mu.Lock()
	defer w.mu.Unlock()
	return entity.Lobby{
		ID:        w.id,
		Stage:     string(w.stage),
		Config:    w.config,
		CreatedAt: w.createdAt,
		UpdatedAt: w.updatedAt,
	}
}

// Handle runs one spoken command. An unrecognised phrase is not an error;
// the reply asks the user to try again.
func (w *Wizard) Handle(ctx context.Context, text string) (Reply, error) {
	m, ok := nlp.LobbyCatalog.Classify(text)
	if !ok {
		w.mu.Lock()
		stage := w.stage
		w.mu.Unlock()
		return Reply{Action: ActionSpeak, Feedback: notUnderstood, Stage: stage}, nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.updatedAt = time.Now()

	reply := Reply{
		Recognized: true,
		Intent:     m.Intent,
		Confidence: m.Confidence,
		Action:     ActionSpeak,
	}

	if label, ok := nlp.TimeControlLabel(m.Intent); ok {
		if w.config.Mode == "" {
			w.config.Mode = entity.GameModeVoice
		}
		w.config.TimeControl = label
		w.config.Opponent = ""
		w.stage = StageOpponent
		reply.Feedback = nlp.Feedback(m.Intent) + ". " + chooseOpponent
		reply.Stage = w.stage
		return reply, nil
	}

	if category, ok := nlp.ListingCategory(m.Intent); ok {
		reply.Feedback = nlp.TimeControlListing(category)
		reply.Stage = w.stage
		return reply, nil
	}

	switch m.Intent {
	case nlp.StartVoiceChess:
		w.selectMode(entity.GameModeVoice)
		reply.Feedback = nlp.VoiceChessWelcome
	case nlp.StartClassicChess:
		w.selectMode(entity.GameModeClassic)
		reply.Feedback = nlp.Feedback(m.Intent) + ". " + classicTimeControl
	case nlp.SelectRandom, nlp.SelectFriends:
		if w.config.TimeControl == "" {
			reply.Feedback = chooseTimeFirst
			break
		}
		opponent := entity.OpponentRandom
		if m.Intent == nlp.SelectFriends {
			opponent = entity.OpponentFriends
		}
		if err := w.finish(ctx, opponent, &reply); err != nil {
			return Reply{}, err
		}
	case nlp.GoBack:
		w.back(&reply)
	case nlp.StopListening:
		reply.Action = ActionStopListening
	case nlp.ShowCommands:
		reply.Action = ActionShowCommands
		reply.Feedback = nlp.Feedback(m.Intent) + ". " + nlp.LobbyCatalog.Help()
	default:
		reply.Action = ActionNone
	}

	reply.Stage = w.stage
	return reply, nil
}

func (w *Wizard) selectMode(mode entity.GameMode) {
	w.config = entity.SessionConfig{Mode: mode}
	w.stage = StageTime
}

func (w *Wizard) finish(ctx context.Context, opponent entity.Opponent, reply *Reply) error {
	w.config.Opponent = opponent
	cfg := w.config

	if w.store != nil {
		if err := w.store.SaveSessionConfig(ctx, w.id, cfg); err != nil {
			w.log.WithFields(logrus.Fields{
				"lobby_id": w.id,
				"error":    err.Error(),
			}).Error("Failed to save session config")
			return fmt.Errorf("%w: %v", ErrSaveConfig, err)
		}
	}

	w.stage = StageReady
	reply.Feedback = nlp.Feedback(reply.Intent)
	reply.Action = ActionStartGame
	reply.Target = "/game/" + string(cfg.Mode)
	reply.Config = &cfg
	return nil
}

// back undoes the last completed step. From the first step it leaves the
// lobby.
func (w *Wizard) back(reply *Reply) {
	reply.Feedback = nlp.Feedback(nlp.GoBack)
	switch w.stage {
	case StageReady:
		w.config.Opponent = ""
		w.stage = StageOpponent
	case StageOpponent:
		w.config.TimeControl = ""
		w.stage = StageTime
	case StageTime:
		w.config = entity.SessionConfig{}
		w.stage = StageMode
	default:
		reply.Action = ActionLeave
		reply.Target = "/"
	}
}

// Saved returns the stored setup, falling back to the in-memory one when no
// store is configured.
func (w *Wizard) Saved(ctx context.Context) (entity.SessionConfig, error) {
	if w.store == nil {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.stage != StageReady {
			return entity.SessionConfig{}, ErrConfigIncomplete
		}
		return w.config, nil
	}

	var cfg entity.SessionConfig
	if err := w.store.LoadSessionConfig(ctx, w.id, &cfg); err != nil {
		return entity.SessionConfig{}, err
	}
	return cfg, nil
}

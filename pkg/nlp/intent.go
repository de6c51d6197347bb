package nlp

// Intent names a non-move voice command.
type Intent string

const (
	IntentNone Intent = ""

	StartVoiceChess   Intent = "START_VOICE_CHESS"
	StartClassicChess Intent = "START_CLASSIC_CHESS"

	SelectBullet1_0  Intent = "SELECT_BULLET_1_0"
	SelectBullet1_1  Intent = "SELECT_BULLET_1_1"
	SelectBullet2_1  Intent = "SELECT_BULLET_2_1"
	SelectBullet2_0  Intent = "SELECT_BULLET_2_0"
	SelectBullet30_0 Intent = "SELECT_BULLET_30_0"

	SelectBlitz3_0 Intent = "SELECT_BLITZ_3_0"
	SelectBlitz3_2 Intent = "SELECT_BLITZ_3_2"
	SelectBlitz5_0 Intent = "SELECT_BLITZ_5_0"
	SelectBlitz5_3 Intent = "SELECT_BLITZ_5_3"
	SelectBlitz4_2 Intent = "SELECT_BLITZ_4_2"

	SelectRapid10_0  Intent = "SELECT_RAPID_10_0"
	SelectRapid10_5  Intent = "SELECT_RAPID_10_5"
	SelectRapid15_10 Intent = "SELECT_RAPID_15_10"
	SelectRapid15_0  Intent = "SELECT_RAPID_15_0"
	SelectRapid25_10 Intent = "SELECT_RAPID_25_10"

	SelectClassical90_30    Intent = "SELECT_CLASSICAL_90_30"
	SelectClassical60_0     Intent = "SELECT_CLASSICAL_60_0"
	SelectClassical60_30    Intent = "SELECT_CLASSICAL_60_30"
	SelectClassical120_30   Intent = "SELECT_CLASSICAL_120_30"
	SelectClassical90_40_30 Intent = "SELECT_CLASSICAL_90_40_30"

	TimeControlsBullet    Intent = "TIME_CONTROLS_BULLET"
	TimeControlsBlitz     Intent = "TIME_CONTROLS_BLITZ"
	TimeControlsRapid     Intent = "TIME_CONTROLS_RAPID"
	TimeControlsClassical Intent = "TIME_CONTROLS_CLASSICAL"

	SelectBullet    Intent = "SELECT_BULLET"
	SelectBlitz     Intent = "SELECT_BLITZ"
	SelectRapid     Intent = "SELECT_RAPID"
	SelectClassical Intent = "SELECT_CLASSICAL"

	SelectRandom  Intent = "SELECT_RANDOM"
	SelectFriends Intent = "SELECT_FRIENDS"

	GoBack        Intent = "GO_BACK"
	StopListening Intent = "STOP_LISTENING"
	ShowCommands  Intent = "SHOW_COMMANDS"

	UndoMove    Intent = "UNDO_MOVE"
	FlipBoard   Intent = "FLIP_BOARD"
	ToggleSound Intent = "TOGGLE_SOUND"
)

func (i Intent) String() string {
	return string(i)
}

// CommandPattern binds an intent to its trigger phrases, in priority order.
type CommandPattern struct {
	Intent  Intent   `json:"intent"`
	Phrases []string `json:"phrases"`
}

// MatchedIntent is the best catalog entry for a transcript.
type MatchedIntent struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	SourceText string  `json:"source_text"`
	Phrase     string  `json:"phrase"`
}

package nlp

// Catalog is an ordered, read-only list of command patterns. Order decides
// ties: the earlier entry wins.
type Catalog struct {
	patterns []CommandPattern
}

func newCatalog(patterns ...CommandPattern) Catalog {
	normalized := make([]CommandPattern, 0, len(patterns))
	for _, p := range patterns {
		phrases := make([]string, 0, len(p.Phrases))
		for _, phrase := range p.Phrases {
			phrases = append(phrases, Normalize(phrase))
		}
		normalized = append(normalized, CommandPattern{Intent: p.Intent, Phrases: phrases})
	}
	return Catalog{patterns: normalized}
}

// Patterns returns a copy of the table.
func (c Catalog) Patterns() []CommandPattern {
	out := make([]CommandPattern, len(c.patterns))
	for i, p := range c.patterns {
		out[i] = CommandPattern{Intent: p.Intent, Phrases: append([]string(nil), p.Phrases...)}
	}
	return out
}

func (c Catalog) Len() int {
	return len(c.patterns)
}

// Phrases returns the trigger phrases of intent, nil when the catalog does
// not know it.
func (c Catalog) Phrases(intent Intent) []string {
	for _, p := range c.patterns {
		if p.Intent == intent {
			return append([]string(nil), p.Phrases...)
		}
	}
	return nil
}

var lobbyPatterns = []CommandPattern{
	{StartVoiceChess, []string{"voice chess", "start voice chess", "play voice chess"}},
	{StartClassicChess, []string{"classic chess", "start classic chess", "play classic chess"}},

	{SelectBullet1_0, []string{"bullet 1+0", "bullet 1 plus 0"}},
	{SelectBullet1_1, []string{"bullet 1+1", "bullet 1 plus 1"}},
	{SelectBullet2_1, []string{"bullet 2+1", "bullet 2 plus 1"}},
	{SelectBullet2_0, []string{"bullet 2+0", "bullet 2 plus 0"}},
	{SelectBullet30_0, []string{"bullet 30 seconds", "bullet 30+0"}},

	{SelectBlitz3_0, []string{"blitz 3+0", "blitz 3 plus 0"}},
	{SelectBlitz3_2, []string{"blitz 3+2", "blitz 3 plus 2"}},
	{SelectBlitz5_0, []string{"blitz 5+0", "blitz 5 plus 0"}},
	{SelectBlitz5_3, []string{"blitz 5+3", "blitz 5 plus 3"}},
	{SelectBlitz4_2, []string{"blitz 4+2", "blitz 4 plus 2"}},

	{SelectRapid10_0, []string{"rapid 10+0", "rapid 10 plus 0"}},
	{SelectRapid10_5, []string{"rapid 10+5", "rapid 10 plus 5"}},
	{SelectRapid15_10, []string{"rapid 15+10", "rapid 15 plus 10"}},
	{SelectRapid15_0, []string{"rapid 15+0", "rapid 15 plus 0"}},
	{SelectRapid25_10, []string{"rapid 25+10", "rapid 25 plus 10"}},

	{SelectClassical90_30, []string{"classical 90+30", "classical 90 plus 30"}},
	{SelectClassical60_0, []string{"classical 60+0", "classical 60 plus 0"}},
	{SelectClassical60_30, []string{"classical 60+30", "classical 60 plus 30"}},
	{SelectClassical120_30, []string{"classical 120+30", "classical 120 plus 30"}},
	{SelectClassical90_40_30, []string{"classical 90/40+30", "classical 90 40 plus 30"}},

	{TimeControlsBullet, []string{"time controls bullet", "bullet time controls"}},
	{TimeControlsBlitz, []string{"time controls blitz", "blitz time controls"}},
	{TimeControlsRapid, []string{"time controls rapid", "rapid time controls"}},
	{TimeControlsClassical, []string{"time controls classical", "classical time controls"}},

	{SelectRandom, []string{"random", "play random"}},
	{SelectFriends, []string{"friends", "play with friends"}},

	{GoBack, []string{"back", "go back"}},
	{StopListening, []string{"stop listening", "stop voice"}},
	{ShowCommands, []string{"show commands", "help"}},

	// Bare categories come last so any specific control outranks them.
	{SelectBullet, []string{"bullet"}},
	{SelectBlitz, []string{"blitz"}},
	{SelectRapid, []string{"rapid"}},
	{SelectClassical, []string{"classical"}},
}

var gamePatterns = []CommandPattern{
	{UndoMove, []string{"undo", "undo move", "take back"}},
	{FlipBoard, []string{"flip board", "flip the board", "rotate board"}},
	{ToggleSound, []string{"toggle sound", "mute", "unmute", "sound off", "sound on"}},
	{StopListening, []string{"stop listening", "stop voice", "pause voice"}},
	{ShowCommands, []string{"show commands", "help"}},
	{GoBack, []string{"back", "go back"}},
}

var (
	// LobbyCatalog drives game setup: mode, time control and opponent.
	LobbyCatalog = newCatalog(lobbyPatterns...)
	// GameCatalog holds the commands understood while a game is running.
	GameCatalog = newCatalog(gamePatterns...)
	// DefaultCatalog is the lobby catalog followed by the game-only commands.
	DefaultCatalog = newCatalog(append(append([]CommandPattern(nil), lobbyPatterns...), gamePatterns[:3]...)...)
)

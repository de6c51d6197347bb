package nlp

import (
	"math"
	"testing"
)

func TestClassify_ExactMatch(t *testing.T) {
	tests := []struct {
		catalog Catalog
		text    string
		want    Intent
	}{
		{LobbyCatalog, "voice chess", StartVoiceChess},
		{LobbyCatalog, "Blitz 3+2", SelectBlitz3_2},
		{LobbyCatalog, "blitz three plus two", SelectBlitz3_2},
		{LobbyCatalog, "blitz", SelectBlitz},
		{LobbyCatalog, "Play with friends", SelectFriends},
		{GameCatalog, "take back", UndoMove},
		{GameCatalog, "Flip the board", FlipBoard},
	}

	for _, tt := range tests {
		m, ok := tt.catalog.Classify(tt.text)
		if !ok {
			t.Errorf("Classify(%q) found nothing, want %s", tt.text, tt.want)
			continue
		}
		if m.Intent != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.text, m.Intent, tt.want)
		}
		if m.Confidence != ExactConfidence {
			t.Errorf("Classify(%q) confidence = %v, want %v", tt.text, m.Confidence, ExactConfidence)
		}
	}
}

func TestClassify_Contains(t *testing.T) {
	m, ok := LobbyCatalog.Classify("i would like voice chess please")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Intent != StartVoiceChess {
		t.Errorf("Intent = %s, want %s", m.Intent, StartVoiceChess)
	}
	if m.Confidence != ContainsConfidence {
		t.Errorf("Confidence = %v, want %v", m.Confidence, ContainsConfidence)
	}
}

func TestClassify_TieGoesToEarlierEntry(t *testing.T) {
	// Both "undo" and "flip board" are contained; undo comes first.
	m, ok := GameCatalog.Classify("undo flip board")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Intent != UndoMove {
		t.Errorf("Intent = %s, want %s", m.Intent, UndoMove)
	}
	if m.Confidence != ContainsConfidence {
		t.Errorf("Confidence = %v, want %v", m.Confidence, ContainsConfidence)
	}
}

func TestClassify_SpecificControlBeatsCategory(t *testing.T) {
	m, ok := LobbyCatalog.Classify("rapid 15 plus 10")
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Intent != SelectRapid15_10 {
		t.Errorf("Intent = %s, want %s", m.Intent, SelectRapid15_10)
	}
}

func TestClassify_NoMatch(t *testing.T) {
	for _, text := range []string{"", "   ", "xyz"} {
		if m, ok := GameCatalog.Classify(text); ok {
			t.Errorf("Classify(%q) = %s, want no match", text, m.Intent)
		}
	}
}

func TestClassify_DefaultCatalog(t *testing.T) {
	m, ok := Classify("mute")
	if !ok || m.Intent != ToggleSound {
		t.Errorf("Classify(mute) = %s, %v; want %s", m.Intent, ok, ToggleSound)
	}
}

func TestClassify_WordOverlap(t *testing.T) {
	catalog := newCatalog(
		CommandPattern{Intent: FlipBoard, Phrases: []string{"flip the board"}},
		CommandPattern{Intent: UndoMove, Phrases: []string{"undo"}},
		CommandPattern{Intent: ShowCommands, Phrases: []string{"show commands"}},
	)

	tests := []struct {
		name       string
		text       string
		want       Intent
		confidence float64
		matched    bool
	}{
		{"all words, other order", "board the flip", FlipBoard, 0.8, true},
		{"two of three words", "board flip", FlipBoard, 0.7, true},
		{"two of two words", "commands show", ShowCommands, 0.8, true},
		{"one of two words is too few", "show me", IntentNone, 0, false},
		{"one of three words is too few", "flip it", IntentNone, 0, false},
		{"later containment beats overlap", "board flip undo", UndoMove, ContainsConfidence, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := catalog.Classify(tt.text)
			if ok != tt.matched {
				t.Fatalf("Classify(%q) matched = %v, want %v (got %s)", tt.text, ok, tt.matched, m.Intent)
			}
			if !ok {
				return
			}
			if m.Intent != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, m.Intent, tt.want)
			}
			if math.Abs(m.Confidence-tt.confidence) > 1e-9 {
				t.Errorf("Classify(%q) confidence = %v, want %v", tt.text, m.Confidence, tt.confidence)
			}
		})
	}
}

package nlp

import (
	"errors"
	"testing"

	"voicechess/pkg/chessrules"
)

func openingMoves() []chessrules.Move {
	return []chessrules.Move{
		{From: "e2", To: "e4", Piece: chessrules.Pawn, Notation: "e4"},
		{From: "e2", To: "e3", Piece: chessrules.Pawn, Notation: "e3"},
		{From: "d2", To: "d4", Piece: chessrules.Pawn, Notation: "d4"},
		{From: "g1", To: "f3", Piece: chessrules.Knight, Notation: "Nf3"},
		{From: "b1", To: "c3", Piece: chessrules.Knight, Notation: "Nc3"},
	}
}

func TestResolveMove(t *testing.T) {
	tests := []struct {
		text     string
		from, to string
	}{
		{"e4", "e2", "e4"},
		{"E 4", "e2", "e4"},
		{"play e4", "e2", "e4"},
		{"pawn to d4", "d2", "d4"},
		{"knight to f3", "g1", "f3"},
		{"night f3", "g1", "f3"},
		{"knigt to c3", "b1", "c3"},
		{"e2 to e3", "e2", "e3"},
		{"a knight to f3", "g1", "f3"},
	}

	for _, tt := range tests {
		m, err := ResolveMove(tt.text, openingMoves())
		if err != nil {
			t.Errorf("ResolveMove(%q): %v", tt.text, err)
			continue
		}
		if m.From != tt.from || m.To != tt.to {
			t.Errorf("ResolveMove(%q) = %s%s, want %s%s", tt.text, m.From, m.To, tt.from, tt.to)
		}
	}
}

func TestResolveMove_NoMove(t *testing.T) {
	for _, text := range []string{"", "hello there", "e5", "knight to e4"} {
		if _, err := ResolveMove(text, openingMoves()); !errors.Is(err, ErrNoMoveFound) {
			t.Errorf("ResolveMove(%q) error = %v, want ErrNoMoveFound", text, err)
		}
	}
}

func TestResolveMove_Ambiguous(t *testing.T) {
	legal := []chessrules.Move{
		{From: "b1", To: "d2", Piece: chessrules.Knight, Notation: "Nbd2"},
		{From: "f3", To: "d2", Piece: chessrules.Knight, Notation: "Nfd2"},
	}

	if _, err := ResolveMove("knight d2", legal); !errors.Is(err, ErrAmbiguousMove) {
		t.Fatalf("error = %v, want ErrAmbiguousMove", err)
	}

	m, err := ResolveMove("knight f3 to d2", legal)
	if err != nil {
		t.Fatalf("with origin: %v", err)
	}
	if m.From != "f3" {
		t.Errorf("From = %s, want f3", m.From)
	}

	if _, err := ResolveMove("knight c4 to d2", legal); !errors.Is(err, ErrNoMoveFound) {
		t.Errorf("wrong origin error = %v, want ErrNoMoveFound", err)
	}
}

func TestResolveMove_Castle(t *testing.T) {
	legal := []chessrules.Move{
		{From: "e1", To: "g1", Piece: chessrules.King, Notation: "O-O"},
		{From: "e1", To: "f1", Piece: chessrules.King, Notation: "Kf1"},
	}

	m, err := ResolveMove("castle kingside", legal)
	if err != nil {
		t.Fatalf("castle kingside: %v", err)
	}
	if m.UCI() != "e1g1" {
		t.Errorf("castle kingside = %s, want e1g1", m.UCI())
	}

	if _, err := ResolveMove("castle queenside", legal); !errors.Is(err, ErrNoMoveFound) {
		t.Errorf("castle queenside error = %v, want ErrNoMoveFound", err)
	}

	if _, err := ResolveMove("castle", legal); !errors.Is(err, ErrNoMoveFound) {
		t.Errorf("bare castle error = %v, want ErrNoMoveFound", err)
	}
}

func TestResolveMove_Promotion(t *testing.T) {
	var legal []chessrules.Move
	for _, p := range []chessrules.PieceType{chessrules.Queen, chessrules.Rook, chessrules.Bishop, chessrules.Knight} {
		legal = append(legal, chessrules.Move{From: "e7", To: "e8", Piece: chessrules.Pawn, Promotion: p})
	}

	tests := []struct {
		text string
		want string
	}{
		{"e8", "e7e8q"},
		{"e8 knight", "e7e8n"},
		{"e8 promote to rook", "e7e8r"},
		{"e7 e8 bishop", "e7e8b"},
	}
	for _, tt := range tests {
		m, err := ResolveMove(tt.text, legal)
		if err != nil {
			t.Errorf("ResolveMove(%q): %v", tt.text, err)
			continue
		}
		if m.UCI() != tt.want {
			t.Errorf("ResolveMove(%q) = %s, want %s", tt.text, m.UCI(), tt.want)
		}
	}
}

func TestMentionsMove(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"e4", true},
		{"knight to f 3", true},
		{"castle kingside", true},
		{"undo", false},
		{"flip board", false},
		{"show commands", false},
	}

	for _, tt := range tests {
		if got := MentionsMove(tt.text); got != tt.want {
			t.Errorf("MentionsMove(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func legalFrom(t *testing.T, fen string) []chessrules.Move {
	t.Helper()
	oracle := chessrules.NewStandard()
	pos, err := oracle.Load(fen)
	if err != nil {
		t.Fatalf("Load(%q): %v", fen, err)
	}
	return oracle.LegalMoves(pos)
}

func TestResolveMove_SpokenHintsMustAgree(t *testing.T) {
	// White pawn e4 and rook d1 can both take on d5.
	pawnOrRook := legalFrom(t, "4k3/8/8/3p4/4P3/8/8/3RK3 w - - 0 1")
	// After 1.e4 d5.
	scandinavian := legalFrom(t, "rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2")

	tests := []struct {
		name  string
		legal []chessrules.Move
		text  string
		want  string
		err   error
	}{
		{"file hint with took", pawnOrRook, "e took d5", "e4d5", nil},
		{"file hint with takes", pawnOrRook, "e takes d5", "e4d5", nil},
		{"written capture", pawnOrRook, "exd5", "e4d5", nil},
		{"rook by name", pawnOrRook, "rook takes d5", "d1d5", nil},
		{"rook by file", pawnOrRook, "d takes d5", "d1d5", nil},
		{"no hint", pawnOrRook, "took d5", "", ErrAmbiguousMove},
		{"piece contradicts origin", pawnOrRook, "rook e4 to d5", "", ErrNoMoveFound},
		{"piece contradicts file", pawnOrRook, "e rook takes d5", "", ErrNoMoveFound},
		{"only capture, took", scandinavian, "e took d5", "e4d5", nil},
		{"origin square, took", scandinavian, "e4 took d5", "e4d5", nil},
		{"look is not a rook", scandinavian, "look e4 takes d5", "e4d5", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ResolveMove(tt.text, tt.legal)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("ResolveMove(%q) error = %v, want %v", tt.text, err, tt.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveMove(%q): %v", tt.text, err)
			}
			if m.UCI() != tt.want {
				t.Errorf("ResolveMove(%q) = %s, want %s", tt.text, m.UCI(), tt.want)
			}
		})
	}
}

func TestPieceFromWord(t *testing.T) {
	tests := []struct {
		word string
		want chessrules.PieceType
	}{
		{"knight", chessrules.Knight},
		{"night", chessrules.Knight},
		{"knigt", chessrules.Knight},
		{"bishp", chessrules.Bishop},
		{"rock", chessrules.Rook},
		{"queen", chessrules.Queen},
		{"took", chessrules.NoPiece},
		{"look", chessrules.NoPiece},
		{"ring", chessrules.NoPiece},
		{"kind", chessrules.NoPiece},
		{"bring", chessrules.NoPiece},
		{"queue", chessrules.NoPiece},
		{"takes", chessrules.NoPiece},
	}

	for _, tt := range tests {
		if got := pieceFromWord(tt.word); got != tt.want {
			t.Errorf("pieceFromWord(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

package nlp

import (
	"errors"
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"

	"voicechess/pkg/chessrules"
)

var (
	ErrNoMoveFound   = errors.New("no legal move matches the phrase")
	ErrAmbiguousMove = errors.New("phrase matches more than one legal move")
)

var (
	squarePattern = regexp.MustCompile(`[a-h][1-8]`)
	fileCapture   = regexp.MustCompile(`^[a-h]x$`)
)

// ResolvedMove is a move picked from the legal moves of a position.
type ResolvedMove struct {
	From      string               `json:"from"`
	To        string               `json:"to"`
	Promotion chessrules.PieceType `json:"-"`
}

func (m ResolvedMove) UCI() string {
	return m.From + m.To + m.Promotion.Letter()
}

var pieceWords = map[string]chessrules.PieceType{
	"pawn":    chessrules.Pawn,
	"pawns":   chessrules.Pawn,
	"pon":     chessrules.Pawn,
	"porn":    chessrules.Pawn,
	"pond":    chessrules.Pawn,
	"prawn":   chessrules.Pawn,
	"knight":  chessrules.Knight,
	"knights": chessrules.Knight,
	"night":   chessrules.Knight,
	"nite":    chessrules.Knight,
	"horse":   chessrules.Knight,
	"bishop":  chessrules.Bishop,
	"bishops": chessrules.Bishop,
	"rook":    chessrules.Rook,
	"rooks":   chessrules.Rook,
	"rock":    chessrules.Rook,
	"ruck":    chessrules.Rook,
	"queen":   chessrules.Queen,
	"queens":  chessrules.Queen,
	"king":    chessrules.King,
	"kings":   chessrules.King,
}

const minFuzzyLength = 5

// Short names like rook and king sit one edit away from too many words
// ("took", "ring"), so they only match through pieceWords.
var fuzzyPieceNames = []string{"knight", "bishop", "queen"}

var notPieceWords = map[string]bool{
	"queue": true,
	"queer": true,
	"quern": true,
}

var captureWords = map[string]bool{
	"takes":    true,
	"take":     true,
	"took":     true,
	"taking":   true,
	"captures": true,
	"capture":  true,
	"x":        true,
}

var (
	kingSideWords  = []string{"kingside", "king side", "short"}
	queenSideWords = []string{"queenside", "queen side", "long"}
	promoteWords   = []string{"promote", "promotes", "promotion", "promoting", "equals"}
)

// ResolveMove picks the legal move a spoken phrase describes. It never
// returns a move outside legal. A spoken piece, origin square or file must all
// agree with the move; when they still leave several moves it returns
// ErrAmbiguousMove.
func ResolveMove(text string, legal []chessrules.Move) (ResolvedMove, error) {
	normalized := strings.TrimPrefix(Normalize(text), "play ")
	if normalized == "" || len(legal) == 0 {
		return ResolvedMove{}, ErrNoMoveFound
	}

	if strings.Contains(normalized, "castle") || strings.Contains(normalized, "castling") {
		if move, handled, err := resolveCastle(normalized, legal); handled {
			return move, err
		}
	}

	squares := squarePattern.FindAllStringIndex(normalized, -1)
	if len(squares) == 0 {
		return ResolvedMove{}, ErrNoMoveFound
	}

	last := squares[len(squares)-1]
	destination := normalized[last[0]:last[1]]
	var originHint string
	if len(squares) >= 2 {
		originHint = normalized[squares[0][0]:squares[0][1]]
	}

	before := strings.Fields(normalized[:last[0]])
	mover := firstPiece(before)
	fileHint := spokenFile(before)
	promotion := spokenPromotion(strings.Fields(normalized[last[1]:]))
	if promotion == chessrules.NoPiece {
		promotion = promotionAfterKeyword(strings.Fields(normalized))
	}

	// Every spoken hint must agree with the move; none outranks another.
	candidates := filterMoves(movesTo(legal, destination), func(m chessrules.Move) bool {
		switch {
		case originHint != "" && m.From != originHint:
			return false
		case fileHint != "" && m.From[:1] != fileHint:
			return false
		case mover != chessrules.NoPiece && m.Piece != mover:
			return false
		}
		return true
	})

	var chosen chessrules.Move
	switch len(candidates) {
	case 0:
		return ResolvedMove{}, ErrNoMoveFound
	case 1:
		chosen = candidates[0]
	default:
		return ResolvedMove{}, ErrAmbiguousMove
	}

	resolved := ResolvedMove{From: chosen.From, To: chosen.To}
	if chosen.IsPromotion() {
		resolved.Promotion = chessrules.Queen
		if promotion != chessrules.NoPiece && hasVariant(legal, chosen.From, chosen.To, promotion) {
			resolved.Promotion = promotion
		}
	}
	return resolved, nil
}

// resolveCastle reports handled=false when no side was named, letting the
// square search run.
func resolveCastle(text string, legal []chessrules.Move) (ResolvedMove, bool, error) {
	var match func(chessrules.Move) bool
	switch {
	case containsAny(text, kingSideWords):
		match = chessrules.Move.IsKingSideCastle
	case containsAny(text, queenSideWords):
		match = chessrules.Move.IsQueenSideCastle
	default:
		return ResolvedMove{}, false, nil
	}

	for _, m := range legal {
		if match(m) {
			return ResolvedMove{From: m.From, To: m.To}, true, nil
		}
	}
	return ResolvedMove{}, true, ErrNoMoveFound
}

func movesTo(legal []chessrules.Move, destination string) []chessrules.Move {
	seen := make(map[string]bool)
	var moves []chessrules.Move
	for _, m := range legal {
		if m.To != destination {
			continue
		}
		// Promotion variants share from and to.
		key := m.From + m.To
		if seen[key] {
			continue
		}
		seen[key] = true
		moves = append(moves, m)
	}
	return moves
}

func filterMoves(moves []chessrules.Move, keep func(chessrules.Move) bool) []chessrules.Move {
	var out []chessrules.Move
	for _, m := range moves {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func hasVariant(legal []chessrules.Move, from, to string, promotion chessrules.PieceType) bool {
	for _, m := range legal {
		if m.From == from && m.To == to && m.Promotion == promotion {
			return true
		}
	}
	return false
}

func firstPiece(words []string) chessrules.PieceType {
	for _, w := range words {
		if piece := pieceFromWord(w); piece != chessrules.NoPiece {
			return piece
		}
	}
	return chessrules.NoPiece
}

func spokenPromotion(words []string) chessrules.PieceType {
	piece := firstPiece(words)
	switch piece {
	case chessrules.Queen, chessrules.Rook, chessrules.Bishop, chessrules.Knight:
		return piece
	}
	return chessrules.NoPiece
}

func promotionAfterKeyword(words []string) chessrules.PieceType {
	for i, w := range words {
		for _, kw := range promoteWords {
			if w == kw {
				return spokenPromotion(words[i+1:])
			}
		}
	}
	return chessrules.NoPiece
}

// spokenFile returns a lone file letter such as the "e" of "e takes d5" or
// "exd5". "a" only counts before a capture word, otherwise it is the article.
func spokenFile(words []string) string {
	for i, w := range words {
		if fileCapture.MatchString(w) {
			return w[:1]
		}
		if !fileToken.MatchString(w) {
			continue
		}
		if w == "a" && (i+1 >= len(words) || !captureWords[words[i+1]]) {
			continue
		}
		return w
	}
	return ""
}

// pieceFromWord accepts piece names and a few common misrecognitions. Only
// the long names are matched one edit away, and never for everyday words.
func pieceFromWord(word string) chessrules.PieceType {
	if piece, ok := pieceWords[word]; ok {
		return piece
	}
	if len(word) < minFuzzyLength || notPieceWords[word] {
		return chessrules.NoPiece
	}
	for _, name := range fuzzyPieceNames {
		if levenshtein.ComputeDistance(word, name) <= 1 {
			return pieceWords[name]
		}
	}
	return chessrules.NoPiece
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// MentionsMove reports whether text names a square or castling, which makes
// it a move attempt rather than a command.
func MentionsMove(text string) bool {
	normalized := Normalize(text)
	return squarePattern.MatchString(normalized) ||
		strings.Contains(normalized, "castle") || strings.Contains(normalized, "castling")
}

// Package announce turns game events into short spoken phrases.
package announce

import (
	"fmt"
	"strings"

	"voicechess/pkg/chessrules"
)

type Outcome string

const (
	OutcomeNone      Outcome = ""
	OutcomeCheck     Outcome = "check"
	OutcomeCheckmate Outcome = "checkmate"
	OutcomeStalemate Outcome = "stalemate"
	OutcomeDraw      Outcome = "draw"
	OutcomeTimeout   Outcome = "timeout"
)

const (
	IllegalMove      = "That move is illegal. Please say another legal move."
	NoMoveDetected   = "I could not detect a legal chess move. Please try again."
	VoiceUnavailable = "Voice recognition is unavailable. You can keep playing by clicking."
	WaitForOpponent  = "Please wait for the opponent's move."
	GameOver         = "The game is over."
	NothingToUndo    = "There is no move to undo."
	BoardFlipped     = "Board flipped."
	SoundOn          = "Sound on."
	StoppedListening = "Voice control paused."
	LeavingGame      = "Leaving the game."
	MoveHint         = "Or say a move, like knight to f3, e4, or castle kingside."
)

var pieceNames = map[byte]string{
	'K': "King",
	'Q': "Queen",
	'R': "Rook",
	'B': "Bishop",
	'N': "Knight",
}

// Naturalize reads algebraic notation the way a person would say it:
// "Nf3" is "Knight to f3", "exd5" is "e takes d5", "e8=Q" is "e8 promotes to
// Queen".
func Naturalize(san string) string {
	san = strings.TrimRight(strings.TrimSpace(san), "+#!?")
	switch san {
	case "O-O", "0-0":
		return "castle kingside"
	case "O-O-O", "0-0-0":
		return "castle queenside"
	case "":
		return ""
	}

	var promotion string
	if i := strings.IndexByte(san, '='); i >= 0 {
		if i+1 < len(san) {
			promotion = pieceNames[san[i+1]]
		}
		san = san[:i]
	}

	piece, isPiece := pieceNames[san[0]]
	body := san
	if isPiece {
		body = san[1:]
	}

	var phrase string
	if before, target, capture := strings.Cut(body, "x"); capture {
		switch {
		case isPiece:
			phrase = piece + " takes " + target
		case before != "":
			phrase = before + " takes " + target
		default:
			phrase = "takes " + target
		}
	} else if isPiece {
		// Drop any disambiguation: "Nbd7" is said "Knight to d7".
		target := body
		if len(target) > 2 {
			target = target[len(target)-2:]
		}
		phrase = piece + " to " + target
	} else {
		phrase = body
	}

	if promotion != "" {
		phrase += " promotes to " + promotion
	}
	return phrase
}

// MovePhrase is "You played ..." or "Opponent played ...".
func MovePhrase(byPlayer bool, san string) string {
	who := "Opponent"
	if byPlayer {
		who = "You"
	}
	return fmt.Sprintf("%s played %s", who, Naturalize(san))
}

// OutcomePhrase is empty for OutcomeNone.
func OutcomePhrase(outcome Outcome, winner chessrules.Side) string {
	switch outcome {
	case OutcomeCheck:
		return "Check."
	case OutcomeCheckmate:
		return fmt.Sprintf("Checkmate, %s wins by checkmate.", strings.ToLower(winner.Title()))
	case OutcomeStalemate:
		return "The game is a stalemate."
	case OutcomeDraw:
		return "The game is a draw."
	case OutcomeTimeout:
		return fmt.Sprintf("Time is up. %s wins by timeout.", winner.Title())
	}
	return ""
}

func GameStart(timeControl string, playerSide chessrules.Side) string {
	label := strings.NewReplacer("+", " plus ", "/", " per ").Replace(timeControl)
	return fmt.Sprintf("Game started, %s. You play %s. Say your move when ready.",
		label, strings.ToLower(playerSide.Title()))
}

func Undone(plies int) string {
	if plies == 1 {
		return "Took back one move."
	}
	return fmt.Sprintf("Took back %d moves.", plies)
}

// Package chessrules exposes the rules of chess as a small capability
// interface. Positions are opaque handles owned by the Oracle that produced
// them; callers only read their FEN.
package chessrules

import (
	"errors"
	"strings"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrInvalidFEN  = errors.New("invalid FEN")
	ErrForeignPos  = errors.New("position was not produced by this oracle")
)

type Side string

const (
	White Side = "white"
	Black Side = "black"
)

func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) Title() string {
	if s == White {
		return "White"
	}
	return "Black"
}

func ParseSide(raw string) (Side, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "white", "w":
		return White, true
	case "black", "b":
		return Black, true
	}
	return "", false
}

type PieceType uint8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var pieceNames = map[PieceType]string{
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

var pieceLetters = map[PieceType]string{
	Knight: "n",
	Bishop: "b",
	Rook:   "r",
	Queen:  "q",
}

func (p PieceType) String() string {
	return pieceNames[p]
}

// Letter is the lower-case UCI promotion letter, empty for pawns, kings and
// NoPiece.
func (p PieceType) Letter() string {
	return pieceLetters[p]
}

// PromotionFromLetter maps "q", "r", "b" and "n" (any case) to a piece.
func PromotionFromLetter(letter string) PieceType {
	for piece, l := range pieceLetters {
		if strings.EqualFold(l, letter) {
			return piece
		}
	}
	return NoPiece
}

// Move is a legal move as reported by an Oracle.
type Move struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Piece     PieceType `json:"-"`
	Promotion PieceType `json:"-"`
	Notation  string    `json:"notation"`
}

// UCI renders the move as "e7e8q".
func (m Move) UCI() string {
	return m.From + m.To + m.Promotion.Letter()
}

func (m Move) IsPromotion() bool {
	return m.Promotion != NoPiece
}

func (m Move) IsKingSideCastle() bool {
	return strings.TrimRight(m.Notation, "+#") == "O-O"
}

func (m Move) IsQueenSideCastle() bool {
	return strings.TrimRight(m.Notation, "+#") == "O-O-O"
}

type Position interface {
	FEN() string
}

// Oracle answers legal-move queries and applies moves. Implementations must
// never mutate a Position they have handed out.
type Oracle interface {
	Start() Position
	Load(fen string) (Position, error)
	LegalMoves(pos Position) []Move
	Apply(pos Position, from, to string, promotion PieceType) (Position, Move, error)
	IsCheck(pos Position) bool
	IsCheckmate(pos Position) bool
	IsStalemate(pos Position) bool
	IsDraw(pos Position) bool
	Turn(pos Position) Side
}

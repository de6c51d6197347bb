package chessrules

import (
	"fmt"

	"github.com/notnil/chess"
)

// position wraps a notnil game. The game is replayed from startFEN instead of
// mutated so every handle stays valid after later moves.
type position struct {
	startFEN string
	game     *chess.Game
}

func (p *position) FEN() string {
	return p.game.Position().String()
}

// Standard is the Oracle for orthodox chess backed by github.com/notnil/chess.
type Standard struct{}

func NewStandard() *Standard {
	return &Standard{}
}

func (s *Standard) Start() Position {
	game := chess.NewGame()
	return &position{startFEN: game.Position().String(), game: game}
}

func (s *Standard) Load(fen string) (Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	game := chess.NewGame(opt)
	return &position{startFEN: fen, game: game}, nil
}

func (s *Standard) LegalMoves(pos Position) []Move {
	p, err := unwrap(pos)
	if err != nil {
		return nil
	}

	current := p.game.Position()
	valid := p.game.ValidMoves()
	moves := make([]Move, 0, len(valid))
	for _, m := range valid {
		moves = append(moves, convertMove(current, m))
	}
	return moves
}

// Apply plays from-to on a copy of pos. A promotion move with no promotion
// piece promotes to a queen.
func (s *Standard) Apply(pos Position, from, to string, promotion PieceType) (Position, Move, error) {
	p, err := unwrap(pos)
	if err != nil {
		return nil, Move{}, err
	}

	current := p.game.Position()
	for _, m := range p.game.ValidMoves() {
		if m.S1().String() != from || m.S2().String() != to {
			continue
		}
		if m.Promo() != chess.NoPieceType {
			want := toNotnil(promotion)
			if want == chess.NoPieceType {
				want = chess.Queen
			}
			if m.Promo() != want {
				continue
			}
		}

		next, err := p.replay()
		if err != nil {
			return nil, Move{}, err
		}
		if err := next.game.Move(m); err != nil {
			return nil, Move{}, fmt.Errorf("%w: %v", ErrIllegalMove, err)
		}
		return next, convertMove(current, m), nil
	}

	return nil, Move{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
}

// IsCheck relies on the check tag of the last move, so a position loaded from
// FEN without history only reports check once it is mate.
func (s *Standard) IsCheck(pos Position) bool {
	p, err := unwrap(pos)
	if err != nil {
		return false
	}
	if p.game.Position().Status() == chess.Checkmate {
		return true
	}
	moves := p.game.Moves()
	if len(moves) == 0 {
		return false
	}
	return moves[len(moves)-1].HasTag(chess.Check)
}

func (s *Standard) IsCheckmate(pos Position) bool {
	p, err := unwrap(pos)
	if err != nil {
		return false
	}
	return p.game.Position().Status() == chess.Checkmate
}

func (s *Standard) IsStalemate(pos Position) bool {
	p, err := unwrap(pos)
	if err != nil {
		return false
	}
	return p.game.Position().Status() == chess.Stalemate
}

// IsDraw covers automatic draws (insufficient material, fivefold repetition,
// seventy-five moves) and the claimable threefold and fifty-move rules.
// Stalemate is reported separately.
func (s *Standard) IsDraw(pos Position) bool {
	p, err := unwrap(pos)
	if err != nil {
		return false
	}
	if p.game.Outcome() == chess.Draw && p.game.Method() != chess.Stalemate {
		return true
	}
	for _, method := range p.game.EligibleDraws() {
		if method == chess.ThreefoldRepetition || method == chess.FiftyMoveRule {
			return true
		}
	}
	return false
}

func (s *Standard) Turn(pos Position) Side {
	p, err := unwrap(pos)
	if err != nil {
		return White
	}
	if p.game.Position().Turn() == chess.Black {
		return Black
	}
	return White
}

func unwrap(pos Position) (*position, error) {
	p, ok := pos.(*position)
	if !ok || p == nil || p.game == nil {
		return nil, ErrForeignPos
	}
	return p, nil
}

func (p *position) replay() (*position, error) {
	opt, err := chess.FEN(p.startFEN)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	game := chess.NewGame(opt)
	for _, m := range p.game.Moves() {
		if err := game.Move(m); err != nil {
			return nil, fmt.Errorf("replay %s: %w", m.String(), err)
		}
	}
	return &position{startFEN: p.startFEN, game: game}, nil
}

func convertMove(pos *chess.Position, m *chess.Move) Move {
	return Move{
		From:      m.S1().String(),
		To:        m.S2().String(),
		Piece:     fromNotnil(pos.Board().Piece(m.S1()).Type()),
		Promotion: fromNotnil(m.Promo()),
		Notation:  chess.AlgebraicNotation{}.Encode(pos, m),
	}
}

func fromNotnil(t chess.PieceType) PieceType {
	switch t {
	case chess.Pawn:
		return Pawn
	case chess.Knight:
		return Knight
	case chess.Bishop:
		return Bishop
	case chess.Rook:
		return Rook
	case chess.Queen:
		return Queen
	case chess.King:
		return King
	}
	return NoPiece
}

func toNotnil(t PieceType) chess.PieceType {
	switch t {
	case Pawn:
		return chess.Pawn
	case Knight:
		return chess.Knight
	case Bishop:
		return chess.Bishop
	case Rook:
		return chess.Rook
	case Queen:
		return chess.Queen
	case King:
		return chess.King
	}
	return chess.NoPieceType
}

package game

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("position off the board")
	ErrNoPiece     = errors.New("no piece to move")
	ErrNotYourTurn = errors.New("not your turn")
	ErrOwnPiece    = errors.New("cannot capture own piece")
	ErrIllegalMove = errors.New("illegal move")
)

// ValidateMove checks whether the piece at from may move to to. Only geometry and
// occupancy are considered; a move that leaves the mover's king attacked is accepted.
func ValidateMove(s GameState, from, to Position) error {
	if !from.InBounds() || !to.InBounds() {
		return ErrOutOfBounds
	}

	piece := s.Board.At(from)
	if piece.IsEmpty() {
		return fmt.Errorf("%w at %s", ErrNoPiece, from)
	}
	if piece.Color != s.Turn {
		return ErrNotYourTurn
	}

	// Check if destination has own piece
	if dest := s.Board.At(to); !dest.IsEmpty() && dest.Color == piece.Color {
		return ErrOwnPiece
	}

	if !s.Board.canMove(piece, from, to) {
		return fmt.Errorf("%w: %s cannot move %s-%s", ErrIllegalMove, pieceName(piece.Type), from, to)
	}
	return nil
}

// IsValidMove is ValidateMove as a predicate
func IsValidMove(s GameState, from, to Position) bool {
	return ValidateMove(s, from, to) == nil
}

// Targets returns every square the piece at from may move to, in board order
func Targets(s GameState, from Position) []Position {
	var out []Position
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			to := Position{Row: r, Col: c}
			if IsValidMove(s, from, to) {
				out = append(out, to)
			}
		}
	}
	return out
}

// canMove applies the per-piece movement rules. Destination ownership has
// already been checked by the caller.
func (b *Board) canMove(piece Piece, from, to Position) bool {
	switch piece.Type {
	case Pawn:
		return b.isValidPawnMove(from, to, piece.Color)
	case Knight:
		return isValidKnightMove(from, to)
	case Bishop:
		return b.isValidBishopMove(from, to)
	case Rook:
		return b.isValidRookMove(from, to)
	case Queen:
		return b.isValidQueenMove(from, to)
	case King:
		return isValidKingMove(from, to)
	}
	return false
}

func (b *Board) isValidPawnMove(from, to Position, color Color) bool {
	// White moves up the board towards row 0
	direction := -1
	startRow := 6
	if color == Black {
		direction = 1
		startRow = 1
	}

	colDiff := abs(to.Col - from.Col)
	rowDiff := to.Row - from.Row
	target := b.At(to)

	// Forward move
	if colDiff == 0 {
		if rowDiff == direction && target.IsEmpty() {
			return true
		}
		// Double move from starting position
		if from.Row == startRow && rowDiff == 2*direction {
			mid := Position{Row: from.Row + direction, Col: from.Col}
			return b.At(mid).IsEmpty() && target.IsEmpty()
		}
		return false
	}

	// Capture
	return colDiff == 1 && rowDiff == direction && !target.IsEmpty()
}

func isValidKnightMove(from, to Position) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	return (rowDiff == 2 && colDiff == 1) || (rowDiff == 1 && colDiff == 2)
}

func (b *Board) isValidBishopMove(from, to Position) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	if rowDiff != colDiff || rowDiff == 0 {
		return false
	}
	return b.isPathClear(from, to)
}

func (b *Board) isValidRookMove(from, to Position) bool {
	if from.Row != to.Row && from.Col != to.Col {
		return false
	}
	if from == to {
		return false
	}
	return b.isPathClear(from, to)
}

func (b *Board) isValidQueenMove(from, to Position) bool {
	return b.isValidBishopMove(from, to) || b.isValidRookMove(from, to)
}

func isValidKingMove(from, to Position) bool {
	rowDiff := abs(to.Row - from.Row)
	colDiff := abs(to.Col - from.Col)
	return rowDiff <= 1 && colDiff <= 1 && (rowDiff+colDiff) > 0
}

// isPathClear reports whether every square strictly between from and to is
// empty. from and to must share a row, a column or a diagonal.
func (b *Board) isPathClear(from, to Position) bool {
	rowDir := sign(to.Row - from.Row)
	colDir := sign(to.Col - from.Col)

	r, c := from.Row+rowDir, from.Col+colDir
	for r != to.Row || c != to.Col {
		if !b[r][c].IsEmpty() {
			return false
		}
		r += rowDir
		c += colDir
	}
	return true
}

func pieceName(t PieceType) string {
	switch t {
	case Pawn:
		return "pawn"
	case Rook:
		return "rook"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "piece"
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}

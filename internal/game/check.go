package game

// Real check detection. Nothing in the move path calls this; the server runs it
// when rules.detectCheck is set.

// IsInCheck returns true if the given side's king is attacked. A side without
// a king is never in check.
func IsInCheck(b Board, color Color) bool {
	king, found := b.findKing(color)
	if !found {
		return false
	}

	// Check if any enemy piece can attack the king
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece.IsEmpty() || piece.Color == color {
				continue
			}
			if b.attacks(piece, Position{Row: r, Col: c}, king) {
				return true
			}
		}
	}
	return false
}

func (b *Board) findKing(color Color) (Position, bool) {
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if p := b[r][c]; p.Type == King && p.Color == color {
				return Position{Row: r, Col: c}, true
			}
		}
	}
	return Position{}, false
}

// attacks differs from canMove only for pawns, which attack diagonally whether
// or not the target square is occupied.
func (b *Board) attacks(piece Piece, from, to Position) bool {
	if piece.Type != Pawn {
		return b.canMove(piece, from, to)
	}
	direction := -1
	if piece.Color == Black {
		direction = 1
	}
	return abs(to.Col-from.Col) == 1 && to.Row-from.Row == direction
}

// LegalMoves returns the moves for the side to move that pass ValidateMove and
// do not leave the mover's own king attacked.
func LegalMoves(s GameState) []Move {
	var moves []Move
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			from := Position{Row: r, Col: c}
			if p := s.Board.At(from); p.IsEmpty() || p.Color != s.Turn {
				continue
			}
			for _, to := range Targets(s, from) {
				trial := s.Board
				applyToBoard(&trial, from, to)
				if !IsInCheck(trial, s.Turn) {
					moves = append(moves, Move{From: from, To: to})
				}
			}
		}
	}
	return moves
}

// Evaluate returns a copy of s with Check, Checkmate and Stalemate computed
// for the side to move.
func Evaluate(s GameState) GameState {
	next := s.Clone()
	inCheck := IsInCheck(s.Board, s.Turn)
	noMoves := len(LegalMoves(s)) == 0

	next.Check = inCheck
	next.Checkmate = inCheck && noMoves
	next.Stalemate = !inCheck && noMoves
	return next
}

package game

// MakeMove applies a move and returns the new game state. The move is not
// validated: callers check IsValidMove first. Moving from an empty square
// leaves the destination empty rather than failing.
func MakeMove(s GameState, from, to Position) GameState {
	next := s.Clone()
	applyPly(&next, from, to)

	// Check detection is opt-in, see Evaluate
	next.Check = false
	next.Checkmate = false
	return next
}

// applyPly performs one already-accepted ply on s: capture bookkeeping, the
// board change, promotion, the move log entry, last move and turn. Live play and
// replay both go through here.
func applyPly(s *GameState, from, to Position) {
	if captured := applyToBoard(&s.Board, from, to); !captured.IsEmpty() {
		s.CapturedPieces.add(captured)
	}
	s.MoveHistory = append(s.MoveHistory, Move{From: from, To: to}.String())
	s.LastMove = &Move{From: from, To: to}
	s.Turn = s.Turn.Opponent()
}

// applyToBoard moves whatever is on from to to, promotes a pawn reaching the far
// rank to a queen, and returns the piece that stood on to.
func applyToBoard(b *Board, from, to Position) Piece {
	piece := b.At(from)
	captured := b.At(to)

	b.Set(to, piece)
	b.Set(from, Piece{})

	// Handle pawn promotion, always to a queen
	if piece.Type == Pawn {
		if (piece.Color == White && to.Row == 0) || (piece.Color == Black && to.Row == 7) {
			b.Set(to, Piece{Type: Queen, Color: piece.Color})
		}
	}
	return captured
}

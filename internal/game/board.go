package game

// Board is the 8x8 grid, row-major, row 0 at the top (rank 8).
// Each cell holds at most one piece; the zero Piece is an empty square.
type Board [8][8]Piece

// At returns the piece at pos. Off-board positions read as empty.
func (b *Board) At(pos Position) Piece {
	if !pos.InBounds() {
		return Piece{}
	}
	return b[pos.Row][pos.Col]
}

// Set places p at pos and reports whether pos was on the board
func (b *Board) Set(pos Position, p Piece) bool {
	if !pos.InBounds() {
		return false
	}
	b[pos.Row][pos.Col] = p
	return true
}

// Count returns the number of occupied squares
func (b *Board) Count() int {
	n := 0
	for r := 0; r < 8; r++ {
		for c := 0; c < 8; c++ {
			if !b[r][c].IsEmpty() {
				n++
			}
		}
	}
	return n
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// InitialBoard returns the standard starting position
func InitialBoard() Board {
	var b Board
	for c := 0; c < 8; c++ {
		b[0][c] = Piece{Type: backRank[c], Color: Black}
		b[1][c] = Piece{Type: Pawn, Color: Black}
		b[6][c] = Piece{Type: Pawn, Color: White}
		b[7][c] = Piece{Type: backRank[c], Color: White}
	}
	return b
}

// GameState is the unit of truth for one game. Operations in this package
// never modify a GameState in place; they return a new value.
type GameState struct {
	Board     Board `json:"board" bson:"board"`
	Turn      Color `json:"turn" bson:"turn"`
	Check     bool  `json:"check" bson:"check"`
	Checkmate bool  `json:"checkmate" bson:"checkmate"`
	Stalemate bool  `json:"stalemate" bson:"stalemate"`
	// LastMove is nil until the first move
	LastMove       *Move    `json:"lastMove,omitempty" bson:"lastMove,omitempty"`
	MoveHistory    []string `json:"moveHistory" bson:"moveHistory"`
	CapturedPieces Captures `json:"capturedPieces" bson:"capturedPieces"`
}

// NewGame returns the state at the start of a game
func NewGame() GameState {
	return GameState{
		Board:          InitialBoard(),
		Turn:           White,
		MoveHistory:    []string{},
		CapturedPieces: Captures{White: []PieceType{}, Black: []PieceType{}},
	}
}

// Clone returns a deep copy sharing no memory with s
func (s GameState) Clone() GameState {
	c := s
	if s.LastMove != nil {
		lm := *s.LastMove
		c.LastMove = &lm
	}
	c.MoveHistory = append([]string{}, s.MoveHistory...)
	c.CapturedPieces = s.CapturedPieces.clone()
	return c
}

// MoveCount returns the number of plies recorded
func (s GameState) MoveCount() int {
	return len(s.MoveHistory)
}

package game

import (
	"encoding/json"
	"fmt"
	"unicode"
)

// Color is the side a piece belongs to. The values double as the FEN active-color field.
type Color string

const (
	White Color = "w"
	Black Color = "b"
)

// Opponent returns the other side
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Name returns "White" or "Black"
func (c Color) Name() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// PieceType is the lowercase piece letter
type PieceType string

// Piece types
const (
	Pawn   PieceType = "p"
	Rook   PieceType = "r"
	Knight PieceType = "n"
	Bishop PieceType = "b"
	Queen  PieceType = "q"
	King   PieceType = "k"
)

func (t PieceType) valid() bool {
	switch t {
	case Pawn, Rook, Knight, Bishop, Queen, King:
		return true
	}
	return false
}

// Piece is an immutable piece value. The zero Piece is an empty square.
type Piece struct {
	Type  PieceType `json:"type" bson:"type,omitempty"`
	Color Color     `json:"color" bson:"color,omitempty"`
}

// IsEmpty reports whether the square holds nothing
func (p Piece) IsEmpty() bool {
	return p.Type == ""
}

// Letter returns the piece letter, uppercase for white and lowercase for black.
// An empty square is a space.
func (p Piece) Letter() rune {
	if p.IsEmpty() {
		return ' '
	}
	r := rune(p.Type[0])
	if p.Color == White {
		return unicode.ToUpper(r)
	}
	return r
}

// PieceFromLetter is the inverse of Letter; the color is inferred from the case.
func PieceFromLetter(r rune) (Piece, bool) {
	t := PieceType(string(unicode.ToLower(r)))
	if !t.valid() {
		return Piece{}, false
	}
	color := Black
	if unicode.IsUpper(r) {
		color = White
	}
	return Piece{Type: t, Color: color}, true
}

// MarshalJSON writes empty squares as null
func (p Piece) MarshalJSON() ([]byte, error) {
	if p.IsEmpty() {
		return []byte("null"), nil
	}
	type piece Piece
	return json.Marshal(piece(p))
}

// UnmarshalJSON accepts null for an empty square
func (p *Piece) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = Piece{}
		return nil
	}
	type piece Piece
	var v piece
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if !v.Type.valid() || (v.Color != White && v.Color != Black) {
		return fmt.Errorf("invalid piece %q/%q", v.Type, v.Color)
	}
	*p = Piece(v)
	return nil
}

// Position represents a square on the board.
// Row 0 is rank 8 (black's back rank), Col 0 is file a.
type Position struct {
	Row int `json:"row" bson:"row"`
	Col int `json:"col" bson:"col"`
}

// InBounds reports whether the position is on the board
func (p Position) InBounds() bool {
	return p.Row >= 0 && p.Row < 8 && p.Col >= 0 && p.Col < 8
}

// String converts Position to algebraic notation (e.g. "e4")
func (p Position) String() string {
	return fmt.Sprintf("%c%d", 'a'+p.Col, 8-p.Row)
}

// ParseSquare converts algebraic notation (e.g. "e4") to a Position
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("invalid square: %q", s)
	}
	col := int(s[0]) - 'a'
	row := 8 - (int(s[1]) - '0')
	pos := Position{Row: row, Col: col}
	if !pos.InBounds() {
		return Position{}, fmt.Errorf("invalid square: %q", s)
	}
	return pos, nil
}

// Move is a from/to pair, used for last-move highlighting
type Move struct {
	From Position `json:"from" bson:"from"`
	To   Position `json:"to" bson:"to"`
}

// String returns the move log notation, e.g. "e2-e4"
func (m Move) String() string {
	return m.From.String() + "-" + m.To.String()
}

// Captures holds captured piece types keyed by the color of the captured piece,
// in capture order. Black holds what white has taken and vice versa.
type Captures struct {
	White []PieceType `json:"w" bson:"w"`
	Black []PieceType `json:"b" bson:"b"`
}

// Of returns the captured pieces of the given color
func (c Captures) Of(color Color) []PieceType {
	if color == Black {
		return c.Black
	}
	return c.White
}

func (c *Captures) add(p Piece) {
	if p.Color == Black {
		c.Black = append(c.Black, p.Type)
	} else {
		c.White = append(c.White, p.Type)
	}
}

func (c Captures) clone() Captures {
	return Captures{
		White: append([]PieceType{}, c.White...),
		Black: append([]PieceType{}, c.Black...),
	}
}

package game

import (
	"fmt"
	"strings"
)

// Snapshot is the game as it stood after Index plies
type Snapshot struct {
	State GameState `json:"state"`
	Index int       `json:"index"`
	// Live is true when Index is the end of the history, i.e. not a replay
	Live bool `json:"live"`
}

// ParseMoveNotation parses a move log entry such as "e2-e4"
func ParseMoveNotation(s string) (Move, error) {
	fromStr, toStr, ok := strings.Cut(s, "-")
	if !ok {
		return Move{}, fmt.Errorf("invalid move notation: %q", s)
	}
	from, err := ParseSquare(fromStr)
	if err != nil {
		return Move{}, fmt.Errorf("invalid move notation %q: %w", s, err)
	}
	to, err := ParseSquare(toStr)
	if err != nil {
		return Move{}, fmt.Errorf("invalid move notation %q: %w", s, err)
	}
	return Move{From: from, To: to}, nil
}

// Replay rebuilds the game after the first k entries of history, starting from
// origin's board and turn. k is clamped to [0, len(history)]. Entries are trusted
// to have been legal when played and are not validated again.
func Replay(origin GameState, history []string, k int) (Snapshot, error) {
	if k < 0 {
		k = 0
	}
	if k > len(history) {
		k = len(history)
	}

	state := GameState{
		Board:          origin.Board,
		Turn:           origin.Turn,
		MoveHistory:    make([]string, 0, k),
		CapturedPieces: Captures{White: []PieceType{}, Black: []PieceType{}},
	}
	for i := 0; i < k; i++ {
		m, err := ParseMoveNotation(history[i])
		if err != nil {
			return Snapshot{}, fmt.Errorf("replay ply %d: %w", i+1, err)
		}
		applyPly(&state, m.From, m.To)
	}

	return Snapshot{State: state, Index: k, Live: k == len(history)}, nil
}

// MoveRow is one numbered line of the move list: white's ply and black's reply
type MoveRow struct {
	Number int    `json:"number"`
	White  string `json:"white"`
	Black  string `json:"black,omitempty"`
}

// PairMoves groups the move log into numbered white/black rows. The log is
// assumed to start with a white move.
func PairMoves(history []string) []MoveRow {
	rows := make([]MoveRow, 0, (len(history)+1)/2)
	for i, m := range history {
		if i%2 == 0 {
			rows = append(rows, MoveRow{Number: i/2 + 1, White: m})
		} else {
			rows[len(rows)-1].Black = m
		}
	}
	return rows
}

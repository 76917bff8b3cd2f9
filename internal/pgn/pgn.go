// Package pgn exports a move log as Portable Game Notation with SAN moves.
package pgn

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/notnil/chess"

	"slack-chess/internal/game"
)

// ErrNotStandard is returned when a logged move is not legal under the full
// rules of chess. The in-app rules accept some of those, e.g. leaving the own
// king in check, so not every game can be exported.
var ErrNotStandard = errors.New("game cannot be expressed in standard chess")

const lineWidth = 80

// Tags are the descriptive PGN headers. Zero values fall back to defaults.
type Tags struct {
	Event string
	Site  string
	Date  time.Time
	White string
	Black string
}

func (t Tags) withDefaults() Tags {
	if t.Event == "" {
		t.Event = "Slack Chess game"
	}
	if t.Site == "" {
		t.Site = "Slack"
	}
	if t.White == "" {
		t.White = "White"
	}
	if t.Black == "" {
		t.Black = "Black"
	}
	return t
}

// Export replays history from origin through a full rules engine and renders
// the result as PGN.
func Export(origin game.GameState, history []string, tags Tags) (string, error) {
	tags = tags.withDefaults()

	standard := isStandardStart(origin)
	g, err := newEngineGame(origin, standard)
	if err != nil {
		return "", err
	}

	sans := make([]string, 0, len(history))
	for i, entry := range history {
		if err := push(g, entry); err != nil {
			return "", fmt.Errorf("%w: ply %d (%s): %v", ErrNotStandard, i+1, entry, err)
		}
		moves := g.Moves()
		positions := g.Positions()
		last := len(moves) - 1
		sans = append(sans, chess.AlgebraicNotation{}.Encode(positions[last], moves[last]))
	}

	result := string(g.Outcome())

	var sb strings.Builder
	writeTag(&sb, "Event", tags.Event)
	writeTag(&sb, "Site", tags.Site)
	writeTag(&sb, "Date", pgnDate(tags.Date))
	writeTag(&sb, "Round", "-")
	writeTag(&sb, "White", tags.White)
	writeTag(&sb, "Black", tags.Black)
	writeTag(&sb, "Result", result)
	if !standard {
		writeTag(&sb, "SetUp", "1")
		writeTag(&sb, "FEN", originFEN(origin))
	}
	sb.WriteString("\n")
	sb.WriteString(wrap(movetext(sans, origin.Turn, result), lineWidth))
	sb.WriteString("\n")

	return sb.String(), nil
}

func isStandardStart(s game.GameState) bool {
	return s.Board == game.InitialBoard() && s.Turn == game.White
}

// originFEN drops castling rights; the game has no castling and an imported
// board says nothing about which pieces have moved.
func originFEN(s game.GameState) string {
	fields := strings.Fields(game.ToFEN(s))
	return fields[0] + " " + fields[1] + " - - 0 1"
}

func newEngineGame(origin game.GameState, standard bool) (*chess.Game, error) {
	if standard {
		return chess.NewGame(), nil
	}
	if err := playable(origin); err != nil {
		return nil, err
	}
	opt, err := chess.FEN(originFEN(origin))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStandard, err)
	}
	return chess.NewGame(opt), nil
}

// playable rejects positions the rules engine cannot represent
func playable(s game.GameState) error {
	for _, c := range []game.Color{game.White, game.Black} {
		kings := 0
		for r := 0; r < 8; r++ {
			for col := 0; col < 8; col++ {
				if p := s.Board[r][col]; p.Type == game.King && p.Color == c {
					kings++
				}
			}
		}
		if kings != 1 {
			return fmt.Errorf("%w: %s has %d kings", ErrNotStandard, c.Name(), kings)
		}
	}
	return nil
}

func push(g *chess.Game, entry string) error {
	mv, err := game.ParseMoveNotation(entry)
	if err != nil {
		return err
	}
	uci := mv.From.String() + mv.To.String()

	pos := g.Position()
	decoded, err := chess.UCINotation{}.Decode(pos, uci)
	if err != nil {
		return err
	}
	// Pawns reaching the last rank always become queens
	if pos.Board().Piece(decoded.S1()).Type() == chess.Pawn &&
		(decoded.S2().Rank() == chess.Rank8 || decoded.S2().Rank() == chess.Rank1) {
		if decoded, err = (chess.UCINotation{}).Decode(pos, uci+"q"); err != nil {
			return err
		}
	}
	return g.Move(decoded)
}

func movetext(sans []string, firstTurn game.Color, result string) string {
	offset := 0
	if firstTurn == game.Black {
		offset = 1
	}

	parts := make([]string, 0, len(sans)*3/2+2)
	for i, san := range sans {
		ply := i + offset
		switch {
		case ply%2 == 0:
			parts = append(parts, fmt.Sprintf("%d.", ply/2+1))
		case i == 0:
			parts = append(parts, "1...")
		}
		parts = append(parts, san)
	}
	parts = append(parts, result)
	return strings.Join(parts, " ")
}

func wrap(text string, width int) string {
	var sb strings.Builder
	lineLen := 0
	for _, word := range strings.Fields(text) {
		if lineLen > 0 && lineLen+1+len(word) > width {
			sb.WriteString("\n")
			lineLen = 0
		} else if lineLen > 0 {
			sb.WriteString(" ")
			lineLen++
		}
		sb.WriteString(word)
		lineLen += len(word)
	}
	return sb.String()
}

func writeTag(sb *strings.Builder, name, value string) {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	fmt.Fprintf(sb, "[%s \"%s\"]\n", name, value)
}

func pgnDate(t time.Time) string {
	if t.IsZero() {
		return "????.??.??"
	}
	return t.Format("2006.01.02")
}

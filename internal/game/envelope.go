package game

import (
	"fmt"
	"strings"
)

// EnvelopeTag marks text as a shared game
const EnvelopeTag = "SLACK-CHESS-GAME"

// ImportErrorMessage is shown to a user whose pasted text could not be loaded
const ImportErrorMessage = "Invalid game format. Please paste a valid Slack Chess game."

// placeholder castling, en passant and clock fields; none of them are tracked
const fenSuffix = " KQkq - 0 1"

// ToFEN returns piece placement and active color followed by fixed placeholder fields
func ToFEN(s GameState) string {
	return placement(&s.Board) + " " + string(s.Turn) + fenSuffix
}

func placement(b *Board) string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		empty := 0
		for c := 0; c < 8; c++ {
			piece := b[r][c]
			if piece.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteRune(rune('0' + empty))
				empty = 0
			}
			sb.WriteRune(piece.Letter())
		}
		if empty > 0 {
			sb.WriteRune(rune('0' + empty))
		}
		if r < 7 {
			sb.WriteRune('/')
		}
	}
	return sb.String()
}

// StatusLine describes the game for humans. Checkmate wins over check, check over
// stalemate.
func StatusLine(s GameState) string {
	switch {
	case s.Checkmate:
		return fmt.Sprintf("Checkmate! %s wins.", s.Turn.Opponent().Name())
	case s.Check:
		return fmt.Sprintf("%s is in check!", s.Turn.Name())
	case s.Stalemate:
		return "Stalemate!"
	default:
		return fmt.Sprintf("%s's turn", s.Turn.Name())
	}
}

// FormatGameState renders the full shareable envelope
func FormatGameState(s GameState) string {
	return EnvelopeTag + "\n" + BoardToASCII(s.Board) + "\n" + StatusLine(s) + "\nFEN:" + ToFEN(s) + "\n"
}

// ParseGameState reads an envelope back into a game state. Only the board, the
// turn and the status flags survive; the move history and captures always come
// back empty because the text does not carry them.
func ParseGameState(text string) (GameState, error) {
	if !strings.Contains(text, EnvelopeTag) {
		return GameState{}, fmt.Errorf("%w: missing %s tag", ErrInvalidFormat, EnvelopeTag)
	}

	// Chat clients may hand us CRLF line endings
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")

	start := indexOf(lines, fileLegend, 0)
	if start == -1 {
		return GameState{}, fmt.Errorf("%w: board not found", ErrInvalidFormat)
	}
	end := indexOf(lines, fileLegend, start+1)
	if end == -1 {
		return GameState{}, fmt.Errorf("%w: board is not closed", ErrInvalidFormat)
	}

	board, err := ASCIIToBoard(strings.Join(lines[start:end+1], "\n"))
	if err != nil {
		return GameState{}, err
	}

	state := NewGame()
	state.Board = board

	// Extract turn from the FEN line if present
	for _, line := range lines {
		if !strings.HasPrefix(line, "FEN:") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(line, "FEN:"), " ")
		if len(parts) >= 2 && parts[1] == string(Black) {
			state.Turn = Black
		}
		break
	}

	// The flags come from free text on the line right after the board, so they
	// are only as good as the sender. FormatGameState leaves that line blank.
	if end+1 < len(lines) {
		status := strings.ToLower(lines[end+1])
		state.Check = strings.Contains(status, "check")
		state.Checkmate = strings.Contains(status, "checkmate")
		state.Stalemate = strings.Contains(status, "stalemate")
	}

	return state, nil
}

func indexOf(lines []string, want string, from int) int {
	for i := from; i < len(lines); i++ {
		if lines[i] == want {
			return i
		}
	}
	return -1
}

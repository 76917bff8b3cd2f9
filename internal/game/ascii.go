package game

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidFormat is returned for any text that is not a board or game in the shared format
var ErrInvalidFormat = errors.New("invalid game format")

const (
	fileLegend    = "  a b c d e f g h"
	rankSeparator = " +-+-+-+-+-+-+-+-+"
	asciiLines    = 19
)

// BoardToASCII renders the board as the fixed 19-line grid used in the shared text.
// White pieces are uppercase, black lowercase, empty squares a space.
func BoardToASCII(b Board) string {
	var sb strings.Builder

	sb.WriteString(fileLegend + "\n")
	sb.WriteString(rankSeparator + "\n")
	for r := 0; r < 8; r++ {
		rank := 8 - r
		fmt.Fprintf(&sb, "%d|", rank)
		for c := 0; c < 8; c++ {
			sb.WriteRune(b[r][c].Letter())
			sb.WriteByte('|')
		}
		fmt.Fprintf(&sb, "%d\n", rank)
		sb.WriteString(rankSeparator + "\n")
	}
	sb.WriteString(fileLegend + "\n")

	return sb.String()
}

// ASCIIToBoard parses the grid produced by BoardToASCII. Only the data rows are
// inspected; legend and separator lines are counted but not checked.
func ASCIIToBoard(text string) (Board, error) {
	var b Board

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != asciiLines {
		return b, fmt.Errorf("%w: board has %d lines, want %d", ErrInvalidFormat, len(lines), asciiLines)
	}

	for r := 0; r < 8; r++ {
		line := lines[2+r*2]
		if len(line) < 2 {
			return b, fmt.Errorf("%w: rank %d is truncated", ErrInvalidFormat, 8-r)
		}

		// Drop the leading rank label; what remains is 8 cells and the trailing label
		fields := strings.Split(line[2:], "|")
		if len(fields) != 9 {
			return b, fmt.Errorf("%w: rank %d has %d fields", ErrInvalidFormat, 8-r, len(fields))
		}

		for c := 0; c < 8; c++ {
			cell := strings.TrimSpace(fields[c])
			if cell == "" {
				continue
			}
			ch, _ := utf8.DecodeRuneInString(cell)
			piece, ok := PieceFromLetter(ch)
			if !ok {
				return b, fmt.Errorf("%w: unknown piece %q on %s", ErrInvalidFormat, ch, Position{Row: r, Col: c})
			}
			b[r][c] = piece
		}
	}

	return b, nil
}

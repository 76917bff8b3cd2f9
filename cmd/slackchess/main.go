// Command slackchess plays a game held entirely in envelope text. It reads the
// envelope from stdin (or -in), applies one command and writes the result to
// stdout, so a game can be moved along by pasting chat messages through it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"slack-chess/internal/game"
)

const usage = `usage: slackchess [-in file] [-detect] <command> [arg]

commands:
  new              print a fresh game envelope
  show             draw the board of the envelope
  move <from-to>   play a move and print the new envelope, e.g. move e2-e4
  targets <square> list the squares the piece on <square> can reach
`

var errUsage = errors.New("bad usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code: 0 on success,
// 1 for a rejected move or unreadable envelope, 2 for bad usage.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("slackchess", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	inPath := fs.String("in", "", "read the envelope from this file instead of stdin")
	detect := fs.Bool("detect", false, "compute check, checkmate and stalemate after a move")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cmd := &command{stdin: stdin, stdout: stdout, inPath: *inPath, detect: *detect}
	err := cmd.dispatch(fs.Args())
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		fmt.Fprint(stderr, usage)
		return 2
	default:
		fmt.Fprintln(stderr, err)
		return 1
	}
}

type command struct {
	stdin  io.Reader
	stdout io.Writer
	inPath string
	detect bool
}

func (c *command) dispatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	name, rest := args[0], args[1:]

	want := map[string]int{"new": 0, "show": 0, "move": 1, "targets": 1}
	n, ok := want[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}
	if len(rest) != n {
		return fmt.Errorf("%w: %s takes %d argument(s)", errUsage, name, n)
	}

	if name == "new" {
		_, err := io.WriteString(c.stdout, game.FormatGameState(game.NewGame()))
		return err
	}

	state, err := c.readState()
	if err != nil {
		return err
	}

	switch name {
	case "show":
		_, err = io.WriteString(c.stdout, renderBoard(state, nil)+game.StatusLine(state)+"\n")
	case "move":
		err = c.move(state, rest[0])
	case "targets":
		err = c.targets(state, rest[0])
	}
	return err
}

func (c *command) readState() (game.GameState, error) {
	var (
		data []byte
		err  error
	)
	if c.inPath != "" {
		data, err = os.ReadFile(c.inPath)
	} else {
		data, err = io.ReadAll(c.stdin)
	}
	if err != nil {
		return game.GameState{}, fmt.Errorf("read envelope: %w", err)
	}

	state, err := game.ParseGameState(string(data))
	if err != nil {
		return game.GameState{}, errors.New(game.ImportErrorMessage)
	}
	return state, nil
}

func (c *command) move(state game.GameState, notation string) error {
	m, err := game.ParseMoveNotation(notation)
	if err != nil {
		return err
	}
	if err := game.ValidateMove(state, m.From, m.To); err != nil {
		return err
	}

	next := game.MakeMove(state, m.From, m.To)
	if c.detect {
		next = game.Evaluate(next)
	}
	_, err = io.WriteString(c.stdout, game.FormatGameState(next))
	return err
}

func (c *command) targets(state game.GameState, square string) error {
	from, err := game.ParseSquare(square)
	if err != nil {
		return err
	}

	targets := game.Targets(state, from)
	names := make([]string, len(targets))
	for i, pos := range targets {
		names[i] = pos.String()
	}
	fmt.Fprint(c.stdout, renderBoard(state, targets))
	fmt.Fprintf(c.stdout, "%s: %s\n", from, strings.Join(names, " "))
	return nil
}

var (
	lightSquare  = color.New(color.BgHiWhite, color.FgBlack)
	darkSquare   = color.New(color.BgGreen, color.FgBlack)
	targetSquare = color.New(color.BgYellow, color.FgBlack)
	whitePiece   = color.New(color.Bold)
)

// renderBoard draws the board with rank and file labels, white at the bottom.
// Squares in highlight are marked.
func renderBoard(state game.GameState, highlight []game.Position) string {
	marked := make(map[game.Position]bool, len(highlight))
	for _, pos := range highlight {
		marked[pos] = true
	}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%d ", 8-row)
		for col := 0; col < 8; col++ {
			pos := game.Position{Row: row, Col: col}
			piece := state.Board.At(pos)

			glyph := " . "
			if !piece.IsEmpty() {
				glyph = " " + string(piece.Letter()) + " "
				if piece.Color == game.White {
					glyph = whitePiece.Sprint(glyph)
				}
			}

			bg := lightSquare
			if (row+col)%2 == 1 {
				bg = darkSquare
			}
			if marked[pos] {
				bg = targetSquare
			}
			sb.WriteString(bg.Sprint(glyph))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a  b  c  d  e  f  g  h\n")
	return sb.String()
}

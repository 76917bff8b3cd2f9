package pgn

import (
	"errors"
	"strings"
	"testing"
	"time"

	"slack-chess/internal/game"
)

func position(t *testing.T, turn game.Color, pieces map[string]game.Piece) game.GameState {
	t.Helper()
	s := game.NewGame()
	s.Board = game.Board{}
	s.Turn = turn
	for square, p := range pieces {
		pos, err := game.ParseSquare(square)
		if err != nil {
			t.Fatal(err)
		}
		s.Board.Set(pos, p)
	}
	return s
}

func TestExportStandardGame(t *testing.T) {
	history := []string{"e2-e4", "e7-e5", "g1-f3", "b8-c6"}
	date := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	got, err := Export(game.NewGame(), history, Tags{Date: date})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := `[Event "Slack Chess game"]
[Site "Slack"]
[Date "2026.10.19"]
[Round "-"]
[White "White"]
[Black "Black"]
[Result "*"]

1. e4 e5 2. Nf3 Nc6 *
`
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestExportCheckmate(t *testing.T) {
	history := []string{"f2-f3", "e7-e5", "g2-g4", "d8-h4"}
	got, err := Export(game.NewGame(), history, Tags{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(got, "1. f3 e5 2. g4 Qh4# 0-1") {
		t.Fatalf("movetext missing mate:\n%s", got)
	}
	if !strings.Contains(got, `[Result "0-1"]`) || !strings.Contains(got, `[Date "????.??.??"]`) {
		t.Fatalf("tags:\n%s", got)
	}
}

func TestExportFromImportedPosition(t *testing.T) {
	shared := game.NewGame()
	shared = game.MakeMove(shared, game.Position{Row: 6, Col: 4}, game.Position{Row: 4, Col: 4})
	origin, err := game.ParseGameState(game.FormatGameState(shared))
	if err != nil {
		t.Fatal(err)
	}

	got, err := Export(origin, []string{"e7-e5", "g1-f3"}, Tags{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(got, `[SetUp "1"]`) {
		t.Fatalf("missing SetUp tag:\n%s", got)
	}
	if !strings.Contains(got, `[FEN "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b - - 0 1"]`) {
		t.Fatalf("missing FEN tag:\n%s", got)
	}
	if !strings.Contains(got, "1... e5 2. Nf3 *") {
		t.Fatalf("movetext:\n%s", got)
	}
}

func TestExportPromotion(t *testing.T) {
	origin := position(t, game.White, map[string]game.Piece{
		"a1": {Type: game.King, Color: game.White},
		"b7": {Type: game.Pawn, Color: game.White},
		"h6": {Type: game.King, Color: game.Black},
	})
	got, err := Export(origin, []string{"b7-b8"}, Tags{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(got, "1. b8=Q *") {
		t.Fatalf("movetext:\n%s", got)
	}
}

func TestExportRejectsNonStandard(t *testing.T) {
	t.Run("king left in check", func(t *testing.T) {
		// the rook on e2 is pinned by the queen on e8
		origin := position(t, game.White, map[string]game.Piece{
			"e1": {Type: game.King, Color: game.White},
			"e2": {Type: game.Rook, Color: game.White},
			"e8": {Type: game.Queen, Color: game.Black},
			"a8": {Type: game.King, Color: game.Black},
		})
		_, err := Export(origin, []string{"e2-a2"}, Tags{})
		if !errors.Is(err, ErrNotStandard) {
			t.Fatalf("got %v, want ErrNotStandard", err)
		}
	})

	t.Run("missing king", func(t *testing.T) {
		origin := position(t, game.White, map[string]game.Piece{
			"e1": {Type: game.King, Color: game.White},
		})
		_, err := Export(origin, nil, Tags{})
		if !errors.Is(err, ErrNotStandard) {
			t.Fatalf("got %v, want ErrNotStandard", err)
		}
	})

	t.Run("malformed entry", func(t *testing.T) {
		_, err := Export(game.NewGame(), []string{"e2e4"}, Tags{})
		if !errors.Is(err, ErrNotStandard) {
			t.Fatalf("got %v, want ErrNotStandard", err)
		}
	})
}

func TestWrap(t *testing.T) {
	words := strings.Repeat("Nf3 ", 40)
	for _, line := range strings.Split(wrap(words, 20), "\n") {
		if len(line) > 20 {
			t.Fatalf("line %q longer than 20", line)
		}
	}
}

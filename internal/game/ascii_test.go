package game

import (
	"errors"
	"strings"
	"testing"
)

const initialASCII = `  a b c d e f g h
 +-+-+-+-+-+-+-+-+
8|r|n|b|q|k|b|n|r|8
 +-+-+-+-+-+-+-+-+
7|p|p|p|p|p|p|p|p|7
 +-+-+-+-+-+-+-+-+
6| | | | | | | | |6
 +-+-+-+-+-+-+-+-+
5| | | | | | | | |5
 +-+-+-+-+-+-+-+-+
4| | | | | | | | |4
 +-+-+-+-+-+-+-+-+
3| | | | | | | | |3
 +-+-+-+-+-+-+-+-+
2|P|P|P|P|P|P|P|P|2
 +-+-+-+-+-+-+-+-+
1|R|N|B|Q|K|B|N|R|1
 +-+-+-+-+-+-+-+-+
  a b c d e f g h
`

func TestBoardToASCIIInitial(t *testing.T) {
	got := BoardToASCII(InitialBoard())
	if got != initialASCII {
		t.Fatalf("got:\n%s\nwant:\n%s", got, initialASCII)
	}
	if n := strings.Count(got, "\n"); n != 19 {
		t.Fatalf("got %d lines, want 19", n)
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	boards := map[string]Board{
		"initial": InitialBoard(),
		"empty":   {},
	}

	s := NewGame()
	for _, m := range []string{"e2-e4", "d7-d5", "e4-d5", "d8-d5", "b1-c3", "d5-a2", "a1-a2"} {
		mv, err := ParseMoveNotation(m)
		if err != nil {
			t.Fatal(err)
		}
		s = MakeMove(s, mv.From, mv.To)
	}
	boards["midgame"] = s.Board

	kingless := InitialBoard()
	kingless[0][4] = Piece{}
	kingless[7][4] = Piece{}
	boards["kingless"] = kingless

	for name, b := range boards {
		t.Run(name, func(t *testing.T) {
			got, err := ASCIIToBoard(BoardToASCII(b))
			if err != nil {
				t.Fatalf("ASCIIToBoard: %v", err)
			}
			if got != b {
				t.Fatalf("round trip mismatch:\n got\n%s\nwant\n%s", BoardToASCII(got), BoardToASCII(b))
			}
		})
	}
}

func TestASCIIToBoardRejects(t *testing.T) {
	lines := strings.Split(strings.TrimSuffix(initialASCII, "\n"), "\n")

	replaceLine := func(i int, s string) string {
		out := append([]string{}, lines...)
		out[i] = s
		return strings.Join(out, "\n")
	}

	cases := map[string]string{
		"empty":          "",
		"too few lines":  strings.Join(lines[:17], "\n"),
		"too many lines": initialASCII + "extra\n",
		"bad piece":      replaceLine(2, "8|r|n|b|x|k|b|n|r|8"),
		"missing cell":   replaceLine(4, "7|p|p|p|p|p|p|p|7"),
		"extra cell":     replaceLine(4, "7|p|p|p|p|p|p|p|p|p|7"),
		"truncated rank": replaceLine(6, "6"),
		"digit as piece": replaceLine(8, "5| | |5| | | | | |5"),
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ASCIIToBoard(text)
			if !errors.Is(err, ErrInvalidFormat) {
				t.Fatalf("got %v, want ErrInvalidFormat", err)
			}
		})
	}
}

func TestASCIIToBoardCellCase(t *testing.T) {
	text := strings.Replace(initialASCII, "4| | | | | | | | |4", "4| |Q| | | |k| | |4", 1)
	b, err := ASCIIToBoard(text)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.At(Position{Row: 4, Col: 1}); got != wQ {
		t.Fatalf("b4 = %+v, want white queen", got)
	}
	if got := b.At(Position{Row: 4, Col: 5}); got != bK {
		t.Fatalf("f4 = %+v, want black king", got)
	}
}

package game

import (
	"reflect"
	"testing"
)

func play(t *testing.T, s GameState, moves ...string) GameState {
	t.Helper()
	for _, m := range moves {
		mv, err := ParseMoveNotation(m)
		if err != nil {
			t.Fatal(err)
		}
		if err := ValidateMove(s, mv.From, mv.To); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		s = MakeMove(s, mv.From, mv.To)
	}
	return s
}

func TestReplay(t *testing.T) {
	live := play(t, NewGame(), "e2-e4", "d7-d5", "e4-d5", "d8-d5", "b1-c3")

	t.Run("start", func(t *testing.T) {
		snap, err := Replay(NewGame(), live.MoveHistory, 0)
		if err != nil {
			t.Fatal(err)
		}
		if snap.State.Board != InitialBoard() || snap.State.Turn != White {
			t.Fatalf("k=0 should be the initial position:\n%s", BoardToASCII(snap.State.Board))
		}
		if snap.Live {
			t.Fatal("k=0 of a non-empty log is not live")
		}
	})

	t.Run("end matches live board", func(t *testing.T) {
		snap, err := Replay(NewGame(), live.MoveHistory, len(live.MoveHistory))
		if err != nil {
			t.Fatal(err)
		}
		if snap.State.Board != live.Board || snap.State.Turn != live.Turn {
			t.Fatalf("replayed board differs from live:\n%s", BoardToASCII(snap.State.Board))
		}
		if !reflect.DeepEqual(snap.State.CapturedPieces, live.CapturedPieces) {
			t.Fatalf("captures = %+v, want %+v", snap.State.CapturedPieces, live.CapturedPieces)
		}
		if !snap.Live {
			t.Fatal("full replay should be live")
		}
	})

	t.Run("middle", func(t *testing.T) {
		snap, err := Replay(NewGame(), live.MoveHistory, 3)
		if err != nil {
			t.Fatal(err)
		}
		want := play(t, NewGame(), "e2-e4", "d7-d5", "e4-d5")
		if snap.State.Board != want.Board {
			t.Fatalf("k=3 board:\n%s", BoardToASCII(snap.State.Board))
		}
		if snap.State.Turn != Black || snap.Index != 3 {
			t.Fatalf("turn=%q index=%d, want b 3", snap.State.Turn, snap.Index)
		}
		if len(snap.State.MoveHistory) != 3 {
			t.Fatalf("history = %v", snap.State.MoveHistory)
		}
	})

	t.Run("clamped", func(t *testing.T) {
		low, err := Replay(NewGame(), live.MoveHistory, -4)
		if err != nil {
			t.Fatal(err)
		}
		if low.Index != 0 || low.State.Board != InitialBoard() {
			t.Fatalf("negative k: index %d", low.Index)
		}
		high, err := Replay(NewGame(), live.MoveHistory, 99)
		if err != nil {
			t.Fatal(err)
		}
		if high.Index != len(live.MoveHistory) || high.State.Board != live.Board {
			t.Fatalf("large k: index %d", high.Index)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		a, err := Replay(NewGame(), live.MoveHistory, 4)
		if err != nil {
			t.Fatal(err)
		}
		b, err := Replay(NewGame(), live.MoveHistory, 4)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Fatal("replaying twice gave different snapshots")
		}
	})
}

func TestReplayEmptyHistory(t *testing.T) {
	snap, err := Replay(NewGame(), nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Live || snap.Index != 0 {
		t.Fatalf("snapshot = %+v, want live at 0", snap)
	}
}

func TestReplayFromImportedOrigin(t *testing.T) {
	// a game shared after 1. e4 e5, then imported and continued
	shared := play(t, NewGame(), "e2-e4", "e7-e5")
	origin, err := ParseGameState(FormatGameState(shared))
	if err != nil {
		t.Fatal(err)
	}
	live := play(t, origin, "g1-f3", "b8-c6")

	snap, err := Replay(origin, live.MoveHistory, 0)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State.Board != shared.Board {
		t.Fatalf("k=0 should be the imported position:\n%s", BoardToASCII(snap.State.Board))
	}

	snap, err = Replay(origin, live.MoveHistory, 2)
	if err != nil {
		t.Fatal(err)
	}
	if snap.State.Board != live.Board {
		t.Fatalf("k=2 board:\n%s", BoardToASCII(snap.State.Board))
	}
}

func TestReplayMalformedEntry(t *testing.T) {
	history := []string{"e2-e4", "nonsense", "g1-f3"}

	if _, err := Replay(NewGame(), history, 1); err != nil {
		t.Fatalf("entries before the bad one should replay: %v", err)
	}
	if _, err := Replay(NewGame(), history, 2); err == nil {
		t.Fatal("expected an error for the malformed entry")
	}
}

func TestParseMoveNotation(t *testing.T) {
	mv, err := ParseMoveNotation("g1-f3")
	if err != nil {
		t.Fatal(err)
	}
	if mv.From != (Position{Row: 7, Col: 6}) || mv.To != (Position{Row: 5, Col: 5}) {
		t.Fatalf("got %+v", mv)
	}
	if mv.String() != "g1-f3" {
		t.Fatalf("String() = %q", mv.String())
	}

	for _, bad := range []string{"", "g1f3", "g1-", "-f3", "z1-f3", "g1-f9"} {
		if _, err := ParseMoveNotation(bad); err == nil {
			t.Errorf("ParseMoveNotation(%q) should fail", bad)
		}
	}
}

func TestPairMoves(t *testing.T) {
	cases := []struct {
		name    string
		history []string
		want    []MoveRow
	}{
		{"empty", nil, []MoveRow{}},
		{"one ply", []string{"e2-e4"}, []MoveRow{{Number: 1, White: "e2-e4"}}},
		{"full row", []string{"e2-e4", "e7-e5"}, []MoveRow{{Number: 1, White: "e2-e4", Black: "e7-e5"}}},
		{
			"odd length",
			[]string{"e2-e4", "e7-e5", "g1-f3"},
			[]MoveRow{{Number: 1, White: "e2-e4", Black: "e7-e5"}, {Number: 2, White: "g1-f3"}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := PairMoves(tc.history); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

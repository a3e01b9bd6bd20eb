package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chessbot/internal/testutil"
)

func openStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := NewStore(path, false, zerolog.Nop())
	testutil.AssertNoError(t, err, "NewStore(%q)", path)
	testutil.AssertNoError(t, s.InitDB(), "InitDB")
	return s
}

func TestRecordAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	start := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	s := openStore(t, path)
	s.RecordNewGame(GameRecord{
		GameID:           "game-1",
		InitialPlacement: "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		WhitePlayerID:    "white-1",
		WhiteType:        1,
		BlackPlayerID:    "black-1",
		BlackType:        2,
		BlackDepth:       2,
		Seed:             42,
		State:            "ongoing",
		StartTimeUTC:     start,
	})
	for i, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		color := "w"
		if i%2 == 1 {
			color = "b"
		}
		s.RecordMove(MoveRecord{
			GameID:         "game-1",
			MoveNumber:     i + 1,
			Move:           mv,
			PlacementAfter: "8/8/8/8/8/8/8/8",
			PlayerColor:    color,
			MoveTimeUTC:    start.Add(time.Duration(i) * time.Second),
		})
	}
	s.DeleteUndoneMoves("game-1", 2)
	s.UpdateGameState("game-1", "white wins")
	testutil.AssertNoError(t, s.Close())
	testutil.AssertTrue(t, s.IsHealthy(), "store healthy after writes")

	s = openStore(t, path)
	defer s.Close()

	games, err := s.QueryGames("game-1", "")
	testutil.AssertNoError(t, err)
	if len(games) != 1 {
		t.Fatalf("QueryGames() returned %d games, want 1", len(games))
	}
	g := games[0]
	testutil.AssertEqual(t, g.BlackPlayerID, "black-1")
	testutil.AssertEqual(t, g.BlackDepth, 2)
	testutil.AssertEqual(t, g.Seed, uint64(42))
	testutil.AssertEqual(t, g.State, "white wins")
	testutil.AssertTrue(t, g.StartTimeUTC.Equal(start), "start time %v", g.StartTimeUTC)

	moves, err := s.QueryMoves("game-1")
	testutil.AssertNoError(t, err)
	got := make([]string, 0, len(moves))
	for _, m := range moves {
		got = append(got, m.Move)
	}
	testutil.AssertEqual(t, got, []string{"e2e4", "e7e5"})

	byPlayer, err := s.QueryGames("*", "white-1")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(byPlayer), 1)

	none, err := s.QueryGames("", "nobody")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(none), 0)
}

func TestDeleteGameCascades(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")

	s := openStore(t, path)
	s.RecordNewGame(GameRecord{GameID: "g", InitialPlacement: "8/8/8/8/8/8/8/8", WhitePlayerID: "w", WhiteType: 2, BlackPlayerID: "b", BlackType: 2, State: "ongoing", StartTimeUTC: time.Now().UTC()})
	s.RecordMove(MoveRecord{GameID: "g", MoveNumber: 1, Move: "e2e4", PlacementAfter: "8/8/8/8/8/8/8/8", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})
	s.DeleteGame("g")
	testutil.AssertNoError(t, s.Close())

	s = openStore(t, path)
	defer s.Close()
	games, err := s.QueryGames("", "")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 0)
	moves, err := s.QueryMoves("g")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(moves), 0)
}

func TestFailedWriteDegradesStore(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "chess.db"))

	// the move references a game that does not exist
	s.RecordMove(MoveRecord{GameID: "missing", MoveNumber: 1, Move: "e2e4", PlacementAfter: "8/8/8/8/8/8/8/8", PlayerColor: "w", MoveTimeUTC: time.Now().UTC()})
	testutil.AssertNoError(t, s.Close())
	testutil.AssertFalse(t, s.IsHealthy())
}

func TestDeleteDB(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chess.db")
	s := openStore(t, path)
	testutil.AssertNoError(t, s.DeleteDB())

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("database file still exists after DeleteDB: %v", err)
	}
}

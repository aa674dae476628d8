package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/repository"
)

type failingStore struct {
	GameStore
}

func (failingStore) AppendMove(context.Context, string, game.Move) error {
	return errors.New("connection reset")
}

func newTestUseCase(t *testing.T) (*GameUseCase, *repository.GameMapStorage) {
	t.Helper()
	mem := repository.NewGameMapStorage()
	return NewGameUseCase(mem, nil, zaptest.NewLogger(t).Sugar(), 19), mem
}

func createGame(t *testing.T, uc *GameUseCase, size int) string {
	t.Helper()
	created, err := uc.CreateGame(context.Background(), size, "alice", "bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created.ID
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)

	created, err := uc.CreateGame(ctx, 0, "alice", "bob")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.BoardSize != 19 || created.Status != game.StatusActive {
		t.Fatalf("unexpected game %+v", created)
	}
	record, err := mem.GetGame(ctx, created.ID)
	if err != nil {
		t.Fatalf("stored game: %v", err)
	}
	if len(record.Board) != 19*19 {
		t.Fatalf("expected an empty 19x19 board, got %d cells", len(record.Board))
	}

	if _, err := uc.CreateGame(ctx, 10, "alice", "bob"); !errors.Is(err, errs.ErrInvalidSize) {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestPlaceStonePersistsMoveAndSnapshot(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 9)

	res, err := uc.PlaceStone(ctx, id, 4, 4, "alice")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if !res.Success || !res.Persisted || res.Move == nil || res.Move.PlayerID != "alice" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.State.CurrentPlayer != game.White {
		t.Fatalf("expected white to move")
	}

	record, _ := mem.GetGame(ctx, id)
	if len(record.Moves) != 1 || record.Moves[0].PlayerID != "alice" {
		t.Fatalf("expected one attributed move record, got %+v", record.Moves)
	}
	if record.Board != res.State.Board {
		t.Fatalf("snapshot not saved")
	}

	state, err := uc.GetState(ctx, id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Moves[0].PlayerID != "alice" {
		t.Fatalf("engine log lost the player id")
	}
}

func TestIllegalMoveIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 9)

	if _, err := uc.PlaceStone(ctx, id, 4, 4, "alice"); err != nil {
		t.Fatalf("place: %v", err)
	}
	res, err := uc.PlaceStone(ctx, id, 4, 4, "bob")
	if reason, ok := errs.IllegalReason(err); !ok || reason != errs.ReasonOccupied {
		t.Fatalf("expected occupied, got %v", err)
	}
	if res.Success {
		t.Fatalf("rejected move reported success")
	}
	record, _ := mem.GetGame(ctx, id)
	if len(record.Moves) != 1 {
		t.Fatalf("expected a single stored move, got %d", len(record.Moves))
	}
}

func TestTwoPassesFinishAndEvict(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 9)

	if _, err := uc.PlaceStone(ctx, id, 4, 4, "alice"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := uc.Pass(ctx, id, "bob"); err != nil {
		t.Fatalf("pass: %v", err)
	}
	res, err := uc.Pass(ctx, id, "alice")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	if !res.State.GameEnded || res.State.Winner != game.WinnerBlack {
		t.Fatalf("expected black to win, got %+v", res.State)
	}
	if uc.Cache().Len() != 0 {
		t.Fatalf("finished game still cached")
	}

	record, _ := mem.GetGame(ctx, id)
	if record.Status != game.StatusFinished || record.WinnerID != "alice" || len(record.Moves) != 3 {
		t.Fatalf("unexpected stored record %+v", record)
	}

	if _, err := uc.Pass(ctx, id, "bob"); !errors.Is(err, errs.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished after rehydration, got %v", err)
	}
}

func TestResign(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 13)

	res, err := uc.Resign(ctx, id, "alice")
	if err != nil {
		t.Fatalf("resign: %v", err)
	}
	if res.State.Winner != game.WinnerWhite {
		t.Fatalf("expected white to win, got %s", res.State.Winner)
	}
	record, _ := mem.GetGame(ctx, id)
	if record.WinnerID != "bob" {
		t.Fatalf("expected bob as winner, got %q", record.WinnerID)
	}
}

func TestUndoRemovesStoredMove(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 9)

	if _, err := uc.Undo(ctx, id, "alice"); !errors.Is(err, errs.ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}
	if _, err := uc.PlaceStone(ctx, id, 4, 4, "alice"); err != nil {
		t.Fatalf("place: %v", err)
	}
	res, err := uc.Undo(ctx, id, "alice")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !res.Persisted || len(res.State.Moves) != 0 || res.State.CurrentPlayer != game.Black {
		t.Fatalf("unexpected undo result %+v", res)
	}
	record, _ := mem.GetGame(ctx, id)
	if len(record.Moves) != 0 || record.Board != res.State.Board {
		t.Fatalf("store not rolled back: %+v", record)
	}
}

func TestPersistenceFailureKeepsInMemoryResult(t *testing.T) {
	ctx := context.Background()
	mem := repository.NewGameMapStorage()
	uc := NewGameUseCase(failingStore{GameStore: mem}, nil, zaptest.NewLogger(t).Sugar(), 9)
	id := createGame(t, uc, 9)

	res, err := uc.PlaceStone(ctx, id, 0, 0, "alice")
	if !errors.Is(err, errs.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if !res.Success || res.Persisted {
		t.Fatalf("expected applied but unpersisted result, got %+v", res)
	}
}

func TestBoardPreviewMirror(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mem := repository.NewGameMapStorage()
	previews := repository.NewBoardPreviewStorage(client, time.Hour)
	uc := NewGameUseCase(mem, previews, zaptest.NewLogger(t).Sugar(), 9)
	id := createGame(t, uc, 9)

	res, err := uc.PlaceStone(ctx, id, 2, 3, "alice")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	preview, err := uc.GetBoardPreview(ctx, id)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Board != res.State.Board || preview.Status != game.StatusActive {
		t.Fatalf("unexpected preview %+v", preview)
	}

	mr.FlushAll()
	preview, err = uc.GetBoardPreview(ctx, id)
	if err != nil {
		t.Fatalf("preview fallback: %v", err)
	}
	if preview.Board != res.State.Board {
		t.Fatalf("fallback preview does not match the stored board")
	}

	if _, err := uc.GetBoardPreview(ctx, "missing"); !errors.Is(err, errs.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestUndoThenRehydrateMatchesLiveState(t *testing.T) {
	ctx := context.Background()
	uc, mem := newTestUseCase(t)
	id := createGame(t, uc, 9)

	if _, err := uc.Pass(ctx, id, "alice"); err != nil {
		t.Fatalf("pass: %v", err)
	}
	if _, err := uc.PlaceStone(ctx, id, 4, 4, "bob"); err != nil {
		t.Fatalf("place: %v", err)
	}
	undone, err := uc.Undo(ctx, id, "bob")
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undone.State.PassCount != 1 {
		t.Fatalf("expected the remaining pass to count, got %d", undone.State.PassCount)
	}

	restarted := NewGameUseCase(mem, nil, zaptest.NewLogger(t).Sugar(), 9)
	rehydrated, err := restarted.GetState(ctx, id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if rehydrated.GameEnded || rehydrated.PassCount != 1 || rehydrated.CurrentPlayer != game.White {
		t.Fatalf("rehydrated state differs from live: %+v", rehydrated)
	}

	live, err := uc.Pass(ctx, id, "bob")
	if err != nil {
		t.Fatalf("pass: %v", err)
	}
	rehydrated, err = NewGameUseCase(mem, nil, zaptest.NewLogger(t).Sugar(), 9).GetState(ctx, id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if live.State.GameEnded != rehydrated.GameEnded || live.State.Winner != rehydrated.Winner {
		t.Fatalf("live ended=%v winner=%q, rehydrated ended=%v winner=%q",
			live.State.GameEnded, live.State.Winner, rehydrated.GameEnded, rehydrated.Winner)
	}
}

func TestFinishedGameStaysOutOfTheCache(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t)
	id := createGame(t, uc, 9)

	if _, err := uc.Resign(ctx, id, "alice"); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if _, err := uc.PlaceStone(ctx, id, 0, 0, "bob"); !errors.Is(err, errs.ErrGameFinished) {
		t.Fatalf("expected ErrGameFinished, got %v", err)
	}
	state, err := uc.GetState(ctx, id)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if !state.GameEnded {
		t.Fatalf("expected finished state")
	}
	if n := uc.Cache().Len(); n != 0 {
		t.Fatalf("finished game was cached again: %v", uc.Cache().ActiveGameIDs())
	}
	if n := uc.locks.len(); n != 0 {
		t.Fatalf("expected no lock entries after the calls returned, got %d", n)
	}
}

func TestFinishedGameDropsItsPreview(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mem := repository.NewGameMapStorage()
	previews := repository.NewBoardPreviewStorage(client, time.Hour)
	uc := NewGameUseCase(mem, previews, zaptest.NewLogger(t).Sugar(), 9)
	id := createGame(t, uc, 9)

	if _, err := previews.GetPreview(ctx, id); err != nil {
		t.Fatalf("expected a preview for the active game: %v", err)
	}
	if _, err := uc.Resign(ctx, id, "alice"); err != nil {
		t.Fatalf("resign: %v", err)
	}
	if _, err := previews.GetPreview(ctx, id); !errors.Is(err, errs.ErrGameNotFound) {
		t.Fatalf("expected the preview to be dropped, got %v", err)
	}

	preview, err := uc.GetBoardPreview(ctx, id)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if preview.Status != game.StatusFinished || preview.Winner != game.WinnerWhite {
		t.Fatalf("expected the final result from the store, got %+v", preview)
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(t)
	first := createGame(t, uc, 9)
	if _, err := uc.PlaceStone(ctx, first, 2, 2, "alice"); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := uc.CreateGame(ctx, 9, "carol", "dave"); err != nil {
		t.Fatalf("create: %v", err)
	}

	games, err := uc.History(ctx, "bob", 0, 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(games) != 1 || games[0].ID != first || len(games[0].Moves) != 1 {
		t.Fatalf("unexpected history %+v", games)
	}

	none, err := uc.History(ctx, "nobody", 5, 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Fatalf("expected an empty non-nil list, got %v (%v)", none, err)
	}
	if _, err := uc.History(ctx, "", 5, 0); !errors.Is(err, errs.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := uc.History(ctx, "bob", -1, 0); !errors.Is(err, errs.ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}

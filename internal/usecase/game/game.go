package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/goban"
)

type GameStore interface {
	CreateGame(ctx context.Context, gameData game.Game) error
	GetGame(ctx context.Context, gameID string) (game.Game, error)
	AppendMove(ctx context.Context, gameID string, move game.Move) error
	DeleteMove(ctx context.Context, gameID string, moveNumber int) error
	SaveSnapshot(ctx context.Context, gameID string, snap game.Snapshot) error
	GetHistory(ctx context.Context, playerID string, limit, offset int) ([]game.Game, error)
}

type PreviewStore interface {
	SavePreview(ctx context.Context, preview game.BoardPreview) error
	GetPreview(ctx context.Context, gameID string) (game.BoardPreview, error)
	DeletePreview(ctx context.Context, gameID string) error
}

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type GameUseCase struct {
	store            GameStore
	previews         PreviewStore
	cache            *StateCache
	log              *zap.SugaredLogger
	defaultBoardSize int

	locks *gameLocks
}

// NewGameUseCase wires the use case. previews may be nil, in which case
// board previews are served from the store.
func NewGameUseCase(store GameStore, previews PreviewStore, log *zap.SugaredLogger, defaultBoardSize int) *GameUseCase {
	return &GameUseCase{
		store:            store,
		previews:         previews,
		cache:            NewStateCache(store, log),
		log:              log,
		defaultBoardSize: defaultBoardSize,
		locks:            newGameLocks(),
	}
}

func (g *GameUseCase) Cache() *StateCache {
	return g.cache
}

func (g *GameUseCase) lock(gameID string) func() {
	return g.locks.lock(gameID)
}

func (g *GameUseCase) CreateGame(ctx context.Context, boardSize int, playerBlack, playerWhite string) (game.Game, error) {
	if boardSize == 0 {
		boardSize = g.defaultBoardSize
	}
	e, err := goban.New(boardSize)
	if err != nil {
		return game.Game{}, err
	}

	newGame := game.Game{
		ID:          uuid.NewString(),
		BoardSize:   boardSize,
		Board:       e.State().Board,
		Status:      game.StatusActive,
		PlayerBlack: playerBlack,
		PlayerWhite: playerWhite,
		CreatedAt:   time.Now(),
	}
	if err := g.store.CreateGame(ctx, newGame); err != nil {
		return game.Game{}, fmt.Errorf("%w: %v", errs.ErrPersistence, err)
	}
	g.cache.Put(newGame.ID, e)
	g.mirror(ctx, newGame.ID, e.State())

	g.log.Infof("game %s created (%dx%d) black=%q white=%q", newGame.ID, boardSize, boardSize, playerBlack, playerWhite)
	return newGame, nil
}

func (g *GameUseCase) GetState(ctx context.Context, gameID string) (game.GameState, error) {
	unlock := g.lock(gameID)
	defer unlock()

	e, err := g.cache.GetOrLoad(ctx, gameID)
	if err != nil {
		return game.GameState{}, err
	}
	return e.State(), nil
}

func (g *GameUseCase) PlaceStone(ctx context.Context, gameID string, x, y int, playerID string) (game.MoveResult, error) {
	return g.apply(ctx, gameID, playerID, func(e *goban.Engine) (game.Move, error) {
		return e.PlaceStone(x, y)
	})
}

func (g *GameUseCase) Pass(ctx context.Context, gameID string, playerID string) (game.MoveResult, error) {
	return g.apply(ctx, gameID, playerID, (*goban.Engine).Pass)
}

func (g *GameUseCase) Resign(ctx context.Context, gameID string, playerID string) (game.MoveResult, error) {
	return g.apply(ctx, gameID, playerID, (*goban.Engine).Resign)
}

// Undo takes back the last move of an active game and removes its record
// from the store.
func (g *GameUseCase) Undo(ctx context.Context, gameID string, playerID string) (game.MoveResult, error) {
	unlock := g.lock(gameID)
	defer unlock()

	e, err := g.cache.GetOrLoad(ctx, gameID)
	if err != nil {
		return game.MoveResult{}, err
	}
	undone, err := e.Undo()
	if err != nil {
		return game.MoveResult{State: e.State()}, err
	}

	state := e.State()
	result := game.MoveResult{
		Success:        true,
		State:          state,
		CapturedStones: undone.CapturedStones,
		Move:           &undone,
	}

	if err := g.store.DeleteMove(ctx, gameID, undone.Number); err != nil {
		return result, g.persistenceFailure(gameID, err)
	}
	if err := g.cache.Save(ctx, gameID); err != nil {
		return result, g.persistenceFailure(gameID, err)
	}
	g.mirror(ctx, gameID, state)
	g.log.Infof("game %s: move %d taken back by %q", gameID, undone.Number, playerID)

	result.Persisted = true
	return result, nil
}

func (g *GameUseCase) apply(ctx context.Context, gameID, playerID string, op func(*goban.Engine) (game.Move, error)) (game.MoveResult, error) {
	unlock := g.lock(gameID)
	defer unlock()

	e, err := g.cache.GetOrLoad(ctx, gameID)
	if err != nil {
		return game.MoveResult{}, err
	}

	move, err := op(e)
	if err != nil {
		return game.MoveResult{State: e.State()}, err
	}
	e.AttributeLast(playerID)
	move.PlayerID = playerID

	state := e.State()
	result := game.MoveResult{
		Success:        true,
		State:          state,
		CapturedStones: move.CapturedStones,
		Move:           &move,
	}

	if err := g.store.AppendMove(ctx, gameID, move); err != nil {
		return result, g.persistenceFailure(gameID, err)
	}
	if err := g.cache.Save(ctx, gameID); err != nil {
		return result, g.persistenceFailure(gameID, err)
	}
	g.mirror(ctx, gameID, state)
	result.Persisted = true

	if state.GameEnded {
		g.cache.Evict(gameID)
		g.log.Infof("game %s finished, winner %q (%d:%d)", gameID, state.Winner, state.BlackScore, state.WhiteScore)
	}
	return result, nil
}

func (g *GameUseCase) persistenceFailure(gameID string, err error) error {
	g.log.Errorf("game %s: failed to persist: %v", gameID, err)
	return fmt.Errorf("%w: %v", errs.ErrPersistence, err)
}

// mirror refreshes the Redis preview of an active game and drops it once
// the game is finished, leaving the final board to the store. Failures are
// logged only; the store stays authoritative.
func (g *GameUseCase) mirror(ctx context.Context, gameID string, state game.GameState) {
	if g.previews == nil {
		return
	}
	if state.GameEnded {
		if err := g.previews.DeletePreview(ctx, gameID); err != nil {
			g.log.Warnf("game %s: failed to drop board preview: %v", gameID, err)
		}
		return
	}
	if err := g.previews.SavePreview(ctx, previewOf(gameID, state)); err != nil {
		g.log.Warnf("game %s: failed to mirror board preview: %v", gameID, err)
	}
}

func previewOf(gameID string, state game.GameState) game.BoardPreview {
	return game.BoardPreview{
		GameID:     gameID,
		BoardSize:  state.Size,
		Board:      state.Board,
		Status:     state.Status(),
		Winner:     state.Winner,
		BlackScore: state.BlackScore,
		WhiteScore: state.WhiteScore,
		UpdatedAt:  time.Now(),
	}
}

// GetBoardPreview reads the mirrored board, falling back to the stored
// record when the mirror has nothing for the game.
func (g *GameUseCase) GetBoardPreview(ctx context.Context, gameID string) (game.BoardPreview, error) {
	if g.previews != nil {
		preview, err := g.previews.GetPreview(ctx, gameID)
		if err == nil {
			return preview, nil
		}
		if !errors.Is(err, errs.ErrGameNotFound) {
			g.log.Warnf("game %s: board preview lookup failed: %v", gameID, err)
		}
	}

	record, err := g.store.GetGame(ctx, gameID)
	if err != nil {
		return game.BoardPreview{}, err
	}
	return game.BoardPreview{
		GameID:     record.ID,
		BoardSize:  record.BoardSize,
		Board:      record.Board,
		Status:     record.Status,
		Winner:     record.Winner,
		BlackScore: record.BlackScore,
		WhiteScore: record.WhiteScore,
	}, nil
}

// History lists the games a player took part in, newest first, each with
// its ordered moves.
func (g *GameUseCase) History(ctx context.Context, playerID string, limit, offset int) ([]game.Game, error) {
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", errs.ErrInvalidQuery)
	}
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", errs.ErrInvalidQuery)
	}
	if limit == 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	games, err := g.store.GetHistory(ctx, playerID, limit, offset)
	if err != nil {
		return nil, err
	}
	if games == nil {
		games = []game.Game{}
	}
	return games, nil
}

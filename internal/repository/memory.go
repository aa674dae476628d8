package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

// GameMapStorage is an in-process GameStore for local runs and tests.
type GameMapStorage struct {
	mu    sync.RWMutex
	games map[string]game.Game
	moves map[string][]game.Move
}

func NewGameMapStorage() *GameMapStorage {
	return &GameMapStorage{
		games: make(map[string]game.Game),
		moves: make(map[string][]game.Move),
	}
}

func (m *GameMapStorage) CreateGame(_ context.Context, gameData game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[gameData.ID] = gameData
	m.moves[gameData.ID] = append([]game.Move(nil), cloneMoves(gameData.Moves)...)
	return nil
}

func (m *GameMapStorage) GetGame(_ context.Context, gameID string) (game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	found, ok := m.games[gameID]
	if !ok {
		return game.Game{}, errs.ErrGameNotFound
	}
	found.Moves = cloneMoves(m.moves[gameID])
	return found, nil
}

func (m *GameMapStorage) AppendMove(_ context.Context, gameID string, move game.Move) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return errs.ErrGameNotFound
	}
	m.moves[gameID] = append(m.moves[gameID], move.Clone())
	return nil
}

func (m *GameMapStorage) DeleteMove(_ context.Context, gameID string, moveNumber int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[gameID]; !ok {
		return errs.ErrGameNotFound
	}
	moves := m.moves[gameID]
	for i := range moves {
		if moves[i].Number == moveNumber {
			m.moves[gameID] = append(moves[:i], moves[i+1:]...)
			break
		}
	}
	return nil
}

func (m *GameMapStorage) SaveSnapshot(_ context.Context, gameID string, snap game.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found, ok := m.games[gameID]
	if !ok {
		return errs.ErrGameNotFound
	}
	found.Board = snap.Board
	found.BlackScore = snap.BlackScore
	found.WhiteScore = snap.WhiteScore
	found.Status = snap.Status
	found.Winner = snap.Winner
	found.WinnerID = found.WinnerPlayerID(snap.Winner)
	if snap.Status == game.StatusFinished && found.FinishedAt == nil {
		now := time.Now()
		found.FinishedAt = &now
	}
	m.games[gameID] = found
	return nil
}

func (m *GameMapStorage) GetHistory(_ context.Context, playerID string, limit, offset int) ([]game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var games []game.Game
	for id, found := range m.games {
		if found.PlayerBlack != playerID && found.PlayerWhite != playerID {
			continue
		}
		found.Moves = cloneMoves(m.moves[id])
		games = append(games, found)
	}
	sort.Slice(games, func(i, j int) bool {
		if games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].ID < games[j].ID
		}
		return games[i].CreatedAt.After(games[j].CreatedAt)
	})

	if offset >= len(games) {
		return []game.Game{}, nil
	}
	games = games[offset:]
	if limit < len(games) {
		games = games[:limit]
	}
	return games, nil
}

func cloneMoves(moves []game.Move) []game.Move {
	out := make([]game.Move, len(moves))
	for i, mv := range moves {
		out[i] = mv.Clone()
	}
	return out
}

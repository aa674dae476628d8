package game

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
	"go_arena/internal/goban"
)

// StateCache keeps one live engine per active game and hydrates engines
// from the store on first access.
type StateCache struct {
	store GameStore
	log   *zap.SugaredLogger

	mu    sync.RWMutex
	games map[string]*goban.Engine
	group singleflight.Group
}

func NewStateCache(store GameStore, log *zap.SugaredLogger) *StateCache {
	return &StateCache{
		store: store,
		log:   log,
		games: make(map[string]*goban.Engine),
	}
}

func (c *StateCache) lookup(gameID string) (*goban.Engine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.games[gameID]
	return e, ok
}

// GetOrLoad returns the cached engine for gameID, loading it from the
// store if needed. Concurrent first loads share one hydration. A game that
// loads as finished is returned without being cached.
func (c *StateCache) GetOrLoad(ctx context.Context, gameID string) (*goban.Engine, error) {
	if e, ok := c.lookup(gameID); ok {
		return e, nil
	}

	v, err, _ := c.group.Do(gameID, func() (any, error) {
		if e, ok := c.lookup(gameID); ok {
			return e, nil
		}
		e, err := c.hydrate(ctx, gameID)
		if err != nil {
			return nil, err
		}
		if e.Finished() {
			// finished games are served but never kept resident
			return e, nil
		}
		c.mu.Lock()
		c.games[gameID] = e
		c.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*goban.Engine), nil
}

// Put registers an engine for a freshly created game.
func (c *StateCache) Put(gameID string, e *goban.Engine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games[gameID] = e
}

func (c *StateCache) hydrate(ctx context.Context, gameID string) (*goban.Engine, error) {
	record, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	e, err := c.build(record)
	if err != nil {
		return nil, fmt.Errorf("hydrate game %s: %w", gameID, err)
	}
	if record.Status == game.StatusFinished && !e.Finished() {
		e.MarkFinished(record.Winner, record.BlackScore, record.WhiteScore)
	}
	c.log.Infof("game %s hydrated with %d moves", gameID, len(record.Moves))
	return e, nil
}

// build prefers the persisted board and falls back to replaying the log
// when the board is missing, unreadable or blank while moves exist.
func (c *StateCache) build(record game.Game) (*goban.Engine, error) {
	if record.Board == "" {
		return goban.Replay(record.BoardSize, record.Moves)
	}

	b, err := goban.Decode(record.Board, record.BoardSize)
	if errors.Is(err, errs.ErrFormat) {
		c.log.Warnf("game %s: stored board is unreadable, replaying %d moves: %v", record.ID, len(record.Moves), err)
		return goban.Replay(record.BoardSize, record.Moves)
	} else if err != nil {
		return nil, err
	}

	if b.IsEmptyBoard() && len(record.Moves) > 0 {
		return goban.Replay(record.BoardSize, record.Moves)
	}
	return goban.FromSnapshot(b, record.Moves), nil
}

// Save writes the current snapshot of a cached game to the store.
func (c *StateCache) Save(ctx context.Context, gameID string) error {
	e, ok := c.lookup(gameID)
	if !ok {
		return errs.ErrGameNotFound
	}
	return c.store.SaveSnapshot(ctx, gameID, game.SnapshotOf(e.State()))
}

func (c *StateCache) Evict(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.games, gameID)
}

func (c *StateCache) ActiveGameIDs() []string {
	c.mu.RLock()
	ids := make([]string, 0, len(c.games))
	for id := range c.games {
		ids = append(ids, id)
	}
	c.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

func (c *StateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.games)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"go_arena/internal/domain/game"
	errs "go_arena/internal/errors"
)

const previewKeyPrefix = "game:preview:"

// BoardPreviewStorage mirrors the last saved board of each game into Redis
// so lobby views can read it without hydrating an engine.
type BoardPreviewStorage struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBoardPreviewStorage(client *redis.Client, ttl time.Duration) *BoardPreviewStorage {
	return &BoardPreviewStorage{
		client: client,
		ttl:    ttl,
	}
}

func previewKey(gameID string) string {
	return previewKeyPrefix + gameID
}

func (b *BoardPreviewStorage) SavePreview(ctx context.Context, preview game.BoardPreview) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("marshal preview: %w", err)
	}
	return b.client.Set(ctx, previewKey(preview.GameID), data, b.ttl).Err()
}

func (b *BoardPreviewStorage) GetPreview(ctx context.Context, gameID string) (game.BoardPreview, error) {
	val, err := b.client.Get(ctx, previewKey(gameID)).Result()
	if errors.Is(err, redis.Nil) {
		return game.BoardPreview{}, errs.ErrGameNotFound
	} else if err != nil {
		return game.BoardPreview{}, err
	}

	var preview game.BoardPreview
	if err := json.Unmarshal([]byte(val), &preview); err != nil {
		return game.BoardPreview{}, fmt.Errorf("unmarshal preview: %w", err)
	}
	return preview, nil
}

func (b *BoardPreviewStorage) DeletePreview(ctx context.Context, gameID string) error {
	return b.client.Del(ctx, previewKey(gameID)).Err()
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/metinatakli/cinex/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	SelectionTTL        = 20 * time.Minute
	maxSelectionRetries = 5
)

// RedisSelectionRepository keeps selections keyed by session and show so they
// survive reloads and are shared by every API instance.
type RedisSelectionRepository struct {
	client redis.UniversalClient
}

func NewRedisSelectionRepository(client redis.UniversalClient) *RedisSelectionRepository {
	return &RedisSelectionRepository{
		client: client,
	}
}

func selectionKey(key domain.SelectionKey) string {
	return fmt.Sprintf("selection:%s:%s", key.SessionID, key.ShowID)
}

func (r *RedisSelectionRepository) Get(ctx context.Context, key domain.SelectionKey) (*domain.SeatSelection, error) {
	return readSelection(ctx, r.client, key)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readSelection(ctx context.Context, c getter, key domain.SelectionKey) (*domain.SeatSelection, error) {
	data, err := c.Get(ctx, selectionKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NewSeatSelection(key.ShowID), nil
		}

		return nil, err
	}

	var selection domain.SeatSelection

	err = json.Unmarshal(data, &selection)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal selection %s: %w", selectionKey(key), err)
	}

	return &selection, nil
}

// Update runs fn inside a WATCH transaction and retries when another request
// changed the selection concurrently.
func (r *RedisSelectionRepository) Update(
	ctx context.Context,
	key domain.SelectionKey,
	fn func(*domain.SeatSelection) error) (*domain.SeatSelection, error) {

	redisKey := selectionKey(key)

	var updated *domain.SeatSelection

	txf := func(tx *redis.Tx) error {
		selection, err := readSelection(ctx, tx, key)
		if err != nil {
			return err
		}

		err = fn(selection)
		if err != nil {
			return err
		}

		data, err := json.Marshal(selection)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey, data, SelectionTTL)
			return nil
		})
		if err != nil {
			return err
		}

		updated = selection

		return nil
	}

	for i := 0; i < maxSelectionRetries; i++ {
		err := r.client.Watch(ctx, txf, redisKey)
		if err == nil {
			return updated, nil
		}

		if !errors.Is(err, redis.TxFailedErr) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("selection %s: too many concurrent updates", redisKey)
}

func (r *RedisSelectionRepository) Delete(ctx context.Context, key domain.SelectionKey) error {
	return r.client.Del(ctx, selectionKey(key)).Err()
}

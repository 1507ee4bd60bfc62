package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/tendant/simple-attractions/pkg/attractions"
)

const indexKey = "attractions"

// Repository stores attractions as JSON values in Redis, with a sorted set
// of ids scored by creation time.
type Repository struct {
	client *redis.Client
}

// New creates a new Redis repository
func New(client *redis.Client) *Repository {
	return &Repository{client: client}
}

func attractionKey(id string) string {
	return fmt.Sprintf("attraction:%s", id)
}

func (r *Repository) ListAttractions(ctx context.Context) ([]*attractions.Attraction, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*attractions.Attraction{}, nil
	}

	pipe := r.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, attractionKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	result := make([]*attractions.Attraction, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			return nil, err
		}
		var a attractions.Attraction
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return nil, err
		}
		result = append(result, &a)
	}
	return result, nil
}

func (r *Repository) GetAttraction(ctx context.Context, id string) (*attractions.Attraction, error) {
	data, err := r.client.Get(ctx, attractionKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, attractions.ErrAttractionNotFound
		}
		return nil, err
	}
	var a attractions.Attraction
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) CreateAttraction(ctx context.Context, attraction *attractions.Attraction) error {
	data, err := json.Marshal(attraction)
	if err != nil {
		return err
	}

	created, err := r.client.SetNX(ctx, attractionKey(attraction.ID), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return attractions.ErrDuplicateID
	}

	member := &redis.Z{Score: float64(time.Now().UnixNano()), Member: attraction.ID}
	return r.client.ZAdd(ctx, indexKey, member).Err()
}

// UpdateAttraction rewrites the stored document inside an optimistic
// transaction so concurrent updates of one record do not lose fields.
func (r *Repository) UpdateAttraction(ctx context.Context, id string, patch attractions.AttractionPatch) (bool, error) {
	key := attractionKey(id)
	matched := false

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Result()
		if err == redis.Nil {
			return nil
		}
		if err != nil {
			return err
		}

		var a attractions.Attraction
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return err
		}
		patch.Apply(&a)
		updated, err := json.Marshal(&a)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		if err == nil {
			matched = true
		}
		return err
	}, key)

	return matched, err
}

func (r *Repository) DeleteAttraction(ctx context.Context, id string) (bool, error) {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, attractionKey(id))
	pipe.ZRem(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return del.Val() > 0, nil
}

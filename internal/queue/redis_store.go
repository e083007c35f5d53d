package queue

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

const (
	redisOrderKey     = "alert-agent:queue:order"
	redisActionPrefix = "alert-agent:queue:action:"
)

// RedisStore keeps queued actions in Redis: a list of IDs preserves enqueue
// order and each action body lives under its own key. Durability is the Redis
// server's; for a ward-station agent that is a local persistent instance.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Append(ctx context.Context, action models.QueuedAction) error {
	data, err := json.Marshal(action)
	if err != nil {
		return errors.Wrap(err, "marshal queued action")
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisActionPrefix+action.ID, data, 0)
	pipe.RPush(ctx, redisOrderKey, action.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "append queued action")
	}
	return nil
}

func (s *RedisStore) ListPending(ctx context.Context) ([]models.QueuedAction, error) {
	ids, err := s.client.LRange(ctx, redisOrderKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list queue order")
	}

	var actions []models.QueuedAction
	for _, id := range ids {
		action, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrActionNotFound) {
				continue
			}
			return nil, err
		}
		if action.Status == models.ActionStatusPending {
			actions = append(actions, action)
		}
	}
	return actions, nil
}

func (s *RedisStore) MarkInFlight(ctx context.Context, id string) error {
	return s.update(ctx, id, func(action *models.QueuedAction) {
		action.Status = models.ActionStatusInFlight
	})
}

func (s *RedisStore) MarkDelivered(ctx context.Context, id string) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, redisOrderKey, 1, id)
	pipe.Del(ctx, redisActionPrefix+id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrapf(err, "remove delivered action %s", id)
	}
	return nil
}

func (s *RedisStore) MarkFailed(ctx context.Context, id string, lastError string) error {
	return s.update(ctx, id, func(action *models.QueuedAction) {
		action.Status = models.ActionStatusPending
		action.Attempts++
		action.LastError = lastError
	})
}

func (s *RedisStore) RecoverInFlight(ctx context.Context) (int, error) {
	ids, err := s.client.LRange(ctx, redisOrderKey, 0, -1).Result()
	if err != nil {
		return 0, errors.Wrap(err, "list queue order")
	}

	recovered := 0
	for _, id := range ids {
		action, err := s.get(ctx, id)
		if err != nil {
			if errors.Is(err, ErrActionNotFound) {
				continue
			}
			return recovered, err
		}
		if action.Status != models.ActionStatusInFlight {
			continue
		}
		if err := s.update(ctx, id, func(a *models.QueuedAction) {
			a.Status = models.ActionStatusPending
		}); err != nil {
			return recovered, err
		}
		recovered++
	}
	return recovered, nil
}

func (s *RedisStore) get(ctx context.Context, id string) (models.QueuedAction, error) {
	data, err := s.client.Get(ctx, redisActionPrefix+id).Result()
	if err != nil {
		if err == redis.Nil {
			return models.QueuedAction{}, errors.Wrap(ErrActionNotFound, id)
		}
		return models.QueuedAction{}, errors.Wrapf(err, "get queued action %s", id)
	}

	var action models.QueuedAction
	if err := json.Unmarshal([]byte(data), &action); err != nil {
		return models.QueuedAction{}, errors.Wrapf(err, "unmarshal queued action %s", id)
	}
	return action, nil
}

func (s *RedisStore) update(ctx context.Context, id string, mutate func(*models.QueuedAction)) error {
	action, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	mutate(&action)

	data, err := json.Marshal(action)
	if err != nil {
		return errors.Wrapf(err, "marshal queued action %s", id)
	}
	if err := s.client.Set(ctx, redisActionPrefix+id, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "update queued action %s", id)
	}
	return nil
}

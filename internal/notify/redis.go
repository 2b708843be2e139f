package notify

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// RedisDispatcher appends messages to a list drained by the push workers.
type RedisDispatcher struct {
	client *redis.Client
	key    string
}

func NewRedisDispatcher(client *redis.Client, key string) *RedisDispatcher {
	return &RedisDispatcher{client: client, key: key}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, m Message) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	return d.client.RPush(ctx, d.key, data).Err()
}

func (d *RedisDispatcher) Close() error { return d.client.Close() }

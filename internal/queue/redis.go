package queue

import (
	"context"
	"encoding/json"

	redis "github.com/redis/go-redis/v9"
)

const streamMaxLen = 10000

var _ TreeQueue = (*RedisTreeQueue)(nil)

// RedisTreeQueue appends change events to a capped redis stream.
type RedisTreeQueue struct {
	client *redis.Client
	stream string
}

func NewRedisTreeQueue(client *redis.Client) *RedisTreeQueue {
	return &RedisTreeQueue{client: client, stream: TreeChangedTopic}
}

func (r *RedisTreeQueue) PublishChange(ctx context.Context, event *TreeChanged) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{"id": event.ID, "event": value},
	}).Err()
}

func (r *RedisTreeQueue) Close() error {
	return nil
}

package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/emrgen/programtree/internal/compress"
	"github.com/emrgen/programtree/internal/tree"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	contentGenerationKey = "programtree:content:generation"
	defaultContentTTL    = time.Hour
)

func contentKey(generation int64, identity tree.ProgramTreeIdentity) string {
	return fmt.Sprintf("programtree:content:%d:%s:%d", generation, identity.Code, identity.Year)
}

var _ ContentCache = (*RedisContentCache)(nil)

// RedisContentCache stores compressed tree content under a generation number.
// Invalidate bumps the generation; stale entries expire with their ttl.
type RedisContentCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2, // Connection protocol
	})
}

func NewRedisContentCache(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisContentCache {
	if ttl <= 0 {
		ttl = defaultContentTTL
	}
	return &RedisContentCache{client: client, encoder: encoder, ttl: ttl}
}

func (r *RedisContentCache) generation(ctx context.Context) (int64, error) {
	res := r.client.Get(ctx, contentGenerationKey)
	if errors.Is(res.Err(), redis.Nil) {
		return 0, nil
	}
	if res.Err() != nil {
		return 0, res.Err()
	}
	return strconv.ParseInt(res.Val(), 10, 64)
}

func (r *RedisContentCache) GetContent(ctx context.Context, identity tree.ProgramTreeIdentity) ([]byte, error) {
	generation, err := r.generation(ctx)
	if err != nil {
		return nil, err
	}

	res := r.client.Get(ctx, contentKey(generation, identity))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, ErrMiss
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}
	return r.encoder.Decode(buf)
}

func (r *RedisContentCache) SetContent(ctx context.Context, identity tree.ProgramTreeIdentity, content []byte) error {
	generation, err := r.generation(ctx)
	if err != nil {
		return err
	}

	data, err := r.encoder.Encode(content)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, contentKey(generation, identity), data, r.ttl).Err()
}

func (r *RedisContentCache) Invalidate(ctx context.Context) error {
	generation, err := r.client.Incr(ctx, contentGenerationKey).Result()
	if err != nil {
		return err
	}
	logrus.Debugf("content cache generation is now %d", generation)
	return nil
}

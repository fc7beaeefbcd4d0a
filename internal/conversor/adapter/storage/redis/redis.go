package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/moedaspro/conversor/internal/entities"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Storage is the optional quote tier behind the in-process cache. It mirrors
// the in-process store per pair with the same TTL, so quotes survive a
// process restart.
type Storage struct {
	rdb *redis.Client
}

func NewStorage(client redis.UniversalClient) *Storage {
	return &Storage{
		rdb: client.(*redis.Client),
	}
}

func InitStorage(ctx context.Context, options *redis.Options) (*Storage, error) {
	const op = "storage.redis.InitStorage"

	redisClient := redis.NewClient(options)

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, op)
	}

	return NewStorage(redisClient), nil
}

func key(pair entities.RatePair) string {
	return "rate:" + string(pair.Origin) + ":" + string(pair.Destination)
}

func (s *Storage) Get(ctx context.Context, pair entities.RatePair) (entities.RateQuote, bool, error) {
	const op = "storage.redis.Get"

	raw, err := s.rdb.Get(ctx, key(pair)).Bytes()
	if errors.Is(err, redis.Nil) {
		return entities.RateQuote{}, false, nil
	}
	if err != nil {
		return entities.RateQuote{}, false, errors.Wrap(err, op)
	}

	var quote entities.RateQuote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return entities.RateQuote{}, false, errors.Wrap(err, op)
	}

	return quote, true, nil
}

func (s *Storage) Put(ctx context.Context, pair entities.RatePair, quote entities.RateQuote, ttl time.Duration) error {
	const op = "storage.redis.Put"

	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(quote)
	if err != nil {
		return errors.Wrap(err, op)
	}

	if err := s.rdb.Set(ctx, key(pair), raw, ttl).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, pair entities.RatePair) error {
	const op = "storage.redis.Delete"

	if err := s.rdb.Del(ctx, key(pair)).Err(); err != nil {
		return errors.Wrap(err, op)
	}

	return nil
}

// Purge removes every stored quote, leaving other keys in the DB untouched.
func (s *Storage) Purge(ctx context.Context) error {
	const op = "storage.redis.Purge"

	iter := s.rdb.Scan(ctx, 0, "rate:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return errors.Wrap(err, op)
		}
	}

	return errors.Wrap(iter.Err(), op)
}

package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

const (
	redisKeyPrefix  = "ratelimit:"
	redisIndexKey   = "ratelimit:index"
	redisLockPrefix = "ratelimit:lock:"
)

var errLockBusy = errors.New("lock busy")

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps history in Redis sorted sets so several server instances
// share one limiter. Members encode the exact timestamp; scores are Unix
// milliseconds. A separate index set caps the number of tracked keys.
type RedisStore struct {
	rdb         redis.Cmdable
	maxKeys     int
	lockTTL     time.Duration
	lockBackoff retry.Backoff
}

// NewRedisStore returns a store over rdb tracking at most maxKeys keys.
func NewRedisStore(rdb redis.Cmdable, maxKeys int) *RedisStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &RedisStore{
		rdb:         rdb,
		maxKeys:     maxKeys,
		lockTTL:     2 * time.Second,
		lockBackoff: retry.WithMaxRetries(100, retry.NewConstant(10*time.Millisecond)),
	}
}

// NewRedisClient connects to addr and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]time.Time, error) {
	members, err := s.rdb.ZRange(ctx, redisKeyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	history := make([]time.Time, 0, len(members))
	for _, m := range members {
		nanos, _, _ := strings.Cut(m, "-")
		n, err := strconv.ParseInt(nanos, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode member %q: %w", m, err)
		}
		history = append(history, time.Unix(0, n))
	}
	return history, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, history []time.Time, ttl time.Duration) error {
	full := redisKeyPrefix + key
	zs := make([]redis.Z, 0, len(history))
	for i, ts := range history {
		zs = append(zs, redis.Z{
			Score:  float64(ts.UnixMilli()),
			Member: strconv.FormatInt(ts.UnixNano(), 10) + "-" + strconv.Itoa(i),
		})
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full)
		if len(zs) > 0 {
			pipe.ZAdd(ctx, full, zs...)
			if ttl > 0 {
				pipe.PExpire(ctx, full, ttl)
			}
			pipe.ZAdd(ctx, redisIndexKey, redis.Z{Score: float64(time.Now().UnixNano()), Member: key})
		} else {
			pipe.ZRem(ctx, redisIndexKey, key)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.enforceCap(ctx)
}

// enforceCap evicts the keys that were written longest ago once the index
// holds more than maxKeys entries.
func (s *RedisStore) enforceCap(ctx context.Context) error {
	n, err := s.rdb.ZCard(ctx, redisIndexKey).Result()
	if err != nil {
		return err
	}
	extra := n - int64(s.maxKeys)
	if extra <= 0 {
		return nil
	}
	evicted, err := s.rdb.ZPopMin(ctx, redisIndexKey, extra).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(evicted))
	for _, z := range evicted {
		if k, ok := z.Member.(string); ok {
			keys = append(keys, redisKeyPrefix+k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Prune(ctx context.Context, key string, cutoff time.Time) error {
	upper := "(" + strconv.FormatInt(cutoff.UnixMilli(), 10)
	return s.rdb.ZRemRangeByScore(ctx, redisKeyPrefix+key, "-inf", upper).Err()
}

// Lock takes a short-lived SET NX lock for key, retrying while another
// instance holds it.
func (s *RedisStore) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	lockKey := redisLockPrefix + key
	token := uuid.NewString()

	err := retry.Do(ctx, s.lockBackoff, func(ctx context.Context) error {
		ok, err := s.rdb.SetNX(ctx, lockKey, token, s.lockTTL).Result()
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errLockBusy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		return unlockScript.Run(ctx, s.rdb, []string{lockKey}, token).Err()
	}, nil
}

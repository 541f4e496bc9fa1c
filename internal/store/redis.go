package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/sells-group/visibility-cli/internal/model"
)

// keyPrefix namespaces analysis keys.
const keyPrefix = "visibility:analysis:"

// RedisOptions configures the redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements Store on redis. Expiry is delegated to redis key
// TTLs, so DeleteExpired has nothing to do.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedis creates a RedisStore. The connection is checked by Migrate.
func NewRedis(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Migrate(ctx context.Context) error {
	return eris.Wrap(s.client.Ping(ctx).Err(), "redis: ping")
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Save(ctx context.Context, a *model.Analysis, ttl time.Duration) error {
	if err := stamp(a, ttl, s.now()); err != nil {
		return err
	}
	data, err := encode(a)
	if err != nil {
		return err
	}
	err = s.client.Set(ctx, keyPrefix+a.Token, data, max(ttl, 0)).Err()
	return eris.Wrapf(err, "redis: save analysis %s", a.Token)
}

func (s *RedisStore) Get(ctx context.Context, token string) (*model.Analysis, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrapf(err, "redis: get analysis %s", token)
	}
	return decode(data)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return eris.Wrapf(s.client.Del(ctx, keyPrefix+token).Err(), "redis: delete analysis %s", token)
}

func (s *RedisStore) DeleteExpired(context.Context) (int, error) {
	return 0, nil
}

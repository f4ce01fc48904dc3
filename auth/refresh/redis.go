package refresh

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/distribution-auth/sessiongate/auth"
	"github.com/distribution-auth/sessiongate/pkg/option"
)

// DefaultRedisKeyPrefix is prepended to refresh indexes unless configured otherwise.
const DefaultRedisKeyPrefix = "sessiongate:rt:"

const (
	redisFieldToken = "token"
	redisFieldOwner = "owner"
)

// RedisRefreshRecordRepository stores refresh records as Redis hashes.
type RedisRefreshRecordRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRefreshRecordRepository returns a new RedisRefreshRecordRepository.
// If prefix is empty DefaultRedisKeyPrefix is used.
func NewRedisRefreshRecordRepository(client redis.UniversalClient, prefix string) *RedisRefreshRecordRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}

	return &RedisRefreshRecordRepository{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisRefreshRecordRepository) key(index string) string { return r.prefix + index }

// FindRefreshRecord implements auth.RefreshRecordStore.
func (r *RedisRefreshRecordRepository) FindRefreshRecord(ctx context.Context, index string) (option.Option[auth.RefreshRecord], error) {
	m, err := r.client.HGetAll(ctx, r.key(index)).Result()
	if err != nil {
		return nil, auth.StoreError(err)
	}

	if len(m) == 0 {
		return option.None[auth.RefreshRecord](), nil
	}

	return option.Some(auth.RefreshRecord{
		Index:   index,
		Token:   m[redisFieldToken],
		OwnerID: m[redisFieldOwner],
	}), nil
}

// DeleteRefreshRecord implements auth.RefreshRecordStore.
func (r *RedisRefreshRecordRepository) DeleteRefreshRecord(ctx context.Context, index string) error {
	// DEL on a missing key is a no-op
	if err := r.client.Del(ctx, r.key(index)).Err(); err != nil {
		return auth.StoreError(err)
	}

	return nil
}

// SaveRefreshRecord implements auth.RefreshRecordRepository.
// A non-positive ttl keeps the record until it is deleted.
func (r *RedisRefreshRecordRepository) SaveRefreshRecord(ctx context.Context, record auth.RefreshRecord, ttl time.Duration) error {
	key := r.key(record.Index)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, redisFieldToken, record.Token, redisFieldOwner, record.OwnerID)

		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}

		return nil
	})
	if err != nil {
		return auth.StoreError(err)
	}

	return nil
}

// Close closes the underlying client.
func (r *RedisRefreshRecordRepository) Close() error {
	return r.client.Close()
}

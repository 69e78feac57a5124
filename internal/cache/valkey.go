package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const tableKeysSet = "tables:keys"

// ValkeyClient caches the rendered table-overview responses. The seating
// chart is read far more often than it changes, so cached entries live
// until a seat assignment, release, or new table invalidates them.
type ValkeyClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewValkeyClient connects to Valkey and verifies the connection.
func NewValkeyClient(addr, password string, ttl time.Duration) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client: rdb,
		ttl:    ttl,
	}, nil
}

func tablesKey(area string) string {
	return "tables:" + area
}

// GetTables returns the cached JSON for an area's table overview, or
// redis.Nil-wrapped error when absent.
func (v *ValkeyClient) GetTables(ctx context.Context, area string) ([]byte, error) {
	data, err := v.client.Get(ctx, tablesKey(area)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, err
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

// IsMiss reports whether a GetTables error is a plain cache miss.
func IsMiss(err error) bool {
	return err == redis.Nil
}

// SetTables stores the rendered JSON for an area and tracks the key so a
// later invalidation can find it.
func (v *ValkeyClient) SetTables(ctx context.Context, area string, data []byte) error {
	key := tablesKey(area)
	pipe := v.client.TxPipeline()
	pipe.Set(ctx, key, data, v.ttl)
	pipe.SAdd(ctx, tableKeysSet, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache store error: %w", err)
	}
	return nil
}

// InvalidateTables drops every cached table overview. Seat moves can
// change labels and free counts across areas, so the whole set goes.
func (v *ValkeyClient) InvalidateTables(ctx context.Context) error {
	keys, err := v.client.SMembers(ctx, tableKeysSet).Result()
	if err != nil {
		return fmt.Errorf("cache invalidation error: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	keys = append(keys, tableKeysSet)
	if err := v.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache invalidation error: %w", err)
	}
	return nil
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}

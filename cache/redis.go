// Package cache wraps Redis: short-lived seat locks in front of the booking
// transaction and the pub/sub channel behind the realtime seat feed.
package cache

import (
	"cinema_booking/config"
	"cinema_booking/model"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Acquire every key or none of them.
var acquireScript = redis.NewScript(`
for _, key in ipairs(KEYS) do
	if redis.call("EXISTS", key) == 1 then
		return 0
	end
end
for _, key in ipairs(KEYS) do
	redis.call("SET", key, ARGV[1], "PX", ARGV[2])
end
return 1
`)

// Delete only keys still owned by the token.
var releaseScript = redis.NewScript(`
local n = 0
for _, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("DEL", key)
	end
end
return n
`)

type RedisCache struct {
	client *redis.Client
}

func New(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// Connect opens a client and pings it.
func Connect(ctx context.Context, cfg config.RedisSettings) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// Kênh pub/sub theo suất chiếu
func SeatChannel(showtimeID uint) string {
	return fmt.Sprintf("showtime:%d", showtimeID)
}

// The hash tag keeps every seat of a showtime in one cluster slot so the
// scripts can touch them together.
func seatLockKey(showtimeID, seatID uint) string {
	return fmt.Sprintf("seatlock:{%d}:%d", showtimeID, seatID)
}

func seatLockKeys(showtimeID uint, seatIDs []uint) []string {
	keys := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		keys = append(keys, seatLockKey(showtimeID, id))
	}
	return keys
}

// AcquireSeatLocks takes a lock on every seat or on none. ok is false when any
// seat is already locked by someone else.
func (r *RedisCache) AcquireSeatLocks(ctx context.Context, showtimeID uint, seatIDs []uint, ttl time.Duration) (string, bool, error) {
	if len(seatIDs) == 0 {
		return "", true, nil
	}
	token := uuid.NewString()
	res, err := acquireScript.Run(ctx, r.client, seatLockKeys(showtimeID, seatIDs), token, ttl.Milliseconds()).Int()
	if err != nil {
		return "", false, fmt.Errorf("acquire seat locks: %w", err)
	}
	return token, res == 1, nil
}

func (r *RedisCache) ReleaseSeatLocks(ctx context.Context, showtimeID uint, seatIDs []uint, token string) error {
	if len(seatIDs) == 0 || token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, r.client, seatLockKeys(showtimeID, seatIDs), token).Err(); err != nil {
		return fmt.Errorf("release seat locks: %w", err)
	}
	return nil
}

func (r *RedisCache) PublishSeatEvent(ctx context.Context, event model.SeatEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, SeatChannel(event.ShowtimeID), payload).Err()
}

// SubscribeSeatEvents subscribes to the showtime's channel. The caller closes
// the returned PubSub.
func (r *RedisCache) SubscribeSeatEvents(ctx context.Context, showtimeID uint) (*redis.PubSub, error) {
	pubsub := r.client.Subscribe(ctx, SeatChannel(showtimeID))
	// chờ xác nhận subscribe để không lỡ event đầu tiên
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}
	return pubsub, nil
}

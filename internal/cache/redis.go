package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the invalidation publisher.
type RedisConfig struct {
	Addr     string
	Password string
	Channel  string // pub/sub channel, e.g. "profile.invalidate"
}

// RedisInvalidator publishes profile ids on a pub/sub channel; subscribers
// (dashboard, achievements views) drop their cached copies on receipt.
type RedisInvalidator struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger
}

func NewRedisInvalidator(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisInvalidator, error) {
	if cfg.Channel == "" {
		cfg.Channel = "profile.invalidate"
	}
	if logger == nil {
		logger = slog.Default()
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        []string{cfg.Addr},
		Password:     cfg.Password,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisInvalidator{client: client, channel: cfg.Channel, logger: logger}, nil
}

func (r *RedisInvalidator) InvalidateProfile(ctx context.Context, ownerID uuid.UUID) error {
	if err := r.client.Publish(ctx, r.channel, ownerID.String()).Err(); err != nil {
		r.logger.Warn("cache invalidation publish failed", "owner_id", ownerID, "error", err)
		return err
	}
	r.logger.Debug("cache invalidation published", "owner_id", ownerID, "channel", r.channel)
	return nil
}

func (r *RedisInvalidator) Close() error {
	return r.client.Close()
}

package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stock-ticker/internal/pubsub"
	"stock-ticker/pkg/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	UpdatesChannel = "ticker:updates"
	LatestKey      = "ticker:latest"
	latestTTL      = time.Hour
)

// RedisPublisher stores the latest update and publishes every update to
// UpdatesChannel.
type RedisPublisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewRedisPublisher(rdb *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, logger: logger}
}

func (p *RedisPublisher) Publish(ctx context.Context, update *models.Update) error {
	payload, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("marshal update: %w", err)
	}

	pipe := p.rdb.Pipeline()
	pipe.Set(ctx, LatestKey, payload, latestTTL)
	pipe.Publish(ctx, UpdatesChannel, payload)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}

// Run mirrors broker updates until ctx is done. Redis errors are logged and
// the update dropped; the next one carries the full state anyway.
func (p *RedisPublisher) Run(ctx context.Context, broker *pubsub.Broker) {
	subscriber := broker.Subscribe("redis-mirror", 64)
	defer broker.Unsubscribe(subscriber.ID)

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-subscriber.Updates:
			if !ok {
				return
			}
			if err := p.Publish(ctx, update); err != nil {
				p.logger.Error("failed to mirror update to redis", zap.Error(err), zap.String("update", update.ID))
				continue
			}
			p.logger.Debug("mirrored update to redis", zap.String("update", update.ID))
		}
	}
}

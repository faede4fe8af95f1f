package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
)

// NewClient connects to redis and pings it until it answers or the attempts
// run out.
func NewClient(ctx context.Context, addr, password string, db int, log zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		if err = client.Ping(ctx).Err(); err == nil {
			log.Info().Str("addr", addr).Msg("connected to redis")
			return client, nil
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("redis not ready")

		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, ctx.Err()
		case <-time.After(connectBackoff):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
}

// Package redis builds the go-redis client shared by the redis-backed
// repositories.
package redis

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// Options configures Redis client behavior
type Options struct {
	PoolSize        int
	MinIdleConns    int
	ConnMaxIdleTime time.Duration
	MaxRetries      int
	UseTLS          bool
}

// NewClient creates a single node client for one address and a cluster
// client for several
func NewClient(addrs []string, opts *Options) (Client, error) {
	if len(addrs) == 0 {
		return nil, errors.InvalidArgument("redis: at least one address is required")
	}
	if opts == nil {
		opts = &Options{}
	}

	var tlsConfig *tls.Config
	if opts.UseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if len(addrs) == 1 {
		return redis.NewClient(&redis.Options{
			Addr:            addrs[0],
			PoolSize:        opts.PoolSize,
			MinIdleConns:    opts.MinIdleConns,
			ConnMaxIdleTime: opts.ConnMaxIdleTime,
			MaxRetries:      opts.MaxRetries,
			TLSConfig:       tlsConfig,
		}), nil
	}

	return redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           addrs,
		PoolSize:        opts.PoolSize,
		MinIdleConns:    opts.MinIdleConns,
		ConnMaxIdleTime: opts.ConnMaxIdleTime,
		MaxRetries:      opts.MaxRetries,
		TLSConfig:       tlsConfig,
	}), nil
}

// Ping fails when the server cannot be reached
func Ping(ctx context.Context, client Client) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeUnavailable, "redis unreachable")
	}
	return nil
}

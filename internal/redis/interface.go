package redis

import (
	"github.com/redis/go-redis/v9"
)

// Client is the subset of go-redis the repositories depend on. Single node
// and cluster clients both satisfy it.
type Client interface {
	redis.UniversalClient
}

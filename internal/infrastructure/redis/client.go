package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	pingTimeout = 2 * time.Second

	dialTimeout = 3 * time.Second
	ioTimeout   = time.Second
	poolSize    = 10
)

// Client owns the go-redis connection pool shared by the rate limiters.
type Client struct {
	rdb *goredis.Client
}

// New does not dial; call Ping to find out whether the server is reachable.
func New(addr, password string, db int) *Client {
	opts := &goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		PoolSize:     poolSize,
	}
	return &Client{rdb: goredis.NewClient(opts)}
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

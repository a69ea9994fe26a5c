package storage

import (
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

var (
	_instances = sync.Map{}
)

// GetRedisClient 同一個位址與 DB 共用同一個 client
// 已存在時沿用第一次建立的設定，其他 options 不會再套用
func GetRedisClient(address string, options ...Option) *redis.Client {
	opts := &redis.Options{
		Addr: address,
	}
	for _, option := range options {
		option(opts)
	}

	key := instanceKey(opts)
	if client, ok := _instances.Load(key); ok {
		return client.(*redis.Client)
	}
	client := redis.NewClient(opts)
	actual, loaded := _instances.LoadOrStore(key, client)
	if loaded {
		_ = client.Close()
	}
	return actual.(*redis.Client)
}

// ReleaseRedisClient 從共用表移除並關閉 client，之後同位址會重新建立
func ReleaseRedisClient(client *redis.Client) error {
	if client == nil {
		return nil
	}
	released := false
	_instances.Range(func(key, value any) bool {
		if value.(*redis.Client) == client {
			_instances.Delete(key)
			released = true
			return false
		}
		return true
	})
	if !released {
		return nil
	}
	return client.Close()
}

func instanceKey(opts *redis.Options) string {
	return fmt.Sprintf("%s/%d", opts.Addr, opts.DB)
}

type Option func(*redis.Options)

func WithPassword(password string) Option {
	return func(o *redis.Options) {
		o.Password = password
	}
}

func WithDB(db int) Option {
	return func(o *redis.Options) {
		o.DB = db
	}
}

func WithPoolSize(poolSize int) Option {
	return func(o *redis.Options) {
		o.PoolSize = poolSize
	}
}

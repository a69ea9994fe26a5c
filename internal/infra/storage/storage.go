package storage

import (
	"context"
	"errors"
	"fmt"
)

//go:generate mockgen -source=storage.go -destination=mock/mock_storage.go -package=mock_storage

var ErrKeyNotFound = errors.New("storage key not found")

// Storage 持久化的 key/value 儲存，每次寫入都整份覆蓋
type Storage interface {
	// Get 取得 key 對應的值，不存在時回傳 ErrKeyNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set 覆蓋 key 對應的值
	Set(ctx context.Context, key string, value string) error
	// Delete 刪除 key，不存在時不視為錯誤
	Delete(ctx context.Context, key string) error
	Close() error
}

type Driver string

const (
	DriverFile   Driver = "file"
	DriverMemory Driver = "memory"
	DriverRedis  Driver = "redis"
)

func IsValidDriver(d string) bool {
	switch Driver(d) {
	case DriverFile, DriverMemory, DriverRedis:
		return true
	default:
		return false
	}
}

func notFound(key string) error {
	return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
}

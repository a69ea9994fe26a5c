package appcontext

import (
	"bytes"
	"context"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerPort:      "8080",
		LogLevel:        "debug",
		StorageDriver:   string(storage.DriverFile),
		StorageDir:      "/data",
		RedisPrefix:     "storefront",
		CartPricePolicy: string(service.PriceLastWrite),
	}
}

func TestNewApplicationContextFileDriver(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	ctx := context.Background()
	fs := afero.NewMemMapFs()
	var out bytes.Buffer

	app, err := NewApplicationContext(ctx, testConfig(), WithFs(fs), WithStdout(&out))
	require.NoError(t, err)

	assert.Equal(t, 24, app.Catalog.Len())
	require.NoError(t, app.CartService.AddToCart(ctx, 5, false))
	_, err = app.CheckoutService.Checkout(ctx, service.Payment{Method: service.PaymentPayPal})
	require.NoError(t, err)
	require.NoError(t, app.Shutdown(ctx))

	exists, err := afero.Exists(fs, "/data/orderHistory.json")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, out.String(), "Finish setup storage")

	// 重新啟動後讀回相同狀態
	again, err := NewApplicationContext(ctx, testConfig(), WithFs(fs), WithStdout(&out))
	require.NoError(t, err)
	defer again.Shutdown(ctx)
	assert.Len(t, again.OrderHistoryService.Orders(), 1)
	assert.Equal(t, 0, again.CartService.TotalItems())
}

func TestCorruptSnapshotDoesNotBlockStartup(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/data/"+snapshot.CartKey+".json", []byte("{oops"), 0o644))

	var out bytes.Buffer
	app, err := NewApplicationContext(ctx, testConfig(), WithFs(fs), WithStdout(&out))
	require.NoError(t, err)
	defer app.Shutdown(ctx)

	assert.Equal(t, 0, app.CartService.TotalItems())
	assert.Contains(t, out.String(), "CORRUPT_SNAPSHOT")
}

func TestCatalogFile(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/menu.yaml",
		[]byte("items:\n  - {id: 1, name: Tea, price: 2.5, category: drinks, rating: 4}\n"), 0o644))

	cf := testConfig()
	cf.StorageDriver = string(storage.DriverMemory)
	cf.CatalogFile = "/menu.yaml"

	app, err := NewApplicationContext(ctx, cf, WithFs(fs), WithStdout(&bytes.Buffer{}))
	require.NoError(t, err)
	defer app.Shutdown(ctx)
	assert.Equal(t, 1, app.Catalog.Len())

	cf = testConfig()
	cf.CatalogFile = "/missing.yaml"
	_, err = NewApplicationContext(ctx, cf, WithFs(fs), WithStdout(&bytes.Buffer{}))
	assert.Error(t, err)
}

func TestResetStorage(t *testing.T) {
	ctx := context.Background()
	cf := testConfig()
	cf.StorageDriver = string(storage.DriverMemory)

	app, err := NewApplicationContext(ctx, cf, WithStdout(&bytes.Buffer{}))
	require.NoError(t, err)
	defer app.Shutdown(ctx)

	require.NoError(t, app.CartService.AddToCart(ctx, 2, false))
	require.NoError(t, app.ResetStorage(ctx))

	assert.Equal(t, 0, app.CartService.TotalItems())
	_, err = app.Storage.Get(ctx, snapshot.CartKey)
	assert.ErrorIs(t, err, storage.ErrKeyNotFound)
}

func TestApplyConfigChangesLevel(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	ctx := context.Background()
	cf := testConfig()
	cf.StorageDriver = string(storage.DriverMemory)
	app, err := NewApplicationContext(ctx, cf, WithStdout(&bytes.Buffer{}))
	require.NoError(t, err)
	defer app.Shutdown(ctx)

	next := *cf
	next.LogLevel = "warn"
	app.ApplyConfig(&next)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	assert.Equal(t, "warn", app.Cf.LogLevel)
}

func TestRedisPingFailureReleasesClient(t *testing.T) {
	ctx := context.Background()
	cf := testConfig()
	cf.StorageDriver = string(storage.DriverRedis)
	cf.RedisAddr = "127.0.0.1:1"
	cf.RedisPoolSize = 2

	_, err := NewApplicationContext(ctx, cf, WithFs(afero.NewMemMapFs()), WithStdout(&bytes.Buffer{}))
	require.Error(t, err)

	// 失敗時關掉的 client 已從共用表移除，再次取得的是新的 client
	client := storage.GetRedisClient(cf.RedisAddr)
	defer func() { _ = storage.ReleaseRedisClient(client) }()
	err = client.Ping(ctx).Err()
	require.Error(t, err)
	assert.NotErrorIs(t, err, redis.ErrClosed)
}

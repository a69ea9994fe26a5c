package appcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/domain/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/snapshot"
	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ApplicationContext 啟動時建立一次，之後以參數傳給需要的元件
type ApplicationContext struct {
	Cf                  *config.Config
	Logger              *zerolog.Logger
	Storage             storage.Storage
	Catalog             *catalog.Catalog
	CartRepo            snapshot.ICartRepository
	OrderRepo           snapshot.IOrderRepository
	CartService         *service.CartService
	OrderHistoryService *service.OrderHistoryService
	CheckoutService     *service.CheckoutService

	fs          afero.Fs
	stdout      io.Writer
	logCloser   io.Closer
	redisClient *redis.Client
}

type Option func(*ApplicationContext)

// WithFs 檔案型 storage、菜單檔與 log 檔都從這個 fs 讀寫
func WithFs(fs afero.Fs) Option {
	return func(app *ApplicationContext) {
		app.fs = fs
	}
}

func WithStdout(w io.Writer) Option {
	return func(app *ApplicationContext) {
		app.stdout = w
	}
}

func NewApplicationContext(ctx context.Context, cf *config.Config, opts ...Option) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf:     cf,
		fs:     afero.NewOsFs(),
		stdout: os.Stderr,
	}
	for _, opt := range opts {
		opt(&app)
	}

	if err := app.Init(ctx); err != nil {
		// 已建立的資源仍要釋放
		_ = app.Shutdown(context.Background())
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	err := app.setUpLogger()
	if err != nil {
		return err
	}
	err = app.setUpStorage(ctx)
	if err != nil {
		return err
	}
	err = app.setUpCatalog()
	if err != nil {
		return err
	}
	err = app.setUpRepositories()
	if err != nil {
		return err
	}
	err = app.setUpServices()
	if err != nil {
		return err
	}
	app.loadSnapshots(ctx)
	return nil
}

func (app *ApplicationContext) setUpLogger() error {
	l, closer, err := logger.New(app.stdout, app.fs, logger.Options{
		Level:  app.Cf.LogLevel,
		Pretty: app.Cf.LogPretty,
		File:   app.Cf.LogFile,
	})
	if err != nil {
		return err
	}
	app.Logger = &l
	app.logCloser = closer
	app.Logger.Debug().Msg("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpStorage(ctx context.Context) error {
	app.Logger.Debug().Str("driver", app.Cf.StorageDriver).Msg("Start setup storage")

	switch storage.Driver(app.Cf.StorageDriver) {
	case storage.DriverMemory:
		app.Storage = storage.NewMemoryStorage()
	case storage.DriverFile:
		s, err := storage.NewFileStorage(app.fs, app.Cf.StorageDir)
		if err != nil {
			return err
		}
		app.Storage = s
	case storage.DriverRedis:
		opts := []storage.Option{
			storage.WithPassword(app.Cf.RedisPassword),
			storage.WithDB(app.Cf.RedisDB),
		}
		if app.Cf.RedisPoolSize > 0 {
			opts = append(opts, storage.WithPoolSize(app.Cf.RedisPoolSize))
		}
		app.redisClient = storage.GetRedisClient(app.Cf.RedisAddr, opts...)
		s := storage.NewRedisStorage(app.redisClient, app.Cf.RedisPrefix)
		if err := s.Ping(ctx); err != nil {
			return fmt.Errorf("connect redis %s: %w", app.Cf.RedisAddr, err)
		}
		app.Storage = s
	default:
		return fmt.Errorf("unsupported storage driver %q", app.Cf.StorageDriver)
	}

	app.Logger.Debug().Msg("Finish setup storage")
	return nil
}

func (app *ApplicationContext) setUpCatalog() error {
	app.Logger.Debug().Str("file", app.Cf.CatalogFile).Msg("Start setup catalog")

	c, err := catalog.LoadFile(app.fs, app.Cf.CatalogFile)
	if err != nil {
		return err
	}
	app.Catalog = c

	app.Logger.Debug().Int("items", c.Len()).Msg("Finish setup catalog")
	return nil
}

func (app *ApplicationContext) setUpRepositories() error {
	app.CartRepo = snapshot.NewCartRepo(app.Storage)
	app.OrderRepo = snapshot.NewOrderRepo(app.Storage)
	return nil
}

func (app *ApplicationContext) setUpServices() error {
	app.Logger.Debug().Msg("Start setup services")
	app.CartService = service.NewCartService(app.Catalog, app.CartRepo, app.Logger,
		service.WithPricePolicy(service.PricePolicy(app.Cf.CartPricePolicy)))
	app.OrderHistoryService = service.NewOrderHistoryService(app.OrderRepo, app.Logger)
	app.CheckoutService = service.NewCheckoutService(app.Catalog, app.CartService, app.OrderHistoryService, app.Logger)
	app.Logger.Debug().Msg("Finish setup services")
	return nil
}

// loadSnapshots 讀不到或壞掉的快照只記錄，服務以空狀態啟動
func (app *ApplicationContext) loadSnapshots(ctx context.Context) {
	if err := app.CartService.Load(ctx); err != nil {
		app.Logger.Warn().Str("reason", service.ReasonOf(err).String()).Msg("cart starts empty")
	}
	if err := app.OrderHistoryService.Load(ctx); err != nil {
		app.Logger.Warn().Str("reason", service.ReasonOf(err).String()).Msg("order history starts empty")
	}
}

// ResetStorage 刪除所有快照 key，等同清掉瀏覽器的 local storage
func (app *ApplicationContext) ResetStorage(ctx context.Context) error {
	var errs []error
	for _, key := range []string{snapshot.CartKey, snapshot.CartPricesKey, snapshot.OrderHistoryKey} {
		if err := app.Storage.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	app.loadSnapshots(ctx)
	return nil
}

// ApplyConfig 設定檔重新載入後只套用可以即時生效的項目
func (app *ApplicationContext) ApplyConfig(cf *config.Config) {
	if cf.LogLevel != app.Cf.LogLevel {
		if err := logger.SetLevel(cf.LogLevel); err != nil {
			app.Logger.Error().Err(err).Msg("failed to apply log level")
			return
		}
		app.Logger.Info().Str("level", cf.LogLevel).Msg("log level changed")
	}
	app.Cf = cf
}

func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		if app.Storage != nil {
			if err := app.Storage.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close storage: %w", err))
			}
		}
		if app.redisClient != nil {
			if err := storage.ReleaseRedisClient(app.redisClient); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		if app.Logger != nil {
			app.Logger.Debug().Msg("Application shutdown complete")
		}
		if app.logCloser != nil {
			if err := app.logCloser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close log file: %w", err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %v", ctx.Err())
	}
}

package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/infra/storage"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	viper "github.com/spf13/viper"
)

// ConfigPathEnv 未指定 --config 時讀取的環境變數
const ConfigPathEnv = "STOREFRONT_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

// Config 的 RateLimitCapacity 為 0 時 serve 不限流，RedisPoolSize 為 0 時使用 go-redis 預設值
type Config struct {
	ServerPort        string  `mapstructure:"SERVER_PORT"`
	LogLevel          string  `mapstructure:"LOG_LEVEL"`
	LogPretty         bool    `mapstructure:"LOG_PRETTY"`
	LogFile           string  `mapstructure:"LOG_FILE"`
	StorageDriver     string  `mapstructure:"STORAGE_DRIVER"`
	StorageDir        string  `mapstructure:"STORAGE_DIR"`
	RedisAddr         string  `mapstructure:"REDIS_ADDR"`
	RedisPassword     string  `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int     `mapstructure:"REDIS_DB"`
	RedisPoolSize     int     `mapstructure:"REDIS_POOL_SIZE"`
	RedisPrefix       string  `mapstructure:"REDIS_PREFIX"`
	CatalogFile       string  `mapstructure:"CATALOG_FILE"`
	CartPricePolicy   string  `mapstructure:"CART_PRICE_POLICY"`
	RateLimitCapacity int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRPS      float64 `mapstructure:"RATE_LIMIT_RPS"`
}

var defaults = map[string]any{
	"SERVER_PORT":         "8080",
	"LOG_LEVEL":           "info",
	"LOG_PRETTY":          false,
	"LOG_FILE":            "",
	"STORAGE_DRIVER":      string(storage.DriverFile),
	"STORAGE_DIR":         "./data",
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_POOL_SIZE":     0,
	"REDIS_PREFIX":        "storefront",
	"CATALOG_FILE":        "",
	"CART_PRICE_POLICY":   string(service.PriceLastWrite),
	"RATE_LIMIT_CAPACITY": 100,
	"RATE_LIMIT_RPS":      20.0,
}

func (cf *Config) Validate() error {
	if !storage.IsValidDriver(cf.StorageDriver) {
		return fmt.Errorf("%w: STORAGE_DRIVER %q", ErrInvalidConfig, cf.StorageDriver)
	}
	if !service.IsValidPricePolicy(cf.CartPricePolicy) {
		return fmt.Errorf("%w: CART_PRICE_POLICY %q", ErrInvalidConfig, cf.CartPricePolicy)
	}
	if _, err := zerolog.ParseLevel(cf.LogLevel); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL %q", ErrInvalidConfig, cf.LogLevel)
	}
	if cf.RedisPoolSize < 0 {
		return fmt.Errorf("%w: REDIS_POOL_SIZE %d", ErrInvalidConfig, cf.RedisPoolSize)
	}
	if cf.RateLimitCapacity < 0 || cf.RateLimitRPS < 0 {
		return fmt.Errorf("%w: rate limit must not be negative", ErrInvalidConfig)
	}
	if cf.ServerPort == "" {
		return fmt.Errorf("%w: SERVER_PORT is empty", ErrInvalidConfig)
	}
	return nil
}

type LoaderOption func(*Loader)

// WithFs 測試時改用記憶體檔案系統
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		l.v.SetFs(fs)
	}
}

/*
Loader 包一個獨立的 viper instance
Load : 讀檔 + 環境變數 + 預設值
Watch : 設置 viper watch 與 onConfigChange，重新讀取後通知呼叫端
*/
type Loader struct {
	v    *viper.Viper
	path string
	mu   sync.RWMutex
	cf   *Config
}

// NewLoader 的 path 可為空字串，此時只使用環境變數與預設值
func NewLoader(path string, opts ...LoaderOption) *Loader {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	l := &Loader{v: v, path: path}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

/*
單純回傳錯誤  由外部決定要不要Fatal
*/
func (l *Loader) Load() (*Config, error) {
	cf, err := l.read()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.cf = cf
	l.mu.Unlock()
	return cf, nil
}

func (l *Loader) read() (*Config, error) {
	if l.path != "" {
		l.v.SetConfigFile(l.path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", l.path, err)
		}
	}

	cf := &Config{}
	if err := l.v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// Current returns the last successfully loaded config.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cf
}

// Watch reloads the file on change. A reload that fails validation keeps the
// previous config and is reported through onError.
func (l *Loader) Watch(onChange func(*Config), onError func(error)) {
	if l.path == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cf := &Config{}
		err := l.v.Unmarshal(cf)
		if err == nil {
			err = cf.Validate()
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload config %s: %w", e.Name, err))
			}
			return
		}
		l.mu.Lock()
		l.cf = cf
		l.mu.Unlock()
		if onChange != nil {
			onChange(cf)
		}
	})
	l.v.WatchConfig()
}

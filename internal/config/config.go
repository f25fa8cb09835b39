package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Worker     WorkerConfig     `mapstructure:"worker"`
	Resolution ResolutionConfig `mapstructure:"resolution"`
	Oracle     OracleConfig     `mapstructure:"oracle"`
	Sweeper    SweeperConfig    `mapstructure:"sweeper"`
	Cron       CronConfig       `mapstructure:"cron"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
	// Region is opaque deployment metadata; it is attached to log lines only.
	Region string `mapstructure:"region"`
}

type ServerConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	HTTPAddr string `mapstructure:"http_addr"`
}

type HTTPConfig struct {
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type QueueConfig struct {
	// Backend is "memory" or "redis".
	Backend           string        `mapstructure:"backend"`
	Name              string        `mapstructure:"name"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
}

type WorkerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Concurrency  int           `mapstructure:"concurrency"`
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type ResolutionConfig struct {
	Wait          time.Duration `mapstructure:"wait"`
	FloorInterval time.Duration `mapstructure:"floor_interval"`
}

type OracleConfig struct {
	// Source is "binance", "binance_ws" or "coindesk".
	Source    string          `mapstructure:"source"`
	Timeout   time.Duration   `mapstructure:"timeout"`
	Binance   BinanceConfig   `mapstructure:"binance"`
	BinanceWS BinanceWSConfig `mapstructure:"binance_ws"`
	CoinDesk  CoinDeskConfig  `mapstructure:"coindesk"`
}

type BinanceConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type BinanceWSConfig struct {
	URL          string        `mapstructure:"url"`
	MaxStaleness time.Duration `mapstructure:"max_staleness"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

type CoinDeskConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type SweeperConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	BatchSize  int           `mapstructure:"batch_size"`
}

type CronConfig struct {
	Sweeper    string `mapstructure:"sweeper"`
	QueueDepth string `mapstructure:"queue_depth"`
}

func Load(path string, envOnly bool) (Config, error) {
	// A missing .env is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvPrefix("BB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.region", "")
	v.SetDefault("server.enabled", true)
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("http.rate_limit_rps", 5)
	v.SetDefault("http.rate_limit_burst", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.name", "guesses")
	v.SetDefault("queue.visibility_timeout", "30s")
	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.batch_size", 10)
	v.SetDefault("worker.poll_interval", "1s")
	v.SetDefault("resolution.wait", "60s")
	v.SetDefault("resolution.floor_interval", "5s")
	v.SetDefault("oracle.source", "binance")
	v.SetDefault("oracle.timeout", "10s")
	v.SetDefault("oracle.binance.endpoint", "https://api.binance.com/api/v3/ticker/price?symbol=BTCUSDT")
	v.SetDefault("oracle.binance_ws.url", "wss://stream.binance.com:9443/ws/btcusdt@ticker")
	v.SetDefault("oracle.binance_ws.max_staleness", "10s")
	v.SetDefault("oracle.binance_ws.retry_delay", "3s")
	v.SetDefault("oracle.coindesk.endpoint", "https://api.coindesk.com/v1/bpi/currentprice/BTC.json")
	v.SetDefault("sweeper.enabled", true)
	v.SetDefault("sweeper.stale_after", "10m")
	v.SetDefault("sweeper.batch_size", 100)
	v.SetDefault("cron.sweeper", "@every 5m")
	v.SetDefault("cron.queue_depth", "@every 15s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

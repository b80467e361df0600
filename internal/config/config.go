package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	ExchangeAPI ExchangeAPIConfig `yaml:"exchange_api"`
	Cache       CacheConfig       `yaml:"cache"`
	Redis       RedisConfig       `yaml:"redis"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Logger      LoggerConfig      `yaml:"logger"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type ExchangeAPIConfig struct {
	BaseURL     string        `yaml:"base_url" env:"EXCHANGE_API_BASE_URL" env-default:"https://api.exchangeratesapi.io"`
	APIKey      string        `yaml:"api_key" env:"EXCHANGE_API_KEY"`
	Timeout     time.Duration `yaml:"timeout" env:"EXCHANGE_API_TIMEOUT" env-default:"10s"`
	RefreshRate time.Duration `yaml:"refresh_rate" env:"EXCHANGE_API_REFRESH_RATE" env-default:"1h"`
	UserAgent   string        `yaml:"user_agent" env:"EXCHANGE_API_USER_AGENT" env-default:"exchange-rate-resolver/1.0"`
}

type CacheConfig struct {
	Driver string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"` // memory|redis|postgres
	TTL    time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"30m"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password  string `yaml:"password" env:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"fx:"`
}

type PostgresConfig struct {
	Host     string        `yaml:"host" env:"BD_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"BD_PORT" env-default:"5432"`
	User     string        `yaml:"user" env:"BD_USER" env-default:"postgres"`
	Password string        `yaml:"password" env:"BD_PASSWORD" env-default:"postgres"`
	DBName   string        `yaml:"dbname" env:"BD_DBNAME" env-default:"rates"`
	SSLMode  string        `yaml:"sslmode" env:"BD_SSL_MODE" env-default:"disable"`
	Timeout  time.Duration `yaml:"timeout" env:"BD_TIMEOUT" env-default:"10s"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`   // debug|info|warn|error
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"` // text|json
}

// DSN renders the key/value connection string pgx expects.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

// LoadConfig reads .env (if present), then an optional YAML file given by -c or
// CONFIG_PATH, then the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	return load(fetchConfigPath())
}

func load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case DriverMemory, DriverRedis, DriverPostgres:
	default:
		return fmt.Errorf("unknown cache driver %q", c.Cache.Driver)
	}

	if c.ExchangeAPI.BaseURL == "" {
		return fmt.Errorf("exchange api base url is empty")
	}
	if c.ExchangeAPI.RefreshRate <= 0 {
		return fmt.Errorf("exchange api refresh rate must be positive, got %s", c.ExchangeAPI.RefreshRate)
	}
	if c.ExchangeAPI.Timeout < 0 {
		return fmt.Errorf("exchange api timeout must not be negative, got %s", c.ExchangeAPI.Timeout)
	}
	if c.Cache.Driver == DriverPostgres && c.Postgres.Timeout <= 0 {
		return fmt.Errorf("postgres timeout must be positive, got %s", c.Postgres.Timeout)
	}

	return nil
}

func fetchConfigPath() string {
	var res string
	if flag.Lookup("c") == nil {
		flag.StringVar(&res, "c", "", "config file path")
	}
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}

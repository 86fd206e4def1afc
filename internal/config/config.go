package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config holds the settings of the server and the cli.
type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	Queue    QueueConfig
	Cache    CacheConfig
	Server   ServerConfig
	Log      LogConfig
	Postpone PostponeConfig
	MaxDepth int
}

// DBConfig selects the gorm driver. The dsn is a file path for sqlite.
type DBConfig struct {
	Driver string
	DSN    string
}

// RedisConfig is empty when Addr is not set: the server then keeps the
// content cache in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type QueueConfig struct {
	// Driver is one of memory, redis or kafka.
	Driver       string
	KafkaBrokers []string
	Topic        string
}

type CacheConfig struct {
	Compression string
	TTL         time.Duration
}

type ServerConfig struct {
	GrpcPort string
	HttpPort string
}

type LogConfig struct {
	Level  string
	Format string
}

// PostponeConfig schedules the job filling next year trees.
type PostponeConfig struct {
	Enabled  bool
	Year     int
	Schedule string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", filepath.Join(".tmp", "programtree.db"))
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("queue.driver", "memory")
	v.SetDefault("queue.kafka_brokers", []string{"localhost:9092"})
	v.SetDefault("queue.topic", "programtree.tree.changed")
	v.SetDefault("cache.compression", "gzip")
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("server.grpc_port", "4020")
	v.SetDefault("server.http_port", "4021")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("postpone.enabled", false)
	v.SetDefault("postpone.year", time.Now().Year())
	v.SetDefault("postpone.schedule", "@daily")
	v.SetDefault("max_depth", 10)
}

// Load reads the configuration from an optional programtree.yml and from the
// environment, e.g. PROGRAMTREE_DB_DSN overrides db.dsn.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("programtree")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath(".tmp")
	v.SetEnvPrefix("programtree")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Queue: QueueConfig{
			Driver:       v.GetString("queue.driver"),
			KafkaBrokers: v.GetStringSlice("queue.kafka_brokers"),
			Topic:        v.GetString("queue.topic"),
		},
		Cache: CacheConfig{
			Compression: v.GetString("cache.compression"),
			TTL:         v.GetDuration("cache.ttl"),
		},
		Server: ServerConfig{
			GrpcPort: v.GetString("server.grpc_port"),
			HttpPort: v.GetString("server.http_port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Postpone: PostponeConfig{
			Enabled:  v.GetBool("postpone.enabled"),
			Year:     v.GetInt("postpone.year"),
			Schedule: v.GetString("postpone.schedule"),
		},
		MaxDepth: v.GetInt("max_depth"),
	}
	return cfg, cfg.Validate()
}

// LoadConfig loads the configuration and exits on error.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	switch c.Queue.Driver {
	case "memory", "redis":
	case "kafka":
		if len(c.Queue.KafkaBrokers) == 0 {
			return fmt.Errorf("kafka queue requires at least one broker")
		}
	default:
		return fmt.Errorf("unknown queue driver %q", c.Queue.Driver)
	}
	if c.Queue.Driver == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("redis queue requires redis.addr")
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// SetupLogging applies the log level and format to the standard logrus logger.
func SetupLogging(cfg LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", cfg.Level)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// GetDb opens the configured database and exits on error.
func GetDb(cfg *Config) *gorm.DB {
	db, err := OpenDB(cfg.DB)
	if err != nil {
		logrus.Fatalf("failed to open %s database: %v", cfg.DB.Driver, err)
	}
	return db
}

func OpenDB(cfg DBConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.Driver {
	case "postgres":
		return gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	case "sqlite":
		if dir := filepath.Dir(cfg.DSN); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return gorm.Open(sqlite.Open(cfg.DSN), gormConfig)
	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.Driver)
	}
}

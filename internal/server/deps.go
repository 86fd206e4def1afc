package server

import (
	"errors"
	"fmt"
	"strings"

	"github.com/emrgen/programtree/internal/bus"
	"github.com/emrgen/programtree/internal/cache"
	"github.com/emrgen/programtree/internal/compress"
	"github.com/emrgen/programtree/internal/config"
	"github.com/emrgen/programtree/internal/queue"
	"github.com/emrgen/programtree/internal/repository"
	"github.com/emrgen/programtree/internal/service"
	"github.com/emrgen/programtree/internal/store"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Dependencies are the components shared by the grpc server, the rest
// endpoints and the jobs.
type Dependencies struct {
	Store store.Store
	Cache cache.ContentCache
	Queue queue.TreeQueue
	Bus   *bus.MessageBus

	redis *redis.Client
}

// NewDependencies builds the components from the config on top of db.
func NewDependencies(cfg *config.Config, db *gorm.DB) (*Dependencies, error) {
	repository.MaxDepth = cfg.MaxDepth
	queue.TreeChangedTopic = cfg.Queue.Topic

	deps := &Dependencies{Store: store.NewGormStore(db)}
	if err := deps.Store.Migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Redis.Addr != "" {
		deps.redis = cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	}

	encoder, err := compress.ByName(cfg.Cache.Compression)
	if err != nil {
		return nil, err
	}
	if deps.redis != nil {
		deps.Cache = cache.NewRedisContentCache(deps.redis, encoder, cfg.Cache.TTL)
	} else {
		logrus.Warn("redis.addr is not set: the content cache is kept in memory")
		deps.Cache = cache.NewMemoryContentCache()
	}

	switch cfg.Queue.Driver {
	case "kafka":
		deps.Queue, err = queue.NewKafkaTreeQueue(strings.Join(cfg.Queue.KafkaBrokers, ","))
		if err != nil {
			return nil, err
		}
	case "redis":
		deps.Queue = queue.NewRedisTreeQueue(deps.redis)
	default:
		deps.Queue = queue.NewMemoryTreeQueue()
	}

	deps.Bus = bus.NewMessageBus(bus.Logging())
	if err := service.NewProgramTreeService(deps.Store, deps.Cache, deps.Queue).Register(deps.Bus); err != nil {
		return nil, err
	}
	return deps, nil
}

func (d *Dependencies) Close() error {
	var errs []error
	if d.Queue != nil {
		errs = append(errs, d.Queue.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	return errors.Join(errs...)
}

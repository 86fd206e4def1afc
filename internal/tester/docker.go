package tester

import (
	"fmt"
	"os"
	"time"

	"github.com/emrgen/programtree/internal/model"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DockerEnabled reports whether the integration tests against postgres should run.
func DockerEnabled() bool {
	return os.Getenv("PROGRAMTREE_DOCKER_TESTS") != ""
}

// SetupDocker starts a postgres container and returns a migrated connection to it.
func SetupDocker() (*gorm.DB, func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, nil, fmt.Errorf("could not construct pool: %w", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		return nil, nil, fmt.Errorf("could not connect to docker: %w", err)
	}

	resource, err := pool.Run("postgres", "16", []string{
		"POSTGRES_USER=programtree",
		"POSTGRES_PASSWORD=programtree",
		"POSTGRES_DB=programtree",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not start resource: %w", err)
	}
	_ = resource.Expire(300)

	dsn := fmt.Sprintf("host=localhost port=%s user=programtree password=programtree dbname=programtree sslmode=disable",
		resource.GetPort("5432/tcp"))

	var pdb *gorm.DB
	pool.MaxWait = 60 * time.Second
	err = pool.Retry(func() error {
		var err error
		pdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return err
		}
		sqlDB, err := pdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.Ping()
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, nil, fmt.Errorf("could not connect to postgres: %w", err)
	}

	if err := model.Migrate(pdb); err != nil {
		_ = pool.Purge(resource)
		return nil, nil, err
	}

	purge := func() {
		if err := pool.Purge(resource); err != nil {
			logrus.Errorf("could not purge resource: %s", err)
		}
	}

	return pdb, purge, nil
}

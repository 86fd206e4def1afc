package tester

import (
	"os"
	"path/filepath"

	"github.com/emrgen/programtree/internal/cache"
	"github.com/emrgen/programtree/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db      *gorm.DB
	testDir string
)

// Setup opens a fresh sqlite database in a temporary directory and migrates it.
func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	dir, err := os.MkdirTemp("", "programtree-test-")
	if err != nil {
		panic(err)
	}
	testDir = dir

	db, err = gorm.Open(sqlite.Open(filepath.Join(testDir, "programtree.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

// CleanDB empties every table, keeping the schema.
func CleanDB() {
	tables := []string{
		"prerequisite_items", "prerequisites", "group_element_years", "authorized_relationships",
		"elements", "learning_class_years", "learning_unit_years", "group_years",
	}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			panic(err)
		}
	}
}

func RemoveDBFile() {
	if testDir == "" {
		return
	}
	err := os.RemoveAll(testDir)
	if err != nil {
		panic(err)
	}
	testDir = ""
}

// ContentCache returns an in-process content cache for tests.
func ContentCache() *cache.MemoryContentCache {
	return cache.NewMemoryContentCache()
}

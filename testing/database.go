// Package testing provides test utilities and database setup for testing the point-of-sale system
package testing

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/amirphl/carrier-pos/config"
	"github.com/amirphl/carrier-pos/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB represents a test database instance backed by a throwaway SQLite file
type TestDB struct {
	DB    *gorm.DB
	Store *database.Store
	Dir   string
	Path  string
}

// TestDatabaseConfig returns a store configuration rooted at dir
func TestDatabaseConfig(dir string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Type:              config.DatabaseTypeSQLite,
		Path:              filepath.Join(dir, "posdatabase.sqlite"),
		TemplatePath:      filepath.Join(dir, "template.sqlite"),
		EnforceUniqueKeys: true,
		SeedDevices:       true,
	}
}

// CreateTemplateDatabase writes an empty store template with the core tables to path
func CreateTemplateDatabase(path string) error {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to create template database %s: %w", path, err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	return database.CreateCoreSchema(context.Background(), db)
}

// SetupTestDB provisions a fresh store from a new template and initializes it
func SetupTestDB() (*TestDB, error) {
	dir, err := os.MkdirTemp("", "pos_test_*")
	if err != nil {
		return nil, fmt.Errorf("failed to create test directory: %w", err)
	}

	cfg := TestDatabaseConfig(dir)
	if err := CreateTemplateDatabase(cfg.TemplatePath); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	store := database.NewStore(cfg)
	if err := store.Initialize(context.Background()); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to initialize test store: %w", err)
	}

	db, err := store.DB()
	if err != nil {
		store.Close()
		os.RemoveAll(dir)
		return nil, err
	}

	return &TestDB{
		DB:    db,
		Store: store,
		Dir:   dir,
		Path:  cfg.Path,
	}, nil
}

// TeardownTestDB closes the store and removes its files
func (tdb *TestDB) TeardownTestDB() error {
	if tdb.Store != nil {
		if err := tdb.Store.Close(); err != nil {
			log.Printf("Warning: failed to close test store: %v", err)
		}
	}
	return os.RemoveAll(tdb.Dir)
}

// ClearAllTables removes all data from tables while preserving structure
func (tdb *TestDB) ClearAllTables() error {
	// Order matters due to foreign key constraints
	tables := []string{"lines", "devices", "customers", "devices_for_sale"}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}

	return nil
}

// CountRows returns the number of rows in table
func (tdb *TestDB) CountRows(table string) (int64, error) {
	var n int64
	err := tdb.DB.Table(table).Count(&n).Error
	return n, err
}

// TestWithDB is a helper function that sets up a test database, runs the test function, and cleans up
func TestWithDB(testFunc func(*TestDB) error) error {
	testDB, err := SetupTestDB()
	if err != nil {
		return fmt.Errorf("failed to setup test database: %w", err)
	}
	defer func() {
		if cleanupErr := testDB.TeardownTestDB(); cleanupErr != nil {
			log.Printf("Warning: failed to cleanup test database: %v", cleanupErr)
		}
	}()

	return testFunc(testDB)
}

// CreateTestContext creates a context for testing
func CreateTestContext() context.Context {
	return context.Background()
}

package database_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/amirphl/carrier-pos/database"
	"github.com/amirphl/carrier-pos/models"
	testingutil "github.com/amirphl/carrier-pos/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openRaw(t *testing.T, path string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("NotInitialized", func(t *testing.T) {
		store := database.NewStore(testingutil.TestDatabaseConfig(t.TempDir()))

		assert.Equal(t, database.StateUninitialized, store.State())
		db, err := store.DB()
		assert.Nil(t, db)
		assert.ErrorIs(t, err, database.ErrNotInitialized)
	})

	t.Run("TemplateMissingThenRetry", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		store := database.NewStore(cfg)

		err := store.Initialize(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, database.ErrTemplateMissing)
		assert.Equal(t, database.StateUninitialized, store.State())
		_, statErr := os.Stat(cfg.Path)
		assert.True(t, os.IsNotExist(statErr))

		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		require.NoError(t, store.Initialize(ctx))
		assert.Equal(t, database.StateReady, store.State())

		_, err = store.DB()
		assert.NoError(t, err)
		require.NoError(t, store.Close())
		assert.Equal(t, database.StateUninitialized, store.State())
	})

	t.Run("SeedsDevicesForSaleOnce", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		store := database.NewStore(cfg)
		defer store.Close()

		require.NoError(t, store.Initialize(ctx))
		require.NoError(t, store.Initialize(ctx))

		db, err := store.DB()
		require.NoError(t, err)

		var devices []models.DeviceForSale
		require.NoError(t, db.Order("id").Find(&devices).Error)
		require.Len(t, devices, 5)
		assert.Equal(t, "iPhone 17", devices[0].Device)
		assert.InDelta(t, 899.99, devices[0].Price, 0.001)
		require.NotNil(t, devices[0].ImageURL)
		assert.Equal(t, "iPhone 17", *devices[0].ImageURL)
		assert.True(t, *devices[0].IsAvailable)
		assert.Equal(t, "Samsung Galaxy Z Flip 7", devices[4].Device)
	})

	t.Run("SeedDisabledLeavesTableEmpty", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		cfg.SeedDevices = false
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		store := database.NewStore(cfg)
		defer store.Close()

		require.NoError(t, store.Initialize(ctx))
		db, err := store.DB()
		require.NoError(t, err)

		var n int64
		require.NoError(t, db.Model(&models.DeviceForSale{}).Count(&n).Error)
		assert.Zero(t, n)
	})

	t.Run("ExistingFileIsNotOverwritten", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.Path))

		raw := openRaw(t, cfg.Path)
		require.NoError(t, raw.Exec("INSERT INTO customers (account_number, name) VALUES (7, 'Existing')").Error)

		store := database.NewStore(cfg)
		defer store.Close()
		require.NoError(t, store.Initialize(ctx))

		db, err := store.DB()
		require.NoError(t, err)
		var customer models.Customer
		require.NoError(t, db.First(&customer, 7).Error)
		assert.Equal(t, "Existing", customer.Name)
	})

	t.Run("MissingRequiredTable", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		raw := openRaw(t, cfg.TemplatePath)
		require.NoError(t, raw.Exec("DROP TABLE lines").Error)

		store := database.NewStore(cfg)
		err := store.Initialize(ctx)
		require.Error(t, err)

		var missing *database.MissingTableError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "lines", missing.Table)
		assert.ErrorIs(t, err, database.ErrMissingTable)
		assert.Equal(t, database.StateUninitialized, store.State())
	})

	t.Run("ConcurrentInitialize", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		store := database.NewStore(cfg)
		defer store.Close()

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = store.Initialize(ctx)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			assert.NoError(t, err)
		}
		db, err := store.DB()
		require.NoError(t, err)
		var n int64
		require.NoError(t, db.Model(&models.DeviceForSale{}).Count(&n).Error)
		assert.Equal(t, int64(5), n)
	})
}

func TestStoreUniqueKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("DuplicateMDNRejected", func(t *testing.T) {
		err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
			fixtures := testingutil.NewTestFixtures(testDB)
			_, err := fixtures.CreateScenario()
			require.NoError(t, err)

			_, err = fixtures.CreateTestLine(testingutil.ScenarioAccount, testingutil.ScenarioMDN, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("DuplicateIMEIRejected", func(t *testing.T) {
		err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
			fixtures := testingutil.NewTestFixtures(testDB)
			_, err := fixtures.CreateScenario()
			require.NoError(t, err)

			_, err = fixtures.CreateTestLine(testingutil.ScenarioAccount, "5559990000", testingutil.ScenarioIMEIB)
			require.Error(t, err)
			assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

			// lines without a device never collide
			_, err = fixtures.CreateTestLine(testingutil.ScenarioAccount, "5559990001", "")
			require.NoError(t, err)
			_, err = fixtures.CreateTestLine(testingutil.ScenarioAccount, "5559990002", "")
			require.NoError(t, err)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("ExistingDuplicatesOnlyWarn", func(t *testing.T) {
		cfg := testingutil.TestDatabaseConfig(t.TempDir())
		require.NoError(t, testingutil.CreateTemplateDatabase(cfg.TemplatePath))
		raw := openRaw(t, cfg.TemplatePath)
		require.NoError(t, raw.Exec("INSERT INTO customers (account_number, name) VALUES (1, 'Dup')").Error)
		require.NoError(t, raw.Exec("INSERT INTO lines (account_number, mdn) VALUES (1, '5550000000'), (1, '5550000000')").Error)

		store := database.NewStore(cfg)
		defer store.Close()
		require.NoError(t, store.Initialize(ctx))
		assert.Equal(t, database.StateReady, store.State())
	})
}

func TestCreateCoreSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.sqlite")
	require.NoError(t, testingutil.CreateTemplateDatabase(path))

	db := openRaw(t, path)
	for _, table := range []string{"customers", "devices", "lines"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	for _, idx := range database.RecommendedIndexes {
		assert.True(t, db.Migrator().HasIndex(idx.Table, idx.Name), idx.Name)
	}
}

func TestStoreForeignKeysOnFreshConnections(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		sqlDB, err := testDB.DB.DB()
		require.NoError(t, err)
		// every statement below runs on a newly opened connection
		sqlDB.SetMaxIdleConns(0)

		for i := 0; i < 3; i++ {
			var enabled int
			require.NoError(t, testDB.DB.Raw("PRAGMA foreign_keys").Scan(&enabled).Error)
			assert.Equal(t, 1, enabled)
		}

		err = testDB.DB.Exec("INSERT INTO lines (account_number, mdn) VALUES (424242, '5550001111')").Error
		assert.Error(t, err)
		return nil
	})
	require.NoError(t, err)
}

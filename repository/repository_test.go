package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/carrier-pos/database"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/repository"
	testingutil "github.com/amirphl/carrier-pos/testing"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		fixtures := testingutil.NewTestFixtures(testDB)
		_, err := fixtures.CreateScenario()
		require.NoError(t, err)

		repo := repository.NewCustomerRepository(testDB.Store)

		t.Run("NameByMDN", func(t *testing.T) {
			name, err := repo.NameByMDN(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			require.NotNil(t, name)
			assert.Equal(t, "Acme", *name)
		})

		t.Run("NameByUnknownMDN", func(t *testing.T) {
			name, err := repo.NameByMDN(ctx, "5550000000")
			require.NoError(t, err)
			assert.Nil(t, name)
		})

		t.Run("ByMDN", func(t *testing.T) {
			customer, err := repo.ByMDN(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			require.NotNil(t, customer)
			assert.Equal(t, testingutil.ScenarioAccount, customer.AccountNumber)
			assert.Equal(t, "Acme", customer.Name)
		})

		t.Run("ByMDNWithSeveralLines", func(t *testing.T) {
			_, err := fixtures.CreateTestLine(testingutil.ScenarioAccount, "5551112222", "")
			require.NoError(t, err)

			customer, err := repo.ByMDN(ctx, "5551112222")
			require.NoError(t, err)
			require.NotNil(t, customer)
			assert.Equal(t, testingutil.ScenarioAccount, customer.AccountNumber)
		})

		t.Run("SaveAssignsAccountNumber", func(t *testing.T) {
			customer := &models.Customer{Name: "Globex", Email: utils.ToPtr("ops@globex.example")}
			require.NoError(t, repo.Save(ctx, customer))
			assert.NotZero(t, customer.AccountNumber)
			assert.NotEqual(t, testingutil.ScenarioAccount, customer.AccountNumber)

			loaded, err := repo.ByAccountNumber(ctx, customer.AccountNumber)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, "Globex", loaded.Name)
		})

		t.Run("ByAccountNumberMissing", func(t *testing.T) {
			customer, err := repo.ByAccountNumber(ctx, 999999)
			require.NoError(t, err)
			assert.Nil(t, customer)
		})

		t.Run("CountAndExists", func(t *testing.T) {
			name := "Acme"
			count, err := repo.Count(ctx, models.CustomerFilter{Name: &name})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			missing := "Initech"
			exists, err := repo.Exists(ctx, models.CustomerFilter{Name: &missing})
			require.NoError(t, err)
			assert.False(t, exists)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestLineRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		fixtures := testingutil.NewTestFixtures(testDB)
		_, err := fixtures.CreateScenario()
		require.NoError(t, err)

		repo := repository.NewLineRepository(testDB.Store)

		t.Run("ListByAccount", func(t *testing.T) {
			lines, err := repo.ListByAccount(ctx, testingutil.ScenarioAccount)
			require.NoError(t, err)
			require.Len(t, lines, 1)
			assert.Equal(t, testingutil.ScenarioMDN, lines[0].MDN)
			assert.Equal(t, models.FeatureList{"HD Streaming"}, lines[0].Features)
			require.NotNil(t, lines[0].IMEI)
			assert.Equal(t, testingutil.ScenarioIMEIB, *lines[0].IMEI)
		})

		t.Run("ExistsByMDN", func(t *testing.T) {
			exists, err := repo.ExistsByMDN(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			assert.True(t, exists)

			exists, err = repo.ExistsByMDN(ctx, "5550000000")
			require.NoError(t, err)
			assert.False(t, exists)
		})

		t.Run("IMEIInUseExcludesOwnLine", func(t *testing.T) {
			inUse, err := repo.IMEIInUse(ctx, testingutil.ScenarioIMEIB, testingutil.ScenarioMDN)
			require.NoError(t, err)
			assert.False(t, inUse)

			inUse, err = repo.IMEIInUse(ctx, testingutil.ScenarioIMEIB, "5550000000")
			require.NoError(t, err)
			assert.True(t, inUse)

			assigned, err := repo.IMEIAssigned(ctx, testingutil.ScenarioIMEIA)
			require.NoError(t, err)
			assert.False(t, assigned)
		})

		t.Run("AssignedIMEIs", func(t *testing.T) {
			imeis, err := repo.AssignedIMEIs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{testingutil.ScenarioIMEIB}, imeis)
		})

		t.Run("UpdateMutable", func(t *testing.T) {
			err := repo.UpdateMutable(ctx, testingutil.ScenarioMDN, repository.LineUpdate{
				Name:     nil,
				IMEI:     utils.ToPtr(testingutil.ScenarioIMEIA),
				Plan:     utils.ToPtr("Unlimited Ultimate - $90/mo"),
				Features: models.FeatureList{"4K Streaming", "GPS Tracking"},
			})
			require.NoError(t, err)

			line, err := repo.ByMDN(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			require.NotNil(t, line)
			assert.Nil(t, line.Name)
			assert.Equal(t, testingutil.ScenarioIMEIA, *line.IMEI)
			assert.Equal(t, "Unlimited Ultimate - $90/mo", *line.Plan)
			assert.Equal(t, models.FeatureList{"4K Streaming", "GPS Tracking"}, line.Features)
			assert.Equal(t, testingutil.ScenarioMDN, line.MDN)
		})

		t.Run("UpdateMutableClearsIMEI", func(t *testing.T) {
			err := repo.UpdateMutable(ctx, testingutil.ScenarioMDN, repository.LineUpdate{})
			require.NoError(t, err)

			line, err := repo.ByMDN(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			assert.Nil(t, line.IMEI)
			assert.Empty(t, line.Features)

			var raw string
			require.NoError(t, testDB.DB.Raw("SELECT features FROM lines WHERE mdn = ?", testingutil.ScenarioMDN).Scan(&raw).Error)
			assert.Equal(t, "[]", raw)
		})

		t.Run("UpdateMutableUnknownMDN", func(t *testing.T) {
			err := repo.UpdateMutable(ctx, "5550000000", repository.LineUpdate{})
			require.Error(t, err)
			assert.ErrorIs(t, err, repository.ErrNoRowsUpdated)
		})

		t.Run("LegacyCommaSeparatedFeatures", func(t *testing.T) {
			require.NoError(t, testDB.DB.Exec(
				"INSERT INTO lines (account_number, mdn, features) VALUES (?, ?, ?)",
				testingutil.ScenarioAccount, "5557654321", "Unlimited Data, High-Speed 5G ,GPS Tracking",
			).Error)

			line, err := repo.ByMDN(ctx, "5557654321")
			require.NoError(t, err)
			require.NotNil(t, line)
			assert.Equal(t, models.FeatureList{"Unlimited Data", "High-Speed 5G", "GPS Tracking"}, line.Features)
		})

		t.Run("NullFeatures", func(t *testing.T) {
			require.NoError(t, testDB.DB.Exec(
				"INSERT INTO lines (account_number, mdn) VALUES (?, ?)", testingutil.ScenarioAccount, "5553334444",
			).Error)

			line, err := repo.ByMDN(ctx, "5553334444")
			require.NoError(t, err)
			require.NotNil(t, line)
			assert.Empty(t, line.Features)
		})

		t.Run("TransactionRollback", func(t *testing.T) {
			before, err := testDB.CountRows("lines")
			require.NoError(t, err)

			boom := errors.New("boom")
			err = repository.WithTransaction(ctx, testDB.Store, func(txCtx context.Context) error {
				if err := repo.Save(txCtx, &models.Line{AccountNumber: utils.ToPtr(testingutil.ScenarioAccount), MDN: "5558887777"}); err != nil {
					return err
				}
				return boom
			})
			assert.ErrorIs(t, err, boom)

			after, err := testDB.CountRows("lines")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeviceRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		fixtures := testingutil.NewTestFixtures(testDB)
		_, err := fixtures.CreateScenario()
		require.NoError(t, err)

		repo := repository.NewDeviceRepository(testDB.Store)

		t.Run("AllIMEIsInStorageOrder", func(t *testing.T) {
			imeis, err := repo.AllIMEIs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{testingutil.ScenarioIMEIA, testingutil.ScenarioIMEIB, testingutil.ScenarioIMEIC}, imeis)
		})

		t.Run("ByIMEI", func(t *testing.T) {
			device, err := repo.ByIMEI(ctx, testingutil.ScenarioIMEIC)
			require.NoError(t, err)
			require.NotNil(t, device)
			assert.Equal(t, "Pixel 9", *device.Device)

			device, err = repo.ByIMEI(ctx, "33333333333333")
			require.NoError(t, err)
			assert.Nil(t, device)
		})

		t.Run("ListAll", func(t *testing.T) {
			devices, err := repo.ListAll(ctx)
			require.NoError(t, err)
			require.Len(t, devices, 3)
			assert.Equal(t, "Apple iPhone", devices[0].Manufacturer())
			assert.Equal(t, "Samsung", devices[1].Manufacturer())
			assert.Equal(t, "Google Pixel", devices[2].Manufacturer())
		})

		return nil
	})
	require.NoError(t, err)
}

func TestDeviceForSaleRepository(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		ctx := testingutil.CreateTestContext()
		repo := repository.NewDeviceForSaleRepository(testDB.Store)

		t.Run("ListAllOrderedByLabel", func(t *testing.T) {
			devices, err := repo.ListAll(ctx)
			require.NoError(t, err)
			require.Len(t, devices, 5)

			var labels []string
			for _, d := range devices {
				labels = append(labels, d.Device)
			}
			assert.Equal(t, []string{
				"Samsung Galaxy Z Flip 7",
				"Samsung Galaxy Z Fold 7",
				"iPhone 17",
				"iPhone 17 Pro Max",
				"iPhone Air",
			}, labels)
		})

		t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
			devices, err := repo.SearchAvailable(ctx, "GALAXY")
			require.NoError(t, err)
			assert.Len(t, devices, 2)

			devices, err = repo.SearchAvailable(ctx, "pro")
			require.NoError(t, err)
			require.Len(t, devices, 1)
			assert.Equal(t, "iPhone 17 Pro Max", devices[0].Device)
		})

		t.Run("SearchTreatsWildcardsLiterally", func(t *testing.T) {
			for _, q := range []string{"%", "_", "iphone_17", "100%"} {
				devices, err := repo.SearchAvailable(ctx, q)
				require.NoError(t, err)
				assert.Empty(t, devices, q)
			}

			special := &models.DeviceForSale{Device: "Case_Mate 100% Clear", Price: 39, IsAvailable: utils.ToPtr(true)}
			require.NoError(t, repo.Save(ctx, special))
			defer func() { require.NoError(t, repo.Delete(ctx, special.ID)) }()

			for _, q := range []string{"case_mate", "100%", `%`} {
				devices, err := repo.SearchAvailable(ctx, q)
				require.NoError(t, err)
				require.Len(t, devices, 1, q)
				assert.Equal(t, special.ID, devices[0].ID)
			}
		})

		t.Run("UpdateAvailability", func(t *testing.T) {
			devices, err := repo.SearchAvailable(ctx, "iphone air")
			require.NoError(t, err)
			require.Len(t, devices, 1)

			device := devices[0]
			device.IsAvailable = utils.ToPtr(false)
			device.Price = 749.99
			require.NoError(t, repo.Update(ctx, device))

			available, err := repo.ListAvailable(ctx)
			require.NoError(t, err)
			assert.Len(t, available, 4)

			found, err := repo.SearchAvailable(ctx, "air")
			require.NoError(t, err)
			assert.Empty(t, found)

			all, err := repo.ListAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 5)

			loaded, err := repo.ByID(ctx, device.ID)
			require.NoError(t, err)
			assert.InDelta(t, 749.99, loaded.Price, 0.001)
			assert.False(t, *loaded.IsAvailable)
		})

		t.Run("SaveAndDelete", func(t *testing.T) {
			device := &models.DeviceForSale{Device: "Pixel 10", Price: 799, IsAvailable: utils.ToPtr(true)}
			require.NoError(t, repo.Save(ctx, device))
			assert.NotZero(t, device.ID)

			count, err := repo.Count(ctx, models.DeviceForSaleFilter{})
			require.NoError(t, err)
			assert.Equal(t, int64(6), count)

			require.NoError(t, repo.Delete(ctx, device.ID))
			loaded, err := repo.ByID(ctx, device.ID)
			require.NoError(t, err)
			assert.Nil(t, loaded)

			err = repo.Delete(ctx, device.ID)
			assert.ErrorIs(t, err, repository.ErrNoRowsUpdated)
		})

		return nil
	})
	require.NoError(t, err)
}

func TestRepositoryBeforeInitialization(t *testing.T) {
	store := database.NewStore(testingutil.TestDatabaseConfig(t.TempDir()))
	ctx := context.Background()

	_, err := repository.NewCustomerRepository(store).NameByMDN(ctx, testingutil.ScenarioMDN)
	assert.ErrorIs(t, err, database.ErrNotInitialized)

	_, err = repository.NewLineRepository(store).ExistsByMDN(ctx, testingutil.ScenarioMDN)
	assert.ErrorIs(t, err, database.ErrNotInitialized)

	err = repository.NewDeviceForSaleRepository(store).Save(ctx, &models.DeviceForSale{Device: "x"})
	assert.ErrorIs(t, err, database.ErrNotInitialized)

	err = repository.WithTransaction(ctx, store, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, database.ErrNotInitialized)
}

func TestRepositoryStoreFaults(t *testing.T) {
	db, mock, cleanup, err := testingutil.NewMockDB()
	require.NoError(t, err)
	defer cleanup()

	ctx := context.Background()
	fault := errors.New("disk I/O error")

	t.Run("LookupFailureIsPropagated", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM "customers" JOIN lines`).
			WillReturnError(fault)

		name, err := repository.NewCustomerRepository(repository.StaticDB(db)).NameByMDN(ctx, testingutil.ScenarioMDN)
		assert.Nil(t, name)
		require.Error(t, err)
		assert.ErrorIs(t, err, fault)
	})

	t.Run("ScanFailureIsPropagated", func(t *testing.T) {
		mock.ExpectQuery(`SELECT "imei" FROM "devices"`).
			WillReturnError(fault)

		imeis, err := repository.NewDeviceRepository(repository.StaticDB(db)).AllIMEIs(ctx)
		assert.Nil(t, imeis)
		assert.ErrorIs(t, err, fault)
	})

	t.Run("WriteFailureRollsBack", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "customers"`).WillReturnError(fault)
		mock.ExpectRollback()

		err := repository.NewCustomerRepository(repository.StaticDB(db)).Save(ctx, &models.Customer{Name: "Broken"})
		assert.ErrorIs(t, err, fault)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

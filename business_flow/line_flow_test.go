package businessflow

import (
	"testing"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/repository"
	testingutil "github.com/amirphl/carrier-pos/testing"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFlows struct {
	account   AccountFlow
	line      LineFlow
	inventory *InventoryFlowImpl
}

func newTestFlows(testDB *testingutil.TestDB) testFlows {
	customers := repository.NewCustomerRepository(testDB.Store)
	lines := repository.NewLineRepository(testDB.Store)
	devices := repository.NewDeviceRepository(testDB.Store)
	shop := repository.NewDeviceForSaleRepository(testDB.Store)

	account := NewAccountFlow(customers, lines, devices)
	return testFlows{
		account:   account,
		line:      NewLineFlow(testDB.Store, customers, lines, devices, account),
		inventory: NewInventoryFlow(devices, lines, shop).(*InventoryFlowImpl),
	}
}

func withScenario(t *testing.T, fn func(testDB *testingutil.TestDB, flows testFlows)) {
	t.Helper()
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		_, err := testingutil.NewTestFixtures(testDB).CreateScenario()
		require.NoError(t, err)
		fn(testDB, newTestFlows(testDB))
		return nil
	})
	require.NoError(t, err)
}

func TestCreateLine(t *testing.T) {
	metadata := NewClientMetadata("127.0.0.1", "test")

	t.Run("DuplicateMDNWritesNothing", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()
			before, err := testDB.CountRows("lines")
			require.NoError(t, err)

			_, err = flows.line.CreateLine(ctx, testingutil.ScenarioAccount, &dto.CreateLineRequest{
				MDN:  "(555) 123-4567",
				Name: utils.ToPtr("Second"),
			}, metadata)
			require.Error(t, err)
			assert.True(t, IsDuplicateMDN(err))

			after, err := testDB.CountRows("lines")
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	})

	t.Run("FreshLineIsRetrievable", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()

			resp, err := flows.line.CreateLine(ctx, testingutil.ScenarioAccount, &dto.CreateLineRequest{
				MDN:      "5559876543",
				Name:     utils.ToPtr("Tablet"),
				IMEI:     utils.ToPtr(testingutil.ScenarioIMEIA),
				Features: []string{"Hotspot", " ", "HD Streaming"},
			}, metadata)
			require.NoError(t, err)

			assert.Equal(t, "5559876543", resp.Line.MDN)
			require.NotNil(t, resp.Line.IMEI)
			assert.Equal(t, testingutil.ScenarioIMEIA, *resp.Line.IMEI)
			require.NotNil(t, resp.Line.DeviceLabel)
			assert.Equal(t, "iPhone 15 Pro", *resp.Line.DeviceLabel)
			require.NotNil(t, resp.Line.Plan)
			assert.Equal(t, models.DefaultPlanLabel, *resp.Line.Plan)
			assert.Equal(t, []string{"Hotspot", "HD Streaming"}, resp.Line.Features)
			assert.Equal(t, 2, resp.Account.LineCount)

			account, err := flows.account.FindCustomer(ctx, "5559876543")
			require.NoError(t, err)
			assert.Equal(t, testingutil.ScenarioAccount, account.Customer.AccountNumber)
		})
	})

	t.Run("Rejections", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()
			tests := []struct {
				name    string
				account int64
				req     *dto.CreateLineRequest
				check   func(error) bool
			}{
				{"ShortMDN", testingutil.ScenarioAccount, &dto.CreateLineRequest{MDN: "555"}, IsInvalidMDN},
				{"ShortIMEI", testingutil.ScenarioAccount, &dto.CreateLineRequest{MDN: "5550000001", IMEI: utils.ToPtr("1234")}, IsInvalidIMEI},
				{"IMEIHeldByAnotherLine", testingutil.ScenarioAccount, &dto.CreateLineRequest{MDN: "5550000002", IMEI: utils.ToPtr(testingutil.ScenarioIMEIB)}, IsDuplicateIMEI},
				{"IMEINotInInventory", testingutil.ScenarioAccount, &dto.CreateLineRequest{MDN: "5550000003", IMEI: utils.ToPtr("999999999999999")}, IsDeviceNotFound},
				{"UnknownAccount", 9999, &dto.CreateLineRequest{MDN: "5550000004"}, IsCustomerNotFound},
				{"NilRequest", testingutil.ScenarioAccount, nil, IsInvalidMDN},
			}

			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					_, err := flows.line.CreateLine(ctx, tt.account, tt.req, nil)
					require.Error(t, err)
					assert.True(t, tt.check(err), "unexpected error: %v", err)
				})
			}

			count, err := testDB.CountRows("lines")
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)
		})
	})
}

func TestUpdateLine(t *testing.T) {
	t.Run("OwnIMEIIsNoop", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()

			resp, err := flows.line.UpdateLine(ctx, testingutil.ScenarioMDN, &dto.UpdateLineRequest{
				Name:     "Main",
				IMEI:     testingutil.ScenarioIMEIB,
				Plan:     "Unlimited Welcome - $65/mo",
				Features: []string{"Hotspot", "Cloud Storage"},
			}, nil)
			require.NoError(t, err)

			require.NotNil(t, resp.Line.IMEI)
			assert.Equal(t, testingutil.ScenarioIMEIB, *resp.Line.IMEI)
			assert.Equal(t, []string{"Hotspot", "Cloud Storage"}, resp.Line.Features)
			require.NotNil(t, resp.Line.Plan)
			assert.Equal(t, "Unlimited Welcome - $65/mo", *resp.Line.Plan)
			assert.Equal(t, testingutil.ScenarioAccount, resp.Account.Customer.AccountNumber)
		})
	})

	t.Run("IMEIOfAnotherLineRejected", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()
			_, err := testingutil.NewTestFixtures(testDB).CreateTestLine(testingutil.ScenarioAccount, "5551112222", testingutil.ScenarioIMEIA)
			require.NoError(t, err)

			_, err = flows.line.UpdateLine(ctx, testingutil.ScenarioMDN, &dto.UpdateLineRequest{IMEI: testingutil.ScenarioIMEIA}, nil)
			require.Error(t, err)
			assert.True(t, IsDuplicateIMEI(err))

			account, err := flows.account.FindCustomer(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			for _, line := range account.Lines {
				if line.MDN == testingutil.ScenarioMDN {
					require.NotNil(t, line.IMEI)
					assert.Equal(t, testingutil.ScenarioIMEIB, *line.IMEI)
				}
			}
		})
	})

	t.Run("EmptyFieldsClear", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			ctx := testingutil.CreateTestContext()

			resp, err := flows.line.UpdateLine(ctx, testingutil.ScenarioMDN, &dto.UpdateLineRequest{}, nil)
			require.NoError(t, err)
			assert.Nil(t, resp.Line.IMEI)
			assert.Nil(t, resp.Line.Name)
			assert.Nil(t, resp.Line.Plan)
			assert.Empty(t, resp.Line.Features)

			available, err := flows.inventory.IsIMEIAvailable(ctx, testingutil.ScenarioIMEIB)
			require.NoError(t, err)
			assert.True(t, available)
		})
	})

	t.Run("UnknownLine", func(t *testing.T) {
		withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
			_, err := flows.line.UpdateLine(testingutil.CreateTestContext(), "5550000000", &dto.UpdateLineRequest{}, nil)
			require.Error(t, err)
			assert.True(t, IsLineNotFound(err))
		})
	})
}

func TestAccountFlow(t *testing.T) {
	withScenario(t, func(testDB *testingutil.TestDB, flows testFlows) {
		ctx := testingutil.CreateTestContext()

		t.Run("LookupCustomerName", func(t *testing.T) {
			resp, err := flows.account.LookupCustomerName(ctx, "555-123-4567")
			require.NoError(t, err)
			assert.True(t, resp.Found)
			require.NotNil(t, resp.Name)
			assert.Equal(t, testingutil.ScenarioName, *resp.Name)

			resp, err = flows.account.LookupCustomerName(ctx, "5550000000")
			require.NoError(t, err)
			assert.False(t, resp.Found)
			assert.Nil(t, resp.Name)
		})

		t.Run("FindCustomer", func(t *testing.T) {
			account, err := flows.account.FindCustomer(ctx, testingutil.ScenarioMDN)
			require.NoError(t, err)
			assert.Equal(t, testingutil.ScenarioName, account.Customer.Name)
			require.Len(t, account.Lines, 1)
			require.NotNil(t, account.Lines[0].DeviceLabel)
			assert.Equal(t, "Galaxy S24", *account.Lines[0].DeviceLabel)

			_, err = flows.account.FindCustomer(ctx, "5550000000")
			assert.True(t, IsCustomerNotFound(err))

			_, err = flows.account.FindCustomer(ctx, "12")
			assert.True(t, IsInvalidMDN(err))
		})

		t.Run("CreateCustomer", func(t *testing.T) {
			customer, err := flows.account.CreateCustomer(ctx, &dto.CreateCustomerRequest{Name: "  Globex  "}, nil)
			require.NoError(t, err)
			assert.Equal(t, "Globex", customer.Name)
			assert.Greater(t, customer.AccountNumber, testingutil.ScenarioAccount)

			_, err = flows.account.CreateCustomer(ctx, &dto.CreateCustomerRequest{Name: " "}, nil)
			assert.True(t, IsCustomerNameRequired(err))
		})
	})
}

func TestFlowsBeforeInitialization(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		require.NoError(t, testDB.Store.Close())

		flows := newTestFlows(testDB)
		_, err := flows.account.LoadAccount(testingutil.CreateTestContext(), testingutil.ScenarioAccount)
		require.Error(t, err)

		var be *BusinessError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, "ACCOUNT_LOAD_FAILED", be.Code)
		return nil
	})
	require.NoError(t, err)
}

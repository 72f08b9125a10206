// Package testing provides test utilities and database setup for testing the point-of-sale system
package testing

import (
	"fmt"
	"strings"

	"github.com/amirphl/carrier-pos/models"
	"github.com/amirphl/carrier-pos/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestCustomer inserts a customer. A zero accountNumber lets the store assign one.
func (tf *TestFixtures) CreateTestCustomer(accountNumber int64, name string) (*models.Customer, error) {
	customer := &models.Customer{
		AccountNumber: accountNumber,
		Name:          name,
		Email:         utils.ToPtr(strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"),
	}
	if err := tf.DB.DB.Create(customer).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer %s: %w", name, err)
	}
	return customer, nil
}

// CreateTestDevice inserts an inventory device
func (tf *TestFixtures) CreateTestDevice(label, imei string) (*models.Device, error) {
	device := &models.Device{
		Device: utils.ToPtr(label),
		IMEI:   imei,
		ICCID:  utils.ToPtr("8901" + imei[len(imei)-4:]),
	}
	if err := tf.DB.DB.Create(device).Error; err != nil {
		return nil, fmt.Errorf("failed to create device %s: %w", imei, err)
	}
	return device, nil
}

// CreateTestLine inserts a line on accountNumber. imei may be empty for a line without a device.
func (tf *TestFixtures) CreateTestLine(accountNumber int64, mdn, imei string, features ...string) (*models.Line, error) {
	line := &models.Line{
		AccountNumber: utils.ToPtr(accountNumber),
		Name:          utils.ToPtr("Line " + mdn[len(mdn)-4:]),
		MDN:           mdn,
		Plan:          utils.ToPtr(models.DefaultPlanLabel),
		Features:      models.FeatureList(features),
	}
	if imei != "" {
		line.IMEI = utils.ToPtr(imei)
	}
	if err := tf.DB.DB.Create(line).Error; err != nil {
		return nil, fmt.Errorf("failed to create line %s: %w", mdn, err)
	}
	return line, nil
}

// Store scenario used across package tests
const (
	ScenarioAccount = int64(1001)
	ScenarioName    = "Acme"
	ScenarioMDN     = "5551234567"
	ScenarioIMEIA   = "111111111111111"
	ScenarioIMEIB   = "222222222222222"
	ScenarioIMEIC   = "333333333333333"
)

// Scenario is the data created by CreateScenario
type Scenario struct {
	Customer *models.Customer
	Line     *models.Line
	Devices  []*models.Device
}

// CreateScenario creates account 1001 "Acme" with line 5551234567 on device B,
// and devices A, B and C in that order.
func (tf *TestFixtures) CreateScenario() (*Scenario, error) {
	customer, err := tf.CreateTestCustomer(ScenarioAccount, ScenarioName)
	if err != nil {
		return nil, err
	}

	var devices []*models.Device
	for _, d := range []struct{ label, imei string }{
		{"iPhone 15 Pro", ScenarioIMEIA},
		{"Galaxy S24", ScenarioIMEIB},
		{"Pixel 9", ScenarioIMEIC},
	} {
		device, err := tf.CreateTestDevice(d.label, d.imei)
		if err != nil {
			return nil, err
		}
		devices = append(devices, device)
	}

	line, err := tf.CreateTestLine(ScenarioAccount, ScenarioMDN, ScenarioIMEIB, "HD Streaming")
	if err != nil {
		return nil, err
	}

	return &Scenario{Customer: customer, Line: line, Devices: devices}, nil
}

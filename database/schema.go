package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Tables the application cannot run without
var RequiredTables = []string{"customers", "devices", "lines", "devices_for_sale"}

// Indexes that keep the account and MDN lookups fast. Their absence is only reported.
var RecommendedIndexes = []struct {
	Table string
	Name  string
}{
	{"lines", "idx_lines_mdn"},
	{"lines", "idx_lines_account"},
	{"customers", "idx_customers_account"},
	{"devices", "idx_devices_imei"},
}

// coreSchema is the layout of a store template database
var coreSchema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		account_number INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		device TEXT,
		mdn INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device TEXT,
		imei TEXT NOT NULL UNIQUE,
		iccid TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_number INTEGER REFERENCES customers(account_number),
		name TEXT,
		imei TEXT REFERENCES devices(imei),
		mdn TEXT NOT NULL,
		plan TEXT,
		features TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_mdn ON lines(mdn)`,
	`CREATE INDEX IF NOT EXISTS idx_lines_account ON lines(account_number)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_account ON customers(account_number)`,
	`CREATE INDEX IF NOT EXISTS idx_devices_imei ON devices(imei)`,
}

var uniqueKeys = []struct {
	Name string
	DDL  string
}{
	{"uk_lines_mdn", `CREATE UNIQUE INDEX IF NOT EXISTS uk_lines_mdn ON lines(mdn)`},
	{"uk_lines_imei", `CREATE UNIQUE INDEX IF NOT EXISTS uk_lines_imei ON lines(imei) WHERE imei IS NOT NULL AND imei <> ''`},
}

// CreateCoreSchema creates customers, devices and lines on an empty SQLite database.
// It is used to build template databases.
func CreateCoreSchema(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range coreSchema {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to apply schema statement: %w", err)
			}
		}
		return nil
	})
}

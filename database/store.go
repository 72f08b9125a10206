// Package database owns the store handle: provisioning, lifecycle and startup checks
package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/carrier-pos/config"
	"github.com/amirphl/carrier-pos/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotInitialized  = errors.New("database not initialized")
	ErrTemplateMissing = errors.New("template database missing")
	ErrMissingTable    = errors.New("required table missing")
)

// MissingTableError names the required table that was not found
type MissingTableError struct {
	Table string
}

func (e *MissingTableError) Error() string {
	return fmt.Sprintf("required table missing: %s", e.Table)
}

func (e *MissingTableError) Unwrap() error {
	return ErrMissingTable
}

// State is the lifecycle state of a Store
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Option customizes a Store
type Option func(*Store)

// WithDialector opens the given dialector instead of the one derived from the config
func WithDialector(d gorm.Dialector) Option {
	return func(s *Store) {
		s.dialector = d
	}
}

// WithLogLevel sets the application log level (debug, info, warn, error) that
// decides how much the GORM logger writes
func WithLogLevel(level string) Option {
	return func(s *Store) {
		s.logLevel = level
	}
}

// gormLogLevel maps the application log level to the GORM logger. Every statement
// is logged at debug; slow queries at info and warn when slow query logging is on;
// only failed statements otherwise.
func gormLogLevel(level string, slowQueryLog bool) logger.LogLevel {
	switch level {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	}
	if slowQueryLog {
		return logger.Warn
	}
	return logger.Error
}

// Store is the single handle to the persistent store. It is created once and injected.
type Store struct {
	cfg       config.DatabaseConfig
	dialector gorm.Dialector
	logLevel  string

	initMu sync.Mutex
	mu     sync.RWMutex
	state  State
	db     *gorm.DB
}

// NewStore creates an uninitialized store
func NewStore(cfg config.DatabaseConfig, opts ...Option) *Store {
	s := &Store{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// DB returns the open handle or ErrNotInitialized
func (s *Store) DB() (*gorm.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Initialize provisions, opens and checks the store. It is a no-op once the store is ready.
// On failure the store returns to uninitialized so the call can be retried.
func (s *Store) Initialize(ctx context.Context) (err error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.Lock()
	if s.state == StateReady {
		s.mu.Unlock()
		return nil
	}
	s.state = StateInitializing
	s.mu.Unlock()

	var db *gorm.DB
	defer func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			if db != nil {
				closeDB(db)
			}
			s.state = StateUninitialized
			return
		}
		s.db = db
		s.state = StateReady
	}()

	if s.dialector == nil && s.cfg.Type != config.DatabaseTypePostgres {
		if err = s.provision(); err != nil {
			return err
		}
	}

	db, err = s.open(ctx)
	if err != nil {
		return err
	}

	if err = ensureDevicesForSale(ctx, db, s.cfg.SeedDevices); err != nil {
		return err
	}

	if err = verifyTables(ctx, db); err != nil {
		return err
	}

	warnMissingIndexes(ctx, db)

	if s.cfg.EnforceUniqueKeys {
		ensureUniqueKeys(ctx, db)
	}

	logRowCounts(ctx, db)

	log.Printf("Database initialized (%s)", s.describe())
	return nil
}

// Close releases the handle and returns the store to uninitialized
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		s.state = StateUninitialized
		return nil
	}

	err := closeDB(s.db)
	s.db = nil
	s.state = StateUninitialized
	return err
}

// provision copies the template into place when the database file does not exist yet
func (s *Store) provision() error {
	if _, err := os.Stat(s.cfg.Path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat database file: %w", err)
	}

	if s.cfg.TemplatePath == "" {
		return ErrTemplateMissing
	}
	src, err := os.Open(s.cfg.TemplatePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrTemplateMissing, s.cfg.TemplatePath)
		}
		return fmt.Errorf("failed to open template database: %w", err)
	}
	defer src.Close()

	if dir := filepath.Dir(s.cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	tmp := s.cfg.Path + ".tmp"
	dst, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create database file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy template database: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write database file: %w", err)
	}
	if err := os.Rename(tmp, s.cfg.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move database file into place: %w", err)
	}

	log.Printf("Copied template database %s to %s", s.cfg.TemplatePath, s.cfg.Path)
	return nil
}

func (s *Store) open(ctx context.Context) (*gorm.DB, error) {
	dialector := s.dialector
	if dialector == nil {
		if s.cfg.Type == config.DatabaseTypePostgres {
			dialector = postgres.Open(s.cfg.DSN())
		} else {
			dialector = sqlite.Open(sqliteDSN(s.cfg.Path))
		}
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             s.cfg.SlowQueryTime,
			LogLevel:                  gormLogLevel(s.logLevel, s.cfg.SlowQueryLog),
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		// one connection serializes every read and write against the file
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(s.cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(s.cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(s.cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(s.cfg.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if db.Dialector.Name() == "sqlite" {
		var enabled int
		if err := db.WithContext(ctx).Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("failed to read foreign key setting: %w", err)
		}
		if enabled != 1 {
			sqlDB.Close()
			return nil, errors.New("foreign keys are not enforced on the sqlite connection")
		}
	}

	return db, nil
}

// sqliteDSN enables foreign keys for every connection the pool opens
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on"
}

func (s *Store) describe() string {
	if s.cfg.Type == config.DatabaseTypePostgres {
		return fmt.Sprintf("postgres %s:%d/%s", s.cfg.Host, s.cfg.Port, s.cfg.Name)
	}
	return "sqlite " + s.cfg.Path
}

// ensureDevicesForSale creates the device shop table and, when seed is set, fills it if empty
func ensureDevicesForSale(ctx context.Context, db *gorm.DB, seed bool) error {
	db = db.WithContext(ctx)

	if !db.Migrator().HasTable(&models.DeviceForSale{}) {
		if err := db.Migrator().CreateTable(&models.DeviceForSale{}); err != nil {
			return fmt.Errorf("failed to create devices_for_sale: %w", err)
		}
		log.Println("Created devices_for_sale table")
	}

	if !seed {
		return nil
	}

	var count int64
	if err := db.Model(&models.DeviceForSale{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count devices_for_sale: %w", err)
	}
	if count > 0 {
		return nil
	}

	devices := models.DefaultDevicesForSale()
	if err := db.Create(&devices).Error; err != nil {
		return fmt.Errorf("failed to seed devices_for_sale: %w", err)
	}
	log.Printf("Seeded devices_for_sale with %d devices", len(devices))
	return nil
}

func verifyTables(ctx context.Context, db *gorm.DB) error {
	migrator := db.WithContext(ctx).Migrator()
	for _, table := range RequiredTables {
		if !migrator.HasTable(table) {
			return &MissingTableError{Table: table}
		}
	}
	return nil
}

func warnMissingIndexes(ctx context.Context, db *gorm.DB) {
	migrator := db.WithContext(ctx).Migrator()
	var missing []string
	for _, idx := range RecommendedIndexes {
		if !migrator.HasIndex(idx.Table, idx.Name) {
			missing = append(missing, idx.Name)
		}
	}
	if len(missing) > 0 {
		log.Printf("Warning: missing recommended indexes: %s", strings.Join(missing, ", "))
	}
}

// ensureUniqueKeys adds the MDN and IMEI uniqueness indexes. Existing duplicate rows
// make creation fail; that is reported and startup continues.
func ensureUniqueKeys(ctx context.Context, db *gorm.DB) {
	for _, uk := range uniqueKeys {
		if err := db.WithContext(ctx).Exec(uk.DDL).Error; err != nil {
			log.Printf("Warning: could not create unique index %s: %v", uk.Name, err)
		}
	}
}

func logRowCounts(ctx context.Context, db *gorm.DB) {
	counts := make(map[string]int64, len(RequiredTables))
	for _, table := range RequiredTables {
		var n int64
		if err := db.WithContext(ctx).Table(table).Count(&n).Error; err != nil {
			log.Printf("Warning: failed to count rows in %s: %v", table, err)
			continue
		}
		counts[table] = n
	}

	log.Printf("Row counts: customers=%d lines=%d devices=%d devices_for_sale=%d",
		counts["customers"], counts["lines"], counts["devices"], counts["devices_for_sale"])
	if counts["customers"] == 0 && counts["lines"] == 0 {
		log.Println("Warning: customers and lines are empty; lookups will return no results")
	}
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirphl/carrier-pos/models"
	"gorm.io/gorm"
)

// ErrNoRowsUpdated is returned when an update matched no row
var ErrNoRowsUpdated = errors.New("no rows updated")

// LineRepositoryImpl implements LineRepository interface
type LineRepositoryImpl struct {
	*BaseRepository[models.Line, models.LineFilter]
}

// NewLineRepository creates a new line repository
func NewLineRepository(provider DBProvider) LineRepository {
	return &LineRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Line, models.LineFilter](provider),
	}
}

// ByID retrieves a line by its ID
func (r *LineRepositoryImpl) ByID(ctx context.Context, id int64) (*models.Line, error) {
	return r.byID(ctx, id)
}

// ByMDN retrieves a line by its MDN
func (r *LineRepositoryImpl) ByMDN(ctx context.Context, mdn string) (*models.Line, error) {
	items, err := r.ByFilter(ctx, models.LineFilter{MDN: &mdn}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListByAccount retrieves all lines of an account in storage order
func (r *LineRepositoryImpl) ListByAccount(ctx context.Context, accountNumber int64) ([]*models.Line, error) {
	return r.ByFilter(ctx, models.LineFilter{AccountNumber: &accountNumber}, "id ASC", 0, 0)
}

// ExistsByMDN checks whether a line with the MDN exists
func (r *LineRepositoryImpl) ExistsByMDN(ctx context.Context, mdn string) (bool, error) {
	return r.Exists(ctx, models.LineFilter{MDN: &mdn})
}

// IMEIInUse checks whether a line other than excludeMDN carries the IMEI
func (r *LineRepositoryImpl) IMEIInUse(ctx context.Context, imei, excludeMDN string) (bool, error) {
	return r.Exists(ctx, models.LineFilter{IMEI: &imei, ExcludeMDN: &excludeMDN})
}

// IMEIAssigned checks whether any line carries the IMEI
func (r *LineRepositoryImpl) IMEIAssigned(ctx context.Context, imei string) (bool, error) {
	return r.Exists(ctx, models.LineFilter{IMEI: &imei})
}

// AssignedIMEIs retrieves every non-null IMEI on a line
func (r *LineRepositoryImpl) AssignedIMEIs(ctx context.Context) ([]string, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	var imeis []string
	err = db.Model(&models.Line{}).
		Where("imei IS NOT NULL").
		Order("id ASC").
		Pluck("imei", &imeis).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned imeis: %w", err)
	}
	return imeis, nil
}

// UpdateMutable updates the editable columns of the line with the given MDN
func (r *LineRepositoryImpl) UpdateMutable(ctx context.Context, mdn string, update LineUpdate) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finishWrite(db, shouldCommit, &err)

	features := update.Features
	if features == nil {
		features = models.FeatureList{}
	}

	updates := map[string]any{
		"name":     update.Name,
		"imei":     update.IMEI,
		"plan":     update.Plan,
		"features": features,
	}

	result := db.Model(&models.Line{}).
		Where("mdn = ?", mdn).
		Updates(updates)
	if result.Error != nil {
		err = fmt.Errorf("failed to update line %s: %w", mdn, result.Error)
		return err
	}
	if result.RowsAffected == 0 {
		err = fmt.Errorf("line %s: %w", mdn, ErrNoRowsUpdated)
		return err
	}
	return nil
}

// applyFilter applies filter criteria to a GORM query
func (r *LineRepositoryImpl) applyFilter(query *gorm.DB, filter models.LineFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.AccountNumber != nil {
		query = query.Where("account_number = ?", *filter.AccountNumber)
	}
	if filter.MDN != nil {
		query = query.Where("mdn = ?", *filter.MDN)
	}
	if filter.IMEI != nil {
		query = query.Where("imei = ?", *filter.IMEI)
	}
	if filter.ExcludeMDN != nil {
		query = query.Where("mdn <> ?", *filter.ExcludeMDN)
	}
	if filter.HasIMEI != nil {
		if *filter.HasIMEI {
			query = query.Where("imei IS NOT NULL")
		} else {
			query = query.Where("imei IS NULL")
		}
	}
	return query
}

// ByFilter retrieves lines based on filter criteria
func (r *LineRepositoryImpl) ByFilter(ctx context.Context, filter models.LineFilter, orderBy string, limit, offset int) ([]*models.Line, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	query := r.applyFilter(db.Model(&models.Line{}), filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var lines []*models.Line
	if err := query.Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("failed to find lines: %w", err)
	}
	return lines, nil
}

// Count returns the number of lines matching the filter
func (r *LineRepositoryImpl) Count(ctx context.Context, filter models.LineFilter) (int64, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.applyFilter(db.Model(&models.Line{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return count, nil
}

// Exists checks if any line matching the filter exists
func (r *LineRepositoryImpl) Exists(ctx context.Context, filter models.LineFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

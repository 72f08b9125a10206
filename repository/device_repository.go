// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/carrier-pos/models"
	"gorm.io/gorm"
)

// DeviceRepositoryImpl implements DeviceRepository interface
type DeviceRepositoryImpl struct {
	*BaseRepository[models.Device, models.DeviceFilter]
}

// NewDeviceRepository creates a new device repository
func NewDeviceRepository(provider DBProvider) DeviceRepository {
	return &DeviceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Device, models.DeviceFilter](provider),
	}
}

// ByID retrieves a device by its ID
func (r *DeviceRepositoryImpl) ByID(ctx context.Context, id int64) (*models.Device, error) {
	return r.byID(ctx, id)
}

// ByIMEI retrieves a device by exact IMEI
func (r *DeviceRepositoryImpl) ByIMEI(ctx context.Context, imei string) (*models.Device, error) {
	items, err := r.ByFilter(ctx, models.DeviceFilter{IMEI: &imei}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

// ListAll retrieves every device in storage order
func (r *DeviceRepositoryImpl) ListAll(ctx context.Context) ([]*models.Device, error) {
	return r.ByFilter(ctx, models.DeviceFilter{}, "", 0, 0)
}

// AllIMEIs retrieves the IMEI of every device in storage order
func (r *DeviceRepositoryImpl) AllIMEIs(ctx context.Context) ([]string, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}

	var imeis []string
	if err := db.Model(&models.Device{}).Order("id ASC").Pluck("imei", &imeis).Error; err != nil {
		return nil, fmt.Errorf("failed to list device imeis: %w", err)
	}
	return imeis, nil
}

func (r *DeviceRepositoryImpl) applyFilter(query *gorm.DB, filter models.DeviceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.IMEI != nil {
		query = query.Where("imei = ?", *filter.IMEI)
	}
	return query
}

// ByFilter retrieves devices based on filter criteria
func (r *DeviceRepositoryImpl) ByFilter(ctx context.Context, filter models.DeviceFilter, orderBy string, limit, offset int) ([]*models.Device, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return nil, err
	}
	query := r.applyFilter(db.Model(&models.Device{}), filter)

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

	var devices []*models.Device
	if err := query.Find(&devices).Error; err != nil {
		return nil, fmt.Errorf("failed to find devices: %w", err)
	}
	return devices, nil
}

// Count returns the number of devices matching the filter
func (r *DeviceRepositoryImpl) Count(ctx context.Context, filter models.DeviceFilter) (int64, error) {
	db, err := r.getDB(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := r.applyFilter(db.Model(&models.Device{}), filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}

// Exists checks if any device matching the filter exists
func (r *DeviceRepositoryImpl) Exists(ctx context.Context, filter models.DeviceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
